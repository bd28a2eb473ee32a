package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/amterp/cardman/internal/config"
	"github.com/amterp/cardman/internal/editor"
	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/logging"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/prompt"
	"github.com/amterp/cardman/internal/store"
	"github.com/amterp/cardman/testutil"
)

const testKey = testutil.Key

// scriptedPrompter answers prompts from fixed values.
type scriptedPrompter struct {
	confirm    bool
	confirmErr error
	form       model.Card
	formErr    error

	questions []string
	headings  []string
}

func (p *scriptedPrompter) Input(string, string, func(string) error) (string, error) {
	return "", prompt.ErrNonInteractive
}

func (p *scriptedPrompter) Confirm(title string, _ bool) (bool, error) {
	p.questions = append(p.questions, title)
	return p.confirm, p.confirmErr
}

func (p *scriptedPrompter) CardForm(heading string, draft model.Card) (model.Card, error) {
	p.headings = append(p.headings, heading)
	if p.formErr != nil {
		return model.Card{}, p.formErr
	}
	draft.Title = p.form.Title
	draft.Description = p.form.Description
	return draft, nil
}

type testApp struct {
	*App
	storage *kv.MemoryStorage
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

// newTestApp builds an App over memory storage. A nil prompter means
// non-interactive.
func newTestApp(t *testing.T, prompter prompt.Prompter) *testApp {
	t.Helper()
	return newTestAppWithQuota(t, prompter, model.DefaultQuotaBytes)
}

func newTestAppWithQuota(t *testing.T, prompter prompt.Prompter, quota int64) *testApp {
	t.Helper()

	dir := t.TempDir()
	cfg := &model.Config{Backend: model.BackendMemory, QuotaBytes: &quota}
	cfg.ApplyDefaults(dir)

	interactive := prompter != nil
	if !interactive {
		prompter = &prompt.NoopPrompter{}
	}

	storage := kv.NewMemoryStorage(quota)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	app := &App{
		Config:      cfg,
		ConfigStore: store.NewConfigStore(filepath.Join(dir, "config.toml")),
		Paths:       config.NewPaths(dir),
		Log:         logging.Nop(),
		Storage:     storage,
		CardStore:   store.NewCardStore(storage, testKey),
		Prompter:    prompter,
		Editor:      editor.NewEditor(cfg),
		Interactive: interactive,
		Out:         out,
		Err:         errOut,
	}
	t.Cleanup(app.Close)

	return &testApp{App: app, storage: storage, out: out, errOut: errOut}
}

func (a *testApp) stored(t *testing.T) []model.Card {
	t.Helper()
	return testutil.StoredCards(t, a.storage)
}
