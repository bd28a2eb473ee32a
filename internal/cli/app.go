package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/amterp/cardman/internal/config"
	"github.com/amterp/cardman/internal/editor"
	kanerr "github.com/amterp/cardman/internal/errors"
	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/logging"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/prompt"
	"github.com/amterp/cardman/internal/service"
	"github.com/amterp/cardman/internal/store"
)

// App holds all the dependencies for the CLI.
// Uses interfaces for testability.
type App struct {
	Config      *model.Config
	ConfigStore *store.FileConfigStore
	Paths       *config.Paths
	Log         *zap.SugaredLogger
	Storage     kv.Storage
	CardStore   *store.BlobCardStore
	Prompter    prompt.Prompter
	Editor      *editor.Editor
	Interactive bool

	Out io.Writer
	Err io.Writer

	cardsOnce sync.Once
	cards     *service.CardService
}

// NewApp creates a new App with all dependencies wired up.
// If interactive is false, uses NoopPrompter that fails on prompts.
func NewApp(configPath string, interactive bool) (*App, error) {
	configStore := store.NewConfigStore(configPath)
	cfg, err := configStore.Load()
	if err != nil {
		return nil, err
	}
	return newApp(configStore, cfg, interactive)
}

// NewDefaultsApp is NewApp for a config file that could not be loaded.
// Only built-in defaults apply; doctor uses it to report on the broken file.
func NewDefaultsApp(configPath string, interactive bool) (*App, error) {
	cfg := &model.Config{}
	cfg.ApplyDefaults(config.DefaultDataDir())
	return newApp(store.NewConfigStore(configPath), cfg, interactive)
}

func newApp(configStore *store.FileConfigStore, cfg *model.Config, interactive bool) (*App, error) {
	log := logging.MustNew(cfg.LogLevel, cfg.LogFormat)

	paths := config.NewPaths(cfg.DataDir)
	storage, err := kv.Open(cfg.Backend, paths, cfg.Quota())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Backend, err)
	}

	var prompter prompt.Prompter
	if interactive {
		prompter = prompt.NewHuhPrompter()
	} else {
		prompter = &prompt.NoopPrompter{}
	}

	return &App{
		Config:      cfg,
		ConfigStore: configStore,
		Paths:       paths,
		Log:         log,
		Storage:     storage,
		CardStore:   store.NewCardStore(storage, cfg.StorageKey),
		Prompter:    prompter,
		Editor:      editor.NewEditor(cfg),
		Interactive: interactive,
		Out:         os.Stdout,
		Err:         os.Stderr,
	}, nil
}

// CardService returns the card service, loading stored cards on first use.
// Commands that must see storage untouched (doctor) never call it.
func (a *App) CardService() *service.CardService {
	a.cardsOnce.Do(func() {
		a.cards = service.NewCardService(a.CardStore, a.Log)
	})
	return a.cards
}

// Board returns a controller that confirms deletes with the app's prompter.
func (a *App) Board() *service.BoardController {
	return service.NewBoardController(a.CardService(), a.Prompter)
}

// WarnIfUnsaved tells the user when the last change only lives in memory.
// For a one-shot command that means it is lost on exit.
func (a *App) WarnIfUnsaved() {
	if a.cards == nil {
		return
	}
	if err := a.cards.PersistErr(); err != nil {
		PrintWarning(a.Err, "Change was not saved to storage: %v", err)
	}
}

// Close releases the card service and storage.
func (a *App) Close() {
	if a.cards != nil {
		a.cards.Close()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Log.Warnw("failed to close storage", "error", err)
		}
	}
	_ = a.Log.Sync()
}

// parseCardID converts a command-line card id.
func parseCardID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, kanerr.InvalidField("id", fmt.Sprintf("%q is not a card id (expected a positive number)", s))
	}
	return id, nil
}

// Fatal prints an error and exits.
func Fatal(err error) {
	PrintError(os.Stderr, "%v", err)
	os.Exit(1)
}
