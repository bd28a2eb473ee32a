// Package testutil holds fixtures shared by the service, api and cli tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/store"
)

// Key is the storage key tests keep cards under.
const Key = model.DefaultStorageKey

// TestCard returns a card that passes form validation.
func TestCard(id int, title string) model.Card {
	return model.Card{
		ID:          id,
		Title:       title,
		Description: "Description of " + title + " for testing.",
	}
}

// SeedCards stores cards under Key, bypassing any service.
func SeedCards(t *testing.T, storage kv.Storage, cards []model.Card) {
	t.Helper()
	require.NoError(t, store.NewCardStore(storage, Key).Save(cards))
}

// StoredCards reads back the cards persisted under Key. Fails the test if
// nothing is stored.
func StoredCards(t *testing.T, storage kv.Storage) []model.Card {
	t.Helper()
	cards, found, err := store.NewCardStore(storage, Key).Load()
	require.NoError(t, err)
	require.True(t, found, "no cards stored under %q", Key)
	return cards
}

// ObservedLogger returns a logger that records every entry for assertions.
func ObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

// WriteConfig writes body to a config.toml in a fresh temp directory and
// returns its path.
func WriteConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}
