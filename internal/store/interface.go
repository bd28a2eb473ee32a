package store

import "github.com/amterp/cardman/internal/model"

// CardStore persists the whole card list as one blob.
type CardStore interface {
	// Load returns the stored list. found is false when nothing is stored.
	// A stored blob that can't be decoded yields a CorruptDataError.
	Load() (cards []model.Card, found bool, err error)

	// Save overwrites the stored list. Backend failures come back as a
	// StorageWriteError.
	Save(cards []model.Card) error
}

// ConfigStore handles user config persistence.
type ConfigStore interface {
	Load() (*model.Config, error)
	Save(config *model.Config) error
	EnsureExists() error
}
