package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	kanerr "github.com/amterp/cardman/internal/errors"
	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/model"
)

// BlobCardStore implements CardStore on top of a key-value storage backend.
// The full list is always read and written as a single value under one key;
// there are never per-card entries.
type BlobCardStore struct {
	storage kv.Storage
	key     string
}

// NewCardStore creates a card store writing to key in storage.
func NewCardStore(storage kv.Storage, key string) *BlobCardStore {
	return &BlobCardStore{storage: storage, key: key}
}

// Key returns the storage key holding the blob.
func (s *BlobCardStore) Key() string {
	return s.key
}

// Storage returns the backend the blob lives in.
func (s *BlobCardStore) Storage() kv.Storage {
	return s.storage
}

// wireCard mirrors model.Card with pointers so missing fields can be told
// apart from zero values.
type wireCard struct {
	ID          *int    `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Load reads and decodes the stored blob.
func (s *BlobCardStore) Load() ([]model.Card, bool, error) {
	raw, ok, err := s.storage.GetItem(s.key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cards: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	cards, err := Decode(s.key, []byte(raw))
	if err != nil {
		return nil, true, err
	}
	return cards, true, nil
}

// Save encodes cards and overwrites the stored blob.
func (s *BlobCardStore) Save(cards []model.Card) error {
	data, err := Encode(cards)
	if err != nil {
		return kanerr.StorageWrite(s.key, err)
	}
	if err := s.storage.SetItem(s.key, string(data)); err != nil {
		return kanerr.StorageWrite(s.key, err)
	}
	return nil
}

// Encode serializes cards to the persisted wire format: compact JSON with no
// HTML escaping, so decoding and re-encoding a stored blob is byte-identical.
func Encode(cards []model.Card) ([]byte, error) {
	if cards == nil {
		cards = []model.Card{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cards); err != nil {
		return nil, fmt.Errorf("failed to marshal cards: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a stored blob. Anything other than a JSON array of complete
// cards with positive, unique ids is reported as a CorruptDataError for key.
func Decode(key string, data []byte) ([]model.Card, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, kanerr.CorruptData(key, "blob is null, expected a list", nil)
	}

	var wire []wireCard
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, kanerr.CorruptData(key, "malformed JSON", err)
	}

	cards := make([]model.Card, 0, len(wire))
	seen := make(map[int]bool, len(wire))
	for i, w := range wire {
		switch {
		case w.ID == nil:
			return nil, kanerr.CorruptData(key, fmt.Sprintf("card %d has no id", i), nil)
		case w.Title == nil:
			return nil, kanerr.CorruptData(key, fmt.Sprintf("card %d has no title", i), nil)
		case w.Description == nil:
			return nil, kanerr.CorruptData(key, fmt.Sprintf("card %d has no description", i), nil)
		case *w.ID < 1:
			return nil, kanerr.CorruptData(key, fmt.Sprintf("card %d has non-positive id %d", i, *w.ID), nil)
		case seen[*w.ID]:
			return nil, kanerr.CorruptData(key, fmt.Sprintf("duplicate card id %d", *w.ID), nil)
		}
		seen[*w.ID] = true
		cards = append(cards, model.Card{ID: *w.ID, Title: *w.Title, Description: *w.Description})
	}
	return cards, nil
}
