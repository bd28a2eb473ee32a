package store

import (
	"errors"
	"testing"

	kanerr "github.com/amterp/cardman/internal/errors"
	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "cards-data"

func setupTestCardStore(t *testing.T) (*BlobCardStore, *kv.MemoryStorage) {
	t.Helper()
	storage := kv.NewMemoryStorage(0)
	return NewCardStore(storage, testKey), storage
}

// failingStorage rejects every write.
type failingStorage struct {
	*kv.MemoryStorage
	err error
}

func (s *failingStorage) SetItem(string, string) error { return s.err }

func TestBlobCardStore_LoadMissing(t *testing.T) {
	s, _ := setupTestCardStore(t)

	cards, found, err := s.Load()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, cards)
}

func TestBlobCardStore_SaveAndLoad(t *testing.T) {
	s, storage := setupTestCardStore(t)

	require.NoError(t, s.Save(model.DefaultCards()))

	raw, ok, err := storage.GetItem(testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t,
		`[{"id":1,"title":"Card 1","description":"This is the description for card 1."},`+
			`{"id":2,"title":"Card 2","description":"This is the description for card 2."},`+
			`{"id":3,"title":"Card 3","description":"This is the description for card 3."}]`,
		raw)

	cards, found, err := s.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.DefaultCards(), cards)
}

func TestBlobCardStore_SaveEmpty(t *testing.T) {
	s, storage := setupTestCardStore(t)

	require.NoError(t, s.Save(nil))

	raw, _, _ := storage.GetItem(testKey)
	assert.Equal(t, "[]", raw)

	cards, found, err := s.Load()
	require.NoError(t, err)
	assert.True(t, found, "an empty stored list is still a stored list")
	assert.Empty(t, cards)
	assert.NotNil(t, cards)
}

func TestBlobCardStore_RoundTripIsByteIdentical(t *testing.T) {
	blobs := []string{
		`[]`,
		`[{"id":1,"title":"Card 1","description":"This is the description for card 1."}]`,
		`[{"id":7,"title":"<b>&</b>","description":"unicode ✓ and \"quotes\" and \\ slashes"},{"id":2,"title":"x","description":"0123456789"}]`,
	}

	for _, blob := range blobs {
		s, storage := setupTestCardStore(t)
		require.NoError(t, storage.SetItem(testKey, blob))

		cards, found, err := s.Load()
		require.NoError(t, err)
		require.True(t, found)
		require.NoError(t, s.Save(cards))

		after, _, _ := storage.GetItem(testKey)
		assert.Equal(t, blob, after)
	}
}

func TestBlobCardStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"malformed", `[{"id":1,`},
		{"not json", `hello`},
		{"empty string", ``},
		{"object instead of list", `{"id":1,"title":"a","description":"b"}`},
		{"null", `null`},
		{"list of numbers", `[1,2,3]`},
		{"missing id", `[{"title":"a","description":"0123456789"}]`},
		{"missing title", `[{"id":1,"description":"0123456789"}]`},
		{"missing description", `[{"id":1,"title":"a"}]`},
		{"null element", `[null]`},
		{"string id", `[{"id":"1","title":"a","description":"b"}]`},
		{"fractional id", `[{"id":1.5,"title":"a","description":"b"}]`},
		{"zero id", `[{"id":0,"title":"a","description":"b"}]`},
		{"duplicate ids", `[{"id":1,"title":"a","description":"b"},{"id":1,"title":"c","description":"d"}]`},
		{"trailing garbage", `[] []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, storage := setupTestCardStore(t)
			require.NoError(t, storage.SetItem(testKey, tt.blob))

			_, found, err := s.Load()
			assert.True(t, found)
			require.Error(t, err)
			assert.True(t, kanerr.IsCorrupt(err), "want corrupt data error, got %v", err)

			var cde *kanerr.CorruptDataError
			require.ErrorAs(t, err, &cde)
			assert.Equal(t, testKey, cde.Key)
		})
	}
}

func TestBlobCardStore_SaveFailure(t *testing.T) {
	cause := errors.New("disk on fire")
	s := NewCardStore(&failingStorage{MemoryStorage: kv.NewMemoryStorage(0), err: cause}, testKey)

	err := s.Save(model.DefaultCards())
	require.Error(t, err)
	assert.True(t, kanerr.IsStorageWrite(err))
	assert.ErrorIs(t, err, cause)
}

func TestBlobCardStore_QuotaIsStorageWriteError(t *testing.T) {
	s := NewCardStore(kv.NewMemoryStorage(20), testKey)

	err := s.Save(model.DefaultCards())
	require.Error(t, err)
	assert.True(t, kanerr.IsStorageWrite(err))
	assert.ErrorIs(t, err, kv.ErrQuotaExceeded)
}

func TestEncode_NoHTMLEscaping(t *testing.T) {
	data, err := Encode([]model.Card{{ID: 1, Title: "a<b>&c", Description: "0123456789"}})
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"title":"a<b>&c","description":"0123456789"}]`, string(data))
}
