// Package kv provides the local key-value storage cards are persisted to.
// It plays the role a browser's local storage plays for a web app: string keys,
// string values, whole-value writes and an optional byte quota.
package kv

import (
	"errors"
	"fmt"

	"github.com/amterp/cardman/internal/config"
	"github.com/amterp/cardman/internal/model"
)

// ErrQuotaExceeded is matched by every QuotaExceededError.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Storage is a local key-value store.
type Storage interface {
	// GetItem returns the value stored under key. ok is false when the key
	// is absent.
	GetItem(key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error

	Close() error
}

// Locator is implemented by backends whose items live in a file on disk.
// Watchers use it to learn which path changes when an item is written.
type Locator interface {
	Location(key string) string
}

// QuotaExceededError indicates a write would push usage past the quota.
type QuotaExceededError struct {
	Key    string
	Quota  int64
	Needed int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("writing %q needs %d bytes, quota is %d", e.Key, e.Needed, e.Quota)
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}

// checkQuota fails when storing value under key on top of others bytes of
// existing usage exceeds quota. A quota <= 0 disables the check.
func checkQuota(quota, others int64, key, value string) error {
	if quota <= 0 {
		return nil
	}
	needed := others + itemSize(key, value)
	if needed > quota {
		return &QuotaExceededError{Key: key, Quota: quota, Needed: needed}
	}
	return nil
}

func itemSize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// Open returns the backend named by backend, rooted under paths.
func Open(backend string, paths *config.Paths, quota int64) (Storage, error) {
	switch backend {
	case model.BackendFile, "":
		return NewFileStorage(paths.KVDir(), quota)
	case model.BackendSQLite:
		return NewSQLiteStorage(paths.SQLitePath(), quota)
	case model.BackendMemory:
		return NewMemoryStorage(quota), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s, %s or %s)",
			backend, model.BackendFile, model.BackendSQLite, model.BackendMemory)
	}
}
