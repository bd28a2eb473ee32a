package kv

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const itemSuffix = ".item"

// FileStorage keeps one file per key under a directory.
// Writes land in a temp file that is renamed over the item, so readers never
// see a half-written value.
type FileStorage struct {
	mu    sync.Mutex
	dir   string
	quota int64
}

// NewFileStorage creates the directory if needed and returns a store rooted there.
func NewFileStorage(dir string, quota int64) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{dir: dir, quota: quota}, nil
}

// Location returns the file holding key.
func (s *FileStorage) Location(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+itemSuffix)
}

func (s *FileStorage) GetItem(key string) (string, bool, error) {
	data, err := os.ReadFile(s.Location(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read item %q: %w", key, err)
	}
	return string(data), true, nil
}

func (s *FileStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		others, err := s.usageExcluding(key)
		if err != nil {
			return err
		}
		if err := checkQuota(s.quota, others, key, value); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write item %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write item %q: %w", key, err)
	}

	if err := os.Rename(tmpPath, s.Location(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace item %q: %w", key, err)
	}
	return nil
}

func (s *FileStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Location(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove item %q: %w", key, err)
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}

// usageExcluding sums key and value sizes of every stored item except key.
func (s *FileStorage) usageExcluding(key string) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read storage directory: %w", err)
	}

	var total int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, itemSuffix) {
			continue
		}
		k, err := url.PathUnescape(strings.TrimSuffix(name, itemSuffix))
		if err != nil || k == key {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // removed between ReadDir and Info
		}
		total += int64(len(k)) + info.Size()
	}
	return total, nil
}
