package kv

import "sync"

// MemoryStorage keeps items in a map. Nothing survives the process.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
	quota int64
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage(quota int64) *MemoryStorage {
	return &MemoryStorage{
		items: make(map[string]string),
		quota: quota,
	}
}

func (s *MemoryStorage) GetItem(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var others int64
	for k, v := range s.items {
		if k != key {
			others += itemSize(k, v)
		}
	}
	if err := checkQuota(s.quota, others, key, value); err != nil {
		return err
	}

	s.items[key] = value
	return nil
}

func (s *MemoryStorage) RemoveItem(key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
