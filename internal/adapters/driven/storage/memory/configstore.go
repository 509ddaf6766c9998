package memory

import (
	"sync"

	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Save and Load do nothing, which makes
// it the store of choice for service tests and throwaway sessions.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: map[string]any{}}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt truncates float values; anything non-numeric reads as 0.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	n, _ := asNumber(v)
	return int(n)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	n, _ := asNumber(v)
	return n
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }

// asNumber widens the numeric kinds a caller or decoder may have stored.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
