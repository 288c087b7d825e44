package memory

import (
	"maps"
	"sync"
	"time"

	"github.com/custodia-labs/mediascope/internal/adapters/driven/config/values"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// MemoryConfigPath is the Path of every in-memory config store.
const MemoryConfigPath = ":memory:"

// ConfigStore keeps settings in a map. Nothing is persisted; it backs
// throwaway runs and tests.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a store holding a copy of seed.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, m := range seed {
		maps.Copy(s.values, m)
	}
	return s
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) lookup(key string) any {
	val, _ := s.Get(key)
	return val
}

// GetString retrieves a string value.
func (s *ConfigStore) GetString(key string) string { return values.String(s.lookup(key)) }

// GetInt retrieves an integer value.
func (s *ConfigStore) GetInt(key string) int { return values.Int(s.lookup(key)) }

// GetFloat retrieves a numeric value.
func (s *ConfigStore) GetFloat(key string) float64 { return values.Float(s.lookup(key)) }

// GetDuration retrieves a duration. Numbers are seconds.
func (s *ConfigStore) GetDuration(key string) time.Duration { return values.Duration(s.lookup(key)) }

// GetBool retrieves a boolean value.
func (s *ConfigStore) GetBool(key string) bool { return values.Bool(s.lookup(key)) }

// GetStringSlice retrieves a list value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	return values.StringSlice(s.lookup(key))
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Snapshot returns a copy of all stored values.
func (s *ConfigStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path returns MemoryConfigPath.
func (s *ConfigStore) Path() string { return MemoryConfigPath }
