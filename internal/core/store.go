package core

import "sync"

// Store owns the current schedule. It does no validation; callers validate
// before Set.
type Store struct {
	mu     sync.RWMutex
	config ScheduleConfig
}

// NewStore creates a store holding the initial schedule
func NewStore(initial ScheduleConfig) *Store {
	return &Store{config: initial}
}

// Get returns a copy of the current schedule
func (s *Store) Get() ScheduleConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Set replaces the current schedule
func (s *Store) Set(config ScheduleConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}
