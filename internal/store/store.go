package store

import (
	"sync"

	"github.com/muurk/tvremote/internal/device"
)

// Store holds at most one device record
type Store interface {
	// Save replaces the stored record with d
	Save(d *device.Device) error

	// Load returns the stored record, or nil when the slot is empty
	Load() (*device.Device, error)

	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear() error
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu     sync.Mutex
	device *device.Device
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store
func (s *MemoryStore) Save(d *device.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = d.Clone()
	return nil
}

// Load implements Store
func (s *MemoryStore) Load() (*device.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device.Clone(), nil
}

// Clear implements Store
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = nil
	return nil
}
