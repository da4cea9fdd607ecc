package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/tvremote/internal/config"
	"github.com/muurk/tvremote/internal/device"
)

const (
	// FileName is the name of the last-device file in the config directory
	FileName = "last_device.yaml"

	fileVersion = 1
)

// record is the on-disk layout of last_device.yaml
type record struct {
	Version int            `yaml:"version"`
	Device  *device.Device `yaml:"device"`
}

// FileStore keeps the last device in a YAML file
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFileStore creates a store in the tvremote config directory
func DefaultFileStore() (*FileStore, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return NewFileStore(filepath.Join(dir, FileName)), nil
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Save writes d atomically: the record goes to a temporary file that is
// then renamed over the real one.
func (s *FileStore) Save(d *device.Device) error {
	if d == nil {
		return s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := yaml.Marshal(&record{Version: fileVersion, Device: d})
	if err != nil {
		return fmt.Errorf("failed to marshal device: %w", err)
	}

	header := []byte("# tvremote last connected device\n# This file is rewritten on every connect.\n\n")
	data = append(header, data...)

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary store file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save store file: %w", err)
	}

	return nil
}

// Load implements Store. A missing file is an empty slot.
func (s *FileStore) Load() (*device.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}

	if rec.Version != fileVersion {
		return nil, fmt.Errorf("unsupported store version: %d (expected %d)", rec.Version, fileVersion)
	}

	return rec.Device, nil
}

// Clear implements Store
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove store file: %w", err)
	}
	return nil
}
