package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// FileName is the file the user selection is persisted to.
const FileName = "settings.yaml"

// Selection names the components currently in use.
type Selection struct {
	Factory       string   `mapstructure:"factory" yaml:"factory" json:"factory"`
	Formatters    []string `mapstructure:"formatters" yaml:"formatters" json:"formatters"`
	GenerationLog string   `mapstructure:"generation_log" yaml:"generation_log" json:"generation_log"`
	Observers     []string `mapstructure:"observers" yaml:"observers" json:"observers"`
}

func (s Selection) clone() Selection {
	s.Formatters = append([]string(nil), s.Formatters...)
	s.Observers = append([]string(nil), s.Observers...)
	return s
}

// overlay replaces the fields of s that are set in o.
func (s Selection) overlay(o Selection) Selection {
	if o.Factory != "" {
		s.Factory = o.Factory
	}
	if len(o.Formatters) > 0 {
		s.Formatters = o.Formatters
	}
	if o.GenerationLog != "" {
		s.GenerationLog = o.GenerationLog
	}
	if o.Observers != nil {
		s.Observers = o.Observers
	}
	return s.clone()
}

// Store persists the user selection.
type Store interface {
	// Load returns the saved selection and whether one exists.
	Load() (Selection, bool, error)
	Save(s Selection) error
	// Clear discards the saved selection.
	Clear() error
}

// FileStore keeps the selection in a YAML file through viper.
type FileStore struct {
	path string
}

// NewFileStore stores the selection as FileName inside dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, FileName)}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (Selection, bool, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return Selection{}, false, nil
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return Selection{}, false, fmt.Errorf("failed to read settings %s: %w", s.path, err)
	}

	var sel Selection
	if err := v.Unmarshal(&sel); err != nil {
		return Selection{}, false, fmt.Errorf("failed to decode settings %s: %w", s.path, err)
	}
	return sel, true, nil
}

func (s *FileStore) Save(sel Selection) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("factory", sel.Factory)
	v.Set("formatters", sel.Formatters)
	v.Set("generation_log", sel.GenerationLog)
	v.Set("observers", sel.Observers)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove settings %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps the selection in memory.
type MemoryStore struct {
	mu  sync.Mutex
	sel *Selection
}

func (s *MemoryStore) Load() (Selection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel == nil {
		return Selection{}, false, nil
	}
	return s.sel.clone(), true, nil
}

func (s *MemoryStore) Save(sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := sel.clone()
	s.sel = &c
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = nil
	return nil
}
