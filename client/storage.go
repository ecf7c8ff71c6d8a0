package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

// Storage persists the logged-in account; nil means logged out.
type Storage interface {
	Load() (*models.AccountStorage, error)
	Save(account *models.AccountStorage) error
}

type MemoryStorage struct {
	mu      sync.Mutex
	account *models.AccountStorage
}

func (s *MemoryStorage) Load() (*models.AccountStorage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil, nil
	}
	account := *s.account
	return &account, nil
}

func (s *MemoryStorage) Save(account *models.AccountStorage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account == nil {
		s.account = nil
		return nil
	}
	stored := *account
	s.account = &stored
	return nil
}

// FileStorage keeps the account as JSON in Path. A missing or invalid file
// reads as logged out.
type FileStorage struct {
	Path string
	mu   sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

// DefaultSessionPath is the session file under the user config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "trackerctl", "account.json"), nil
}

func (s *FileStorage) Load() (*models.AccountStorage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	return models.DecodeOr[*models.AccountStorage](data, nil), nil
}

func (s *FileStorage) Save(account *models.AccountStorage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}
