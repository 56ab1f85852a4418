package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cosmic-chat/backend/internal/model"
)

// FileStore keeps the credential in a JSON file readable only by the owner.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path. The file is created on the
// first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the store file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(&model.Credential{Token: token, Valid: boolPtr(true), LastValidated: s.now().UTC()})
}

func (s *FileStore) MarkInvalid(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.load()
	if err != nil || rec == nil {
		return err
	}
	rec.Valid = boolPtr(false)
	rec.LastValidated = s.now().UTC()
	return s.save(rec)
}

func (s *FileStore) Get(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.load()
	if err != nil || rec == nil {
		return "", false, err
	}
	return rec.Token, rec.Token != "", nil
}

func (s *FileStore) Record(_ context.Context) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not clear credential: %w", err)
	}
	return nil
}

func (s *FileStore) Status(_ context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.load()
	if err != nil {
		return "", err
	}
	return StatusOf(rec), nil
}

func (s *FileStore) load() (*model.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read credential file: %w", err)
	}
	var rec model.Credential
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("could not parse credential file: %w", err)
	}
	return &rec, nil
}

func (s *FileStore) save(rec *model.Credential) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}
