package memory

import (
	"context"
	"sync"

	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	credentials map[string]string
	tempIDs     []model.TempIDRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		credentials: make(map[string]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) LookupPassword(ctx context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	password, ok := s.credentials[username]
	if !ok {
		return "", model.ErrUserNotFound
	}
	return password, nil
}

func (s *Storage) SaveCredential(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[username] = password
	return nil
}

func (s *Storage) AppendTempID(ctx context.Context, record model.TempIDRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempIDs = append(s.tempIDs, record)
	return nil
}

func (s *Storage) ScanTempIDs(ctx context.Context) ([]model.TempIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]model.TempIDRecord, len(s.tempIDs))
	copy(records, s.tempIDs)
	return records, nil
}
