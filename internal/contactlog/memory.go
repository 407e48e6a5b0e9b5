package contactlog

import (
	"context"
	"sync"

	"github.com/mcoot/bluetrace-go/internal/model"
)

// MemoryLog is an in-memory contact log for tests and ephemeral clients
type MemoryLog struct {
	mu      sync.Mutex
	entries []model.ContactLogEntry
}

// NewMemoryLog creates a new in-memory contact log
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

var _ Log = (*MemoryLog)(nil)

func (l *MemoryLog) Append(ctx context.Context, entry model.ContactLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *MemoryLog) ReadAll(ctx context.Context) ([]model.ContactLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]model.ContactLogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries, nil
}
