// Package reconcile translates uploaded contact-log entries back to usernames.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/services/tempid"
)

// UnknownUser is the placeholder reported when a temp ID was never issued.
const UnknownUser = "unknown"

// Service reconciles contact-log entries as they arrive and keeps the results
// for the ops surface. Entries are processed strictly in arrival order.
type Service struct {
	tempIDs *tempid.Registry
	logger  *slog.Logger

	mu       sync.Mutex
	contacts []model.ReconciledContact
}

// New creates a new reconciliation service
func New(tempIDs *tempid.Registry, logger *slog.Logger) *Service {
	return &Service{
		tempIDs: tempIDs,
		logger:  logger,
	}
}

// Reconcile resolves one entry's temp ID to a username and records the
// result. An unresolvable ID is not an error: it reconciles to the unknown
// placeholder. The entry's timestamps are echoed as received.
func (s *Service) Reconcile(ctx context.Context, entry model.ContactLogEntry) (model.ReconciledContact, error) {
	contact := model.ReconciledContact{
		TempID: entry.TempID,
		Start:  entry.Start,
	}

	username, err := s.tempIDs.Resolve(ctx, entry.TempID)
	switch {
	case err == nil:
		contact.Username = username
		contact.Known = true
	case errors.Is(err, model.ErrTempIDNotFound):
		contact.Username = UnknownUser
	default:
		return model.ReconciledContact{}, fmt.Errorf("resolving temp ID: %w", err)
	}

	s.mu.Lock()
	s.contacts = append(s.contacts, contact)
	s.mu.Unlock()

	s.logger.Info("contact reconciled",
		slog.String("username", contact.Username),
		slog.String("encounter_start", contact.Start),
		slog.String("temp_id", contact.TempID),
	)
	return contact, nil
}

// Contacts returns all contacts reconciled so far, in arrival order.
func (s *Service) Contacts() []model.ReconciledContact {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts := make([]model.ReconciledContact, len(s.contacts))
	copy(contacts, s.contacts)
	return contacts
}
