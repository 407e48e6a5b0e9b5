package storage

import (
	"context"

	"github.com/mcoot/bluetrace-go/internal/model"
)

// Storage defines the interface for server-side persistence: the read-only
// credential store and the append-only temp-ID journal.
type Storage interface {
	// LookupPassword returns the password registered for a username, or
	// model.ErrUserNotFound. Callers must not distinguish an unknown user
	// from a wrong password in any externally observable way.
	LookupPassword(ctx context.Context, username string) (string, error)

	// AppendTempID journals one issuance. The record must be durable before
	// this returns: reconciliation may be asked about the ID at any later
	// point, including after the issuing session has ended.
	AppendTempID(ctx context.Context, record model.TempIDRecord) error

	// ScanTempIDs returns all journaled records in issuance order.
	ScanTempIDs(ctx context.Context) ([]model.TempIDRecord, error)

	// SaveCredential registers a username/password pair. Used by seeding and
	// tests; the protocol core never creates users.
	SaveCredential(ctx context.Context, username, password string) error
}
