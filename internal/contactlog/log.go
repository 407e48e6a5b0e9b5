// Package contactlog stores a client's locally observed beacons. The beacon
// receiver appends to the log while the upload path reads it, so every
// implementation serializes access internally: an upload never observes a
// half-written entry.
package contactlog

import (
	"context"

	"github.com/mcoot/bluetrace-go/internal/model"
)

// Log is a client-local record of observed peer temp IDs
type Log interface {
	// Append records one observed beacon.
	Append(ctx context.Context, entry model.ContactLogEntry) error

	// ReadAll returns every recorded entry in append order.
	ReadAll(ctx context.Context) ([]model.ContactLogEntry, error)
}
