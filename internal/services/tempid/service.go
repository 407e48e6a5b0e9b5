// Package tempid issues and resolves rotating pseudonymous identifiers.
package tempid

import (
	"context"
	"fmt"
	"time"

	"github.com/mcoot/bluetrace-go/internal/dependencies/clock"
	"github.com/mcoot/bluetrace-go/internal/dependencies/random"
	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/protocol"
	"github.com/mcoot/bluetrace-go/internal/storage"
)

// TTL is how long an issued temp ID remains valid.
const TTL = 15 * time.Minute

// Registry issues temp IDs and resolves them back to usernames via the
// append-only journal. Uniqueness is probabilistic, not enforced: Resolve
// returns the earliest-issued record for an ID.
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
}

// NewRegistry creates a new temp-ID registry
func NewRegistry(storage storage.Storage, clock clock.Clock, random random.Random) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
		random:  random,
	}
}

// Issue generates a temp ID for the user and journals it. The journal append
// must succeed before the ID is handed out, so reconciliation can never be
// asked about an ID the registry has no record of.
func (r *Registry) Issue(ctx context.Context, username string) (model.TempIDRecord, error) {
	now := r.clock.Now()
	record := model.TempIDRecord{
		Username:  username,
		TempID:    r.random.String(protocol.TempIDLength, protocol.TempIDAlphabet),
		IssuedAt:  now,
		ExpiresAt: now.Add(TTL),
	}

	if err := r.storage.AppendTempID(ctx, record); err != nil {
		return model.TempIDRecord{}, fmt.Errorf("journaling temp ID: %w", err)
	}
	return record, nil
}

// Resolve returns the username of the earliest-issued record matching the
// temp ID, or model.ErrTempIDNotFound if no such ID was ever issued. Expired
// records still resolve; expiry bounds validity on the wire, not in the
// journal.
func (r *Registry) Resolve(ctx context.Context, tempID string) (string, error) {
	records, err := r.storage.ScanTempIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("scanning temp ID journal: %w", err)
	}
	for _, record := range records {
		if record.TempID == tempID {
			return record.Username, nil
		}
	}
	return "", model.ErrTempIDNotFound
}
