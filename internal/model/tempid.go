package model

import "time"

// TempIDRecord is one journaled temp-ID issuance. Records are append-only:
// they are never mutated or removed, even after expiry, so that old IDs stay
// resolvable during reconciliation.
type TempIDRecord struct {
	Username  string
	TempID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
