package response

import "github.com/mcoot/bluetrace-go/internal/model"

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}

// ReconciledContact represents one reconciled contact-log entry in API
// responses
type ReconciledContact struct {
	Username       string `json:"username"`
	Known          bool   `json:"known"`
	TempID         string `json:"temp_id"`
	EncounterStart string `json:"encounter_start"`
}

// ReconciledContactFromModel converts a model.ReconciledContact
func ReconciledContactFromModel(c model.ReconciledContact) ReconciledContact {
	return ReconciledContact{
		Username:       c.Username,
		Known:          c.Known,
		TempID:         c.TempID,
		EncounterStart: c.Start,
	}
}

// BlockedStatus is the response for the blocked-status endpoint
type BlockedStatus struct {
	Username string `json:"username"`
	Blocked  bool   `json:"blocked"`
}
