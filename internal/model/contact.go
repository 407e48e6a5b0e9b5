package model

// ContactLogEntry is one observed peer temp ID and the window during which it
// was current. Timestamps are carried as wire-format text and are never
// reinterpreted: an uploaded entry is echoed back exactly as recorded.
type ContactLogEntry struct {
	TempID string
	Start  string
	End    string
}

// ReconciledContact is the server-side translation of an uploaded entry.
// Known is false when the temp ID was never issued by this server.
type ReconciledContact struct {
	Username string
	Known    bool
	TempID   string
	Start    string
}
