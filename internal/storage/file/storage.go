// Package file implements storage over flat text files, matching the journal
// formats used by the reference protocol: one "username password" line per
// credential and one "username tempID start end" line per issuance.
package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/protocol"
	"github.com/mcoot/bluetrace-go/internal/storage"
)

// Config holds the backing file locations
type Config struct {
	CredentialsPath string
	TempIDsPath     string
}

// DefaultConfig returns the reference protocol's file names, relative to the
// working directory
func DefaultConfig() Config {
	return Config{
		CredentialsPath: "credentials.txt",
		TempIDsPath:     "tempIDs.txt",
	}
}

// Storage is a flat-file implementation of the storage interface
type Storage struct {
	cfg Config

	credMu   sync.Mutex
	tempIDMu sync.Mutex
}

// New creates a new file storage instance
func New(cfg Config) *Storage {
	return &Storage{cfg: cfg}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// LookupPassword scans the credentials file for the first line matching the
// username. The scan is linear, as in the reference implementation.
func (s *Storage) LookupPassword(ctx context.Context, username string) (string, error) {
	s.credMu.Lock()
	defer s.credMu.Unlock()

	f, err := os.Open(s.cfg.CredentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", model.ErrUserNotFound
		}
		return "", fmt.Errorf("opening credentials file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		if fields[0] == username {
			return fields[1], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading credentials file: %w", err)
	}
	return "", model.ErrUserNotFound
}

func (s *Storage) SaveCredential(ctx context.Context, username, password string) error {
	s.credMu.Lock()
	defer s.credMu.Unlock()

	return appendLine(s.cfg.CredentialsPath, fmt.Sprintf("%s %s\n", username, password))
}

// AppendTempID writes one journal line and syncs it to disk before returning.
func (s *Storage) AppendTempID(ctx context.Context, record model.TempIDRecord) error {
	s.tempIDMu.Lock()
	defer s.tempIDMu.Unlock()

	line := fmt.Sprintf("%s %s %s %s\n",
		record.Username,
		record.TempID,
		protocol.FormatTimestamp(record.IssuedAt),
		protocol.FormatTimestamp(record.ExpiresAt),
	)
	return appendLine(s.cfg.TempIDsPath, line)
}

// ScanTempIDs reads the journal in file order, which is issuance order.
func (s *Storage) ScanTempIDs(ctx context.Context) ([]model.TempIDRecord, error) {
	s.tempIDMu.Lock()
	defer s.tempIDMu.Unlock()

	f, err := os.Open(s.cfg.TempIDsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening temp ID journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []model.TempIDRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		record, err := parseJournalLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading temp ID journal: %w", err)
	}
	return records, nil
}

// parseJournalLine parses "username tempID dd/mm/yy hh:mm:ss dd/mm/yy hh:mm:ss".
// The timestamps contain a space each, so the line splits into six fields.
func parseJournalLine(line string) (model.TempIDRecord, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return model.TempIDRecord{}, fmt.Errorf("%w: journal line %q", model.ErrMalformedRecord, line)
	}

	issuedAt, err := protocol.ParseTimestamp(fields[2] + " " + fields[3])
	if err != nil {
		return model.TempIDRecord{}, fmt.Errorf("%w: issued-at in %q", model.ErrMalformedRecord, line)
	}
	expiresAt, err := protocol.ParseTimestamp(fields[4] + " " + fields[5])
	if err != nil {
		return model.TempIDRecord{}, fmt.Errorf("%w: expires-at in %q", model.ErrMalformedRecord, line)
	}

	return model.TempIDRecord{
		Username:  fields[0],
		TempID:    fields[1],
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	return f.Close()
}
