package contactlog

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/protocol"
)

// FileLog is a file-backed contact log, one "tempID start end" line per
// observed beacon. The reference protocol keeps one such file per user.
type FileLog struct {
	path string
	mu   sync.Mutex
}

// NewFileLog creates a contact log backed by the given file
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

var _ Log = (*FileLog)(nil)

func (l *FileLog) Append(ctx context.Context, entry model.ContactLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening contact log: %w", err)
	}
	line := fmt.Sprintf("%s %s %s\n", entry.TempID, entry.Start, entry.End)
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("appending to contact log: %w", err)
	}
	return f.Close()
}

func (l *FileLog) ReadAll(ctx context.Context) ([]model.ContactLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening contact log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []model.ContactLogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry, err := parseLogLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading contact log: %w", err)
	}
	return entries, nil
}

// parseLogLine parses "tempID dd/mm/yy hh:mm:ss dd/mm/yy hh:mm:ss". Each
// timestamp contains a space, so the line splits into five fields.
func parseLogLine(line string) (model.ContactLogEntry, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return model.ContactLogEntry{}, fmt.Errorf("%w: contact log line %q", model.ErrMalformedRecord, line)
	}
	entry := model.ContactLogEntry{
		TempID: fields[0],
		Start:  fields[1] + " " + fields[2],
		End:    fields[3] + " " + fields[4],
	}
	if len(entry.TempID) != protocol.TempIDLength {
		return model.ContactLogEntry{}, fmt.Errorf("%w: temp ID in %q", model.ErrMalformedRecord, line)
	}
	return entry, nil
}
