package contactlog

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bluetrace-go/internal/model"
)

func testEntries() []model.ContactLogEntry {
	return []model.ContactLogEntry{
		{TempID: "00000000000000000001", Start: "01/01/21 00:00:00", End: "01/01/21 00:05:00"},
		{TempID: "00000000000000000002", Start: "01/01/21 00:10:00", End: "01/01/21 00:25:00"},
	}
}

func TestMemoryLogRoundTrip(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	for _, entry := range testEntries() {
		require.NoError(t, log.Append(ctx, entry))
	}

	entries, err := log.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, testEntries(), entries)
}

func TestFileLogRoundTrip(t *testing.T) {
	log := NewFileLog(filepath.Join(t.TempDir(), "alice_contactlog.txt"))
	ctx := context.Background()

	for _, entry := range testEntries() {
		require.NoError(t, log.Append(ctx, entry))
	}

	entries, err := log.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, testEntries(), entries)
}

func TestFileLogMissingFileReadsEmpty(t *testing.T) {
	log := NewFileLog(filepath.Join(t.TempDir(), "never_written.txt"))

	entries, err := log.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileLogConcurrentAppendAndRead(t *testing.T) {
	log := NewFileLog(filepath.Join(t.TempDir(), "alice_contactlog.txt"))
	ctx := context.Background()
	entry := testEntries()[0]

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, log.Append(ctx, entry))
		}()
		go func() {
			defer wg.Done()
			entries, err := log.ReadAll(ctx)
			assert.NoError(t, err)
			// Reads under the log lock must only ever see whole entries.
			for _, e := range entries {
				assert.Equal(t, entry, e)
			}
		}()
	}
	wg.Wait()

	entries, err := log.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}
