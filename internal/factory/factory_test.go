package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithMemoryStorage(t *testing.T) {
	app, err := New(Config{StorageType: StorageTypeMemory})
	require.NoError(t, err)
	assert.NotNil(t, app.Storage)
	assert.NotNil(t, app.Blocks)
	assert.NotNil(t, app.TempIDs)
	assert.NotNil(t, app.Reconciler)
}

func TestNewRejectsUnknownStorageType(t *testing.T) {
	_, err := New(Config{StorageType: "punchcards"})
	assert.Error(t, err)
}

func TestNewRedisRequiresConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}

func TestTestAppServicesShareState(t *testing.T) {
	app := NewTestApp()
	app.MockRandom.QueueString("12345678901234567890")

	ctx := context.Background()
	record, err := app.TempIDs.Issue(ctx, "alice")
	require.NoError(t, err)

	username, err := app.TempIDs.Resolve(ctx, record.TempID)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	app.Blocks.Block("alice", 10*time.Second)
	app.MockClock.Advance(10 * time.Second)
	assert.False(t, app.Blocks.IsBlocked("alice"))
}
