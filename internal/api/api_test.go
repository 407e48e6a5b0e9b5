package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bluetrace-go/internal/api"
	"github.com/mcoot/bluetrace-go/internal/api/response"
	"github.com/mcoot/bluetrace-go/internal/dependencies/mocks"
	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/services/block"
	"github.com/mcoot/bluetrace-go/internal/services/reconcile"
	"github.com/mcoot/bluetrace-go/internal/services/tempid"
	"github.com/mcoot/bluetrace-go/internal/storage/memory"
	"github.com/mcoot/bluetrace-go/internal/testutil"
)

type fixture struct {
	router     http.Handler
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	blocks     *block.Registry
	tempIDs    *tempid.Registry
	reconciler *reconcile.Service
}

func newFixture() *fixture {
	store := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()
	blocks := block.NewRegistry(clk)
	tempIDs := tempid.NewRegistry(store, clk, rnd)
	reconciler := reconcile.New(tempIDs, testutil.NopLogger())

	router := api.NewRouter(api.RouterConfig{
		Logger:     testutil.NopLogger(),
		Reconciler: reconciler,
		Blocks:     blocks,
	})
	return &fixture{
		router:     router,
		clock:      clk,
		random:     rnd,
		blocks:     blocks,
		tempIDs:    tempIDs,
		reconciler: reconciler,
	}
}

func (f *fixture) get(t *testing.T, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	f := newFixture()

	var health response.Health
	code := f.get(t, "/api/v1/health", &health)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", health.Status)
}

func TestContactsEmpty(t *testing.T) {
	f := newFixture()

	var contacts []response.ReconciledContact
	code := f.get(t, "/api/v1/contacts", &contacts)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, contacts)
}

func TestContactsListsReconciledEntries(t *testing.T) {
	f := newFixture()
	f.random.QueueString("00000000000000000001")

	ctx := context.Background()
	_, err := f.tempIDs.Issue(ctx, "alice")
	require.NoError(t, err)
	_, err = f.reconciler.Reconcile(ctx, model.ContactLogEntry{
		TempID: "00000000000000000001",
		Start:  "01/01/21 00:00:00",
		End:    "01/01/21 00:05:00",
	})
	require.NoError(t, err)

	var contacts []response.ReconciledContact
	code := f.get(t, "/api/v1/contacts", &contacts)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, contacts, 1)
	assert.Equal(t, "alice", contacts[0].Username)
	assert.True(t, contacts[0].Known)
	assert.Equal(t, "01/01/21 00:00:00", contacts[0].EncounterStart)
}

func TestBlockedStatus(t *testing.T) {
	f := newFixture()
	f.blocks.Block("alice", 10*time.Second)

	var status response.BlockedStatus
	code := f.get(t, "/api/v1/blocked/alice", &status)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Blocked)

	code = f.get(t, "/api/v1/blocked/bob", &status)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, status.Blocked)
}
