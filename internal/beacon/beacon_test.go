package beacon

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bluetrace-go/internal/contactlog"
	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/testutil"
)

func testEntry() model.ContactLogEntry {
	return model.ContactLogEntry{
		TempID: "12345678901234567890",
		Start:  "01/01/21 00:00:00",
		End:    "01/01/21 00:15:00",
	}
}

// startCentral runs a central role on an ephemeral port and waits for it to
// bind.
func startCentral(t *testing.T, log contactlog.Log) (*Central, string) {
	t.Helper()

	central := NewCentral(log, testutil.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- central.Start(ctx, "127.0.0.1:0") }()

	require.Eventually(t, func() bool {
		return central.Addr() != nil
	}, 5*time.Second, 10*time.Millisecond)

	t.Cleanup(func() {
		cancel()
		_ = central.Close()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("central did not stop")
		}
	})
	return central, central.Addr().String()
}

func TestBeaconExchange(t *testing.T) {
	log := contactlog.NewMemoryLog()
	_, addr := startCentral(t, log)

	peripheral := NewPeripheral(testutil.NopLogger())
	require.NoError(t, peripheral.Send(addr, testEntry()))

	// Reception is asynchronous relative to Send returning.
	require.Eventually(t, func() bool {
		entries, err := log.ReadAll(context.Background())
		require.NoError(t, err)
		return len(entries) == 1
	}, 5*time.Second, 10*time.Millisecond)

	entries, err := log.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testEntry(), entries[0])
}

func TestBeaconToUnreachablePeerFailsFast(t *testing.T) {
	peripheral := NewPeripheral(testutil.NopLogger())
	peripheral.ackTimeout = 200 * time.Millisecond

	// The surrounding call is what must not hang: bound it, not the beacon.
	done := make(chan error, 1)
	go func() {
		// A port with no listener: the announce goes nowhere and the ack
		// never arrives.
		done <- peripheral.Send("127.0.0.1:1", testEntry())
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("beacon send blocked instead of failing fast")
	}
}

func TestCentralDropsMalformedDatagrams(t *testing.T) {
	log := contactlog.NewMemoryLog()
	_, addr := startCentral(t, log)

	// Raw garbage straight at the port, no announce.
	conn, err := net.Dial("udp", addr)
	require.NoError(t, err)
	_, err = conn.Write([]byte("definitely not a beacon"))
	require.NoError(t, err)
	_ = conn.Close()

	// A well-formed exchange still works afterwards.
	good := NewPeripheral(testutil.NopLogger())
	require.NoError(t, good.Send(addr, testEntry()))

	require.Eventually(t, func() bool {
		entries, err := log.ReadAll(context.Background())
		require.NoError(t, err)
		return len(entries) == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCentralIgnoresUnexpectedAnnounce(t *testing.T) {
	log := contactlog.NewMemoryLog()
	_, addr := startCentral(t, log)

	peripheral := NewPeripheral(testutil.NopLogger())
	require.NoError(t, peripheral.Send(addr, testEntry()))
	require.NoError(t, peripheral.Send(addr, testEntry()))

	require.Eventually(t, func() bool {
		entries, err := log.ReadAll(context.Background())
		require.NoError(t, err)
		return len(entries) == 2
	}, 5*time.Second, 10*time.Millisecond)
}
