package beacon

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/protocol"
)

// DefaultAckTimeout bounds the wait for the peer's ready acknowledgment. A
// beacon is fire-and-forget; an unreachable peer must fail fast, not hang.
const DefaultAckTimeout = 5 * time.Second

// Peripheral sends this client's current temp ID to nearby peers, one
// short-lived exchange per target.
type Peripheral struct {
	logger     *slog.Logger
	ackTimeout time.Duration
}

// NewPeripheral creates a new peripheral beacon role
func NewPeripheral(logger *slog.Logger) *Peripheral {
	return &Peripheral{
		logger:     logger,
		ackTimeout: DefaultAckTimeout,
	}
}

// Send performs one beacon exchange: announce, await the ready ack, transmit
// the payload. There is no retransmission; beyond the single ack the
// exchange is fire-and-forget.
func (p *Peripheral) Send(peerAddr string, entry model.ContactLogEntry) error {
	payload, err := protocol.EncodeBeaconPayload(entry)
	if err != nil {
		return err
	}

	conn, err := net.Dial("udp", peerAddr)
	if err != nil {
		return fmt.Errorf("dialing peer: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Write(protocol.SendingBeacon); err != nil {
		return fmt.Errorf("announcing beacon: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(p.ackTimeout)); err != nil {
		return err
	}
	buf := make([]byte, protocol.MaxMessageSize)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("waiting for beacon ack: %w", err)
	}
	if !bytes.Equal(buf[:n], protocol.ReadyForBeacon) {
		return fmt.Errorf("%w: unexpected beacon ack %q", model.ErrProtocolViolation, buf[:n])
	}

	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("sending beacon: %w", err)
	}

	p.logger.Info("beacon sent",
		slog.String("peer", peerAddr),
		slog.String("temp_id", entry.TempID),
	)
	return nil
}
