// Package beacon implements the peer-to-peer proximity exchange: a central
// role receiving beacons over UDP and a peripheral role sending them. The
// exchange is fully independent of the server connection; the two share only
// the temp-ID scheme.
package beacon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/mcoot/bluetrace-go/internal/contactlog"
	"github.com/mcoot/bluetrace-go/internal/protocol"
)

// Central listens for incoming beacons and appends each received temp ID and
// window to the local contact log.
type Central struct {
	log    contactlog.Log
	logger *slog.Logger

	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool
}

// NewCentral creates a new central beacon role
func NewCentral(log contactlog.Log, logger *slog.Logger) *Central {
	return &Central{
		log:    log,
		logger: logger,
	}
}

// Start binds the datagram port and serves beacons until the context is
// cancelled or Close is called.
func (c *Central) Start(ctx context.Context, addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("resolving beacon address: %w", err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("listening for beacons: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info("beacon receiver started", slog.String("addr", conn.LocalAddr().String()))

	buf := make([]byte, protocol.MaxMessageSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		// Short deadline so context cancellation is noticed promptly.
		if err := conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
			return err
		}
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("receiving beacon: %w", err)
		}

		c.handleDatagram(ctx, conn, peer, buf[:n])
	}
}

// handleDatagram processes one received datagram. Malformed datagrams are
// dropped; a receiver on an open port must survive anything thrown at it.
func (c *Central) handleDatagram(ctx context.Context, conn *net.UDPConn, peer *net.UDPAddr, datagram []byte) {
	if bytes.Equal(datagram, protocol.SendingBeacon) {
		if _, err := conn.WriteToUDP(protocol.ReadyForBeacon, peer); err != nil {
			c.logger.Warn("failed to ack beacon", slog.String("peer", peer.String()), slog.String("error", err.Error()))
		}
		return
	}

	entry, version, err := protocol.DecodeBeaconPayload(datagram)
	if err != nil {
		c.logger.Warn("dropping malformed beacon", slog.String("peer", peer.String()), slog.String("error", err.Error()))
		return
	}
	if version != protocol.BeaconVersion {
		c.logger.Warn("dropping beacon with unsupported version",
			slog.String("peer", peer.String()),
			slog.String("version", string(version)),
		)
		return
	}

	if err := c.log.Append(ctx, entry); err != nil {
		c.logger.Error("failed to record beacon", slog.String("error", err.Error()))
		return
	}
	c.logger.Info("beacon received",
		slog.String("peer", peer.String()),
		slog.String("temp_id", entry.TempID),
	)
}

// Addr returns the bound datagram address, or nil before Start.
func (c *Central) Addr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.LocalAddr()
}

// Close stops the receiver.
func (c *Central) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
