// Package client implements the BlueTrace client session: the client side of
// the authentication handshake and the interactive command loop.
package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/mcoot/bluetrace-go/internal/beacon"
	"github.com/mcoot/bluetrace-go/internal/contactlog"
	"github.com/mcoot/bluetrace-go/internal/dependencies/clock"
	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/protocol"
	"github.com/mcoot/bluetrace-go/internal/services/tempid"
)

// Config holds client session settings
type Config struct {
	// Timeout bounds each blocking read against the server.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for the client
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Minute,
	}
}

// Client drives one session against the server. User input and output are
// injected so the loop can be scripted in tests.
type Client struct {
	conn       net.Conn
	cfg        Config
	clock      clock.Clock
	log        contactlog.Log
	peripheral *beacon.Peripheral
	logger     *slog.Logger

	input  *bufio.Scanner
	output io.Writer

	username string
	current  *model.ContactLogEntry
}

// New creates a client session over an established connection
func New(
	conn net.Conn,
	cfg Config,
	clock clock.Clock,
	log contactlog.Log,
	peripheral *beacon.Peripheral,
	input io.Reader,
	output io.Writer,
	logger *slog.Logger,
) *Client {
	return &Client{
		conn:       conn,
		cfg:        cfg,
		clock:      clock,
		log:        log,
		peripheral: peripheral,
		logger:     logger,
		input:      bufio.NewScanner(input),
		output:     output,
	}
}

// Run authenticates and then processes user commands until logout.
func (c *Client) Run(ctx context.Context) error {
	if err := c.Authenticate(ctx); err != nil {
		return err
	}

	for {
		c.printf("> ")
		line, ok := c.readLine()
		if !ok {
			// Input exhausted; log out cleanly.
			return c.logout()
		}
		command := strings.ToLower(strings.TrimSpace(line))

		switch {
		case command == "logout":
			return c.logout()
		case command == "download_tempid":
			if err := c.downloadTempID(); err != nil {
				return err
			}
		case command == "upload_contact_log":
			if err := c.uploadContactLog(ctx); err != nil {
				return err
			}
		case strings.HasPrefix(command, "beacon"):
			c.sendBeacon(command)
		case command == "":
			// Blank line, re-prompt.
		default:
			// Unknown commands get a generic notice and do not end the loop.
			c.printf("Invalid command.\n")
		}
	}
}

// Authenticate handles the client's end of the handshake. The server-provided
// outcome text is always printed verbatim.
func (c *Client) Authenticate(ctx context.Context) error {
	// The server initiates; acknowledge once its signal arrives.
	msg, err := c.read()
	if err != nil {
		return err
	}
	for !bytes.Equal(msg, protocol.InitiatingAuth) {
		if msg, err = c.read(); err != nil {
			return err
		}
	}
	if err := c.send(protocol.ReadyToAuth); err != nil {
		return err
	}

	if err := c.awaitToken(protocol.ExpectingUsername); err != nil {
		return err
	}
	c.printf("> Username: ")
	username, _ := c.readLine()
	if err := c.send([]byte(username)); err != nil {
		return err
	}

	if err := c.awaitToken(protocol.ExpectingPassword); err != nil {
		return err
	}
	c.printf("> Password: ")
	password, _ := c.readLine()
	if err := c.send([]byte(password)); err != nil {
		return err
	}

	// Keep re-prompting for the password as long as the server asks.
	response, err := c.read()
	if err != nil {
		return err
	}
	for bytes.Equal(response, protocol.InvalidCredentials) {
		c.printf("%s\n", response)
		c.printf("> Password: ")
		password, _ = c.readLine()
		if err := c.send([]byte(password)); err != nil {
			return err
		}
		if response, err = c.read(); err != nil {
			return err
		}
	}

	c.printf("%s\n", response)
	if !bytes.Equal(response, protocol.AuthenticationSuccess) {
		return model.ErrAuthFailed
	}
	c.username = username
	return nil
}

// downloadTempID requests a fresh temp ID and records its validity window
// for beaconing.
func (c *Client) downloadTempID() error {
	if err := c.send(protocol.DownloadTempID); err != nil {
		return err
	}
	msg, err := c.read()
	if err != nil {
		return err
	}
	if len(msg) != protocol.TempIDLength {
		return fmt.Errorf("%w: temp ID response %q", model.ErrProtocolViolation, msg)
	}

	now := c.clock.Now()
	c.current = &model.ContactLogEntry{
		TempID: string(msg),
		Start:  protocol.FormatTimestamp(now),
		End:    protocol.FormatTimestamp(now.Add(tempid.TTL)),
	}
	c.printf("Your temp ID is %s.\n", msg)
	return nil
}

// uploadContactLog streams the local log to the server as fixed-size frames.
func (c *Client) uploadContactLog(ctx context.Context) error {
	if err := c.send(protocol.UploadContactLog); err != nil {
		return err
	}
	if err := c.awaitToken(protocol.ReadyForLogUpload); err != nil {
		return err
	}

	entries, err := c.log.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("reading contact log: %w", err)
	}
	for _, entry := range entries {
		frame, err := protocol.EncodeContactRecord(entry)
		if err != nil {
			return err
		}
		if err := c.send(frame); err != nil {
			return err
		}
	}
	if err := c.send(protocol.FinishedFrame()); err != nil {
		return err
	}

	c.printf("Contact log uploaded (%d entries).\n", len(entries))
	return nil
}

// sendBeacon spawns one beacon exchange. It runs independently of the command
// loop: an unreachable peer is reported, never propagated.
func (c *Client) sendBeacon(command string) {
	fields := strings.Fields(command)
	if len(fields) != 3 {
		c.printf("Usage: beacon <host> <port>\n")
		return
	}
	if c.current == nil {
		c.printf("No temp ID yet; run download_tempid first.\n")
		return
	}

	peerAddr := net.JoinHostPort(fields[1], fields[2])
	entry := *c.current
	go func() {
		if err := c.peripheral.Send(peerAddr, entry); err != nil {
			c.logger.Warn("beacon failed",
				slog.String("peer", peerAddr),
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (c *Client) logout() error {
	return c.send(protocol.LogoutClient)
}

// awaitToken reads until the expected token arrives, tolerating repeats of
// earlier messages on the ordered stream.
func (c *Client) awaitToken(want []byte) error {
	for {
		msg, err := c.read()
		if err != nil {
			return err
		}
		if bytes.Equal(msg, want) {
			return nil
		}
	}
}

func (c *Client) send(msg []byte) error {
	if err := c.conn.SetWriteDeadline(c.deadline()); err != nil {
		return err
	}
	if _, err := c.conn.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

func (c *Client) read() ([]byte, error) {
	if err := c.conn.SetReadDeadline(c.deadline()); err != nil {
		return nil, err
	}
	buf := make([]byte, protocol.MaxMessageSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}
	return buf[:n], nil
}

func (c *Client) readLine() (string, bool) {
	if !c.input.Scan() {
		return "", false
	}
	return c.input.Text(), true
}

func (c *Client) printf(format string, args ...any) {
	fmt.Fprintf(c.output, format, args...)
}

func (c *Client) deadline() time.Time {
	if c.cfg.Timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.cfg.Timeout)
}
