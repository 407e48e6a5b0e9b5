package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/protocol"
	"github.com/mcoot/bluetrace-go/internal/services/block"
	"github.com/mcoot/bluetrace-go/internal/services/reconcile"
	"github.com/mcoot/bluetrace-go/internal/services/tempid"
	"github.com/mcoot/bluetrace-go/internal/storage"
)

// session is the per-connection state. It is owned by exactly one handler
// goroutine and never shared.
type session struct {
	conn       net.Conn
	cfg        Config
	storage    storage.Storage
	blocks     *block.Registry
	tempIDs    *tempid.Registry
	reconciler *reconcile.Service
	logger     *slog.Logger

	username string
	tempID   string
}

func newSession(
	conn net.Conn,
	cfg Config,
	storage storage.Storage,
	blocks *block.Registry,
	tempIDs *tempid.Registry,
	reconciler *reconcile.Service,
	logger *slog.Logger,
) *session {
	return &session{
		conn:       conn,
		cfg:        cfg,
		storage:    storage,
		blocks:     blocks,
		tempIDs:    tempIDs,
		reconciler: reconciler,
		logger:     logger,
	}
}

// run authenticates the connection, then dispatches commands until logout or
// a transport/protocol error.
func (s *session) run(ctx context.Context) error {
	if err := s.authenticate(ctx); err != nil {
		return err
	}
	return s.dispatch(ctx)
}

// authenticate walks the handshake: initiate until the client acknowledges,
// collect username and password, refuse blocked users, then verify with a
// bounded attempt budget.
func (s *session) authenticate(ctx context.Context) error {
	if err := s.send(protocol.InitiatingAuth); err != nil {
		return err
	}
	msg, err := s.read()
	if err != nil {
		return err
	}
	// The transport is ordered, but tolerate spurious repeats: keep
	// re-initiating until the client acknowledges.
	for !bytes.Equal(msg, protocol.ReadyToAuth) {
		if err := s.send(protocol.InitiatingAuth); err != nil {
			return err
		}
		if msg, err = s.read(); err != nil {
			return err
		}
	}

	if err := s.send(protocol.ExpectingUsername); err != nil {
		return err
	}
	usernameMsg, err := s.read()
	if err != nil {
		return err
	}
	username := string(usernameMsg)

	if err := s.send(protocol.ExpectingPassword); err != nil {
		return err
	}
	passwordMsg, err := s.read()
	if err != nil {
		return err
	}
	password := string(passwordMsg)

	// Blocked users are refused before any password check; no attempt is
	// consumed.
	if s.blocks.IsBlocked(username) {
		if err := s.send(protocol.AccountIsBlocked); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", model.ErrUserBlocked, username)
	}

	return s.verifyPassword(ctx, username, password)
}

// verifyPassword checks submissions against the credential store, prompting
// again on mismatch up to the attempt budget. An unknown username behaves
// exactly like a wrong password: it falls through the retry loop and locks
// the name out, revealing nothing about account existence.
func (s *session) verifyPassword(ctx context.Context, username, password string) error {
	expected, err := s.storage.LookupPassword(ctx, username)
	known := err == nil
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return fmt.Errorf("looking up credentials: %w", err)
	}

	attempts := 1
	for {
		if known && password == expected {
			if err := s.send(protocol.AuthenticationSuccess); err != nil {
				return err
			}
			s.username = username
			s.logger.Info("user authenticated", slog.String("username", username))
			return nil
		}

		if attempts >= protocol.MaxAuthAttempts {
			s.blocks.Block(username, s.cfg.BlockDuration)
			if err := s.send(protocol.AccountNowBlocked); err != nil {
				return err
			}
			s.logger.Info("user locked out", slog.String("username", username))
			return fmt.Errorf("%w: %s", model.ErrUserLockedOut, username)
		}

		if err := s.send(protocol.InvalidCredentials); err != nil {
			return err
		}
		msg, err := s.read()
		if err != nil {
			return err
		}
		password = string(msg)
		attempts++
	}
}

// dispatch routes authenticated commands until the client logs out.
func (s *session) dispatch(ctx context.Context) error {
	for {
		msg, err := s.read()
		if err != nil {
			return err
		}

		switch {
		case bytes.Equal(msg, protocol.LogoutClient):
			s.logger.Info("user logged out", slog.String("username", s.username))
			return nil

		case bytes.Equal(msg, protocol.DownloadTempID):
			if err := s.downloadTempID(ctx); err != nil {
				return err
			}

		case bytes.Equal(msg, protocol.UploadContactLog):
			if err := s.receiveContactLog(ctx); err != nil {
				return err
			}

		default:
			// Unrecognized tokens are a protocol error; close the session
			// rather than ignoring them forever.
			return fmt.Errorf("%w: unexpected command %q", model.ErrProtocolViolation, msg)
		}
	}
}

// downloadTempID issues a fresh temp ID and returns it to the client.
func (s *session) downloadTempID(ctx context.Context) error {
	record, err := s.tempIDs.Issue(ctx, s.username)
	if err != nil {
		return fmt.Errorf("issuing temp ID: %w", err)
	}
	s.tempID = record.TempID

	s.logger.Info("temp ID generated",
		slog.String("username", s.username),
		slog.String("temp_id", record.TempID),
	)
	return s.send([]byte(record.TempID))
}

// receiveContactLog runs the upload sub-protocol: signal readiness, then read
// fixed-size frames until the sentinel, reconciling each in arrival order.
func (s *session) receiveContactLog(ctx context.Context) error {
	if err := s.send(protocol.ReadyForLogUpload); err != nil {
		return err
	}

	frame := make([]byte, protocol.ContactRecordSize)
	for {
		if err := s.readFull(frame); err != nil {
			return err
		}
		if protocol.IsFinishedFrame(frame) {
			s.logger.Info("contact log received", slog.String("username", s.username))
			return nil
		}

		entry, err := protocol.DecodeContactRecord(frame)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrProtocolViolation, err)
		}
		if _, err := s.reconciler.Reconcile(ctx, entry); err != nil {
			return err
		}
	}
}

// send writes one protocol message.
func (s *session) send(msg []byte) error {
	if err := s.conn.SetWriteDeadline(s.deadline()); err != nil {
		return err
	}
	if _, err := s.conn.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

// read receives one protocol message. Messages never exceed MaxMessageSize
// and each peer write carries exactly one message.
func (s *session) read() ([]byte, error) {
	if err := s.conn.SetReadDeadline(s.deadline()); err != nil {
		return nil, err
	}
	buf := make([]byte, protocol.MaxMessageSize)
	n, err := s.conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}
	return buf[:n], nil
}

// readFull fills buf from the stream, for the fixed-size upload frames.
func (s *session) readFull(buf []byte) error {
	if err := s.conn.SetReadDeadline(s.deadline()); err != nil {
		return err
	}
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		return fmt.Errorf("reading frame: %w", err)
	}
	return nil
}

func (s *session) deadline() time.Time {
	if s.cfg.SessionTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.cfg.SessionTimeout)
}
