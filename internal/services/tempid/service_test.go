package tempid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bluetrace-go/internal/dependencies/mocks"
	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/storage/memory"
)

type RegistrySuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = NewRegistry(s.storage, s.clock, s.random)
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestIssueJournalsBeforeReturning() {
	s.random.QueueString("12345678901234567890")

	record, err := s.registry.Issue(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", record.Username)
	s.Equal("12345678901234567890", record.TempID)
	s.True(record.ExpiresAt.Equal(record.IssuedAt.Add(TTL)))

	journaled, err := s.storage.ScanTempIDs(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(journaled, 1)
	s.Equal(record, journaled[0])
}

func (s *RegistrySuite) TestIssueThenResolve() {
	s.random.QueueString("12345678901234567890")

	record, err := s.registry.Issue(s.ctx, "alice")
	s.Require().NoError(err)

	username, err := s.registry.Resolve(s.ctx, record.TempID)
	s.Require().NoError(err)
	s.Equal("alice", username)
}

func (s *RegistrySuite) TestResolveNeverIssuedID() {
	_, err := s.registry.Resolve(s.ctx, "99999999999999999999")
	s.ErrorIs(err, model.ErrTempIDNotFound)
}

func (s *RegistrySuite) TestResolveCollisionFirstIssuedWins() {
	// Rig the generator to hand out the same ID twice.
	s.random.QueueString("11111111111111111111", "11111111111111111111")

	_, err := s.registry.Issue(s.ctx, "alice")
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	_, err = s.registry.Issue(s.ctx, "bob")
	s.Require().NoError(err)

	username, err := s.registry.Resolve(s.ctx, "11111111111111111111")
	s.Require().NoError(err)
	s.Equal("alice", username)
}

func (s *RegistrySuite) TestResolveExpiredIDStillResolves() {
	s.random.QueueString("12345678901234567890")

	record, err := s.registry.Issue(s.ctx, "alice")
	s.Require().NoError(err)

	s.clock.Advance(TTL + time.Hour)

	username, err := s.registry.Resolve(s.ctx, record.TempID)
	s.Require().NoError(err)
	s.Equal("alice", username)
}
