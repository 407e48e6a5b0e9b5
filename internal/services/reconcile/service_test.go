package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bluetrace-go/internal/dependencies/mocks"
	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/services/tempid"
	"github.com/mcoot/bluetrace-go/internal/storage/memory"
	"github.com/mcoot/bluetrace-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	random  *mocks.MockRandom
	tempIDs *tempid.Registry
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.tempIDs = tempid.NewRegistry(s.storage, clk, s.random)
	s.service = New(s.tempIDs, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestReconcileKnownTempID() {
	s.random.QueueString("00000000000000000001")
	_, err := s.tempIDs.Issue(s.ctx, "alice")
	s.Require().NoError(err)

	contact, err := s.service.Reconcile(s.ctx, model.ContactLogEntry{
		TempID: "00000000000000000001",
		Start:  "01/01/21 00:00:00",
		End:    "01/01/21 00:05:00",
	})
	s.Require().NoError(err)
	s.Equal("alice", contact.Username)
	s.True(contact.Known)
	s.Equal("01/01/21 00:00:00", contact.Start)
	s.Equal("00000000000000000001", contact.TempID)
}

func (s *ServiceSuite) TestReconcileUnknownTempID() {
	contact, err := s.service.Reconcile(s.ctx, model.ContactLogEntry{
		TempID: "99999999999999999999",
		Start:  "01/01/21 00:00:00",
		End:    "01/01/21 00:05:00",
	})
	s.Require().NoError(err)
	s.Equal(UnknownUser, contact.Username)
	s.False(contact.Known)
}

func (s *ServiceSuite) TestContactsPreserveArrivalOrder() {
	entries := []model.ContactLogEntry{
		{TempID: "00000000000000000003", Start: "01/01/21 00:00:00", End: "01/01/21 00:05:00"},
		{TempID: "00000000000000000001", Start: "01/01/21 00:10:00", End: "01/01/21 00:15:00"},
		{TempID: "00000000000000000002", Start: "01/01/21 00:01:00", End: "01/01/21 00:06:00"},
	}
	for _, entry := range entries {
		_, err := s.service.Reconcile(s.ctx, entry)
		s.Require().NoError(err)
	}

	contacts := s.service.Contacts()
	s.Require().Len(contacts, 3)
	for i, entry := range entries {
		s.Equal(entry.TempID, contacts[i].TempID)
		s.Equal(entry.Start, contacts[i].Start)
	}
}
