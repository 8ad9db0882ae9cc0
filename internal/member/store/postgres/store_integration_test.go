//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"bmmhub/internal/member"
	platformpg "bmmhub/internal/platform/postgres"
	"bmmhub/pkg/domain"
	"bmmhub/pkg/platform/sentinel"
	txcontext "bmmhub/pkg/platform/tx"
)

type StoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("bmmhub_test"),
		tcpostgres.WithUsername("bmmhub"),
		tcpostgres.WithPassword("bmmhub"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	testcontainers.CleanupContainer(s.T(), container)

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := platformpg.Open(s.ctx, dsn)
	s.Require().NoError(err)
	s.Require().NoError(EnsureSchema(s.ctx, db))
	s.db = db
	s.store = New(db)
}

func (s *StoreSuite) newRecord() *member.Record {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return member.NewRecord("bmm-2026", uuid.NewString()[:12], domain.RegionSouthern, now)
}

func (s *StoreSuite) TestCreateAndFindRoundTrip() {
	record := s.newRecord()
	record.Email = "member@union.example"
	record.HasRealEmail = true
	record.Preferences.Venues = []string{"Dunedin Town Hall", "Invercargill Civic"}
	record.Preferences.Willingness = domain.WillingnessYes

	s.Require().NoError(s.store.Create(s.ctx, record))

	got, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record.MembershipNumber, got.MembershipNumber)
	s.Equal(record.AccessToken, got.AccessToken)
	s.Equal(domain.RegionSouthern, got.Region)
	s.Equal(domain.StagePending, got.Stage)
	s.Equal([]string{"Dunedin Town Hall", "Invercargill Civic"}, got.Preferences.Venues)
	s.Equal(domain.WillingnessYes, got.Preferences.Willingness)
	s.Nil(got.Assignment)
	s.Nil(got.Ticket.Token)
	s.EqualValues(0, got.Version)

	byToken, err := s.store.FindByAccessToken(s.ctx, record.AccessToken)
	s.Require().NoError(err)
	s.Equal(record.ID, byToken.ID)

	byMember, err := s.store.FindByEventAndMembership(s.ctx, "bmm-2026", record.MembershipNumber)
	s.Require().NoError(err)
	s.Equal(record.ID, byMember.ID)
}

func (s *StoreSuite) TestDuplicateMembershipRejected() {
	record := s.newRecord()
	s.Require().NoError(s.store.Create(s.ctx, record))

	dup := s.newRecord()
	dup.MembershipNumber = record.MembershipNumber
	err := s.store.Create(s.ctx, dup)
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrDuplicate)
}

func (s *StoreSuite) TestUpdateRoundTripsNestedState() {
	record := s.newRecord()
	s.Require().NoError(s.store.Create(s.ctx, record))

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	attending := false
	token := uuid.New()

	record.Stage = domain.StageAttendanceDeclined
	record.Assignment = &member.Assignment{
		VenueName:   "Dunedin Town Hall",
		StartsAt:    now.AddDate(0, 1, 0),
		Region:      domain.RegionSouthern,
		CrossRegion: false,
		AssignedAt:  now,
	}
	record.IsAttending = &attending
	record.AbsenceReason = "overseas for work"
	record.DecidedAt = &now
	record.SpecialVote.Eligible = true
	record.SpecialVote.Requested = true
	record.SpecialVote.Status = domain.SpecialVotePending
	record.SpecialVote.Application = &member.SpecialVoteApplication{
		Reason:      "overseas for work",
		SubmittedAt: now,
	}
	record.Ticket.Token = &token
	record.Ticket.Status = domain.TicketPending
	record.Ticket.IssuedAt = &now
	record.Touch(now)
	s.Require().NoError(s.store.Update(s.ctx, record))
	s.EqualValues(1, record.Version)

	got, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(domain.StageAttendanceDeclined, got.Stage)
	s.Require().NotNil(got.Assignment)
	s.Equal("Dunedin Town Hall", got.Assignment.VenueName)
	s.Require().NotNil(got.IsAttending)
	s.False(*got.IsAttending)
	s.Equal(domain.SpecialVotePending, got.SpecialVote.Status)
	s.Require().NotNil(got.SpecialVote.Application)
	s.Equal("overseas for work", got.SpecialVote.Application.Reason)
	s.Require().NotNil(got.Ticket.Token)
	s.Equal(token, *got.Ticket.Token)
	s.EqualValues(1, got.Version)

	byTicket, err := s.store.FindByTicketToken(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(record.ID, byTicket.ID)
}

func (s *StoreSuite) TestUpdateVersionRace() {
	record := s.newRecord()
	s.Require().NoError(s.store.Create(s.ctx, record))

	first, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	second, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)

	first.Stage = domain.StagePreferenceSubmitted
	s.Require().NoError(s.store.Update(s.ctx, first))

	second.Stage = domain.StagePreferenceSubmitted
	err = s.store.Update(s.ctx, second)
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *StoreSuite) TestUpdateMissingRecord() {
	record := s.newRecord()
	err := s.store.Update(s.ctx, record)
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestTransactionalWrites() {
	record := s.newRecord()
	s.Require().NoError(s.store.Create(s.ctx, record))
	other := s.newRecord()

	boom := errors.New("abort after writes")
	err := txcontext.Run(s.ctx, s.db, func(ctx context.Context) error {
		record.Stage = domain.StagePreferenceSubmitted
		if err := s.store.Update(ctx, record); err != nil {
			return err
		}
		if err := s.store.Create(ctx, other); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	// Both writes rolled back together.
	got, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(domain.StagePending, got.Stage)
	s.EqualValues(0, got.Version)
	_, err = s.store.FindByID(s.ctx, other.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(txcontext.Run(s.ctx, s.db, func(ctx context.Context) error {
		return s.store.Create(ctx, other)
	}))
	committed, err := s.store.FindByID(s.ctx, other.ID)
	s.Require().NoError(err)
	s.Equal(other.MembershipNumber, committed.MembershipNumber)
}

func (s *StoreSuite) TestListByStageAndCounts() {
	eventID := "bmm-2026-list-" + uuid.NewString()[:8]
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	mk := func(region domain.Region, stage domain.Stage) *member.Record {
		r := member.NewRecord(eventID, uuid.NewString()[:12], region, now)
		r.Stage = stage
		s.Require().NoError(s.store.Create(s.ctx, r))
		return r
	}
	mk(domain.RegionSouthern, domain.StagePreferenceSubmitted)
	mk(domain.RegionSouthern, domain.StagePreferenceSubmitted)
	mk(domain.RegionNorthern, domain.StagePreferenceSubmitted)
	mk(domain.RegionSouthern, domain.StagePending)

	all, err := s.store.ListByStage(s.ctx, eventID, domain.StagePreferenceSubmitted, nil)
	s.Require().NoError(err)
	s.Len(all, 3)

	region := domain.RegionSouthern
	southern, err := s.store.ListByStage(s.ctx, eventID, domain.StagePreferenceSubmitted, &region)
	s.Require().NoError(err)
	s.Len(southern, 2)

	counts, err := s.store.StageCounts(s.ctx, eventID)
	s.Require().NoError(err)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	assert.Equal(s.T(), 4, total)
	require.NotEmpty(s.T(), counts)
}
