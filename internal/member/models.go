package member

import (
	"time"

	"github.com/google/uuid"

	"bmmhub/pkg/domain"
)

// Record is the per-member, per-event participation aggregate. All stage,
// assignment, attendance, special-vote, and ticket state for one member
// lives here; (EventID, MembershipNumber) is unique.
type Record struct {
	ID               uuid.UUID
	EventID          string
	MembershipNumber string

	// AccessToken is the opaque token member-facing operations are keyed by.
	AccessToken string

	Email  string
	Mobile string
	// HasRealEmail excludes auto-generated placeholder addresses from the
	// email delivery channel.
	HasRealEmail bool

	Region domain.Region
	Stage  domain.Stage

	Preferences Preferences
	Assignment  *Assignment

	// IsAttending is nil until the member decides.
	IsAttending   *bool
	AbsenceReason string
	DecidedAt     *time.Time

	SpecialVote SpecialVote
	Ticket      Ticket

	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastInteractionAt time.Time

	// Version backs optimistic concurrency control; every successful store
	// update increments it.
	Version int64
}

// Preferences captures what the member asked for before assignment.
type Preferences struct {
	// Venues is ordered by preference; first-listed wins on assignment.
	Venues      []string
	TimeBands   []string
	Workplace   string
	Comments    string
	Willingness domain.AttendanceWillingness
	SubmittedAt *time.Time
}

// Assignment is the concrete venue and session the member was placed in.
// Region may differ from the member's home region for capacity balancing;
// CrossRegion flags that case.
type Assignment struct {
	VenueName   string
	StartsAt    time.Time
	Region      domain.Region
	CrossRegion bool
	AssignedAt  time.Time
}

// SpecialVote tracks postal-vote accommodation for members who cannot attend.
// Eligible is always derived from the eligibility policy, never set directly.
type SpecialVote struct {
	Eligible    bool
	Requested   bool
	Status      domain.SpecialVoteStatus
	Application *SpecialVoteApplication
}

// SpecialVoteApplication is the member's submitted application and its
// administrative decision.
type SpecialVoteApplication struct {
	Reason      string
	Evidence    string
	SubmittedAt time.Time
	DecidedAt   *time.Time
	DecidedBy   string
}

// Ticket is the check-in credential issued on attendance confirmation.
// Token is generated at most once and never changes afterwards.
type Ticket struct {
	Token    *uuid.UUID
	Status   domain.TicketStatus
	IssuedAt *time.Time
	SentAt   *time.Time
	Channel  domain.Channel
}

// NewRecord builds a PENDING participation record, as created when the
// event's membership roster is loaded.
func NewRecord(eventID, membershipNumber string, region domain.Region, now time.Time) *Record {
	return &Record{
		ID:               uuid.New(),
		EventID:          eventID,
		MembershipNumber: membershipNumber,
		AccessToken:      uuid.NewString(),
		Region:           region,
		Stage:            domain.StagePending,
		Preferences:      Preferences{Willingness: domain.WillingnessUndecided},
		SpecialVote:      SpecialVote{Status: domain.SpecialVoteNone},
		Ticket:           Ticket{Status: domain.TicketNone},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Assigned reports whether the member holds a venue assignment.
func (r *Record) Assigned() bool {
	return r.Assignment != nil
}

// Touch records member interaction for campaign follow-up queries.
func (r *Record) Touch(now time.Time) {
	r.LastInteractionAt = now
}

// Clone returns a deep copy so in-memory stores never hand out shared state.
func (r *Record) Clone() *Record {
	dup := *r
	dup.Preferences.Venues = append([]string(nil), r.Preferences.Venues...)
	dup.Preferences.TimeBands = append([]string(nil), r.Preferences.TimeBands...)
	if r.Preferences.SubmittedAt != nil {
		t := *r.Preferences.SubmittedAt
		dup.Preferences.SubmittedAt = &t
	}
	if r.Assignment != nil {
		a := *r.Assignment
		dup.Assignment = &a
	}
	if r.IsAttending != nil {
		b := *r.IsAttending
		dup.IsAttending = &b
	}
	if r.DecidedAt != nil {
		t := *r.DecidedAt
		dup.DecidedAt = &t
	}
	if r.SpecialVote.Application != nil {
		app := *r.SpecialVote.Application
		if r.SpecialVote.Application.DecidedAt != nil {
			t := *r.SpecialVote.Application.DecidedAt
			app.DecidedAt = &t
		}
		dup.SpecialVote.Application = &app
	}
	if r.Ticket.Token != nil {
		tok := *r.Ticket.Token
		dup.Ticket.Token = &tok
	}
	if r.Ticket.IssuedAt != nil {
		t := *r.Ticket.IssuedAt
		dup.Ticket.IssuedAt = &t
	}
	if r.Ticket.SentAt != nil {
		t := *r.Ticket.SentAt
		dup.Ticket.SentAt = &t
	}
	return &dup
}
