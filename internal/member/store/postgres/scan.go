package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bmmhub/internal/member"
	"bmmhub/pkg/domain"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// marshalList returns list columns as JSON text; string parameters let the
// server cast to jsonb, where a []byte would arrive as bytea.
func marshalList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	return string(raw), nil
}

// recordArgs flattens a record into the full column order of recordColumns.
func recordArgs(r *member.Record) ([]any, error) {
	shared, err := sharedArgs(r)
	if err != nil {
		return nil, err
	}
	args := []any{
		r.ID, r.EventID, r.MembershipNumber, r.AccessToken,
	}
	args = append(args, shared...)
	args = append(args, r.CreatedAt, r.UpdatedAt, nullTime(timePtr(r.LastInteractionAt)), r.Version)
	return args, nil
}

// updateArgs orders arguments for the UPDATE statement: key and expected
// version first, then the mutable columns.
func updateArgs(r *member.Record) ([]any, error) {
	shared, err := sharedArgs(r)
	if err != nil {
		return nil, err
	}
	args := []any{r.ID, r.Version}
	args = append(args, shared...)
	args = append(args, r.UpdatedAt, nullTime(timePtr(r.LastInteractionAt)))
	return args, nil
}

// sharedArgs covers the columns written by both INSERT and UPDATE, from
// email through ticket_channel.
func sharedArgs(r *member.Record) ([]any, error) {
	venues, err := marshalList(r.Preferences.Venues)
	if err != nil {
		return nil, err
	}
	timeBands, err := marshalList(r.Preferences.TimeBands)
	if err != nil {
		return nil, err
	}

	args := []any{
		r.Email, r.Mobile, r.HasRealEmail,
		r.Region.String(), r.Stage.String(),
		venues, timeBands, r.Preferences.Workplace, r.Preferences.Comments,
		string(r.Preferences.Willingness), nullTime(r.Preferences.SubmittedAt),
	}

	if r.Assignment != nil {
		args = append(args,
			sql.NullString{String: r.Assignment.VenueName, Valid: true},
			sql.NullTime{Time: r.Assignment.StartsAt, Valid: true},
			sql.NullString{String: r.Assignment.Region.String(), Valid: true},
			sql.NullBool{Bool: r.Assignment.CrossRegion, Valid: true},
			sql.NullTime{Time: r.Assignment.AssignedAt, Valid: true},
		)
	} else {
		args = append(args, sql.NullString{}, sql.NullTime{}, sql.NullString{}, sql.NullBool{}, sql.NullTime{})
	}

	args = append(args, nullBool(r.IsAttending), r.AbsenceReason, nullTime(r.DecidedAt))

	args = append(args, r.SpecialVote.Eligible, r.SpecialVote.Requested, string(r.SpecialVote.Status))
	if app := r.SpecialVote.Application; app != nil {
		args = append(args,
			sql.NullString{String: app.Reason, Valid: true},
			sql.NullString{String: app.Evidence, Valid: true},
			sql.NullTime{Time: app.SubmittedAt, Valid: true},
			nullTime(app.DecidedAt),
			sql.NullString{String: app.DecidedBy, Valid: app.DecidedBy != ""},
		)
	} else {
		args = append(args, sql.NullString{}, sql.NullString{}, sql.NullTime{}, sql.NullTime{}, sql.NullString{})
	}

	var ticketToken any
	if r.Ticket.Token != nil {
		ticketToken = *r.Ticket.Token
	}
	args = append(args, ticketToken, string(r.Ticket.Status),
		nullTime(r.Ticket.IssuedAt), nullTime(r.Ticket.SentAt), string(r.Ticket.Channel))

	return args, nil
}

func scanRecord(row rowScanner) (*member.Record, error) {
	var (
		r                 member.Record
		region, stage     string
		venues, timeBands []byte
		willingness       string
		prefSubmittedAt   sql.NullTime

		assignVenue  sql.NullString
		assignStarts sql.NullTime
		assignRegion sql.NullString
		assignCross  sql.NullBool
		assignedAt   sql.NullTime

		isAttending sql.NullBool
		decidedAt   sql.NullTime

		svStatus      string
		svReason      sql.NullString
		svEvidence    sql.NullString
		svSubmittedAt sql.NullTime
		svDecidedAt   sql.NullTime
		svDecidedBy   sql.NullString

		ticketToken    uuid.NullUUID
		ticketStatus   string
		ticketIssuedAt sql.NullTime
		ticketSentAt   sql.NullTime
		ticketChannel  string

		lastInteraction sql.NullTime
	)

	err := row.Scan(
		&r.ID, &r.EventID, &r.MembershipNumber, &r.AccessToken, &r.Email, &r.Mobile, &r.HasRealEmail,
		&region, &stage,
		&venues, &timeBands, &r.Preferences.Workplace, &r.Preferences.Comments, &willingness, &prefSubmittedAt,
		&assignVenue, &assignStarts, &assignRegion, &assignCross, &assignedAt,
		&isAttending, &r.AbsenceReason, &decidedAt,
		&r.SpecialVote.Eligible, &r.SpecialVote.Requested, &svStatus, &svReason, &svEvidence,
		&svSubmittedAt, &svDecidedAt, &svDecidedBy,
		&ticketToken, &ticketStatus, &ticketIssuedAt, &ticketSentAt, &ticketChannel,
		&r.CreatedAt, &r.UpdatedAt, &lastInteraction, &r.Version,
	)
	if err != nil {
		return nil, err
	}

	r.Region = domain.Region(region)
	r.Stage = domain.Stage(stage)

	if err := json.Unmarshal(venues, &r.Preferences.Venues); err != nil {
		return nil, fmt.Errorf("unmarshal venues: %w", err)
	}
	if err := json.Unmarshal(timeBands, &r.Preferences.TimeBands); err != nil {
		return nil, fmt.Errorf("unmarshal time bands: %w", err)
	}
	r.Preferences.Willingness = domain.AttendanceWillingness(willingness)
	r.Preferences.SubmittedAt = timeFromNull(prefSubmittedAt)

	if assignVenue.Valid {
		r.Assignment = &member.Assignment{
			VenueName:   assignVenue.String,
			StartsAt:    assignStarts.Time,
			Region:      domain.Region(assignRegion.String),
			CrossRegion: assignCross.Bool,
			AssignedAt:  assignedAt.Time,
		}
	}

	if isAttending.Valid {
		b := isAttending.Bool
		r.IsAttending = &b
	}
	r.DecidedAt = timeFromNull(decidedAt)

	r.SpecialVote.Status = domain.SpecialVoteStatus(svStatus)
	if svReason.Valid || svSubmittedAt.Valid {
		r.SpecialVote.Application = &member.SpecialVoteApplication{
			Reason:      svReason.String,
			Evidence:    svEvidence.String,
			SubmittedAt: svSubmittedAt.Time,
			DecidedAt:   timeFromNull(svDecidedAt),
			DecidedBy:   svDecidedBy.String,
		}
	}

	if ticketToken.Valid {
		tok := ticketToken.UUID
		r.Ticket.Token = &tok
	}
	r.Ticket.Status = domain.TicketStatus(ticketStatus)
	r.Ticket.IssuedAt = timeFromNull(ticketIssuedAt)
	r.Ticket.SentAt = timeFromNull(ticketSentAt)
	r.Ticket.Channel = domain.Channel(ticketChannel)

	if lastInteraction.Valid {
		r.LastInteractionAt = lastInteraction.Time
	}
	return &r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func timeFromNull(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	out := t.Time
	return &out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
