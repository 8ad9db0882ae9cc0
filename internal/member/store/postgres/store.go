// Package postgres implements the participation record store over a single
// wide table. Optimistic concurrency rides on the version column: updates
// compare the version they read and lose with sentinel.ErrConflict when the
// row moved underneath them.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"bmmhub/internal/member"
	"bmmhub/pkg/domain"
	"bmmhub/pkg/platform/sentinel"
	txcontext "bmmhub/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// EnsureSchema creates the participation_records table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure member schema: %w", err)
	}
	return nil
}

// Store implements member.Store.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer joins a transaction carried in the context, falling back to the
// pool for standalone calls.
func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const recordColumns = `
	id, event_id, membership_number, access_token, email, mobile, has_real_email,
	region, stage,
	pref_venues, pref_time_bands, pref_workplace, pref_comments, pref_willingness, pref_submitted_at,
	assign_venue_name, assign_starts_at, assign_region, assign_cross_region, assign_assigned_at,
	is_attending, absence_reason, decided_at,
	sv_eligible, sv_requested, sv_status, sv_reason, sv_evidence, sv_submitted_at, sv_decided_at, sv_decided_by,
	ticket_token, ticket_status, ticket_issued_at, ticket_sent_at, ticket_channel,
	created_at, updated_at, last_interaction_at, version`

func (s *Store) Create(ctx context.Context, record *member.Record) error {
	const q = `
		INSERT INTO participation_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29,
			$30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40)`

	args, err := recordArgs(record)
	if err != nil {
		return err
	}
	if _, err := s.execer(ctx).ExecContext(ctx, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("create record: %w", sentinel.ErrDuplicate)
		}
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*member.Record, error) {
	return s.findOne(ctx, "id = $1", id)
}

func (s *Store) FindByAccessToken(ctx context.Context, token string) (*member.Record, error) {
	return s.findOne(ctx, "access_token = $1", token)
}

func (s *Store) FindByEventAndMembership(ctx context.Context, eventID, membershipNumber string) (*member.Record, error) {
	return s.findOne(ctx, "event_id = $1 AND membership_number = $2", eventID, membershipNumber)
}

func (s *Store) FindByTicketToken(ctx context.Context, token uuid.UUID) (*member.Record, error) {
	return s.findOne(ctx, "ticket_token = $1", token)
}

func (s *Store) findOne(ctx context.Context, where string, args ...any) (*member.Record, error) {
	q := `SELECT ` + recordColumns + ` FROM participation_records WHERE ` + where
	record, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find record: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	return record, nil
}

func (s *Store) Update(ctx context.Context, record *member.Record) error {
	const q = `
		UPDATE participation_records SET
			email = $3, mobile = $4, has_real_email = $5, region = $6, stage = $7,
			pref_venues = $8, pref_time_bands = $9, pref_workplace = $10,
			pref_comments = $11, pref_willingness = $12, pref_submitted_at = $13,
			assign_venue_name = $14, assign_starts_at = $15, assign_region = $16,
			assign_cross_region = $17, assign_assigned_at = $18,
			is_attending = $19, absence_reason = $20, decided_at = $21,
			sv_eligible = $22, sv_requested = $23, sv_status = $24, sv_reason = $25,
			sv_evidence = $26, sv_submitted_at = $27, sv_decided_at = $28, sv_decided_by = $29,
			ticket_token = $30, ticket_status = $31, ticket_issued_at = $32,
			ticket_sent_at = $33, ticket_channel = $34,
			updated_at = $35, last_interaction_at = $36, version = version + 1
		WHERE id = $1 AND version = $2`

	args, err := updateArgs(record)
	if err != nil {
		return err
	}
	res, err := s.execer(ctx).ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or someone else won the version race.
		if _, ferr := s.FindByID(ctx, record.ID); ferr != nil {
			return ferr
		}
		return fmt.Errorf("update record: %w", sentinel.ErrConflict)
	}
	record.Version++
	return nil
}

func (s *Store) ListByStage(ctx context.Context, eventID string, stage domain.Stage, region *domain.Region) ([]*member.Record, error) {
	q := `SELECT ` + recordColumns + `
		FROM participation_records
		WHERE event_id = $1 AND stage = $2`
	args := []any{eventID, string(stage)}
	if region != nil {
		q += ` AND region = $3`
		args = append(args, region.String())
	}
	q += ` ORDER BY created_at, id`

	rows, err := s.execer(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list records by stage: %w", err)
	}
	defer rows.Close()

	var out []*member.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *Store) StageCounts(ctx context.Context, eventID string) ([]member.StageCount, error) {
	const q = `
		SELECT stage, region, COUNT(*)
		FROM participation_records
		WHERE event_id = $1
		GROUP BY stage, region
		ORDER BY stage, region`
	rows, err := s.execer(ctx).QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("stage counts: %w", err)
	}
	defer rows.Close()

	var out []member.StageCount
	for rows.Next() {
		var (
			c      member.StageCount
			stage  string
			region string
		)
		if err := rows.Scan(&stage, &region, &c.Count); err != nil {
			return nil, fmt.Errorf("scan stage count: %w", err)
		}
		c.Stage = domain.Stage(stage)
		c.Region = domain.Region(region)
		out = append(out, c)
	}
	return out, rows.Err()
}
