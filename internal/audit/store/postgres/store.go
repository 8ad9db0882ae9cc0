package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"

	"bmmhub/internal/audit"
	txcontext "bmmhub/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the audit_outbox table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Store implements audit.Store over the audit_outbox table. Rows stay until
// the Kafka forwarder marks them published.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	const q = `
		INSERT INTO audit_outbox (id, occurred_at, actor, action, event_id, record_id, detail, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`
	_, err := s.execer(ctx).ExecContext(ctx, q,
		event.ID, event.Timestamp, event.Actor, string(event.Action),
		event.EventID, event.RecordID, event.Detail,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListUnpublished(ctx context.Context, limit int) ([]audit.Event, error) {
	const q = `
		SELECT id, occurred_at, actor, action, event_id, record_id, detail
		FROM audit_outbox
		WHERE NOT published
		ORDER BY occurred_at
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit outbox: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Actor, &action, &e.EventID, &e.RecordID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `UPDATE audit_outbox SET published = TRUE WHERE id = ANY($1)`
	if _, err := s.db.ExecContext(ctx, q, ids); err != nil {
		return fmt.Errorf("mark audit events published: %w", err)
	}
	return nil
}
