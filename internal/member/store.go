package member

import (
	"context"

	"github.com/google/uuid"

	"bmmhub/pkg/domain"
)

// StageCount is one row of the stage overview aggregation.
type StageCount struct {
	Stage  domain.Stage
	Region domain.Region
	Count  int
}

// Store persists participation records. Implementations must enforce the
// (EventID, MembershipNumber) uniqueness constraint (sentinel.ErrDuplicate)
// and optimistic version checks on Update (sentinel.ErrConflict when the
// stored version no longer matches the one the caller read).
type Store interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	FindByAccessToken(ctx context.Context, token string) (*Record, error)
	FindByEventAndMembership(ctx context.Context, eventID, membershipNumber string) (*Record, error)
	FindByTicketToken(ctx context.Context, token uuid.UUID) (*Record, error)

	// Update writes the record if its Version still matches the stored row,
	// then increments Version on the passed record.
	Update(ctx context.Context, record *Record) error

	// ListByStage returns records in a stage, optionally narrowed to one
	// region, ordered by creation time.
	ListByStage(ctx context.Context, eventID string, stage domain.Stage, region *domain.Region) ([]*Record, error)

	// StageCounts aggregates record counts per (stage, region) for reporting.
	StageCounts(ctx context.Context, eventID string) ([]StageCount, error)
}
