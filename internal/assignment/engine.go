package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bmmhub/internal/assignment/metrics"
	"bmmhub/internal/audit"
	"bmmhub/internal/member"
	"bmmhub/internal/venue"
	"bmmhub/pkg/domain"
	dErrors "bmmhub/pkg/domain-errors"
	"bmmhub/pkg/platform/sentinel"
	"bmmhub/pkg/requestcontext"
)

// bulkWorkers bounds the goroutines a bulk run fans out to.
const bulkWorkers = 8

// updateAttempts bounds retries after an optimistic version race. The seat
// is already reserved at that point, so a retry only re-reads and rewrites
// the record.
const updateAttempts = 3

// AuditPublisher records operator assignment actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Engine places participation records into venues. Capacity is enforced by
// reserving a seat in the CounterStore before the record is written, so the
// count can never exceed a venue's capacity no matter how many assignments
// run in parallel.
type Engine struct {
	members  member.Store
	catalog  *venue.Catalog
	counters CounterStore
	auditor  AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(members member.Store, catalog *venue.Catalog, counters CounterStore, auditor AuditPublisher, logger *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		members:  members,
		catalog:  catalog,
		counters: counters,
		auditor:  auditor,
		logger:   logger,
		metrics:  m,
	}
}

// Unassigned is one record an auto-assignment run could not place.
type Unassigned struct {
	RecordID         uuid.UUID `json:"record_id"`
	MembershipNumber string    `json:"membership_number"`
	Reason           string    `json:"reason"`
}

// AutoResult summarises one auto-assignment run. Assigned records are
// committed even when the run is interrupted partway through.
type AutoResult struct {
	Assigned   int          `json:"assigned"`
	Unassigned []Unassigned `json:"unassigned"`
}

// AutoAssign walks every PREFERENCE_SUBMITTED record of the event, optionally
// narrowed to one region, and places each into its first preferred venue with
// a free seat. Auto-assignment never crosses regions; records whose preferred
// venues are all full or foreign, and records whose write fails, are reported
// back instead of failing the run.
// Context cancellation stops the walk and returns what was committed so far.
func (e *Engine) AutoAssign(ctx context.Context, eventID string, region *domain.Region) (AutoResult, error) {
	records, err := e.members.ListByStage(ctx, eventID, domain.StagePreferenceSubmitted, region)
	if err != nil {
		return AutoResult{}, translate(err)
	}

	result := AutoResult{Unassigned: []Unassigned{}}
	for _, record := range records {
		if ctx.Err() != nil {
			e.logger.WarnContext(ctx, "auto-assignment interrupted",
				slog.Int("assigned", result.Assigned),
				slog.Int("remaining", len(records)-result.Assigned-len(result.Unassigned)))
			return result, ctx.Err()
		}
		reason, err := e.autoAssignOne(ctx, record)
		if err != nil {
			// One bad record must not abort the rest of the batch.
			e.logger.ErrorContext(ctx, "auto-assignment failed for record",
				slog.String("membership_number", record.MembershipNumber),
				slog.String("error", err.Error()))
			reason = err.Error()
		}
		if reason == "" {
			result.Assigned++
			continue
		}
		e.metrics.AutoAssignUnassigned.Inc()
		result.Unassigned = append(result.Unassigned, Unassigned{
			RecordID:         record.ID,
			MembershipNumber: record.MembershipNumber,
			Reason:           reason,
		})
	}

	e.emit(ctx, audit.Event{
		Action:  audit.ActionAutoAssign,
		EventID: eventID,
		Detail:  fmt.Sprintf("assigned=%d unassigned=%d", result.Assigned, len(result.Unassigned)),
	})
	return result, nil
}

// autoAssignOne tries the record's preferred venues in order. An empty reason
// means the record was placed; a non-empty reason means it was skipped.
func (e *Engine) autoAssignOne(ctx context.Context, record *member.Record) (string, error) {
	if len(record.Preferences.Venues) == 0 {
		return "no venue preferences submitted", nil
	}
	for _, name := range record.Preferences.Venues {
		v, err := e.catalog.FindByName(name)
		if err != nil {
			e.logger.WarnContext(ctx, "preferred venue not in catalog",
				slog.String("venue", name),
				slog.String("membership_number", record.MembershipNumber))
			continue
		}
		if v.Region != record.Region {
			continue
		}
		err = e.place(ctx, record, v, false)
		switch {
		case err == nil:
			e.metrics.Assignments.WithLabelValues("auto").Inc()
			return "", nil
		case dErrors.HasCode(err, dErrors.CodeCapacityExceeded):
			continue
		default:
			return "", err
		}
	}
	return "all preferred venues full or outside home region", nil
}

// ManualAssign places one record into an operator-chosen venue, crossing
// regions if the operator says so. Records already holding an assignment are
// moved and their old seat released; assigning the current venue again is a
// no-op.
func (e *Engine) ManualAssign(ctx context.Context, recordID uuid.UUID, venueName string) (*member.Record, error) {
	record, err := e.members.FindByID(ctx, recordID)
	if err != nil {
		return nil, translate(err)
	}
	v, err := e.catalog.FindByName(venueName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("unknown venue %q", venueName))
	}

	if record.Assigned() && record.Assignment.VenueName == v.Name {
		return record, nil
	}

	crossRegion := v.Region != record.Region
	if err := e.place(ctx, record, v, crossRegion); err != nil {
		return nil, err
	}

	e.metrics.Assignments.WithLabelValues("manual").Inc()
	if crossRegion {
		e.metrics.CrossRegion.Inc()
	}
	e.emit(ctx, audit.Event{
		Action:   audit.ActionManualAssign,
		EventID:  record.EventID,
		RecordID: record.ID.String(),
		Detail:   fmt.Sprintf("venue=%s cross_region=%t", v.Name, crossRegion),
	})
	e.logger.InfoContext(ctx, "venue assigned manually",
		slog.String("membership_number", record.MembershipNumber),
		slog.String("venue", v.Name),
		slog.Bool("cross_region", crossRegion))
	return record, nil
}

// BulkEntry is one line of a bulk assignment request.
type BulkEntry struct {
	RecordID  uuid.UUID `json:"record_id" validate:"required"`
	VenueName string    `json:"venue_name" validate:"required"`
}

// BulkFailure is one entry a bulk run could not apply.
type BulkFailure struct {
	RecordID uuid.UUID `json:"record_id"`
	Error    string    `json:"error"`
}

// BulkResult reports per-entry outcomes of a bulk run.
type BulkResult struct {
	Assigned int           `json:"assigned"`
	Failed   []BulkFailure `json:"failed"`
}

// BulkAssign applies many operator-chosen assignments with bounded
// parallelism. Entries fail independently; one bad entry never aborts the
// rest of the batch.
func (e *Engine) BulkAssign(ctx context.Context, eventID string, entries []BulkEntry) (BulkResult, error) {
	var (
		g, gctx  = errgroup.WithContext(ctx)
		outcomes = make([]error, len(entries))
	)
	g.SetLimit(bulkWorkers)
	for i, entry := range entries {
		g.Go(func() error {
			if gctx.Err() != nil {
				outcomes[i] = gctx.Err()
				return nil
			}
			_, err := e.ManualAssign(gctx, entry.RecordID, entry.VenueName)
			outcomes[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{Failed: []BulkFailure{}}
	for i, err := range outcomes {
		if err == nil {
			result.Assigned++
			continue
		}
		result.Failed = append(result.Failed, BulkFailure{
			RecordID: entries[i].RecordID,
			Error:    err.Error(),
		})
	}

	e.emit(ctx, audit.Event{
		Action:  audit.ActionBulkAssign,
		EventID: eventID,
		Detail:  fmt.Sprintf("assigned=%d failed=%d", result.Assigned, len(result.Failed)),
	})
	return result, nil
}

// place reserves a seat, then commits the assignment and stage transition in
// one record write. The reserved seat is released again on any failure, and
// the previously held seat is released only after the move commits.
func (e *Engine) place(ctx context.Context, record *member.Record, v venue.Venue, crossRegion bool) error {
	if record.Stage != domain.StagePreferenceSubmitted && record.Stage != domain.StageAttendancePending {
		return dErrors.Newf(dErrors.CodeStageViolation,
			"cannot assign venue: record is in stage %s", record.Stage)
	}

	if err := e.counters.Reserve(ctx, v.Name, v.Capacity); err != nil {
		if errors.Is(err, sentinel.ErrCapacityFull) {
			e.metrics.CapacityRejections.Inc()
			return dErrors.Wrap(err, dErrors.CodeCapacityExceeded,
				fmt.Sprintf("venue %q is at capacity", v.Name))
		}
		return fmt.Errorf("reserve seat: %w", err)
	}

	now := requestcontext.Now(ctx)
	var previousVenue string

	for attempt := 0; ; attempt++ {
		previousVenue = ""
		if record.Assigned() {
			previousVenue = record.Assignment.VenueName
		}
		record.Assignment = &member.Assignment{
			VenueName:   v.Name,
			StartsAt:    v.StartsAt,
			Region:      v.Region,
			CrossRegion: crossRegion,
			AssignedAt:  now,
		}
		record.Stage = domain.StageAttendancePending
		record.UpdatedAt = now

		err := e.members.Update(ctx, record)
		if err == nil {
			break
		}
		if !errors.Is(err, sentinel.ErrConflict) || attempt+1 >= updateAttempts {
			e.release(ctx, v.Name)
			return translate(err)
		}
		fresh, ferr := e.members.FindByID(ctx, record.ID)
		if ferr != nil {
			e.release(ctx, v.Name)
			return translate(ferr)
		}
		if fresh.Stage != domain.StagePreferenceSubmitted && fresh.Stage != domain.StageAttendancePending {
			e.release(ctx, v.Name)
			return dErrors.Newf(dErrors.CodeStageViolation,
				"cannot assign venue: record moved to stage %s", fresh.Stage)
		}
		*record = *fresh
		if record.Assigned() && record.Assignment.VenueName == v.Name {
			// A concurrent write already seated the record here; our own
			// reservation would count the member twice.
			e.release(ctx, v.Name)
			return nil
		}
	}

	if previousVenue != "" && previousVenue != v.Name {
		e.release(ctx, previousVenue)
	}
	return nil
}

func (e *Engine) release(ctx context.Context, venueName string) {
	if err := e.counters.Release(ctx, venueName); err != nil {
		e.logger.ErrorContext(ctx, "failed to release venue seat",
			slog.String("venue", venueName),
			slog.String("error", err.Error()))
	}
}

func (e *Engine) emit(ctx context.Context, event audit.Event) {
	event.Actor = requestcontext.Actor(ctx)
	if err := e.auditor.Emit(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "failed to emit audit event",
			slog.String("action", string(event.Action)),
			slog.String("error", err.Error()))
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "participation record not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConcurrentModification,
			"record was modified concurrently, retry the operation")
	default:
		return err
	}
}
