// Package report builds read-only operator views over the registration data.
// It never mutates records; everything here is derived from the member store,
// the venue catalog, and the capacity counters.
package report

import (
	"context"
	"fmt"
	"time"

	"bmmhub/internal/assignment"
	"bmmhub/internal/member"
	"bmmhub/internal/venue"
	"bmmhub/pkg/domain"
)

// StageOverview is the registration funnel for one event: how many records
// sit in each stage, in total and per region.
type StageOverview struct {
	EventID  string                            `json:"event_id"`
	Total    int                               `json:"total"`
	ByStage  map[domain.Stage]int              `json:"by_stage"`
	ByRegion map[domain.Region]RegionBreakdown `json:"by_region"`
}

// RegionBreakdown is the per-region slice of the funnel.
type RegionBreakdown struct {
	Total   int                  `json:"total"`
	ByStage map[domain.Stage]int `json:"by_stage"`
}

// VenueUsage is one venue's capacity position.
type VenueUsage struct {
	Name      string        `json:"name"`
	Region    domain.Region `json:"region"`
	StartsAt  string        `json:"starts_at"`
	Capacity  int           `json:"capacity"`
	Assigned  int           `json:"assigned"`
	Remaining int           `json:"remaining"`
}

// Service aggregates reporting queries.
type Service struct {
	members  member.Store
	catalog  *venue.Catalog
	counters assignment.CounterStore
}

func New(members member.Store, catalog *venue.Catalog, counters assignment.CounterStore) *Service {
	return &Service{
		members:  members,
		catalog:  catalog,
		counters: counters,
	}
}

// Stages aggregates record counts per stage and region for the event.
// Stages and regions with no records are present with a zero count so
// dashboard consumers get a stable shape.
func (s *Service) Stages(ctx context.Context, eventID string) (StageOverview, error) {
	counts, err := s.members.StageCounts(ctx, eventID)
	if err != nil {
		return StageOverview{}, fmt.Errorf("stage counts: %w", err)
	}

	overview := StageOverview{
		EventID:  eventID,
		ByStage:  make(map[domain.Stage]int, len(domain.Stages())),
		ByRegion: make(map[domain.Region]RegionBreakdown, len(domain.Regions())),
	}
	for _, stage := range domain.Stages() {
		overview.ByStage[stage] = 0
	}
	for _, region := range domain.Regions() {
		byStage := make(map[domain.Stage]int, len(domain.Stages()))
		for _, stage := range domain.Stages() {
			byStage[stage] = 0
		}
		overview.ByRegion[region] = RegionBreakdown{ByStage: byStage}
	}

	for _, c := range counts {
		overview.Total += c.Count
		overview.ByStage[c.Stage] += c.Count

		breakdown := overview.ByRegion[c.Region]
		breakdown.Total += c.Count
		breakdown.ByStage[c.Stage] += c.Count
		overview.ByRegion[c.Region] = breakdown
	}
	return overview, nil
}

// Venues reports every catalog venue with its assigned count and remaining
// capacity, in region order.
func (s *Service) Venues(ctx context.Context) ([]VenueUsage, error) {
	venues := s.catalog.All()
	usage := make([]VenueUsage, 0, len(venues))
	for _, v := range venues {
		assigned, err := s.counters.Count(ctx, v.Name)
		if err != nil {
			return nil, fmt.Errorf("count venue %q: %w", v.Name, err)
		}
		remaining := v.Capacity - assigned
		if remaining < 0 {
			remaining = 0
		}
		usage = append(usage, VenueUsage{
			Name:      v.Name,
			Region:    v.Region,
			StartsAt:  v.StartsAt.Format(time.RFC3339),
			Capacity:  v.Capacity,
			Assigned:  assigned,
			Remaining: remaining,
		})
	}
	return usage, nil
}
