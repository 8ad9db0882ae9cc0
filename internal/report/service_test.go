package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmmhub/internal/assignment"
	"bmmhub/internal/member"
	"bmmhub/internal/venue"
	"bmmhub/pkg/domain"
)

func TestStagesAggregatesByStageAndRegion(t *testing.T) {
	members := member.NewInMemoryStore()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	add := func(region domain.Region, stage domain.Stage, n int) {
		for i := 0; i < n; i++ {
			r := member.NewRecord("bmm-2026", region.String()+stage.String()+string(rune('a'+i)), region, now)
			r.Stage = stage
			require.NoError(t, members.Create(context.Background(), r))
		}
	}
	add(domain.RegionSouthern, domain.StagePending, 3)
	add(domain.RegionSouthern, domain.StageAttendanceConfirmed, 2)
	add(domain.RegionNorthern, domain.StagePending, 1)

	catalog, err := venue.NewCatalog(nil)
	require.NoError(t, err)
	svc := New(members, catalog, assignment.NewInMemoryCounterStore())

	overview, err := svc.Stages(context.Background(), "bmm-2026")
	require.NoError(t, err)

	assert.Equal(t, 6, overview.Total)
	assert.Equal(t, 4, overview.ByStage[domain.StagePending])
	assert.Equal(t, 2, overview.ByStage[domain.StageAttendanceConfirmed])
	assert.Equal(t, 5, overview.ByRegion[domain.RegionSouthern].Total)
	assert.Equal(t, 1, overview.ByRegion[domain.RegionNorthern].Total)
	assert.Equal(t, 3, overview.ByRegion[domain.RegionSouthern].ByStage[domain.StagePending])

	// Empty cells exist with zero counts so the report shape is stable.
	assert.Contains(t, overview.ByRegion, domain.RegionCentral)
	assert.Equal(t, 0, overview.ByRegion[domain.RegionCentral].Total)
	assert.Equal(t, 0, overview.ByStage[domain.StageAttendanceDeclined])
}

func TestVenuesReportsRemainingCapacity(t *testing.T) {
	startsAt := time.Date(2026, 10, 12, 18, 30, 0, 0, time.UTC)
	catalog, err := venue.NewCatalog([]venue.Venue{
		{Name: "Dunedin Town Hall", Region: domain.RegionSouthern, StartsAt: startsAt, Capacity: 10},
		{Name: "Auckland Aotea", Region: domain.RegionNorthern, StartsAt: startsAt, Capacity: 3},
	})
	require.NoError(t, err)

	counters := assignment.NewInMemoryCounterStore()
	for i := 0; i < 4; i++ {
		require.NoError(t, counters.Reserve(context.Background(), "Dunedin Town Hall", 10))
	}

	svc := New(member.NewInMemoryStore(), catalog, counters)
	usage, err := svc.Venues(context.Background())
	require.NoError(t, err)
	require.Len(t, usage, 2)

	byName := map[string]VenueUsage{}
	for _, u := range usage {
		byName[u.Name] = u
	}
	dunedin := byName["Dunedin Town Hall"]
	assert.Equal(t, 4, dunedin.Assigned)
	assert.Equal(t, 6, dunedin.Remaining)
	assert.Equal(t, startsAt.Format(time.RFC3339), dunedin.StartsAt)

	aotea := byName["Auckland Aotea"]
	assert.Equal(t, 0, aotea.Assigned)
	assert.Equal(t, 3, aotea.Remaining)
}
