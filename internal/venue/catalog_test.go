package venue

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmmhub/pkg/domain"
	"bmmhub/pkg/platform/sentinel"
)

func testVenues() []Venue {
	starts := time.Date(2026, 5, 12, 19, 0, 0, 0, time.UTC)
	return []Venue{
		{Name: "Auckland Town Hall", Address: "303 Queen St", Region: domain.RegionNorthern, StartsAt: starts, Capacity: 400},
		{Name: "Wellington St James", Address: "77 Courtenay Pl", Region: domain.RegionCentral, StartsAt: starts, Capacity: 250},
		{Name: "Christchurch Arena", Address: "55 Jack Hinton Dr", Region: domain.RegionSouthern, StartsAt: starts, Capacity: 300},
	}
}

func TestCatalogLookup(t *testing.T) {
	c, err := NewCatalog(testVenues())
	require.NoError(t, err)

	v, err := c.FindByName("Wellington St James")
	require.NoError(t, err)
	assert.Equal(t, domain.RegionCentral, v.Region)
	assert.Equal(t, 250, v.Capacity)

	_, err = c.FindByName("Dunedin Town Hall")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestCatalogListByRegion(t *testing.T) {
	c, err := NewCatalog(testVenues())
	require.NoError(t, err)

	southern := c.ListByRegion(domain.RegionSouthern)
	require.Len(t, southern, 1)
	assert.Equal(t, "Christchurch Arena", southern[0].Name)

	assert.Len(t, c.All(), 3)
}

func TestCatalogRejectsBadFeed(t *testing.T) {
	_, err := NewCatalog([]Venue{{Name: "X", Region: "WESTERN", Capacity: 10}})
	require.Error(t, err)

	_, err = NewCatalog([]Venue{{Name: "X", Region: domain.RegionCentral, Capacity: -1}})
	require.Error(t, err)

	dupe := []Venue{
		{Name: "X", Region: domain.RegionCentral, Capacity: 10},
		{Name: "X", Region: domain.RegionCentral, Capacity: 20},
	}
	_, err = NewCatalog(dupe)
	require.Error(t, err)
}

func TestLoadFeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venues.json")
	feed := `[{"name":"Hamilton Hall","address":"1 Victoria St","region":"NORTHERN","starts_at":"2026-05-12T19:00:00Z","capacity":120}]`
	require.NoError(t, os.WriteFile(path, []byte(feed), 0o600))

	venues, err := LoadFeed(path)
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "Hamilton Hall", venues[0].Name)
	assert.Equal(t, 120, venues[0].Capacity)

	c, err := NewCatalog(venues)
	require.NoError(t, err)
	assert.Len(t, c.ListByRegion(domain.RegionNorthern), 1)
}
