package venue

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"bmmhub/pkg/domain"
	"bmmhub/pkg/platform/sentinel"
)

// Catalog is the region-partitioned venue directory. It is read-heavy and
// kept in memory; Reload swaps the whole directory when the configuration
// feed changes.
type Catalog struct {
	mu       sync.RWMutex
	byName   map[string]Venue
	byRegion map[domain.Region][]Venue
}

// NewCatalog builds a catalog from a venue list. Venues with invalid regions
// or negative capacity are rejected so bad feed entries surface at startup,
// not at assignment time.
func NewCatalog(venues []Venue) (*Catalog, error) {
	c := &Catalog{}
	if err := c.replace(venues); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFeed reads the venue configuration feed from a JSON file.
func LoadFeed(path string) ([]Venue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venue feed: %w", err)
	}
	var venues []Venue
	if err := json.Unmarshal(raw, &venues); err != nil {
		return nil, fmt.Errorf("parse venue feed: %w", err)
	}
	return venues, nil
}

// Reload replaces the directory contents, e.g. after the feed is re-read.
func (c *Catalog) Reload(venues []Venue) error {
	return c.replace(venues)
}

func (c *Catalog) replace(venues []Venue) error {
	byName := make(map[string]Venue, len(venues))
	byRegion := make(map[domain.Region][]Venue)
	for _, v := range venues {
		if !v.Region.IsValid() {
			return fmt.Errorf("venue %q: unknown region %q", v.Name, v.Region)
		}
		if v.Capacity < 0 {
			return fmt.Errorf("venue %q: negative capacity %d", v.Name, v.Capacity)
		}
		if _, exists := byName[v.Name]; exists {
			return fmt.Errorf("venue %q: duplicate name in feed", v.Name)
		}
		byName[v.Name] = v
		byRegion[v.Region] = append(byRegion[v.Region], v)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName = byName
	c.byRegion = byRegion
	return nil
}

// FindByName looks up a venue by its unique name.
func (c *Catalog) FindByName(name string) (Venue, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.byName[name]
	if !ok {
		return Venue{}, fmt.Errorf("venue %q: %w", name, sentinel.ErrNotFound)
	}
	return v, nil
}

// ListByRegion returns the venues in a region, in feed order.
func (c *Catalog) ListByRegion(region domain.Region) []Venue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Venue(nil), c.byRegion[region]...)
}

// All returns every venue in the catalog.
func (c *Catalog) All() []Venue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Venue, 0, len(c.byName))
	for _, region := range domain.Regions() {
		out = append(out, c.byRegion[region]...)
	}
	return out
}
