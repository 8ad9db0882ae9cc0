package venue

import (
	"time"

	"bmmhub/pkg/domain"
)

// Venue is a meeting location with a fixed session time and capacity.
// Capacity is enforced by the assignment engine; the catalog itself is
// read-only at runtime.
type Venue struct {
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Region   domain.Region `json:"region"`
	StartsAt time.Time     `json:"starts_at"`
	Capacity int           `json:"capacity"`
}
