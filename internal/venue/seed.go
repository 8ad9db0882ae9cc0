package venue

import "time"

// DefaultVenues is the fallback catalog used when no feed file is
// configured, mirroring the standard three-region meeting round.
func DefaultVenues(year int) []Venue {
	starts := func(month time.Month, day, hour int) time.Time {
		return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	}
	return []Venue{
		{Name: "Auckland Aotea Centre", Address: "50 Mayoral Drive, Auckland", Region: "NORTHERN", StartsAt: starts(time.October, 5, 18), Capacity: 800},
		{Name: "Whangarei Forum North", Address: "7 Rust Avenue, Whangarei", Region: "NORTHERN", StartsAt: starts(time.October, 6, 18), Capacity: 250},
		{Name: "Wellington Michael Fowler Centre", Address: "111 Wakefield Street, Wellington", Region: "CENTRAL", StartsAt: starts(time.October, 8, 18), Capacity: 600},
		{Name: "Palmerston North Convention Centre", Address: "354 Main Street, Palmerston North", Region: "CENTRAL", StartsAt: starts(time.October, 9, 18), Capacity: 300},
		{Name: "Christchurch Town Hall", Address: "86 Kilmore Street, Christchurch", Region: "SOUTHERN", StartsAt: starts(time.October, 12, 18), Capacity: 500},
		{Name: "Dunedin Town Hall", Address: "1 Harrop Street, Dunedin", Region: "SOUTHERN", StartsAt: starts(time.October, 13, 18), Capacity: 350},
	}
}
