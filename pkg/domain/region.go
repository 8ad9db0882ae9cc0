package domain

import dErrors "bmmhub/pkg/domain-errors"

// Region is a domain value identifying a member's union region.
// Invariant: the value must be one of the three configured regions.
//
// Usage: construct via ParseRegion at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Region string

// The three-region configuration observed for the biennial membership meeting.
const (
	RegionNorthern Region = "NORTHERN"
	RegionCentral  Region = "CENTRAL"
	RegionSouthern Region = "SOUTHERN"
)

// validRegions is the single source of truth for valid regions.
var validRegions = map[Region]bool{
	RegionNorthern: true,
	RegionCentral:  true,
	RegionSouthern: true,
}

// Regions lists all configured regions in a stable order.
func Regions() []Region {
	return []Region{RegionNorthern, RegionCentral, RegionSouthern}
}

// ParseRegion constructs a Region from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseRegion(s string) (Region, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "region cannot be empty")
	}
	r := Region(s)
	if !validRegions[r] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown region %q", s)
	}
	return r, nil
}

// IsValid checks if the region is one of the configured values.
func (r Region) IsValid() bool {
	return validRegions[r]
}

func (r Region) String() string {
	return string(r)
}
