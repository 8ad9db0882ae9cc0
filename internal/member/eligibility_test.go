package member

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bmmhub/pkg/domain"
)

func TestSpecialVoteEligible(t *testing.T) {
	cases := []struct {
		region   domain.Region
		eligible bool
	}{
		{domain.RegionSouthern, true},
		{domain.RegionCentral, false},
		{domain.RegionNorthern, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.eligible, SpecialVoteEligible(tc.region), "region %s", tc.region)
	}
}

func TestSpecialVoteEligibleIsPure(t *testing.T) {
	// Identical input yields identical output across repeated calls.
	for i := 0; i < 100; i++ {
		assert.True(t, SpecialVoteEligible(domain.RegionSouthern))
		assert.False(t, SpecialVoteEligible(domain.RegionCentral))
	}
}
