package member

import "bmmhub/pkg/domain"

// SpecialVoteEligible is the canonical special-vote eligibility rule: a
// member who is not attending may apply for a postal vote only when their
// home region is Southern.
//
// This is the single place the rule lives. The legacy system re-derived it
// ad hoc at several call sites with conflicting region lists (Southern-only
// in the application flow, Southern+Central in dashboard statistics); the
// application flow is treated as authoritative. Callers consult this only
// after a decline is recorded, so it can never hold for an attending member.
func SpecialVoteEligible(region domain.Region) bool {
	return region == domain.RegionSouthern
}
