package seeder

import (
	"slices"
	"strings"

	"aniseed/model"
)

// DefaultMinEpisodes is the minimum number of usable episodes before a
// playlist is worth keeping, and the point below which the strict filter
// is relaxed.
const DefaultMinEpisodes = 3

// restrictedMarkers flag titles and descriptions of videos that are
// likely gated behind a channel membership.
var restrictedMarkers = []string{
	"member",
	"members-only",
	"members only",
	"only for members",
}

// PlayabilityFilter decides which episode candidates are eligible for
// public embedding in the target region.
type PlayabilityFilter struct {
	Region      string
	MinEpisodes int
}

func NewPlayabilityFilter(region string, minEpisodes int) PlayabilityFilter {
	if minEpisodes <= 0 {
		minEpisodes = DefaultMinEpisodes
	}
	return PlayabilityFilter{
		Region:      strings.ToUpper(region),
		MinEpisodes: minEpisodes,
	}
}

// Apply runs the strict pass and, when it keeps fewer than MinEpisodes
// candidates, retries with only the membership heuristic dropped. The
// relaxed set is adopted only when it reaches the minimum; privacy,
// embeddable and region checks are never relaxed.
func (f PlayabilityFilter) Apply(videos []Video) (kept []Video, relaxed bool) {
	strict := f.filter(videos, false)
	if len(strict) >= f.MinEpisodes {
		return strict, false
	}

	loose := f.filter(videos, true)
	if len(loose) >= f.MinEpisodes {
		return loose, true
	}

	return strict, false
}

func (f PlayabilityFilter) filter(videos []Video, skipMembershipCheck bool) []Video {
	kept := []Video{}
	for _, v := range videos {
		if v.PrivacyStatus != model.PrivacyPublic {
			continue
		}
		if !v.Embeddable {
			continue
		}
		if !skipMembershipCheck && likelyMembersOnly(v) {
			continue
		}
		if !f.regionEligible(v.Region) {
			continue
		}
		kept = append(kept, v)
	}

	return kept
}

// regionEligible: a block-list must not contain the target region; an
// allow-list, when present, must contain it; neither list means the
// video plays everywhere.
func (f PlayabilityFilter) regionEligible(r *model.RegionRestriction) bool {
	if r == nil {
		return true
	}
	if len(r.Blocked) > 0 && slices.Contains(r.Blocked, f.Region) {
		return false
	}
	if len(r.Allowed) > 0 && !slices.Contains(r.Allowed, f.Region) {
		return false
	}

	return true
}

func likelyMembersOnly(v Video) bool {
	text := strings.ToLower(v.Title + " " + v.Description)
	for _, marker := range restrictedMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}

	return false
}
