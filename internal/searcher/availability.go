package searcher

import (
	"github.com/Masterminds/semver/v3"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// AvailabilityFilter drops results requiring a newer OS than the caller's
// deployment targets. Targets maps a platform to the highest minimum version
// the caller can accept.
type AvailabilityFilter struct {
	Targets map[types.Platform]string
}

// passes reports whether a result is usable under every target. Results
// whose availability on a targeted platform is unknown pass: the filter
// exists to hide APIs that are provably too new, not to punish sparse
// metadata.
func (f AvailabilityFilter) passes(r *types.SearchResult) bool {
	for platform, target := range f.Targets {
		if target == "" {
			continue
		}
		required, ok := r.Availability[platform]
		if !ok || required == "" {
			continue
		}
		if !versionLessOrEqual(required, target) {
			return false
		}
	}
	return true
}

// versionLessOrEqual compares dotted OS versions semantically, so "10.2" is
// less than "10.13" rather than greater as a string comparison would say.
// Unparseable versions pass open.
func versionLessOrEqual(a, b string) bool {
	va, err := semver.NewVersion(a)
	if err != nil {
		return true
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return true
	}
	return va.Compare(vb) <= 0
}
