package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

func TestVersionLessOrEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"10.2", "10.13", true}, // numeric, not lexicographic
		{"10.13", "10.2", false},
		{"16.0", "16.0", true},
		{"17.0", "16.4", false},
		{"10.14.4", "10.15", true},
		{"14", "15.0", true},
		{"garbage", "16.0", true}, // unparseable passes open
		{"16.0", "garbage", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, versionLessOrEqual(tt.a, tt.b), "%s <= %s", tt.a, tt.b)
	}
}

func TestAvailabilityFilter(t *testing.T) {
	result := types.SearchResult{
		URI: "apple-docs://swiftui/view",
		Availability: map[types.Platform]string{
			types.PlatformIOS:   "16.0",
			types.PlatformMacOS: "13.0",
		},
	}

	t.Run("no targets passes", func(t *testing.T) {
		assert.True(t, AvailabilityFilter{}.passes(&result))
	})

	t.Run("satisfied target passes", func(t *testing.T) {
		f := AvailabilityFilter{Targets: map[types.Platform]string{types.PlatformIOS: "17.0"}}
		assert.True(t, f.passes(&result))
	})

	t.Run("too new is dropped", func(t *testing.T) {
		f := AvailabilityFilter{Targets: map[types.Platform]string{types.PlatformIOS: "15.0"}}
		assert.False(t, f.passes(&result))
	})

	t.Run("any failing platform drops", func(t *testing.T) {
		f := AvailabilityFilter{Targets: map[types.Platform]string{
			types.PlatformIOS:   "17.0",
			types.PlatformMacOS: "12.0",
		}}
		assert.False(t, f.passes(&result))
	})

	t.Run("unknown availability passes", func(t *testing.T) {
		bare := types.SearchResult{URI: "apple-docs://foundation/urlsession"}
		f := AvailabilityFilter{Targets: map[types.Platform]string{types.PlatformIOS: "12.0"}}
		assert.True(t, f.passes(&bare))
	})

	t.Run("untargeted platform ignored", func(t *testing.T) {
		f := AvailabilityFilter{Targets: map[types.Platform]string{types.PlatformWatchOS: "4.0"}}
		assert.True(t, f.passes(&result))
	})
}
