package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

const implementedProposal = `# Actors

* Proposal: [SE-0306](0306-actors.md)
* Status: **Implemented (Swift 5.5)**

## Introduction

Actors protect their mutable state from data races.
`

func TestParseProposal(t *testing.T) {
	t.Run("implemented proposal with availability", func(t *testing.T) {
		doc, err := parseProposal([]byte(implementedProposal), "0306-actors.md")
		require.NoError(t, err)
		require.NotNil(t, doc)

		assert.Equal(t, "swift-evolution://0306-actors", doc.URI)
		assert.Equal(t, "Actors (SE-0306)", doc.Title)
		assert.Equal(t, types.KindArticle, doc.Kind)
		assert.Equal(t, "15.0", doc.Availability[types.PlatformIOS])
		assert.Equal(t, "12.0", doc.Availability[types.PlatformMacOS])
		assert.Equal(t, "proposal", doc.AvailabilitySource)
	})

	t.Run("rejected proposal skipped", func(t *testing.T) {
		raw := []byte("# Some Feature\n\n* Status: **Rejected**\n")
		doc, err := parseProposal(raw, "0001-feature.md")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("in-review proposal skipped", func(t *testing.T) {
		raw := []byte("# Some Feature\n\n* Status: **Active Review (March 2026)**\n")
		doc, err := parseProposal(raw, "0002-feature.md")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("accepted but unimplemented has no availability", func(t *testing.T) {
		raw := []byte("# Another Feature\n\n* Status: **Accepted**\n")
		doc, err := parseProposal(raw, "0003-feature.md")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Empty(t, doc.Availability)
		assert.Empty(t, doc.AvailabilitySource)
	})

	t.Run("unknown swift version has no availability", func(t *testing.T) {
		raw := []byte("# Future\n\n* Status: **Implemented (Swift 9.9)**\n")
		doc, err := parseProposal(raw, "0004-future.md")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Empty(t, doc.Availability)
	})

	t.Run("not-found placeholder skipped", func(t *testing.T) {
		raw := []byte("# Not Found\n\n* Status: Implemented (Swift 5.5)\n")
		doc, err := parseProposal(raw, "0007-gone.md")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("id derived from filename when body lacks it", func(t *testing.T) {
		raw := []byte("# Bare\n\n* Status: Implemented (Swift 5.9)\n")
		doc, err := parseProposal(raw, "0399-bare.md")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "Bare (SE-0399)", doc.Title)
		assert.Equal(t, "17.0", doc.Availability[types.PlatformIOS])
	})
}
