package searcher

import (
	"strings"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// Ranking adjusts raw bm25 scores, which are negative with lower meaning
// better. The adjusted score is base divided by the product of the
// multipliers below, so a multiplier under one pushes a result up and one
// over one pushes it down.

// isRankedCoreType is the set the ranking layer boosts as top-level type
// pages: protocols, classes, structs and framework roots. Narrower than the
// content-extraction core set; enums and typealiases rank neutrally.
func isRankedCoreType(kind types.Kind) bool {
	switch kind {
	case types.KindProtocol, types.KindClass, types.KindStruct, types.KindFramework:
		return true
	default:
		return false
	}
}

// kindMultiplier prefers top-level type pages over the long tail of member
// pages that mention the same terms.
func kindMultiplier(kind types.Kind) float64 {
	switch {
	case isRankedCoreType(kind):
		return 0.5
	case kind == types.KindProperty, kind == types.KindMethod:
		return 2.0
	default:
		return 1.0
	}
}

// sourceMultiplier encodes how often each source answers the question a
// developer actually asked. Release notes match everything and answer
// nothing, so they are demoted hardest.
func sourceMultiplier(source types.Source, uri string) float64 {
	lowered := strings.ToLower(uri)
	if strings.Contains(lowered, "release-notes") || strings.Contains(lowered, "releasenotes") {
		return 2.5
	}
	switch source {
	case types.SourceSwiftBook:
		return 0.9
	case types.SourceEvolution:
		return 1.3
	case types.SourceArchive:
		return 1.5
	default:
		return 1.0
	}
}

// titleMultiplier rewards titles that match the query text, in decreasing
// strength: exact match, query as leading prefix, all query words present,
// any query word present.
func titleMultiplier(queryText, title string) float64 {
	q := strings.ToLower(strings.TrimSpace(queryText))
	t := strings.ToLower(title)
	if q == "" {
		return 1.0
	}

	switch {
	case t == q:
		return 0.05
	case strings.HasPrefix(t, q+" "), strings.HasPrefix(t, q+"."):
		return 0.15
	}

	words := strings.Fields(q)
	matched := 0
	for _, w := range words {
		if strings.Contains(t, w) {
			matched++
		}
	}
	switch {
	case matched == len(words):
		return 0.3
	case matched > 0:
		return 0.6
	default:
		return 1.0
	}
}

// adjustScore applies the full ranking policy to one candidate.
func adjustScore(base float64, q ParsedQuery, r *types.SearchResult) float64 {
	mult := kindMultiplier(r.Kind) *
		sourceMultiplier(r.Source, r.URI) *
		titleMultiplier(q.Text, r.Title)

	queryText := strings.ToLower(q.Text)
	title := r.Title

	// A dotted title against a dot-free query usually means a nested member
	// page shadowing the type the user wanted.
	if !strings.Contains(queryText, ".") && strings.Contains(title, ".") {
		mult *= 2.0
	}

	// The query names the kind outright ("View protocol"): strong signal.
	if kindKeywordAgrees(queryText, r.Kind) {
		mult *= 0.4
	}

	// A lone identifier matching a framework-scoped core type is almost
	// always the page the user is after.
	if len(strings.Fields(queryText)) == 1 && r.Framework != "" && isRankedCoreType(r.Kind) {
		mult *= 0.5
	}

	// Short query, sprawling title: probably an incidental mention.
	if len(title) > 30 && len(queryText) < 10 {
		mult *= 1.3
	}

	return base / mult
}

var kindKeywords = map[string]types.Kind{
	"protocol":  types.KindProtocol,
	"class":     types.KindClass,
	"struct":    types.KindStruct,
	"enum":      types.KindEnum,
	"macro":     types.KindMacro,
	"operator":  types.KindOperator,
	"typealias": types.KindTypeAlias,
}

func kindKeywordAgrees(queryText string, kind types.Kind) bool {
	for _, tok := range strings.Fields(queryText) {
		if k, ok := kindKeywords[tok]; ok && k == kind {
			return true
		}
	}
	return false
}
