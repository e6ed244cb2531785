package searcher

import (
	"regexp"
	"strings"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// bareAttributeVocabulary lists attribute names recognized without their "@"
// sigil. Only well-known names qualify; an arbitrary capitalized word must
// not silently become a filter.
var bareAttributeVocabulary = map[string]bool{
	"MainActor":           true,
	"Sendable":            true,
	"Observable":          true,
	"available":           true,
	"objc":                true,
	"escaping":            true,
	"propertyWrapper":     true,
	"resultBuilder":       true,
	"discardableResult":   true,
	"frozen":              true,
	"dynamicMemberLookup": true,
	"preconcurrency":      true,
}

var queryAttributePattern = regexp.MustCompile(`@(\w+)(\([^)]*\))?`)

// ParsedQuery is the structured form of a raw query string.
type ParsedQuery struct {
	// Text is the query with the source token and @-attributes removed.
	// Title heuristics run against this, not the raw input.
	Text string

	// Source is non-empty when the query began with a source token.
	Source types.Source

	// Attributes holds attribute names the query demanded, sigil stripped.
	Attributes []string

	// MatchExpr is the sanitized FTS5 expression for Text.
	MatchExpr string
}

// ParseQuery interprets a raw query: a leading source token, attribute
// mentions, then sanitization of what remains.
func ParseQuery(raw string) ParsedQuery {
	return parseQuery(raw, true)
}

// ParseQueryScoped parses a query that already carries an explicit source
// filter. A leading source token stays in the search text rather than being
// split off as a second filter.
func ParseQueryScoped(raw string) ParsedQuery {
	return parseQuery(raw, false)
}

func parseQuery(raw string, detectSource bool) ParsedQuery {
	var p ParsedQuery

	if detectSource {
		p.Source, raw, _ = types.DetectSourcePrefix(raw)
	}

	// The sigil and any argument list come off, but the name itself stays
	// in the match text so the term remains searchable.
	seen := make(map[string]bool)
	raw = queryAttributePattern.ReplaceAllStringFunc(raw, func(m string) string {
		name := queryAttributePattern.FindStringSubmatch(m)[1]
		if !seen[name] {
			seen[name] = true
			p.Attributes = append(p.Attributes, name)
		}
		return name
	})

	// Bare vocabulary words also filter, but stay in the match text since
	// they are legitimate search terms too.
	for _, tok := range strings.Fields(raw) {
		if bareAttributeVocabulary[tok] && !seen[tok] {
			seen[tok] = true
			p.Attributes = append(p.Attributes, tok)
		}
	}

	p.Text = strings.Join(strings.Fields(raw), " ")
	p.MatchExpr = sanitizeMatchExpr(p.Text)
	return p
}

// sanitizeMatchExpr converts free text into an FTS5 expression that cannot
// be misread as query syntax: tokens are split on whitespace and hyphens and
// each is individually quoted. Embedded double quotes are dropped.
func sanitizeMatchExpr(text string) string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '-'
	})
	var quoted []string
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " ")
}
