package types

import "strings"

// Source is the coarse provenance category of a document. The token doubles
// as the URI scheme and as the query prefix users may type to scope a search
// ("swift-evolution actors").
type Source string

const (
	SourceAppleDocs Source = "apple-docs"      // API reference JSON
	SourceEvolution Source = "swift-evolution" // proposal archive
	SourceSwiftBook Source = "swift-book"      // language reference
	SourceHIG       Source = "hig"             // design guidelines
	SourceArchive   Source = "archive"         // legacy programming guides
	SourcePackages  Source = "packages"        // package registry
)

// AllSources lists every known source in query-prefix matching order.
// Longer tokens first so "swift-evolution" wins over any shorter prefix.
var AllSources = []Source{
	SourceEvolution,
	SourceSwiftBook,
	SourceAppleDocs,
	SourceArchive,
	SourcePackages,
	SourceHIG,
}

// ParseSource maps a token to a Source, returning false for unknown tokens.
func ParseSource(s string) (Source, bool) {
	for _, src := range AllSources {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// DetectSourcePrefix checks whether the query begins with a known source
// token followed by whitespace or end-of-string. It returns the detected
// source and the remaining query text, or ("", query, false) when no prefix
// matches.
func DetectSourcePrefix(query string) (Source, string, bool) {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)
	for _, src := range AllSources {
		tok := string(src)
		if !strings.HasPrefix(lower, tok) {
			continue
		}
		rest := trimmed[len(tok):]
		if rest == "" {
			return src, "", true
		}
		if rest[0] == ' ' || rest[0] == '\t' {
			return src, strings.TrimSpace(rest), true
		}
	}
	return "", query, false
}

// URI builds the canonical document identifier for a path within a source.
func (s Source) URI(path string) string {
	return string(s) + "://" + strings.TrimPrefix(path, "/")
}

// SourceOfURI extracts the source scheme from a document URI. Unknown or
// malformed URIs return false.
func SourceOfURI(uri string) (Source, bool) {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return "", false
	}
	return ParseSource(scheme)
}
