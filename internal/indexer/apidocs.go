package indexer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/jgivens/appledocs-mcp/internal/storage"
	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// apiPage is the crawler's JSON shape for one API reference page.
type apiPage struct {
	Path                string           `json:"path"`
	Title               string           `json:"title"`
	Kind                string           `json:"kind,omitempty"`
	Language            string           `json:"language,omitempty"`
	Abstract            string           `json:"abstract,omitempty"`
	Declaration         string           `json:"declaration,omitempty"`
	DeclarationLanguage string           `json:"declarationLanguage,omitempty"`
	Overview            string           `json:"overview,omitempty"`
	Module              string           `json:"module,omitempty"`
	Platforms           []apiPlatform    `json:"platforms,omitempty"`
	ConformsTo          []string         `json:"conformsTo,omitempty"`
	InheritedBy         []string         `json:"inheritedBy,omitempty"`
	ConformingTypes     []string         `json:"conformingTypes,omitempty"`
	CodeListings        []apiCodeListing `json:"codeListings,omitempty"`
}

type apiPlatform struct {
	Name       string `json:"name"`
	Introduced string `json:"introduced,omitempty"`
}

type apiCodeListing struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

// notFoundMarkers identify crawler artifacts for pages that no longer exist.
// These are skipped, not indexed.
var notFoundMarkers = []string{
	"the page you're looking for can't be found",
	"the page you requested cannot be found",
}

var availablePattern = regexp.MustCompile(
	`(iOS|macOS|watchOS|tvOS|visionOS)\s+(\d+(?:\.\d+)*)`)

// parseAPIDoc normalizes one crawled JSON page into a Document plus its code
// listings. A nil document with a nil error means the page is a not-found
// artifact and should be counted as skipped.
func parseAPIDoc(raw []byte, relPath string) (*types.Document, []types.CodeExample, error) {
	var page apiPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, nil, fmt.Errorf("decoding %s: %w", relPath, err)
	}

	if page.Path == "" {
		page.Path = strings.TrimSuffix(relPath, ".json")
	}
	if page.Title == "" {
		return nil, nil, fmt.Errorf("page %s has no title: %w", relPath, types.ErrInvalidInput)
	}
	if isNotFoundContent(page.Title, page.Abstract+" "+page.Overview) {
		return nil, nil, nil
	}

	doc := &types.Document{
		URI:                 types.SourceAppleDocs.URI(page.Path),
		Source:              types.SourceAppleDocs,
		Framework:           firstPathSegment(page.Path),
		Language:            defaultString(page.Language, "swift"),
		Title:               page.Title,
		Abstract:            page.Abstract,
		Declaration:         page.Declaration,
		DeclarationLanguage: page.DeclarationLanguage,
		Overview:            page.Overview,
		Module:              page.Module,
		ConformsTo:          page.ConformsTo,
		InheritedBy:         page.InheritedBy,
		ConformingTypes:     page.ConformingTypes,
		ContentHash:         xxhash.Sum64(raw),
		LastIndexed:         time.Now().UTC(),
		Payload:             raw,
	}

	doc.Kind = types.ParseKind(page.Kind)
	if doc.Kind == types.KindUnknown {
		doc.Kind = InferKind(page.Declaration)
	}
	doc.Attributes = storage.ExtractAttributes(page.Declaration)
	doc.Content = strings.TrimSpace(page.Abstract + "\n\n" + page.Overview)

	for _, p := range page.Platforms {
		doc.Platforms = append(doc.Platforms, p.Name)
	}
	doc.Availability, doc.AvailabilitySource = extractAvailability(&page)

	var examples []types.CodeExample
	for i, l := range page.CodeListings {
		examples = append(examples, types.CodeExample{
			URI:      doc.URI,
			Code:     l.Code,
			Language: defaultString(l.Language, "swift"),
			Position: i,
		})
	}
	return doc, examples, nil
}

// isNotFoundContent identifies placeholder pages by title or body marker.
// Every adapter skips these rather than indexing them.
func isNotFoundContent(title, body string) bool {
	if strings.EqualFold(strings.TrimSpace(title), "not found") {
		return true
	}
	lower := strings.ToLower(body)
	for _, marker := range notFoundMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// extractAvailability reads per-platform minimum versions, preferring the
// crawler's platform metadata and falling back to @available clauses in the
// declaration.
func extractAvailability(page *apiPage) (map[types.Platform]string, string) {
	avail := make(map[types.Platform]string)
	for _, p := range page.Platforms {
		if p.Introduced == "" {
			continue
		}
		if plat, ok := platformByName(p.Name); ok {
			avail[plat] = p.Introduced
		}
	}
	if len(avail) > 0 {
		return avail, "metadata"
	}

	for _, clause := range extractAvailableClauses(page.Declaration) {
		for _, m := range availablePattern.FindAllStringSubmatch(clause, -1) {
			if plat, ok := platformByName(m[1]); ok {
				avail[plat] = m[2]
			}
		}
	}
	if len(avail) > 0 {
		return avail, "declaration"
	}
	return nil, ""
}

var availableClausePattern = regexp.MustCompile(`@available\(([^)]*)\)`)

func extractAvailableClauses(declaration string) []string {
	var clauses []string
	for _, m := range availableClausePattern.FindAllStringSubmatch(declaration, -1) {
		clauses = append(clauses, m[1])
	}
	return clauses
}

func platformByName(name string) (types.Platform, bool) {
	for _, p := range types.AllPlatforms {
		if strings.EqualFold(string(p), name) {
			return p, true
		}
	}
	return "", false
}

func firstPathSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.Index(path, "/"); i >= 0 {
		return path[:i]
	}
	return path
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
