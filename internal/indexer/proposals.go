package indexer

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// swiftOSMinimums maps a Swift language version to the first OS releases
// whose runtime ships that version. Proposal availability is derived from
// this table: a feature "Implemented (Swift 5.9)" needs at least the listed
// iOS and macOS.
var swiftOSMinimums = map[string]struct{ ios, macos string }{
	"5.0":  {"12.2", "10.14.4"},
	"5.1":  {"13.0", "10.15"},
	"5.2":  {"13.4", "10.15.4"},
	"5.3":  {"14.0", "11.0"},
	"5.4":  {"14.5", "11.3"},
	"5.5":  {"15.0", "12.0"},
	"5.6":  {"15.4", "12.3"},
	"5.7":  {"16.0", "13.0"},
	"5.8":  {"16.4", "13.3"},
	"5.9":  {"17.0", "14.0"},
	"5.10": {"17.4", "14.4"},
	"6.0":  {"18.0", "15.0"},
	"6.1":  {"18.4", "15.4"},
}

var (
	proposalIDPattern     = regexp.MustCompile(`(?i)\[SE-(\d{4})\]`)
	proposalStatusPattern = regexp.MustCompile(`(?im)^\*\s*Status:\s*(.+)$`)
	implementedInPattern  = regexp.MustCompile(`(?i)implemented\s*\(swift\s+(\d+\.\d+)`)
	headingPattern        = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// parseProposal normalizes one evolution proposal. Proposals that are not
// implemented or accepted return (nil, nil): they describe language features
// a developer cannot use yet and only add noise to search results.
func parseProposal(raw []byte, relPath string) (*types.Document, error) {
	text := string(raw)

	title := strings.TrimSuffix(path.Base(relPath), ".md")
	if m := headingPattern.FindStringSubmatch(text); m != nil {
		title = strings.TrimSpace(m[1])
	}
	if isNotFoundContent(title, text) {
		return nil, nil
	}

	status := ""
	if m := proposalStatusPattern.FindStringSubmatch(text); m != nil {
		status = strings.TrimSpace(m[1])
	}
	lower := strings.ToLower(status)
	if !strings.Contains(lower, "implemented") && !strings.Contains(lower, "accepted") {
		return nil, nil
	}

	id := ""
	if m := proposalIDPattern.FindStringSubmatch(text); m != nil {
		id = "SE-" + m[1]
	} else if m := regexp.MustCompile(`^(\d{4})-`).FindStringSubmatch(path.Base(relPath)); m != nil {
		id = "SE-" + m[1]
	}
	if id != "" && !strings.Contains(title, id) {
		title = fmt.Sprintf("%s (%s)", title, id)
	}

	doc := &types.Document{
		URI:         types.SourceEvolution.URI(strings.TrimSuffix(relPath, ".md")),
		Source:      types.SourceEvolution,
		Language:    "swift",
		Title:       title,
		Content:     text,
		Kind:        types.KindArticle,
		ContentHash: xxhash.Sum64(raw),
		LastIndexed: time.Now().UTC(),
	}

	if m := implementedInPattern.FindStringSubmatch(status); m != nil {
		if mins, ok := swiftOSMinimums[m[1]]; ok {
			doc.Availability = map[types.Platform]string{
				types.PlatformIOS:   mins.ios,
				types.PlatformMacOS: mins.macos,
			}
			doc.AvailabilitySource = "proposal"
		}
	}
	return doc, nil
}
