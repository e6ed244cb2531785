package storage

import (
	"regexp"
	"strings"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

const (
	// summaryMaxLen caps stored summaries. Truncation prefers a sentence
	// boundary past summaryMinCut, then a word boundary.
	summaryMaxLen = 300
	summaryMinCut = 150

	// overviewPrefixLen is how much of the overview section is folded into
	// the indexed text of core type pages.
	overviewPrefixLen = 500
)

// ExtractOptimizedContent shapes the text fed to the full-text index so that
// the fields developers actually search on dominate the match surface.
//
// Core type pages repeat the title three times and take only a prefix of the
// overview, so a query for "URLSession" lands on the URLSession page rather
// than on every page that mentions it. Member pages repeat the title twice.
// Narrative pages index their full body. Extracted attribute names are
// appended for every shape so "@MainActor" style queries match.
func ExtractOptimizedContent(doc *types.Document) string {
	var b strings.Builder

	switch {
	case doc.Kind.IsCoreType():
		for range 3 {
			b.WriteString(doc.Title)
			b.WriteString(" ")
		}
		b.WriteString("\n")
		writeSection(&b, doc.Abstract)
		writeSection(&b, doc.Declaration)
		if doc.Overview != "" {
			b.WriteString(prefix(doc.Overview, overviewPrefixLen))
			b.WriteString("\n")
		}

	case doc.Kind.IsMember():
		for range 2 {
			b.WriteString(doc.Title)
			b.WriteString(" ")
		}
		b.WriteString("\n")
		writeSection(&b, doc.Abstract)
		writeSection(&b, doc.Declaration)

	default:
		writeSection(&b, doc.Title)
		b.WriteString(doc.Content)
		b.WriteString("\n")
	}

	if len(doc.Attributes) > 0 {
		b.WriteString(strings.Join(doc.Attributes, " "))
		b.WriteString("\n")
	}

	return b.String()
}

func writeSection(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	b.WriteString(s)
	b.WriteString("\n")
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ExtractSummary derives a short display summary from a document body:
// front matter and heading markers are stripped, then the text is truncated
// at a sentence boundary when one falls in the back half of the budget.
func ExtractSummary(content string) string {
	text := stripFrontMatter(content)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, line)
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))
	text = strings.Join(strings.Fields(text), " ")

	if len(text) <= summaryMaxLen {
		return text
	}

	cut := text[:summaryMaxLen]
	if i := lastSentenceEnd(cut); i >= summaryMinCut {
		return cut[:i+1]
	}
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// stripFrontMatter removes a leading YAML front-matter block delimited by
// "---" lines, when present.
func stripFrontMatter(content string) string {
	trimmed := strings.TrimLeft(content, "\n")
	if !strings.HasPrefix(trimmed, "---") {
		return content
	}
	rest := trimmed[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return content
	}
	after := rest[idx+4:]
	if nl := strings.Index(after, "\n"); nl >= 0 {
		return after[nl+1:]
	}
	return ""
}

func lastSentenceEnd(s string) int {
	best := -1
	for i := range len(s) {
		switch s[i] {
		case '.', '!', '?':
			if i+1 == len(s) || s[i+1] == ' ' {
				best = i
			}
		}
	}
	return best
}

var attributePattern = regexp.MustCompile(`@([A-Za-z_]\w*)`)

// ExtractAttributes pulls @-prefixed attribute names out of a declaration,
// deduplicated in order of first appearance. Argument lists are dropped:
// "@available(iOS 17.0, *)" yields "available".
func ExtractAttributes(declaration string) []string {
	if declaration == "" {
		return nil
	}
	seen := make(map[string]bool)
	var attrs []string
	for _, m := range attributePattern.FindAllStringSubmatch(declaration, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		attrs = append(attrs, name)
	}
	return attrs
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
