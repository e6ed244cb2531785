package indexer

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// markdownFrontMatter is the YAML header the markdown-based sources carry.
// Absent fields fall back to values derived from the file path and body.
type markdownFrontMatter struct {
	Title     string `yaml:"title"`
	Framework string `yaml:"framework"`
	Kind      string `yaml:"kind"`
	Language  string `yaml:"language"`
	Abstract  string `yaml:"abstract"`
}

var frontMatterPattern = regexp.MustCompile(`(?s)\A\s*---\n(.*?)\n---\n?`)

// parseMarkdownDoc normalizes one markdown artifact from a prose source
// (language book, design guidelines, legacy archive). A nil document with a
// nil error means the artifact is a not-found placeholder.
func parseMarkdownDoc(raw []byte, relPath string, source types.Source) (*types.Document, error) {
	text := string(raw)

	var fm markdownFrontMatter
	body := text
	if m := frontMatterPattern.FindStringSubmatch(text); m != nil {
		if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
			return nil, fmt.Errorf("parsing front matter of %s: %w", relPath, err)
		}
		body = text[len(m[0]):]
	}

	title := fm.Title
	if title == "" {
		if m := headingPattern.FindStringSubmatch(body); m != nil {
			title = strings.TrimSpace(m[1])
		} else {
			title = titleFromFilename(relPath)
		}
	}
	if isNotFoundContent(title, body) {
		return nil, nil
	}

	kind := types.ParseKind(fm.Kind)
	if kind == types.KindUnknown {
		kind = types.KindArticle
	}

	framework := fm.Framework
	if framework == "" {
		// First path segment under the source root, when there is one.
		if i := strings.Index(relPath, "/"); i > 0 {
			framework = relPath[:i]
		}
	}

	doc := &types.Document{
		URI:         source.URI(strings.TrimSuffix(relPath, path.Ext(relPath))),
		Source:      source,
		Framework:   framework,
		Language:    defaultString(fm.Language, "swift"),
		Title:       title,
		Content:     body,
		Kind:        kind,
		Abstract:    fm.Abstract,
		ContentHash: xxhash.Sum64(raw),
		LastIndexed: time.Now().UTC(),
	}
	return doc, nil
}

// titleFromFilename turns "automatic-reference-counting.md" into
// "Automatic Reference Counting".
func titleFromFilename(relPath string) string {
	base := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
