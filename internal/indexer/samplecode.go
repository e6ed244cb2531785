package indexer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// catalogSnapshot is the sample-code catalog export.
type catalogSnapshot struct {
	Samples []catalogEntry `json:"samples"`
}

type catalogEntry struct {
	URL          string            `json:"url"`
	Framework    string            `json:"framework,omitempty"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	ArchiveName  string            `json:"archiveName,omitempty"`
	WebURL       string            `json:"webUrl,omitempty"`
	Availability map[string]string `json:"availability,omitempty"`
}

// ingestSampleCode loads a catalog snapshot into the sample-code tables.
func (ix *Indexer) ingestSampleCode(ctx context.Context, raw []byte) (indexed, failed int, errs []string) {
	var snap catalogSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return 0, 1, []string{fmt.Sprintf("decoding sample catalog: %v", err)}
	}

	for _, s := range snap.Samples {
		entry := &types.SampleCodeEntry{
			URL:         s.URL,
			Framework:   s.Framework,
			Title:       s.Title,
			Description: s.Description,
			ArchiveName: s.ArchiveName,
			WebURL:      s.WebURL,
		}
		for name, version := range s.Availability {
			if plat, ok := platformByName(name); ok {
				if entry.Availability == nil {
					entry.Availability = make(map[types.Platform]string)
				}
				entry.Availability[plat] = version
			}
		}
		if err := ix.store.UpsertSampleCode(ctx, entry); err != nil {
			failed++
			errs = append(errs, fmt.Sprintf("sample %s: %v", s.URL, err))
			continue
		}
		indexed++
	}
	return indexed, failed, errs
}
