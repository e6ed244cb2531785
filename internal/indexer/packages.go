package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// registrySnapshot is the package-registry export: a flat list of packages
// with dependency references in "owner/name" form.
type registrySnapshot struct {
	Packages []registryPackage `json:"packages"`
}

type registryPackage struct {
	Name         string   `json:"name"`
	Owner        string   `json:"owner"`
	RepoURL      string   `json:"repoUrl,omitempty"`
	Stars        int      `json:"stars,omitempty"`
	Official     bool     `json:"official,omitempty"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// ingestPackages loads a registry snapshot: every package becomes both a
// registry row (with dependency edges) and a searchable document under the
// packages source. Dependency edges are wired in a second pass so forward
// references resolve.
func (ix *Indexer) ingestPackages(ctx context.Context, raw []byte) (indexed, failed int, errs []string) {
	var snap registrySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return 0, 1, []string{fmt.Sprintf("decoding package registry: %v", err)}
	}

	ids := make(map[string]int64, len(snap.Packages))
	for i := range snap.Packages {
		p := &snap.Packages[i]
		rec := &types.PackageRecord{
			Name:        p.Name,
			Owner:       p.Owner,
			RepoURL:     p.RepoURL,
			Stars:       p.Stars,
			Official:    p.Official,
			Description: p.Description,
		}
		id, err := ix.store.UpsertPackage(ctx, rec)
		if err != nil {
			failed++
			errs = append(errs, fmt.Sprintf("package %s/%s: %v", p.Owner, p.Name, err))
			continue
		}
		ids[p.Owner+"/"+p.Name] = id

		if err := ix.store.IndexDocument(ctx, packageDocument(p)); err != nil {
			failed++
			errs = append(errs, fmt.Sprintf("indexing package %s/%s: %v", p.Owner, p.Name, err))
			continue
		}
		indexed++
	}

	for _, p := range snap.Packages {
		from, ok := ids[p.Owner+"/"+p.Name]
		if !ok {
			continue
		}
		for _, dep := range p.Dependencies {
			to, ok := ids[dep]
			if !ok {
				// Dependency outside the snapshot; skip silently.
				continue
			}
			if err := ix.store.AddPackageDependency(ctx, from, to); err != nil {
				errs = append(errs, fmt.Sprintf("dependency %s -> %s: %v", p.Name, dep, err))
			}
		}
	}
	return indexed, failed, errs
}

// packageDocument makes a registry entry findable through ordinary search.
func packageDocument(p *registryPackage) *types.Document {
	content := p.Description
	if p.RepoURL != "" {
		content += "\n" + p.RepoURL
	}
	raw, _ := json.Marshal(p)
	return &types.Document{
		URI:         types.SourcePackages.URI(strings.ToLower(p.Owner + "/" + p.Name)),
		Source:      types.SourcePackages,
		Framework:   p.Name,
		Language:    "swift",
		Title:       p.Name,
		Content:     content,
		Kind:        types.KindCollection,
		Abstract:    p.Description,
		ContentHash: xxhash.Sum64(raw),
		LastIndexed: time.Now().UTC(),
		Payload:     raw,
	}
}
