package bundler

import (
	"context"
	"fmt"
	"time"

	"github.com/erraggy/oasbundle/resolver"
)

// DocumentInfo describes one document loaded while resolving references.
type DocumentInfo struct {
	Location string            `json:"location"`
	PathType resolver.PathType `json:"path_type"`
}

// InventoryResult is the sorted reference inventory of a document graph.
// Building it does not modify any document.
type InventoryResult struct {
	// SourcePath is the location of the root.
	SourcePath string
	// Entries are sorted in the order a bundle would remap them.
	Entries []*InventoryEntry
	// Documents lists every loaded document, sorted by location.
	Documents []DocumentInfo
	// Warnings holds references that could not be resolved.
	Warnings Warnings
	// LoadTime is the time spent loading the root and every external document.
	LoadTime time.Duration
}

// External returns the entries that target another document.
func (r *InventoryResult) External() []*InventoryEntry {
	var out []*InventoryEntry
	for _, e := range r.Entries {
		if e.External {
			out = append(out, e)
		}
	}
	return out
}

// ByContainer groups external entries by the container they would be
// hoisted into.
func (r *InventoryResult) ByContainer() map[ContainerType][]*InventoryEntry {
	out := make(map[ContainerType][]*InventoryEntry)
	for _, e := range r.External() {
		out[e.OriginalContainerType] = append(out[e.OriginalContainerType], e)
	}
	return out
}

// InventoryWithOptions loads a document and everything it references and
// returns its reference inventory. It accepts the same options as
// BundleWithOptions.
func InventoryWithOptions(opts ...Option) (*InventoryResult, error) {
	cfg, err := applySingleInputOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("bundler: invalid options: %w", err)
	}
	return cfg.bundler().inventory(cfg.ctx, cfg.source())
}

// Inventory returns the reference inventory of the file or URL at location.
func (b *Bundler) Inventory(ctx context.Context, location string) (*InventoryResult, error) {
	return b.inventory(ctx, source{location: location})
}

func (b *Bundler) inventory(ctx context.Context, src source) (*InventoryResult, error) {
	l, err := b.load(ctx, src)
	if err != nil {
		return nil, err
	}
	reg, loadTime, err := b.resolve(ctx, l, nil)
	if err != nil {
		return nil, err
	}
	c, err := b.crawl(reg)
	if err != nil {
		return nil, err
	}

	result := &InventoryResult{
		SourcePath: l.location,
		Entries:    c.inventory,
		Warnings:   c.warnings,
		LoadTime:   l.loadTime + loadTime,
	}
	for _, e := range reg.Entries() {
		result.Documents = append(result.Documents, DocumentInfo{Location: e.Location, PathType: e.PathType})
	}
	return result, nil
}
