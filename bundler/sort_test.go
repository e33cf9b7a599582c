package bundler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/oasbundle/internal/pathutil"
)

func TestSortInventory(t *testing.T) {
	entry := func(pathFromRoot string, mods ...func(*InventoryEntry)) *InventoryEntry {
		e := &InventoryEntry{
			File:         "/specs/a.yaml",
			Hash:         "#/X",
			PathFromRoot: pathFromRoot,
			Depth:        len(pathutil.Parse(pathFromRoot)),
		}
		for _, m := range mods {
			m(e)
		}
		return e
	}

	extended := entry("#/a", func(e *InventoryEntry) { e.Extended = true })
	circular := entry("#/very/deep/path/x", func(e *InventoryEntry) { e.Circular = true })
	indirect := entry("#/b", func(e *InventoryEntry) { e.Indirections = 1 })
	deep := entry("#/c/d")
	definitions := entry("#/definitions/x")
	short := entry("#/e")
	shortNext := entry("#/f")
	otherHash := entry("#/z", func(e *InventoryEntry) { e.Hash = "#/A" })
	otherFile := entry("#/z", func(e *InventoryEntry) { e.File = "/specs/0.yaml" })

	entries := []*InventoryEntry{
		extended, circular, indirect, deep, definitions, shortNext, short, otherHash, otherFile,
	}
	sortInventory(entries)

	assert.Equal(t, []*InventoryEntry{
		otherFile, otherHash, circular, short, shortNext, definitions, deep, indirect, extended,
	}, entries)
}

func TestCompareEntriesIsTotal(t *testing.T) {
	a := &InventoryEntry{File: "f", Hash: "#", PathFromRoot: "#/ab", Depth: 1}
	b := &InventoryEntry{File: "f", Hash: "#", PathFromRoot: "#/ba", Depth: 1}

	assert.Negative(t, compareEntries(a, b))
	assert.Positive(t, compareEntries(b, a))
	assert.Zero(t, compareEntries(a, a))
}
