package bundler

import (
	"cmp"
	"slices"
	"strings"
)

// sortInventory orders entries for remapping. The first entry of each
// target decides where the target is hoisted and under which name, so the
// order must be total for the output to be reproducible.
func sortInventory(entries []*InventoryEntry) {
	slices.SortStableFunc(entries, compareEntries)
}

// compareEntries groups entries by target, then puts circular references
// first, extended references last, then prefers fewer indirections, a
// shallower occurrence, one closer to a "definitions" member, and finally
// the shorter and lexically smaller path.
func compareEntries(a, b *InventoryEntry) int {
	if c := strings.Compare(a.File, b.File); c != 0 {
		return c
	}
	if c := strings.Compare(a.Hash, b.Hash); c != 0 {
		return c
	}
	if a.Circular != b.Circular {
		if a.Circular {
			return -1
		}
		return 1
	}
	if a.Extended != b.Extended {
		if a.Extended {
			return 1
		}
		return -1
	}
	if c := cmp.Compare(a.Indirections, b.Indirections); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Depth, b.Depth); c != 0 {
		return c
	}
	ai := strings.LastIndex(a.PathFromRoot, "/definitions")
	bi := strings.LastIndex(b.PathFromRoot, "/definitions")
	if ai != bi {
		return cmp.Compare(bi, ai)
	}
	if c := cmp.Compare(len(a.PathFromRoot), len(b.PathFromRoot)); c != 0 {
		return c
	}
	return strings.Compare(a.PathFromRoot, b.PathFromRoot)
}
