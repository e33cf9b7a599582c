package bundler

import (
	"github.com/erraggy/oasbundle/internal/naming"
	"github.com/erraggy/oasbundle/internal/pathutil"
	"github.com/erraggy/oasbundle/node"
	"github.com/erraggy/oasbundle/parser"
)

// remapper rewrites the occurrences of a sorted inventory so that only
// internal references remain, hoisting external targets into containers
// of the root document.
type remapper struct {
	root   *node.Node
	logger parser.Logger

	// basenames overrides the base name derived from a target file.
	basenames map[string]string
	// names maps container prefix, then "file::hash", to the hoisted name.
	names map[string]map[string]string
	// allocators hands out names per container map.
	allocators map[*node.Node]*naming.Allocator

	hoisted  int
	warnings Warnings
}

func newRemapper(root *node.Node, basenames map[string]string, logger parser.Logger) *remapper {
	return &remapper{
		root:       root,
		logger:     parser.OrNop(logger),
		basenames:  basenames,
		names:      make(map[string]map[string]string),
		allocators: make(map[*node.Node]*naming.Allocator),
	}
}

// remap applies the rewrite rules to entries, which must be sorted.
func (r *remapper) remap(entries []*InventoryEntry) {
	for _, e := range entries {
		if e == nil || !e.Ref.IsRef() {
			continue
		}

		if !e.External {
			// extended internal references keep their own $ref
			if !e.Extended {
				e.Ref.SetRef(e.Hash)
			}
			continue
		}

		if e.Circular {
			e.Ref.SetRef(e.PathFromRoot)
			r.warnings = append(r.warnings, newCircularRefWarning(e))
			continue
		}

		refPath := r.hoist(e)
		if e.Extended {
			e.Ref.SetRef(refPath)
			continue
		}
		if !e.Parent.SetChild(e.Key, node.NewRef(refPath)) {
			r.logger.Warn("reference parent no longer holds key", "path", e.PathFromRoot)
		}
	}
}

// hoist stores the target of e in its container, once per target and
// container, and returns the internal pointer to it.
func (r *remapper) hoist(e *InventoryEntry) string {
	t := e.OriginalContainerType
	if t == "" {
		t = containerTypeOf(e.PathFromRoot)
	}
	c := ensureContainer(r.root, t)

	byTarget := r.names[c.prefix]
	if byTarget == nil {
		byTarget = make(map[string]string)
		r.names[c.prefix] = byTarget
	}

	targetKey := e.File + "::" + e.Hash
	name, ok := byTarget[targetKey]
	if !ok {
		base, ok := r.basenames[e.File]
		if !ok {
			base = naming.BaseName(e.File)
		}
		proposed := naming.ComponentName(base, e.Hash)
		name = r.allocator(c.node).Allocate(proposed)
		if name != proposed {
			r.warnings = append(r.warnings, newNameCollisionWarning(proposed, name, c.prefix, e.File))
		}

		byTarget[targetKey] = name
		c.node.Set(name, e.Value)
		r.hoisted++
		r.logger.Debug("hoisted external target",
			"target", e.Target(),
			"container", c.prefix,
			"name", name,
		)
	}
	return pathutil.Join(c.prefix, name)
}

// allocator returns the name allocator of a container, seeding it with the
// keys the container already holds.
func (r *remapper) allocator(c *node.Node) *naming.Allocator {
	a, ok := r.allocators[c]
	if !ok {
		a = naming.NewAllocator(c.Keys()...)
		r.allocators[c] = a
	}
	return a
}
