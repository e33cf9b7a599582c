package bundler

import (
	"cmp"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/oasbundle/internal/pathutil"
	"github.com/erraggy/oasbundle/node"
	"github.com/erraggy/oasbundle/oaserrors"
	"github.com/erraggy/oasbundle/parser"
	"github.com/erraggy/oasbundle/resolver"
)

// ContainerType is the component bucket a hoisted value is stored in.
type ContainerType string

const (
	ContainerSchemas       ContainerType = "schemas"
	ContainerParameters    ContainerType = "parameters"
	ContainerRequestBodies ContainerType = "requestBodies"
	ContainerResponses     ContainerType = "responses"
	ContainerHeaders       ContainerType = "headers"
)

// containerTypeOf infers the bucket from the tokens of a pointer. More
// specific markers win; anything else is treated as a schema.
func containerTypeOf(pointer string) ContainerType {
	tokens := pathutil.Parse(pointer)
	switch {
	case slices.Contains(tokens, "parameters"):
		return ContainerParameters
	case slices.Contains(tokens, "requestBody"), slices.Contains(tokens, "requestBodies"):
		return ContainerRequestBodies
	case slices.Contains(tokens, "headers"):
		return ContainerHeaders
	case slices.Contains(tokens, "responses"):
		return ContainerResponses
	default:
		return ContainerSchemas
	}
}

// InventoryEntry records one occurrence of a reference.
type InventoryEntry struct {
	// Ref is the reference node.
	Ref *node.Node
	// Parent holds Ref under Key.
	Parent *node.Node
	// Key is the map key or sequence index of Ref in Parent.
	Key string
	// Value is the resolved target.
	Value *node.Node
	// File is the target location without its hash.
	File string
	// Hash is the target JSON Pointer, "#" for a whole document.
	Hash string
	// External is set when File is not the root document.
	External bool
	// Circular is set when the target is a reference back into its own chain.
	Circular bool
	// Extended is set when Ref has members besides "$ref".
	Extended bool
	// Depth is the number of tokens in PathFromRoot.
	Depth int
	// Indirections counts references followed to reach Value, including
	// those that led the crawl to this occurrence.
	Indirections int
	// PathFromRoot is the JSON Pointer of this occurrence from the root.
	PathFromRoot string
	// OriginalContainerType is the bucket the target lived in within its
	// source document. Only set for external targets.
	OriginalContainerType ContainerType
}

// RefString returns the "$ref" of the occurrence as currently written.
func (e *InventoryEntry) RefString() string {
	s, _ := e.Ref.Ref()
	return s
}

// Target returns File and Hash joined. A whole-document target ends in "#".
func (e *InventoryEntry) Target() string {
	return e.File + e.Hash
}

type slot struct {
	parent *node.Node
	key    string
}

// crawler builds the inventory of one document graph. It runs after every
// external document is registered and never mutates the documents.
type crawler struct {
	reg      *resolver.Registry
	rootFile string
	logger   parser.Logger

	// from is the pointer from the root of the occurrence being crawled.
	from *pathutil.PathBuilder

	inventory []*InventoryEntry
	lookup    map[slot]*InventoryEntry
	resolved  map[string]*resolver.Pointer
	visited   map[*node.Node]bool

	warnings Warnings
	errs     []error
}

func newCrawler(reg *resolver.Registry, logger parser.Logger) *crawler {
	return &crawler{
		reg:      reg,
		rootFile: reg.RootLocation(),
		logger:   parser.OrNop(logger),
		lookup:   make(map[slot]*InventoryEntry),
		resolved: make(map[string]*resolver.Pointer),
		visited:  make(map[*node.Node]bool),
	}
}

// run crawls the root document.
func (c *crawler) run() {
	c.from = pathutil.Get()
	defer pathutil.Put(c.from)

	root := c.reg.Root()
	c.crawl(root.Value(), root.Location+"#", 0)
}

// crawl walks obj, found at path (location and pointer) and at c.from.
// Reference members are inventoried; everything else is descended into.
// A reference node reached directly is a target that could not be chased
// any further, and is left alone.
func (c *crawler) crawl(obj *node.Node, path string, indirections int) {
	if !obj.IsContainer() || obj.IsRef() || c.visited[obj] {
		return
	}
	c.visited[obj] = true

	for _, key := range crawlOrder(obj) {
		value, _ := obj.Child(key)
		c.from.Push(key)
		if value.IsRef() {
			c.inventoryRef(obj, key, path, indirections)
		} else {
			c.crawl(value, pathutil.Join(path, key), indirections)
		}
		c.from.Pop()
	}
}

// crawlOrder returns the child tokens of obj in visiting order: for maps
// "definitions" first, then shorter keys before longer ones, then by key;
// for sequences the indexes in order.
func crawlOrder(obj *node.Node) []string {
	if obj.IsSequence() {
		tokens := make([]string, obj.Len())
		for i := range tokens {
			tokens[i] = strconv.Itoa(i)
		}
		return tokens
	}

	keys := obj.Keys()
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == "definitions":
			return -1
		case b == "definitions":
			return 1
		}
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return keys
}

// inventoryRef records the reference parent[key] and crawls its target.
func (c *crawler) inventoryRef(parent *node.Node, key, path string, indirections int) {
	pathFromRoot := c.from.String()
	ref, _ := parent.Child(key)
	refString, _ := ref.Ref()
	target := resolver.Locate(path, refString)

	p, ok := c.resolved[target]
	if !ok {
		var err error
		p, err = c.reg.Resolve(target, pathFromRoot)
		if err != nil {
			if errors.Is(err, oaserrors.ErrMissingPointer) {
				w := newUnresolvedRefWarning(refString, pathFromRoot, err)
				c.warnings = append(c.warnings, w)
				c.logger.Warn("skipping unresolved reference", "ref", refString, "path", pathFromRoot, "error", err)
				return
			}
			c.errs = append(c.errs, err)
			return
		}
		c.resolved[target] = p
	}

	file, hash := pathutil.StripHash(p.Path), pathutil.HashOf(p.Path)
	entry := &InventoryEntry{
		Ref:          ref,
		Parent:       parent,
		Key:          key,
		Value:        p.Value,
		File:         file,
		Hash:         hash,
		External:     file != c.rootFile,
		Circular:     p.Circular,
		Extended:     ref.IsExtendedRef(),
		Depth:        c.from.Depth(),
		Indirections: indirections + p.Indirections,
		PathFromRoot: pathFromRoot,
	}
	if entry.External {
		entry.OriginalContainerType = containerTypeOf(hash)
	}

	s := slot{parent: parent, key: key}
	existing := c.lookup[s]
	if existing != nil && existing.PathFromRoot == pathFromRoot {
		if entry.Depth >= existing.Depth && entry.Indirections >= existing.Indirections {
			return
		}
		c.remove(existing)
	}

	c.inventory = append(c.inventory, entry)
	c.lookup[s] = entry

	if existing == nil || entry.External {
		c.crawl(p.Value, p.Path, entry.Indirections+1)
	}
}

func (c *crawler) remove(e *InventoryEntry) {
	if i := slices.Index(c.inventory, e); i >= 0 {
		c.inventory = slices.Delete(c.inventory, i, i+1)
	}
	delete(c.lookup, slot{parent: e.Parent, key: e.Key})
}

// err returns the blocking errors met while crawling.
func (c *crawler) err() error {
	return oaserrors.NewErrorGroup(c.errs...)
}
