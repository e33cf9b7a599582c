package resolver

import (
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/erraggy/oasbundle/internal/pathutil"
	"github.com/erraggy/oasbundle/node"
	"github.com/erraggy/oasbundle/oaserrors"
)

// Entry is one document in a Registry. An entry is created as a claim
// before its document is loaded; Done is closed once the value or the error
// has been stored.
type Entry struct {
	// Location is the normalized absolute location, without a hash.
	Location string
	// PathType records how the document was obtained.
	PathType PathType

	value *node.Node
	err   error
	done  chan struct{}
	once  sync.Once
}

func newEntry(location string, pathType PathType) *Entry {
	return &Entry{Location: location, PathType: pathType, done: make(chan struct{})}
}

// Done is closed when the entry is complete.
func (e *Entry) Done() <-chan struct{} {
	return e.done
}

// Ready reports whether the entry is complete.
func (e *Entry) Ready() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Value returns the document, or nil while pending or after a failure.
func (e *Entry) Value() *node.Node {
	if !e.Ready() {
		return nil
	}
	return e.value
}

// Err returns the load failure, or nil while pending or after success.
func (e *Entry) Err() error {
	if !e.Ready() {
		return nil
	}
	return e.err
}

// Complete stores the outcome of loading the entry. Only the first call has
// an effect.
func (e *Entry) Complete(value *node.Node, err error) {
	e.once.Do(func() {
		e.value, e.err = value, err
		close(e.done)
	})
}

// Pointer is the outcome of resolving "location#/pointer" through a Registry.
type Pointer struct {
	// Path is the absolute location and pointer where Value was found.
	// Chasing a plain reference moves it; chasing an extended one does not.
	Path string
	// Value is the resolved node.
	Value *node.Node
	// Circular is set when chasing met a reference that points back into
	// the chain being resolved. Value is then the reference that closes it.
	Circular bool
	// Indirections counts the references followed to reach Value.
	Indirections int
}

// Registry stores the documents of one bundle operation keyed by normalized
// absolute location. Add, Get and SetRoot are safe for concurrent use;
// Resolve reads documents and must not race with their mutation.
type Registry struct {
	// MaxRefDepth bounds reference chasing in Resolve. MaxRefDepth is used
	// when it is not positive.
	MaxRefDepth int

	mu      sync.Mutex
	root    string
	entries map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// SetRoot registers the root document, which relative locations resolve against.
func (r *Registry) SetRoot(location string, value *node.Node, pathType PathType) *Entry {
	location = pathutil.StripHash(location)
	e := newEntry(location, pathType)
	e.Complete(value, nil)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = location
	r.entries[location] = e
	return e
}

// RootLocation returns the location of the root document.
func (r *Registry) RootLocation() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.root
}

// Root returns the root entry, or nil before SetRoot.
func (r *Registry) Root() *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[r.root]
}

// Add returns the entry for location, creating a pending one if none exists.
// created reports whether this call made the claim; exactly one caller
// observes created == true for a given location, and that caller must
// eventually Complete the entry.
func (r *Registry) Add(location string) (entry *Entry, created bool) {
	location = r.normalize(location)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[location]; ok {
		return e, false
	}
	e := newEntry(location, PathTypeOf(location))
	r.entries[location] = e
	return e, true
}

// Get returns the entry for location, or nil.
func (r *Registry) Get(location string) *Entry {
	location = r.normalize(location)

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[location]
}

// Len returns the number of entries, pending ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entries returns all entries sorted by location.
func (r *Registry) Entries() []*Entry {
	r.mu.Lock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b *Entry) int { return strings.Compare(a.Location, b.Location) })
	return out
}

// Errors returns the error of every failed entry, sorted by location.
func (r *Registry) Errors() []error {
	var errs []error
	for _, e := range r.Entries() {
		if err := e.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (r *Registry) normalize(location string) string {
	r.mu.Lock()
	root := r.root
	r.mu.Unlock()
	if root == "" {
		return pathutil.StripHash(location)
	}
	return pathutil.StripHash(Locate(root, location))
}

// Resolve looks up pathWithHash ("location#/pointer", relative locations
// resolve against the root) and walks the pointer through the document.
//
// References met on the way, and at the end, are chased: a plain reference
// moves the resolution to its target; an extended reference keeps the
// current path and yields its sibling members merged over the target. A
// reference whose target is its own path, or any path already in the chain,
// marks the result Circular and stops.
//
// pathFromRoot names the occurrence being resolved and is only used in errors.
func (r *Registry) Resolve(pathWithHash, pathFromRoot string) (*Pointer, error) {
	return r.resolve(Locate(r.RootLocation(), pathWithHash), pathFromRoot, nil)
}

func (r *Registry) resolve(abs, pathFromRoot string, stack []string) (*Pointer, error) {
	maxDepth := r.MaxRefDepth
	if maxDepth <= 0 {
		maxDepth = MaxRefDepth
	}
	if len(stack) >= maxDepth {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "ref_depth",
			Limit:        int64(maxDepth),
			Actual:       int64(len(stack) + 1),
			Message:      "while resolving " + abs,
		}
	}

	entry := r.Get(abs)
	if entry == nil {
		return nil, &oaserrors.MissingPointerError{Ref: abs, PathFromRoot: pathFromRoot}
	}
	if err := entry.Err(); err != nil {
		return nil, err
	}
	if entry.Value() == nil {
		return nil, &oaserrors.MissingPointerError{Ref: abs, PathFromRoot: pathFromRoot}
	}

	p := &Pointer{Path: abs, Value: entry.Value()}
	stack = append(stack, abs)
	tokens := pathutil.Parse(pathutil.HashOf(abs))

	for i := 0; i < len(tokens); i++ {
		moved, err := r.follow(p, pathFromRoot, stack)
		if err != nil {
			return nil, err
		}
		if moved {
			p.Path = pathutil.Join(p.Path, tokens[i:]...)
		}
		if p.Value.IsRef() {
			// unresolvable without looping
			return p, nil
		}

		token := tokens[i]
		child, ok := p.Value.Child(token)
		if ok && !(child.IsNull() && i == len(tokens)-1) {
			p.Value = child
			continue
		}

		// A key may itself contain "/" and have been split into several tokens.
		if j, c, found := joinedChild(p.Value, tokens, i); found {
			p.Value, i = c, j
			continue
		}
		if decoded, err := url.PathUnescape(token); err == nil && decoded != token {
			if c, ok := p.Value.Child(decoded); ok {
				p.Value = c
				continue
			}
		}
		return nil, &oaserrors.MissingPointerError{Ref: abs, Token: token, PathFromRoot: pathFromRoot}
	}

	if _, err := r.follow(p, pathFromRoot, stack); err != nil {
		return nil, err
	}
	return p, nil
}

// follow chases p.Value when it is a reference. It reports whether p.Path moved.
func (r *Registry) follow(p *Pointer, pathFromRoot string, stack []string) (bool, error) {
	ref, ok := p.Value.Ref()
	if !ok {
		return false, nil
	}
	target := Locate(p.Path, ref)
	if target == p.Path || slices.Contains(stack, target) {
		p.Circular = true
		return false, nil
	}

	resolved, err := r.resolve(target, pathFromRoot, stack)
	if err != nil {
		return false, err
	}
	if resolved.Circular {
		// the chain loops back further down; this reference stays where it is
		p.Circular = true
		return false, nil
	}
	p.Indirections += resolved.Indirections + 1

	if p.Value.IsExtendedRef() {
		p.Value = mergeExtended(p.Value, resolved.Value)
		return false, nil
	}
	p.Path = resolved.Path
	p.Value = resolved.Value
	return true, nil
}

func joinedChild(n *node.Node, tokens []string, i int) (int, *node.Node, bool) {
	for j := len(tokens) - 1; j > i; j-- {
		if c, ok := n.Child(strings.Join(tokens[i:j+1], "/")); ok {
			return j, c, true
		}
	}
	return 0, nil, false
}

// mergeExtended returns the sibling members of an extended reference laid
// over the members of its resolved map target. Non-map targets are
// returned as they are.
func mergeExtended(ref, target *node.Node) *node.Node {
	if !target.IsMap() {
		return target
	}
	merged := node.NewMap()
	for _, k := range ref.Keys() {
		if k != node.RefKey {
			merged.Set(k, ref.Get(k))
		}
	}
	for _, k := range target.Keys() {
		if !merged.Has(k) {
			merged.Set(k, target.Get(k))
		}
	}
	return merged
}
