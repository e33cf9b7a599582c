// Package node provides the in-memory document tree that the resolver and
// bundler operate on.
//
// A [Node] is a tagged union: a scalar, an insertion-ordered map, or a
// sequence. A map whose "$ref" member is a string is additionally reported as
// [KindRef] so reference nodes can be recognized without probing fields; a
// reference node with members besides "$ref" is an extended reference.
//
// Node identity is pointer identity. The same *Node may be reachable from
// more than one place (YAML aliases, hoisted components), and traversals use
// pointer sets to avoid revisiting shared subtrees.
//
// Documents are built from YAML or JSON bytes with [FromYAML] and
// [FromJSON], from plain Go values with [FromAny], and rendered back with
// [Node.MarshalYAML], [Node.MarshalJSON] and [Node.ToAny]. Key order of the
// source is preserved throughout.
package node

import (
	"slices"
	"strconv"
)

// Kind identifies the variant held by a Node.
type Kind uint8

const (
	// KindScalar is a string, bool, number or null.
	KindScalar Kind = iota
	// KindMap is a mapping with string keys.
	KindMap
	// KindSequence is an ordered list.
	KindSequence
	// KindRef is a mapping with a string "$ref" member.
	KindRef
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindSequence:
		return "sequence"
	case KindRef:
		return "ref"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// RefKey is the member name of a JSON Reference.
const RefKey = "$ref"

// Node is one value of a parsed document.
// The zero value is a null scalar.
type Node struct {
	kind   Kind // storage kind, never KindRef
	value  any
	keys   []string
	fields map[string]*Node
	items  []*Node
}

// NewScalar returns a scalar node holding v.
// v should be nil, a string, a bool, an integer or a float.
func NewScalar(v any) *Node {
	return &Node{kind: KindScalar, value: normalizeScalar(v)}
}

// NewString returns a string scalar.
func NewString(s string) *Node {
	return &Node{kind: KindScalar, value: s}
}

// Null returns a null scalar.
func Null() *Node {
	return &Node{kind: KindScalar}
}

// NewMap returns an empty map node.
func NewMap() *Node {
	return &Node{kind: KindMap, fields: make(map[string]*Node)}
}

// NewSequence returns a sequence node holding items.
func NewSequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// NewRef returns a plain reference node { $ref: ref }.
func NewRef(ref string) *Node {
	n := NewMap()
	n.Set(RefKey, NewString(ref))
	return n
}

// Kind returns the node variant. Maps with a string "$ref" report KindRef.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindScalar
	}
	if n.kind == KindMap {
		if _, ok := n.Ref(); ok {
			return KindRef
		}
	}
	return n.kind
}

// IsMap reports whether n is a map, reference nodes included.
func (n *Node) IsMap() bool {
	return n != nil && n.kind == KindMap
}

// IsSequence reports whether n is a sequence.
func (n *Node) IsSequence() bool {
	return n != nil && n.kind == KindSequence
}

// IsScalar reports whether n is a scalar.
func (n *Node) IsScalar() bool {
	return n == nil || n.kind == KindScalar
}

// IsContainer reports whether n is a map or a sequence.
func (n *Node) IsContainer() bool {
	return n.IsMap() || n.IsSequence()
}

// IsNull reports whether n is a null scalar.
func (n *Node) IsNull() bool {
	return n.IsScalar() && (n == nil || n.value == nil)
}

// Value returns the scalar value, or nil for containers.
func (n *Node) Value() any {
	if n == nil || n.kind != KindScalar {
		return nil
	}
	return n.value
}

// Str returns the string held by a string scalar.
func (n *Node) Str() (string, bool) {
	if n == nil || n.kind != KindScalar {
		return "", false
	}
	s, ok := n.value.(string)
	return s, ok
}

// Len returns the number of map members or sequence items.
func (n *Node) Len() int {
	switch {
	case n.IsMap():
		return len(n.keys)
	case n.IsSequence():
		return len(n.items)
	default:
		return 0
	}
}

// Keys returns the map keys in insertion order.
func (n *Node) Keys() []string {
	if !n.IsMap() {
		return nil
	}
	return slices.Clone(n.keys)
}

// Get returns the member stored under key, or nil.
func (n *Node) Get(key string) *Node {
	if !n.IsMap() {
		return nil
	}
	return n.fields[key]
}

// Has reports whether the map has a member named key.
func (n *Node) Has(key string) bool {
	if !n.IsMap() {
		return false
	}
	_, ok := n.fields[key]
	return ok
}

// Set stores v under key. Existing keys keep their position; new keys are appended.
// Set panics when n is not a map.
func (n *Node) Set(key string, v *Node) {
	if !n.IsMap() {
		panic("node: Set on " + n.Kind().String())
	}
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = v
}

// Delete removes key from the map. It is a no-op when the key is absent.
func (n *Node) Delete(key string) {
	if !n.IsMap() {
		return
	}
	if _, ok := n.fields[key]; !ok {
		return
	}
	delete(n.fields, key)
	n.keys = slices.DeleteFunc(n.keys, func(k string) bool { return k == key })
}

// Items returns the sequence items.
func (n *Node) Items() []*Node {
	if !n.IsSequence() {
		return nil
	}
	return slices.Clone(n.items)
}

// Index returns item i of a sequence, or nil when out of range.
func (n *Node) Index(i int) *Node {
	if !n.IsSequence() || i < 0 || i >= len(n.items) {
		return nil
	}
	return n.items[i]
}

// Append adds items to the end of a sequence.
// Append panics when n is not a sequence.
func (n *Node) Append(items ...*Node) {
	if !n.IsSequence() {
		panic("node: Append on " + n.Kind().String())
	}
	n.items = append(n.items, items...)
}

// Child returns the child addressed by a JSON Pointer token: a map key, or a
// decimal index into a sequence.
func (n *Node) Child(token string) (*Node, bool) {
	switch {
	case n.IsMap():
		c, ok := n.fields[token]
		return c, ok
	case n.IsSequence():
		i, err := strconv.Atoi(token)
		if err != nil || i < 0 || i >= len(n.items) {
			return nil, false
		}
		return n.items[i], true
	default:
		return nil, false
	}
}

// SetChild replaces the child addressed by token. For sequences the index
// must already exist. It reports whether the child was stored.
func (n *Node) SetChild(token string, v *Node) bool {
	switch {
	case n.IsMap():
		n.Set(token, v)
		return true
	case n.IsSequence():
		i, err := strconv.Atoi(token)
		if err != nil || i < 0 || i >= len(n.items) {
			return false
		}
		n.items[i] = v
		return true
	default:
		return false
	}
}

// Ref returns the "$ref" string of a reference node.
func (n *Node) Ref() (string, bool) {
	if !n.IsMap() {
		return "", false
	}
	return n.fields[RefKey].Str()
}

// IsRef reports whether n is a reference node.
func (n *Node) IsRef() bool {
	_, ok := n.Ref()
	return ok
}

// IsExtendedRef reports whether n is a reference node with members besides "$ref".
func (n *Node) IsExtendedRef() bool {
	return n.IsRef() && len(n.keys) > 1
}

// SetRef overwrites the "$ref" member, keeping all siblings.
func (n *Node) SetRef(ref string) {
	n.Set(RefKey, NewString(ref))
}

// ShallowCopy returns a new container holding the same children.
// Scalars are copied by value.
func (n *Node) ShallowCopy() *Node {
	if n == nil {
		return Null()
	}
	c := &Node{kind: n.kind, value: n.value}
	switch n.kind {
	case KindMap:
		c.keys = slices.Clone(n.keys)
		c.fields = make(map[string]*Node, len(n.fields))
		for k, v := range n.fields {
			c.fields[k] = v
		}
	case KindSequence:
		c.items = slices.Clone(n.items)
	}
	return c
}

// DeepCopy returns an independent copy of the tree rooted at n.
// Shared subtrees stay shared in the copy.
func (n *Node) DeepCopy() *Node {
	return deepCopy(n, make(map[*Node]*Node))
}

func deepCopy(n *Node, seen map[*Node]*Node) *Node {
	if n == nil {
		return Null()
	}
	if c, ok := seen[n]; ok {
		return c
	}
	c := &Node{kind: n.kind, value: n.value}
	seen[n] = c
	switch n.kind {
	case KindMap:
		c.keys = slices.Clone(n.keys)
		c.fields = make(map[string]*Node, len(n.fields))
		for k, v := range n.fields {
			c.fields[k] = deepCopy(v, seen)
		}
	case KindSequence:
		c.items = make([]*Node, len(n.items))
		for i, v := range n.items {
			c.items[i] = deepCopy(v, seen)
		}
	}
	return c
}

// normalizeScalar folds the integer and float types onto int64 and float64.
func normalizeScalar(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		if uint64(x) <= 1<<63-1 {
			return int64(x)
		}
		return float64(x)
	case uint64:
		if x <= 1<<63-1 {
			return int64(x)
		}
		return float64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
