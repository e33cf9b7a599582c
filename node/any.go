package node

import (
	"fmt"
	"math"
	"slices"
)

// FromAny converts plain Go values, as produced by encoding/json or a YAML
// decoder into any, into a Node tree. Keys of map[string]any have no order
// and are sorted. A *Node is returned unchanged.
func FromAny(v any) (*Node, error) {
	switch val := v.(type) {
	case *Node:
		if val == nil {
			return Null(), nil
		}
		return val, nil
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return NewScalar(val), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		n := NewMap()
		for _, k := range keys {
			child, err := FromAny(val[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			n.Set(k, child)
		}
		return n, nil
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = v
		}
		return FromAny(m)
	case []any:
		n := NewSequence()
		for i, item := range val {
			child, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			n.items = append(n.items, child)
		}
		return n, nil
	case []string:
		n := NewSequence()
		for _, s := range val {
			n.items = append(n.items, NewString(s))
		}
		return n, nil
	case []map[string]any:
		items := make([]any, len(val))
		for i, m := range val {
			items[i] = m
		}
		return FromAny(items)
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// MustFromAny is like FromAny but panics on error. It is intended for tests
// and literals.
func MustFromAny(v any) *Node {
	n, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return n
}

// ToAny converts n into map[string]any, []any and scalar values.
// Key order is lost.
func (n *Node) ToAny() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindMap:
		m := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			m[k] = n.fields[k].ToAny()
		}
		return m
	case KindSequence:
		s := make([]any, len(n.items))
		for i, item := range n.items {
			s[i] = item.ToAny()
		}
		return s
	default:
		return n.value
	}
}

// Equal reports whether a and b hold the same data. Map key order is not
// significant, and integers compare equal to floats of the same value.
func Equal(a, b *Node) bool {
	return equal(a, b, make(map[[2]*Node]bool))
}

func equal(a, b *Node, seen map[[2]*Node]bool) bool {
	if a == b {
		return true
	}
	if a == nil {
		a = Null()
	}
	if b == nil {
		b = Null()
	}
	if a.kind != b.kind {
		return false
	}
	pair := [2]*Node{a, b}
	if seen[pair] {
		return true
	}
	seen[pair] = true

	switch a.kind {
	case KindMap:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for _, k := range a.keys {
			bv, ok := b.fields[k]
			if !ok || !equal(a.fields[k], bv, seen) {
				return false
			}
		}
		return true
	case KindSequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !equal(a.items[i], b.items[i], seen) {
				return false
			}
		}
		return true
	default:
		return scalarEqual(a.value, b.value)
	}
}

func scalarEqual(a, b any) bool {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return af == bf || (math.IsNaN(af) && math.IsNaN(bf))
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
