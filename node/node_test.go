package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want Kind
	}{
		{"nil", nil, KindScalar},
		{"string", NewString("x"), KindScalar},
		{"map", NewMap(), KindMap},
		{"sequence", NewSequence(), KindSequence},
		{"ref", NewRef("#/a"), KindRef},
		{"non-string ref", MustFromAny(map[string]any{"$ref": 1}), KindMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.Kind())
		})
	}
}

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("b", NewScalar(1))
	m.Set("a", NewScalar(2))
	m.Set("c", NewScalar(3))
	m.Set("a", NewScalar(4))

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	assert.Equal(t, int64(4), m.Get("a").Value())

	m.Delete("a")
	assert.Equal(t, []string{"b", "c"}, m.Keys())
	assert.False(t, m.Has("a"))
	m.Delete("missing")
	assert.Equal(t, 2, m.Len())
}

func TestChild(t *testing.T) {
	doc := MustFromAny(map[string]any{
		"list": []any{"zero", "one"},
		"map":  map[string]any{"k": "v"},
	})

	list, ok := doc.Child("list")
	require.True(t, ok)

	one, ok := list.Child("1")
	require.True(t, ok)
	s, _ := one.Str()
	assert.Equal(t, "one", s)

	_, ok = list.Child("2")
	assert.False(t, ok)
	_, ok = list.Child("-1")
	assert.False(t, ok)
	_, ok = list.Child("x")
	assert.False(t, ok)
	_, ok = doc.Get("map").Get("k").Child("any")
	assert.False(t, ok)

	assert.True(t, list.SetChild("0", NewString("new")))
	assert.False(t, list.SetChild("5", NewString("no")))
	s, _ = list.Index(0).Str()
	assert.Equal(t, "new", s)
}

func TestRefs(t *testing.T) {
	plain := NewRef("ext.yaml#/a")
	assert.True(t, plain.IsRef())
	assert.False(t, plain.IsExtendedRef())

	extended := NewRef("#/b")
	extended.Set("description", NewString("override"))
	assert.True(t, extended.IsExtendedRef())

	extended.SetRef("#/c")
	ref, ok := extended.Ref()
	require.True(t, ok)
	assert.Equal(t, "#/c", ref)
	assert.Equal(t, []string{"$ref", "description"}, extended.Keys())

	assert.False(t, NewString("$ref").IsRef())
}

func TestShallowCopy(t *testing.T) {
	child := NewMap()
	orig := NewMap()
	orig.Set("child", child)

	c := orig.ShallowCopy()
	c.Set("extra", NewString("x"))

	assert.Same(t, child, c.Get("child"))
	assert.False(t, orig.Has("extra"))
}

func TestDeepCopyKeepsSharing(t *testing.T) {
	shared := MustFromAny(map[string]any{"type": "string"})
	root := NewMap()
	root.Set("a", shared)
	root.Set("b", shared)

	c := root.DeepCopy()
	assert.NotSame(t, shared, c.Get("a"))
	assert.Same(t, c.Get("a"), c.Get("b"))
	assert.True(t, Equal(root, c))

	c.Get("a").Set("format", NewString("uuid"))
	assert.False(t, shared.Has("format"))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Node
		want bool
	}{
		{"int and float", NewScalar(1), NewScalar(1.0), true},
		{"different scalars", NewScalar("1"), NewScalar(1), false},
		{"key order ignored",
			mustJSON(t, `{"a":1,"b":2}`), mustJSON(t, `{"b":2,"a":1}`), true},
		{"sequence order matters",
			mustJSON(t, `[1,2]`), mustJSON(t, `[2,1]`), false},
		{"missing key", mustJSON(t, `{"a":1}`), mustJSON(t, `{"b":1}`), false},
		{"nil and null", nil, Null(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestFromAnyToAny(t *testing.T) {
	in := map[string]any{
		"b":    []any{1, "two", true, nil},
		"a":    map[string]any{"x": 1.5},
		"tags": []string{"t1"},
	}
	n, err := FromAny(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "tags"}, n.Keys())

	out := n.ToAny().(map[string]any)
	assert.Equal(t, []any{int64(1), "two", true, nil}, out["b"])
	assert.Equal(t, map[string]any{"x": 1.5}, out["a"])

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func mustJSON(t *testing.T, s string) *Node {
	t.Helper()
	n, err := FromJSON([]byte(s))
	require.NoError(t, err)
	return n
}
