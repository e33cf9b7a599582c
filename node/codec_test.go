package node

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

func TestFromYAML(t *testing.T) {
	src := `
openapi: 3.1.0
info:
  title: Pets
  version: "1"
paths: {}
responses:
  200:
    description: ok
count: 3
ratio: 0.5
enabled: true
nothing: null
created: 2024-01-02
`
	n, err := FromYAML([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"openapi", "info", "paths", "responses", "count", "ratio", "enabled", "nothing", "created"}, n.Keys())
	assert.Equal(t, "3.1.0", n.Get("openapi").Value())
	assert.Equal(t, "1", n.Get("info").Get("version").Value())
	assert.True(t, n.Get("responses").Has("200"))
	assert.Equal(t, int64(3), n.Get("count").Value())
	assert.Equal(t, 0.5, n.Get("ratio").Value())
	assert.Equal(t, true, n.Get("enabled").Value())
	assert.True(t, n.Get("nothing").IsNull())
	assert.Equal(t, "2024-01-02", n.Get("created").Value())
}

func TestFromYAMLAliasesShareNodes(t *testing.T) {
	src := `
base: &base
  type: object
  required: [id]
copy: *base
merged:
  <<: *base
  type: string
`
	n, err := FromYAML([]byte(src))
	require.NoError(t, err)

	assert.Same(t, n.Get("base"), n.Get("copy"))

	merged := n.Get("merged")
	assert.Equal(t, "string", merged.Get("type").Value())
	assert.Same(t, n.Get("base").Get("required"), merged.Get("required"))
}

func TestFromYAMLEmpty(t *testing.T) {
	for _, data := range []string{"", "  \n\n", "# nothing here\n"} {
		n, err := FromYAML([]byte(data))
		require.NoError(t, err, "input %q", data)
		assert.True(t, n.IsNull(), "input %q", data)
	}
}

func TestFromYAMLInvalid(t *testing.T) {
	_, err := FromYAML([]byte("a: [unclosed"))
	assert.Error(t, err)
}

func TestFromJSONPreservesOrder(t *testing.T) {
	n, err := FromJSON([]byte(`{"z":1,"a":{"y":2.5,"b":[true,null,"s"]},"big":18446744073709551615}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "big"}, n.Keys())
	assert.Equal(t, int64(1), n.Get("z").Value())
	assert.Equal(t, []string{"y", "b"}, n.Get("a").Keys())
	assert.Equal(t, 2.5, n.Get("a").Get("y").Value())
	assert.Equal(t, 3, n.Get("a").Get("b").Len())
	_, isFloat := n.Get("big").Value().(float64)
	assert.True(t, isFloat)
}

func TestFromJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"unterminated", `{"a":`},
		{"trailing data", `{} {}`},
		{"bad token", `{"a": tru}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestMarshalJSONOrdered(t *testing.T) {
	n, err := FromYAML([]byte("b: 1\na:\n  - x\n  - 2\nc: {d: null}\n"))
	require.NoError(t, err)

	data, err := n.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":["x",2],"c":{"d":null}}`, string(data))

	indented, err := EncodeJSON(n, "  ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(indented), "{\n  \"b\": 1,"))
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	src := "z: 1\na:\n  ref: '#/x'\n  flag: 'true'\n  list:\n    - 1.5\n    - null\n"
	n, err := FromYAML([]byte(src))
	require.NoError(t, err)

	out, err := EncodeYAML(n)
	require.NoError(t, err)

	back, err := FromYAML(out)
	require.NoError(t, err)
	assert.True(t, Equal(n, back))
	assert.Equal(t, []string{"z", "a"}, back.Keys())
	assert.Equal(t, "true", back.Get("a").Get("flag").Value())
}

func TestNodeAsYAMLValue(t *testing.T) {
	var wrapper struct {
		Doc *Node `yaml:"doc"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("doc:\n  k: v\n  n: 1\n"), &wrapper))
	require.NotNil(t, wrapper.Doc)
	assert.Equal(t, []string{"k", "n"}, wrapper.Doc.Keys())

	out, err := yaml.Marshal(wrapper)
	require.NoError(t, err)
	assert.Contains(t, string(out), "k: v")
}

func TestEncodeDetectsCycles(t *testing.T) {
	m := NewMap()
	m.Set("self", m)

	_, err := m.MarshalJSON()
	assert.ErrorIs(t, err, errCycle)
	_, err = EncodeYAML(m)
	assert.ErrorIs(t, err, errCycle)
}
