package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasbundle/node"
)

func TestDedent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "a: 1\n", "a: 1\n"},
		{"indented", "\n\t\ta: 1\n\t\tb:\n\t\t  c: 2\n", "a: 1\nb:\n  c: 2\n"},
		{"blank lines kept", "\n  a: 1\n\n  b: 2", "a: 1\n\nb: 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedent(tt.in))
		})
	}
}

func TestWriteTree(t *testing.T) {
	dir := WriteTree(t, map[string]string{
		"api.yaml":          "openapi: 3.1.0\n",
		"models/pet.yaml":   "type: object\n",
		"models/deep/x.yml": "type: string\n",
	})

	data, err := os.ReadFile(filepath.Join(dir, "models", "pet.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "type: object\n", string(data))
	assert.FileExists(t, filepath.Join(dir, "models", "deep", "x.yml"))
}

func TestWriteTempYAMLAndJSON(t *testing.T) {
	doc := node.MustFromAny(map[string]any{"openapi": "3.0.3"})

	y := WriteTempYAML(t, doc)
	data, err := os.ReadFile(y)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.0.3")

	j := WriteTempJSON(t, doc)
	data, err = os.ReadFile(j)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"openapi": "3.0.3"`)
}

func TestMustYAML(t *testing.T) {
	n := MustYAML(t, `
		a:
		  b: 1
	`)
	assert.Equal(t, int64(1), n.Get("a").Get("b").Value())
}
