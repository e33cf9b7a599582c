package bundler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/oasbundle/internal/testutil"
)

func TestEnsureContainer(t *testing.T) {
	tests := []struct {
		name       string
		root       string
		typ        ContainerType
		wantPrefix string
		wantKeys   []string
	}{
		{
			name:       "openapi 3 creates components section",
			root:       `openapi: 3.1.0`,
			typ:        ContainerParameters,
			wantPrefix: "#/components/parameters",
			wantKeys:   []string{"openapi", "components"},
		},
		{
			name:       "swagger 2 parameters",
			root:       `swagger: "2.0"`,
			typ:        ContainerParameters,
			wantPrefix: "#/parameters",
			wantKeys:   []string{"swagger", "parameters"},
		},
		{
			name:       "swagger 2 responses",
			root:       `swagger: "2.0"`,
			typ:        ContainerResponses,
			wantPrefix: "#/responses",
			wantKeys:   []string{"swagger", "responses"},
		},
		{
			name:       "swagger 2 headers fall back to definitions",
			root:       `swagger: "2.0"`,
			typ:        ContainerHeaders,
			wantPrefix: "#/definitions",
			wantKeys:   []string{"swagger", "definitions"},
		},
		{
			name:       "swagger 2 request bodies fall back to definitions",
			root:       `swagger: "2.0"`,
			typ:        ContainerRequestBodies,
			wantPrefix: "#/definitions",
			wantKeys:   []string{"swagger", "definitions"},
		},
		{
			name: "plain schema with definitions",
			root: `
				definitions:
				  A: {type: string}
			`,
			typ:        ContainerParameters,
			wantPrefix: "#/definitions",
			wantKeys:   []string{"definitions"},
		},
		{
			name: "plain schema prefers components",
			root: `
				definitions: {}
				components: {}
			`,
			typ:        ContainerSchemas,
			wantPrefix: "#/components/schemas",
			wantKeys:   []string{"definitions", "components"},
		},
		{
			name:       "plain schema without containers",
			root:       `type: object`,
			typ:        ContainerSchemas,
			wantPrefix: "#/components/schemas",
			wantKeys:   []string{"type", "components"},
		},
		{
			name:       "non-string version is not a dialect",
			root:       `openapi: 3`,
			typ:        ContainerResponses,
			wantPrefix: "#/components/responses",
			wantKeys:   []string{"openapi", "components"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutil.MustYAML(t, tt.root)
			c := ensureContainer(root, tt.typ)

			assert.Equal(t, tt.wantPrefix, c.prefix)
			assert.True(t, c.node.IsMap())
			assert.Equal(t, tt.wantKeys, root.Keys())

			again := ensureContainer(root, tt.typ)
			assert.Same(t, c.node, again.node, "container must be reused")
		})
	}
}

func TestDetectDialect(t *testing.T) {
	assert.Equal(t, DialectOAS3, DetectDialect(testutil.MustYAML(t, `openapi: 3.0.3`)))
	assert.Equal(t, DialectOAS2, DetectDialect(testutil.MustYAML(t, `swagger: "2.0"`)))
	assert.Equal(t, DialectUnknown, DetectDialect(testutil.MustYAML(t, `swagger: 2.0`)))
	assert.Equal(t, DialectUnknown, DetectDialect(testutil.MustYAML(t, `type: object`)))
}
