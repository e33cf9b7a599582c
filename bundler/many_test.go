package bundler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasbundle/internal/testutil"
	"github.com/erraggy/oasbundle/oaserrors"
	"github.com/erraggy/oasbundle/resolver"
)

func TestBundleMany(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"pets.yaml": `
			openapi: 3.0.3
			info:
			  title: Pets
			  version: "1.0"
			servers:
			  - url: https://api.example.com
			tags:
			  - name: pets
			    description: pet operations
			paths:
			  /items:
			    get:
			      operationId: list
			      tags: [pets]
			      responses:
			        "200":
			          description: ok
			          content:
			            application/json:
			              schema:
			                $ref: '#/components/schemas/Item'
			components:
			  schemas:
			    Item:
			      type: object
		`,
		"store.yaml": `
			openapi: 3.1.0
			info:
			  title: Store
			  description: Store API
			servers:
			  - url: https://api.example.com
			  - url: https://store.example.com
			tags:
			  - name: pets
			paths:
			  /items:
			    get:
			      operationId: list
			      tags: [pets]
			      parameters:
			        - $ref: 'shared.yaml#/components/parameters/Limit'
			      responses:
			        "200":
			          description: ok
			          content:
			            application/json:
			              schema:
			                $ref: 'pets.yaml#/components/schemas/Item'
			components:
			  schemas:
			    Item:
			      type: string
		`,
		"shared.yaml": `
			components:
			  parameters:
			    Limit:
			      name: limit
			      in: query
		`,
	})

	result, err := BundleMany(context.Background(), []string{
		filepath.Join(dir, "pets.yaml"),
		filepath.Join(dir, "store.yaml"),
	})
	require.NoError(t, err)
	doc := result.Document

	assert.Equal(t, []string{"openapi", "info", "servers", "paths", "components", "tags"}, doc.Keys())
	version, _ := doc.Get("openapi").Str()
	assert.Equal(t, "3.0.3", version)

	title, _ := at(t, doc, "#/info/title").Str()
	assert.Equal(t, "Pets", title)
	desc, _ := at(t, doc, "#/info/description").Str()
	assert.Equal(t, "Store API", desc)
	assert.Equal(t, 2, doc.Get("servers").Len())

	// components are prefixed per input
	kind, _ := at(t, doc, "#/components/schemas/pets_Item/type").Str()
	assert.Equal(t, "object", kind)
	kind, _ = at(t, doc, "#/components/schemas/store_Item/type").Str()
	assert.Equal(t, "string", kind)

	// the second /items moves under its prefix
	assert.Equal(t, []string{"/items", "/store/items"}, doc.Get("paths").Keys())
	petsSchema := "#/paths/~1items/get/responses/200/content/application~1json/schema"
	storeSchema := "#/paths/~1store~1items/get/responses/200/content/application~1json/schema"
	assert.Equal(t, "#/components/schemas/pets_Item", refAt(t, doc, petsSchema))
	assert.Equal(t, "#/components/schemas/pets_Item", refAt(t, doc, storeSchema))

	// external references are bundled
	assert.Equal(t, "#/components/parameters/shared_Limit", refAt(t, doc, "#/paths/~1store~1items/get/parameters/0"))

	opID, _ := at(t, doc, "#/paths/~1items/get/operationId").Str()
	assert.Equal(t, "pets_list", opID)
	opID, _ = at(t, doc, "#/paths/~1store~1items/get/operationId").Str()
	assert.Equal(t, "store_list", opID)

	tag, _ := at(t, doc, "#/paths/~1store~1items/get/tags/0").Str()
	assert.Equal(t, "store_pets", tag)
	tag, _ = at(t, doc, "#/paths/~1items/get/tags/0").Str()
	assert.Equal(t, "pets", tag)
	require.Equal(t, 2, doc.Get("tags").Len())
	tag, _ = at(t, doc, "#/tags/1/name").Str()
	assert.Equal(t, "store_pets", tag)
	tagDesc, _ := at(t, doc, "#/tags/0/description").Str()
	assert.Equal(t, "pet operations", tagDesc)

	assert.Len(t, result.StructuredWarnings.ByCategory(WarnPathRelocated), 1)
	assert.Len(t, result.StructuredWarnings.ByCategory(WarnTagRenamed), 1)
	assert.Equal(t, WarnTagRenamed, result.StructuredWarnings[0].Category)

	assert.Equal(t, resolver.SyntheticRoot(dir), result.SourcePath)
	assert.Equal(t, 4, result.Stats.DocumentCount)
	assert.Equal(t, 1, result.Stats.HoistedCount)

	// the inputs themselves are left alone
	pets, err := Bundle(filepath.Join(dir, "pets.yaml"))
	require.NoError(t, err)
	assert.True(t, pets.Document.Get("components").Get("schemas").Has("Item"))
}

func TestBundleManySwaggerDefinitions(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"legacy.yaml": `
			swagger: "2.0"
			paths:
			  /pets:
			    get:
			      responses:
			        "200":
			          description: ok
			          schema:
			            $ref: '#/definitions/Pet/properties/name'
			definitions:
			  Pet:
			    properties:
			      name:
			        type: string
		`,
	})

	result, err := BundleMany(context.Background(), []string{filepath.Join(dir, "legacy.yaml")})
	require.NoError(t, err)
	doc := result.Document

	assert.Equal(t, DialectOAS2, result.Dialect)
	assert.True(t, at(t, doc, "#/components/schemas").Has("legacy_Pet"))
	assert.Equal(t, []string{"schemas"}, doc.Get("components").Keys())
	assert.Equal(t,
		"#/components/schemas/legacy_Pet/properties/name",
		refAt(t, doc, "#/paths/~1pets/get/responses/200/schema"),
	)
	assert.False(t, doc.Has("tags"))
}

func TestBundleManyUniquePrefixes(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"v1/api.yaml": `
			openapi: 3.0.3
			components:
			  schemas:
			    Foo: {type: string}
		`,
		"v2/api.yaml": `
			openapi: 3.0.3
			components:
			  schemas:
			    Foo: {type: integer}
		`,
	})

	result, err := BundleMany(context.Background(), []string{
		filepath.Join(dir, "v1", "api.yaml"),
		filepath.Join(dir, "v2", "api.yaml"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"api_Foo", "api_2_Foo"}, at(t, result.Document, "#/components/schemas").Keys())
	assert.Zero(t, result.Document.Get("paths").Len())
}

func TestBundleManyErrors(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"ok.yaml":   "openapi: 3.0.3\n",
		"list.yaml": "- not\n- a map\n",
	})

	t.Run("no inputs", func(t *testing.T) {
		_, err := BundleMany(context.Background(), nil)
		assert.ErrorIs(t, err, oaserrors.ErrConfig)
	})

	t.Run("input options rejected", func(t *testing.T) {
		_, err := BundleMany(context.Background(), []string{filepath.Join(dir, "ok.yaml")}, WithFilePath("x.yaml"))
		assert.ErrorIs(t, err, oaserrors.ErrConfig)
	})

	t.Run("every failed input is reported", func(t *testing.T) {
		_, err := BundleMany(context.Background(), []string{
			filepath.Join(dir, "ok.yaml"),
			filepath.Join(dir, "missing.yaml"),
			filepath.Join(dir, "list.yaml"),
		})
		require.Error(t, err)

		var group *oaserrors.ErrorGroup
		require.ErrorAs(t, err, &group)
		assert.Equal(t, 2, group.Len())
		assert.ErrorIs(t, err, oaserrors.ErrResolver)
		assert.ErrorIs(t, err, oaserrors.ErrSyntax)
	})
}

func TestMapLocalRef(t *testing.T) {
	refMap := map[string]string{
		"#/components/schemas/Pet":      "#/components/schemas/a_Pet",
		"#/components/parameters/Id":    "#/components/parameters/a_Id",
		"#/components/schemas/Old~1Pet": "#/components/schemas/a_Old~1Pet",
	}

	tests := []struct {
		ref  string
		want string
	}{
		{"#/components/schemas/Pet", "#/components/schemas/a_Pet"},
		{"#/components/schemas/Pet/properties/name", "#/components/schemas/a_Pet/properties/name"},
		{"#/components/parameters/Id", "#/components/parameters/a_Id"},
		{"#/definitions/Pet", "#/components/schemas/a_Pet"},
		{"#/definitions/Pet/items", "#/components/schemas/a_Pet/items"},
		{"#/components/schemas/Old~1Pet", "#/components/schemas/a_Old~1Pet"},
		{"#/components/schemas/Other", "#/components/schemas/Other"},
		{"#/components/schemas", "#/components/schemas"},
		{"#/paths/~1pets", "#/paths/~1pets"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, mapLocalRef(tt.ref, refMap))
		})
	}
}
