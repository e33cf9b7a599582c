package resolver

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasbundle/internal/testutil"
	"github.com/erraggy/oasbundle/oaserrors"
)

var (
	testRoot = filepath.FromSlash("/specs/api.yaml")
	testPet  = filepath.FromSlash("/specs/pet.yaml")
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry()
	reg.SetRoot(testRoot, testutil.MustYAML(t, `
		components:
		  schemas:
		    Pet:
		      type: object
		      properties:
		        name:
		          type: string
		    Alias:
		      $ref: '#/components/schemas/Pet'
		    AliasOfAlias:
		      $ref: '#/components/schemas/Alias'
		    Extended:
		      $ref: '#/components/schemas/Pet'
		      description: extended pet
		    Self:
		      $ref: '#/components/schemas/Self'
		    A:
		      $ref: '#/components/schemas/B'
		    B:
		      $ref: '#/components/schemas/A'
		    Remote:
		      $ref: 'pet.yaml#/Pet'
		    Nullable: null
		paths:
		  /pets:
		    get:
		      parameters:
		        - name: limit
		          in: query
		x-odd:
		  a/b: joined
		  my pet: spaced
	`), PathTypeFile)

	pet, created := reg.Add("pet.yaml")
	require.True(t, created)
	pet.Complete(testutil.MustYAML(t, `
		Pet:
		  type: object
		  description: remote pet
		Tag:
		  $ref: '#/Pet'
	`), nil)
	return reg
}

func TestRegistryResolve(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		name         string
		ref          string
		wantPath     string
		indirections int
		check        func(t *testing.T, p *Pointer)
	}{
		{
			name:     "plain pointer",
			ref:      "#/components/schemas/Pet",
			wantPath: testRoot + "#/components/schemas/Pet",
			check: func(t *testing.T, p *Pointer) {
				assert.Equal(t, "object", p.Value.Get("type").Value())
			},
		},
		{
			name:         "reference at end is chased",
			ref:          "#/components/schemas/Alias",
			wantPath:     testRoot + "#/components/schemas/Pet",
			indirections: 1,
		},
		{
			name:         "chain of references",
			ref:          "#/components/schemas/AliasOfAlias",
			wantPath:     testRoot + "#/components/schemas/Pet",
			indirections: 2,
		},
		{
			name:         "reference mid pointer moves the path",
			ref:          "#/components/schemas/Alias/properties/name",
			wantPath:     testRoot + "#/components/schemas/Pet/properties/name",
			indirections: 1,
			check: func(t *testing.T, p *Pointer) {
				assert.Equal(t, "string", p.Value.Get("type").Value())
			},
		},
		{
			name:         "extended reference keeps path and merges",
			ref:          "#/components/schemas/Extended",
			wantPath:     testRoot + "#/components/schemas/Extended",
			indirections: 1,
			check: func(t *testing.T, p *Pointer) {
				assert.Equal(t, "extended pet", p.Value.Get("description").Value())
				assert.Equal(t, "object", p.Value.Get("type").Value())
				assert.False(t, p.Value.IsRef())
			},
		},
		{
			name:         "external reference",
			ref:          "#/components/schemas/Remote",
			wantPath:     testPet + "#/Pet",
			indirections: 1,
			check: func(t *testing.T, p *Pointer) {
				assert.Equal(t, "remote pet", p.Value.Get("description").Value())
			},
		},
		{
			name:     "relative location",
			ref:      "pet.yaml#/Pet",
			wantPath: testPet + "#/Pet",
		},
		{
			name:         "reference inside external document",
			ref:          "pet.yaml#/Tag",
			wantPath:     testPet + "#/Pet",
			indirections: 1,
		},
		{
			name:     "sequence index",
			ref:      "#/paths/~1pets/get/parameters/0",
			wantPath: testRoot + "#/paths/~1pets/get/parameters/0",
			check: func(t *testing.T, p *Pointer) {
				assert.Equal(t, "limit", p.Value.Get("name").Value())
			},
		},
		{
			name:     "unescaped slash in key",
			ref:      "#/x-odd/a/b",
			wantPath: testRoot + "#/x-odd/a/b",
			check: func(t *testing.T, p *Pointer) {
				assert.Equal(t, "joined", p.Value.Value())
			},
		},
		{
			name:     "percent encoded token",
			ref:      "#/x-odd/my%20pet",
			wantPath: testRoot + "#/x-odd/my%20pet",
			check: func(t *testing.T, p *Pointer) {
				assert.Equal(t, "spaced", p.Value.Value())
			},
		},
		{
			name:     "whole document",
			ref:      "pet.yaml",
			wantPath: testPet,
			check: func(t *testing.T, p *Pointer) {
				assert.True(t, p.Value.Has("Tag"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := reg.Resolve(tt.ref, "#/test")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, p.Path)
			assert.Equal(t, tt.indirections, p.Indirections)
			assert.False(t, p.Circular)
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestRegistryResolveCircular(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("self reference", func(t *testing.T) {
		p, err := reg.Resolve("#/components/schemas/Self", "#/x")
		require.NoError(t, err)
		assert.True(t, p.Circular)
		assert.True(t, p.Value.IsRef())
		assert.Equal(t, testRoot+"#/components/schemas/Self", p.Path)
	})

	t.Run("mutual references terminate", func(t *testing.T) {
		p, err := reg.Resolve("#/components/schemas/A", "#/x")
		require.NoError(t, err)
		ref, ok := p.Value.Ref()
		require.True(t, ok)
		assert.Equal(t, "#/components/schemas/B", ref)
		assert.Equal(t, testRoot+"#/components/schemas/A", p.Path)
		assert.True(t, p.Circular)
	})

	t.Run("mutual references across documents", func(t *testing.T) {
		loop, created := reg.Add("loop.yaml")
		require.True(t, created)
		loop.Complete(testutil.MustYAML(t, `
			A:
			  $ref: '#/B'
			B:
			  $ref: '#/A'
		`), nil)

		p, err := reg.Resolve("loop.yaml#/A", "#/components/schemas/Loop")
		require.NoError(t, err)
		assert.True(t, p.Circular)
		assert.Equal(t, filepath.FromSlash("/specs/loop.yaml")+"#/A", p.Path)
		ref, ok := p.Value.Ref()
		require.True(t, ok)
		assert.Equal(t, "#/B", ref)
		assert.Zero(t, p.Indirections)
	})
}

func TestRegistryResolveErrors(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("missing token", func(t *testing.T) {
		_, err := reg.Resolve("#/components/schemas/Nope", "#/paths/x")
		require.Error(t, err)
		assert.ErrorIs(t, err, oaserrors.ErrMissingPointer)

		var mpe *oaserrors.MissingPointerError
		require.True(t, errors.As(err, &mpe))
		assert.Equal(t, "Nope", mpe.Token)
		assert.Equal(t, "#/paths/x", mpe.PathFromRoot)
	})

	t.Run("null final value is missing", func(t *testing.T) {
		_, err := reg.Resolve("#/components/schemas/Nullable", "")
		assert.ErrorIs(t, err, oaserrors.ErrMissingPointer)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := reg.Resolve("other.yaml#/x", "")
		assert.ErrorIs(t, err, oaserrors.ErrMissingPointer)
	})

	t.Run("failed document", func(t *testing.T) {
		failure := errors.New("boom")
		e, created := reg.Add("broken.yaml")
		require.True(t, created)
		e.Complete(nil, failure)

		_, err := reg.Resolve("broken.yaml#/x", "")
		assert.ErrorIs(t, err, failure)
	})

	t.Run("reference depth limit", func(t *testing.T) {
		reg := NewRegistry()
		reg.MaxRefDepth = 2
		reg.SetRoot(testRoot, testutil.MustYAML(t, `
			a: {$ref: '#/b'}
			b: {$ref: '#/c'}
			c: {$ref: '#/d'}
			d: {type: string}
		`), PathTypeFile)

		_, err := reg.Resolve("#/a", "")
		assert.ErrorIs(t, err, oaserrors.ErrResourceLimit)
	})
}

func TestRegistryAddClaimsOnce(t *testing.T) {
	reg := NewRegistry()
	reg.SetRoot(testRoot, testutil.MustYAML(t, "openapi: 3.1.0"), PathTypeFile)

	var (
		wg      sync.WaitGroup
		claims  atomic.Int32
		entries sync.Map
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref := "pet.yaml"
			if i%2 == 0 {
				ref = "./pet.yaml#/Pet"
			}
			e, created := reg.Add(ref)
			if created {
				claims.Add(1)
			}
			entries.Store(e, true)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), claims.Load())
	count := 0
	entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistryEntries(t *testing.T) {
	reg := newTestRegistry(t)
	pending, _ := reg.Add("zz.yaml")

	entries := reg.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, testRoot, entries[0].Location)
	assert.Equal(t, testPet, entries[1].Location)
	assert.Same(t, pending, entries[2])
	assert.False(t, pending.Ready())
	assert.Nil(t, pending.Value())
	assert.Empty(t, reg.Errors())

	pending.Complete(nil, errors.New("failed"))
	pending.Complete(testutil.MustYAML(t, "a: 1"), nil)
	assert.True(t, pending.Ready())
	assert.Nil(t, pending.Value())
	assert.Len(t, reg.Errors(), 1)
	assert.Equal(t, PathTypeFile, reg.Root().PathType)
	assert.Equal(t, testRoot, reg.RootLocation())
}
