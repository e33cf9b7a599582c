package bundler

import (
	"github.com/erraggy/oasbundle/internal/pathutil"
	"github.com/erraggy/oasbundle/node"
)

// container is a map in the root document that hoisted values are stored in.
type container struct {
	node *node.Node
	// prefix is the pointer of node, e.g. "#/components/schemas".
	prefix string
}

// Dialect is the OpenAPI major version a root document declares.
type Dialect string

const (
	// DialectOAS3 is a root with a string "openapi" member.
	DialectOAS3 Dialect = "openapi3"
	// DialectOAS2 is a root with a string "swagger" member.
	DialectOAS2 Dialect = "swagger2"
	// DialectUnknown is any other root.
	DialectUnknown Dialect = "unknown"
)

// DetectDialect reports the dialect declared by root.
func DetectDialect(root *node.Node) Dialect {
	if _, ok := root.Get("openapi").Str(); ok {
		return DialectOAS3
	}
	if _, ok := root.Get("swagger").Str(); ok {
		return DialectOAS2
	}
	return DialectUnknown
}

// ensureContainer returns the container for t in root, creating the maps
// on the way when they are missing.
//
// OpenAPI 3 roots use components/<t>. Swagger 2 roots use definitions,
// parameters or responses; request bodies and headers have no reusable
// section there and fall back to definitions. Other roots use an existing
// components map, else an existing definitions map, else a new
// components/<t>.
func ensureContainer(root *node.Node, t ContainerType) container {
	switch DetectDialect(root) {
	case DialectOAS3:
		return componentsContainer(root, t)
	case DialectOAS2:
		switch t {
		case ContainerParameters:
			return container{node: ensureMap(root, "parameters"), prefix: "#/parameters"}
		case ContainerResponses:
			return container{node: ensureMap(root, "responses"), prefix: "#/responses"}
		default:
			return container{node: ensureMap(root, "definitions"), prefix: "#/definitions"}
		}
	}

	if root.Get("components").IsMap() {
		return componentsContainer(root, t)
	}
	if defs := root.Get("definitions"); defs.IsMap() {
		return container{node: defs, prefix: "#/definitions"}
	}
	return componentsContainer(root, t)
}

func componentsContainer(root *node.Node, t ContainerType) container {
	components := ensureMap(root, "components")
	return container{
		node:   ensureMap(components, string(t)),
		prefix: pathutil.Join("#/components", string(t)),
	}
}

// ensureMap returns parent[key], replacing it with an empty map when it is
// missing or not a map.
func ensureMap(parent *node.Node, key string) *node.Node {
	if child := parent.Get(key); child.IsMap() {
		return child
	}
	child := node.NewMap()
	parent.Set(key, child)
	return child
}
