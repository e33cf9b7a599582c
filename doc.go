// Package oasbundle bundles OpenAPI and JSON Schema documents whose $ref
// pointers span several files or URLs into a single document that contains
// only internal references.
//
// # Overview
//
// Bundling runs as one pipeline per call:
//
//   - resolver: every external document reachable through $ref is fetched
//     and parsed exactly once, concurrently, into a registry keyed by
//     normalized absolute location
//   - bundler: every reference occurrence is inventoried, sorted into a
//     canonical order, and rewritten so that external targets are hoisted
//     into the root document's components (OAS 3.x) or definitions,
//     parameters and responses (OAS 2.0)
//
// The supporting packages are node (the ordered document tree), parser
// (YAML/JSON decoding and logging) and oaserrors (typed errors).
//
// # Quick Start
//
//	import "github.com/erraggy/oasbundle/bundler"
//
//	result, err := bundler.BundleWithOptions(bundler.WithFilePath("openapi.yaml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, err := result.MarshalYAML()
//
// Several root documents can be merged and bundled together:
//
//	result, err := bundler.BundleMany(ctx, []string{"users.yaml", "orders.yaml"})
//
// # Command Line
//
// The oasbundle command exposes the same functionality:
//
//	oasbundle bundle -o bundled.yaml openapi.yaml
//	oasbundle refs openapi.yaml
//	oasbundle mcp
package oasbundle
