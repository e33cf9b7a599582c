// Package bundler turns a document spread over several files or URLs into a
// single self-contained document.
//
// Every external $ref is replaced by an internal one. The value an external
// reference points at is copied once into a container of the root
// (components/schemas, components/parameters, definitions, ...) and every
// occurrence of that reference is rewritten to point at the copy. Internal
// references are normalized to their shortest form; circular references are
// kept as they are.
//
// # Quick Start
//
// Bundle a file using functional options:
//
//	result, err := bundler.BundleWithOptions(
//		bundler.WithFilePath("openapi.yaml"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, _ := result.MarshalYAML()
//
// Or create a reusable Bundler instance:
//
//	b := bundler.New()
//	b.ResolveHTTPRefs = true
//	result, err := b.Bundle(ctx, "https://example.com/api/openapi.yaml")
//
// # Naming
//
// A hoisted value is named "<file>_<token>": the base name of the file it
// came from without its extension, and the last token of its JSON Pointer
// ("root" for a whole file). Both parts are reduced to [A-Za-z0-9_-]. When a
// name is taken, "_2", "_3", ... is appended. A target referenced many times
// is hoisted once.
//
// # Containers
//
// OpenAPI 3 roots receive components/<kind>, where the kind comes from where
// the target lived in its own file (parameters, requestBodies, responses,
// headers, else schemas). Swagger 2 roots receive definitions, parameters or
// responses. Other roots use an existing components or definitions map, or
// get a new components map.
//
// # Multiple Inputs
//
// BundleMany merges several documents before bundling, prefixing their
// components, operationIds, conflicting tags and conflicting paths with a
// name derived from each input file.
//
// # Errors
//
// Every external document is loaded before anything is rewritten. When some
// of them cannot be loaded, the result is an *oaserrors.ErrorGroup listing
// all of them and no document is modified; WithFailFast returns the first
// failure instead. A reference to a pointer that does not exist is left as
// written and reported in Result.Warnings.
//
// # Security
//
// HTTP references are refused unless WithResolveHTTPRefs is set. WithBaseDir
// confines file reads to a directory.
package bundler
