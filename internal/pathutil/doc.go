// Package pathutil provides JSON Pointer utilities shared by the reference
// registry, the external resolver and the bundler.
//
// [Parse] and [Join] convert between pointer strings and reference tokens
// (RFC 6901), including the "location#/pointer" form used by $ref values:
//
//	pathutil.Parse("#/paths/~1pets/get")     // ["paths", "/pets", "get"]
//	pathutil.Join("#/paths", "/pets", "get") // "#/paths/~1pets/get"
//
// [PathBuilder] uses push/pop semantics to build pointers incrementally
// during recursive traversal without allocating intermediate strings:
//
//	path := pathutil.Get()
//	defer pathutil.Put(path)
//
//	path.Push("components")
//	path.Push("schemas")
//	// ... recurse ...
//	path.Pop()
//
//	// Only call String() when needed (e.g., recording a $ref occurrence)
//	ptr := path.String() // "#/components/schemas"
//
// # Reference Builders
//
// The package also provides functions for building JSON Pointer references
// to OpenAPI components:
//
//	ref := pathutil.SchemaRef("Pet")                 // "#/components/schemas/Pet"
//	ref := pathutil.ComponentRef("parameters", "Id") // "#/components/parameters/Id"
//
// # Output Path Sanitization
//
// [SanitizeOutputPath] validates and cleans output file paths for security.
// It rejects symlinks:
//
//	safe, err := pathutil.SanitizeOutputPath(userProvidedPath)
//	if err != nil {
//	    return err // symlink detected
//	}
package pathutil
