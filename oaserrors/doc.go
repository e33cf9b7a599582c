// Package oaserrors provides structured error types for the oasbundle library.
//
// Import path: github.com/erraggy/oasbundle/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between different categories of errors and implement
// appropriate recovery strategies.
//
// # Error Types
//
//   - [MissingPointerError]: a $ref pointer does not exist on its target document
//   - [ResolverError]: an external location could not be fetched or parsed
//   - [SyntaxError]: a document is not a structured document (e.g. the root is not a mapping)
//   - [ParseError]: YAML/JSON decoding failures
//   - [ReferenceError]: malformed references, circular chains, path traversal
//   - [ResourceLimitError]: Resource exhaustion (depth, size, count limits)
//   - [ConfigError]: Invalid configuration or input options
//
// Bundling does not stop at the first failing external location. All
// failures are returned together as an [ErrorGroup], whose members remain
// reachable through errors.Is and errors.As.
//
// # Sentinel Errors
//
//   - [ErrMissingPointer]: Matches any [MissingPointerError]
//   - [ErrResolver]: Matches any [ResolverError]
//   - [ErrSyntax]: Matches any [SyntaxError]
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError] or [MissingPointerError]
//   - [ErrCircularReference]: Matches [ReferenceError] with IsCircular=true
//   - [ErrPathTraversal]: Matches [ReferenceError] with IsPathTraversal=true
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage Examples
//
//	result, err := bundler.BundleWithOptions(bundler.WithFilePath("api.yaml"))
//	if errors.Is(err, oaserrors.ErrResolver) {
//	    // At least one external document could not be loaded
//	}
//
//	var group *oaserrors.ErrorGroup
//	if errors.As(err, &group) {
//	    for _, e := range group.Errors {
//	        fmt.Println(e)
//	    }
//	}
//
// # Error Chaining
//
// Error types with a Cause field return it from Unwrap, so root causes such
// as [os.ErrNotExist] can be found through the standard error chain.
package oaserrors
