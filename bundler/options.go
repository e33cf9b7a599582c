package bundler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erraggy/oasbundle"
	"github.com/erraggy/oasbundle/internal/options"
	"github.com/erraggy/oasbundle/node"
	"github.com/erraggy/oasbundle/oaserrors"
	"github.com/erraggy/oasbundle/parser"
	"github.com/erraggy/oasbundle/resolver"
)

// Option is a function that configures a bundle operation
type Option func(*bundleConfig) error

// bundleConfig holds configuration for a bundle operation
type bundleConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	bytes    []byte
	document *node.Node

	// baseLocation is where bytes and document inputs are treated as living
	baseLocation string

	ctx context.Context

	// Collaborators (nil means use the default)
	fetcher    resolver.Fetcher
	parser     resolver.Parser
	logger     parser.Logger
	httpClient *http.Client

	// Configuration options
	resolveHTTPRefs bool
	userAgent       string
	baseDir         string
	concurrency     int
	failFast        bool

	// Resource limits (0 means use default)
	maxRefDepth        int
	maxCachedDocuments int
	maxFileSize        int64
}

// applyOptions applies option functions without validating the input source
func applyOptions(opts ...Option) (*bundleConfig, error) {
	cfg := &bundleConfig{
		ctx:       context.Background(),
		userAgent: oasbundle.UserAgent(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applySingleInputOptions applies option functions and validates that
// exactly one input source is specified
func applySingleInputOptions(opts ...Option) (*bundleConfig, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	if err := options.ValidateSingleInputSource(
		"must specify an input source (use WithFilePath, WithBytes, or WithDocument)",
		"must specify exactly one input source",
		cfg.filePath != nil, cfg.bytes != nil, cfg.document != nil,
	); err != nil {
		return nil, &oaserrors.ConfigError{Option: "input", Cause: err}
	}
	return cfg, nil
}

// bundler builds the Bundler described by cfg
func (cfg *bundleConfig) bundler() *Bundler {
	return &Bundler{
		Fetcher:            cfg.fetcher,
		Parser:             cfg.parser,
		Logger:             cfg.logger,
		ResolveHTTPRefs:    cfg.resolveHTTPRefs,
		HTTPClient:         cfg.httpClient,
		UserAgent:          cfg.userAgent,
		BaseDir:            cfg.baseDir,
		Concurrency:        cfg.concurrency,
		FailFast:           cfg.failFast,
		MaxRefDepth:        cfg.maxRefDepth,
		MaxCachedDocuments: cfg.maxCachedDocuments,
		MaxFileSize:        cfg.maxFileSize,
	}
}

// source returns the single input described by cfg
func (cfg *bundleConfig) source() source {
	switch {
	case cfg.filePath != nil:
		return source{location: *cfg.filePath}
	case cfg.bytes != nil:
		return source{data: cfg.bytes, location: cfg.baseLocation, inMemory: true}
	default:
		return source{doc: cfg.document, location: cfg.baseLocation, inMemory: true}
	}
}

// WithFilePath specifies a file path or URL as the input source
func WithFilePath(path string) Option {
	return func(cfg *bundleConfig) error {
		if path == "" {
			return &oaserrors.ConfigError{Option: "WithFilePath", Message: "path cannot be empty"}
		}
		cfg.filePath = &path
		return nil
	}
}

// WithBytes specifies YAML or JSON bytes as the input source.
// Relative references resolve against WithBaseLocation, or the working
// directory when it is not set.
func WithBytes(data []byte) Option {
	return func(cfg *bundleConfig) error {
		if data == nil {
			return &oaserrors.ConfigError{Option: "WithBytes", Message: "bytes cannot be nil"}
		}
		cfg.bytes = data
		return nil
	}
}

// WithDocument specifies an already decoded document as the input source.
// The document is bundled in place.
func WithDocument(doc *node.Node) Option {
	return func(cfg *bundleConfig) error {
		if doc == nil {
			return &oaserrors.ConfigError{Option: "WithDocument", Message: "document cannot be nil"}
		}
		cfg.document = doc
		return nil
	}
}

// WithBaseLocation sets the location that WithBytes and WithDocument inputs
// are treated as living at. It may be a file path or a URL.
func WithBaseLocation(location string) Option {
	return func(cfg *bundleConfig) error {
		cfg.baseLocation = location
		return nil
	}
}

// WithContext sets the context that bounds fetching external documents.
// Default: context.Background()
func WithContext(ctx context.Context) Option {
	return func(cfg *bundleConfig) error {
		if ctx == nil {
			return &oaserrors.ConfigError{Option: "WithContext", Message: "context cannot be nil"}
		}
		cfg.ctx = ctx
		return nil
	}
}

// WithFetcher replaces the fetcher used for the root and every external
// document. WithResolveHTTPRefs, WithHTTPClient, WithUserAgent, WithBaseDir
// and WithMaxFileSize have no effect on a custom fetcher.
func WithFetcher(f resolver.Fetcher) Option {
	return func(cfg *bundleConfig) error {
		cfg.fetcher = f
		return nil
	}
}

// WithParser replaces the decoder for fetched bytes.
// Default: parser.DocumentParser
func WithParser(p resolver.Parser) Option {
	return func(cfg *bundleConfig) error {
		cfg.parser = p
		return nil
	}
}

// WithLogger sets a structured logger for debug output during bundling.
// By default, no logging is performed.
//
// Example:
//
//	logger := parser.NewSlogAdapter(slog.Default())
//	result, err := bundler.BundleWithOptions(
//	    bundler.WithFilePath("api.yaml"),
//	    bundler.WithLogger(logger),
//	)
func WithLogger(l parser.Logger) Option {
	return func(cfg *bundleConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithResolveHTTPRefs enables resolution of HTTP/HTTPS $ref URLs.
// This is disabled by default for security (SSRF protection).
// A root given as a URL is always fetched.
func WithResolveHTTPRefs(enabled bool) Option {
	return func(cfg *bundleConfig) error {
		cfg.resolveHTTPRefs = enabled
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for fetching URLs.
// If the client is nil, a client with a 30 second timeout is used.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *bundleConfig) error {
		cfg.httpClient = client
		return nil
	}
}

// WithUserAgent sets the User-Agent string for HTTP requests
// Default: "oasbundle/vX.Y.Z"
func WithUserAgent(ua string) Option {
	return func(cfg *bundleConfig) error {
		cfg.userAgent = ua
		return nil
	}
}

// WithBaseDir confines file reads, the root included, to dir.
// A reference leaving it fails with a path traversal error.
func WithBaseDir(dir string) Option {
	return func(cfg *bundleConfig) error {
		cfg.baseDir = dir
		return nil
	}
}

// WithConcurrency sets how many external documents may be fetched at once.
// A value of 0 means use the default (8).
// Returns an error if n is negative.
func WithConcurrency(n int) Option {
	return func(cfg *bundleConfig) error {
		if n < 0 {
			return &oaserrors.ConfigError{Option: "WithConcurrency", Value: n, Message: "cannot be negative"}
		}
		cfg.concurrency = n
		return nil
	}
}

// WithFailFast stops at the first failed external document instead of
// reporting every failure in an *oaserrors.ErrorGroup.
// Default: false
func WithFailFast(enabled bool) Option {
	return func(cfg *bundleConfig) error {
		cfg.failFast = enabled
		return nil
	}
}

// WithMaxRefDepth sets the maximum number of references chased while
// resolving one reference.
// A value of 0 means use the default (100).
// Returns an error if depth is negative.
func WithMaxRefDepth(depth int) Option {
	return func(cfg *bundleConfig) error {
		if depth < 0 {
			return &oaserrors.ConfigError{Option: "WithMaxRefDepth", Value: depth, Message: "cannot be negative"}
		}
		cfg.maxRefDepth = depth
		return nil
	}
}

// WithMaxCachedDocuments sets the maximum number of documents, the root
// included, one bundle operation may load.
// A value of 0 means use the default (100).
// Returns an error if count is negative.
func WithMaxCachedDocuments(count int) Option {
	return func(cfg *bundleConfig) error {
		if count < 0 {
			return &oaserrors.ConfigError{Option: "WithMaxCachedDocuments", Value: count, Message: "cannot be negative"}
		}
		cfg.maxCachedDocuments = count
		return nil
	}
}

// WithMaxFileSize sets the maximum size in bytes of any fetched document.
// A value of 0 means use the default (10MB).
// Returns an error if size is negative.
func WithMaxFileSize(size int64) Option {
	return func(cfg *bundleConfig) error {
		if size < 0 {
			return &oaserrors.ConfigError{Option: "WithMaxFileSize", Value: size, Message: "cannot be negative"}
		}
		cfg.maxFileSize = size
		return nil
	}
}

// String describes the input, for error messages.
func (s source) String() string {
	if s.location != "" {
		return s.location
	}
	return fmt.Sprintf("<in-memory %s>", resolver.SyntheticRootName)
}
