package bundler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/erraggy/oasbundle"
	"github.com/erraggy/oasbundle/node"
	"github.com/erraggy/oasbundle/oaserrors"
	"github.com/erraggy/oasbundle/parser"
	"github.com/erraggy/oasbundle/resolver"
)

// Bundler replaces every external $ref of a document with an internal one,
// hoisting each external target once into the document's component
// containers. The zero value bundles local files with default limits.
type Bundler struct {
	// Fetcher loads the root and every external document. When nil, files
	// are read directly and HTTP is used only if ResolveHTTPRefs is set.
	Fetcher resolver.Fetcher
	// Parser decodes fetched bytes. Defaults to parser.DocumentParser.
	Parser resolver.Parser
	// Logger receives debug output. No logging is performed when nil.
	Logger parser.Logger
	// ResolveHTTPRefs enables HTTP/HTTPS external references.
	ResolveHTTPRefs bool
	// HTTPClient is used for HTTP fetches when set.
	HTTPClient *http.Client
	// UserAgent is sent with HTTP requests. Defaults to oasbundle.UserAgent().
	UserAgent string
	// BaseDir confines file reads to the directory when set.
	BaseDir string
	// Concurrency bounds in-flight fetches (default 8).
	Concurrency int
	// FailFast returns the first failed external document instead of all of them.
	FailFast bool
	// MaxRefDepth bounds reference chasing (default 100).
	MaxRefDepth int
	// MaxCachedDocuments bounds the number of loaded documents (default 100).
	MaxCachedDocuments int
	// MaxFileSize bounds the size of each fetched document (default 10MB).
	MaxFileSize int64
}

// New creates a new Bundler instance with default settings
func New() *Bundler {
	return &Bundler{UserAgent: oasbundle.UserAgent()}
}

// Stats summarizes one bundle operation.
type Stats struct {
	// RefCount is the number of references in the final inventory.
	RefCount int `json:"ref_count"`
	// ExternalRefCount is the number of those that targeted another document.
	ExternalRefCount int `json:"external_ref_count"`
	// HoistedCount is the number of values copied into containers.
	HoistedCount int `json:"hoisted_count"`
	// DocumentCount is the number of documents loaded, the root included.
	DocumentCount int `json:"document_count"`
	// CircularCount is the number of circular references kept in place.
	CircularCount int `json:"circular_count"`
}

// Result contains a bundled document and information about how it was built.
type Result struct {
	// Document is the bundled root. It references no other document, apart
	// from references that could not be resolved.
	Document *node.Node
	// SourcePath is the location of the root, or the synthetic root location
	// for in-memory and merged inputs.
	SourcePath string
	// SourceFormat is the format of the root input.
	SourceFormat parser.SourceFormat
	// Dialect is the OpenAPI flavor the containers were chosen for.
	Dialect Dialect
	// Warnings contains human-readable warning messages.
	Warnings []string
	// StructuredWarnings contains the same warnings with categories and paths.
	StructuredWarnings Warnings
	// Stats counts references, documents and hoisted values.
	Stats Stats
	// LoadTime is the time spent loading the root and every external document.
	LoadTime time.Duration
}

// HasWarnings returns true if the bundle produced any warnings.
func (r *Result) HasWarnings() bool {
	return len(r.StructuredWarnings) > 0
}

// MarshalYAML encodes the bundled document as YAML, preserving key order.
func (r *Result) MarshalYAML() ([]byte, error) {
	return node.EncodeYAML(r.Document)
}

// MarshalJSON encodes the bundled document as compact JSON, preserving key order.
func (r *Result) MarshalJSON() ([]byte, error) {
	return node.EncodeJSON(r.Document, "")
}

// Marshal encodes the bundled document in format. JSON is indented with two
// spaces; any other format produces YAML.
func (r *Result) Marshal(format parser.SourceFormat) ([]byte, error) {
	if format == parser.SourceFormatJSON {
		return node.EncodeJSON(r.Document, "  ")
	}
	return node.EncodeYAML(r.Document)
}

// BundleWithOptions bundles a document using functional options.
// This provides a flexible, extensible API that combines input source
// specification and configuration in a single function call.
//
// Example:
//
//	result, err := bundler.BundleWithOptions(
//	    bundler.WithFilePath("openapi.yaml"),
//	    bundler.WithResolveHTTPRefs(true),
//	)
func BundleWithOptions(opts ...Option) (*Result, error) {
	cfg, err := applySingleInputOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("bundler: invalid options: %w", err)
	}
	return cfg.bundler().bundle(cfg.ctx, cfg.source())
}

// Bundle is a convenience function that bundles the file or URL at path
// with default settings.
func Bundle(path string) (*Result, error) {
	return New().Bundle(context.Background(), path)
}

// BundleDocument is a convenience function that bundles doc in place with
// default settings. Relative references resolve against base, which may be
// empty to use the working directory.
func BundleDocument(ctx context.Context, doc *node.Node, base string) (*Result, error) {
	return New().BundleDocument(ctx, doc, base)
}

// Bundle bundles the file or URL at location.
func (b *Bundler) Bundle(ctx context.Context, location string) (*Result, error) {
	return b.bundle(ctx, source{location: location})
}

// BundleBytes bundles YAML or JSON data treated as living at base.
func (b *Bundler) BundleBytes(ctx context.Context, data []byte, base string) (*Result, error) {
	return b.bundle(ctx, source{data: data, location: base, inMemory: true})
}

// BundleDocument bundles doc in place. The returned Result holds doc itself.
func (b *Bundler) BundleDocument(ctx context.Context, doc *node.Node, base string) (*Result, error) {
	return b.bundle(ctx, source{doc: doc, location: base, inMemory: true})
}

// source is one root input: a location to fetch, bytes, or a decoded
// document. location is the base for bytes and documents.
type source struct {
	location string
	data     []byte
	doc      *node.Node
	inMemory bool
}

// loaded is a root document ready to be resolved.
type loaded struct {
	doc      *node.Node
	location string
	pathType resolver.PathType
	format   parser.SourceFormat
	loadTime time.Duration
}

func (b *Bundler) bundle(ctx context.Context, src source) (*Result, error) {
	l, err := b.load(ctx, src)
	if err != nil {
		return nil, err
	}
	return b.run(ctx, l, nil, nil)
}

// load fetches and decodes a root input and checks that it is a mapping.
func (b *Bundler) load(ctx context.Context, src source) (*loaded, error) {
	start := time.Now()
	l := &loaded{doc: src.doc, format: parser.SourceFormatUnknown}

	if src.inMemory {
		l.location = resolver.SyntheticRoot("")
		l.pathType = resolver.PathTypeSynthesized
		if src.location != "" {
			abs, err := resolver.AbsLocation(src.location)
			if err != nil {
				return nil, &oaserrors.ConfigError{Option: "WithBaseLocation", Value: src.location, Cause: err}
			}
			l.location = abs
			l.pathType = resolver.PathTypeOf(abs)
		}
		if l.doc == nil {
			l.format = parser.DetectFormat(l.location, "", src.data)
			doc, err := b.parser().Parse(src.data, l.format)
			if err != nil {
				return nil, fmt.Errorf("bundler: failed to parse %s: %w", src, err)
			}
			l.doc = doc
		}
	} else {
		abs, err := resolver.AbsLocation(src.location)
		if err != nil {
			return nil, &oaserrors.ConfigError{Option: "WithFilePath", Value: src.location, Cause: err}
		}
		data, contentType, err := b.rootFetcher(abs).Fetch(ctx, abs)
		if err != nil {
			return nil, &oaserrors.ResolverError{Location: abs, Message: "failed to load root document", Cause: err}
		}
		l.location = abs
		l.pathType = resolver.PathTypeOf(abs)
		l.format = parser.DetectFormat(abs, contentType, data)
		doc, err := b.parser().Parse(data, l.format)
		if err != nil {
			return nil, fmt.Errorf("bundler: failed to parse %s: %w", abs, err)
		}
		l.doc = doc
	}

	if !l.doc.IsMap() {
		return nil, &oaserrors.SyntaxError{
			Path:    l.location,
			Message: fmt.Sprintf("root document must be a mapping, got %s", l.doc.Kind()),
		}
	}
	l.loadTime = time.Since(start)
	return l, nil
}

// run resolves, crawls and remaps a loaded root. seed registers documents
// that are already decoded; basenames overrides the names derived from
// their locations.
func (b *Bundler) run(ctx context.Context, l *loaded, seed map[string]*node.Node, basenames map[string]string) (*Result, error) {
	logger := parser.OrNop(b.Logger)

	reg, loadTime, err := b.resolve(ctx, l, seed)
	if err != nil {
		return nil, err
	}
	c, err := b.crawl(reg)
	if err != nil {
		return nil, err
	}

	r := newRemapper(l.doc, basenames, b.Logger)
	r.remap(c.inventory)

	result := &Result{
		Document:     l.doc,
		SourcePath:   l.location,
		SourceFormat: l.format,
		Dialect:      DetectDialect(l.doc),
		LoadTime:     l.loadTime + loadTime,
		Stats: Stats{
			RefCount:      len(c.inventory),
			HoistedCount:  r.hoisted,
			DocumentCount: reg.Len(),
		},
	}
	for _, e := range c.inventory {
		if e.External {
			result.Stats.ExternalRefCount++
		}
		if e.Circular {
			result.Stats.CircularCount++
		}
	}
	result.addWarnings(c.warnings...)
	result.addWarnings(r.warnings...)

	logger.Debug("bundled document",
		"source", l.location,
		"refs", result.Stats.RefCount,
		"external", result.Stats.ExternalRefCount,
		"hoisted", result.Stats.HoistedCount,
		"documents", result.Stats.DocumentCount,
	)
	return result, nil
}

// resolve registers the root and seed documents and loads every external
// document they reach.
func (b *Bundler) resolve(ctx context.Context, l *loaded, seed map[string]*node.Node) (*resolver.Registry, time.Duration, error) {
	reg := resolver.NewRegistry()
	reg.MaxRefDepth = b.MaxRefDepth
	reg.SetRoot(l.location, l.doc, l.pathType)
	for location, doc := range seed {
		if e, created := reg.Add(location); created {
			e.Complete(doc, nil)
		}
	}

	start := time.Now()
	ext := &resolver.ExternalResolver{
		Fetcher:      b.fetcher(),
		Parser:       b.parser(),
		Logger:       b.Logger,
		Concurrency:  b.Concurrency,
		MaxDocuments: b.MaxCachedDocuments,
		FailFast:     b.FailFast,
	}
	if err := ext.ResolveExternal(ctx, reg); err != nil {
		return nil, 0, err
	}
	return reg, time.Since(start), nil
}

// crawl builds the sorted inventory of a resolved registry.
func (b *Bundler) crawl(reg *resolver.Registry) (*crawler, error) {
	c := newCrawler(reg, b.Logger)
	c.run()
	if err := c.err(); err != nil {
		return nil, err
	}
	sortInventory(c.inventory)
	return c, nil
}

func (r *Result) addWarnings(ws ...*Warning) {
	for _, w := range ws {
		r.StructuredWarnings = append(r.StructuredWarnings, w)
		r.Warnings = append(r.Warnings, w.String())
	}
}

func (b *Bundler) parser() resolver.Parser {
	if b.Parser != nil {
		return b.Parser
	}
	return parser.DocumentParser{}
}

// fetcher returns the fetcher for external documents.
func (b *Bundler) fetcher() resolver.Fetcher {
	if b.Fetcher != nil {
		return b.Fetcher
	}
	f := &resolver.DefaultFetcher{
		File: &resolver.FileFetcher{BaseDir: b.BaseDir, MaxFileSize: b.MaxFileSize},
	}
	if b.ResolveHTTPRefs {
		f.HTTP = b.httpFetcher()
	}
	return f
}

// rootFetcher returns the fetcher for a root location. A root URL is
// fetched even when HTTP references are disabled.
func (b *Bundler) rootFetcher(location string) resolver.Fetcher {
	if b.Fetcher == nil && parser.IsURL(location) {
		return b.httpFetcher()
	}
	return b.fetcher()
}

func (b *Bundler) httpFetcher() *resolver.HTTPFetcher {
	return &resolver.HTTPFetcher{Client: b.HTTPClient, UserAgent: b.UserAgent, MaxFileSize: b.MaxFileSize}
}

// dirOf returns the directory a location's relative references resolve in.
func dirOf(location string) string {
	if parser.IsURL(location) {
		return ""
	}
	return filepath.Dir(location)
}
