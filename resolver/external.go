package resolver

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/erraggy/oasbundle/node"
	"github.com/erraggy/oasbundle/oaserrors"
	"github.com/erraggy/oasbundle/parser"
)

// DefaultConcurrency is the number of fetches allowed in flight at once.
const DefaultConcurrency = 8

// ExternalResolver loads every document reachable from a registry's root
// through external references.
type ExternalResolver struct {
	// Fetcher loads document bytes. Defaults to a DefaultFetcher without HTTP.
	Fetcher Fetcher
	// Parser decodes fetched bytes. Defaults to parser.DocumentParser.
	Parser Parser
	// Logger receives debug output per loaded document.
	Logger parser.Logger
	// Concurrency bounds in-flight fetches. DefaultConcurrency when not positive.
	Concurrency int
	// MaxDocuments bounds the registry size. MaxCachedDocuments when not positive.
	MaxDocuments int
	// FailFast stops at the first failure instead of collecting all of them.
	FailFast bool
}

// ResolveExternal walks the registry's root document, and every document
// it reaches, registering and loading each external location exactly once.
// Fetches run concurrently; all of them have finished when it returns.
//
// Each failed location keeps its error on its registry entry. By default the
// walk continues past failures and the result is an *oaserrors.ErrorGroup
// holding every one of them. With FailFast the first failure cancels the
// remaining fetches and is returned on its own.
func (x *ExternalResolver) ResolveExternal(ctx context.Context, reg *Registry) error {
	root := reg.Root()
	if root == nil || root.Value() == nil {
		return &oaserrors.ConfigError{Option: "registry", Message: "root document is not set"}
	}

	// Without FailFast failures are collected, so they must not cancel each other.
	g, gctx := &errgroup.Group{}, ctx
	if x.FailFast {
		g, gctx = errgroup.WithContext(ctx)
	}

	w := &walker{
		x:      x,
		reg:    reg,
		ctx:    gctx,
		g:      g,
		sem:    semaphore.NewWeighted(int64(x.concurrency())),
		seen:   make(map[*node.Node]bool),
		logger: parser.OrNop(x.Logger),
	}
	w.walk(root.Value(), root.Location)

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return oaserrors.NewErrorGroup(reg.Errors()...)
}

func (x *ExternalResolver) concurrency() int {
	if x.Concurrency > 0 {
		return x.Concurrency
	}
	return DefaultConcurrency
}

func (x *ExternalResolver) maxDocuments() int {
	if x.MaxDocuments > 0 {
		return x.MaxDocuments
	}
	return MaxCachedDocuments
}

func (x *ExternalResolver) fetcher() Fetcher {
	if x.Fetcher != nil {
		return x.Fetcher
	}
	return &DefaultFetcher{}
}

func (x *ExternalResolver) parser() Parser {
	if x.Parser != nil {
		return x.Parser
	}
	return parser.DocumentParser{}
}

// walker is the state of one ResolveExternal call. Documents are only read
// here; seen is the only structure written by several goroutines.
type walker struct {
	x      *ExternalResolver
	reg    *Registry
	ctx    context.Context
	g      *errgroup.Group
	sem    *semaphore.Weighted
	logger parser.Logger

	mu   sync.Mutex
	seen map[*node.Node]bool
}

// visit marks n as seen and reports whether it was new.
func (w *walker) visit(n *node.Node) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[n] {
		return false
	}
	w.seen[n] = true
	return true
}

// walk visits n, found in the document at docLocation, and its children.
func (w *walker) walk(n *node.Node, docLocation string) {
	if !n.IsContainer() || !w.visit(n) || w.ctx.Err() != nil {
		return
	}

	if ref, ok := n.Ref(); ok && IsExternal(docLocation, ref) {
		w.discover(Locate(docLocation, ref), ref)
	}

	if n.IsMap() {
		for _, k := range n.Keys() {
			w.walk(n.Get(k), docLocation)
		}
		return
	}
	for _, item := range n.Items() {
		w.walk(item, docLocation)
	}
}

// discover claims location, or walks the document already stored there.
// A pending entry is left alone: the goroutine that claimed it walks it.
func (w *walker) discover(location, ref string) {
	entry, created := w.reg.Add(location)
	if !created {
		if v := entry.Value(); v != nil {
			w.walk(v, entry.Location)
		}
		return
	}

	if n, limit := w.reg.Len(), w.x.maxDocuments(); n > limit {
		err := &oaserrors.ResourceLimitError{
			ResourceType: "cached_documents",
			Limit:        int64(limit),
			Actual:       int64(n),
			Message:      "too many external references",
		}
		entry.Complete(nil, &oaserrors.ResolverError{Location: entry.Location, Ref: ref, Cause: err})
		if w.x.FailFast {
			w.g.Go(func() error { return entry.Err() })
		}
		return
	}

	w.g.Go(func() error {
		return w.load(entry, ref)
	})
}

// load fetches and parses a claimed entry, then walks the new document.
func (w *walker) load(entry *Entry, ref string) error {
	doc, err := w.fetchAndParse(entry, ref)
	entry.Complete(doc, err)
	if err != nil {
		w.logger.Debug("failed to load document", "location", entry.Location, "error", err)
		if w.x.FailFast {
			return err
		}
		return nil
	}

	w.walk(doc, entry.Location)
	return nil
}

func (w *walker) fetchAndParse(entry *Entry, ref string) (*node.Node, error) {
	if err := w.sem.Acquire(w.ctx, 1); err != nil {
		return nil, &oaserrors.ResolverError{Location: entry.Location, Ref: ref, Cause: err}
	}
	defer w.sem.Release(1)

	data, contentType, err := w.x.fetcher().Fetch(w.ctx, entry.Location)
	if err != nil {
		return nil, &oaserrors.ResolverError{Location: entry.Location, Ref: ref, Message: "fetch failed", Cause: err}
	}

	format := parser.DetectFormat(entry.Location, contentType, data)
	doc, err := w.x.parser().Parse(data, format)
	if err != nil {
		return nil, &oaserrors.ResolverError{Location: entry.Location, Ref: ref, Message: "parse failed", Cause: err}
	}

	w.logger.Debug("loaded external document",
		"location", entry.Location,
		"type", string(entry.PathType),
		"format", string(format),
		"size", parser.FormatBytes(int64(len(data))),
	)
	return doc, nil
}
