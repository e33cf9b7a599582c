package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erraggy/oasbundle"
	"github.com/erraggy/oasbundle/node"
	"github.com/erraggy/oasbundle/oaserrors"
	"github.com/erraggy/oasbundle/parser"
)

const (
	// MaxRefDepth is the maximum number of references chased while resolving
	// a single pointer. This prevents runaway chains of indirection.
	MaxRefDepth = 100

	// MaxCachedDocuments is the maximum number of documents a registry will load
	// This prevents memory exhaustion from documents with many external references
	MaxCachedDocuments = 100

	// MaxFileSize is the maximum size (in bytes) allowed for a fetched document
	MaxFileSize = 10 * 1024 * 1024 // 10MB

	// DefaultHTTPTimeout bounds a single HTTP fetch when no client is supplied.
	DefaultHTTPTimeout = 30 * time.Second
)

// Fetcher loads the raw bytes of a document. Implementations must be safe
// for concurrent use; the external resolver calls Fetch from several
// goroutines at once.
type Fetcher interface {
	// Fetch returns the content at location and its media type, if known.
	Fetch(ctx context.Context, location string) (data []byte, contentType string, err error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, location string) ([]byte, string, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, location string) ([]byte, string, error) {
	return f(ctx, location)
}

// Parser decodes fetched bytes into a document tree.
// parser.DocumentParser implements it.
type Parser interface {
	Parse(data []byte, format parser.SourceFormat) (*node.Node, error)
}

// FileFetcher reads documents from the local filesystem.
type FileFetcher struct {
	// BaseDir, when set, confines reads to files inside it.
	BaseDir string
	// MaxFileSize overrides the MaxFileSize limit when positive.
	MaxFileSize int64
}

// Fetch implements Fetcher.
func (f *FileFetcher) Fetch(ctx context.Context, location string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if f.BaseDir != "" {
		if err := checkWithinBase(f.BaseDir, location); err != nil {
			return nil, "", err
		}
	}

	file, err := os.Open(location) //nolint:gosec // location is confined by BaseDir when set
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = file.Close() }()

	data, err := readLimited(file, limitOrDefault(f.MaxFileSize))
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

// checkWithinBase rejects locations outside baseDir.
// filepath.Rel also fails for paths on different volumes.
func checkWithinBase(baseDir, location string) error {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(location)
	if err != nil {
		return fmt.Errorf("failed to resolve file path: %w", err)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &oaserrors.ReferenceError{
			Ref:             location,
			RefType:         "file",
			IsPathTraversal: true,
			Message:         "outside of " + absBase,
		}
	}
	return nil
}

// HTTPFetcher fetches documents over HTTP and HTTPS.
type HTTPFetcher struct {
	// Client is used for requests. A client with DefaultHTTPTimeout is used when nil.
	Client *http.Client
	// UserAgent is sent with every request. Defaults to oasbundle.UserAgent().
	UserAgent string
	// MaxFileSize overrides the MaxFileSize limit when positive.
	MaxFileSize int64
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, string, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	userAgent := f.UserAgent
	if userAgent == "" {
		userAgent = oasbundle.UserAgent()
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req) //nolint:gosec // HTTP refs must be enabled explicitly
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := readLimited(resp.Body, limitOrDefault(f.MaxFileSize))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// DefaultFetcher dispatches on the location scheme. HTTP locations fail
// unless HTTP is set, so a document cannot make the bundler issue network
// requests without the caller opting in.
type DefaultFetcher struct {
	File *FileFetcher
	HTTP *HTTPFetcher
}

// Fetch implements Fetcher.
func (f *DefaultFetcher) Fetch(ctx context.Context, location string) ([]byte, string, error) {
	if parser.IsURL(location) {
		if f.HTTP == nil {
			return nil, "", &oaserrors.ReferenceError{
				Ref:     location,
				RefType: "http",
				Message: "HTTP references are disabled",
			}
		}
		return f.HTTP.Fetch(ctx, location)
	}
	file := f.File
	if file == nil {
		file = &FileFetcher{}
	}
	return file.Fetch(ctx, location)
}

func limitOrDefault(limit int64) int64 {
	if limit > 0 {
		return limit
	}
	return MaxFileSize
}

// readLimited reads all of r, failing once more than limit bytes arrive.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        limit,
			Message:      "document exceeds maximum size",
		}
	}
	return data, nil
}
