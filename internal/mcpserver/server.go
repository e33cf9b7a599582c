// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oasbundle capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasbundle"
	"github.com/erraggy/oasbundle/internal/fileutil"
	"github.com/erraggy/oasbundle/internal/pathutil"
)

const serverInstructions = `oasbundle MCP server: bundles OpenAPI and JSON Schema documents whose $ref pointers span several files or URLs into one self-contained document.

Configuration: All defaults are configurable via OASBUNDLE_* environment variables set in your MCP client config.

Key settings:
- OASBUNDLE_RESOLVE_HTTP_REFS (default: false) follow external references to http(s) URLs
- OASBUNDLE_ALLOW_PRIVATE_IPS (default: false) allow fetching from private and loopback addresses
- OASBUNDLE_BASE_DIR (default: unset) confine file reads to a directory
- OASBUNDLE_CONCURRENCY (default: 8) external documents loaded at once
- OASBUNDLE_CACHE_FILE_TTL (default: 30s) cache TTL for results of local files
- OASBUNDLE_CACHE_URL_TTL (default: 5m) cache TTL for results of URLs
- OASBUNDLE_CACHE_ENABLED (default: true) disable result caching entirely
- OASBUNDLE_REFS_LIMIT (default: 100) default result limit for the refs tool

Caching: Results are cached per session. File entries are keyed by path+mtime of the root document only, so a changed referenced file is picked up when the entry expires.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		resultCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasbundle", Version: oasbundle.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "bundle",
		Description: "Bundle an OpenAPI or JSON Schema document whose $ref pointers reach other files or URLs into one document with internal references only. External targets are copied once into components (OAS 3.x) or definitions/parameters/responses (OAS 2.0) and named <file>_<token>. Returns stats, warnings and the bundled document. Use output to write to a file instead of returning inline.",
	}, handleBundle)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bundle_many",
		Description: "Merge several OpenAPI documents (files or URLs) into one and bundle the result. Components and operationIds are prefixed with each input's file name; conflicting tags are prefixed and conflicting paths move under /<prefix>/. Returns stats, warnings and the merged document.",
	}, handleBundleMany)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refs",
		Description: "List the $ref occurrences of a document graph in the order a bundle would rewrite them, without changing anything. Each entry shows where the reference occurs, its absolute target and the container an external target would be hoisted into. Filter with external_only, container or target (supports * glob). Use group_by (container or file) to get distribution counts instead of individual items.",
	}, handleRefs)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.RefsLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.RefsLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// groupCount represents a single group in group_by results.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		counts[keyFn(item)]++
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// validateGroupBy checks that group_by is one of allowed.
func validateGroupBy(groupBy string, allowed []string) error {
	if groupBy == "" || containsFold(allowed, groupBy) {
		return nil
	}
	return fmt.Errorf("invalid group_by value %q; valid values: %s", groupBy, strings.Join(allowed, ", "))
}

// containsFold reports whether list holds s, ignoring case.
func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// compileGlob turns pattern into an anchored regular expression where *
// matches any run of characters, "/" included, and ? matches one character.
func compileGlob(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// writeOutput writes data to path after sanitizing it and returns the
// cleaned path.
func writeOutput(path string, data []byte) (string, error) {
	cleanPath, err := pathutil.SanitizeOutputPath(path)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.WriteFile(cleanPath, data, fileutil.OwnerReadWrite); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return cleanPath, nil
}

func formatCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
