// Package commands provides CLI command handlers for oasbundle.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasbundle"
	"github.com/erraggy/oasbundle/bundler"
	"github.com/erraggy/oasbundle/internal/cliutil"
	"github.com/erraggy/oasbundle/internal/fileutil"
	"github.com/erraggy/oasbundle/internal/pathutil"
	"github.com/erraggy/oasbundle/parser"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured outputs data in the specified format (json or yaml) to stdout.
func OutputStructured(data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	cliutil.Writef(stdout, "%s\n", bytes)
	return nil
}

// ParseDocumentFormat maps a --format value to a document format. An empty
// value keeps the format of the input.
func ParseDocumentFormat(format string) (parser.SourceFormat, error) {
	switch format {
	case "":
		return parser.SourceFormatUnknown, nil
	case FormatJSON:
		return parser.SourceFormatJSON, nil
	case FormatYAML, "yml":
		return parser.SourceFormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format '%s'. Valid formats: %s, %s", format, FormatJSON, FormatYAML)
	}
}

// ValidateOutputPath checks if the output path is safe to write to
func ValidateOutputPath(outputPath string, inputPaths []string) error {
	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	for _, inputPath := range inputPaths {
		if inputPath == StdinFilePath || parser.IsURL(inputPath) {
			continue
		}
		absInputPath, err := filepath.Abs(inputPath)
		if err != nil {
			return fmt.Errorf("invalid input path %s: %w", inputPath, err)
		}

		if absOutputPath == absInputPath {
			return fmt.Errorf("output file %s would overwrite input file %s", outputPath, inputPath)
		}
	}

	// Warn, don't fail, when replacing an existing file
	if _, err := os.Stat(outputPath); err == nil {
		cliutil.Warnf(os.Stderr, "output file %s already exists and will be overwritten", outputPath)
	}

	return nil
}

// WriteOutput writes data to outputPath with owner-only permissions, or to
// stdout when outputPath is empty.
func WriteOutput(outputPath string, data []byte) error {
	if outputPath == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("writing document to stdout: %w", err)
		}
		return nil
	}
	cleanPath, err := pathutil.SanitizeOutputPath(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.WriteFile(cleanPath, data, fileutil.OwnerReadWrite); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

// FormatSpecPath returns a display-friendly path for the specification.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// OutputSpecHeader outputs the common header to stderr.
func OutputSpecHeader(specPath string) {
	cliutil.Writef(os.Stderr, "oasbundle version: %s\n", oasbundle.Version())
	cliutil.Writef(os.Stderr, "Specification: %s\n", FormatSpecPath(specPath))
}

// ResolveFlags are the flags shared by every command that loads documents.
type ResolveFlags struct {
	ResolveHTTPRefs bool
	BaseDir         string
	BaseLocation    string
	Concurrency     int
	MaxRefDepth     int
	Verbose         bool
}

// bind registers the resolve flags on fs.
func (r *ResolveFlags) bind(fs *flag.FlagSet) {
	fs.BoolVar(&r.ResolveHTTPRefs, "resolve-http-refs", false, "follow $ref URLs over HTTP/HTTPS")
	fs.StringVar(&r.BaseDir, "base-dir", "", "refuse to read local files outside this directory")
	fs.StringVar(&r.BaseLocation, "base", "", "location that relative references resolve against when reading stdin")
	fs.IntVar(&r.Concurrency, "concurrency", 0, "external documents loaded at once (default 8)")
	fs.IntVar(&r.MaxRefDepth, "max-ref-depth", 0, "maximum references chased while resolving one reference (default 100)")
	fs.BoolVar(&r.Verbose, "v", false, "log each loaded document and hoisted value to stderr")
	fs.BoolVar(&r.Verbose, "verbose", false, "log each loaded document and hoisted value to stderr")
}

// options converts the flags into bundler options for specPath.
func (r *ResolveFlags) options(specPath string) ([]bundler.Option, error) {
	opts := []bundler.Option{
		bundler.WithResolveHTTPRefs(r.ResolveHTTPRefs),
	}
	if r.BaseDir != "" {
		opts = append(opts, bundler.WithBaseDir(r.BaseDir))
	}
	if r.Concurrency != 0 {
		opts = append(opts, bundler.WithConcurrency(r.Concurrency))
	}
	if r.MaxRefDepth != 0 {
		opts = append(opts, bundler.WithMaxRefDepth(r.MaxRefDepth))
	}
	if r.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, bundler.WithLogger(parser.NewSlogAdapter(slog.New(handler))))
	}

	switch {
	case specPath == StdinFilePath:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		opts = append(opts, bundler.WithBytes(data))
		if r.BaseLocation != "" {
			opts = append(opts, bundler.WithBaseLocation(r.BaseLocation))
		}
	case specPath != "":
		if r.BaseLocation != "" {
			return nil, errors.New("--base only applies when reading from stdin")
		}
		opts = append(opts, bundler.WithFilePath(specPath))
	}
	return opts, nil
}
