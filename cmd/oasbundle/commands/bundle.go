package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/erraggy/oasbundle/bundler"
	"github.com/erraggy/oasbundle/internal/cliutil"
	"github.com/erraggy/oasbundle/parser"
)

// BundleFlags contains flags for the bundle command
type BundleFlags struct {
	Output   string
	Format   string
	FailFast bool
	Quiet    bool
	ResolveFlags
}

// SetupBundleFlags creates and configures a FlagSet for the bundle command.
// Returns the FlagSet and a BundleFlags struct with bound flag variables.
func SetupBundleFlags() (*flag.FlagSet, *BundleFlags) {
	fs := flag.NewFlagSet("bundle", flag.ContinueOnError)
	flags := &BundleFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Format, "format", "", "output format: json or yaml (default: format of the first input)")
	fs.BoolVar(&flags.FailFast, "fail-fast", false, "stop at the first external document that cannot be loaded")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the document, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the document, no diagnostic messages")
	flags.bind(fs)

	fs.Usage = func() {
		output := fs.Output()
		cliutil.Writef(output, "Usage: oasbundle bundle [flags] <file|url|-> [file|url...]\n\n")
		cliutil.Writef(output, "Bundle a document whose $ref pointers reach other files or URLs into one\n")
		cliutil.Writef(output, "document that contains only internal references.\n\n")
		cliutil.Writef(output, "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(output, "\nExamples:\n")
		cliutil.Writef(output, "  oasbundle bundle openapi.yaml\n")
		cliutil.Writef(output, "  oasbundle bundle -o bundled.json --format json openapi.yaml\n")
		cliutil.Writef(output, "  oasbundle bundle --resolve-http-refs https://example.com/api/openapi.yaml\n")
		cliutil.Writef(output, "  oasbundle bundle -o merged.yaml users.yaml orders.yaml\n")
		cliutil.Writef(output, "  cat openapi.yaml | oasbundle bundle -q --base specs/openapi.yaml -\n")
		cliutil.Writef(output, "\nHoisting:\n")
		cliutil.Writef(output, "  OAS 3.x targets are copied into components/<type>/<file>_<name>.\n")
		cliutil.Writef(output, "  OAS 2.0 targets are copied into definitions, parameters or responses.\n")
		cliutil.Writef(output, "  Any other document gets a top-level definitions map.\n")
		cliutil.Writef(output, "\nMultiple Inputs:\n")
		cliutil.Writef(output, "  Several inputs are merged first. Components and operationIds are prefixed\n")
		cliutil.Writef(output, "  with each input's file name; conflicting tags are prefixed and conflicting\n")
		cliutil.Writef(output, "  paths move under /<prefix>/.\n")
		cliutil.Writef(output, "\nExit Codes:\n")
		cliutil.Writef(output, "  0    Bundling successful (warnings may still be reported)\n")
		cliutil.Writef(output, "  1    A document could not be loaded or a reference could not be resolved\n")
	}

	return fs, flags
}

// HandleBundle executes the bundle command
func HandleBundle(args []string) error {
	fs, flags := SetupBundleFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("bundle command requires at least one file path, URL, or '-' for stdin")
	}
	inputs := fs.Args()
	if len(inputs) > 1 && slices.Contains(inputs, StdinFilePath) {
		return fmt.Errorf("stdin cannot be combined with other inputs")
	}

	format, err := ParseDocumentFormat(flags.Format)
	if err != nil {
		return err
	}
	if flags.Output != "" {
		if err := ValidateOutputPath(flags.Output, inputs); err != nil {
			return err
		}
	}

	startTime := time.Now()
	result, err := runBundle(inputs, flags)
	if err != nil {
		return fmt.Errorf("bundling %s: %w", FormatSpecPath(inputs[0]), err)
	}

	if format == parser.SourceFormatUnknown {
		format = result.SourceFormat
	}
	data, err := result.Marshal(format)
	if err != nil {
		return fmt.Errorf("encoding bundled document: %w", err)
	}
	if err := WriteOutput(flags.Output, data); err != nil {
		return err
	}
	totalTime := time.Since(startTime)

	if !flags.Quiet {
		outputBundleSummary(inputs, result, flags.Output, totalTime)
	}
	return nil
}

func runBundle(inputs []string, flags *BundleFlags) (*bundler.Result, error) {
	if len(inputs) == 1 {
		opts, err := flags.options(inputs[0])
		if err != nil {
			return nil, err
		}
		opts = append(opts, bundler.WithFailFast(flags.FailFast))
		return bundler.BundleWithOptions(opts...)
	}

	opts, err := flags.options("")
	if err != nil {
		return nil, err
	}
	opts = append(opts, bundler.WithFailFast(flags.FailFast))
	return bundler.BundleMany(context.Background(), inputs, opts...)
}

// outputBundleSummary reports what a bundle run did on stderr, keeping
// stdout clean for the document.
func outputBundleSummary(inputs []string, result *bundler.Result, outputPath string, totalTime time.Duration) {
	cliutil.Writef(os.Stderr, "OpenAPI Bundler\n")
	cliutil.Writef(os.Stderr, "===============\n\n")
	OutputSpecHeader(inputs[0])
	if len(inputs) > 1 {
		cliutil.Writef(os.Stderr, "Merged Inputs: %d\n", len(inputs))
	}
	cliutil.Writef(os.Stderr, "Dialect: %s\n", result.Dialect)
	cliutil.Writef(os.Stderr, "Documents: %d\n", result.Stats.DocumentCount)
	cliutil.Writef(os.Stderr, "References: %d (%d external)\n", result.Stats.RefCount, result.Stats.ExternalRefCount)
	cliutil.Writef(os.Stderr, "Hoisted: %d\n", result.Stats.HoistedCount)
	if result.Stats.CircularCount > 0 {
		cliutil.Writef(os.Stderr, "Circular: %d\n", result.Stats.CircularCount)
	}
	cliutil.Writef(os.Stderr, "Load Time: %v\n", result.LoadTime)
	cliutil.Writef(os.Stderr, "Total Time: %v\n\n", totalTime)

	if result.HasWarnings() {
		cliutil.Writef(os.Stderr, "%s\n\n", result.StructuredWarnings.Summary())
	}
	if outputPath != "" {
		cliutil.Writef(os.Stderr, "Output: %s\n", outputPath)
	}
	cliutil.Writef(os.Stderr, "✓ Bundle completed successfully!\n")
}
