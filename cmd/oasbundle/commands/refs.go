package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"

	"github.com/erraggy/oasbundle/bundler"
	"github.com/erraggy/oasbundle/internal/cliutil"
	"github.com/erraggy/oasbundle/internal/naming"
)

// RefsFlags contains flags for the refs command
type RefsFlags struct {
	Format       string
	ExternalOnly bool
	Container    string
	Dump         bool
	Quiet        bool
	ResolveFlags
}

// refRow is the structured form of one inventory entry.
type refRow struct {
	PathFromRoot string `json:"path_from_root" yaml:"path_from_root"`
	Ref          string `json:"ref" yaml:"ref"`
	Target       string `json:"target" yaml:"target"`
	External     bool   `json:"external" yaml:"external"`
	Container    string `json:"container,omitempty" yaml:"container,omitempty"`
	Circular     bool   `json:"circular,omitempty" yaml:"circular,omitempty"`
	Extended     bool   `json:"extended,omitempty" yaml:"extended,omitempty"`
	Depth        int    `json:"depth" yaml:"depth"`
	Indirections int    `json:"indirections" yaml:"indirections"`
}

// refsReport is the structured output of the refs command.
type refsReport struct {
	Root      string   `json:"root" yaml:"root"`
	Documents []string `json:"documents" yaml:"documents"`
	Refs      []refRow `json:"refs" yaml:"refs"`
	Warnings  []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// dumpConfig prints entries without descending into the document trees
// they point at.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                2,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// SetupRefsFlags creates and configures a FlagSet for the refs command.
// Returns the FlagSet and a RefsFlags struct with bound flag variables.
func SetupRefsFlags() (*flag.FlagSet, *RefsFlags) {
	fs := flag.NewFlagSet("refs", flag.ContinueOnError)
	flags := &RefsFlags{}

	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.ExternalOnly, "external", false, "only list references that target another document")
	fs.StringVar(&flags.Container, "container", "", "only list external references hoisted into this container (schemas, parameters, requestBodies, responses, headers)")
	fs.BoolVar(&flags.Dump, "dump", false, "dump every inventory entry with all of its fields")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: suppress the header and summary")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: suppress the header and summary")
	flags.bind(fs)

	fs.Usage = func() {
		output := fs.Output()
		cliutil.Writef(output, "Usage: oasbundle refs [flags] <file|url|->\n\n")
		cliutil.Writef(output, "List every $ref occurrence of a document graph in the order a bundle would\n")
		cliutil.Writef(output, "rewrite them. Nothing is modified.\n\n")
		cliutil.Writef(output, "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(output, "\nExamples:\n")
		cliutil.Writef(output, "  oasbundle refs openapi.yaml\n")
		cliutil.Writef(output, "  oasbundle refs --external --container schemas openapi.yaml\n")
		cliutil.Writef(output, "  oasbundle refs --format json openapi.yaml | jq '.refs[].target'\n")
		cliutil.Writef(output, "  oasbundle refs --dump openapi.yaml\n")
	}

	return fs, flags
}

// HandleRefs executes the refs command
func HandleRefs(args []string) error {
	fs, flags := SetupRefsFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("refs command requires exactly one file path, URL, or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	if flags.Container != "" && !validContainer(flags.Container) {
		return fmt.Errorf("invalid container '%s'. Valid containers: %s", flags.Container, strings.Join(containerNames(), ", "))
	}

	specPath := fs.Arg(0)
	opts, err := flags.options(specPath)
	if err != nil {
		return err
	}
	inv, err := bundler.InventoryWithOptions(opts...)
	if err != nil {
		return fmt.Errorf("inventorying %s: %w", FormatSpecPath(specPath), err)
	}
	entries := filterRefs(inv.Entries, flags)

	if flags.Dump {
		dumpConfig.Fdump(stdout, entries)
		return nil
	}
	if flags.Format != FormatText {
		return OutputStructured(buildRefsReport(inv, entries), flags.Format)
	}

	if !flags.Quiet {
		cliutil.Writef(os.Stderr, "OpenAPI Reference Inventory\n")
		cliutil.Writef(os.Stderr, "===========================\n\n")
		OutputSpecHeader(specPath)
		cliutil.Writef(os.Stderr, "Documents: %d\n", len(inv.Documents))
		cliutil.Writef(os.Stderr, "Load Time: %v\n\n", inv.LoadTime)
	}
	writeRefsTable(entries)
	if !flags.Quiet {
		outputRefsSummary(inv, entries)
	}
	return nil
}

func filterRefs(entries []*bundler.InventoryEntry, flags *RefsFlags) []*bundler.InventoryEntry {
	var out []*bundler.InventoryEntry
	for _, e := range entries {
		if (flags.ExternalOnly || flags.Container != "") && !e.External {
			continue
		}
		if flags.Container != "" && !strings.EqualFold(string(e.OriginalContainerType), flags.Container) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func buildRefsReport(inv *bundler.InventoryResult, entries []*bundler.InventoryEntry) refsReport {
	report := refsReport{
		Root:     inv.SourcePath,
		Refs:     make([]refRow, 0, len(entries)),
		Warnings: inv.Warnings.Strings(),
	}
	for _, d := range inv.Documents {
		report.Documents = append(report.Documents, d.Location)
	}
	for _, e := range entries {
		report.Refs = append(report.Refs, refRow{
			PathFromRoot: e.PathFromRoot,
			Ref:          e.RefString(),
			Target:       e.Target(),
			External:     e.External,
			Container:    string(e.OriginalContainerType),
			Circular:     e.Circular,
			Extended:     e.Extended,
			Depth:        e.Depth,
			Indirections: e.Indirections,
		})
	}
	return report
}

func writeRefsTable(entries []*bundler.InventoryEntry) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	cliutil.Writef(w, "PATH\tREF\tCONTAINER\tFLAGS\n")
	for _, e := range entries {
		container := string(e.OriginalContainerType)
		if container == "" {
			container = "-"
		}
		cliutil.Writef(w, "%s\t%s\t%s\t%s\n", e.PathFromRoot, e.RefString(), container, entryFlags(e))
	}
	if err := w.Flush(); err != nil {
		cliutil.Writef(os.Stderr, "write error: %v\n", err)
	}
}

// entryFlags abbreviates the boolean fields of an entry.
func entryFlags(e *bundler.InventoryEntry) string {
	var flags []string
	if e.External {
		flags = append(flags, "external")
	}
	if e.Circular {
		flags = append(flags, "circular")
	}
	if e.Extended {
		flags = append(flags, "extended")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func outputRefsSummary(inv *bundler.InventoryResult, entries []*bundler.InventoryEntry) {
	cliutil.Writef(os.Stderr, "\nReferences: %d of %d\n", len(entries), len(inv.Entries))
	byContainer := inv.ByContainer()
	for _, name := range containerNames() {
		if n := len(byContainer[bundler.ContainerType(name)]); n > 0 {
			cliutil.Writef(os.Stderr, "  %s: %d\n", naming.Title(name), n)
		}
	}
	if len(inv.Warnings) > 0 {
		cliutil.Writef(os.Stderr, "\n%s\n", inv.Warnings.Summary())
	}
}

func containerNames() []string {
	return []string{
		string(bundler.ContainerSchemas),
		string(bundler.ContainerParameters),
		string(bundler.ContainerRequestBodies),
		string(bundler.ContainerResponses),
		string(bundler.ContainerHeaders),
	}
}

func validContainer(name string) bool {
	for _, c := range containerNames() {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
