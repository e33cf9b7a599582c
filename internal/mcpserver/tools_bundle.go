package mcpserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasbundle/bundler"
	"github.com/erraggy/oasbundle/parser"
)

type bundleInput struct {
	Spec     specInput `json:"spec"                jsonschema:"The root document to bundle"`
	Format   string    `json:"format,omitempty"    jsonschema:"Output format: json or yaml (default: the format of the root document)"`
	FailFast bool      `json:"fail_fast,omitempty" jsonschema:"Stop at the first external document that cannot be loaded instead of reporting all of them"`
	Output   string    `json:"output,omitempty"    jsonschema:"File path to write the bundled document. If omitted the result is returned inline."`
}

type bundleManyInput struct {
	Locations []string `json:"locations"           jsonschema:"Files or URLs of the OpenAPI documents to merge (minimum 1)"`
	Format    string   `json:"format,omitempty"    jsonschema:"Output format: json or yaml (default: the format of the first document)"`
	FailFast  bool     `json:"fail_fast,omitempty" jsonschema:"Stop at the first external document that cannot be loaded instead of reporting all of them"`
	Output    string   `json:"output,omitempty"    jsonschema:"File path to write the merged document. If omitted the result is returned inline."`
}

type bundleWarning struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
}

type bundleOutput struct {
	SourcePath   string          `json:"source_path"`
	Format       string          `json:"format"`
	Dialect      string          `json:"dialect"`
	Stats        bundler.Stats   `json:"stats"`
	WarningCount int             `json:"warning_count"`
	Warnings     []bundleWarning `json:"warnings,omitempty"`
	WrittenTo    string          `json:"written_to,omitempty"`
	Document     string          `json:"document,omitempty"`
	Summary      string          `json:"summary"`
}

func handleBundle(ctx context.Context, _ *mcp.CallToolRequest, input bundleInput) (*mcp.CallToolResult, bundleOutput, error) {
	format, err := parseFormat(input.Format)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}

	result, err := input.Spec.bundle(ctx, input.FailFast)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}

	output, err := buildBundleOutput(result, format, input.Output)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}
	output.Summary = "Bundled " + output.SourcePath + ": " + bundleStatsSummary(output)
	return nil, output, nil
}

func handleBundleMany(ctx context.Context, _ *mcp.CallToolRequest, input bundleManyInput) (*mcp.CallToolResult, bundleOutput, error) {
	if len(input.Locations) == 0 {
		return errResult(fmt.Errorf("at least 1 location is required")), bundleOutput{}, nil
	}
	if len(input.Locations) > cfg.MaxInputs {
		return errResult(fmt.Errorf("too many locations: got %d, maximum is %d; set OASBUNDLE_MAX_INPUTS to increase",
			len(input.Locations), cfg.MaxInputs)), bundleOutput{}, nil
	}
	format, err := parseFormat(input.Format)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}

	opts := append(resolveOptions(), bundler.WithFailFast(input.FailFast))
	result, err := bundler.BundleMany(ctx, input.Locations, opts...)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}

	output, err := buildBundleOutput(result, format, input.Output)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}
	output.Summary = "Merged " + formatCount(len(input.Locations), "document") + ": " + bundleStatsSummary(output)
	return nil, output, nil
}

// parseFormat maps the format argument to a source format. An empty value
// keeps the format of the input.
func parseFormat(s string) (parser.SourceFormat, error) {
	switch strings.ToLower(s) {
	case "":
		return parser.SourceFormatUnknown, nil
	case "json":
		return parser.SourceFormatJSON, nil
	case "yaml", "yml":
		return parser.SourceFormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format %q; valid values: json, yaml", s)
	}
}

// buildBundleOutput encodes the bundled document and either writes it to
// outPath or returns it inline.
func buildBundleOutput(result *bundler.Result, format parser.SourceFormat, outPath string) (bundleOutput, error) {
	if format == parser.SourceFormatUnknown {
		format = result.SourceFormat
	}
	if format != parser.SourceFormatJSON {
		format = parser.SourceFormatYAML
	}

	output := bundleOutput{
		SourcePath:   result.SourcePath,
		Format:       string(format),
		Dialect:      string(result.Dialect),
		Stats:        result.Stats,
		WarningCount: len(result.StructuredWarnings),
	}
	output.Warnings = makeSlice[bundleWarning](len(result.StructuredWarnings))
	for _, w := range result.StructuredWarnings {
		output.Warnings = append(output.Warnings, bundleWarning{
			Category: string(w.Category),
			Severity: w.Severity.String(),
			Path:     w.Path,
			Message:  w.Message,
		})
	}

	data, err := result.Marshal(format)
	if err != nil {
		return bundleOutput{}, err
	}
	if outPath != "" {
		written, err := writeOutput(outPath, data)
		if err != nil {
			return bundleOutput{}, err
		}
		output.WrittenTo = written
	} else {
		output.Document = string(data)
	}
	return output, nil
}

func bundleStatsSummary(output bundleOutput) string {
	s := output.Stats
	summary := formatCount(s.RefCount, "reference") + " (" + strconv.Itoa(s.ExternalRefCount) + " external)"
	summary += " across " + formatCount(s.DocumentCount, "document")
	summary += ", " + formatCount(s.HoistedCount, "value") + " hoisted."
	if s.CircularCount > 0 {
		summary += " " + formatCount(s.CircularCount, "circular reference") + " kept in place."
	}
	if output.WarningCount > 0 {
		summary += " " + formatCount(output.WarningCount, "warning") + "."
	}
	return summary
}
