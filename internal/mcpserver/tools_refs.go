package mcpserver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasbundle/bundler"
)

type refsInput struct {
	Spec         specInput `json:"spec"                    jsonschema:"The root document whose references to list"`
	ExternalOnly bool      `json:"external_only,omitempty" jsonschema:"Only list references that target another document"`
	Container    string    `json:"container,omitempty"     jsonschema:"Filter by hoisting container: schemas, parameters, requestBodies, responses, headers"`
	Target       string    `json:"target,omitempty"        jsonschema:"Filter by absolute target (supports * and ? glob, e.g. *models.yaml#*)"`
	GroupBy      string    `json:"group_by,omitempty"      jsonschema:"Group results and return counts instead of individual items. Values: container, file"`
	Limit        int       `json:"limit,omitempty"         jsonschema:"Maximum number of results to return (default 100)"`
	Offset       int       `json:"offset,omitempty"        jsonschema:"Skip the first N results (for pagination)"`
}

type refEntry struct {
	PathFromRoot string `json:"path_from_root"`
	Ref          string `json:"ref"`
	Target       string `json:"target"`
	External     bool   `json:"external"`
	Container    string `json:"container,omitempty"`
	Circular     bool   `json:"circular,omitempty"`
	Extended     bool   `json:"extended,omitempty"`
	Depth        int    `json:"depth"`
	Indirections int    `json:"indirections"`
}

type refsOutput struct {
	Total     int          `json:"total"`
	Matched   int          `json:"matched"`
	Returned  int          `json:"returned"`
	Documents []string     `json:"documents"`
	Refs      []refEntry   `json:"refs,omitempty"`
	Groups    []groupCount `json:"groups,omitempty"`
	Warnings  []string     `json:"warnings,omitempty"`
}

var validContainers = []string{
	string(bundler.ContainerSchemas),
	string(bundler.ContainerParameters),
	string(bundler.ContainerRequestBodies),
	string(bundler.ContainerResponses),
	string(bundler.ContainerHeaders),
}

func handleRefs(ctx context.Context, _ *mcp.CallToolRequest, input refsInput) (*mcp.CallToolResult, refsOutput, error) {
	if err := validateGroupBy(input.GroupBy, []string{"container", "file"}); err != nil {
		return errResult(err), refsOutput{}, nil
	}
	if input.Container != "" && !containsFold(validContainers, input.Container) {
		return errResult(fmt.Errorf("invalid container %q; valid values: %v", input.Container, validContainers)), refsOutput{}, nil
	}

	inv, err := input.Spec.inventory(ctx)
	if err != nil {
		return errResult(err), refsOutput{}, nil
	}

	var target *regexp.Regexp
	if input.Target != "" {
		target = compileGlob(input.Target)
	}
	filtered := filterEntries(inv.Entries, input, target)
	output := refsOutput{
		Total:   len(inv.Entries),
		Matched: len(filtered),
	}
	output.Documents = make([]string, 0, len(inv.Documents))
	for _, d := range inv.Documents {
		output.Documents = append(output.Documents, d.Location)
	}
	for _, w := range inv.Warnings {
		output.Warnings = append(output.Warnings, w.String())
	}

	if input.GroupBy != "" {
		groups := groupAndSort(filtered, func(e *bundler.InventoryEntry) string {
			if strings.EqualFold(input.GroupBy, "file") {
				return e.File
			}
			return containerLabel(e)
		})
		output.Groups = paginate(groups, input.Offset, input.Limit)
		output.Returned = len(output.Groups)
		return nil, output, nil
	}

	page := paginate(filtered, input.Offset, input.Limit)
	output.Refs = makeSlice[refEntry](len(page))
	for _, e := range page {
		output.Refs = append(output.Refs, refEntry{
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
	output.Returned = len(output.Refs)
	return nil, output, nil
}

// filterEntries keeps the entries that pass every filter of input, in
// inventory order. target is the compiled input.Target, or nil.
func filterEntries(entries []*bundler.InventoryEntry, input refsInput, target *regexp.Regexp) []*bundler.InventoryEntry {
	var out []*bundler.InventoryEntry
	for _, e := range entries {
		if input.ExternalOnly && !e.External {
			continue
		}
		if input.Container != "" && !strings.EqualFold(string(e.OriginalContainerType), input.Container) {
			continue
		}
		if target != nil && !target.MatchString(e.Target()) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// containerLabel names the group of an entry; internal references are not
// hoisted and have no container.
func containerLabel(e *bundler.InventoryEntry) string {
	if !e.External {
		return "internal"
	}
	return string(e.OriginalContainerType)
}
