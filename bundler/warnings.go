package bundler

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasbundle/internal/pathutil"
	"github.com/erraggy/oasbundle/internal/severity"
)

// WarningCategory identifies the type of warning.
type WarningCategory string

const (
	// WarnUnresolvedRef indicates a reference whose target does not exist.
	// The reference is left as written.
	WarnUnresolvedRef WarningCategory = "unresolved_ref"
	// WarnNameCollision indicates a hoisted value received a suffixed name
	// because its proposed name was taken.
	WarnNameCollision WarningCategory = "name_collision"
	// WarnCircularRef indicates an external reference that points at itself
	// and was kept in place instead of being hoisted.
	WarnCircularRef WarningCategory = "circular_ref"
	// WarnPathRelocated indicates a path from a later input was moved under
	// its input's prefix because an earlier input already defined it.
	WarnPathRelocated WarningCategory = "path_relocated"
	// WarnTagRenamed indicates a tag from a later input was prefixed because
	// an earlier input already defined it.
	WarnTagRenamed WarningCategory = "tag_renamed"
)

// Warning is a non-fatal issue found while bundling.
type Warning struct {
	// Category identifies the type of warning.
	Category WarningCategory
	// Path is the JSON Pointer, from the document root, of the affected element.
	Path string
	// Message is a human-readable description.
	Message string
	// SourceFile is the document the affected element came from, if known.
	SourceFile string
	// Severity indicates warning severity.
	Severity severity.Severity
	// Context provides additional details.
	Context map[string]any
}

// String returns the warning message.
func (w *Warning) String() string {
	return w.Message
}

// Location returns the path of the warning, or its source file when the
// path is unknown.
func (w *Warning) Location() string {
	if w.Path != "" {
		return w.Path
	}
	return w.SourceFile
}

func newUnresolvedRefWarning(ref, pathFromRoot string, err error) *Warning {
	return &Warning{
		Category: WarnUnresolvedRef,
		Path:     pathFromRoot,
		Message:  fmt.Sprintf("unresolved $ref %q at %s: %v", ref, pathFromRoot, err),
		Severity: severity.SeverityWarning,
		Context: map[string]any{
			"ref": ref,
		},
	}
}

func newNameCollisionWarning(proposed, name, prefix, sourceFile string) *Warning {
	return &Warning{
		Category:   WarnNameCollision,
		Path:       prefix + "/" + name,
		Message:    fmt.Sprintf("%s/%s already taken, %s hoisted as %s", prefix, proposed, sourceFile, name),
		SourceFile: sourceFile,
		Severity:   severity.SeverityInfo,
		Context: map[string]any{
			"proposed_name": proposed,
			"new_name":      name,
		},
	}
}

func newCircularRefWarning(e *InventoryEntry) *Warning {
	return &Warning{
		Category:   WarnCircularRef,
		Path:       e.PathFromRoot,
		Message:    fmt.Sprintf("circular $ref to %s%s kept at %s", e.File, e.Hash, e.PathFromRoot),
		SourceFile: e.File,
		Severity:   severity.SeverityInfo,
	}
}

func newPathRelocatedWarning(path, newPath, sourceFile string) *Warning {
	return &Warning{
		Category:   WarnPathRelocated,
		Path:       pathutil.Join("#/paths", path),
		Message:    fmt.Sprintf("path '%s' from %s already defined, moved to '%s'", path, sourceFile, newPath),
		SourceFile: sourceFile,
		Severity:   severity.SeverityWarning,
		Context: map[string]any{
			"new_path": newPath,
		},
	}
}

func newTagRenamedWarning(tag, newTag, sourceFile string) *Warning {
	return &Warning{
		Category:   WarnTagRenamed,
		Path:       "#/tags",
		Message:    fmt.Sprintf("tag '%s' from %s already defined, renamed to '%s'", tag, sourceFile, newTag),
		SourceFile: sourceFile,
		Severity:   severity.SeverityInfo,
		Context: map[string]any{
			"new_name": newTag,
		},
	}
}

// Warnings is a collection of Warning.
type Warnings []*Warning

// Strings returns the warning messages.
func (ws Warnings) Strings() []string {
	result := make([]string, len(ws))
	for i, w := range ws {
		if w == nil {
			continue
		}
		result[i] = w.String()
	}
	return result
}

// ByCategory filters warnings by category.
func (ws Warnings) ByCategory(cat WarningCategory) Warnings {
	var result Warnings
	for _, w := range ws {
		if w.Category == cat {
			result = append(result, w)
		}
	}
	return result
}

// BySeverity filters warnings by severity.
func (ws Warnings) BySeverity(sev severity.Severity) Warnings {
	var result Warnings
	for _, w := range ws {
		if w.Severity == sev {
			result = append(result, w)
		}
	}
	return result
}

// Summary returns a formatted summary of warnings.
func (ws Warnings) Summary() string {
	if len(ws) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d warning(s):\n", len(ws))
	for _, w := range ws {
		sb.WriteString("  - ")
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
