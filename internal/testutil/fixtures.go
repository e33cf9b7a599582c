// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/oasbundle/node"
)

// WriteTree writes files, keyed by slash-separated relative path, into a new
// temporary directory and returns the directory. Leading newlines and the
// common indentation of each file's content are removed so fixtures can be
// written as indented raw strings.
// The directory is automatically cleaned up when the test completes (via t.TempDir).
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("Failed to create fixture directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(Dedent(content)), 0o600); err != nil {
			t.Fatalf("Failed to write fixture %s: %v", name, err)
		}
	}
	return dir
}

// WriteTempYAML renders a document as YAML and writes it to a temporary file.
// Returns the path to the temporary file.
func WriteTempYAML(t *testing.T, doc *node.Node) string {
	t.Helper()

	data, err := node.EncodeYAML(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}
	tmpFile := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		t.Fatalf("Failed to write temporary YAML file: %v", err)
	}
	return tmpFile
}

// WriteTempJSON renders a document as JSON and writes it to a temporary file.
// Returns the path to the temporary file.
func WriteTempJSON(t *testing.T, doc *node.Node) string {
	t.Helper()

	data, err := node.EncodeJSON(doc, "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}
	tmpFile := filepath.Join(t.TempDir(), "test.json")
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		t.Fatalf("Failed to write temporary JSON file: %v", err)
	}
	return tmpFile
}

// MustYAML parses a YAML literal, dedenting it first.
func MustYAML(t *testing.T, src string) *node.Node {
	t.Helper()

	n, err := node.FromYAML([]byte(Dedent(src)))
	if err != nil {
		t.Fatalf("Failed to parse YAML fixture: %v", err)
	}
	return n
}

// Dedent strips leading blank lines and the indentation shared by every
// non-blank line. Tabs count as indentation like spaces do.
func Dedent(s string) string {
	s = strings.TrimLeft(s, "\n")
	lines := strings.Split(s, "\n")

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return s
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
