// Package parser turns raw document bytes into [node.Node] trees and carries
// the logging interface shared by the resolver and bundler.
//
// # Formats
//
// JSON is decoded with github.com/goccy/go-json's token stream so object
// key order survives; YAML is decoded with go.yaml.in/yaml/v4. When the format
// is not declared, [DetectFormat] looks at the location's extension, then the
// Content-Type, then the first non-blank byte of the content.
//
//	doc, err := parser.DocumentParser{}.Parse(data, parser.SourceFormatYAML)
//
// # Logging
//
// [Logger] is a minimal structured logging interface. [NopLogger] discards
// everything; [SlogAdapter] forwards to log/slog.
package parser
