package parser

import (
	"github.com/erraggy/oasbundle/node"
	"github.com/erraggy/oasbundle/oaserrors"
)

// DocumentParser decodes YAML and JSON bytes into document trees.
// The zero value is ready to use and safe for concurrent use.
type DocumentParser struct{}

// Parse decodes data in the given format. SourceFormatUnknown is resolved
// from the content. JSON is decoded with an order-preserving token stream;
// everything else goes through the YAML decoder.
//
// A document that decodes to a scalar (including an empty document) is not a
// structured document and yields a *oaserrors.SyntaxError.
func (DocumentParser) Parse(data []byte, format SourceFormat) (*node.Node, error) {
	if format == SourceFormatUnknown || format == "" {
		format = detectFormatFromContent(data)
	}

	var (
		n   *node.Node
		err error
	)
	if format == SourceFormatJSON {
		n, err = node.FromJSON(data)
	} else {
		n, err = node.FromYAML(data)
	}
	if err != nil {
		return nil, &oaserrors.ParseError{Message: "invalid " + string(format), Cause: err}
	}
	if !n.IsContainer() {
		msg := "document is not a mapping or sequence"
		if n.IsNull() {
			msg = "document is empty"
		}
		return nil, &oaserrors.SyntaxError{Message: msg}
	}
	return n, nil
}

// ParseBytes is shorthand for DocumentParser{}.Parse with format detection.
func ParseBytes(data []byte) (*node.Node, error) {
	return DocumentParser{}.Parse(data, SourceFormatUnknown)
}
