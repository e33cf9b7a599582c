package node

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// FromJSON decodes a single JSON value from data, preserving object key order.
// Numbers that fit an int64 are stored as int64, others as float64.
func FromJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected data after top-level value")
	}
	return n, nil
}

func decodeJSONValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			n := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				child, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				n.Set(key, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := NewSequence()
			for dec.More() {
				child, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				n.items = append(n.items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(v))
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return &Node{kind: KindScalar, value: i}, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return &Node{kind: KindScalar, value: f}, nil
	case string, bool, nil:
		return &Node{kind: KindScalar, value: v}, nil
	case float64:
		return &Node{kind: KindScalar, value: v}, nil
	default:
		return nil, fmt.Errorf("unexpected JSON token %T", tok)
	}
}

// MarshalJSON implements json.Marshaler, writing map members in key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONNode(&buf, n, make(map[*Node]bool)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeJSON renders n as JSON. A non-empty indent produces indented output.
func EncodeJSON(n *Node, indent string) ([]byte, error) {
	data, err := n.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if indent == "" {
		return data, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", indent); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeJSONNode(buf *bytes.Buffer, n *Node, active map[*Node]bool) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.kind {
	case KindMap:
		if active[n] {
			return errCycle
		}
		active[n] = true
		defer delete(active, n)

		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSONNode(buf, n.fields[k], active); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case KindSequence:
		if active[n] {
			return errCycle
		}
		active[n] = true
		defer delete(active, n)

		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONNode(buf, item, active); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		return writeJSONScalar(buf, n.value)
	}
}

func writeJSONScalar(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
