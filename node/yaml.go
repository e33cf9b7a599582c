package node

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.yaml.in/yaml/v4"
)

// errCycle is returned when encoding a tree that contains itself.
var errCycle = errors.New("node: tree contains a cycle")

// FromYAML decodes the first YAML document in data.
// Key order is preserved, aliases share the anchored node, and merge keys
// ("<<") contribute members that are not set explicitly. An empty input
// yields a null node.
func FromYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return Null(), nil
	}
	return FromYAMLNode(&doc)
}

// FromYAMLNode converts an already parsed yaml.Node tree.
func FromYAMLNode(yn *yaml.Node) (*Node, error) {
	d := yamlDecoder{anchors: make(map[*yaml.Node]*Node)}
	return d.decode(yn)
}

type yamlDecoder struct {
	anchors map[*yaml.Node]*Node
}

func (d *yamlDecoder) decode(yn *yaml.Node) (*Node, error) {
	if yn == nil {
		return Null(), nil
	}
	if n, ok := d.anchors[yn]; ok {
		return n, nil
	}

	switch yn.Kind {
	case yaml.DocumentNode:
		if len(yn.Content) == 0 {
			return Null(), nil
		}
		return d.decode(yn.Content[0])

	case yaml.AliasNode:
		return d.decode(yn.Alias)

	case yaml.MappingNode:
		n := NewMap()
		d.anchors[yn] = n
		if len(yn.Content)%2 != 0 {
			return nil, fmt.Errorf("line %d: mapping has an odd number of nodes", yn.Line)
		}
		for i := 0; i < len(yn.Content); i += 2 {
			k, v := yn.Content[i], yn.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			if k.ShortTag() == "!!merge" {
				if err := d.merge(n, v); err != nil {
					return nil, err
				}
				continue
			}
			child, err := d.decode(v)
			if err != nil {
				return nil, err
			}
			n.Set(k.Value, child)
		}
		return n, nil

	case yaml.SequenceNode:
		n := NewSequence()
		d.anchors[yn] = n
		n.items = make([]*Node, 0, len(yn.Content))
		for _, item := range yn.Content {
			child, err := d.decode(item)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, child)
		}
		return n, nil

	case yaml.ScalarNode:
		n := &Node{kind: KindScalar, value: scalarValue(yn)}
		d.anchors[yn] = n
		return n, nil

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %v", yn.Line, yn.Kind)
	}
}

// merge copies the members of a merge source into n without overriding
// members n already holds.
func (d *yamlDecoder) merge(n *Node, src *yaml.Node) error {
	sources := []*yaml.Node{src}
	if src.Kind == yaml.SequenceNode {
		sources = src.Content
	}
	for _, s := range sources {
		m, err := d.decode(s)
		if err != nil {
			return err
		}
		if !m.IsMap() {
			return fmt.Errorf("line %d: merge value must be a mapping", s.Line)
		}
		for _, k := range m.keys {
			if !n.Has(k) {
				n.Set(k, m.fields[k])
			}
		}
	}
	return nil
}

// scalarValue converts a resolved YAML scalar. Timestamps, binary data and
// custom tags are kept as their source text.
func scalarValue(yn *yaml.Node) any {
	switch yn.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := yn.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		var i int64
		if err := yn.Decode(&i); err == nil {
			return i
		}
		var f float64
		if err := yn.Decode(&f); err == nil {
			return f
		}
	case "!!float":
		var f float64
		if err := yn.Decode(&f); err == nil {
			return f
		}
	}
	return yn.Value
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	decoded, err := FromYAMLNode(value)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

// MarshalYAML implements yaml.Marshaler by returning an ordered yaml.Node.
func (n *Node) MarshalYAML() (any, error) {
	return n.ToYAMLNode()
}

// ToYAMLNode converts n into a yaml.Node tree. Shared subtrees are written
// out at every place they occur.
func (n *Node) ToYAMLNode() (*yaml.Node, error) {
	return toYAML(n, make(map[*Node]bool))
}

// EncodeYAML renders n as a YAML document.
func EncodeYAML(n *Node) ([]byte, error) {
	yn, err := n.ToYAMLNode()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(yn)
}

func toYAML(n *Node, active map[*Node]bool) (*yaml.Node, error) {
	if n == nil {
		return scalarNode("!!null", "null"), nil
	}
	switch n.kind {
	case KindMap:
		if active[n] {
			return nil, errCycle
		}
		active[n] = true
		defer delete(active, n)
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*len(n.keys))}
		for _, k := range n.keys {
			child, err := toYAML(n.fields[k], active)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, scalarNode("!!str", k), child)
		}
		return out, nil

	case KindSequence:
		if active[n] {
			return nil, errCycle
		}
		active[n] = true
		defer delete(active, n)
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, 0, len(n.items))}
		for _, item := range n.items {
			child, err := toYAML(item, active)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, child)
		}
		return out, nil

	default:
		return scalarToYAML(n.value), nil
	}
}

func scalarToYAML(v any) *yaml.Node {
	switch val := v.(type) {
	case nil:
		return scalarNode("!!null", "null")
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(val))
	case int64:
		return scalarNode("!!int", strconv.FormatInt(val, 10))
	case float64:
		switch {
		case math.IsInf(val, 1):
			return scalarNode("!!float", ".inf")
		case math.IsInf(val, -1):
			return scalarNode("!!float", "-.inf")
		case math.IsNaN(val):
			return scalarNode("!!float", ".nan")
		}
		return scalarNode("!!float", strconv.FormatFloat(val, 'g', -1, 64))
	case string:
		return scalarNode("!!str", val)
	default:
		return scalarNode("!!str", fmt.Sprint(val))
	}
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
