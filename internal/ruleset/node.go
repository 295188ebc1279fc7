// Package ruleset holds the classification and rendering engine for
// hierarchical tool-configuration trees. A parsed ruleset becomes a tree of
// Nodes whose mapping entries keep source document order; the classifier then
// picks a render strategy per node and the renderer walks the tree into an
// ordered block sequence.
package ruleset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the value shape a Node carries.
type Kind int

const (
	// KindScalar is a single bool, number, or string value.
	KindScalar Kind = iota
	// KindSequence is a flat list of scalar values.
	KindSequence
	// KindMapping is an ordered mapping of child nodes.
	KindMapping
	// KindRaw is any shape outside the supported value set. Raw nodes are
	// never classified; they degrade to a string conversion when formatted.
	KindRaw
)

// Node is one position in a parsed configuration tree.
//
// Exactly one of Scalar, Sequence, Children, or Raw is meaningful, selected
// by Kind. Children preserve source insertion order: that order drives section
// and table-row order in the rendered output and is never re-sorted.
type Node struct {
	Key      string
	Kind     Kind
	Scalar   any
	Sequence []any
	Children []*Node
	Raw      any
}

// ErrNotMapping reports a ruleset document whose root is not a mapping.
var ErrNotMapping = errors.New("ruleset root is not a mapping")

// Load parses a serialized ruleset document into a Node tree rooted at name.
// Null-valued entries are dropped during the load: they are absent from the
// tree rather than present as empty sections.
func Load(name string, data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ruleset %s: %w", name, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		// Empty document: a valid, empty ruleset.
		return &Node{Key: name, Kind: KindMapping}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s", ErrNotMapping, name)
	}
	return fromMappingNode(name, root), nil
}

// FromYAMLNode converts an already-decoded yaml mapping node into a Node tree.
// It is the typed pass-through boundary between the external parser and the
// classifier; no transformation happens beyond null filtering.
func FromYAMLNode(key string, n *yaml.Node) *Node {
	return convertNode(key, n)
}

func fromMappingNode(key string, n *yaml.Node) *Node {
	node := &Node{Key: key, Kind: KindMapping}
	// Mapping content alternates key, value.
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i].Value
		v := n.Content[i+1]
		if isNull(v) {
			continue
		}
		node.Children = append(node.Children, convertNode(k, v))
	}
	return node
}

func convertNode(key string, n *yaml.Node) *Node {
	switch n.Kind {
	case yaml.MappingNode:
		return fromMappingNode(key, n)
	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				// Nested structure inside a sequence is outside the
				// supported value set; keep the raw decode for fallback.
				var raw any
				_ = n.Decode(&raw)
				return &Node{Key: key, Kind: KindRaw, Raw: raw}
			}
			seq = append(seq, scalarValue(item))
		}
		return &Node{Key: key, Kind: KindSequence, Sequence: seq}
	case yaml.ScalarNode:
		return &Node{Key: key, Kind: KindScalar, Scalar: scalarValue(n)}
	default:
		var raw any
		_ = n.Decode(&raw)
		return &Node{Key: key, Kind: KindRaw, Raw: raw}
	}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && (n.Tag == "!!null" || n.Value == "~")
}

func scalarValue(n *yaml.Node) any {
	switch n.Tag {
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err == nil {
			return b
		}
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err == nil {
			return i
		}
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err == nil {
			return f
		}
	}
	return n.Value
}

// Child returns the immediate child with the given key, or nil.
func (n *Node) Child(key string) *Node {
	for _, c := range n.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// IsMapping reports whether the node is a walkable mapping.
func (n *Node) IsMapping() bool { return n.Kind == KindMapping }
