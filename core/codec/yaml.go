//go:build !noyaml

package codec

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

func init() {
	Register(yamlCodec{})
}

// yamlCodec converts documents through yaml.Node trees, which keep
// mapping order the same way the document model does. Compiling with
// -tags noyaml drops this file and with it YAML support; the registry
// then reports the format as unavailable.
type yamlCodec struct{}

func (yamlCodec) Format() string { return FormatYAML }

func (yamlCodec) Unmarshal(data []byte, kind doc.Kind) (*doc.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.NewFormat(FormatYAML, "", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.NewFormat(FormatYAML, "empty document", nil)
	}
	top, err := yamlToNode(root.Content[0])
	if err != nil {
		return nil, errors.NewFormat(FormatYAML, "", err)
	}
	return fromTree(top, kind)
}

func (yamlCodec) Marshal(d *doc.Document) ([]byte, error) {
	y, err := nodeToYAML(toTree(d))
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(y)
}

// yamlToNode converts a parsed yaml.Node into the document model.
func yamlToNode(n *yaml.Node) (*doc.Node, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlToNode(n.Alias)
	case yaml.MappingNode:
		out := doc.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if out.Get(key) != nil {
				return nil, fmt.Errorf("duplicate mapping key %q", key)
			}
			value, err := yamlToNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out.Set(key, value)
		}
		return out, nil
	case yaml.SequenceNode:
		out := doc.NewList()
		for _, item := range n.Content {
			converted, err := yamlToNode(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, converted)
		}
		return out, nil
	case yaml.ScalarNode:
		return doc.Leaf(yamlScalar(n)), nil
	}
	return nil, fmt.Errorf("unsupported yaml node kind %d", n.Kind)
}

// yamlScalar maps a scalar node to a typed leaf value by resolved tag.
func yamlScalar(n *yaml.Node) interface{} {
	switch n.Tag {
	case "!!null":
		return nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
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

// nodeToYAML converts a document node back to a yaml.Node tree. Scalars
// carry explicit tags so strings that look like numbers stay strings.
func nodeToYAML(n *doc.Node) (*yaml.Node, error) {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	switch n.Kind {
	case doc.MapNode:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range n.Entries {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
			value, err := nodeToYAML(e.Node)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, key, value)
		}
		return out, nil
	case doc.ListNode:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items {
			converted, err := nodeToYAML(item)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, converted)
		}
		return out, nil
	case doc.LeafNode:
		return yamlLeaf(n.Value), nil
	}
	return nil, fmt.Errorf("unsupported node kind %q", n.Kind)
}

func yamlLeaf(v interface{}) *yaml.Node {
	out := &yaml.Node{Kind: yaml.ScalarNode}
	switch x := v.(type) {
	case nil:
		out.Tag = "!!null"
		out.Value = "null"
	case bool:
		out.Tag = "!!bool"
		out.Value = strconv.FormatBool(x)
	case string:
		out.Tag = "!!str"
		out.Value = x
	case int:
		out.Tag = "!!int"
		out.Value = strconv.Itoa(x)
	case int64:
		out.Tag = "!!int"
		out.Value = strconv.FormatInt(x, 10)
	case float64:
		out.Tag = "!!float"
		out.Value = strconv.FormatFloat(x, 'g', -1, 64)
	default:
		// json.Number and anything else renders as a plain scalar and
		// resolves on re-parse
		out.Value = fmt.Sprintf("%v", x)
	}
	return out
}
