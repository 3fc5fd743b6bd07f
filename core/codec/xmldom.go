//go:build !noxml

package codec

import (
	"bytes"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// xmlDoc wraps a parsed XML tree. Parsing goes through xmlquery, which
// builds on encoding/xml and does not fetch external entities, so XXE
// is not a concern here.
type xmlDoc struct {
	root *xmlquery.Node
}

// parseXMLDoc parses raw XML bytes.
func parseXMLDoc(data []byte) (*xmlDoc, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &xmlDoc{root: root}, nil
}

// query runs a compiled-checked XPath expression over the document.
func (d *xmlDoc) query(expr string) ([]*xmlquery.Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	return nodes, nil
}

// documentElement returns the single root element.
func (d *xmlDoc) documentElement() (*xmlquery.Node, error) {
	nodes, err := d.query("/*")
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, fmt.Errorf("expected one document element, found %d", len(nodes))
	}
	return nodes[0], nil
}

// elementChildren returns the element-node children in document order.
func elementChildren(n *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			out = append(out, child)
		}
	}
	return out
}
