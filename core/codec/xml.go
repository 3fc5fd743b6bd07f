//go:build !noxml

package codec

import (
	"bytes"

	"github.com/antchfx/xmlquery"

	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

func init() {
	Register(xmlCodec{})
}

// xmlCodec maps the document model onto XML with a generic dict-to-element
// convention:
//
//   - a Map entry becomes a child element named after the key;
//   - a List becomes repeated sibling elements, all named after the key;
//   - a Leaf becomes element text content;
//   - a Map's "id" entry becomes an id attribute on the enclosing element.
//
// Known limitations, accepted rather than papered over: arbitrary
// attributes beyond id are not modeled, scalars parse back as strings,
// a one-element list under a tag outside listSectionTags parses back as
// a single value, and mixed text/element content loses its text. XML support is best-effort;
// the canonical round-trip form is JSON. Compiling with -tags noxml
// removes the codec entirely.
type xmlCodec struct{}

func (xmlCodec) Format() string { return FormatXML }

func (xmlCodec) Unmarshal(data []byte, kind doc.Kind) (*doc.Document, error) {
	parsed, err := parseXMLDoc(data)
	if err != nil {
		return nil, errors.NewFormat(FormatXML, "", err)
	}
	elem, err := parsed.documentElement()
	if err != nil {
		return nil, errors.NewFormat(FormatXML, "", err)
	}

	if kind == "" {
		k := doc.Kind(elem.Data)
		if !k.IsValid() {
			return nil, errors.NewUnknownModelType([]string{elem.Data})
		}
		kind = k
	}

	top := doc.NewMap()
	top.Set(string(kind), elementToNode(elem))
	return fromTree(top, kind)
}

func (xmlCodec) Marshal(d *doc.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	top := toTree(d)
	// toTree produces exactly one entry, the kind key
	for _, e := range top.Entries {
		writeXMLElement(&buf, e.Key, e.Node, 0)
	}
	return buf.Bytes(), nil
}

// elementToNode converts an element subtree into the document model.
// Pure-text elements become leaves; anything with attributes or element
// children becomes a Map, with same-named children of count > 1 merged
// into a List at the position of their first occurrence.
func elementToNode(elem *xmlquery.Node) *doc.Node {
	children := elementChildren(elem)
	if len(children) == 0 && len(elem.Attr) == 0 {
		return doc.Leaf(elem.InnerText())
	}

	n := doc.NewMap()
	for _, attr := range elem.Attr {
		n.Set(attr.Name.Local, doc.Leaf(attr.Value))
	}

	counts := make(map[string]int)
	for _, child := range children {
		counts[child.Data]++
	}
	for _, child := range children {
		value := elementToNode(child)
		if counts[child.Data] > 1 || listSectionTags[child.Data] {
			existing := n.Get(child.Data)
			if existing == nil {
				n.Set(child.Data, doc.NewList(value))
			} else {
				existing.Items = append(existing.Items, value)
			}
		} else {
			n.Set(child.Data, value)
		}
	}
	return n
}

// listSectionTags names the element tags that always parse as lists,
// so a section holding a single element does not collapse into a plain
// value on the way back in. Repeated tags outside this set still merge
// into lists by count.
var listSectionTags = map[string]bool{
	"groups":                   true,
	"controls":                 true,
	"params":                   true,
	"parts":                    true,
	"props":                    true,
	"links":                    true,
	"imports":                  true,
	"modifications":            true,
	"components":               true,
	"control-implementations":  true,
	"implemented-requirements": true,
	"by-components":            true,
	"results":                  true,
	"resources":                true,
	"rlinks":                   true,
	"control-ids":              true,
}

// writeXMLElement serializes a node as the element named tag.
func writeXMLElement(buf *bytes.Buffer, tag string, n *doc.Node, depth int) {
	if n == nil {
		writeXMLIndent(buf, depth)
		buf.WriteString("<" + tag + "/>\n")
		return
	}
	switch n.Kind {
	case doc.ListNode:
		for _, item := range n.Items {
			writeXMLElement(buf, tag, item, depth)
		}
	case doc.LeafNode:
		writeXMLIndent(buf, depth)
		text := n.String()
		if text == "" {
			buf.WriteString("<" + tag + "/>\n")
			return
		}
		buf.WriteString("<" + tag + ">")
		buf.WriteString(escapeXMLText(text))
		buf.WriteString("</" + tag + ">\n")
	case doc.MapNode:
		writeXMLIndent(buf, depth)
		buf.WriteString("<" + tag)
		if id := n.ID(); id != "" {
			buf.WriteString(" id=\"" + escapeXMLAttr(id) + "\"")
		}
		rest := make([]doc.Entry, 0, len(n.Entries))
		for _, e := range n.Entries {
			if e.Key == "id" {
				continue
			}
			rest = append(rest, e)
		}
		if len(rest) == 0 {
			buf.WriteString("/>\n")
			return
		}
		buf.WriteString(">\n")
		for _, e := range rest {
			writeXMLElement(buf, e.Key, e.Node, depth+1)
		}
		writeXMLIndent(buf, depth)
		buf.WriteString("</" + tag + ">\n")
	}
}

func writeXMLIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}
