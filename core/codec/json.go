package codec

import (
	"bytes"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

func init() {
	Register(jsonCodec{})
}

// jsonCodec is the canonical codec. Decoding walks the token stream so
// map entry order is preserved; encoding writes entries back in stored
// order, which is what makes Parse(Serialize(d)) structurally equal to d.
type jsonCodec struct{}

func (jsonCodec) Format() string { return FormatJSON }

func (jsonCodec) Unmarshal(data []byte, kind doc.Kind) (*doc.Document, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	top, err := decodeJSONValue(dec)
	if err != nil {
		return nil, errors.NewFormat(FormatJSON, "", err)
	}
	// trailing garbage after the top-level value is malformed input
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.NewFormat(FormatJSON, "trailing content after document", nil)
	}
	return fromTree(top, kind)
}

func (jsonCodec) Marshal(d *doc.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSONNode(&buf, toTree(d), 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// decodeJSONValue reads one JSON value from the token stream into a Node.
func decodeJSONValue(dec *gojson.Decoder) (*doc.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *gojson.Decoder, tok gojson.Token) (*doc.Node, error) {
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			n := doc.NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				if n.Get(key) != nil {
					return nil, fmt.Errorf("duplicate object key %q", key)
				}
				n.Set(key, value)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return n, nil
		case '[':
			n := doc.NewList()
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string, bool, gojson.Number, nil:
		return doc.Leaf(t), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// encodeJSONNode writes a node as indented JSON.
func encodeJSONNode(buf *bytes.Buffer, n *doc.Node, depth int) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case doc.LeafNode:
		out, err := gojson.Marshal(n.Value)
		if err != nil {
			return err
		}
		buf.Write(out)
	case doc.MapNode:
		if len(n.Entries) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, e := range n.Entries {
			writeJSONIndent(buf, depth+1)
			key, err := gojson.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteString(": ")
			if err := encodeJSONNode(buf, e.Node, depth+1); err != nil {
				return err
			}
			if i < len(n.Entries)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeJSONIndent(buf, depth)
		buf.WriteByte('}')
	case doc.ListNode:
		if len(n.Items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range n.Items {
			writeJSONIndent(buf, depth+1)
			if err := encodeJSONNode(buf, item, depth+1); err != nil {
				return err
			}
			if i < len(n.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeJSONIndent(buf, depth)
		buf.WriteByte(']')
	}
	return nil
}

func writeJSONIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}
