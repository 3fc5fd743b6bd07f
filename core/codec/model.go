package codec

import (
	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

// This file maps between the wire tree shape shared by every format —
// a single top-level kind key wrapping uuid, metadata, and the body —
// and the Document struct. Individual codecs only translate bytes to
// generic Node trees; everything model-shaped lives here.

// detectKind infers the document kind from a top-level key set. Exactly
// one key must name a known kind; zero or several known-kind keys make
// the document ambiguous, which is an error rather than a first-match
// guess because a wrong guess poisons every downstream transformation.
func detectKind(top *doc.Node) (doc.Kind, error) {
	if top == nil || top.Kind != doc.MapNode {
		return "", errors.NewUnknownModelType(nil)
	}
	var found []doc.Kind
	for _, key := range top.Keys() {
		if k := doc.Kind(key); k.IsValid() {
			found = append(found, k)
		}
	}
	if len(found) != 1 {
		return "", errors.NewUnknownModelType(top.Keys())
	}
	return found[0], nil
}

// fromTree builds a Document from a parsed top-level tree. When kind is
// empty it is inferred from the key set; when supplied it wins, and a
// top-level tree without the matching kind key is treated as a bare body.
func fromTree(top *doc.Node, kind doc.Kind) (*doc.Document, error) {
	var body *doc.Node
	if kind == "" {
		detected, err := detectKind(top)
		if err != nil {
			return nil, err
		}
		kind = detected
		body = top.Get(string(kind))
	} else {
		body = top.Get(string(kind))
		if body == nil {
			body = top
		}
	}
	if body == nil || body.Kind != doc.MapNode {
		return nil, errors.NewUnknownModelType(top.Keys())
	}

	d := &doc.Document{Kind: kind, Root: doc.NewMap()}
	for _, e := range body.Entries {
		switch e.Key {
		case "uuid":
			d.Metadata.UUID = e.Node.String()
		case "metadata":
			d.Metadata = parseMetadata(e.Node, d.Metadata.UUID)
		default:
			d.Root.Set(e.Key, e.Node)
		}
	}
	return d, nil
}

// parseMetadata pulls the interpreted header fields and preserves
// everything else in order.
func parseMetadata(n *doc.Node, uuid string) doc.Metadata {
	m := doc.Metadata{UUID: uuid}
	if n == nil || n.Kind != doc.MapNode {
		return m
	}
	for _, e := range n.Entries {
		switch e.Key {
		case "title":
			m.Title = e.Node.String()
		case "version":
			m.Version = e.Node.String()
		case "last-modified":
			m.LastModified = e.Node.String()
		default:
			m.Extra = append(m.Extra, e)
		}
	}
	return m
}

// toTree rebuilds the wire tree for a document: the kind key wrapping
// uuid, metadata (title, last-modified, version, then uninterpreted
// entries), and the body entries in their stored order.
func toTree(d *doc.Document) *doc.Node {
	meta := doc.NewMap()
	if d.Metadata.Title != "" {
		meta.Set("title", doc.Leaf(d.Metadata.Title))
	}
	if d.Metadata.LastModified != "" {
		meta.Set("last-modified", doc.Leaf(d.Metadata.LastModified))
	}
	if d.Metadata.Version != "" {
		meta.Set("version", doc.Leaf(d.Metadata.Version))
	}
	for _, e := range d.Metadata.Extra {
		meta.Set(e.Key, e.Node)
	}

	body := doc.NewMap()
	if d.Metadata.UUID != "" {
		body.Set("uuid", doc.Leaf(d.Metadata.UUID))
	}
	if len(meta.Entries) > 0 {
		body.Set("metadata", meta)
	}
	if d.Root != nil {
		for _, e := range d.Root.Entries {
			body.Set(e.Key, e.Node)
		}
	}

	top := doc.NewMap()
	top.Set(string(d.Kind), body)
	return top
}
