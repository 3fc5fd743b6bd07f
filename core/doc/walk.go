package doc

import "fmt"

// Visitor is the callback for Walk. It receives the tree path of the node
// in the form "catalog.groups[0].controls[2]".
type Visitor func(path string, n *Node)

// Walk traverses a node depth-first in document order, calling fn for the
// node itself and then every descendant.
func Walk(path string, n *Node, fn Visitor) {
	if n == nil {
		return
	}
	fn(path, n)
	switch n.Kind {
	case MapNode:
		for _, e := range n.Entries {
			Walk(path+"."+e.Key, e.Node, fn)
		}
	case ListNode:
		for i, item := range n.Items {
			Walk(fmt.Sprintf("%s[%d]", path, i), item, fn)
		}
	}
}

// IDOccurrence is one id or uuid value found in a document tree.
type IDOccurrence struct {
	ID   string
	Path string
}

// CollectIDs returns every "id" and "uuid" leaf value in the document body,
// in document order, together with the path of the owning map.
func CollectIDs(d *Document) []IDOccurrence {
	var out []IDOccurrence
	Walk(string(d.Kind), d.Root, func(path string, n *Node) {
		if n.Kind != MapNode {
			return
		}
		for _, key := range []string{"id", "uuid"} {
			if v := n.StringField(key); v != "" {
				out = append(out, IDOccurrence{ID: v, Path: path})
			}
		}
	})
	return out
}

// IDSet returns the set of all id and uuid values in the document,
// including the document's own metadata UUID.
func IDSet(d *Document) map[string]bool {
	set := make(map[string]bool)
	if d.Metadata.UUID != "" {
		set[d.Metadata.UUID] = true
	}
	for _, occ := range CollectIDs(d) {
		set[occ.ID] = true
	}
	return set
}

// Reference is one "#id"-shaped string found in a document tree. The
// leading "#" is kept; Target strips it.
type Reference struct {
	Value string
	Path  string
}

// Target returns the referenced id without the leading "#".
func (r Reference) Target() string {
	return r.Value[1:]
}

// CollectReferences returns every "#id"-shaped leaf string in the document
// body, in document order. A reference is structurally just a string; whether
// it resolves is the validator's concern.
func CollectReferences(d *Document) []Reference {
	var out []Reference
	Walk(string(d.Kind), d.Root, func(path string, n *Node) {
		if n.Kind != LeafNode {
			return
		}
		s, ok := n.Value.(string)
		if ok && len(s) > 1 && s[0] == '#' {
			out = append(out, Reference{Value: s, Path: path})
		}
	})
	return out
}
