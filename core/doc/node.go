package doc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NodeKind identifies the variant of a Node.
type NodeKind string

// Node kind constants.
const (
	LeafNode NodeKind = "leaf"
	MapNode  NodeKind = "map"
	ListNode NodeKind = "list"
)

// validNodeKinds is the set of valid node kinds.
var validNodeKinds = map[NodeKind]bool{
	LeafNode: true,
	MapNode:  true,
	ListNode: true,
}

// IsValid returns true if the node kind is valid.
func (k NodeKind) IsValid() bool {
	return validNodeKinds[k]
}

// Entry is one ordered key/value pair of a Map node.
type Entry struct {
	// Key is the map key, unique within the owning Map.
	Key string

	// Node is the value.
	Node *Node
}

// Node is the tagged union making up a document tree.
// Exactly one of Value, Entries, Items is meaningful, selected by Kind.
type Node struct {
	// Kind selects the variant: LeafNode, MapNode, or ListNode.
	Kind NodeKind

	// Value is the scalar payload of a Leaf (string, bool, number, or nil).
	Value interface{}

	// Entries are the ordered key/value pairs of a Map.
	Entries []Entry

	// Items are the ordered children of a List.
	Items []*Node
}

// Leaf creates a leaf node holding a scalar value.
func Leaf(value interface{}) *Node {
	return &Node{Kind: LeafNode, Value: value}
}

// NewMap creates a map node from the given entries.
func NewMap(entries ...Entry) *Node {
	return &Node{Kind: MapNode, Entries: entries}
}

// NewList creates a list node from the given items.
func NewList(items ...*Node) *Node {
	return &Node{Kind: ListNode, Items: items}
}

// Get returns the value for key in a Map node, or nil if absent.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != MapNode {
		return nil
	}
	for _, e := range n.Entries {
		if e.Key == key {
			return e.Node
		}
	}
	return nil
}

// Set replaces the value for key, or appends a new entry if the key is not
// present. Entry order of existing keys is preserved.
func (n *Node) Set(key string, value *Node) {
	for i, e := range n.Entries {
		if e.Key == key {
			n.Entries[i].Node = value
			return
		}
	}
	n.Entries = append(n.Entries, Entry{Key: key, Node: value})
}

// Delete removes the entry for key, if present.
func (n *Node) Delete(key string) {
	for i, e := range n.Entries {
		if e.Key == key {
			n.Entries = append(n.Entries[:i], n.Entries[i+1:]...)
			return
		}
	}
}

// Keys returns the map keys in order.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != MapNode {
		return nil
	}
	keys := make([]string, len(n.Entries))
	for i, e := range n.Entries {
		keys[i] = e.Key
	}
	return keys
}

// ID returns the distinguished "id" entry of a Map node, or "" if the node
// is not a Map or carries no scalar id.
func (n *Node) ID() string {
	return n.StringField("id")
}

// StringField returns the string value of a leaf entry in a Map node.
func (n *Node) StringField(key string) string {
	v := n.Get(key)
	if v == nil || v.Kind != LeafNode {
		return ""
	}
	s, _ := v.Value.(string)
	return s
}

// String returns the scalar of a Leaf rendered as a string.
func (n *Node) String() string {
	if n == nil || n.Kind != LeafNode {
		return ""
	}
	return leafString(n.Value)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, Value: n.Value}
	if n.Entries != nil {
		out.Entries = make([]Entry, len(n.Entries))
		for i, e := range n.Entries {
			out.Entries[i] = Entry{Key: e.Key, Node: e.Node.Clone()}
		}
	}
	if n.Items != nil {
		out.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Equal reports structural equality of two nodes. Leaf scalars of different
// numeric representations (json.Number vs int64 vs float64) compare by
// canonical rendering, so a JSON parse and a YAML parse of the same content
// compare equal.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case LeafNode:
		return scalarEqual(n.Value, other.Value)
	case MapNode:
		if len(n.Entries) != len(other.Entries) {
			return false
		}
		for i, e := range n.Entries {
			o := other.Entries[i]
			if e.Key != o.Key || !e.Node.Equal(o.Node) {
				return false
			}
		}
		return true
	case ListNode:
		if len(n.Items) != len(other.Items) {
			return false
		}
		for i, item := range n.Items {
			if !item.Equal(other.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// scalarClass buckets leaf values so that equality is type-aware across
// parser representations: all numeric types form one class.
func scalarClass(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 1
	case bool:
		return 2
	case json.Number, int, int64, uint64, float64:
		return 3
	default:
		return 4
	}
}

func scalarEqual(a, b interface{}) bool {
	ca, cb := scalarClass(a), scalarClass(b)
	if ca != cb {
		return false
	}
	return leafString(a) == leafString(b)
}

// leafString renders a leaf scalar canonically. Integral floats render
// without a decimal point so YAML int64 and JSON float64 agree.
func leafString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
