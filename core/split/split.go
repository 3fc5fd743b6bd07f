// Package split partitions one document into an ordered set of
// sub-documents by a named, kind-specific strategy. Outputs are a strict
// partition: no control id appears in more than one sub-document, and
// output order follows the source's top-to-bottom traversal order.
package split

import (
	"github.com/google/uuid"

	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

// Strategy names a partitioning scheme.
type Strategy string

// Strategy constants.
const (
	ByGroup         Strategy = "by-group"
	ByControl       Strategy = "by-control"
	ByControlFamily Strategy = "by-control-family"
	ByComponent     Strategy = "by-component"
)

// supported maps each document kind to the strategies that apply to it.
var supported = map[doc.Kind][]Strategy{
	doc.Catalog:             {ByGroup, ByControl, ByControlFamily},
	doc.SystemSecurityPlan:  {ByControlFamily, ByComponent},
	doc.ComponentDefinition: {ByComponent},
}

// Supports reports whether the strategy applies to the kind.
func Supports(kind doc.Kind, strategy Strategy) bool {
	for _, s := range supported[kind] {
		if s == strategy {
			return true
		}
	}
	return false
}

// Strategies returns the strategies supported for a kind.
func Strategies(kind doc.Kind) []Strategy {
	return supported[kind]
}

// Split partitions a document by the given strategy. The input is never
// mutated; each output carries the source's metadata with a fresh uuid
// and a title naming its partition key. A strategy that matches nothing
// returns an empty list and no error.
func Split(d *doc.Document, strategy Strategy) ([]*doc.Document, error) {
	if d == nil {
		return nil, errors.NewUnsupported("split", "nil document")
	}
	if !Supports(d.Kind, strategy) {
		return nil, errors.NewUnsupported(
			"strategy "+string(strategy),
			"not applicable to kind "+string(d.Kind))
	}

	switch {
	case d.Kind == doc.Catalog && strategy == ByGroup:
		return splitCatalogByGroup(d), nil
	case d.Kind == doc.Catalog && strategy == ByControl:
		return splitCatalogByControl(d), nil
	case d.Kind == doc.Catalog && strategy == ByControlFamily:
		return splitCatalogByFamily(d), nil
	case d.Kind == doc.SystemSecurityPlan && strategy == ByControlFamily:
		return splitSSPByFamily(d), nil
	case strategy == ByComponent:
		return splitByComponent(d), nil
	}
	return nil, errors.NewUnsupported("strategy "+string(strategy), "no handler")
}

// derive builds an output document inheriting the source's metadata.
// The uuid is freshly minted so outputs are distinct document instances.
func derive(src *doc.Document, partKey string, root *doc.Node) *doc.Document {
	meta := src.Metadata.Clone()
	meta.UUID = uuid.NewString()
	if partKey != "" && meta.Title != "" {
		meta.Title = meta.Title + " (" + partKey + ")"
	} else if partKey != "" {
		meta.Title = partKey
	}
	return &doc.Document{Kind: src.Kind, Metadata: meta, Root: root}
}

// splitCatalogByGroup yields one catalog per top-level group. Loose
// top-level controls (outside any group) form one trailing output so
// the outputs still cover every control in the source.
func splitCatalogByGroup(d *doc.Document) []*doc.Document {
	var out []*doc.Document
	for _, g := range doc.Groups(d.Root) {
		key := g.ID()
		if key == "" {
			key = g.StringField("title")
		}
		root := doc.NewMap()
		root.Set("groups", doc.NewList(g.Clone()))
		out = append(out, derive(d, key, root))
	}
	loose := d.Root.Get("controls")
	if loose != nil && loose.Kind == doc.ListNode && len(loose.Items) > 0 {
		list := doc.NewList()
		for _, c := range loose.Items {
			list.Items = append(list.Items, c.Clone())
		}
		root := doc.NewMap()
		root.Set("controls", list)
		out = append(out, derive(d, "ungrouped", root))
	}
	return out
}

// splitCatalogByControl yields one catalog per top-level control, in
// traversal order. Child controls travel with their parent so the
// partition stays strict.
func splitCatalogByControl(d *doc.Document) []*doc.Document {
	var out []*doc.Document
	for _, c := range doc.Controls(d) {
		if findParentControl(d, c) != nil {
			continue
		}
		root := doc.NewMap()
		root.Set("controls", doc.NewList(c.Clone()))
		out = append(out, derive(d, c.ID(), root))
	}
	return out
}

// findParentControl reports whether target is nested under another
// control rather than directly under a group or the catalog body.
func findParentControl(d *doc.Document, target *doc.Node) *doc.Node {
	for _, c := range doc.Controls(d) {
		children := c.Get("controls")
		if children == nil || children.Kind != doc.ListNode {
			continue
		}
		for _, child := range children.Items {
			if child == target {
				return c
			}
		}
	}
	return nil
}

// splitCatalogByFamily regroups controls under one synthetic group per
// family prefix. Family order is first-appearance order over the source's
// traversal, so repeated calls are stable.
func splitCatalogByFamily(d *doc.Document) []*doc.Document {
	buckets := familyBuckets(doc.Controls(d), func(c *doc.Node) string {
		return doc.Family(c.ID())
	})

	var out []*doc.Document
	for _, b := range buckets {
		group := doc.NewMap()
		group.Set("id", doc.Leaf(b.key))
		list := doc.NewList()
		for _, c := range b.nodes {
			if findParentControl(d, c) != nil {
				continue
			}
			list.Items = append(list.Items, c.Clone())
		}
		if len(list.Items) == 0 {
			continue
		}
		group.Set("controls", list)
		root := doc.NewMap()
		root.Set("groups", doc.NewList(group))
		out = append(out, derive(d, b.key, root))
	}
	return out
}

// splitSSPByFamily partitions an SSP's implemented requirements by the
// family prefix of the control id they claim. The system-implementation
// section travels with every output, since each part still describes
// the same system.
func splitSSPByFamily(d *doc.Document) []*doc.Document {
	buckets := familyBuckets(doc.ImplementedRequirements(d), func(req *doc.Node) string {
		return doc.Family(req.StringField("control-id"))
	})

	var out []*doc.Document
	for _, b := range buckets {
		root := d.Root.Clone()
		list := doc.NewList()
		for _, req := range b.nodes {
			list.Items = append(list.Items, req.Clone())
		}
		// replace the requirement list on the cloned section so
		// sibling fields like description survive
		ci := root.Get("control-implementation")
		if ci == nil || ci.Kind != doc.MapNode {
			ci = doc.NewMap()
			root.Set("control-implementation", ci)
		}
		ci.Set("implemented-requirements", list)
		out = append(out, derive(d, b.key, root))
	}
	return out
}

// splitByComponent yields one document per component. For an SSP each
// implemented requirement travels with the component that owns it; for
// a component definition each component keeps its own
// control-implementations.
func splitByComponent(d *doc.Document) []*doc.Document {
	var out []*doc.Document
	for _, comp := range doc.Components(d) {
		key := comp.ID()
		if key == "" {
			key = comp.StringField("uuid")
		}
		var root *doc.Node
		switch d.Kind {
		case doc.SystemSecurityPlan:
			root = d.Root.Clone()
			impl := root.Get("system-implementation")
			if impl != nil {
				impl.Set("components", doc.NewList(comp.Clone()))
			}
			filterRequirementsByComponent(root, key)
		case doc.ComponentDefinition:
			root = doc.NewMap()
			root.Set("components", doc.NewList(comp.Clone()))
		}
		out = append(out, derive(d, key, root))
	}
	return out
}

// filterRequirementsByComponent keeps only implemented requirements
// assigned to the given component. A requirement citing several
// components belongs to the first one it cites, so each requirement
// lands in exactly one output and the outputs stay pairwise disjoint.
func filterRequirementsByComponent(root *doc.Node, component string) {
	ci := root.Get("control-implementation")
	if ci == nil {
		return
	}
	reqs := ci.Get("implemented-requirements")
	if reqs == nil || reqs.Kind != doc.ListNode {
		return
	}
	kept := doc.NewList()
	for _, req := range reqs.Items {
		if requirementOwner(req) == component {
			kept.Items = append(kept.Items, req)
		}
	}
	ci.Set("implemented-requirements", kept)
}

// requirementOwner names the component a requirement belongs to: the
// first by-components citation in document order.
func requirementOwner(req *doc.Node) string {
	by := req.Get("by-components")
	if by == nil || by.Kind != doc.ListNode || len(by.Items) == 0 {
		return ""
	}
	first := by.Items[0]
	if u := first.StringField("component-uuid"); u != "" {
		return u
	}
	return first.ID()
}

// bucket groups nodes under a shared partition key in first-appearance
// order.
type bucket struct {
	key   string
	nodes []*doc.Node
}

func familyBuckets(nodes []*doc.Node, keyOf func(*doc.Node) string) []bucket {
	var order []string
	byKey := make(map[string][]*doc.Node)
	for _, n := range nodes {
		key := keyOf(n)
		if key == "" {
			continue
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], n)
	}
	out := make([]bucket, 0, len(order))
	for _, key := range order {
		out = append(out, bucket{key: key, nodes: byKey[key]})
	}
	return out
}
