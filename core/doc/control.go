package doc

// Family returns the family prefix of a control id: the leading alphabetic
// segment, e.g. "AC" from "AC-2" or "sc" from "sc-7.1".
func Family(id string) string {
	for i := 0; i < len(id); i++ {
		c := id[i]
		isAlpha := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
		if !isAlpha {
			return id[:i]
		}
	}
	return id
}

// Controls returns every control map of a catalog document in top-to-bottom
// traversal order, descending through nested groups and child controls.
// For non-catalog kinds it returns nil.
func Controls(d *Document) []*Node {
	if d == nil || d.Kind != Catalog {
		return nil
	}
	return controlsIn(d.Root)
}

// controlsIn walks a catalog body or group map in entry order.
func controlsIn(n *Node) []*Node {
	var out []*Node
	if n == nil || n.Kind != MapNode {
		return nil
	}
	for _, e := range n.Entries {
		switch e.Key {
		case "groups":
			if e.Node.Kind == ListNode {
				for _, g := range e.Node.Items {
					out = append(out, controlsIn(g)...)
				}
			}
		case "controls":
			if e.Node.Kind == ListNode {
				for _, c := range e.Node.Items {
					out = append(out, c)
					// child controls nest under their parent
					out = append(out, controlsIn(c)...)
				}
			}
		}
	}
	return out
}

// ControlIndex flattens a catalog into an id -> control map. When an id
// repeats, the first occurrence in document order wins; repeats are the
// validator's concern, not this accessor's.
func ControlIndex(d *Document) map[string]*Node {
	index := make(map[string]*Node)
	for _, c := range Controls(d) {
		id := c.ID()
		if id == "" {
			continue
		}
		if _, seen := index[id]; !seen {
			index[id] = c
		}
	}
	return index
}

// Groups returns the top-level group maps of a catalog body.
func Groups(n *Node) []*Node {
	groups := n.Get("groups")
	if groups == nil || groups.Kind != ListNode {
		return nil
	}
	return groups.Items
}

// Components returns the component maps of a system security plan or
// component definition.
func Components(d *Document) []*Node {
	if d == nil {
		return nil
	}
	var list *Node
	switch d.Kind {
	case SystemSecurityPlan:
		impl := d.Root.Get("system-implementation")
		if impl != nil {
			list = impl.Get("components")
		}
	case ComponentDefinition:
		list = d.Root.Get("components")
	}
	if list == nil || list.Kind != ListNode {
		return nil
	}
	return list.Items
}

// ImplementedRequirements returns the implemented-requirement maps of a
// system security plan in document order.
func ImplementedRequirements(d *Document) []*Node {
	if d == nil || d.Kind != SystemSecurityPlan {
		return nil
	}
	ci := d.Root.Get("control-implementation")
	if ci == nil {
		return nil
	}
	reqs := ci.Get("implemented-requirements")
	if reqs == nil || reqs.Kind != ListNode {
		return nil
	}
	return reqs.Items
}

// ControlIDs returns the control ids a document carries or claims, in
// document order with duplicates preserved for catalogs (the validator
// reports them) and first-occurrence order elsewhere.
func ControlIDs(d *Document) []string {
	if d == nil {
		return nil
	}
	switch d.Kind {
	case Catalog:
		var ids []string
		for _, c := range Controls(d) {
			if id := c.ID(); id != "" {
				ids = append(ids, id)
			}
		}
		return ids
	case SystemSecurityPlan:
		var ids []string
		seen := make(map[string]bool)
		for _, req := range ImplementedRequirements(d) {
			id := req.StringField("control-id")
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		return ids
	case ComponentDefinition:
		var ids []string
		seen := make(map[string]bool)
		for _, comp := range Components(d) {
			cis := comp.Get("control-implementations")
			if cis == nil || cis.Kind != ListNode {
				continue
			}
			for _, ci := range cis.Items {
				reqs := ci.Get("implemented-requirements")
				if reqs == nil || reqs.Kind != ListNode {
					continue
				}
				for _, req := range reqs.Items {
					id := req.StringField("control-id")
					if id != "" && !seen[id] {
						seen[id] = true
						ids = append(ids, id)
					}
				}
			}
		}
		return ids
	}
	return nil
}
