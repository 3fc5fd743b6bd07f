// Package profile overlays a profile's tailoring instructions onto an
// imported catalog, producing a resolved control set. Resolution is
// deliberately best-effort: a modification whose target control does not
// exist in the catalog is skipped with a warning rather than failing the
// whole call, because catalogs evolve independently of saved profiles.
package profile

import (
	"github.com/google/uuid"

	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

// Modification type and alter-op names as they appear in profile bodies.
const (
	ModSetParameter = "set-parameter"
	ModAlter        = "alter"
	ModInclude      = "include"

	AlterAdd     = "add"
	AlterRemove  = "remove"
	AlterReplace = "replace"
)

// Result carries the resolved control set together with accumulated
// warnings. A value is always produced; warnings attach diagnostics
// instead of replacing it.
type Result struct {
	// Controls is the resolved control set in catalog document order.
	Controls []*doc.Node

	// Warnings holds ResolutionWarning diagnostics, in the order the
	// skipped modifications were declared.
	Warnings []error
}

// ControlIDs returns the resolved control ids in order.
func (r *Result) ControlIDs() []string {
	ids := make([]string, 0, len(r.Controls))
	for _, c := range r.Controls {
		ids = append(ids, c.ID())
	}
	return ids
}

// Catalog assembles the resolved control set into a catalog document
// carrying the profile's metadata under a fresh uuid.
func (r *Result) Catalog(p *doc.Document) *doc.Document {
	meta := p.Metadata.Clone()
	meta.UUID = uuid.NewString()
	list := doc.NewList()
	for _, c := range r.Controls {
		list.Items = append(list.Items, c)
	}
	root := doc.NewMap()
	root.Set("controls", list)
	return &doc.Document{Kind: doc.Catalog, Metadata: meta, Root: root}
}

// Resolve applies the profile's modifications to the catalog. It is a
// pure function: identical inputs yield identical output, neither input
// is mutated, and no state outside the arguments influences the result.
func Resolve(p *doc.Document, catalog *doc.Document) (*Result, error) {
	if p == nil || p.Kind != doc.Profile {
		return nil, errors.NewUnsupported("resolve", "first document is not a profile")
	}
	if catalog == nil || catalog.Kind != doc.Catalog {
		return nil, errors.NewUnsupported("resolve", "second document is not a catalog")
	}

	// flatten the catalog into an id -> control map over cloned nodes,
	// keeping document order
	var order []string
	index := make(map[string]*doc.Node)
	for _, c := range doc.Controls(catalog) {
		id := c.ID()
		if id == "" {
			continue
		}
		if _, seen := index[id]; seen {
			continue
		}
		order = append(order, id)
		index[id] = c.Clone()
	}

	result := &Result{}
	var includeIDs []string
	includeDeclared := false
	includeAll := false

	for _, mod := range modifications(p) {
		modType := mod.StringField("type")
		switch modType {
		case ModSetParameter:
			applySetParameter(mod, index, result)
		case ModAlter:
			applyAlter(mod, index, result)
		case ModInclude:
			includeDeclared = true
			if all := mod.Get("all"); all != nil && all.String() == "true" {
				includeAll = true
			}
			ids := mod.Get("control-ids")
			if ids != nil && ids.Kind == doc.ListNode {
				for _, item := range ids.Items {
					includeIDs = append(includeIDs, item.String())
				}
			}
		default:
			result.Warnings = append(result.Warnings,
				errors.NewResolutionWarning(modType, "", "unknown modification type"))
		}
	}

	// no include declared (or include-all): every catalog control is
	// retained with overlays applied
	if !includeDeclared || includeAll {
		for _, id := range order {
			result.Controls = append(result.Controls, index[id])
		}
		return result, nil
	}

	included := make(map[string]bool)
	for _, id := range includeIDs {
		if _, ok := index[id]; !ok {
			result.Warnings = append(result.Warnings,
				errors.NewResolutionWarning(ModInclude, id, "control not in catalog"))
			continue
		}
		included[id] = true
	}
	for _, id := range order {
		if included[id] {
			result.Controls = append(result.Controls, index[id])
		}
	}
	return result, nil
}

// modifications returns the profile's modification maps in declared order.
func modifications(p *doc.Document) []*doc.Node {
	mods := p.Root.Get("modifications")
	if mods == nil || mods.Kind != doc.ListNode {
		return nil
	}
	return mods.Items
}

// applySetParameter overwrites a parameter's value and label on the
// target control, creating the parameter when the control does not carry
// it yet.
func applySetParameter(mod *doc.Node, index map[string]*doc.Node, result *Result) {
	controlID := mod.StringField("control-id")
	control, ok := index[controlID]
	if !ok {
		result.Warnings = append(result.Warnings,
			errors.NewResolutionWarning(ModSetParameter, controlID, "control not in catalog"))
		return
	}
	paramID := mod.StringField("param-id")
	if paramID == "" {
		result.Warnings = append(result.Warnings,
			errors.NewResolutionWarning(ModSetParameter, controlID, "missing param-id"))
		return
	}

	params := control.Get("params")
	if params == nil || params.Kind != doc.ListNode {
		params = doc.NewList()
		control.Set("params", params)
	}
	var target *doc.Node
	for _, param := range params.Items {
		if param.ID() == paramID {
			target = param
			break
		}
	}
	if target == nil {
		target = doc.NewMap()
		target.Set("id", doc.Leaf(paramID))
		params.Items = append(params.Items, target)
	}
	if v := mod.Get("value"); v != nil {
		target.Set("value", v.Clone())
	}
	if l := mod.Get("label"); l != nil {
		target.Set("label", l.Clone())
	}
}

// applyAlter adds, removes, or replaces a part or property on the target
// control. Parts match by id (falling back to name); properties match by
// name.
func applyAlter(mod *doc.Node, index map[string]*doc.Node, result *Result) {
	controlID := mod.StringField("control-id")
	control, ok := index[controlID]
	if !ok {
		result.Warnings = append(result.Warnings,
			errors.NewResolutionWarning(ModAlter, controlID, "control not in catalog"))
		return
	}

	var sectionKey string
	var payload *doc.Node
	if part := mod.Get("part"); part != nil {
		sectionKey, payload = "parts", part
	} else if prop := mod.Get("prop"); prop != nil {
		sectionKey, payload = "props", prop
	} else {
		result.Warnings = append(result.Warnings,
			errors.NewResolutionWarning(ModAlter, controlID, "alter carries neither part nor prop"))
		return
	}

	section := control.Get(sectionKey)
	if section == nil || section.Kind != doc.ListNode {
		section = doc.NewList()
		control.Set(sectionKey, section)
	}

	op := mod.StringField("op")
	switch op {
	case AlterAdd:
		section.Items = append(section.Items, payload.Clone())
	case AlterRemove, AlterReplace:
		at := findAlterTarget(section, payload)
		if at < 0 {
			result.Warnings = append(result.Warnings,
				errors.NewResolutionWarning(ModAlter, controlID,
					op+" target not present on control"))
			return
		}
		if op == AlterRemove {
			section.Items = append(section.Items[:at], section.Items[at+1:]...)
		} else {
			section.Items[at] = payload.Clone()
		}
	default:
		result.Warnings = append(result.Warnings,
			errors.NewResolutionWarning(ModAlter, controlID, "unknown alter op "+op))
	}
}

// findAlterTarget locates the list item matching the payload by id, then
// by name.
func findAlterTarget(section *doc.Node, payload *doc.Node) int {
	if id := payload.ID(); id != "" {
		for i, item := range section.Items {
			if item.ID() == id {
				return i
			}
		}
	}
	if name := payload.StringField("name"); name != "" {
		for i, item := range section.Items {
			if item.StringField("name") == name {
				return i
			}
		}
	}
	return -1
}
