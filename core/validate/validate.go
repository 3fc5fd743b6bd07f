// Package validate performs structural and referential integrity checks
// over a single document. Validation is a pure function: it never mutates
// its input, performs no I/O, and accumulates every finding instead of
// stopping at the first, because compliance documents are frequently
// incomplete drafts under active editing.
package validate

import (
	"fmt"

	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

// Result categorizes validation findings. Errors are integrity
// violations; warnings flag structure that is legal but suspect.
type Result struct {
	Errors   []error
	Warnings []error
}

// Valid reports whether validation found no errors. Warnings do not
// affect validity.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Validate runs all validation passes over the document, in order: kind
// detection, duplicate-id scan, dangling-reference scan, and
// kind-specific structural checks.
func Validate(d *doc.Document) *Result {
	result := &Result{}
	if d == nil {
		result.Errors = append(result.Errors, errors.NewUnknownModelType(nil))
		return result
	}

	if !d.Kind.IsValid() {
		result.Errors = append(result.Errors,
			errors.NewUnknownModelType([]string{string(d.Kind)}))
		// the remaining passes still run; the tree is scannable even
		// when the kind label is wrong
	}

	checkDuplicateIDs(d, result)
	checkReferences(d, result)

	switch d.Kind {
	case doc.Catalog:
		checkCatalogStructure(d, result)
	case doc.SystemSecurityPlan:
		checkSSPStructure(d, result)
	case doc.Profile:
		checkProfileStructure(d, result)
	}
	return result
}

// checkDuplicateIDs reports every repeated id value in the tree. The
// first occurrence owns the id; each repeat is one finding located by
// its path.
func checkDuplicateIDs(d *doc.Document, result *Result) {
	seen := make(map[string]bool)
	for _, occ := range doc.CollectIDs(d) {
		if seen[occ.ID] {
			result.Errors = append(result.Errors,
				errors.NewDuplicateID(occ.ID, occ.Path))
			continue
		}
		seen[occ.ID] = true
	}
}

// checkReferences reports every "#id"-shaped reference with no matching
// id anywhere in the document.
func checkReferences(d *doc.Document, result *Result) {
	ids := doc.IDSet(d)
	for _, ref := range doc.CollectReferences(d) {
		if !ids[ref.Target()] {
			result.Errors = append(result.Errors,
				errors.NewDanglingReference(ref.Value, ref.Path))
		}
	}
}

// checkCatalogStructure flags groups that contain no controls after
// recursive descent.
func checkCatalogStructure(d *doc.Document, result *Result) {
	var walkGroups func(path string, n *doc.Node)
	walkGroups = func(path string, n *doc.Node) {
		groups := n.Get("groups")
		if groups == nil || groups.Kind != doc.ListNode {
			return
		}
		for i, g := range groups.Items {
			gPath := fmt.Sprintf("%s.groups[%d]", path, i)
			if groupControlCount(g) == 0 {
				id := g.ID()
				if id == "" {
					id = gPath
				}
				result.Warnings = append(result.Warnings,
					errors.NewValidationWarning(gPath,
						fmt.Sprintf("group %q contains no controls", id)))
			}
			walkGroups(gPath, g)
		}
	}
	walkGroups(string(d.Kind), d.Root)
}

// groupControlCount counts controls under a group, descending into
// nested groups.
func groupControlCount(g *doc.Node) int {
	count := 0
	controls := g.Get("controls")
	if controls != nil && controls.Kind == doc.ListNode {
		count += len(controls.Items)
	}
	groups := g.Get("groups")
	if groups != nil && groups.Kind == doc.ListNode {
		for _, nested := range groups.Items {
			count += groupControlCount(nested)
		}
	}
	return count
}

// checkSSPStructure requires at least one control implementation per
// control id the plan claims to satisfy. A requirement without a
// control-id, or a plan claiming controls with an empty implementation
// section, is an integrity error.
func checkSSPStructure(d *doc.Document, result *Result) {
	reqs := doc.ImplementedRequirements(d)
	for i, req := range reqs {
		if req.StringField("control-id") == "" {
			result.Errors = append(result.Errors,
				errors.NewValidationError(
					fmt.Sprintf("%s.control-implementation.implemented-requirements[%d]", d.Kind, i),
					"implemented requirement missing control-id"))
		}
	}
	if len(reqs) == 0 && d.Root.Get("control-implementation") != nil {
		result.Errors = append(result.Errors,
			errors.NewValidationError(
				string(d.Kind)+".control-implementation",
				"control implementation declares no implemented requirements"))
	}
}

// checkProfileStructure warns when a modification targets a control id
// that the profile's own include set excludes; applying it would be a
// no-op against the resolved set.
func checkProfileStructure(d *doc.Document, result *Result) {
	mods := d.Root.Get("modifications")
	if mods == nil || mods.Kind != doc.ListNode {
		return
	}

	included := make(map[string]bool)
	includeDeclared := false
	includeAll := false
	for _, mod := range mods.Items {
		if mod.StringField("type") != "include" {
			continue
		}
		includeDeclared = true
		if all := mod.Get("all"); all != nil && all.String() == "true" {
			includeAll = true
		}
		ids := mod.Get("control-ids")
		if ids != nil && ids.Kind == doc.ListNode {
			for _, item := range ids.Items {
				included[item.String()] = true
			}
		}
	}
	if !includeDeclared || includeAll {
		return
	}

	for i, mod := range mods.Items {
		modType := mod.StringField("type")
		if modType != "set-parameter" && modType != "alter" {
			continue
		}
		target := mod.StringField("control-id")
		if target != "" && !included[target] {
			result.Warnings = append(result.Warnings,
				errors.NewValidationWarning(
					fmt.Sprintf("%s.modifications[%d]", d.Kind, i),
					fmt.Sprintf("%s targets %q, which the include set excludes", modType, target)))
		}
	}
}
