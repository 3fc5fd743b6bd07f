// Package merge recomposes a set of same-kind documents into one.
// Metadata comes from the first input; bodies are concatenated in input
// order. Identifier collisions across inputs are detected and reported,
// never silently resolved.
package merge

import (
	"github.com/google/uuid"

	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

// listSections names the body entries that merge by concatenation, per
// document kind. Other entries are taken from the first document that
// carries them, except back-matter resources, which concatenate so no
// input's citations go dangling.
var listSections = map[doc.Kind][]string{
	doc.Catalog:             {"groups", "controls"},
	doc.Profile:             {"imports", "modifications"},
	doc.SystemSecurityPlan:  {},
	doc.ComponentDefinition: {"components"},
	doc.AssessmentResults:   {"results"},
}

// Merge recomposes documents of the given kind into one. It fails with a
// MergeError when the input list is empty or any input has a different
// kind, and with a DuplicateIDError the first time the same control id
// appears in two inputs. Inputs are never mutated.
func Merge(docs []*doc.Document, kind doc.Kind) (*doc.Document, error) {
	if len(docs) == 0 {
		return nil, errors.NewMerge("no input documents")
	}
	for i, d := range docs {
		if d == nil {
			return nil, errors.NewMerge("nil input document")
		}
		if d.Kind != kind {
			return nil, errors.Wrapf(
				errors.NewMerge("mixed document kinds"),
				"document %d is %q, want %q", i, d.Kind, kind)
		}
	}
	if err := checkCollisions(docs); err != nil {
		return nil, err
	}

	meta := docs[0].Metadata.Clone()
	meta.UUID = uuid.NewString()
	meta.LastModified = latestModified(docs)

	root := doc.NewMap()
	for _, d := range docs {
		mergeBody(root, d.Root, kind)
	}

	// SSP bodies carry single nested sections rather than top-level
	// lists, so implemented requirements concatenate one level down
	if kind == doc.SystemSecurityPlan {
		mergeImplementedRequirements(root, docs)
	}
	mergeBackMatter(root, docs)

	return &doc.Document{Kind: kind, Metadata: meta, Root: root}, nil
}

// checkCollisions reports the first control id claimed by two or more
// input documents.
func checkCollisions(docs []*doc.Document) error {
	owner := make(map[string]int)
	for i, d := range docs {
		for _, id := range doc.ControlIDs(d) {
			if prev, taken := owner[id]; taken {
				if prev == i {
					// repeat inside one document is the validator's
					// finding, not a merge collision
					continue
				}
				return errors.NewMergeDuplicateID(id, []int{prev, i})
			}
			owner[id] = i
		}
	}
	return nil
}

// mergeBody folds one input body into the output root.
func mergeBody(root, body *doc.Node, kind doc.Kind) {
	if body == nil {
		return
	}
	concat := make(map[string]bool)
	for _, key := range listSections[kind] {
		concat[key] = true
	}
	for _, e := range body.Entries {
		if concat[e.Key] && e.Node.Kind == doc.ListNode {
			existing := root.Get(e.Key)
			if existing == nil {
				existing = doc.NewList()
				root.Set(e.Key, existing)
			}
			for _, item := range e.Node.Items {
				existing.Items = append(existing.Items, item.Clone())
			}
			continue
		}
		if root.Get(e.Key) == nil {
			root.Set(e.Key, e.Node.Clone())
		}
	}
}

// mergeImplementedRequirements rebuilds control-implementation from all
// inputs in order.
func mergeImplementedRequirements(root *doc.Node, docs []*doc.Document) {
	list := doc.NewList()
	for _, d := range docs {
		for _, req := range doc.ImplementedRequirements(d) {
			list.Items = append(list.Items, req.Clone())
		}
	}
	if len(list.Items) == 0 {
		return
	}
	ci := doc.NewMap()
	ci.Set("implemented-requirements", list)
	root.Set("control-implementation", ci)
}

// mergeBackMatter concatenates back-matter resources across inputs so
// references into later documents' resources keep resolving after the
// merge. Other back-matter fields stay first-wins.
func mergeBackMatter(root *doc.Node, docs []*doc.Document) {
	list := doc.NewList()
	for _, d := range docs {
		if d.Root == nil {
			continue
		}
		bm := d.Root.Get("back-matter")
		if bm == nil || bm.Kind != doc.MapNode {
			continue
		}
		res := bm.Get("resources")
		if res == nil || res.Kind != doc.ListNode {
			continue
		}
		for _, r := range res.Items {
			list.Items = append(list.Items, r.Clone())
		}
	}
	if len(list.Items) == 0 {
		return
	}
	bm := root.Get("back-matter")
	if bm == nil || bm.Kind != doc.MapNode {
		bm = doc.NewMap()
		root.Set("back-matter", bm)
	}
	bm.Set("resources", list)
}

// latestModified returns the most recent last-modified stamp among the
// inputs. RFC 3339 strings order lexically, so string comparison is the
// timestamp comparison.
func latestModified(docs []*doc.Document) string {
	latest := docs[0].Metadata.LastModified
	for _, d := range docs[1:] {
		if d.Metadata.LastModified > latest {
			latest = d.Metadata.LastModified
		}
	}
	return latest
}
