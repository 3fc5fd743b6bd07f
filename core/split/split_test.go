package split

import (
	"testing"

	"github.com/complykit/complykit/core/codec"
	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

const catalogJSON = `{
  "catalog": {
    "uuid": "11111111-1111-1111-1111-111111111111",
    "metadata": {"title": "Worked Example", "version": "1.0", "last-modified": "2024-01-01T00:00:00Z"},
    "groups": [
      {"id": "AC", "controls": [{"id": "AC-1"}, {"id": "AC-2"}]},
      {"id": "SC", "controls": [{"id": "SC-7"}]}
    ]
  }
}`

func parseCatalog(t *testing.T) *doc.Document {
	t.Helper()
	return parseDoc(t, catalogJSON)
}

func parseDoc(t *testing.T, src string) *doc.Document {
	t.Helper()
	d, err := codec.Parse([]byte(src), codec.FormatJSON, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

func idsOf(d *doc.Document) []string {
	return doc.ControlIDs(d)
}

// TestSplitByControlFamily is the worked example: two sub-catalogs,
// {AC-1, AC-2} and {SC-7}.
func TestSplitByControlFamily(t *testing.T) {
	d := parseCatalog(t)
	parts, err := Split(d, ByControlFamily)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}

	ac := idsOf(parts[0])
	if len(ac) != 2 || ac[0] != "AC-1" || ac[1] != "AC-2" {
		t.Errorf("first part ids = %v, want [AC-1 AC-2]", ac)
	}
	sc := idsOf(parts[1])
	if len(sc) != 1 || sc[0] != "SC-7" {
		t.Errorf("second part ids = %v, want [SC-7]", sc)
	}

	// family groups are synthetic, named by the family prefix
	groups := doc.Groups(parts[0].Root)
	if len(groups) != 1 || groups[0].ID() != "AC" {
		t.Errorf("first part groups = %v", groups)
	}
}

func TestSplitByControl(t *testing.T) {
	d := parseCatalog(t)
	parts, err := Split(d, ByControl)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := []string{"AC-1", "AC-2", "SC-7"}
	if len(parts) != len(want) {
		t.Fatalf("got %d parts, want %d", len(parts), len(want))
	}
	for i, w := range want {
		ids := idsOf(parts[i])
		if len(ids) != 1 || ids[0] != w {
			t.Errorf("parts[%d] ids = %v, want [%s]", i, ids, w)
		}
	}
}

func TestSplitByGroup(t *testing.T) {
	d := parseCatalog(t)
	parts, err := Split(d, ByGroup)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if g := doc.Groups(parts[0].Root); len(g) != 1 || g[0].ID() != "AC" {
		t.Errorf("parts[0] groups = %v", g)
	}
	if g := doc.Groups(parts[1].Root); len(g) != 1 || g[0].ID() != "SC" {
		t.Errorf("parts[1] groups = %v", g)
	}
}

// TestSplitPartition is the partition property: outputs have pairwise
// disjoint control-id sets, across every strategy the kind supports.
func TestSplitPartition(t *testing.T) {
	d := parseCatalog(t)
	for _, strategy := range Strategies(doc.Catalog) {
		parts, err := Split(d, strategy)
		if err != nil {
			t.Fatalf("%s: %v", strategy, err)
		}
		seen := make(map[string]int)
		for i, part := range parts {
			for _, id := range idsOf(part) {
				if prev, dup := seen[id]; dup {
					t.Errorf("%s: id %q in parts %d and %d", strategy, id, prev, i)
				}
				seen[id] = i
			}
		}
		// every source control lands somewhere
		for _, id := range idsOf(d) {
			if _, ok := seen[id]; !ok {
				t.Errorf("%s: id %q missing from all parts", strategy, id)
			}
		}
	}
}

func TestSplitInheritsMetadata(t *testing.T) {
	d := parseCatalog(t)
	parts, err := Split(d, ByControlFamily)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	for _, part := range parts {
		if part.Metadata.Version != d.Metadata.Version {
			t.Errorf("Version = %q, want %q", part.Metadata.Version, d.Metadata.Version)
		}
		if part.Metadata.UUID == d.Metadata.UUID || part.Metadata.UUID == "" {
			t.Errorf("part kept the source uuid %q", part.Metadata.UUID)
		}
	}
	if parts[0].Metadata.UUID == parts[1].Metadata.UUID {
		t.Error("two parts share a uuid")
	}
}

func TestSplitDoesNotMutateInput(t *testing.T) {
	d := parseCatalog(t)
	before := doc.Fingerprint(d)
	if _, err := Split(d, ByControl); err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if doc.Fingerprint(d) != before {
		t.Error("Split mutated its input")
	}
}

// Controls outside any group still land in an output of their own, so
// by-group covers every control in the source.
func TestSplitByGroupLooseControls(t *testing.T) {
	d := parseDoc(t, `{
  "catalog": {
    "metadata": {"title": "Loose"},
    "groups": [{"id": "AC", "controls": [{"id": "AC-1"}]}],
    "controls": [{"id": "SI-4"}]
  }
}`)
	parts, err := Split(d, ByGroup)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if ids := idsOf(parts[0]); len(ids) != 1 || ids[0] != "AC-1" {
		t.Errorf("parts[0] ids = %v, want [AC-1]", ids)
	}
	if ids := idsOf(parts[1]); len(ids) != 1 || ids[0] != "SI-4" {
		t.Errorf("parts[1] ids = %v, want [SI-4]", ids)
	}
}

func TestSplitMatchingNothing(t *testing.T) {
	empty := &doc.Document{Kind: doc.Catalog, Root: doc.NewMap()}
	parts, err := Split(empty, ByGroup)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(parts) != 0 {
		t.Errorf("got %d parts, want 0", len(parts))
	}
}

func TestSplitUnsupportedStrategy(t *testing.T) {
	d := parseCatalog(t)
	_, err := Split(d, ByComponent)
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestSplitStableAcrossCalls(t *testing.T) {
	d := parseCatalog(t)
	first, err := Split(d, ByControlFamily)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	second, err := Split(d, ByControlFamily)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("output count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := idsOf(first[i]), idsOf(second[i])
		if len(a) != len(b) {
			t.Fatalf("parts[%d] changed: %v vs %v", i, a, b)
		}
		for j := range a {
			if a[j] != b[j] {
				t.Errorf("parts[%d][%d]: %q vs %q", i, j, a[j], b[j])
			}
		}
	}
}

func TestSplitSSPByComponent(t *testing.T) {
	const sspJSON = `{
  "system-security-plan": {
    "uuid": "33333333-3333-3333-3333-333333333333",
    "metadata": {"title": "Plan"},
    "system-implementation": {
      "components": [
        {"id": "web", "title": "Web Server"},
        {"id": "db", "title": "Database"}
      ]
    },
    "control-implementation": {
      "implemented-requirements": [
        {"control-id": "AC-2", "by-components": [{"component-uuid": "web"}]},
        {"control-id": "SC-7", "by-components": [{"component-uuid": "db"}]}
      ]
    }
  }
}`
	d, err := codec.Parse([]byte(sspJSON), codec.FormatJSON, "")
	if err != nil {
		t.Fatalf("parse ssp: %v", err)
	}
	parts, err := Split(d, ByComponent)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if ids := idsOf(parts[0]); len(ids) != 1 || ids[0] != "AC-2" {
		t.Errorf("web part claims %v, want [AC-2]", ids)
	}
	if ids := idsOf(parts[1]); len(ids) != 1 || ids[0] != "SC-7" {
		t.Errorf("db part claims %v, want [SC-7]", ids)
	}
}

// A requirement citing several components belongs to the first one it
// cites; it must not be duplicated into every citing component's output.
func TestSplitSSPByComponentSharedRequirement(t *testing.T) {
	d := parseDoc(t, `{
  "system-security-plan": {
    "metadata": {"title": "Shared"},
    "system-implementation": {
      "components": [{"id": "web"}, {"id": "db"}]
    },
    "control-implementation": {
      "implemented-requirements": [
        {"control-id": "AC-2", "by-components": [{"component-uuid": "web"}, {"component-uuid": "db"}]},
        {"control-id": "SC-7", "by-components": [{"component-uuid": "db"}]}
      ]
    }
  }
}`)
	parts, err := Split(d, ByComponent)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if ids := idsOf(parts[0]); len(ids) != 1 || ids[0] != "AC-2" {
		t.Errorf("web part claims %v, want [AC-2]", ids)
	}
	if ids := idsOf(parts[1]); len(ids) != 1 || ids[0] != "SC-7" {
		t.Errorf("db part claims %v, want [SC-7]", ids)
	}

	seen := make(map[string]int)
	for i, part := range parts {
		for _, id := range idsOf(part) {
			if prev, dup := seen[id]; dup {
				t.Errorf("control id %q appears in parts %d and %d", id, prev, i)
			}
			seen[id] = i
		}
	}
}

// Sibling fields of control-implementation survive a by-family split.
func TestSplitSSPByFamilyKeepsImplementationFields(t *testing.T) {
	d := parseDoc(t, `{
  "system-security-plan": {
    "metadata": {"title": "Plan"},
    "control-implementation": {
      "description": "How this system satisfies its controls.",
      "implemented-requirements": [
        {"control-id": "AC-2"},
        {"control-id": "SC-7"}
      ]
    }
  }
}`)
	parts, err := Split(d, ByControlFamily)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	for i, part := range parts {
		ci := part.Root.Get("control-implementation")
		if ci == nil {
			t.Fatalf("parts[%d] lost control-implementation", i)
		}
		if got := ci.StringField("description"); got != "How this system satisfies its controls." {
			t.Errorf("parts[%d] description = %q", i, got)
		}
	}
}
