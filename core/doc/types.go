package doc

// Kind identifies which document model a tree represents. The constant
// values double as the canonical top-level key in every serialization
// format, so kind inference and serialization share one table.
type Kind string

// Document kind constants.
const (
	Catalog             Kind = "catalog"
	Profile             Kind = "profile"
	SystemSecurityPlan  Kind = "system-security-plan"
	ComponentDefinition Kind = "component-definition"
	AssessmentResults   Kind = "assessment-results"
)

// Kinds lists all document kinds in inference order.
var Kinds = []Kind{
	Catalog,
	Profile,
	SystemSecurityPlan,
	ComponentDefinition,
	AssessmentResults,
}

// validKinds is the set of valid document kinds.
var validKinds = map[Kind]bool{
	Catalog:             true,
	Profile:             true,
	SystemSecurityPlan:  true,
	ComponentDefinition: true,
	AssessmentResults:   true,
}

// IsValid returns true if the document kind is valid.
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// Metadata is the document header common to every kind.
type Metadata struct {
	// UUID is the document instance identifier. Transformations mint a
	// fresh one on every output document.
	UUID string

	// Title is the human-readable document title.
	Title string

	// Version is the document version string.
	Version string

	// LastModified is the RFC 3339 timestamp of the last change, kept
	// verbatim as parsed so round-trips do not reformat it.
	LastModified string

	// Extra holds metadata entries this engine does not interpret
	// (roles, parties, revision history), preserved in order.
	Extra []Entry
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Extra != nil {
		out.Extra = make([]Entry, len(m.Extra))
		for i, e := range m.Extra {
			out.Extra[i] = Entry{Key: e.Key, Node: e.Node.Clone()}
		}
	}
	return out
}

// Document is a kind-labeled document tree. Root holds the document body
// (everything under the top-level kind key except uuid and metadata).
type Document struct {
	// Kind is the document model this tree represents.
	Kind Kind

	// Metadata is the document header.
	Metadata Metadata

	// Root is the document body. Always a Map node.
	Root *Node
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{
		Kind:     d.Kind,
		Metadata: d.Metadata.Clone(),
		Root:     d.Root.Clone(),
	}
}

// Equal reports structural equality of two documents.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Kind != other.Kind {
		return false
	}
	m, o := d.Metadata, other.Metadata
	if m.UUID != o.UUID || m.Title != o.Title || m.Version != o.Version ||
		m.LastModified != o.LastModified {
		return false
	}
	if !NewMap(m.Extra...).Equal(NewMap(o.Extra...)) {
		return false
	}
	return d.Root.Equal(other.Root)
}
