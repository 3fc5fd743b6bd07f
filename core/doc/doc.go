// Package doc defines the in-memory document model for the complykit engine.
//
// A Document wraps a loosely-typed tree of Nodes under a kind label
// (catalog, profile, system security plan, component definition, assessment
// results). The Node union — Leaf, Map, List — preserves the schema
// flexibility of control-catalog documents while giving every
// transformation a statically known shape to pattern-match against.
//
// Documents are created by the codec package and handed between
// transformations by value: no transformation in this module mutates its
// input. Maps keep entry order, so a parse/serialize cycle through the
// canonical JSON form is structurally lossless.
package doc
