// Package codec converts between raw bytes and the in-memory document
// model. Codecs register themselves in a process-wide registry at init;
// availability is therefore fixed once per process lifetime, and asking
// for an absent format yields a typed UnsupportedFormatError rather than
// a crash. JSON is the canonical, always-present form; YAML and XML are
// optional capabilities that can be compiled out (build tags "noyaml"
// and "noxml").
package codec

import (
	"sort"

	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

// Format name constants.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXML  = "xml"
)

// Codec converts one serialization format to and from the document model.
type Codec interface {
	// Format returns the format name this codec handles.
	Format() string

	// Unmarshal parses raw bytes into a document. The kind may be empty,
	// in which case it is inferred from the content.
	Unmarshal(data []byte, kind doc.Kind) (*doc.Document, error)

	// Marshal serializes a document to bytes.
	Marshal(d *doc.Document) ([]byte, error)
}

// registry holds all codecs available in this process.
var registry = make(map[string]Codec)

// Register adds a codec to the process registry. Called from codec init
// functions; last registration for a format wins.
func Register(c Codec) {
	registry[c.Format()] = c
}

// Get returns the codec for a format, or an UnsupportedFormatError when
// the format has no codec in this process.
func Get(format string) (Codec, error) {
	c, ok := registry[format]
	if !ok {
		return nil, errors.NewUnsupportedFormat(format, "no codec registered in this process")
	}
	return c, nil
}

// Has reports whether a codec for the format is available.
func Has(format string) bool {
	_, ok := registry[format]
	return ok
}

// Formats returns the names of all available formats, sorted.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Parse converts raw bytes in the given format into a Document. kind may
// be empty; it is then inferred from the top-level key set.
func Parse(data []byte, format string, kind doc.Kind) (*doc.Document, error) {
	c, err := Get(format)
	if err != nil {
		return nil, err
	}
	if kind != "" && !kind.IsValid() {
		return nil, errors.NewUnknownModelType([]string{string(kind)})
	}
	return c.Unmarshal(data, kind)
}

// Serialize converts a Document to bytes in the given format.
func Serialize(d *doc.Document, format string) ([]byte, error) {
	c, err := Get(format)
	if err != nil {
		return nil, err
	}
	return c.Marshal(d)
}

// Convert re-serializes raw bytes from one format to another.
func Convert(data []byte, from, to string, kind doc.Kind) ([]byte, error) {
	d, err := Parse(data, from, kind)
	if err != nil {
		return nil, err
	}
	return Serialize(d, to)
}
