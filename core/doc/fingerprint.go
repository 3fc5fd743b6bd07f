package doc

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"

	"github.com/zeebo/blake3"
)

// Fingerprinting gives every document a content-derived identity, so
// callers can tell whether two transformation outputs carry the same
// content without comparing trees. BLAKE3 is the primary digest; SHA-256
// is kept for interoperability with external tooling.

// HashResult contains both digests of a document.
type HashResult struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// Fingerprint computes the BLAKE3 digest of a document's canonical byte
// stream as a hex string.
func Fingerprint(d *Document) string {
	h := blake3.New()
	writeCanonical(h, d)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// FingerprintSHA256 computes the SHA-256 digest of the same canonical
// byte stream.
func FingerprintSHA256(d *Document) string {
	h := sha256.New()
	writeCanonical(h, d)
	return hex.EncodeToString(h.Sum(nil))
}

// Hashes computes both digests in one call.
func Hashes(d *Document) HashResult {
	return HashResult{
		SHA256: FingerprintSHA256(d),
		BLAKE3: Fingerprint(d),
	}
}

// writeCanonical streams a type-prefixed, length-delimited rendering of
// the document. It is deliberately independent of any codec so the doc
// package does not depend on serialization, and so the digest is stable
// across whichever format the document arrived in.
func writeCanonical(w io.Writer, d *Document) {
	writeString(w, string(d.Kind))
	writeString(w, d.Metadata.UUID)
	writeString(w, d.Metadata.Title)
	writeString(w, d.Metadata.Version)
	writeString(w, d.Metadata.LastModified)
	writeNode(w, NewMap(d.Metadata.Extra...))
	writeNode(w, d.Root)
}

func writeNode(w io.Writer, n *Node) {
	if n == nil {
		io.WriteString(w, "z")
		return
	}
	switch n.Kind {
	case LeafNode:
		io.WriteString(w, "v")
		writeString(w, strconv.Itoa(scalarClass(n.Value)))
		writeString(w, leafString(n.Value))
	case MapNode:
		io.WriteString(w, "m")
		writeString(w, strconv.Itoa(len(n.Entries)))
		for _, e := range n.Entries {
			writeString(w, e.Key)
			writeNode(w, e.Node)
		}
	case ListNode:
		io.WriteString(w, "l")
		writeString(w, strconv.Itoa(len(n.Items)))
		for _, item := range n.Items {
			writeNode(w, item)
		}
	}
}

func writeString(w io.Writer, s string) {
	io.WriteString(w, strconv.Itoa(len(s)))
	io.WriteString(w, ":")
	io.WriteString(w, s)
}
