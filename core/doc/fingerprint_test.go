package doc

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	a := testCatalog()
	b := testCatalog()

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("identical documents produced different BLAKE3 fingerprints")
	}
	if FingerprintSHA256(a) != FingerprintSHA256(b) {
		t.Error("identical documents produced different SHA-256 fingerprints")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	a := testCatalog()
	b := testCatalog()
	before := Fingerprint(b)

	Controls(b)[0].Set("title", Leaf("changed"))
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("content change did not change the fingerprint")
	}
	if Fingerprint(b) == before {
		t.Error("fingerprint did not track the mutation")
	}
}

func TestFingerprintDistinguishesShape(t *testing.T) {
	// a map {"a": "b"} and a list ["a", "b"] must not collide
	m := &Document{Kind: Catalog, Root: NewMap()}
	m.Root.Set("a", Leaf("b"))

	l := &Document{Kind: Catalog, Root: NewMap()}
	l.Root.Set("items", NewList(Leaf("a"), Leaf("b")))

	if Fingerprint(m) == Fingerprint(l) {
		t.Error("different shapes produced the same fingerprint")
	}
}

func TestHashesLengths(t *testing.T) {
	h := Hashes(testCatalog())
	if len(h.BLAKE3) != 64 {
		t.Errorf("BLAKE3 hex length = %d, want 64", len(h.BLAKE3))
	}
	if len(h.SHA256) != 64 {
		t.Errorf("SHA-256 hex length = %d, want 64", len(h.SHA256))
	}
	if h.BLAKE3 == h.SHA256 {
		t.Error("both digests identical; one is mislabeled")
	}
}
