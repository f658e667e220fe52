package fileid

import "testing"

func TestContentHash(t *testing.T) {
	h := ContentHash([]byte("hello"))
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if h != want {
		t.Errorf("hash: got %s, want %s", h, want)
	}
}

func TestContentHash_DistinguishesContent(t *testing.T) {
	a := ContentHash([]byte("report a"))
	b := ContentHash([]byte("report b"))
	if a == b {
		t.Error("different content should hash differently")
	}
	if a != ContentHash([]byte("report a")) {
		t.Error("hash should be stable")
	}
}

func TestContentHash_Empty(t *testing.T) {
	h := ContentHash(nil)
	if len(h) != 64 {
		t.Errorf("hash length: got %d, want 64", len(h))
	}
}
