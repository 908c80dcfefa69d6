package hash

import "testing"

func TestLessIsLexicographic(t *testing.T) {
	a := Hash{0x01}
	b := Hash{0x02}
	if !Less(a, b) {
		t.Fatalf("expected %x < %x", a, b)
	}
	if Less(b, a) {
		t.Fatalf("expected %x not < %x", b, a)
	}
	if Less(a, a) {
		t.Fatalf("a hash must not be Less than itself")
	}
}

func TestFromSliceRejectsWrongLength(t *testing.T) {
	if _, err := FromSlice(make([]byte, Size-1)); err == nil {
		t.Fatalf("expected an error for a short slice")
	}
	if _, err := FromSlice(make([]byte, Size+1)); err == nil {
		t.Fatalf("expected an error for a long slice")
	}
	h, err := FromSlice(make([]byte, Size))
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if !h.IsZero() {
		t.Fatalf("expected the zero-filled slice to produce the zero hash")
	}
}

func TestSortedIsStableAndComplete(t *testing.T) {
	in := []Hash{{0x03}, {0x01}, {0x02}}
	out := Sorted(in)
	if len(out) != len(in) {
		t.Fatalf("Sorted changed length: got %d, want %d", len(out), len(in))
	}
	for i := 1; i < len(out); i++ {
		if Less(out[i], out[i-1]) {
			t.Fatalf("Sorted result out of order at index %d: %v", i, out)
		}
	}
	// The input slice itself must be untouched.
	if in[0] != (Hash{0x03}) {
		t.Fatalf("Sorted mutated its input")
	}
}
