package bitutil

import "testing"

func TestBitMatrixGetSet(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	bm.Set(3, 5)
	if !bm.Get(3, 5) {
		t.Error("bit (3,5) should be set")
	}
	if bm.Get(5, 3) {
		t.Error("bit (5,3) should not be set")
	}
}

func TestBitMatrixFlip(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 4)
	bm.Flip(1, 2)
	if !bm.Get(1, 2) {
		t.Error("bit should be set after flip")
	}
	bm.Flip(1, 2)
	if bm.Get(1, 2) {
		t.Error("bit should be unset after double flip")
	}
}

func TestBitMatrixUnset(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 4)
	bm.Set(2, 3)
	bm.Unset(2, 3)
	if bm.Get(2, 3) {
		t.Error("bit should be unset")
	}
}

func TestBitMatrixSetRegion(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.SetRegion(2, 2, 4, 4)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			expected := x >= 2 && x < 6 && y >= 2 && y < 6
			if bm.Get(x, y) != expected {
				t.Errorf("(%d,%d) = %v, want %v", x, y, bm.Get(x, y), expected)
			}
		}
	}
}

func TestParseStringMatrix(t *testing.T) {
	bm := ParseStringMatrix("X X \n  X \nX   \n", "X ", "  ")
	if bm.Width() != 2 || bm.Height() != 3 {
		t.Fatalf("unexpected dimensions %dx%d", bm.Width(), bm.Height())
	}
	checks := map[[2]int]bool{
		{0, 0}: true, {1, 0}: true,
		{0, 1}: false, {1, 1}: true,
		{0, 2}: true, {1, 2}: false,
	}
	for pos, want := range checks {
		if bm.Get(pos[0], pos[1]) != want {
			t.Errorf("(%d,%d) = %v, want %v", pos[0], pos[1], bm.Get(pos[0], pos[1]), want)
		}
	}
}

func TestBitMatrixString(t *testing.T) {
	bm := NewBitMatrixWithSize(2, 2)
	bm.Set(0, 0)
	bm.Set(1, 1)
	want := "X   \n  X \n"
	if got := bm.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
