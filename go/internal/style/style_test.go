package style

import (
	"strings"
	"testing"
)

func TestStyleFor_DeterministicPerKey(t *testing.T) {
	a := NewCache().StyleFor(Key(3, 1))
	b := NewCache().StyleFor(Key(3, 1))

	if a != b {
		t.Fatalf("same key across caches must yield the same style:\n%+v\n%+v", a, b)
	}
}

func TestStyleFor_Memoized(t *testing.T) {
	c := NewCache()
	key := Key(2, 0)

	first := c.StyleFor(key)
	second := c.StyleFor(key)
	if first != second {
		t.Fatal("repeated lookups must return the memoized style")
	}
}

func TestStyleFor_DistinctKeysDiffer(t *testing.T) {
	c := NewCache()
	if c.StyleFor(Key(1, 0)) == c.StyleFor(Key(1, 1)) {
		t.Fatal("distinct keys should not share a style")
	}
}

func TestStyleFor_WithinBounds(t *testing.T) {
	c := NewCache()
	for i := 0; i < 50; i++ {
		d := c.StyleFor(Key(9, i))
		if d.RotateDeg < -maxRotateDeg || d.RotateDeg > maxRotateDeg {
			t.Fatalf("rotation out of bounds: %v", d.RotateDeg)
		}
		if d.BackgroundX < -100 || d.BackgroundX > 100 || d.BackgroundY < -100 || d.BackgroundY > 100 {
			t.Fatalf("background shift out of bounds: %v %v", d.BackgroundX, d.BackgroundY)
		}
		if !strings.HasPrefix(d.ClipPath, "polygon(") || !strings.HasSuffix(d.ClipPath, ")") {
			t.Fatalf("clip path is not a polygon: %q", d.ClipPath)
		}
	}
}

func TestLogoStyleFor_DeterministicAndBounded(t *testing.T) {
	c := NewCache()
	key := Key(4, 2)

	first := c.LogoStyleFor(key)
	if second := c.LogoStyleFor(key); first != second {
		t.Fatal("logo style must be stable per key")
	}
	if first.RotateDeg < -32 || first.RotateDeg > 18 {
		t.Fatalf("logo rotation out of bounds: %v", first.RotateDeg)
	}
}
