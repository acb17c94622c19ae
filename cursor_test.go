package crtterm

import "testing"

func TestCursorStyleNames(t *testing.T) {
	for _, s := range []CursorStyle{CursorBlock, CursorBar, CursorUnderline, CursorOutline} {
		got, ok := ParseCursorStyle(s.String())
		if !ok || got != s {
			t.Errorf("ParseCursorStyle(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseCursorStyle("beam"); ok {
		t.Error("unknown style accepted")
	}
	if got := CursorStyle(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}

func TestCursorDefaults(t *testing.T) {
	c := &Cursor{}
	if c.CellSpan() != 1 || c.Scale() != 1 || c.Thickness() != 1 {
		t.Errorf("zero cursor: span %d scale %g thickness %g, want 1 1 1",
			c.CellSpan(), c.Scale(), c.Thickness())
	}
	c = &Cursor{Width: 2, DPR: 2, BarWidth: 3}
	if c.CellSpan() != 2 || c.Scale() != 2 || c.Thickness() != 3 {
		t.Errorf("cursor: span %d scale %g thickness %g, want 2 2 3",
			c.CellSpan(), c.Scale(), c.Thickness())
	}
}
