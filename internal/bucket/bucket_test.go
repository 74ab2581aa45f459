package bucket

import (
	"testing"

	"github.com/sixy6e/tilejoin/internal/geomx"
)

func TestAppendAndAccess(t *testing.T) {
	ctx := geomx.NewContext()
	g1, err := ctx.Parse("POINT(0 0)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g2, err := ctx.Parse("POINT(1 1)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	s := New()
	s.Append(1, g1, "raw-a")
	s.Append(1, g2, "raw-b")

	if s.Len(1) != 2 {
		t.Fatalf("Len(1) = %d, want 2", s.Len(1))
	}
	if s.Len(2) != 0 {
		t.Fatalf("Len(2) = %d, want 0", s.Len(2))
	}
	if s.Raw(1, 0) != "raw-a" || s.Raw(1, 1) != "raw-b" {
		t.Errorf("Raw mismatch: %q, %q", s.Raw(1, 0), s.Raw(1, 1))
	}
	if s.Geom(1, 0) != g1 {
		t.Error("Geom(1,0) should be the geometry appended at that position")
	}

	envs := s.Envelopes(1)
	if len(envs) != 2 {
		t.Fatalf("Envelopes(1) len = %d, want 2", len(envs))
	}

	s.Clear()
	if s.Len(1) != 0 {
		t.Errorf("Len(1) after Clear = %d, want 0", s.Len(1))
	}
}
