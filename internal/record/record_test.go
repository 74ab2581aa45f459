package record

import "testing"

func TestParse(t *testing.T) {
	r, err := Parse("T1\t1\tPOLYGON((0 0,1 0,1 1,0 1,0 0))\tA")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.TileID != "T1" {
		t.Errorf("TileID = %q, want T1", r.TileID)
	}
	if r.Side != Side1 {
		t.Errorf("Side = %d, want %d", r.Side, Side1)
	}
	if len(r.Fields) != 4 {
		t.Fatalf("len(Fields) = %d, want 4", len(r.Fields))
	}
}

func TestParseBadSide(t *testing.T) {
	if _, err := Parse("T1\t3\tPOLYGON((0 0,1 0,1 1,0 1,0 0))\tA"); err == nil {
		t.Fatal("expected error for side id 3")
	}
}

func TestParseTooFewFields(t *testing.T) {
	if _, err := Parse("T1"); err == nil {
		t.Fatal("expected error for missing side id field")
	}
}

func TestGeometry(t *testing.T) {
	r, err := Parse("T1\t1\tPOLYGON((0 0,1 0,1 1,0 1,0 0))\tA")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g, ok := r.Geometry(2); !ok || g != "POLYGON((0 0,1 0,1 1,0 1,0 0))" {
		t.Errorf("Geometry(2) = %q, %v", g, ok)
	}
	if _, ok := r.Geometry(99); ok {
		t.Error("Geometry(99) should be out of range")
	}
}

func TestGeometryEmpty(t *testing.T) {
	r, err := Parse("T1\t1\t\tA")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := r.Geometry(2); ok {
		t.Error("empty geometry field should report not present")
	}
}
