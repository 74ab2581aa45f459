package spatialindex

import (
	"testing"

	"github.com/sixy6e/tilejoin/internal/geomx"
)

func TestBuildAndQuery(t *testing.T) {
	envs := []geomx.Envelope{
		{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
		{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15},
		{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110},
	}

	idx, err := Build(envs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer idx.Close()

	hits, err := idx.Query(geomx.Envelope{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	seen := make(map[int]bool)
	for _, h := range hits {
		seen[h] = true
	}
	if !seen[0] || !seen[1] {
		t.Errorf("expected ids 0 and 1 in result, got %v", hits)
	}
	if seen[2] {
		t.Errorf("id 2 is far away and should not be a candidate, got %v", hits)
	}
}

func TestBuildEmpty(t *testing.T) {
	idx, err := Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer idx.Close()

	hits, err := idx.Query(geomx.Envelope{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits against an empty index, got %v", hits)
	}
}

func TestDegenerateEnvelope(t *testing.T) {
	envs := []geomx.Envelope{{MinX: 3, MinY: 3, MaxX: 3, MaxY: 3}}
	idx, err := Build(envs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer idx.Close()

	hits, err := idx.Query(geomx.Envelope{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected point envelope to be indexed, got %v", hits)
	}
}
