// Package bucket holds the per-tile, per-side geometry and raw-tuple
// collections the tile-join driver accumulates while reading one tile
// and feeds to the per-tile join. A bucket exclusively owns the
// geometries it holds; Clear releases them as a unit.
package bucket

import "github.com/sixy6e/tilejoin/internal/geomx"

// side is the ordered, insertion-order collection for one dataset side.
// Invariant: Geoms[i] and Raw[i] describe the same input record.
type side struct {
	Geoms []*geomx.Geometry
	Raw   []string
}

// Store is the two-sided bucket for a single tile.
type Store struct {
	sides map[int]*side
}

// New creates an empty bucket store.
func New() *Store {
	return &Store{sides: make(map[int]*side, 2)}
}

func (s *Store) sideFor(id int) *side {
	b, ok := s.sides[id]
	if !ok {
		b = &side{}
		s.sides[id] = b
	}
	return b
}

// Append adds a geometry and its projected raw tuple to the bucket for
// the given side id, at identical positions.
func (s *Store) Append(sideID int, geom *geomx.Geometry, raw string) {
	b := s.sideFor(sideID)
	b.Geoms = append(b.Geoms, geom)
	b.Raw = append(b.Raw, raw)
}

// Len returns the number of records held for the given side.
func (s *Store) Len(sideID int) int {
	b, ok := s.sides[sideID]
	if !ok {
		return 0
	}
	return len(b.Geoms)
}

// Geom returns the geometry at position i for the given side.
func (s *Store) Geom(sideID, i int) *geomx.Geometry {
	return s.sides[sideID].Geoms[i]
}

// Raw returns the projected raw tuple at position i for the given side.
func (s *Store) Raw(sideID, i int) string {
	return s.sides[sideID].Raw[i]
}

// Envelopes returns the envelopes of every geometry on the given side,
// in insertion order, for bulk-loading the spatial index.
func (s *Store) Envelopes(sideID int) []geomx.Envelope {
	b, ok := s.sides[sideID]
	if !ok {
		return nil
	}
	envs := make([]geomx.Envelope, len(b.Geoms))
	for i, g := range b.Geoms {
		envs[i] = g.Envelope()
	}
	return envs
}

// Clear destroys every geometry held by the bucket and releases the
// underlying storage. Called at every tile boundary so memory stays
// proportional to the largest tile, not the whole input.
func (s *Store) Clear() {
	for _, b := range s.sides {
		for _, g := range b.Geoms {
			g.Destroy()
		}
	}
	s.sides = make(map[int]*side, 2)
}
