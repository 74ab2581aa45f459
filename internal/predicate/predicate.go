// Package predicate dispatches the ten named spatial predicates onto
// two-stage envelope-then-exact-geometry checks, buffers for
// ST_DWITHIN, and fast-paths point-point distance. It is the only
// place in the engine that decides whether a pair qualifies, and the
// only place that produces the ST_INTERSECTS statistics scratch.
package predicate

import (
	"fmt"

	"github.com/sixy6e/tilejoin/internal/geomx"
)

// Kind is a closed tag over the spatial predicates this engine knows
// how to evaluate. Modeled as a tagged variant with one arm per
// predicate in Evaluate, not an open subtype hierarchy.
type Kind int

const (
	Intersects Kind = iota
	Touches
	Crosses
	Contains
	Adjacent
	Disjoint
	Equals
	DWithin
	Within
	Overlaps
)

var names = map[string]Kind{
	"st_intersects": Intersects,
	"st_touches":    Touches,
	"st_crosses":    Crosses,
	"st_contains":   Contains,
	"st_adjacent":   Adjacent,
	"st_disjoint":   Disjoint,
	"st_equals":     Equals,
	"st_dwithin":    DWithin,
	"st_within":     Within,
	"st_overlaps":   Overlaps,
}

// ParseKind maps the fixed predicate name table onto a Kind. Unknown
// values fail configuration, per the engine's error taxonomy.
func ParseKind(name string) (Kind, error) {
	k, ok := names[name]
	if !ok {
		return 0, fmt.Errorf("predicate: unknown predicate %q", name)
	}
	return k, nil
}

// String renders the predicate's canonical name, used in diagnostics.
func (k Kind) String() string {
	for name, kind := range names {
		if kind == k {
			return name
		}
	}
	return "st_unknown"
}

// Stats is the per-pair statistics scratch populated only when the
// predicate is ST_INTERSECTS and the pair qualifies.
type Stats struct {
	Area1         float64
	Area2         float64
	UnionArea     float64
	IntersectArea float64
}

// Result is the outcome of evaluating a predicate against one pair.
// Stats is non-nil only for a qualifying ST_INTERSECTS pair.
type Result struct {
	Matched bool
	Stats   *Stats
}

// Evaluate runs the predicate named by kind against (g1, g2). distance
// is only consulted for ST_DWITHIN.
func Evaluate(kind Kind, g1, g2 *geomx.Geometry, distance float64) (Result, error) {
	switch kind {
	case Intersects:
		return evaluateIntersects(g1, g2, true), nil

	case Touches:
		return Result{Matched: g1.Touches(g2)}, nil

	case Crosses:
		return Result{Matched: g1.Crosses(g2)}, nil

	case Contains:
		e1, e2 := g1.Envelope(), g2.Envelope()
		matched := e1.Contains(e2) && g1.Contains(g2)
		return Result{Matched: matched}, nil

	case Adjacent:
		return Result{Matched: !g1.Disjoint(g2)}, nil

	case Disjoint:
		return Result{Matched: g1.Disjoint(g2)}, nil

	case Equals:
		e1, e2 := g1.Envelope(), g2.Envelope()
		matched := e1.Equals(e2) && g1.Equals(g2)
		return Result{Matched: matched}, nil

	case Within:
		return Result{Matched: g1.Within(g2)}, nil

	case Overlaps:
		return Result{Matched: g1.Overlaps(g2)}, nil

	case DWithin:
		return evaluateDWithin(g1, g2, distance), nil

	default:
		// Unreachable after configuration validates the predicate name;
		// the engine treats it as a non-match rather than panicking.
		return Result{Matched: false}, fmt.Errorf("predicate: unknown predicate at dispatch time: %d", kind)
	}
}

// evaluateIntersects runs the mandatory envelope pre-filter followed by
// the exact intersects test. withStats controls whether the statistics
// scratch is populated on a match; it is false when ST_INTERSECTS is
// being evaluated as the tail of an ST_DWITHIN buffer expansion, since
// the scratch belongs only to a literal ST_INTERSECTS predicate.
func evaluateIntersects(g1, g2 *geomx.Geometry, withStats bool) Result {
	e1, e2 := g1.Envelope(), g2.Envelope()
	if !e1.Intersects(e2) || !g1.Intersects(g2) {
		return Result{Matched: false}
	}
	if !withStats {
		return Result{Matched: true}
	}

	union := g1.Union(g2)
	defer union.Destroy()
	inter := g1.Intersection(g2)
	defer inter.Destroy()

	return Result{
		Matched: true,
		Stats: &Stats{
			Area1:         g1.Area(),
			Area2:         g2.Area(),
			UnionArea:     union.Area(),
			IntersectArea: inter.Area(),
		},
	}
}

// evaluateDWithin fast-paths point-point Euclidean distance and
// otherwise buffers g1 and recurses as ST_INTERSECTS, using the
// buffer's own envelope rather than an index-query-expanded one.
func evaluateDWithin(g1, g2 *geomx.Geometry, distance float64) Result {
	if g1.IsPoint() && g2.IsPoint() {
		x1, y1 := g1.XY()
		x2, y2 := g2.XY()
		dx, dy := x1-x2, y1-y2
		sqDist := dx*dx + dy*dy
		return Result{Matched: sqDist <= distance*distance}
	}

	buffered := g1.Buffer(distance)
	defer buffered.Destroy()
	return evaluateIntersects(buffered, g2, false)
}
