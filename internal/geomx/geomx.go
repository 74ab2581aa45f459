// Package geomx adapts github.com/twpayne/go-geos, the external geometry
// engine this module never re-implements: WKT parsing, envelopes, area,
// and the exact spatial relation tests the predicate evaluator refines
// candidates with. It is the Go equivalent of the GEOS bindings the
// original engine linked against directly.
package geomx

import (
	"fmt"

	"github.com/twpayne/go-geos"
)

// Context owns a GEOS handle and every Geometry parsed from it. A
// Context is not safe for concurrent use, matching the single-threaded
// resource model of the engine that embeds it.
type Context struct {
	gctx *geos.Context
}

// NewContext creates a geometry context.
func NewContext() *Context {
	return &Context{gctx: geos.NewContext()}
}

// Geometry is an opaque handle over a parsed geometry. It caches its
// envelope and whether it is a POINT, so that the mandatory envelope
// pre-filters and the ST_DWITHIN point check in the predicate evaluator
// never re-enter the geometry engine. Area is not cached.
type Geometry struct {
	g        *geos.Geom
	envelope Envelope
	isPoint  bool
}

// Parse reads a WKT string into a Geometry. A parse failure is always
// reported to the caller; the tile-join driver treats it as fatal.
func (c *Context) Parse(wkt string) (*Geometry, error) {
	g, err := c.gctx.NewGeomFromWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("geomx: parsing WKT: %w", err)
	}
	b := g.Bounds()
	return &Geometry{
		g: g,
		envelope: Envelope{
			MinX: b.MinX,
			MinY: b.MinY,
			MaxX: b.MaxX,
			MaxY: b.MaxY,
		},
		isPoint: g.TypeID() == geos.TypeIDPoint,
	}, nil
}

// Envelope returns the geometry's cached bounding rectangle.
func (g *Geometry) Envelope() Envelope {
	return g.envelope
}

// Area returns the geometry's area. Zero for points and lines.
func (g *Geometry) Area() float64 {
	return g.g.Area()
}

// IsPoint reports whether the underlying geometry type is POINT; used
// for the ST_DWITHIN fast path.
func (g *Geometry) IsPoint() bool {
	return g.isPoint
}

// XY returns the coordinates of a POINT geometry. Only meaningful when
// IsPoint reports true.
func (g *Geometry) XY() (x, y float64) {
	return g.g.X(), g.g.Y()
}

// Destroy releases the underlying GEOS handle. Called exactly once per
// geometry: for a parsed record geometry, when the bucket owning it is
// released at a tile boundary; for a Buffer, Union or Intersection
// result, by the code that created it.
func (g *Geometry) Destroy() {
	g.g.Destroy()
}

// Intersects, Touches, Crosses, Contains, Disjoint, Equals, Within and
// Overlaps forward to the exact-geometry relation tests. For
// ST_INTERSECTS, ST_CONTAINS and ST_EQUALS, internal/predicate runs an
// envelope pre-filter before these; the other predicates call them
// directly.

func (g *Geometry) Intersects(other *Geometry) bool { return g.g.Intersects(other.g) }
func (g *Geometry) Touches(other *Geometry) bool    { return g.g.Touches(other.g) }
func (g *Geometry) Crosses(other *Geometry) bool    { return g.g.Crosses(other.g) }
func (g *Geometry) Contains(other *Geometry) bool   { return g.g.Contains(other.g) }
func (g *Geometry) Disjoint(other *Geometry) bool   { return g.g.Disjoint(other.g) }
func (g *Geometry) Equals(other *Geometry) bool     { return g.g.Equals(other.g) }
func (g *Geometry) Within(other *Geometry) bool     { return g.g.Within(other.g) }
func (g *Geometry) Overlaps(other *Geometry) bool   { return g.g.Overlaps(other.g) }

// Buffer expands the geometry outward by distance, producing a new,
// independently owned Geometry. Used by ST_DWITHIN for the non-point
// case; the caller is responsible for destroying the result.
func (g *Geometry) Buffer(distance float64) *Geometry {
	buffered := g.g.Buffer(distance, 8)
	b := buffered.Bounds()
	return &Geometry{
		g: buffered,
		envelope: Envelope{
			MinX: b.MinX,
			MinY: b.MinY,
			MaxX: b.MaxX,
			MaxY: b.MaxY,
		},
		isPoint: false,
	}
}

// Union returns a new Geometry covering both inputs; used for the
// ST_INTERSECTS statistics block. The caller owns the result. The
// returned handle is area-only: its envelope and isPoint are left
// zero-valued, since nothing currently reads them off a Union result.
func (g *Geometry) Union(other *Geometry) *Geometry {
	u := g.g.Union(other.g)
	return &Geometry{g: u}
}

// Intersection returns a new Geometry covering the overlap of both
// inputs; used for the ST_INTERSECTS statistics block. The caller owns
// the result. The returned handle is area-only, same caveat as Union.
func (g *Geometry) Intersection(other *Geometry) *Geometry {
	i := g.g.Intersection(other.g)
	return &Geometry{g: i}
}
