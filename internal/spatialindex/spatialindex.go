// Package spatialindex adapts github.com/dhconnelly/rtreego, the
// external R-tree library this module never re-implements. It bulk
// loads a tree over one side of a tile's bucket and answers envelope
// range queries with the dense integer ids the bucket store uses.
package spatialindex

import (
	"fmt"

	"github.com/dhconnelly/rtreego"

	"github.com/sixy6e/tilejoin/internal/geomx"
)

// minExtent guards against rtreego rejecting a degenerate (zero width
// or height) rectangle, which happens for a bucket holding only POINT
// geometries. The index adapter is the only place this nudge happens;
// it never affects the exact-geometry refinement stage.
const minExtent = 1e-9

// entry is the Spatial implementation rtreego bulk-loads and returns
// from range queries.
type entry struct {
	id   int
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Index is a bulk-loaded R-tree over dense integer ids 0..n-1.
type Index struct {
	tree *rtreego.Rtree
}

func toRect(env geomx.Envelope) (rtreego.Rect, error) {
	width := env.MaxX - env.MinX
	height := env.MaxY - env.MinY
	if width < minExtent {
		width = minExtent
	}
	if height < minExtent {
		height = minExtent
	}
	rect, err := rtreego.NewRect(rtreego.Point{env.MinX, env.MinY}, []float64{width, height})
	if err != nil {
		return rtreego.Rect{}, fmt.Errorf("spatialindex: building rect: %w", err)
	}
	return rect, nil
}

// Build bulk loads an R-tree over the given envelopes, keyed by their
// slice position. A build failure is fatal for the tile that triggered
// it, per the engine's error taxonomy.
func Build(envelopes []geomx.Envelope) (*Index, error) {
	entries := make([]rtreego.Spatial, len(envelopes))
	for i, env := range envelopes {
		rect, err := toRect(env)
		if err != nil {
			return nil, fmt.Errorf("spatialindex: build failed at id %d: %w", i, err)
		}
		entries[i] = &entry{id: i, rect: rect}
	}
	tree := rtreego.NewTree(2, 25, 50, entries...)
	return &Index{tree: tree}, nil
}

// Query returns the dense ids of every entry whose envelope intersects
// the given range, in whatever order the R-tree yields them. The
// engine treats duplicates conservatively rather than assuming
// uniqueness.
func (idx *Index) Query(env geomx.Envelope) ([]int, error) {
	rect, err := toRect(env)
	if err != nil {
		return nil, err
	}
	results := idx.tree.SearchIntersect(rect)
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.(*entry).id
	}
	return ids, nil
}

// Close releases the index. The R-tree itself holds no external
// resources, but Close keeps the adapter's lifetime explicit and
// symmetric with the geometry adapter's Destroy.
func (idx *Index) Close() {
	idx.tree = nil
}
