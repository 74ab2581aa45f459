// Package join is the tile-join driver: it reads tab-delimited records
// from a stream, detects tile boundaries, accumulates per-tile buckets,
// and triggers the per-tile spatial join (§4.1, §4.3 of the engine
// design) when a tile is complete.
package join

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/sixy6e/tilejoin/internal/bucket"
	"github.com/sixy6e/tilejoin/internal/config"
	"github.com/sixy6e/tilejoin/internal/geomx"
	"github.com/sixy6e/tilejoin/internal/predicate"
	"github.com/sixy6e/tilejoin/internal/project"
	"github.com/sixy6e/tilejoin/internal/record"
	"github.com/sixy6e/tilejoin/internal/spatialindex"
)

// FatalError marks a condition that aborts the run: a malformed record
// or a tile whose index failed to build. The remainder of the stream
// is undefined once this is returned.
type FatalError struct {
	TileID string
	Line   int
	Err    error
}

func (e *FatalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("join: fatal error at tile %q, line %d: %v", e.TileID, e.Line, e.Err)
	}
	return fmt.Sprintf("join: fatal error at tile %q: %v", e.TileID, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Stats summarizes one run of the driver, for the caller's exit-level
// diagnostics.
type Stats struct {
	Tiles int
	Pairs int
}

// Driver owns the geometry context for the run and the frozen
// configuration it joins against. No other mutable state persists
// between tiles.
type Driver struct {
	Op     *config.Operator
	Geom   *geomx.Context
	Logger zerolog.Logger
}

// NewDriver builds a driver with a fresh geometry context.
func NewDriver(op *config.Operator, logger zerolog.Logger) *Driver {
	return &Driver{Op: op, Geom: geomx.NewContext(), Logger: logger}
}

// Run reads r to completion, emitting qualifying pairs to w. It
// returns the number of tiles and pairs processed. Any error returned
// is fatal; the caller must treat the remainder of w as undefined.
func (d *Driver) Run(r io.Reader, w io.Writer) (Stats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	out := bufio.NewWriter(w)
	defer out.Flush()

	store := bucket.New()

	var (
		prevTileID string
		stats      Stats
		lineNo     int
	)

	for scanner.Scan() {
		lineNo++
		rec, err := record.Parse(scanner.Text())
		if err != nil {
			return stats, &FatalError{TileID: prevTileID, Line: lineNo, Err: err}
		}

		idx := d.geometryIndex(rec.Side)
		wkt, present := rec.Geometry(idx)
		if !present {
			continue
		}

		geom, err := d.Geom.Parse(wkt)
		if err != nil {
			return stats, &FatalError{TileID: rec.TileID, Line: lineNo, Err: err}
		}

		if prevTileID != "" && prevTileID != rec.TileID {
			n, err := d.joinTile(store, prevTileID, out)
			if err != nil {
				return stats, err
			}
			stats.Pairs += n
			stats.Tiles++
			store.Clear()
		}

		store.Append(int(rec.Side), geom, d.project(rec))
		prevTileID = rec.TileID
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("join: reading input: %w", err)
	}

	if prevTileID != "" {
		n, err := d.joinTile(store, prevTileID, out)
		if err != nil {
			return stats, err
		}
		stats.Pairs += n
		stats.Tiles++
		store.Clear()
	}

	if err := out.Flush(); err != nil {
		return stats, fmt.Errorf("join: flushing output: %w", err)
	}

	return stats, nil
}

// geometryIndex picks shape_idx_1 or shape_idx_2 depending on which
// side the record belongs to.
func (d *Driver) geometryIndex(side record.Side) int {
	if side == record.Side1 {
		return d.Op.ShapeIdx1()
	}
	return d.Op.ShapeIdx2()
}

// project builds the raw output tuple for a record using the
// projection spec for its side.
func (d *Driver) project(rec record.Record) string {
	if rec.Side == record.Side1 {
		return project.Project(rec.Fields, d.Op.Proj1())
	}
	return project.Project(rec.Fields, d.Op.Proj2())
}

// joinTile runs the per-tile join described in §4.3: build an R-tree
// over side 2 (or side 1, for a self-join), probe with side 1, refine
// candidates with the predicate evaluator, and emit qualifying pairs.
func (d *Driver) joinTile(store *bucket.Store, tileID string, w *bufio.Writer) (int, error) {
	selfJoin := d.Op.JoinCardinality() == 1
	const idx1 = 1
	idx2 := 2
	if selfJoin {
		idx2 = 1
	}

	len1 := store.Len(idx1)
	len2 := store.Len(idx2)
	if len1 == 0 || len2 == 0 {
		return 0, nil
	}

	index, err := spatialindex.Build(store.Envelopes(idx2))
	if err != nil {
		return 0, &FatalError{TileID: tileID, Err: fmt.Errorf("building spatial index: %w", err)}
	}
	defer index.Close()

	kind := d.Op.Predicate()
	distance := d.Op.ExpansionDistance()
	appendStats := len(d.Op.AppendStats()) > 0
	appendTileID := d.Op.AppendTileID()

	pairs := 0
	for i := 0; i < len1; i++ {
		g1 := store.Geom(idx1, i)
		queryEnv := g1.Envelope()
		if kind == predicate.DWithin {
			queryEnv = queryEnv.Expand(distance)
		}

		candidates, err := index.Query(queryEnv)
		if err != nil {
			return pairs, &FatalError{TileID: tileID, Err: fmt.Errorf("querying spatial index: %w", err)}
		}

		for _, j := range candidates {
			if selfJoin && j == i {
				continue
			}

			g2 := store.Geom(idx2, j)
			result, err := predicate.Evaluate(kind, g1, g2, distance)
			if err != nil {
				d.Logger.Warn().Str("tile_id", tileID).Err(err).Msg("predicate evaluator received an unknown predicate")
				continue
			}
			if !result.Matched {
				continue
			}

			line := project.Emit(store.Raw(idx1, i), store.Raw(idx2, j), selfJoin, result.Stats, appendStats, tileID, appendTileID)
			if _, err := w.WriteString(line); err != nil {
				return pairs, fmt.Errorf("join: writing output: %w", err)
			}
			if err := w.WriteByte('\n'); err != nil {
				return pairs, fmt.Errorf("join: writing output: %w", err)
			}
			pairs++
		}
	}

	d.Logger.Debug().
		Str("tile_id", tileID).
		Int("side1", len1).
		Int("side2", len2).
		Int("pairs", pairs).
		Msg("tile processed")

	return pairs, nil
}
