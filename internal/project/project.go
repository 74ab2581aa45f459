// Package project builds the output tuple for one side of a record and
// formats the final emitted line for a qualifying pair: raw tuples,
// optional statistics block, optional tile id.
package project

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/sixy6e/tilejoin/internal/predicate"
)

// Sep is the unit separator joining the two sides' raw tuples, ASCII
// 0x1E per platform convention.
const Sep = "\x1e"

// Tab separates statistics and the trailing tile id.
const Tab = "\t"

// FieldOffset is added to a user-facing projection index, so that
// user-visible field n selects fields[n+2]: field 0 is the first field
// after the tile id and side id leaders, field 1 the second.
const FieldOffset = 2

// Spec is an ordered list of internal (already offset) field indices.
// An empty Spec means "all fields except tile id and side id."
type Spec []int

// Project builds the raw tuple for one side of a record.
//
// If spec is empty: fields[2], fields[3], ... tab-separated, dropping
// the leading tile id and side id.
//
// Otherwise: fields[p] for each p in spec, in order, skipping any p
// that is out of range for this record.
func Project(fields []string, spec Spec) string {
	if len(spec) == 0 {
		if len(fields) <= FieldOffset {
			return ""
		}
		return strings.Join(fields[FieldOffset:], Tab)
	}

	selected := lo.Filter(spec, func(p int, _ int) bool {
		return p < len(fields)
	})
	parts := lo.Map(selected, func(p int, _ int) string {
		return fields[p]
	})
	return strings.Join(parts, Tab)
}

// Emit builds the final output line for one qualifying pair.
//
// selfJoin == true emits `raw1 SEP raw1Other` with no statistics or
// tile id, matching the self-join projection in the original engine
// (the pair is drawn from two positions of the single side-1 bucket).
// selfJoin == false emits `raw1 SEP raw2 [stats] [tile id]`.
func Emit(raw1, raw2 string, selfJoin bool, stats *predicate.Stats, appendStats bool, tileID string, appendTileID bool) string {
	var b strings.Builder
	b.WriteString(raw1)
	b.WriteString(Sep)
	b.WriteString(raw2)

	if selfJoin {
		return b.String()
	}

	if appendStats && stats != nil {
		b.WriteString(Sep)
		b.WriteString(formatFloat(stats.Area1))
		b.WriteString(Tab)
		b.WriteString(formatFloat(stats.Area2))
		b.WriteString(Tab)
		b.WriteString(formatFloat(stats.UnionArea))
		b.WriteString(Tab)
		b.WriteString(formatFloat(stats.IntersectArea))
		b.WriteString(Tab)
		b.WriteString(formatFloat(stats.IntersectArea / stats.UnionArea))
	}

	if appendTileID {
		b.WriteString(Tab)
		b.WriteString(tileID)
	}

	return b.String()
}

// formatFloat matches the platform's default double-precision text
// representation closely enough for downstream consumers: the
// shortest decimal that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
