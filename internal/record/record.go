// Package record splits a single tab-delimited input line into the
// fields the tile-join driver and the projection emitter need: the
// tile id, the join-side id, and the remaining attribute fields.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Side identifies which dataset a record belongs to.
type Side int

const (
	Side1 Side = 1
	Side2 Side = 2
)

// Record is one parsed input line.
type Record struct {
	TileID string
	Side   Side
	// Fields holds every tab-separated field of the line, including
	// the leading tile id (field 0) and side id (field 1), so that
	// projection can index into it directly with the offsets the
	// configuration stores.
	Fields []string
}

// Parse splits a line on tab and extracts the tile id and side id. It
// returns an error if the side id field is missing or is not 1 or 2;
// the driver treats that as a fatal record error.
func Parse(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return Record{}, fmt.Errorf("record: line has %d fields, need at least 2 (tile id, side id)", len(fields))
	}
	sid, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("record: side id field %q is not an integer: %w", fields[1], err)
	}
	if sid != int(Side1) && sid != int(Side2) {
		return Record{}, fmt.Errorf("record: wrong side id: %d", sid)
	}
	return Record{
		TileID: fields[0],
		Side:   Side(sid),
		Fields: fields,
	}, nil
}

// Geometry returns the raw text of the field at idx, and whether it is
// present and non-empty. idx is the internal (already offset) field
// position, as stored in the configuration operator.
func (r Record) Geometry(idx int) (string, bool) {
	if idx < 0 || idx >= len(r.Fields) {
		return "", false
	}
	g := r.Fields[idx]
	return g, g != ""
}
