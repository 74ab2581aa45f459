// Package config parses the command-line options into a frozen query
// operator record. Parse is the single validation step: every failure
// path here must be reported before any input line is read.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/sixy6e/tilejoin/internal/predicate"
	"github.com/sixy6e/tilejoin/internal/project"
)

// Stat is one of the statistics that can be appended to an output pair.
type Stat int

const (
	AreaOne Stat = iota
	AreaTwo
	UnionArea
	IntersectArea
	Jaccard
	Dice
)

var statTokens = map[string]Stat{
	"a1":   AreaOne,
	"a2":   AreaTwo,
	"uni":  UnionArea,
	"int":  IntersectArea,
	"jac":  Jaccard,
	"dice": Dice,
}

// StatSet is a deduplicated, sorted set of requested statistics. Its
// only effect on output is gating the fixed statistics column block:
// the columns themselves never vary with which subset was requested.
type StatSet []Stat

// Options are the raw, unvalidated values read from the command line.
// ShapeIdx1 and ShapeIdx2 are nil when the corresponding flag was not
// supplied, since their presence (not their value) increments the
// join cardinality.
type Options struct {
	Predicate string
	ShapeIdx1 *int
	ShapeIdx2 *int
	Distance  float64
	Fields    string
	Stats     string
	TileID    string
}

// Operator is the immutable, frozen configuration threaded through the
// driver and the predicate evaluator. It is never a package-level
// variable; Parse is the only constructor.
type Operator struct {
	predicate         predicate.Kind
	shapeIdx1         int
	shapeIdx2         int
	joinCardinality   int
	expansionDistance float64
	proj1             project.Spec
	proj2             project.Spec
	appendStats       StatSet
	appendTileID      bool
}

func (o *Operator) Predicate() predicate.Kind  { return o.predicate }
func (o *Operator) ShapeIdx1() int             { return o.shapeIdx1 }
func (o *Operator) ShapeIdx2() int             { return o.shapeIdx2 }
func (o *Operator) JoinCardinality() int       { return o.joinCardinality }
func (o *Operator) ExpansionDistance() float64 { return o.expansionDistance }
func (o *Operator) Proj1() project.Spec        { return o.proj1 }
func (o *Operator) Proj2() project.Spec        { return o.proj2 }
func (o *Operator) AppendStats() StatSet       { return o.appendStats }
func (o *Operator) AppendTileID() bool         { return o.appendTileID }

// Parse validates opts and builds the frozen Operator. All independent
// problems are collected and returned together via errors.Join so a
// caller sees every configuration mistake in one report.
func Parse(opts Options) (*Operator, error) {
	var errs []error

	kind, err := predicate.ParseKind(strings.ToLower(strings.TrimSpace(opts.Predicate)))
	if err != nil {
		errs = append(errs, err)
	}

	op := &Operator{predicate: kind}

	if opts.ShapeIdx1 != nil {
		op.shapeIdx1 = *opts.ShapeIdx1 + 1
		op.joinCardinality++
	}
	if opts.ShapeIdx2 != nil {
		op.shapeIdx2 = *opts.ShapeIdx2 + 1
		op.joinCardinality++
	}
	if op.joinCardinality == 0 {
		errs = append(errs, errors.New("config: at least one of --shpidx1/--shpidx2 is required"))
	}

	op.expansionDistance = opts.Distance
	if kind == predicate.DWithin && op.expansionDistance <= 0 {
		errs = append(errs, errors.New("config: --distance must be strictly positive for st_dwithin"))
	}

	proj1, proj2, err := parseFields(opts.Fields)
	if err != nil {
		errs = append(errs, err)
	}
	op.proj1, op.proj2 = proj1, proj2

	op.appendStats = parseStats(opts.Stats)
	op.appendTileID = strings.TrimSpace(opts.TileID) == "true"

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return op, nil
}

// parseFields splits "a,b,c:d,e" into two comma-lists, each a list of
// user-facing field indices. Every parsed index is stored with
// project.FieldOffset added, so index 0 refers to the first field
// after the tile id and side id, and index 1 to the second.
func parseFields(spec string) (project.Spec, project.Spec, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil, nil
	}

	sides := strings.SplitN(spec, ":", 2)

	proj1, err := parseFieldList(sides[0])
	if err != nil {
		return nil, nil, fmt.Errorf("config: parsing side 1 of --fields: %w", err)
	}

	var proj2 project.Spec
	if len(sides) > 1 {
		proj2, err = parseFieldList(sides[1])
		if err != nil {
			return nil, nil, fmt.Errorf("config: parsing side 2 of --fields: %w", err)
		}
	}

	return proj1, proj2, nil
}

func parseFieldList(s string) (project.Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	tokens := strings.Split(s, ",")
	spec := make(project.Spec, 0, len(tokens))
	for _, t := range tokens {
		v, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("field index %q is not an integer: %w", t, err)
		}
		spec = append(spec, v+project.FieldOffset)
	}
	return spec, nil
}

// parseStats maps the comma-separated token list onto the statistics
// set, coalescing duplicates and sorting the result. Unknown tokens
// are silently ignored, matching the release-build behavior of the
// original engine.
func parseStats(arg string) StatSet {
	if strings.TrimSpace(arg) == "" {
		return nil
	}
	tokens := strings.Split(arg, ",")
	var stats []Stat
	for _, t := range tokens {
		if s, ok := statTokens[strings.TrimSpace(t)]; ok {
			stats = append(stats, s)
		}
	}
	stats = lo.Uniq(stats)
	sort.Slice(stats, func(i, j int) bool { return stats[i] < stats[j] })
	return stats
}
