// Command tilejoin is the per-tile spatial-join kernel: it reads
// tab-delimited records from stdin, grouped into tiles by an upstream
// partitioner, and emits qualifying pairs under a chosen spatial
// predicate to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sixy6e/tilejoin/internal/config"
	"github.com/sixy6e/tilejoin/internal/join"
	"github.com/sixy6e/tilejoin/internal/telemetry"
)

func buildOptions(c *cli.Context) config.Options {
	opts := config.Options{
		Predicate: c.String("predicate"),
		Distance:  c.Float64("distance"),
		Fields:    c.String("fields"),
		Stats:     c.String("stats"),
		TileID:    c.String("tileid"),
	}
	if c.IsSet("shpidx1") {
		v := c.Int("shpidx1")
		opts.ShapeIdx1 = &v
	}
	if c.IsSet("shpidx2") {
		v := c.Int("shpidx2")
		opts.ShapeIdx2 = &v
	}
	return opts
}

func run(c *cli.Context) error {
	logger := telemetry.New(c.String("log-level"))

	op, err := config.Parse(buildOptions(c))
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	driver := join.NewDriver(op, logger)
	stats, err := driver.Run(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	logger.Info().Int("tiles", stats.Tiles).Int("pairs", stats.Pairs).Msg("run complete")
	return nil
}

func main() {
	app := &cli.App{
		Name:  "tilejoin",
		Usage: "per-tile spatial join over a stream of tab-delimited records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "predicate",
				Aliases:  []string{"p"},
				Usage:    "spatial join predicate: st_intersects, st_touches, st_crosses, st_contains, st_adjacent, st_disjoint, st_equals, st_dwithin, st_within, st_overlaps",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "shpidx1",
				Aliases: []string{"i"},
				Usage:   "geometry field index (1-based, after tile id and side id) for the first dataset",
			},
			&cli.IntFlag{
				Name:    "shpidx2",
				Aliases: []string{"j"},
				Usage:   "geometry field index (1-based, after tile id and side id) for the second dataset",
			},
			&cli.Float64Flag{
				Name:    "distance",
				Aliases: []string{"d"},
				Usage:   "expansion distance, required and strictly positive for st_dwithin",
			},
			&cli.StringFlag{
				Name:    "fields",
				Aliases: []string{"f"},
				Usage:   "output field projection: \"1,3,5:1,2,9\"; empty side means all fields",
			},
			&cli.StringFlag{
				Name:    "stats",
				Aliases: []string{"s"},
				Usage:   "comma list over a1,a2,uni,int,jac,dice to append geometric statistics",
			},
			&cli.StringFlag{
				Name:    "tileid",
				Aliases: []string{"t"},
				Usage:   "\"true\" appends the tile id as the last output column",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "trace, debug, info, warn, error",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
