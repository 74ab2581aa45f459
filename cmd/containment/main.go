// Command containment is the secondary single-envelope filter: a thin
// consumer of the same geometry adapter the join kernel uses, sharing
// no bucketing or indexing logic with it. It reads a stream of
// tab-delimited lines, each carrying a geometry at a fixed field
// index, and passes through the lines whose geometry intersects a
// query window.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sixy6e/tilejoin/internal/geomx"
	"github.com/sixy6e/tilejoin/internal/telemetry"
)

func rectangleWKT(minX, minY, maxX, maxY float64) string {
	return fmt.Sprintf(
		"POLYGON((%g %g,%g %g,%g %g,%g %g,%g %g))",
		minX, minY,
		minX, maxY,
		maxX, maxY,
		maxX, minY,
		minX, minY,
	)
}

func windowWKT(c *cli.Context) (string, error) {
	if path := c.String("window-wkt"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading window file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return rectangleWKT(c.Float64("minx"), c.Float64("miny"), c.Float64("maxx"), c.Float64("maxy")), nil
}

func run(c *cli.Context) error {
	logger := telemetry.New(c.String("log-level"))
	geomIdx := c.Int("geom-idx")

	wkt, err := windowWKT(c)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx := geomx.NewContext()
	window, err := ctx.Parse(wkt)
	if err != nil {
		return fmt.Errorf("configuration error: parsing query window: %w", err)
	}
	defer window.Destroy()

	logger.Debug().Str("window", wkt).Int("geom_idx", geomIdx).Msg("containment window parsed")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		fields := strings.Split(line, "\t")
		if geomIdx < 0 || geomIdx >= len(fields) || fields[geomIdx] == "" {
			continue
		}

		g, err := ctx.Parse(fields[geomIdx])
		if err != nil {
			return fmt.Errorf("containment: malformed geometry at line %d: %w", lineNo, err)
		}

		matched := g.Envelope().Intersects(window.Envelope()) && g.Intersects(window)
		g.Destroy()
		if !matched {
			continue
		}

		if _, err := out.WriteString(line); err != nil {
			return fmt.Errorf("containment: writing output: %w", err)
		}
		if err := out.WriteByte('\n'); err != nil {
			return fmt.Errorf("containment: writing output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("containment: reading input: %w", err)
	}

	return out.Flush()
}

func main() {
	app := &cli.App{
		Name:  "containment",
		Usage: "filter a stream of tab-delimited geometries against a query window",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "geom-idx",
				Aliases:  []string{"g"},
				Required: true,
				Usage:    "zero-based field index of the geometry column",
			},
			&cli.Float64Flag{Name: "minx"},
			&cli.Float64Flag{Name: "miny"},
			&cli.Float64Flag{Name: "maxx"},
			&cli.Float64Flag{Name: "maxy"},
			&cli.StringFlag{
				Name:    "window-wkt",
				Aliases: []string{"w"},
				Usage:   "path to a file containing a WKT geometry to use as the query window instead of a rectangle",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
