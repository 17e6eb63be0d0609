package main

import (
	"fmt"
	"log"
	"os"

	"github.com/tkrajina/gpxgo/gpx"
	"github.com/urfave/cli/v2"

	"github.com/dave/gpxsnap/render"
	"github.com/dave/gpxsnap/snap"
)

const VERSION = "v0.1.0"

func main() {
	if err := Main(); err != nil {
		log.Fatalf("%v", err)
	}
}

func Main() error {
	log.SetFlags(0)
	return newApp().Run(os.Args)
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "gpxsnap",
		Usage:   "snap waypoints onto the nearest point of a gpx track",
		Version: VERSION,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input gpx file"},
			&cli.Float64Flag{Name: "dist", Aliases: []string{"d"}, Value: 100, Usage: "maximum snap distance in meters"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "add", Usage: "add: insert track points at the waypoint; move: relocate the nearest track point"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "output file; pass an empty value to derive a name from the input file and distance; omit the flag entirely to print to stdout"},
			&cli.BoolFlag{Name: "overwrite", Usage: "replace the output file if it exists"},
			&cli.BoolFlag{Name: "ele", Usage: "look up srtm elevations for track points that lack one"},
			&cli.StringFlag{Name: "preview", Usage: "render a png preview of the result to this path"},
			&cli.StringFlag{Name: "config", Value: configPath, Usage: "config file with defaults for these flags"},
			&cli.BoolFlag{Name: "verbose", Usage: "log progress to stderr"},
			&cli.BoolFlag{Name: "debug", Usage: "log per-segment detail to stderr"},
		},
		Action:   runSnap,
		Commands: []*cli.Command{fetchCommand()},
	}
}

func runSnap(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"), c.IsSet("config"))
	if err != nil {
		return err
	}

	LOG = c.Bool("verbose") || c.Bool("debug") || cfg.Verbose
	DEBUG = c.Bool("debug")

	// Flags beat the config file, which beats the built-in defaults.
	dist := c.Float64("dist")
	if !c.IsSet("dist") && cfg.Dist > 0 {
		dist = cfg.Dist
	}
	modeName := c.String("mode")
	if !c.IsSet("mode") && cfg.Mode != "" {
		modeName = cfg.Mode
	}
	mode, err := snap.ParseMode(modeName)
	if err != nil {
		return err
	}

	input := c.String("input")
	if input == "" {
		return fmt.Errorf("no input file given (use -i)")
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", input, err)
	}

	if len(doc.Tracks) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no tracks found in input file.")
		return nil
	}
	if len(doc.Waypoints) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no waypoints found in input file.")
		return nil
	}

	logf("loaded %q: %d tracks, %d waypoints\n", input, len(doc.Tracks), len(doc.Waypoints))
	for ti := range doc.Tracks {
		for si, segment := range doc.Tracks[ti].Segments {
			debugf("track %d segment %d: %d points, %.1fkm\n", ti, si, len(segment.Points), segment.Length2D()/1000)
		}
	}

	stats := snap.Snap(doc, snap.Options{Mode: mode, MaxDistance: dist})
	logf("matched %d waypoints: %d points inserted, %d moved\n", stats.Matched, stats.Inserted, stats.Moved)

	if c.Bool("ele") || cfg.Ele {
		if err := fillElevations(doc); err != nil {
			return fmt.Errorf("filling elevations: %w", err)
		}
	}

	xml, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return fmt.Errorf("serializing gpx: %w", err)
	}

	if !c.IsSet("file") {
		if _, err := os.Stdout.Write(xml); err != nil {
			return err
		}
	} else {
		outfile := c.String("file")
		if outfile == "" {
			outfile = deriveOutputPath(input, dist)
		}
		if err := writeOutput(outfile, xml, c.Bool("overwrite")); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", outfile)
	}

	if preview := c.String("preview"); preview != "" {
		if err := render.Preview(doc, preview); err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
		logf("preview written to %s\n", preview)
	}

	return nil
}
