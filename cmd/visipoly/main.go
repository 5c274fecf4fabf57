// Command visipoly computes one visibility polygon headlessly and prints it
// as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ttacon/chalk"

	"chosenoffset.com/sightline/internal/config"
	"chosenoffset.com/sightline/internal/core/shadows"
	"chosenoffset.com/sightline/internal/scenescanner"
	"chosenoffset.com/sightline/internal/spatial"
	"chosenoffset.com/sightline/internal/world/maploader"
)

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type output struct {
	Scene    string      `json:"scene"`
	Strategy string      `json:"strategy"`
	Observer pointJSON   `json:"observer"`
	Points   []pointJSON `json:"points"`
	Misses   int         `json:"misses"`
	Area     float64     `json:"area"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, chalk.Red.Color("visipoly: "+err.Error()))
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("visipoly", flag.ContinueOnError)
	scenePath := fs.String("scene", "data/scenes/demo.json", "scene file")
	configPath := fs.String("config", "", "optional config file for the visibility section")
	x := fs.String("x", "", "observer x (default: scene observer)")
	y := fs.String("y", "", "observer y (default: scene observer)")
	strategy := fs.String("strategy", "", "raycast or sweep")
	radius := fs.Float64("radius", 0, "view radius; rays that hit nothing end there")
	useIndex := fs.Bool("index", false, "cull segments with the R-tree (needs -radius)")
	exact := fs.Bool("exact", false, "compare with zero tolerance")
	list := fs.String("list", "", "list the scene files in a directory and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list != "" {
		scenes, err := scenescanner.ScanScenes(*list)
		if err != nil {
			return err
		}
		for _, s := range scenes {
			fmt.Fprintf(stdout, "%s\t%s\n", s.Name, s.Path)
		}
		return nil
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *strategy != "" {
		cfg.Visibility.Strategy = *strategy
	}
	if *radius < 0 {
		return errors.Errorf("-radius must not be negative, got %g", *radius)
	}
	if *radius > 0 {
		cfg.Visibility.MaxDistance = *radius
		cfg.Visibility.FillMisses = true
	}
	cfg.Visibility.UseIndex = cfg.Visibility.UseIndex || *useIndex
	cfg.Visibility.ExactTolerance = cfg.Visibility.ExactTolerance || *exact
	if err := cfg.Validate(); err != nil {
		return err
	}

	sceneMap, err := maploader.LoadMap(*scenePath)
	if err != nil {
		return err
	}

	observer := sceneMap.ObserverSpawn()
	if observer.X, err = coordinate(*x, observer.X); err != nil {
		return errors.Wrap(err, "-x")
	}
	if observer.Y, err = coordinate(*y, observer.Y); err != nil {
		return errors.Wrap(err, "-y")
	}

	opts, err := cfg.BuilderOptions()
	if err != nil {
		return err
	}
	if cfg.Visibility.UseIndex && opts.MaxDistance > 0 {
		ix, err := spatial.NewIndex(sceneMap.Scene.Segments)
		if err != nil {
			return err
		}
		opts.Culler = ix
	}

	poly, err := shadows.NewBuilder(opts).Build(sceneMap.Scene, observer)
	if err != nil {
		return err
	}

	out := output{
		Scene:    sceneMap.Data.Name,
		Strategy: opts.Strategy.String(),
		Observer: pointJSON{observer.X, observer.Y},
		Points:   make([]pointJSON, 0, len(poly.Points)),
		Misses:   poly.Misses,
		Area:     poly.Area(),
	}
	for _, p := range poly.Points {
		out.Points = append(out.Points, pointJSON{p.X, p.Y})
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// coordinate parses a flag value, falling back to def when it is empty.
func coordinate(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}
