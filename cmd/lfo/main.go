package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sixy6e/go-terra/lasio"
	"github.com/sixy6e/go-terra/lfo"
	"github.com/sixy6e/go-terra/raster"
	"github.com/sixy6e/go-terra/rasterio"
)

func resolvePath(wd, path string) string {
	if wd == "" || path == "" {
		return path
	}
	if filepath.Dir(path) != "." {
		return path
	}
	return filepath.Join(wd, path)
}

func runLFO(inputURI, outputURI string, resolution float64, palette string, workers int, verbose bool) error {
	start := time.Now()

	if verbose {
		log.Println("Opening LAS point source:", inputURI)
	}
	src, err := lasio.Open(inputURI)
	if err != nil {
		return errors.Join(err, errors.New("Error opening LAS point source"))
	}
	defer src.Close()

	minX, minY, maxX, maxY := src.Bounds()
	rows := ceilDiv(maxY-minY, resolution)
	cols := ceilDiv(maxX-minX, resolution)

	cfg := raster.RasterConfig{
		North: maxY, South: maxY - float64(rows)*resolution,
		East: minX + float64(cols)*resolution, West: minX,
		ResolutionX: resolution, ResolutionY: resolution,
		Minimum: 0, Maximum: 0,
		NoData:     lfo.Nodata,
		DataType:   "float64",
		Palette:    palette,
		DisplayMin: 0, DisplayMax: 0,
	}

	if verbose {
		log.Println("Creating output raster:", outputURI)
	}
	output, err := rasterio.Create(outputURI, cfg)
	if err != nil {
		return errors.Join(err, errors.New("Error creating output raster"))
	}
	defer output.Close()

	output.SetConfig(cfg)
	output.AddMetadata("tool=lfo")
	output.AddMetadata("input=" + inputURI)
	output.AddMetadata("resolution=" + strconv.FormatFloat(resolution, 'f', -1, 64))

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	progress := func(stage string, percent int) {
		if verbose {
			log.Printf("LFO %s: %d%%\n", stage, percent)
		}
	}

	if verbose {
		log.Println("Running lidar flightline overlap")
	}
	err = lfo.Run(src, output, lfo.Params{
		Resolution: resolution,
		Palette:    palette,
		Workers:    workers,
		Progress:   progress,
	})
	if err != nil {
		return errors.Join(err, errors.New("Error running lidar flightline overlap"))
	}

	output.AddMetadata("elapsed=" + time.Since(start).String())

	if verbose {
		log.Println("Finished LFO:", outputURI, "in", time.Since(start))
	}

	return nil
}

func ceilDiv(extent, res float64) int {
	n := extent / res
	i := int(n)
	if float64(i) < n {
		i++
	}
	return i
}

func main() {
	app := &cli.App{
		Name:    "lfo",
		Usage:   "LiDAR Flightline Overlap raster",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Input LAS path"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output raster path"},
			&cli.StringFlag{Name: "wd", Usage: "Working directory; prepended to any path lacking a separator"},
			&cli.Float64Flag{Name: "resolution", Value: 1.0, Usage: "Output grid resolution"},
			&cli.StringFlag{Name: "palette", Value: "default", Usage: "Output display palette"},
			&cli.IntFlag{Name: "workers", Usage: "Row-block worker count (default: host parallelism)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable progress logs"},
		},
		Action: func(cCtx *cli.Context) error {
			wd := cCtx.String("wd")
			input := resolvePath(wd, cCtx.String("input"))
			output := resolvePath(wd, cCtx.String("output"))
			if input == "" || output == "" {
				return errors.New("lfo: --input and --output are required")
			}
			return runLFO(input, output, cCtx.Float64("resolution"), cCtx.String("palette"), cCtx.Int("workers"), cCtx.Bool("verbose"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
