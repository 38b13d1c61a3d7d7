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

	"github.com/sixy6e/go-terra/epf"
	"github.com/sixy6e/go-terra/raster"
	"github.com/sixy6e/go-terra/rasterio"
)

// resolvePath prepends wd to path if path has no directory separator of its
// own, matching the working-directory convention described for the tool.
func resolvePath(wd, path string) string {
	if wd == "" || path == "" {
		return path
	}
	if filepath.Dir(path) != "." {
		return path
	}
	return filepath.Join(wd, path)
}

func runEPF(inputURI, outputURI string, filter, filterX, filterY, workers int, verbose bool) error {
	kernelX, kernelY := filterX, filterY
	if filter > 0 {
		kernelX, kernelY = filter, filter
	}
	kernelX = epf.NormalizeKernel(kernelX)
	kernelY = epf.NormalizeKernel(kernelY)

	start := time.Now()

	if verbose {
		log.Println("Opening input raster:", inputURI)
	}
	input, err := rasterio.Open(inputURI)
	if err != nil {
		return errors.Join(err, errors.New("Error opening input raster"))
	}
	defer input.Close()

	north, south, east, west := input.Bounds()
	resX, resY := input.Resolution()

	cfg := raster.RasterConfig{
		North: north, South: south, East: east, West: west,
		ResolutionX: resX, ResolutionY: resY,
		Minimum: 0, Maximum: 100,
		NoData:     -1,
		DataType:   "float64",
		Palette:    "diverging",
		DisplayMin: 0, DisplayMax: 100,
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
	output.AddMetadata("tool=epf")
	output.AddMetadata("input=" + inputURI)
	output.AddMetadata("filterx=" + strconv.Itoa(kernelX))
	output.AddMetadata("filtery=" + strconv.Itoa(kernelY))

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	progress := func(stage string, percent int) {
		if verbose {
			log.Printf("EPF %s: %d%%\n", stage, percent)
		}
	}

	if verbose {
		log.Println("Running elevation-percentile filter")
	}
	err = epf.Run(input, output, epf.Params{
		FilterX:  kernelX,
		FilterY:  kernelY,
		Workers:  workers,
		Progress: progress,
	})
	if err != nil {
		return errors.Join(err, errors.New("Error running elevation-percentile filter"))
	}

	output.AddMetadata("elapsed=" + time.Since(start).String())

	if verbose {
		log.Println("Finished EPF:", outputURI, "in", time.Since(start))
	}

	return nil
}

func main() {
	app := &cli.App{
		Name:    "epf",
		Usage:   "Elevation-Percentile Filter over a digital elevation model",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Input raster path"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output raster path"},
			&cli.StringFlag{Name: "wd", Usage: "Working directory; prepended to any path lacking a separator"},
			&cli.IntFlag{Name: "filter", Usage: "Odd kernel size >= 3 for both axes"},
			&cli.IntFlag{Name: "filterx", Value: 11, Usage: "Kernel width; ignored if --filter set"},
			&cli.IntFlag{Name: "filtery", Value: 11, Usage: "Kernel height; ignored if --filter set"},
			&cli.IntFlag{Name: "workers", Usage: "Row-block worker count (default: host parallelism)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable progress logs"},
		},
		Action: func(cCtx *cli.Context) error {
			wd := cCtx.String("wd")
			input := resolvePath(wd, cCtx.String("input"))
			output := resolvePath(wd, cCtx.String("output"))
			if input == "" || output == "" {
				return errors.New("epf: --input and --output are required")
			}
			return runEPF(input, output, cCtx.Int("filter"), cCtx.Int("filterx"), cCtx.Int("filtery"), cCtx.Int("workers"), cCtx.Bool("verbose"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
