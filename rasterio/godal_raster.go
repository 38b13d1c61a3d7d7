// Package rasterio is the concrete raster.RasterIO adapter backed by GDAL,
// via godal. It is the only package in this module that links against GDAL;
// the EPF and LFO cores never import it directly, they only ever see the
// raster.RasterIO interface.
package rasterio

import (
	"errors"
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/sixy6e/go-terra/raster"
)

var ErrBandCount = errors.New("rasterio: dataset does not have exactly one band")
var ErrNotOpen = errors.New("rasterio: dataset is not open")

func init() {
	godal.RegisterAll()
}

// GDALRaster reads an existing single-band raster, or creates a new one for
// writing, through a GDAL dataset. Reads are served from a full in-memory
// copy of the band (dense rasters of the sizes EPF/LFO operate on fit
// comfortably in memory, matching the teacher's in-memory TileDB query
// buffers); writes go straight to the underlying dataset row by row.
type GDALRaster struct {
	ds       *godal.Dataset
	rows     int
	cols     int
	nodata   float64
	minimum  float64
	maximum  float64
	resX     float64
	resY     float64
	north    float64
	west     float64
	data     []float64 // band cache for Get; filled by Open, or on first Get
	loaded   bool
}

// Open opens path for reading. The returned GDALRaster must have exactly one
// raster band. The band is read into memory immediately, and ValueRange
// reports the minimum and maximum of its non-nodata cells.
func Open(path string) (*GDALRaster, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rasterio: open %s: %w", path, err)
	}
	bands := ds.Bands()
	if len(bands) != 1 {
		ds.Close()
		return nil, ErrBandCount
	}

	structure := bands[0].Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		ds.Close()
		return nil, fmt.Errorf("rasterio: geotransform: %w", err)
	}

	nodata, _ := bands[0].NoData()

	g := &GDALRaster{
		ds:     ds,
		rows:   structure.SizeY,
		cols:   structure.SizeX,
		nodata: nodata,
		resX:   gt[1],
		resY:   -gt[5],
		north:  gt[3],
		west:   gt[0],
	}
	if err := g.load(); err != nil {
		ds.Close()
		return nil, fmt.Errorf("rasterio: read band: %w", err)
	}
	g.minimum, g.maximum = math.Inf(1), math.Inf(-1)
	for _, v := range g.data {
		if v != nodata {
			g.minimum = math.Min(g.minimum, v)
			g.maximum = math.Max(g.maximum, v)
		}
	}
	return g, nil
}

// Create creates a new single-band float64 raster at path, georeferenced
// from cfg, ready to receive rows via SetRow.
func Create(path string, cfg raster.RasterConfig) (*GDALRaster, error) {
	rows, cols := cfg.Rows(), cfg.Columns()

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, cols, rows)
	if err != nil {
		return nil, fmt.Errorf("rasterio: create %s: %w", path, err)
	}

	gt := [6]float64{cfg.West, cfg.ResolutionX, 0, cfg.North, 0, -cfg.ResolutionY}
	if err := ds.SetGeoTransform(gt); err != nil {
		ds.Close()
		return nil, fmt.Errorf("rasterio: set geotransform: %w", err)
	}

	bands := ds.Bands()
	if err := bands[0].SetNoData(cfg.NoData); err != nil {
		ds.Close()
		return nil, fmt.Errorf("rasterio: set nodata: %w", err)
	}

	return &GDALRaster{
		ds:      ds,
		rows:    rows,
		cols:    cols,
		nodata:  cfg.NoData,
		minimum: cfg.Minimum,
		maximum: cfg.Maximum,
		resX:    cfg.ResolutionX,
		resY:    cfg.ResolutionY,
		north:   cfg.North,
		west:    cfg.West,
	}, nil
}

func (g *GDALRaster) Rows() int    { return g.rows }
func (g *GDALRaster) Columns() int { return g.cols }
func (g *GDALRaster) NoData() float64 { return g.nodata }

func (g *GDALRaster) Bounds() (north, south, east, west float64) {
	south = g.north - float64(g.rows)*g.resY
	east = g.west + float64(g.cols)*g.resX
	return g.north, south, east, g.west
}

func (g *GDALRaster) Resolution() (resX, resY float64) {
	return g.resX, g.resY
}

func (g *GDALRaster) ValueRange() (min, max float64) {
	return g.minimum, g.maximum
}

// Get returns the value at (row, col), reading the entire band into an
// in-memory cache on first use if Open has not already done so.
func (g *GDALRaster) Get(row, col int) float64 {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return g.nodata
	}
	if !g.loaded {
		if err := g.load(); err != nil {
			return g.nodata
		}
	}
	return g.data[row*g.cols+col]
}

func (g *GDALRaster) load() error {
	if g.ds == nil {
		return ErrNotOpen
	}
	buf := make([]float64, g.rows*g.cols)
	bands := g.ds.Bands()
	if len(bands) != 1 {
		return ErrBandCount
	}
	if err := bands[0].Read(0, 0, buf, g.cols, g.rows); err != nil {
		return err
	}
	g.data = buf
	g.loaded = true
	return nil
}

// SetRow writes values (length Columns()) into dataset row.
func (g *GDALRaster) SetRow(row int, values []float64) error {
	if g.ds == nil {
		return ErrNotOpen
	}
	if len(values) != g.cols {
		return fmt.Errorf("rasterio: SetRow expected %d values, got %d", g.cols, len(values))
	}
	bands := g.ds.Bands()
	if len(bands) != 1 {
		return ErrBandCount
	}
	return bands[0].Write(0, row, values, g.cols, 1)
}

// SetConfig updates value range, nodata and metadata hints ahead of writing.
func (g *GDALRaster) SetConfig(cfg raster.RasterConfig) {
	g.minimum = cfg.Minimum
	g.maximum = cfg.Maximum
	g.nodata = cfg.NoData
	for _, m := range cfg.MetadataEntries {
		g.addMetadata(m)
	}
}

func (g *GDALRaster) AddMetadata(entry string) {
	g.addMetadata(entry)
}

func (g *GDALRaster) addMetadata(entry string) {
	if g.ds == nil {
		return
	}
	_ = g.ds.SetMetadata(entry, "go-terra")
}

func (g *GDALRaster) Close() error {
	if g.ds == nil {
		return nil
	}
	err := g.ds.Close()
	g.ds = nil
	return err
}
