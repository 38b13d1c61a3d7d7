// Package lfo implements Lidar Flightline Overlap: rasterizing, into each
// grid cell, the number of distinct flight passes whose points fall inside
// that cell. Flight passes are distinguished by gaps in GPS time that are
// far larger than the sub-second spread within a single pass.
//
// The algorithm is a direct port of whitebox_tools' lidar_flightline_overlap
// tool: build a fixed-radius spatial index over every point, then for each
// output cell, query points near the cell center, keep only those whose
// point actually falls inside the square cell footprint, and count temporal
// clusters in their sorted GPS times.
package lfo

import (
	"math"
	"sort"

	"github.com/sixy6e/go-terra/index"
	"github.com/sixy6e/go-terra/lidar"
	"github.com/sixy6e/go-terra/raster"
	"github.com/sixy6e/go-terra/rowblock"
)

// Nodata is the output sentinel for cells with no points in their footprint.
const Nodata = -32768.0

// TimeThreshold is the GPS-time gap, in seconds, above which consecutive
// sorted points in a cell are considered to belong to different passes.
const TimeThreshold = 15.0

// ErrUnsupportedPointFormat re-exports lidar.ErrUnsupportedPointFormat for
// callers that only import this package.
var ErrUnsupportedPointFormat = lidar.ErrUnsupportedPointFormat

// Params controls grid resolution and parallelism. Palette is carried for
// callers; Run does not read it.
type Params struct {
	Resolution float64
	Palette    string
	Workers    int
	Progress   func(stage string, percent int)
}

// Layout is the georeferenced grid derived from a point source's header
// bounds and the requested resolution (spec §4.5 Stage B).
type Layout struct {
	Rows, Columns            int
	North, South, East, West float64
}

// computeLayout derives the output grid's extent from the point source's
// header bounds: west/north come directly from the bounds, rows/columns are
// the ceil-divided extent, and south/east are back-derived from rows*res so
// the grid always has an integer number of cells.
func computeLayout(minX, minY, maxX, maxY, res float64) Layout {
	west := minX
	north := maxY
	rows := int(math.Ceil((north - minY) / res))
	cols := int(math.Ceil((maxX - west) / res))
	south := north - float64(rows)*res
	east := west + float64(cols)*res
	return Layout{Rows: rows, Columns: cols, North: north, South: south, East: east, West: west}
}

type point struct {
	x, y, gpsTime float64
}

// Run builds the spatial index over src, derives the output grid layout,
// and counts flightline passes per cell into output.
func Run(src lidar.PointSource, output raster.RasterIO, p Params) error {
	if !src.PointFormat().HasGPSTime() {
		return ErrUnsupportedPointFormat
	}

	n := src.Count()
	idx := index.New[int](p.Resolution)
	points := make([]point, n)

	for i := 0; i < n; i++ {
		rec, err := src.At(i)
		if err != nil {
			return err
		}
		idx.Insert(rec.X, rec.Y, i)
		points[i] = point{x: rec.X, y: rec.Y, gpsTime: rec.GPSTime}

		if p.Progress != nil && n > 0 {
			p.Progress("indexing", (i+1)*100/n)
		}
	}

	minX, minY, maxX, maxY := src.Bounds()
	layout := computeLayout(minX, minY, maxX, maxY, p.Resolution)

	halfResSqrd := (p.Resolution / 2) * (p.Resolution / 2)

	compute := func(row int) ([]float64, error) {
		out := make([]float64, layout.Columns)
		for col := 0; col < layout.Columns; col++ {
			out[col] = cellFlightlineCount(idx, points, layout, row, col, p.Resolution, halfResSqrd)
		}
		return out, nil
	}

	done := 0
	sink := func(row int, data []float64) {
		_ = output.SetRow(row, data)
		done++
		if p.Progress != nil && layout.Rows > 0 {
			p.Progress("rasterizing", done*100/layout.Rows)
		}
	}

	return rowblock.Run(layout.Rows, p.Workers, compute, sink)
}

// cellCenter returns the center of grid cell (row, col). The resolution-aware
// half-cell offset is a deliberate divergence from original_source's literal
// `+0.5`, which is only correct at resolution 1.0 — see DESIGN.md.
func cellCenter(layout Layout, row, col int, res float64) (x, y float64) {
	x = layout.West + float64(col)*res + res/2
	y = layout.North - float64(row)*res - res/2
	return x, y
}

func cellFlightlineCount(idx *index.FixedRadiusIndex[int], points []point, layout Layout, row, col int, res, halfResSqrd float64) float64 {
	x, y := cellCenter(layout, row, col, res)

	results := idx.Search(x, y)
	if len(results) == 0 {
		return Nodata
	}

	times := make([]float64, 0, len(results))
	for _, r := range results {
		// The radius query already guarantees distSquared <= res^2; further
		// restrict to points actually inside the square cell footprint.
		pt := points[r.Payload]
		dx := pt.x - x
		dy := pt.y - y
		if dx*dx <= halfResSqrd && dy*dy <= halfResSqrd {
			times = append(times, pt.gpsTime)
		}
	}

	if len(times) == 0 {
		return Nodata
	}

	return float64(countClusters(times))
}

func countClusters(times []float64) int {
	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)

	clusters := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] > TimeThreshold {
			clusters++
		}
	}
	return clusters
}
