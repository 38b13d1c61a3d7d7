// Package epf implements the Elevation-Percentile Filter: for each DEM cell,
// the percentile rank of its elevation within a rectangular moving window.
//
// The algorithm is a direct port of whitebox_tools' elev_percentile tool:
// bin elevations at a fixed retained-significant-digits precision, then
// slide a histogram window left-to-right across each row, updating it
// incrementally (remove trailing column, add leading column, shift the
// reference bin) rather than rescanning the whole window per cell.
package epf

import (
	"errors"
	"math"

	"github.com/sixy6e/go-terra/grid"
	"github.com/sixy6e/go-terra/raster"
	"github.com/sixy6e/go-terra/rowblock"
)

// sigDigits is the retained-significant-digits parameter, fixed at 2 per the
// original tool (a local constant there, not a CLI parameter here either).
const sigDigits = 2

// binNodata marks a binned cell with no underlying datum. The minimum
// representable int64 is safe because valid bins live in [0, B) and B fits
// far inside the signed 64-bit range for any realistic DEM.
const binNodata = math.MinInt64

// ErrInvalidBin is returned when a binned value falls outside [0, B), which
// indicates the raster's declared min/max do not bracket its actual values.
var ErrInvalidBin = errors.New("epf: bin index out of range; raster min/max do not bracket actual values")

// Params controls the moving-window kernel and parallelism.
type Params struct {
	FilterX, FilterY int
	Workers          int
	// Progress, if non-nil, is invoked from the single-threaded assembly
	// loop only (never from a worker) with a stage name and percent complete
	// in [0, 100]. It mirrors the original tool's per-percent-point
	// "Binning data: N%" / "Performing analysis: N%" console output.
	Progress func(stage string, percent int)
}

// NormalizeKernel clamps a kernel size to the minimum of 3 and rounds even
// sizes up by one, per spec: "Kernel sizes <3 are clamped to 3; even sizes
// are rounded up by 1."
func NormalizeKernel(size int) int {
	if size < 3 {
		size = 3
	}
	if size%2 == 0 {
		size++
	}
	return size
}

// Run executes the two-stage EPF pipeline: input raster -> binned grid ->
// percentile-rank output raster. input and output must share dimensions.
// Bins are derived from input's ValueRange() and NoData(); output's NoData()
// is the value written for nodata cells, and output's ValueRange() is not
// consulted.
func Run(input, output raster.RasterIO, p Params) error {
	p.FilterX = NormalizeKernel(p.FilterX)
	p.FilterY = NormalizeKernel(p.FilterY)

	rows := input.Rows()
	cols := input.Columns()
	nd := input.NoData()
	minVal, maxVal := input.ValueRange()

	multiplier := math.Pow(10, float64(sigDigits))
	minBin := int64(math.Floor(minVal * multiplier))
	maxBin := int64(math.Floor(maxVal * multiplier))
	numBins := maxBin - minBin + 1

	binned := grid.New[int64](rows, cols, binNodata, binNodata)

	if err := binStage(input, binned, nd, multiplier, minBin, numBins, p); err != nil {
		return err
	}

	return percentileStage(binned, output, numBins, p)
}

func binStage(input raster.RasterIO, binned *grid.Grid2D[int64], nd, multiplier float64, minBin, numBins int64, p Params) error {
	rows := input.Rows()
	cols := input.Columns()

	compute := func(row int) ([]int64, error) {
		data := make([]int64, cols)
		for col := 0; col < cols; col++ {
			data[col] = binNodata
			z := input.Get(row, col)
			if z == nd {
				continue
			}
			val := int64(math.Floor(z*multiplier)) - minBin
			if val < 0 || val >= numBins {
				return nil, ErrInvalidBin
			}
			data[col] = val
		}
		return data, nil
	}

	done := 0
	sink := func(row int, data []int64) {
		_ = binned.SetRow(row, data)
		done++
		reportProgress(p.Progress, "binning", done, rows)
	}

	return rowblock.Run(rows, p.Workers, compute, sink)
}

func percentileStage(binned *grid.Grid2D[int64], output raster.RasterIO, numBins int64, p Params) error {
	rows := binned.Rows
	cols := binned.Cols
	mx := p.FilterX / 2
	my := p.FilterY / 2
	nodataOut := output.NoData()

	compute := func(row int) ([]float64, error) {
		return percentileRow(binned, row, cols, mx, my, numBins, nodataOut), nil
	}

	done := 0
	sink := func(row int, data []float64) {
		_ = output.SetRow(row, data)
		done++
		reportProgress(p.Progress, "percentile", done, rows)
	}

	return rowblock.Run(rows, p.Workers, compute, sink)
}

// percentileRow computes one output row of percentile ranks by sliding an
// incrementally-maintained histogram window across the row. See package doc
// and spec §4.4 for the full state-machine description.
func percentileRow(binned *grid.Grid2D[int64], row, cols, mx, my int, numBins int64, nodataOut float64) []float64 {
	startRow := row - my
	endRow := row + my

	histo := make([]int64, numBins)
	var n, nLess int64
	oldRef := int64(binNodata)

	out := make([]float64, cols)

	for col := 0; col < cols; col++ {
		ref := binned.Get(row, col)

		switch {
		case ref == binNodata:
			oldRef = binNodata

		case oldRef == binNodata:
			// Full rebuild: the previous cell was nodata (or this is the
			// row's first valid cell), so incremental state is unusable.
			for i := range histo {
				histo[i] = 0
			}
			n, nLess = 0, 0
			for col2 := col - mx; col2 <= col+mx; col2++ {
				for row2 := startRow; row2 <= endRow; row2++ {
					v := binned.Get(row2, col2)
					if v == binNodata {
						continue
					}
					histo[v]++
					n++
					if v < ref {
						nLess++
					}
				}
			}

		default:
			// Incremental update: remove the trailing column, add the
			// leading column (both against oldRef), then shift the
			// reference from oldRef to ref.
			for row2 := startRow; row2 <= endRow; row2++ {
				v := binned.Get(row2, col-mx-1)
				if v == binNodata {
					continue
				}
				histo[v]--
				n--
				if v < oldRef {
					nLess--
				}
			}
			for row2 := startRow; row2 <= endRow; row2++ {
				v := binned.Get(row2, col+mx)
				if v == binNodata {
					continue
				}
				histo[v]++
				n++
				if v < oldRef {
					nLess++
				}
			}

			switch {
			case oldRef < ref:
				var m int64
				for v := oldRef; v < ref; v++ {
					m += histo[v]
				}
				nLess += m
			case oldRef > ref:
				var m int64
				for v := ref; v < oldRef; v++ {
					m += histo[v]
				}
				nLess -= m
			}
		}

		if ref != binNodata && n > 0 {
			out[col] = 100 * float64(nLess) / float64(n)
		} else {
			out[col] = nodataOut
		}

		oldRef = ref
	}

	return out
}

func reportProgress(fn func(stage string, percent int), stage string, done, total int) {
	if fn == nil || total <= 0 {
		return
	}
	fn(stage, done*100/total)
}
