// Package grid provides Grid2D, a dense rectangular array of a fixed numeric
// type carrying nodata sentinels. It is the shared data structure underneath
// both the elevation-percentile filter and the flightline-overlap rasterizer.
package grid

import "fmt"

// Number constrains the element types Grid2D can be instantiated over.
type Number interface {
	~float64 | ~int64 | ~int32
}

// Grid2D is a row-major rectangular array of rows*cols elements of type T,
// with distinct sentinels for nodata encountered while reading (NodataIn)
// and nodata written on output (NodataOut). The two may be equal.
//
// Coordinates are (row, col) with row 0 at the north edge and column 0 at
// the west edge. A Grid2D is allocated once by New and never resized;
// Set/SetRow only ever overwrite existing cells.
type Grid2D[T Number] struct {
	Rows, Cols         int
	NodataIn, NodataOut T
	data               []T
}

// New allocates a Rows x Cols grid pre-filled with nodataIn.
func New[T Number](rows, cols int, nodataIn, nodataOut T) *Grid2D[T] {
	g := &Grid2D[T]{
		Rows:       rows,
		Cols:       cols,
		NodataIn:   nodataIn,
		NodataOut:  nodataOut,
		data:       make([]T, rows*cols),
	}
	for i := range g.data {
		g.data[i] = nodataIn
	}
	return g
}

func (g *Grid2D[T]) inBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// Get returns the value at (row, col), or NodataIn if (row, col) falls
// outside the grid. This clamp-to-nodata read policy is load-bearing: the
// EPF sliding window and any other boundary-crossing scan depend on reads
// past the edge reading as nodata rather than failing.
func (g *Grid2D[T]) Get(row, col int) T {
	if !g.inBounds(row, col) {
		return g.NodataIn
	}
	return g.data[row*g.Cols+col]
}

// Set writes v at (row, col). Writing out of bounds is an error, unlike Get.
func (g *Grid2D[T]) Set(row, col int, v T) error {
	if !g.inBounds(row, col) {
		return fmt.Errorf("grid: set out of range: row=%d col=%d rows=%d cols=%d", row, col, g.Rows, g.Cols)
	}
	g.data[row*g.Cols+col] = v
	return nil
}

// SetRow overwrites an entire row with buffer, which must have length Cols.
func (g *Grid2D[T]) SetRow(row int, buffer []T) error {
	if row < 0 || row >= g.Rows {
		return fmt.Errorf("grid: set_row out of range: row=%d rows=%d", row, g.Rows)
	}
	if len(buffer) != g.Cols {
		return fmt.Errorf("grid: set_row buffer length %d does not match cols %d", len(buffer), g.Cols)
	}
	copy(g.data[row*g.Cols:(row+1)*g.Cols], buffer)
	return nil
}
