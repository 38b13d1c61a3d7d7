package epf

import "github.com/sixy6e/go-terra/raster"

// memRaster is a minimal in-memory raster.RasterIO used only by tests in
// this package; it exists so EPF's algorithmic core can be exercised without
// a real file-backed codec, matching spec.md's framing of RasterIO as an
// external collaborator's concern.
type memRaster struct {
	rows, cols int
	nodata     float64
	min, max   float64
	north, south, east, west float64
	resX, resY float64
	cfg        raster.RasterConfig
	data       [][]float64
}

func newMemRaster(rows, cols int, nodata, min, max float64) *memRaster {
	data := make([][]float64, rows)
	for i := range data {
		row := make([]float64, cols)
		for j := range row {
			row[j] = nodata
		}
		data[i] = row
	}
	return &memRaster{rows: rows, cols: cols, nodata: nodata, min: min, max: max, resX: 1, resY: 1, data: data}
}

func (m *memRaster) Rows() int    { return m.rows }
func (m *memRaster) Columns() int { return m.cols }
func (m *memRaster) NoData() float64 { return m.nodata }
func (m *memRaster) Bounds() (north, south, east, west float64) {
	return m.north, m.south, m.east, m.west
}
func (m *memRaster) Resolution() (resX, resY float64) { return m.resX, m.resY }
func (m *memRaster) ValueRange() (min, max float64)   { return m.min, m.max }

func (m *memRaster) Get(row, col int) float64 {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return m.nodata
	}
	return m.data[row][col]
}

func (m *memRaster) SetRow(row int, values []float64) error {
	copy(m.data[row], values)
	return nil
}

func (m *memRaster) SetConfig(cfg raster.RasterConfig) { m.cfg = cfg }
func (m *memRaster) AddMetadata(entry string)          { m.cfg.AddMetadata(entry) }
func (m *memRaster) Close() error                      { return nil }
