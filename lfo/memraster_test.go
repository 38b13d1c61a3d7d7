package lfo

import (
	"github.com/sixy6e/go-terra/lidar"
	"github.com/sixy6e/go-terra/raster"
)

// memRaster is a minimal in-memory raster.RasterIO used only by tests in
// this package; mirrors epf's test double.
type memRaster struct {
	rows, cols int
	nodata     float64
	data       [][]float64
}

func newMemRaster(rows, cols int, nodata float64) *memRaster {
	data := make([][]float64, rows)
	for i := range data {
		row := make([]float64, cols)
		for j := range row {
			row[j] = nodata
		}
		data[i] = row
	}
	return &memRaster{rows: rows, cols: cols, nodata: nodata, data: data}
}

func (m *memRaster) Rows() int                                  { return m.rows }
func (m *memRaster) Columns() int                               { return m.cols }
func (m *memRaster) NoData() float64                            { return m.nodata }
func (m *memRaster) Bounds() (north, south, east, west float64) { return 0, 0, 0, 0 }
func (m *memRaster) Resolution() (resX, resY float64)           { return 1, 1 }
func (m *memRaster) ValueRange() (min, max float64)             { return 0, 0 }
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
func (m *memRaster) SetConfig(cfg raster.RasterConfig) {}
func (m *memRaster) AddMetadata(entry string)          {}
func (m *memRaster) Close() error                      { return nil }

// fakePointSource is a minimal in-memory lidar.PointSource for tests.
type fakePointSource struct {
	format                 lidar.PointFormat
	minX, minY, maxX, maxY float64
	records                []lidar.PointRecord
}

func (f *fakePointSource) Count() int                    { return len(f.records) }
func (f *fakePointSource) PointFormat() lidar.PointFormat { return f.format }
func (f *fakePointSource) Bounds() (minX, minY, maxX, maxY float64) {
	return f.minX, f.minY, f.maxX, f.maxY
}
func (f *fakePointSource) At(i int) (lidar.PointRecord, error) { return f.records[i], nil }
func (f *fakePointSource) Close() error                        { return nil }
