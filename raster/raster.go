// Package raster defines the RasterIO contract that the EPF and LFO cores
// consume and produce. The raster file-format codec itself is an external
// collaborator's concern (see rasterio for the concrete GDAL-backed adapter);
// this package only names the shape of that contract plus the georeferenced
// configuration both tools read from and write to.
package raster

// RasterConfig holds the georeferenced extent, resolution, value range,
// nodata, data type and display hints for a raster. Metadata is append-only.
type RasterConfig struct {
	North, South, East, West float64
	ResolutionX, ResolutionY float64
	Minimum, Maximum         float64
	NoData                   float64
	DataType                 string
	Palette                  string
	DisplayMin, DisplayMax   float64
	MetadataEntries          []string
}

// Columns returns ceil((East-West)/ResolutionX), per spec.
func (c RasterConfig) Columns() int {
	return ceilDiv(c.East-c.West, c.ResolutionX)
}

// Rows returns ceil((North-South)/ResolutionY), per spec.
func (c RasterConfig) Rows() int {
	return ceilDiv(c.North-c.South, c.ResolutionY)
}

func ceilDiv(extent, res float64) int {
	n := extent / res
	i := int(n)
	if float64(i) < n {
		i++
	}
	return i
}

// AddMetadata appends a metadata entry. Never overwrites prior entries.
func (c *RasterConfig) AddMetadata(entry string) {
	c.MetadataEntries = append(c.MetadataEntries, entry)
}

// RasterIO is the façade the EPF and LFO cores use to read an input raster
// and write an output raster. Its concrete implementation (file format,
// compression, on-disk layout) is out of scope for the cores: they only ever
// see this interface.
type RasterIO interface {
	Rows() int
	Columns() int
	NoData() float64
	Bounds() (north, south, east, west float64)
	Resolution() (resX, resY float64)
	ValueRange() (min, max float64)

	// Get returns the value at (row, col).
	Get(row, col int) float64

	// SetRow writes an entire output row; values must have length Columns().
	SetRow(row int, values []float64) error

	// SetConfig applies display hints, palette and value range to the
	// destination raster ahead of writing.
	SetConfig(cfg RasterConfig)

	// AddMetadata appends a metadata entry (tool name, input path, filter
	// parameters, elapsed time, ...).
	AddMetadata(entry string)

	Close() error
}
