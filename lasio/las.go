// Package lasio is a minimal LAS 1.2 point cloud reader, covering point data
// formats 0, 1 and 3 -- the formats lidar.PointSource needs to distinguish
// by GPS time presence. It intentionally does not implement LAS writing, VLR
// parsing beyond the public header block, or LAZ (compressed LAS): no
// example in this module's ecosystem ships a LAS/LAZ codec, so this is a
// direct binary decode against the published LAS 1.2 spec, following the
// teacher's own style of hand-rolled binary.Read against anonymous structs.
package lasio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sixy6e/go-terra/lidar"
)

var ErrBadSignature = errors.New("lasio: missing LASF file signature")
var ErrUnsupportedFormat = errors.New("lasio: unsupported point data format")

const signature = "LASF"

type publicHeader struct {
	FileSignature        [4]byte
	FileSourceID         uint16
	GlobalEncoding       uint16
	GUID1                uint32
	GUID2                uint16
	GUID3                uint16
	GUID4                [8]byte
	VersionMajor         uint8
	VersionMinor         uint8
	SystemIdentifier     [32]byte
	GeneratingSoftware   [32]byte
	FileCreationDay      uint16
	FileCreationYear     uint16
	HeaderSize           uint16
	OffsetToPointData    uint32
	NumVariableRecords   uint32
	PointDataFormatID    uint8
	PointDataRecordLen   uint16
	NumPointRecords      uint32
	NumPointsByReturn    [5]uint32
	XScaleFactor         float64
	YScaleFactor         float64
	ZScaleFactor         float64
	XOffset              float64
	YOffset              float64
	ZOffset              float64
	MaxX                 float64
	MinX                 float64
	MaxY                 float64
	MinY                 float64
	MaxZ                 float64
	MinZ                 float64
}

// rawPoint0 is the fixed 20-byte point data record shared by formats 0,1,3
// before the format-specific tail (GPS time, RGB).
type rawPoint0 struct {
	X               int32
	Y               int32
	Z               int32
	Intensity       uint16
	Flags           uint8
	Classification  uint8
	ScanAngleRank   int8
	UserData        uint8
	PointSourceID   uint16
}

// LasReader implements lidar.PointSource over a LAS 1.2 file opened from
// disk. Point records are decoded on demand in At, not eagerly loaded, so
// memory use stays proportional to the index/rowblock working set rather
// than file size.
type LasReader struct {
	file        *os.File
	hdr         publicHeader
	format      lidar.PointFormat
	recordLen   int
	dataOffset  int64
	count       int
}

// Open parses the LAS 1.2 public header block from path and returns a reader
// ready to serve point records via At.
func Open(path string) (*LasReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lasio: open %s: %w", path, err)
	}

	buf := make([]byte, 227) // LAS 1.2 public header block size
	if _, err := io.ReadFull(f, buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("lasio: read header: %w", err)
	}

	var hdr publicHeader
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("lasio: decode header: %w", err)
	}

	if string(hdr.FileSignature[:]) != signature {
		f.Close()
		return nil, ErrBadSignature
	}

	format, err := pointFormat(hdr.PointDataFormatID)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &LasReader{
		file:       f,
		hdr:        hdr,
		format:     format,
		recordLen:  int(hdr.PointDataRecordLen),
		dataOffset: int64(hdr.OffsetToPointData),
		count:      int(hdr.NumPointRecords),
	}, nil
}

func pointFormat(id uint8) (lidar.PointFormat, error) {
	switch id {
	case 0:
		return lidar.Format0, nil
	case 1:
		return lidar.Format1, nil
	case 3:
		return lidar.Format3, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedFormat, id)
	}
}

func (r *LasReader) Count() int                    { return r.count }
func (r *LasReader) PointFormat() lidar.PointFormat { return r.format }

func (r *LasReader) Bounds() (minX, minY, maxX, maxY float64) {
	return r.hdr.MinX, r.hdr.MinY, r.hdr.MaxX, r.hdr.MaxY
}

// At decodes point record i, applying the header's scale factors and
// offsets to recover real-world coordinates.
func (r *LasReader) At(i int) (lidar.PointRecord, error) {
	if i < 0 || i >= r.count {
		return lidar.PointRecord{}, fmt.Errorf("lasio: point index %d out of range [0,%d)", i, r.count)
	}

	buf := make([]byte, r.recordLen)
	offset := r.dataOffset + int64(i)*int64(r.recordLen)
	if _, err := r.file.ReadAt(buf, offset); err != nil {
		return lidar.PointRecord{}, fmt.Errorf("lasio: read point %d: %w", i, err)
	}

	reader := bytes.NewReader(buf)
	var raw rawPoint0
	if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
		return lidar.PointRecord{}, fmt.Errorf("lasio: decode point %d: %w", i, err)
	}

	rec := lidar.PointRecord{
		X: float64(raw.X)*r.hdr.XScaleFactor + r.hdr.XOffset,
		Y: float64(raw.Y)*r.hdr.YScaleFactor + r.hdr.YOffset,
		Z: float64(raw.Z)*r.hdr.ZScaleFactor + r.hdr.ZOffset,
	}

	if r.format.HasGPSTime() {
		var gpsTime float64
		if err := binary.Read(reader, binary.LittleEndian, &gpsTime); err != nil {
			return lidar.PointRecord{}, fmt.Errorf("lasio: decode gps time for point %d: %w", i, err)
		}
		rec.GPSTime = gpsTime
	}

	return rec, nil
}

func (r *LasReader) Close() error {
	return r.file.Close()
}
