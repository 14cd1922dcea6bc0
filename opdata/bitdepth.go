package opdata

import "fmt"

// BitDepth is the per-channel storage depth of pixel data or of a table
// as it was authored.
type BitDepth uint8

const (
	BitDepthUnknown BitDepth = iota
	BitDepthUInt8
	BitDepthUInt10
	BitDepthUInt12
	BitDepthUInt16
	BitDepthF16
	BitDepthF32
)

// bitDepthInfo holds static properties of a bit depth.
type bitDepthInfo struct {
	name     string
	max      float64
	bytes    int
	isFloat  bool
	lutIdeal int
}

var bitDepthTable = [...]bitDepthInfo{
	BitDepthUnknown: {name: "unknown"},
	BitDepthUInt8:   {name: "8ui", max: 255, bytes: 1, lutIdeal: 256},
	BitDepthUInt10:  {name: "10ui", max: 1023, bytes: 2, lutIdeal: 1024},
	BitDepthUInt12:  {name: "12ui", max: 4095, bytes: 2, lutIdeal: 4096},
	BitDepthUInt16:  {name: "16ui", max: 65535, bytes: 2, lutIdeal: 65536},
	BitDepthF16:     {name: "16f", max: 1, bytes: 2, isFloat: true, lutIdeal: 65536},
	BitDepthF32:     {name: "32f", max: 1, bytes: 4, isFloat: true, lutIdeal: 65536},
}

func (b BitDepth) info() bitDepthInfo {
	if int(b) < len(bitDepthTable) {
		return bitDepthTable[b]
	}
	return bitDepthTable[BitDepthUnknown]
}

// String returns the short name used in cache identifiers ("8ui", "32f").
func (b BitDepth) String() string {
	if int(b) < len(bitDepthTable) {
		return b.info().name
	}
	return fmt.Sprintf("BitDepth(%d)", b)
}

// MaxValue returns the integer code value representing 1.0, or 1 for
// floating-point depths.
func (b BitDepth) MaxValue() float64 { return b.info().max }

// IsFloat reports whether the depth stores floating-point values.
func (b BitDepth) IsFloat() bool { return b.info().isFloat }

// BytesPerChannel returns the storage size of one channel value.
func (b BitDepth) BytesPerChannel() int { return b.info().bytes }

// IsValid reports whether b is a known, concrete bit depth.
func (b BitDepth) IsValid() bool {
	return b > BitDepthUnknown && int(b) < len(bitDepthTable)
}

// IdealLutSize returns the 1D table size that samples every code value of
// an integer depth, or 65536 (one entry per half float) for float depths.
func (b BitDepth) IdealLutSize() int { return b.info().lutIdeal }
