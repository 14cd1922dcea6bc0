package packing

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/gogpu/colorpipe/opdata"
)

// Converter reads and writes one channel value of a given bit depth and
// byte order. Integer depths map [0, max] to [0, 1].
type Converter struct {
	depth opdata.BitDepth
	order binary.ByteOrder
	max   float32
}

// NewConverter returns the converter for depth. A nil order means the
// native byte order.
func NewConverter(depth opdata.BitDepth, order binary.ByteOrder) (Converter, error) {
	if !depth.IsValid() {
		return Converter{}, fmt.Errorf("%w: unsupported bit depth %v", ErrInvalidDesc, depth)
	}
	if order == nil {
		order = binary.NativeEndian
	}
	return Converter{depth: depth, order: order, max: float32(depth.MaxValue())}, nil
}

// Depth returns the bit depth.
func (c Converter) Depth() opdata.BitDepth { return c.depth }

// Size returns the number of bytes of one channel value.
func (c Converter) Size() int { return c.depth.BytesPerChannel() }

// Read decodes one channel value from b.
func (c Converter) Read(b []byte) float32 {
	switch c.depth {
	case opdata.BitDepthUInt8:
		return float32(b[0]) / c.max
	case opdata.BitDepthUInt10, opdata.BitDepthUInt12, opdata.BitDepthUInt16:
		return float32(c.order.Uint16(b)) / c.max
	case opdata.BitDepthF16:
		return float16.Frombits(c.order.Uint16(b)).Float32()
	case opdata.BitDepthF32:
		return math.Float32frombits(c.order.Uint32(b))
	default:
		panic(fmt.Sprintf("packing: unhandled bit depth %v", c.depth))
	}
}

// Write encodes v into b. Integer depths round to nearest and clamp to the
// representable range; NaN is written as 0.
func (c Converter) Write(b []byte, v float32) {
	switch c.depth {
	case opdata.BitDepthUInt8:
		b[0] = uint8(c.quantize(v))
	case opdata.BitDepthUInt10, opdata.BitDepthUInt12, opdata.BitDepthUInt16:
		c.order.PutUint16(b, uint16(c.quantize(v)))
	case opdata.BitDepthF16:
		c.order.PutUint16(b, float16.Fromfloat32(v).Bits())
	case opdata.BitDepthF32:
		c.order.PutUint32(b, math.Float32bits(v))
	default:
		panic(fmt.Sprintf("packing: unhandled bit depth %v", c.depth))
	}
}

func (c Converter) quantize(v float32) uint32 {
	s := v*c.max + 0.5
	if !(s > 0) {
		return 0
	}
	if s >= c.max {
		return uint32(c.max)
	}
	return uint32(s)
}

// isNative reports whether order lays out bytes like the host.
func isNative(order binary.ByteOrder) bool {
	var a, b [2]byte
	order.PutUint16(a[:], 0x0102)
	binary.NativeEndian.PutUint16(b[:], 0x0102)
	return a == b
}
