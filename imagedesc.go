package colorpipe

import (
	"encoding/binary"

	"github.com/gogpu/colorpipe/internal/packing"
	"github.com/gogpu/colorpipe/opdata"
)

// ImageDesc describes caller memory a CPUProcessor transforms in place.
// It is implemented by *PackedImageDesc and *PlanarImageDesc.
type ImageDesc interface {
	generic() (*packing.GenericImageDesc, error)
}

// ChannelOrder is the channel layout of a packed image.
type ChannelOrder = packing.ChannelOrder

// Channel orders of packed images.
const (
	OrderRGBA = packing.OrderRGBA
	OrderBGRA = packing.OrderBGRA
	OrderRGB  = packing.OrderRGB
	OrderBGR  = packing.OrderBGR
)

// AutoStride derives a stride from the image layout: the pixel size for
// the x stride and Width times the x stride for the y stride. A zero
// stride in a description means the same.
const AutoStride = packing.AutoStride

// ErrInvalidImage reports an image description whose strides or sizes do
// not fit its buffers.
var ErrInvalidImage = packing.ErrInvalidDesc

func stride(s int) int {
	if s == 0 {
		return AutoStride
	}
	return s
}

// PackedImageDesc describes an interleaved image: every pixel stores its
// channels next to each other in Order.
type PackedImageDesc struct {
	Data          []byte
	Width, Height int
	Order         ChannelOrder
	BitDepth      opdata.BitDepth

	// XStride and YStride are the byte distances between horizontal and
	// vertical neighbours. Negative strides walk the buffer backwards.
	XStride, YStride int

	// ByteOrder of multi-byte channels; nil means native.
	ByteOrder binary.ByteOrder
}

// NewPackedImageDesc describes a tightly packed image in native byte order.
func NewPackedImageDesc(data []byte, width, height int, order ChannelOrder, depth opdata.BitDepth) (*PackedImageDesc, error) {
	d := &PackedImageDesc{
		Data:     data,
		Width:    width,
		Height:   height,
		Order:    order,
		BitDepth: depth,
	}
	if _, err := d.generic(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *PackedImageDesc) generic() (*packing.GenericImageDesc, error) {
	return packing.NewPacked(d.Data, d.Width, d.Height, d.Order, d.BitDepth,
		stride(d.XStride), stride(d.YStride), d.ByteOrder)
}

// PlanarImageDesc describes an image with one buffer per channel. A is
// optional; without it the alpha is treated as 1 and not written back.
type PlanarImageDesc struct {
	R, G, B, A    []byte
	Width, Height int
	BitDepth      opdata.BitDepth

	// YStride is the byte distance between rows of one plane.
	YStride int

	// ByteOrder of multi-byte channels; nil means native.
	ByteOrder binary.ByteOrder
}

// NewPlanarImageDesc describes tightly packed planes in native byte order.
// a may be nil.
func NewPlanarImageDesc(r, g, b, a []byte, width, height int, depth opdata.BitDepth) (*PlanarImageDesc, error) {
	d := &PlanarImageDesc{
		R: r, G: g, B: b, A: a,
		Width:    width,
		Height:   height,
		BitDepth: depth,
	}
	if _, err := d.generic(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *PlanarImageDesc) generic() (*packing.GenericImageDesc, error) {
	return packing.NewPlanar(d.R, d.G, d.B, d.A, d.Width, d.Height, d.BitDepth,
		stride(d.YStride), d.ByteOrder)
}
