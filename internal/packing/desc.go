// Package packing adapts caller pixel buffers to the canonical float RGBA
// representation the renderers work on, and back.
//
// A GenericImageDesc is a view over caller memory: it never copies pixel
// data, it only describes how to walk it. Pack reads a run of pixels into
// interleaved float32 RGBA; Unpack writes such a run back.
package packing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/gogpu/colorpipe/opdata"
)

// ErrInvalidDesc reports an image description that cannot be walked:
// a bad size or bit depth, or strides that leave the buffer.
var ErrInvalidDesc = errors.New("packing: invalid image description")

// AutoStride asks Init to derive a stride from the image layout.
const AutoStride = math.MinInt

// ChannelOrder is the channel layout of a packed image.
type ChannelOrder uint8

const (
	OrderRGBA ChannelOrder = iota
	OrderBGRA
	OrderRGB
	OrderBGR
)

// NumChannels returns the number of channels per pixel.
func (o ChannelOrder) NumChannels() int {
	if o == OrderRGB || o == OrderBGR {
		return 3
	}
	return 4
}

// String returns the order name.
func (o ChannelOrder) String() string {
	switch o {
	case OrderRGBA:
		return "RGBA"
	case OrderBGRA:
		return "BGRA"
	case OrderRGB:
		return "RGB"
	case OrderBGR:
		return "BGR"
	default:
		return fmt.Sprintf("ChannelOrder(%d)", o)
	}
}

// offsets returns the channel index of R, G, B and A within a pixel; A is
// -1 when absent.
func (o ChannelOrder) offsets() [4]int {
	switch o {
	case OrderBGRA:
		return [4]int{2, 1, 0, 3}
	case OrderRGB:
		return [4]int{0, 1, 2, -1}
	case OrderBGR:
		return [4]int{2, 1, 0, -1}
	default:
		return [4]int{0, 1, 2, 3}
	}
}

// Plane locates one channel: its first value is at Data[Offset].
type Plane struct {
	Data   []byte
	Offset int
}

// GenericImageDesc describes how to walk an image's channels. Channels
// holds R, G, B and A; an A plane with nil Data means the image has no
// alpha.
type GenericImageDesc struct {
	Width, Height    int
	XStride, YStride int // bytes between horizontal and vertical neighbours
	Channels         [4]Plane
	Depth            opdata.BitDepth
	Order            binary.ByteOrder // nil means native

	conv       Converter
	packedRGBA bool
	floats     []float32
}

// NewPacked describes an interleaved image. xStride and yStride may be
// AutoStride; a nil byteOrder means native.
func NewPacked(data []byte, width, height int, order ChannelOrder, depth opdata.BitDepth,
	xStride, yStride int, byteOrder binary.ByteOrder,
) (*GenericImageDesc, error) {
	if order > OrderBGR {
		return nil, fmt.Errorf("%w: unknown channel order %d", ErrInvalidDesc, order)
	}
	bpc := depth.BytesPerChannel()
	if xStride == AutoStride {
		xStride = order.NumChannels() * bpc
	}
	d := &GenericImageDesc{
		Width:   width,
		Height:  height,
		XStride: xStride,
		YStride: yStride,
		Depth:   depth,
		Order:   byteOrder,
	}
	for ch, idx := range order.offsets() {
		if idx >= 0 {
			d.Channels[ch] = Plane{Data: data, Offset: idx * bpc}
		}
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	d.packedRGBA = order == OrderRGBA && xStride == 4*bpc
	return d, nil
}

// NewPlanar describes an image with one buffer per channel. a may be nil.
// yStride may be AutoStride; a nil byteOrder means native.
func NewPlanar(r, g, b, a []byte, width, height int, depth opdata.BitDepth,
	yStride int, byteOrder binary.ByteOrder,
) (*GenericImageDesc, error) {
	d := &GenericImageDesc{
		Width:    width,
		Height:   height,
		XStride:  depth.BytesPerChannel(),
		YStride:  yStride,
		Channels: [4]Plane{{Data: r}, {Data: g}, {Data: b}, {Data: a}},
		Depth:    depth,
		Order:    byteOrder,
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init resolves automatic strides, checks that every pixel lies inside its
// buffer and prepares the converter. It must be called before Pack or
// Unpack on a hand-built description.
func (d *GenericImageDesc) Init() error {
	if d.Width < 0 || d.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidDesc, d.Width, d.Height)
	}
	conv, err := NewConverter(d.Depth, d.Order)
	if err != nil {
		return err
	}
	d.conv = conv
	if d.XStride == AutoStride {
		d.XStride = conv.Size()
	}
	if d.YStride == AutoStride {
		d.YStride = d.Width * d.XStride
	}
	for ch := range 3 {
		if d.Channels[ch].Data == nil && d.NumPixels() > 0 {
			return fmt.Errorf("%w: channel %d has no data", ErrInvalidDesc, ch)
		}
	}
	if d.NumPixels() > 0 {
		for ch, p := range d.Channels {
			if p.Data == nil {
				continue
			}
			if err := d.checkSpan(p); err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
		}
	}
	d.floats = d.floatView()
	return nil
}

// checkSpan verifies that the first and last byte touched by the plane are
// inside its buffer.
func (d *GenericImageDesc) checkSpan(p Plane) error {
	lo, hi := p.Offset, p.Offset
	for _, step := range []int{(d.Width - 1) * d.XStride, (d.Height - 1) * d.YStride} {
		if step < 0 {
			lo += step
		} else {
			hi += step
		}
	}
	hi += d.conv.Size()
	if lo < 0 || hi > len(p.Data) {
		return fmt.Errorf("%w: pixels span bytes [%d, %d) of a %d-byte buffer", ErrInvalidDesc, lo, hi, len(p.Data))
	}
	return nil
}

// NumPixels returns Width*Height.
func (d *GenericImageDesc) NumPixels() int { return d.Width * d.Height }

// HasAlpha reports whether the image stores an alpha channel.
func (d *GenericImageDesc) HasAlpha() bool { return d.Channels[3].Data != nil }

// IsRGBAPacked reports whether the image is interleaved RGBA without
// padding between pixels.
func (d *GenericImageDesc) IsRGBAPacked() bool { return d.packedRGBA }

// IsFloat reports whether the image stores 32-bit floats.
func (d *GenericImageDesc) IsFloat() bool { return d.Depth == opdata.BitDepthF32 }

// Converter returns the channel converter.
func (d *GenericImageDesc) Converter() Converter { return d.conv }

// FloatView returns the image memory as canonical RGBA floats when it
// already is in that representation: packed RGBA, 32-bit float, native
// byte order, no row padding and 4-byte aligned. Renderers may then work
// on the caller's memory directly.
func (d *GenericImageDesc) FloatView() ([]float32, bool) {
	return d.floats, d.floats != nil
}

func (d *GenericImageDesc) floatView() []float32 {
	n := d.NumPixels()
	if n == 0 || !d.IsFloat() || d.XStride != 16 || d.YStride != 16*d.Width {
		return nil
	}
	if d.Order != nil && !isNative(d.Order) {
		return nil
	}
	p := d.Channels
	if p[3].Data == nil || p[1].Offset != p[0].Offset+4 || p[2].Offset != p[0].Offset+8 || p[3].Offset != p[0].Offset+12 {
		return nil
	}
	for ch := 1; ch < 4; ch++ {
		if len(p[ch].Data) == 0 || &p[ch].Data[0] != &p[0].Data[0] {
			return nil
		}
	}
	b := p[0].Data[p[0].Offset:]
	if uintptr(unsafe.Pointer(&b[0]))%4 != 0 { //nolint:gosec // alignment check only
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), 4*n) //nolint:gosec // bounds checked by Init
}
