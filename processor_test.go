package colorpipe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/colorpipe/dynamic"
	"github.com/gogpu/colorpipe/opdata"
)

func TestCPUProcessor_PackedUInt8(t *testing.T) {
	p := mustBuild(t, []Transform{scale(2)})
	proc, err := p.CPUProcessor()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		order ChannelOrder
		in    []byte
		want  []byte
	}{
		{"RGBA", OrderRGBA, []byte{50, 100, 200, 7}, []byte{100, 200, 255, 7}},
		{"BGRA", OrderBGRA, []byte{200, 100, 50, 7}, []byte{255, 200, 100, 7}},
		{"RGB", OrderRGB, []byte{10, 20, 30, 40, 50, 60}, []byte{20, 40, 60, 80, 100, 120}},
		{"BGR", OrderBGR, []byte{0, 0, 128}, []byte{0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.in) / tt.order.NumChannels()
			img, err := NewPackedImageDesc(tt.in, n, 1, tt.order, opdata.BitDepthUInt8)
			if err != nil {
				t.Fatal(err)
			}
			if err := proc.Apply(img); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !bytes.Equal(tt.in, tt.want) {
				t.Errorf("pixels = %v, want %v", tt.in, tt.want)
			}
		})
	}
}

func floatBytes(vs ...float32) []byte {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.NativeEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func readFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.NativeEndian.Uint32(b[4*i:]))
	}
	return out
}

func TestCPUProcessor_Float(t *testing.T) {
	p := mustBuild(t, []Transform{scale(4)})
	proc, err := p.CPUProcessor()
	if err != nil {
		t.Fatal(err)
	}

	// Packed RGBA float32 is processed in place; values above 1 survive.
	data := floatBytes(0.5, 0.25, -1, 0.5, 2, 0, 0, 1)
	img, err := NewPackedImageDesc(data, 2, 1, OrderRGBA, opdata.BitDepthF32)
	if err != nil {
		t.Fatal(err)
	}
	if err := proc.Apply(img); err != nil {
		t.Fatal(err)
	}
	want := []float32{2, 1, -4, 0.5, 8, 0, 0, 1}
	for i, v := range readFloats(data) {
		if v != want[i] {
			t.Errorf("value %d = %v, want %v", i, v, want[i])
		}
	}

	// A padded row takes the copying path.
	padded := append(floatBytes(0.5, 0.5, 0.5, 1), make([]byte, 16)...)
	img = &PackedImageDesc{Data: padded, Width: 1, Height: 1, Order: OrderRGBA, BitDepth: opdata.BitDepthF32, YStride: 32}
	if err := proc.Apply(img); err != nil {
		t.Fatal(err)
	}
	if got := readFloats(padded)[0]; got != 2 {
		t.Errorf("padded red = %v, want 2", got)
	}
}

func TestCPUProcessor_PlanarUInt16(t *testing.T) {
	p := mustBuild(t, []Transform{OpTransform{Data: opdata.NewRange(0, 1, 0, 0.5)}})
	proc, err := p.CPUProcessor()
	if err != nil {
		t.Fatal(err)
	}
	plane := func(vs ...uint16) []byte {
		b := make([]byte, 2*len(vs))
		for i, v := range vs {
			binary.BigEndian.PutUint16(b[2*i:], v)
		}
		return b
	}
	r, g, b := plane(65535, 0), plane(32768, 1000), plane(0, 65535)
	img := &PlanarImageDesc{R: r, G: g, B: b, Width: 2, Height: 1, BitDepth: opdata.BitDepthUInt16, ByteOrder: binary.BigEndian}
	if err := proc.Apply(img); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"R", r, plane(32768, 0)},
		{"G", g, plane(16384, 500)},
		{"B", b, plane(0, 32768)},
	}
	for _, tt := range tests {
		if !bytes.Equal(tt.got, tt.want) {
			t.Errorf("%s plane = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCPUProcessor_EmptyAndInvalid(t *testing.T) {
	p := mustBuild(t, []Transform{scale(2)})
	proc, err := p.CPUProcessor()
	if err != nil {
		t.Fatal(err)
	}
	empty, err := NewPackedImageDesc(nil, 0, 0, OrderRGBA, opdata.BitDepthUInt8)
	if err != nil {
		t.Fatalf("empty image error = %v", err)
	}
	if err := proc.Apply(empty); err != nil {
		t.Errorf("Apply(empty) error = %v", err)
	}

	if _, err := NewPackedImageDesc(make([]byte, 7), 2, 1, OrderRGBA, opdata.BitDepthUInt8); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("short buffer error = %v, want ErrInvalidImage", err)
	}
	if err := proc.Apply(nil); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Apply(nil) error = %v, want ErrInvalidImage", err)
	}
	if err := proc.ApplyRGBA(make([]float32, 5)); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("ApplyRGBA(5 floats) error = %v, want ErrInvalidImage", err)
	}
}

func TestCPUProcessor_ParallelMatchesSerial(t *testing.T) {
	cube := opdata.NewLut3D(9)
	for i := range cube.Values {
		cube.Values[i] = cube.Values[i] * cube.Values[i]
	}
	p := mustBuild(t, []Transform{
		OpTransform{Data: opdata.NewGamma(opdata.GammaMoncurveFwd, 2.4, 0.055)},
		OpTransform{Data: opdata.NewMatrix3([9]float64{0.8, 0.15, 0.05, 0.1, 0.85, 0.05, 0.02, 0.08, 0.9})},
		OpTransform{Data: cube},
		OpTransform{Data: dynamicExposure(0.5)},
	})

	const w, h = 97, 53 // not a multiple of the block size
	rng := rand.New(rand.NewPCG(1, 2))
	src := make([]byte, 2*4*w*h)
	for i := range src {
		src[i] = byte(rng.IntN(256))
	}

	run := func(opts ...ProcessorOption) []byte {
		t.Helper()
		proc, err := p.CPUProcessor(opts...)
		if err != nil {
			t.Fatal(err)
		}
		defer proc.Close()
		data := append([]byte(nil), src...)
		img, err := NewPackedImageDesc(data, w, h, OrderRGBA, opdata.BitDepthUInt16)
		if err != nil {
			t.Fatal(err)
		}
		if err := proc.Apply(img); err != nil {
			t.Fatal(err)
		}
		return data
	}

	serial := run(WithWorkers(1))
	if bytes.Equal(serial, src) {
		t.Fatal("pipeline left the image unchanged")
	}
	for _, opts := range [][]ProcessorOption{
		{WithWorkers(4), WithBlockSize(256)},
		{WithWorkers(3), WithBlockSize(1)},
		{WithBlockSize(0)},
	} {
		if got := run(opts...); !bytes.Equal(got, serial) {
			t.Errorf("parallel result differs from serial with %d options", len(opts))
		}
	}
}

func TestCPUProcessor_ReadsDynamicValues(t *testing.T) {
	p := mustBuild(t, []Transform{OpTransform{Data: dynamicExposure(0)}})
	proc, err := p.CPUProcessor()
	if err != nil {
		t.Fatal(err)
	}
	px := []float32{0.1, 0.2, 0.3, 1, 0.1, 0.2, 0.3, 1}
	if err := proc.ApplyRGBA(px); err != nil {
		t.Fatal(err)
	}
	if px[0] != 0.1 {
		t.Errorf("red at 0 stops = %v, want 0.1", px[0])
	}
	if err := p.SetDynamicValue(dynamic.TypeExposure, -1); err != nil {
		t.Fatal(err)
	}
	if err := proc.ApplyRGBA(px); err != nil {
		t.Fatal(err)
	}
	if px[4] != 0.05 {
		t.Errorf("red at -1 stop = %v, want 0.05", px[4])
	}
}

func TestCPUProcessor_Close(t *testing.T) {
	p := mustBuild(t, []Transform{scale(2)})
	proc, err := p.CPUProcessor(WithWorkers(2), WithBlockSize(1))
	if err != nil {
		t.Fatal(err)
	}
	proc.Close()
	proc.Close()
	px := []float32{0.1, 0.1, 0.1, 1, 0.2, 0.2, 0.2, 1}
	if err := proc.ApplyRGBA(px); err != nil {
		t.Fatal(err)
	}
	if px[4] != 0.4 {
		t.Errorf("red after Close = %v, want 0.4", px[4])
	}
	if proc.BlockSize() != 1 {
		t.Errorf("BlockSize() = %d, want 1", proc.BlockSize())
	}
}
