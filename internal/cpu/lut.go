package cpu

import (
	"github.com/gogpu/colorpipe/internal/lut"
	"github.com/gogpu/colorpipe/opdata"
)

// Lut1D renders a per-channel 1D table on RGB. Alpha passes through.
type Lut1D struct {
	values  []float32
	n       int
	half    bool
	nearest bool
}

// NewLut1D returns the renderer of d.
func NewLut1D(d *opdata.Lut1D) *Lut1D {
	return &Lut1D{
		values:  d.Values,
		n:       d.Size(),
		half:    d.HalfDomain,
		nearest: d.Interpolation == opdata.InterpNearest,
	}
}

// NewInvLut1D returns the renderer of the fast forward table baked from d.
func NewInvLut1D(d *opdata.InvLut1D) *Lut1D {
	return NewLut1D(d.Fast())
}

// Apply implements Renderer.
func (r *Lut1D) Apply(rgba []float32) {
	for i := 0; i+3 < len(rgba); i += 4 {
		for c := range 3 {
			rgba[i+c] = r.eval(c, rgba[i+c])
		}
	}
}

func (r *Lut1D) eval(ch int, x float32) float32 {
	switch {
	case r.half && r.nearest:
		return lut.NearestHalf(r.values, ch, x)
	case r.half:
		return lut.SampleHalf(r.values, ch, x)
	case r.nearest:
		return lut.Nearest1D(r.values, r.n, ch, x)
	default:
		return lut.Sample1D(r.values, r.n, ch, x)
	}
}

// Lut3D renders a 3D table on RGB with trilinear or tetrahedral
// interpolation. Alpha passes through.
type Lut3D struct {
	values      []float32
	n           int
	tetrahedral bool
}

// NewLut3D returns the renderer of d.
func NewLut3D(d *opdata.Lut3D) *Lut3D {
	return &Lut3D{values: d.Values, n: d.GridSize, tetrahedral: d.Tetrahedral()}
}

// Apply implements Renderer.
func (r *Lut3D) Apply(rgba []float32) {
	sample := lut.Trilinear
	if r.tetrahedral {
		sample = lut.Tetrahedral
	}
	for i := 0; i+3 < len(rgba); i += 4 {
		rgba[i], rgba[i+1], rgba[i+2] = sample(r.values, r.n, rgba[i], rgba[i+1], rgba[i+2])
	}
}
