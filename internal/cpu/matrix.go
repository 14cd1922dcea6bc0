package cpu

import "github.com/gogpu/colorpipe/opdata"

// Matrix renders a 4x4 matrix with offset.
type Matrix struct {
	m      [16]float64
	offset [4]float64

	// diag marks a matrix without crosstalk; it is evaluated as a per-channel
	// scale.
	diag bool
}

// NewMatrix returns the renderer of d.
func NewMatrix(d *opdata.Matrix) *Matrix {
	return &Matrix{m: d.M, offset: d.Offset, diag: d.IsDiagonal()}
}

// Apply implements Renderer.
func (r *Matrix) Apply(rgba []float32) {
	m, o := &r.m, &r.offset
	if r.diag {
		for i := 0; i+3 < len(rgba); i += 4 {
			rgba[i] = float32(float64(rgba[i])*m[0] + o[0])
			rgba[i+1] = float32(float64(rgba[i+1])*m[5] + o[1])
			rgba[i+2] = float32(float64(rgba[i+2])*m[10] + o[2])
			rgba[i+3] = float32(float64(rgba[i+3])*m[15] + o[3])
		}
		return
	}
	for i := 0; i+3 < len(rgba); i += 4 {
		r0, g0, b0, a0 := float64(rgba[i]), float64(rgba[i+1]), float64(rgba[i+2]), float64(rgba[i+3])
		rgba[i] = float32(m[0]*r0 + m[1]*g0 + m[2]*b0 + m[3]*a0 + o[0])
		rgba[i+1] = float32(m[4]*r0 + m[5]*g0 + m[6]*b0 + m[7]*a0 + o[1])
		rgba[i+2] = float32(m[8]*r0 + m[9]*g0 + m[10]*b0 + m[11]*a0 + o[2])
		rgba[i+3] = float32(m[12]*r0 + m[13]*g0 + m[14]*b0 + m[15]*a0 + o[3])
	}
}

// Range renders an affine remap with optional clamps on RGB. Alpha passes
// through.
type Range struct {
	scale, offset float64
	lo, hi        float64
}

// NewRange returns the renderer of d.
func NewRange(d *opdata.Range) *Range {
	return &Range{scale: d.Scale(), offset: d.Offset(), lo: d.LowerClamp(), hi: d.UpperClamp()}
}

// Apply implements Renderer.
func (r *Range) Apply(rgba []float32) {
	for i := 0; i+3 < len(rgba); i += 4 {
		for c := range 3 {
			v := float64(rgba[i+c])*r.scale + r.offset
			rgba[i+c] = float32(min(max(v, r.lo), r.hi))
		}
	}
}
