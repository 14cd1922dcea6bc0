package opdata

import (
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"
)

// IdentityMat4 is the 4x4 identity matrix.
var IdentityMat4 = f64.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Matrix is an affine RGBA transform: out = M * in + Offset.
//
// M is row-major: M[4*r+c] is the weight of input channel c in output
// channel r.
type Matrix struct {
	base
	M      f64.Mat4
	Offset f64.Vec4
}

// NewMatrix returns an identity matrix.
func NewMatrix() *Matrix {
	return &Matrix{M: IdentityMat4}
}

// NewMatrixFrom returns a matrix with the given coefficients and offset.
func NewMatrixFrom(m f64.Mat4, offset f64.Vec4) *Matrix {
	return &Matrix{M: m, Offset: offset}
}

// NewMatrix3 returns a matrix applying the row-major 3x3 m to RGB and
// leaving alpha unchanged.
func NewMatrix3(m [9]float64) *Matrix {
	return &Matrix{M: f64.Mat4{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
		0, 0, 0, 1,
	}}
}

// NewScale returns a diagonal matrix scaling each channel.
func NewScale(s f64.Vec4) *Matrix {
	return &Matrix{M: f64.Mat4{
		s[0], 0, 0, 0,
		0, s[1], 0, 0,
		0, 0, s[2], 0,
		0, 0, 0, s[3],
	}}
}

// Kind returns KindMatrix.
func (*Matrix) Kind() Kind { return KindMatrix }

// Validate checks that every coefficient is finite.
func (m *Matrix) Validate() error {
	if !finite(m.M[:]...) {
		return invalidf(KindMatrix, "matrix", "coefficients must be finite")
	}
	if !finite(m.Offset[:]...) {
		return invalidf(KindMatrix, "offset", "offsets must be finite")
	}
	return nil
}

// Finalize validates and computes the cache identifier.
func (m *Matrix) Finalize() error {
	if err := m.Validate(); err != nil {
		return err
	}
	m.cacheID = newIDBuilder(KindMatrix).float(m.M[:]...).float(m.Offset[:]...).String()
	return nil
}

// Clone returns a deep copy.
func (m *Matrix) Clone() Data {
	c := *m
	c.base = m.cloneBase()
	return &c
}

// Inverse returns the inverse affine transform. A singular matrix has no
// inverse and yields an *UnsupportedError.
func (m *Matrix) Inverse() (Data, error) {
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(4, 4, m.M[:])); err != nil {
		return nil, unsupported(KindMatrix, "inverse", err.Error())
	}
	out := &Matrix{base: m.cloneBase()}
	out.cacheID = ""
	for r := range 4 {
		for c := range 4 {
			out.M[4*r+c] = inv.At(r, c)
		}
	}
	// in = M^-1 * (out - offset), so the new offset is -M^-1 * offset.
	for r := range 4 {
		var s float64
		for c := range 4 {
			s += out.M[4*r+c] * m.Offset[c]
		}
		out.Offset[r] = -s
	}
	return out, nil
}

// IsIdentity reports whether M is the identity and Offset is zero.
func (m *Matrix) IsIdentity() bool {
	for i := range m.M {
		if !nearlyEqual(m.M[i], IdentityMat4[i]) {
			return false
		}
	}
	return m.IsOffsetZero()
}

// IsOffsetZero reports whether the offset vector is zero.
func (m *Matrix) IsOffsetZero() bool {
	return m.Offset == f64.Vec4{}
}

// IsDiagonal reports whether M has no off-diagonal coefficients.
func (m *Matrix) IsDiagonal() bool {
	for r := range 4 {
		for c := range 4 {
			if r != c && m.M[4*r+c] != 0 {
				return false
			}
		}
	}
	return true
}

// IdentityReplacement returns nil: an identity matrix does not clamp.
func (*Matrix) IdentityReplacement() Data { return nil }

// Equal reports whether other is a matrix with the same coefficients.
func (m *Matrix) Equal(other Data) bool {
	o, ok := other.(*Matrix)
	if !ok {
		return false
	}
	for i := range m.M {
		if !nearlyEqual(m.M[i], o.M[i]) {
			return false
		}
	}
	for i := range m.Offset {
		if !nearlyEqual(m.Offset[i], o.Offset[i]) {
			return false
		}
	}
	return true
}

// HasChannelCrosstalk reports whether M has off-diagonal coefficients.
func (m *Matrix) HasChannelCrosstalk() bool { return !m.IsDiagonal() }

// Compose returns the matrix applying m and then next.
func (m *Matrix) Compose(next *Matrix) *Matrix {
	out := &Matrix{base: m.cloneBase()}
	out.cacheID = ""
	out.Metadata().Combine(next.meta)
	for r := range 4 {
		for c := range 4 {
			var s float64
			for k := range 4 {
				s += next.M[4*r+k] * m.M[4*k+c]
			}
			out.M[4*r+c] = s
		}
		s := next.Offset[r]
		for k := range 4 {
			s += next.M[4*r+k] * m.Offset[k]
		}
		out.Offset[r] = s
	}
	return out
}

// Apply transforms one RGBA value.
func (m *Matrix) Apply(v f64.Vec4) f64.Vec4 {
	var out f64.Vec4
	for r := range 4 {
		out[r] = m.M[4*r]*v[0] + m.M[4*r+1]*v[1] + m.M[4*r+2]*v[2] + m.M[4*r+3]*v[3] + m.Offset[r]
	}
	return out
}
