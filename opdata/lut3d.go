package opdata

import (
	"math"

	"github.com/gogpu/colorpipe/internal/lut"
)

// Lut3D grid size limits.
const (
	MinLut3DGridSize = 2
	MaxLut3DGridSize = 129
)

const lut3DEqualTolerance = 1e-7

// Lut3D is a 3D lookup table over the [0, 1] RGB cube. Alpha passes
// through unchanged.
//
// Values holds GridSize^3 RGB triples with blue varying fastest: the triple
// for grid point (r, g, b) starts at ((r*N+g)*N+b)*3.
type Lut3D struct {
	base
	GridSize      int
	Values        []float32
	Interpolation Interpolation
	FileBitDepth  BitDepth
}

// NewLut3D returns an identity table with n points per axis.
func NewLut3D(n int) *Lut3D {
	return &Lut3D{GridSize: n, Values: lut.Identity3D(n)}
}

// NewLut3DFrom wraps an existing table.
func NewLut3DFrom(n int, values []float32) *Lut3D {
	return &Lut3D{GridSize: n, Values: values}
}

// Kind returns KindLut3D.
func (*Lut3D) Kind() Kind { return KindLut3D }

// Validate checks the grid size and table length.
func (l *Lut3D) Validate() error {
	if err := checkBounds(KindLut3D, "grid size", float64(l.GridSize), MinLut3DGridSize, MaxLut3DGridSize); err != nil {
		return err
	}
	n := l.GridSize
	if len(l.Values) != 3*n*n*n {
		return invalidf(KindLut3D, "values", "expected %d values for grid size %d, got %d", 3*n*n*n, n, len(l.Values))
	}
	for _, v := range l.Values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return invalidf(KindLut3D, "values", "table values must be finite")
		}
	}
	return nil
}

// Finalize validates and computes the cache identifier.
func (l *Lut3D) Finalize() error {
	if err := l.Validate(); err != nil {
		return err
	}
	l.cacheID = newIDBuilder(KindLut3D).int(l.GridSize, int(l.interp())).float32s(l.Values).String()
	return nil
}

// Tetrahedral reports whether the table is sampled with tetrahedral
// interpolation. Every other interpolation setting samples trilinearly.
func (l *Lut3D) Tetrahedral() bool { return l.Interpolation == InterpTetrahedral }

func (l *Lut3D) interp() Interpolation {
	if l.Tetrahedral() {
		return InterpTetrahedral
	}
	return InterpLinear
}

// Eval samples the table at (r, g, b).
func (l *Lut3D) Eval(r, g, b float32) (float32, float32, float32) {
	if l.Tetrahedral() {
		return lut.Tetrahedral(l.Values, l.GridSize, r, g, b)
	}
	return lut.Trilinear(l.Values, l.GridSize, r, g, b)
}

// Clone returns a deep copy.
func (l *Lut3D) Clone() Data {
	c := *l
	c.base = l.cloneBase()
	c.Values = append([]float32(nil), l.Values...)
	return &c
}

// Inverse is not supported for 3D tables.
func (*Lut3D) Inverse() (Data, error) {
	return nil, unsupported(KindLut3D, "inverse", "3D tables have no closed-form inverse")
}

// IsIdentity reports whether the table equals the identity grid.
func (l *Lut3D) IsIdentity() bool {
	return nearlyEqualSlices32(l.Values, lut.Identity3D(l.GridSize), lut3DEqualTolerance)
}

// IdentityReplacement returns the [0, 1] clamp the table performs.
func (*Lut3D) IdentityReplacement() Data { return NewRange(0, 1, 0, 1) }

// Equal reports whether other has the same grid and values.
func (l *Lut3D) Equal(other Data) bool {
	o, ok := other.(*Lut3D)
	if !ok {
		return false
	}
	return l.GridSize == o.GridSize && l.interp() == o.interp() &&
		nearlyEqualSlices32(l.Values, o.Values, lut3DEqualTolerance)
}

// HasChannelCrosstalk returns true unless the table is an identity.
func (l *Lut3D) HasChannelCrosstalk() bool { return !l.IsIdentity() }
