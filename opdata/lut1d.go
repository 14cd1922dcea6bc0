package opdata

import (
	"math"

	"github.com/gogpu/colorpipe/internal/lut"
)

// Lut1D size limits.
const (
	MinLut1DSize = 2
	MaxLut1DSize = 1 << 20
)

// lut1DEqualTolerance bounds the per-entry difference of tables that are
// considered equal or identity without any lossy optimization.
const lut1DEqualTolerance = 1e-7

// Lut1D is a per-channel lookup table.
//
// Values holds Size() RGB triples. With a regular domain, entry i is the
// output for input i/(Size()-1) and inputs are clamped to [0, 1]. With
// HalfDomain, the table has 65536 entries indexed by the 16-bit half-float
// code of the input, so it covers the whole half-float range.
type Lut1D struct {
	base
	Values        []float32
	HalfDomain    bool
	Interpolation Interpolation

	// FileBitDepth is the depth the table was authored at. It is recorded
	// for the composition policy that resamples by bit depth.
	FileBitDepth BitDepth
}

// NewLut1D returns an identity table of n entries, or a half-domain
// identity table when half is set (n is then ignored).
func NewLut1D(n int, half bool) *Lut1D {
	if half {
		n = lut.HalfDomainSize
	}
	return &Lut1D{Values: lut.Identity1D(n, half), HalfDomain: half}
}

// NewLut1DFrom wraps an existing table of RGB triples.
func NewLut1DFrom(values []float32, half bool) *Lut1D {
	return &Lut1D{Values: values, HalfDomain: half}
}

// Kind returns KindLut1D.
func (*Lut1D) Kind() Kind { return KindLut1D }

// Size returns the number of entries.
func (l *Lut1D) Size() int { return len(l.Values) / 3 }

// Validate checks the table shape and values.
func (l *Lut1D) Validate() error {
	if len(l.Values)%3 != 0 {
		return invalidf(KindLut1D, "values", "length %d is not a multiple of 3", len(l.Values))
	}
	n := l.Size()
	if err := checkBounds(KindLut1D, "size", float64(n), MinLut1DSize, MaxLut1DSize); err != nil {
		return err
	}
	if l.HalfDomain {
		if n != lut.HalfDomainSize {
			return invalidf(KindLut1D, "size", "half-domain table must have %d entries, got %d", lut.HalfDomainSize, n)
		}
		return nil
	}
	for _, v := range l.Values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return invalidf(KindLut1D, "values", "table values must be finite")
		}
	}
	return nil
}

// Finalize validates and computes the cache identifier.
func (l *Lut1D) Finalize() error {
	if err := l.Validate(); err != nil {
		return err
	}
	id := newIDBuilder(KindLut1D).int(l.Size(), int(l.interp()))
	if l.HalfDomain {
		id.int(1)
	} else {
		id.int(0)
	}
	l.cacheID = id.float32s(l.Values).String()
	return nil
}

func (l *Lut1D) interp() Interpolation {
	if l.Interpolation == InterpNearest {
		return InterpNearest
	}
	return InterpLinear
}

// Eval evaluates channel ch at x.
func (l *Lut1D) Eval(ch int, x float32) float32 {
	switch {
	case l.HalfDomain && l.interp() == InterpNearest:
		return lut.NearestHalf(l.Values, ch, x)
	case l.HalfDomain:
		return lut.SampleHalf(l.Values, ch, x)
	case l.interp() == InterpNearest:
		return lut.Nearest1D(l.Values, l.Size(), ch, x)
	default:
		return lut.Sample1D(l.Values, l.Size(), ch, x)
	}
}

// Clone returns a deep copy.
func (l *Lut1D) Clone() Data {
	c := *l
	c.base = l.cloneBase()
	c.Values = append([]float32(nil), l.Values...)
	return &c
}

// Inverse returns the inverse evaluation of this table.
func (l *Lut1D) Inverse() (Data, error) {
	fwd := l.Clone().(*Lut1D)
	inv := &InvLut1D{base: base{meta: fwd.meta.Clone()}, Forward: fwd}
	return inv, nil
}

// IsIdentity reports whether the table equals the identity of its domain.
func (l *Lut1D) IsIdentity() bool {
	return lut.IsIdentity1D(l.Values, l.Size(), l.HalfDomain, lut1DEqualTolerance)
}

// IdentityReplacement returns the [0, 1] clamp of a regular-domain table.
func (l *Lut1D) IdentityReplacement() Data {
	if l.HalfDomain {
		return nil
	}
	return NewRange(0, 1, 0, 1)
}

// Equal reports whether other is a table with the same domain and values.
func (l *Lut1D) Equal(other Data) bool {
	o, ok := other.(*Lut1D)
	if !ok {
		return false
	}
	return l.HalfDomain == o.HalfDomain &&
		l.interp() == o.interp() &&
		nearlyEqualSlices32(l.Values, o.Values, lut1DEqualTolerance)
}

// HasChannelCrosstalk returns false.
func (*Lut1D) HasChannelCrosstalk() bool { return false }

// OutputRange returns the smallest and largest finite table value over all
// three channels.
func (l *Lut1D) OutputRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for ch := range 3 {
		a, b := lut.ChannelRange(l.Values, l.Size(), ch)
		lo = math.Min(lo, a)
		hi = math.Max(hi, b)
	}
	return lo, hi
}
