// Package lut holds the table numerics shared by the operation data model,
// the optimizer and both execution backends: 1D sampling over a regular or
// half-float domain, 3D trilinear and tetrahedral interpolation, identity
// tables and monotonic inversion.
//
// 1D tables are stored as n RGB triples. 3D tables store n^3 RGB triples
// with blue varying fastest.
package lut

import (
	"math"

	"github.com/x448/float16"
)

// HalfDomainSize is the number of entries of a half-float domain table: one
// per 16-bit code.
const HalfDomainSize = 65536

// Identity1D returns an identity table of n entries. A half-domain table
// maps every half-float code to the value it encodes.
func Identity1D(n int, half bool) []float32 {
	t := make([]float32, 3*n)
	for i := range n {
		var v float32
		if half {
			v = float16.Frombits(uint16(i)).Float32()
		} else {
			v = float32(float64(i) / float64(n-1))
		}
		t[3*i], t[3*i+1], t[3*i+2] = v, v, v
	}
	return t
}

// Sample1D evaluates channel ch of a regular-domain table at x using linear
// interpolation. The domain is [0, 1]; inputs outside it are clamped.
func Sample1D(t []float32, n, ch int, x float32) float32 {
	if !(x > 0) {
		return t[ch]
	}
	if x >= 1 {
		return t[3*(n-1)+ch]
	}
	pos := x * float32(n-1)
	i := int(pos)
	if i >= n-1 {
		return t[3*(n-1)+ch]
	}
	f := pos - float32(i)
	lo := t[3*i+ch]
	hi := t[3*(i+1)+ch]
	return lo + f*(hi-lo)
}

// Nearest1D evaluates channel ch of a regular-domain table at x using
// nearest-neighbour lookup.
func Nearest1D(t []float32, n, ch int, x float32) float32 {
	if !(x > 0) {
		return t[ch]
	}
	if x >= 1 {
		return t[3*(n-1)+ch]
	}
	i := int(x*float32(n-1) + 0.5)
	return t[3*i+ch]
}

// SampleHalf evaluates channel ch of a half-domain table at x,
// interpolating linearly between the two half-float codes that bracket x.
func SampleHalf(t []float32, ch int, x float32) float32 {
	lo, hi, f := HalfBracket(x)
	a := t[3*int(lo)+ch]
	if f == 0 {
		return a
	}
	b := t[3*int(hi)+ch]
	return a + f*(b-a)
}

// NearestHalf evaluates channel ch of a half-domain table at x using the
// nearest half-float code.
func NearestHalf(t []float32, ch int, x float32) float32 {
	return t[3*int(float16.Fromfloat32(x).Bits())+ch]
}

// HalfBracket returns the codes of the half floats bracketing x in value
// order and the interpolation weight of hi. When x is exactly representable
// or not finite, lo == hi and f == 0.
func HalfBracket(x float32) (lo, hi uint16, f float32) {
	h := float16.Fromfloat32(x)
	code := h.Bits()
	v := h.Float32()
	if v == x || h.IsNaN() || h.IsInf(0) {
		return code, code, 0
	}
	var next uint16
	if x > v {
		next = nextUp(code)
	} else {
		next = nextDown(code)
	}
	nv := float16.Frombits(next).Float32()
	if math.IsInf(float64(nv), 0) {
		return code, code, 0
	}
	if nv < v {
		code, next = next, code
		v, nv = nv, v
	}
	return code, next, (x - v) / (nv - v)
}

func nextUp(code uint16) uint16 {
	switch {
	case code == 0x8000:
		return 0x0001
	case code&0x8000 == 0:
		return code + 1
	default:
		return code - 1
	}
}

func nextDown(code uint16) uint16 {
	switch {
	case code == 0x0000:
		return 0x8001
	case code&0x8000 == 0:
		return code - 1
	default:
		return code + 1
	}
}

// HalfCodeIsFinite reports whether a half-float code encodes a finite value.
func HalfCodeIsFinite(code uint16) bool {
	return code&0x7C00 != 0x7C00
}

// HalfDomainValues returns the finite half-float values in ascending order
// together with their codes. Negative zero is skipped.
func HalfDomainValues() (values []float64, codes []uint16) {
	values = make([]float64, 0, 63488)
	codes = make([]uint16, 0, 63488)
	// Negative values from the most negative finite code toward -0.
	for c := 0xFBFF; c > 0x8000; c-- {
		values = append(values, float64(float16.Frombits(uint16(c)).Float32()))
		codes = append(codes, uint16(c))
	}
	for c := 0x0000; c <= 0x7BFF; c++ {
		values = append(values, float64(float16.Frombits(uint16(c)).Float32()))
		codes = append(codes, uint16(c))
	}
	return values, codes
}

// IsIdentity1D reports whether a table equals the identity of its domain
// within tol. Non-finite half codes are ignored.
func IsIdentity1D(t []float32, n int, half bool, tol float64) bool {
	for i := range n {
		var want float64
		if half {
			if !HalfCodeIsFinite(uint16(i)) {
				continue
			}
			want = float64(float16.Frombits(uint16(i)).Float32())
		} else {
			want = float64(i) / float64(n-1)
		}
		for ch := range 3 {
			if math.Abs(float64(t[3*i+ch])-want) > tol {
				return false
			}
		}
	}
	return true
}

// ChannelRange returns the minimum and maximum value of channel ch,
// skipping non-finite entries.
func ChannelRange(t []float32, n, ch int) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := range n {
		v := float64(t[3*i+ch])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
