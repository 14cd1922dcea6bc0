package opdata

import (
	"math"

	"github.com/gogpu/colorpipe/internal/lut"
)

// FastInvLut1DSize is the size of the regular-domain table baked for an
// inverse whose forward output stays inside [0, 1].
const FastInvLut1DSize = 4096

// InvLut1D evaluates the inverse of a monotonic Lut1D.
//
// Finalize bakes a forward table approximating the inverse (the "fast"
// table). Both execution backends render that table, so they agree with
// each other exactly and with the true inverse to within the resolution of
// the fast table.
type InvLut1D struct {
	base
	Forward *Lut1D

	fast *Lut1D
}

// NewInvLut1D returns the inverse of forward. The table is not copied.
func NewInvLut1D(forward *Lut1D) *InvLut1D {
	return &InvLut1D{Forward: forward}
}

// Kind returns KindInvLut1D.
func (*InvLut1D) Kind() Kind { return KindInvLut1D }

// Validate checks the forward table and that every channel is monotonic.
func (l *InvLut1D) Validate() error {
	if l.Forward == nil {
		return invalidf(KindInvLut1D, "forward", "missing forward table")
	}
	if err := l.Forward.Validate(); err != nil {
		return err
	}
	_, entries := l.domain()
	for ch := range 3 {
		if lut.Monotonic(l.channelValues(entries, ch)) == 0 {
			return invalidf(KindInvLut1D, "values", "channel %d is not monotonic", ch)
		}
	}
	return nil
}

// Finalize validates, bakes the fast table and computes the cache
// identifier.
func (l *InvLut1D) Finalize() error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := l.Forward.Finalize(); err != nil {
		return err
	}
	l.fast = l.bake()
	if err := l.fast.Finalize(); err != nil {
		return err
	}
	l.cacheID = newIDBuilder(KindInvLut1D).str(l.Forward.CacheID()).String()
	return nil
}

// Fast returns the baked forward table. It bakes on demand when the value
// has not been finalized.
func (l *InvLut1D) Fast() *Lut1D {
	if l.fast == nil {
		l.fast = l.bake()
	}
	return l.fast
}

// domain returns the forward table's input values in ascending order and
// the table entry index of each.
func (l *InvLut1D) domain() ([]float64, []int) {
	f := l.Forward
	if f.HalfDomain {
		values, codes := lut.HalfDomainValues()
		idx := make([]int, len(codes))
		for i, c := range codes {
			idx[i] = int(c)
		}
		return values, idx
	}
	n := f.Size()
	xs := make([]float64, n)
	idx := make([]int, n)
	for i := range n {
		xs[i] = float64(i) / float64(n-1)
		idx[i] = i
	}
	return xs, idx
}

func (l *InvLut1D) channelValues(entries []int, ch int) []float64 {
	ys := make([]float64, len(entries))
	for i, e := range entries {
		ys[i] = float64(l.Forward.Values[3*e+ch])
	}
	return ys
}

func (l *InvLut1D) bake() *Lut1D {
	xs, entries := l.domain()
	var ys [3][]float64
	var dirs [3]int
	for ch := range 3 {
		ys[ch] = l.channelValues(entries, ch)
		dirs[ch] = lut.Monotonic(ys[ch])
		if dirs[ch] == 0 {
			dirs[ch] = 1
		}
	}

	lo, hi := l.Forward.OutputRange()
	if !l.Forward.HalfDomain && lo >= 0 && hi <= 1 {
		fast := &Lut1D{Values: make([]float32, 3*FastInvLut1DSize)}
		for i := range FastInvLut1DSize {
			y := float64(i) / float64(FastInvLut1DSize-1)
			for ch := range 3 {
				fast.Values[3*i+ch] = float32(lut.InvertMonotonic(xs, ys[ch], dirs[ch], y))
			}
		}
		return fast
	}

	fast := &Lut1D{Values: lut.Identity1D(lut.HalfDomainSize, true), HalfDomain: true}
	for code := range lut.HalfDomainSize {
		y := float64(fast.Values[3*code])
		if math.IsNaN(y) {
			continue
		}
		for ch := range 3 {
			fast.Values[3*code+ch] = float32(lut.InvertMonotonic(xs, ys[ch], dirs[ch], y))
		}
	}
	return fast
}

// Clone returns a deep copy.
func (l *InvLut1D) Clone() Data {
	c := &InvLut1D{base: l.cloneBase()}
	if l.Forward != nil {
		c.Forward = l.Forward.Clone().(*Lut1D)
	}
	if l.fast != nil {
		c.fast = l.fast.Clone().(*Lut1D)
	}
	return c
}

// Inverse returns a copy of the forward table.
func (l *InvLut1D) Inverse() (Data, error) {
	fwd := l.Forward.Clone().(*Lut1D)
	fwd.meta = l.meta.Clone()
	return fwd, nil
}

// IsIdentity reports whether the forward table is an identity.
func (l *InvLut1D) IsIdentity() bool { return l.Forward.IsIdentity() }

// IdentityReplacement returns the [0, 1] clamp of a regular-domain table.
func (l *InvLut1D) IdentityReplacement() Data { return l.Forward.IdentityReplacement() }

// Equal reports whether other inverts the same forward table.
func (l *InvLut1D) Equal(other Data) bool {
	o, ok := other.(*InvLut1D)
	return ok && l.Forward.Equal(o.Forward)
}

// HasChannelCrosstalk returns false.
func (*InvLut1D) HasChannelCrosstalk() bool { return false }

// UniformOutputRange returns the common output range of the three forward
// channels. ok is false when the channels cover different ranges.
func (l *InvLut1D) UniformOutputRange() (lo, hi float64, ok bool) {
	n := l.Forward.Size()
	lo, hi = lut.ChannelRange(l.Forward.Values, n, 0)
	for ch := 1; ch < 3; ch++ {
		a, b := lut.ChannelRange(l.Forward.Values, n, ch)
		if a != lo || b != hi {
			return 0, 0, false
		}
	}
	return lo, hi, true
}
