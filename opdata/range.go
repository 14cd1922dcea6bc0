package opdata

import "math"

// Range maps [MinIn, MaxIn] affinely onto [MinOut, MaxOut] and clamps to
// the output bounds. Either side may be left open; an open side neither
// clamps nor contributes to the scale, which is then 1. Alpha passes
// through unchanged.
type Range struct {
	base
	HasMin, HasMax bool
	MinIn, MinOut  float64
	MaxIn, MaxOut  float64
}

// NewRange returns a range bounded on both sides.
func NewRange(minIn, maxIn, minOut, maxOut float64) *Range {
	return &Range{
		HasMin: true, MinIn: minIn, MinOut: minOut,
		HasMax: true, MaxIn: maxIn, MaxOut: maxOut,
	}
}

// NewMinRange returns a range bounded below only.
func NewMinRange(minIn, minOut float64) *Range {
	return &Range{HasMin: true, MinIn: minIn, MinOut: minOut}
}

// NewMaxRange returns a range bounded above only.
func NewMaxRange(maxIn, maxOut float64) *Range {
	return &Range{HasMax: true, MaxIn: maxIn, MaxOut: maxOut}
}

// Kind returns KindRange.
func (*Range) Kind() Kind { return KindRange }

// Validate checks bound ordering.
func (r *Range) Validate() error {
	if r.HasMin && !finite(r.MinIn, r.MinOut) {
		return invalidf(KindRange, "min", "bounds must be finite")
	}
	if r.HasMax && !finite(r.MaxIn, r.MaxOut) {
		return invalidf(KindRange, "max", "bounds must be finite")
	}
	if r.HasMin && r.HasMax {
		if r.MaxIn <= r.MinIn {
			return &ValidationError{Kind: KindRange, Param: "maxIn", Value: r.MaxIn, Limit: r.MinIn, Bound: BoundLower}
		}
		if r.MaxOut <= r.MinOut {
			return &ValidationError{Kind: KindRange, Param: "maxOut", Value: r.MaxOut, Limit: r.MinOut, Bound: BoundLower}
		}
	}
	return nil
}

// Finalize validates and computes the cache identifier.
func (r *Range) Finalize() error {
	if err := r.Validate(); err != nil {
		return err
	}
	id := newIDBuilder(KindRange)
	if r.HasMin {
		id.int(1).float(r.MinIn, r.MinOut)
	} else {
		id.int(0)
	}
	if r.HasMax {
		id.int(1).float(r.MaxIn, r.MaxOut)
	} else {
		id.int(0)
	}
	r.cacheID = id.String()
	return nil
}

// Scale returns the slope of the affine part.
func (r *Range) Scale() float64 {
	if r.HasMin && r.HasMax {
		return (r.MaxOut - r.MinOut) / (r.MaxIn - r.MinIn)
	}
	return 1
}

// Offset returns the intercept of the affine part.
func (r *Range) Offset() float64 {
	switch {
	case r.HasMin:
		return r.MinOut - r.Scale()*r.MinIn
	case r.HasMax:
		return r.MaxOut - r.MaxIn
	default:
		return 0
	}
}

// LowerClamp returns the lower output bound, or -Inf if open.
func (r *Range) LowerClamp() float64 {
	if r.HasMin {
		return r.MinOut
	}
	return math.Inf(-1)
}

// UpperClamp returns the upper output bound, or +Inf if open.
func (r *Range) UpperClamp() float64 {
	if r.HasMax {
		return r.MaxOut
	}
	return math.Inf(1)
}

// Apply evaluates the range on one channel value.
func (r *Range) Apply(x float64) float64 {
	y := x*r.Scale() + r.Offset()
	if r.HasMin && y < r.MinOut {
		y = r.MinOut
	}
	if r.HasMax && y > r.MaxOut {
		y = r.MaxOut
	}
	return y
}

// Clone returns a copy.
func (r *Range) Clone() Data {
	c := *r
	c.base = r.cloneBase()
	return &c
}

// Inverse swaps the input and output bounds. The clamp of the forward
// range is not undone: values outside the forward output bounds come back
// clamped to the forward input bounds.
func (r *Range) Inverse() (Data, error) {
	inv := &Range{
		base:   base{meta: r.meta.Clone()},
		HasMin: r.HasMin, MinIn: r.MinOut, MinOut: r.MinIn,
		HasMax: r.HasMax, MaxIn: r.MaxOut, MaxOut: r.MaxIn,
	}
	return inv, nil
}

// IsIdentity reports whether the range has no bounds at all.
func (r *Range) IsIdentity() bool { return !r.HasMin && !r.HasMax }

// IsClampOnly reports whether the affine part is the identity, so the
// range only clamps.
func (r *Range) IsClampOnly() bool {
	return r.Scale() == 1 && r.Offset() == 0
}

// IsBounded reports whether both sides are closed.
func (r *Range) IsBounded() bool { return r.HasMin && r.HasMax }

// IdentityReplacement returns nil: an unbounded range does not clamp.
func (*Range) IdentityReplacement() Data { return nil }

// Equal reports whether other has the same bounds.
func (r *Range) Equal(other Data) bool {
	o, ok := other.(*Range)
	if !ok || r.HasMin != o.HasMin || r.HasMax != o.HasMax {
		return false
	}
	if r.HasMin && !(nearlyEqual(r.MinIn, o.MinIn) && nearlyEqual(r.MinOut, o.MinOut)) {
		return false
	}
	if r.HasMax && !(nearlyEqual(r.MaxIn, o.MaxIn) && nearlyEqual(r.MaxOut, o.MaxOut)) {
		return false
	}
	return true
}

// HasChannelCrosstalk returns false.
func (*Range) HasChannelCrosstalk() bool { return false }

// CanCompose reports whether r followed by next can be expressed as one
// range: both must be bounded on both sides and the composed output
// interval must not collapse to a point.
func (r *Range) CanCompose(next *Range) bool {
	if !r.IsBounded() || !next.IsBounded() {
		return false
	}
	lo, hi := r.composedBounds(next)
	return hi > lo
}

func (r *Range) composedBounds(next *Range) (lo, hi float64) {
	s, o := next.Scale(), next.Offset()
	lo = math.Max(next.MinOut, s*r.MinOut+o)
	hi = math.Min(next.MaxOut, s*r.MaxOut+o)
	return lo, hi
}

// Compose returns the range applying r and then next. The caller must have
// checked CanCompose.
func (r *Range) Compose(next *Range) *Range {
	lo, hi := r.composedBounds(next)
	s := next.Scale() * r.Scale()
	o := next.Scale()*r.Offset() + next.Offset()
	out := NewRange((lo-o)/s, (hi-o)/s, lo, hi)
	out.meta = r.meta.Clone()
	out.Metadata().Combine(next.meta)
	return out
}
