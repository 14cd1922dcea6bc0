package ops

import (
	"fmt"

	"github.com/gogpu/colorpipe/opdata"
)

// CanCombineWith reports whether o followed by next can be replaced by one
// op without loss: two matrices, two composable bounded ranges, or two
// basic gammas of one family. Both ops must be finalized.
func (o *Op) CanCombineWith(next *Op) bool {
	if o.render == nil || next.render == nil {
		return false
	}
	switch a := o.render.(type) {
	case *opdata.Matrix:
		_, ok := next.render.(*opdata.Matrix)
		return ok
	case *opdata.Range:
		b, ok := next.render.(*opdata.Range)
		return ok && a.CanCompose(b)
	case *opdata.Gamma:
		b, ok := next.render.(*opdata.Gamma)
		return ok && a.CanCompose(b)
	default:
		return false
	}
}

// CombineWith returns the finalized forward op equivalent to o followed by
// next. It returns an *opdata.UnsupportedError when CanCombineWith is false:
// calling it without that check is a programming error.
func (o *Op) CombineWith(next *Op) (*Op, error) {
	if !o.CanCombineWith(next) {
		return nil, &opdata.UnsupportedError{
			Kind: o.Kind(),
			Op:   "combine",
			Msg:  fmt.Sprintf("%s cannot be combined with %s", o, next),
		}
	}
	var d opdata.Data
	switch a := o.render.(type) {
	case *opdata.Matrix:
		d = a.Compose(next.render.(*opdata.Matrix))
	case *opdata.Range:
		d = a.Compose(next.render.(*opdata.Range))
	case *opdata.Gamma:
		d = a.Compose(next.render.(*opdata.Gamma))
	}
	out := New(d, opdata.DirectionForward)
	if err := out.Finalize(); err != nil {
		return nil, err
	}
	return out, nil
}

// pairReplacement returns what remains of a followed by its inverse b: the
// clamp a applies before b undoes it, or nil when nothing remains. ok is
// false when the pair cannot be removed exactly.
func pairReplacement(a *Op) (rep opdata.Data, ok bool) {
	switch r := a.render.(type) {
	case *opdata.Range:
		if r.IsIdentity() {
			return nil, true
		}
		c := &opdata.Range{HasMin: r.HasMin, HasMax: r.HasMax}
		c.MinIn, c.MinOut = r.MinIn, r.MinIn
		c.MaxIn, c.MaxOut = r.MaxIn, r.MaxIn
		return c, true
	case *opdata.InvLut1D:
		lo, hi, uniform := r.UniformOutputRange()
		if !uniform {
			return nil, false
		}
		return opdata.NewRange(lo, hi, lo, hi), true
	default:
		return a.render.IdentityReplacement(), true
	}
}
