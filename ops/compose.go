package ops

import (
	"fmt"

	"github.com/gogpu/colorpipe/internal/lut"
	"github.com/gogpu/colorpipe/opdata"
)

// CompositionPolicy selects the domain of a table built by composing two
// tables.
type CompositionPolicy uint8

const (
	// CompositionPreserveDomain keeps the domain of the first table.
	CompositionPreserveDomain CompositionPolicy = iota
	// CompositionResampleBitDepth sizes the domain after the pipeline's
	// input bit depth: one entry per code value for integer depths and a
	// half-float domain for float depths.
	CompositionResampleBitDepth
	// CompositionResampleBig resamples 1D tables to 65536 entries and 3D
	// tables to at least a 65-point grid.
	CompositionResampleBig
)

// String returns the policy name.
func (p CompositionPolicy) String() string {
	switch p {
	case CompositionPreserveDomain:
		return "preserve"
	case CompositionResampleBitDepth:
		return "bitdepth"
	case CompositionResampleBig:
		return "big"
	default:
		return fmt.Sprintf("CompositionPolicy(%d)", p)
	}
}

const (
	bigLut1DSize   = 65536
	bigLut3DGrid   = 65
	maxComposeGrid = opdata.MaxLut3DGridSize
)

// CanComposeWith reports whether o followed by next can be approximated by
// one resampled table: two 1D tables (forward or inverse evaluation) or two
// 3D tables.
func (o *Op) CanComposeWith(next *Op) bool {
	if o.render == nil || next.render == nil {
		return false
	}
	switch o.render.(type) {
	case *opdata.Lut1D, *opdata.InvLut1D:
		switch next.render.(type) {
		case *opdata.Lut1D, *opdata.InvLut1D:
			return true
		}
	case *opdata.Lut3D:
		_, ok := next.render.(*opdata.Lut3D)
		return ok
	}
	return false
}

// ComposeWith returns a finalized forward op whose table samples o followed
// by next on the domain chosen by policy. inputDepth drives
// CompositionResampleBitDepth. The result approximates the pair; how close
// it is depends on the table resolution.
func (o *Op) ComposeWith(next *Op, policy CompositionPolicy, inputDepth opdata.BitDepth) (*Op, error) {
	if !o.CanComposeWith(next) {
		return nil, &opdata.UnsupportedError{
			Kind: o.Kind(),
			Op:   "compose",
			Msg:  fmt.Sprintf("%s cannot be composed with %s", o, next),
		}
	}
	var d opdata.Data
	if a, ok := o.render.(*opdata.Lut3D); ok {
		d = composeLut3D(a, next.render.(*opdata.Lut3D), policy)
	} else {
		d = composeLut1D(forwardTable(o.render), forwardTable(next.render), policy, inputDepth)
	}
	d.Metadata().Combine(o.render.Metadata())
	d.Metadata().Combine(next.render.Metadata())
	out := New(d, opdata.DirectionForward)
	if err := out.Finalize(); err != nil {
		return nil, err
	}
	return out, nil
}

// forwardTable returns the table a 1D op renders.
func forwardTable(d opdata.Data) *opdata.Lut1D {
	switch t := d.(type) {
	case *opdata.Lut1D:
		return t
	case *opdata.InvLut1D:
		return t.Fast()
	default:
		panic(fmt.Sprintf("ops: %s is not a 1D table", d.Kind()))
	}
}

// lut1DDomain returns the size and domain type of a composed 1D table.
func lut1DDomain(a *opdata.Lut1D, policy CompositionPolicy, depth opdata.BitDepth) (n int, half bool) {
	switch policy {
	case CompositionResampleBitDepth:
		switch {
		case depth.IsFloat():
			return lut.HalfDomainSize, true
		case depth.IsValid():
			return depth.IdealLutSize(), false
		}
	case CompositionResampleBig:
		return bigLut1DSize, false
	}
	return a.Size(), a.HalfDomain
}

func composeLut1D(a, b *opdata.Lut1D, policy CompositionPolicy, depth opdata.BitDepth) *opdata.Lut1D {
	n, half := lut1DDomain(a, policy, depth)
	values := lut.Identity1D(n, half)
	for i := range n {
		for ch := range 3 {
			x := values[3*i+ch]
			values[3*i+ch] = b.Eval(ch, a.Eval(ch, x))
		}
	}
	out := opdata.NewLut1DFrom(values, half)
	out.Interpolation = opdata.InterpLinear
	return out
}

func composeLut3D(a, b *opdata.Lut3D, policy CompositionPolicy) *opdata.Lut3D {
	n := max(a.GridSize, b.GridSize)
	if policy == CompositionResampleBig {
		n = max(n, bigLut3DGrid)
	}
	n = min(n, maxComposeGrid)

	values := lut.Identity3D(n)
	for i := 0; i < len(values); i += 3 {
		r, g, bl := a.Eval(values[i], values[i+1], values[i+2])
		values[i], values[i+1], values[i+2] = b.Eval(r, g, bl)
	}
	out := opdata.NewLut3DFrom(n, values)
	out.Interpolation = opdata.InterpLinear
	if a.Tetrahedral() || b.Tetrahedral() {
		out.Interpolation = opdata.InterpTetrahedral
	}
	return out
}
