package ops

import (
	"fmt"
	"math"

	"github.com/gogpu/colorpipe/internal/lut"
	"github.com/gogpu/colorpipe/opdata"
)

// OptimizationFlags selects the rewrites Optimize may apply.
type OptimizationFlags uint32

const (
	// OptimizeIdentity removes identity ops, keeping the clamp they perform.
	OptimizeIdentity OptimizationFlags = 1 << iota
	// OptimizeInversePairs removes an op directly followed by its inverse.
	OptimizeInversePairs
	// OptimizeCombineMatrix multiplies adjacent matrices.
	OptimizeCombineMatrix
	// OptimizeCombineGamma merges adjacent basic gammas of one family.
	OptimizeCombineGamma
	// OptimizeCombineRange merges adjacent bounded ranges.
	OptimizeCombineRange
	// OptimizeCompLut1D resamples adjacent 1D tables into one.
	OptimizeCompLut1D
	// OptimizeCompLut3D resamples adjacent 3D tables into one.
	OptimizeCompLut3D
)

// Presets.
const (
	OptimizationNone OptimizationFlags = 0

	OptimizationLossless = OptimizeIdentity | OptimizeInversePairs |
		OptimizeCombineMatrix | OptimizeCombineGamma | OptimizeCombineRange

	OptimizationLossy = OptimizationLossless | OptimizeCompLut1D | OptimizeCompLut3D

	OptimizationDefault = OptimizationLossless
)

// Has reports whether every flag of o is set in f.
func (f OptimizationFlags) Has(o OptimizationFlags) bool { return f&o == o }

// Tolerances are the largest per-entry deviations from the identity a
// composed table may have and still be removed as an identity.
type Tolerances struct {
	Lut1DIdentity float64
	Lut3DIdentity float64
}

// DefaultTolerances returns the tolerances used by DefaultOptimizerConfig.
func DefaultTolerances() Tolerances {
	return Tolerances{Lut1DIdentity: 1e-5, Lut3DIdentity: 1e-5}
}

// OptimizerConfig controls Optimize.
type OptimizerConfig struct {
	Flags         OptimizationFlags
	Policy        CompositionPolicy
	InputBitDepth opdata.BitDepth
	Tolerances    Tolerances
	// MaxPasses bounds the number of rewrite iterations; Optimize stops
	// earlier once an iteration changes nothing.
	MaxPasses int
}

// DefaultOptimizerConfig returns the lossless configuration.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		Flags:      OptimizationDefault,
		Policy:     CompositionPreserveDomain,
		Tolerances: DefaultTolerances(),
		MaxPasses:  8,
	}
}

// Optimize returns a list equivalent to list under cfg.Flags. Every op must
// be finalized. Ops are never reordered; every rewrite acts on adjacent
// pairs and each pass builds a new list, so list itself is not modified.
// Ops that survive unchanged are shared with list.
func Optimize(list []*Op, cfg OptimizerConfig) ([]*Op, error) {
	for _, o := range list {
		if !o.IsFinalized() {
			return nil, fmt.Errorf("%w: %s", ErrNotFinalized, o)
		}
	}
	cur := append([]*Op(nil), list...)
	if cfg.Flags == OptimizationNone {
		return cur, nil
	}

	passes := max(cfg.MaxPasses, 1)
	for pass := range passes {
		before := len(cur)
		changed := false
		type rewrite struct {
			on  bool
			run func([]*Op) ([]*Op, bool, error)
		}
		steps := []rewrite{
			{cfg.Flags.Has(OptimizeIdentity), removeIdentities},
			{cfg.Flags.Has(OptimizeInversePairs), removeInversePairs},
			{cfg.Flags&(OptimizeCombineMatrix|OptimizeCombineGamma|OptimizeCombineRange) != 0,
				func(l []*Op) ([]*Op, bool, error) { return combineNeighbours(l, cfg.Flags) }},
			{cfg.Flags&(OptimizeCompLut1D|OptimizeCompLut3D) != 0,
				func(l []*Op) ([]*Op, bool, error) { return composeNeighbours(l, cfg) }},
		}
		for _, s := range steps {
			if !s.on {
				continue
			}
			next, ok, err := s.run(cur)
			if err != nil {
				return nil, err
			}
			cur = next
			changed = changed || ok
		}
		slogger().Debug("ops: optimizer pass",
			"pass", pass,
			"ops_in", before,
			"ops_out", len(cur),
			"changed", changed)
		if !changed {
			break
		}
	}
	return cur, nil
}

// replacement returns a finalized forward op for d, or nil for nil data.
func replacement(d opdata.Data) (*Op, error) {
	if d == nil {
		return nil, nil
	}
	o := New(d, opdata.DirectionForward)
	if err := o.Finalize(); err != nil {
		return nil, err
	}
	return o, nil
}

func removeIdentities(list []*Op) ([]*Op, bool, error) {
	out := make([]*Op, 0, len(list))
	changed := false
	for _, o := range list {
		if !o.IsIdentity() || o.IsDynamic() {
			out = append(out, o)
			continue
		}
		rep, err := replacement(o.render.IdentityReplacement())
		if err != nil {
			return nil, false, err
		}
		if rep != nil {
			out = append(out, rep)
		}
		changed = true
	}
	return out, changed, nil
}

func removeInversePairs(list []*Op) ([]*Op, bool, error) {
	out := make([]*Op, 0, len(list))
	changed := false
	for _, o := range list {
		if n := len(out); n > 0 && out[n-1].IsInverse(o) {
			if d, ok := pairReplacement(out[n-1]); ok {
				rep, err := replacement(d)
				if err != nil {
					return nil, false, err
				}
				// Popping the pair exposes the op before it to the next
				// one, so nested pairs cancel in one pass.
				out = out[:n-1]
				if rep != nil {
					out = append(out, rep)
				}
				changed = true
				continue
			}
		}
		out = append(out, o)
	}
	return out, changed, nil
}

// combineFlag returns the flag that allows combining an op of the kind of
// o with its neighbour.
func combineFlag(o *Op) OptimizationFlags {
	switch o.render.(type) {
	case *opdata.Matrix:
		return OptimizeCombineMatrix
	case *opdata.Gamma:
		return OptimizeCombineGamma
	case *opdata.Range:
		return OptimizeCombineRange
	default:
		return 0
	}
}

func combineNeighbours(list []*Op, flags OptimizationFlags) ([]*Op, bool, error) {
	if len(list) < 2 {
		return list, false, nil
	}
	out := make([]*Op, 0, len(list))
	changed := false
	acc := list[0]
	for _, next := range list[1:] {
		f := combineFlag(acc)
		if f != 0 && flags.Has(f) && acc.CanCombineWith(next) {
			c, err := acc.CombineWith(next)
			if err != nil {
				return nil, false, err
			}
			acc = c
			changed = true
			continue
		}
		out = append(out, acc)
		acc = next
	}
	return append(out, acc), changed, nil
}

func composeFlag(o *Op) OptimizationFlags {
	switch o.render.(type) {
	case *opdata.Lut1D, *opdata.InvLut1D:
		return OptimizeCompLut1D
	case *opdata.Lut3D:
		return OptimizeCompLut3D
	default:
		return 0
	}
}

func composeNeighbours(list []*Op, cfg OptimizerConfig) ([]*Op, bool, error) {
	if len(list) < 2 {
		return list, false, nil
	}
	out := make([]*Op, 0, len(list))
	changed := false
	acc := list[0]
	for _, next := range list[1:] {
		f := composeFlag(acc)
		if f != 0 && cfg.Flags.Has(f) && acc.CanComposeWith(next) {
			c, err := acc.ComposeWith(next, cfg.Policy, cfg.InputBitDepth)
			if err != nil {
				return nil, false, err
			}
			acc = c
			changed = true
			continue
		}
		out = append(out, acc)
		acc = next
	}
	out = append(out, acc)
	if !changed {
		return out, false, nil
	}

	// Composition is lossy: a table that is an identity within tolerance
	// is dropped here rather than by the exact identity check.
	final := out[:0]
	for _, o := range out {
		if !nearIdentity(o.render, cfg.Tolerances) {
			final = append(final, o)
			continue
		}
		rep, err := replacement(o.render.IdentityReplacement())
		if err != nil {
			return nil, false, err
		}
		if rep != nil {
			final = append(final, rep)
		}
	}
	return final, true, nil
}

// nearIdentity reports whether a table is an identity within tol.
func nearIdentity(d opdata.Data, tol Tolerances) bool {
	switch t := d.(type) {
	case *opdata.Lut1D:
		return lut.IsIdentity1D(t.Values, t.Size(), t.HalfDomain, tol.Lut1DIdentity)
	case *opdata.Lut3D:
		return isIdentity3D(t.Values, t.GridSize, tol.Lut3DIdentity)
	default:
		return false
	}
}

func isIdentity3D(values []float32, n int, tol float64) bool {
	scale := 1 / float64(n-1)
	for r := range n {
		for g := range n {
			for b := range n {
				i := lut.Index3D(n, r, g, b)
				if math.Abs(float64(values[i])-float64(r)*scale) > tol ||
					math.Abs(float64(values[i+1])-float64(g)*scale) > tol ||
					math.Abs(float64(values[i+2])-float64(b)*scale) > tol {
					return false
				}
			}
		}
	}
	return true
}
