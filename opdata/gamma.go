package opdata

import (
	"fmt"
	"math"
)

// GammaStyle selects the gamma curve family and its direction.
type GammaStyle uint8

const (
	// GammaBasicFwd computes max(x, 0)^g.
	GammaBasicFwd GammaStyle = iota
	// GammaBasicRev computes max(x, 0)^(1/g).
	GammaBasicRev
	// GammaBasicMirrorFwd computes sign(x) * |x|^g.
	GammaBasicMirrorFwd
	GammaBasicMirrorRev
	// GammaBasicPassThruFwd computes x^g for x >= 0 and passes negative
	// values unchanged.
	GammaBasicPassThruFwd
	GammaBasicPassThruRev
	// GammaMoncurveFwd is a power function with a linear segment near
	// zero, parameterized by gamma and offset (the sRGB curve family).
	// The forward direction maps encoded values to linear light.
	GammaMoncurveFwd
	GammaMoncurveRev
	// GammaMoncurveMirrorFwd applies the moncurve to |x| and restores the
	// sign.
	GammaMoncurveMirrorFwd
	GammaMoncurveMirrorRev
)

var gammaStyleNames = [...]string{
	GammaBasicFwd:          "basicFwd",
	GammaBasicRev:          "basicRev",
	GammaBasicMirrorFwd:    "basicMirrorFwd",
	GammaBasicMirrorRev:    "basicMirrorRev",
	GammaBasicPassThruFwd:  "basicPassThruFwd",
	GammaBasicPassThruRev:  "basicPassThruRev",
	GammaMoncurveFwd:       "moncurveFwd",
	GammaMoncurveRev:       "moncurveRev",
	GammaMoncurveMirrorFwd: "moncurveMirrorFwd",
	GammaMoncurveMirrorRev: "moncurveMirrorRev",
}

// String returns the style name.
func (s GammaStyle) String() string {
	if int(s) < len(gammaStyleNames) {
		return gammaStyleNames[s]
	}
	return fmt.Sprintf("GammaStyle(%d)", s)
}

// IsReverse reports whether the style is a reverse direction.
func (s GammaStyle) IsReverse() bool { return s%2 == 1 }

// Inverse returns the style of the opposite direction.
func (s GammaStyle) Inverse() GammaStyle { return s ^ 1 }

// IsBasic reports whether the style is one of the pure power families.
func (s GammaStyle) IsBasic() bool { return s <= GammaBasicPassThruRev }

// IsMoncurve reports whether the style has a linear segment.
func (s GammaStyle) IsMoncurve() bool { return s >= GammaMoncurveFwd }

// family drops the direction bit.
func (s GammaStyle) family() GammaStyle { return s &^ 1 }

// Gamma parameter bounds.
const (
	BasicGammaMin    = 0.01
	BasicGammaMax    = 100
	MoncurveGammaMin = 1
	MoncurveGammaMax = 10
	MoncurveOffMin   = 0
	MoncurveOffMax   = 0.9
)

// GammaParams holds the parameters of one channel. Offset is used by the
// moncurve styles only.
type GammaParams struct {
	Gamma  float64
	Offset float64
}

// Gamma applies a per-channel power curve to R, G, B and A.
type Gamma struct {
	base
	Style GammaStyle

	// Params holds the R, G, B, A channel parameters.
	Params [4]GammaParams
}

// NewGamma returns a gamma applying the same parameters to R, G and B and
// leaving alpha unchanged.
func NewGamma(style GammaStyle, gamma, offset float64) *Gamma {
	p := GammaParams{Gamma: gamma, Offset: offset}
	return &Gamma{Style: style, Params: [4]GammaParams{p, p, p, {Gamma: 1}}}
}

// Kind returns KindGamma.
func (*Gamma) Kind() Kind { return KindGamma }

var channelNames = [4]string{"red", "green", "blue", "alpha"}

// Validate checks the per-style bounds of every channel.
func (g *Gamma) Validate() error {
	if int(g.Style) >= len(gammaStyleNames) {
		return invalidf(KindGamma, "style", "unknown style %d", g.Style)
	}
	for i, p := range g.Params {
		name := channelNames[i] + " gamma"
		if g.Style.IsBasic() {
			if err := checkBounds(KindGamma, name, p.Gamma, BasicGammaMin, BasicGammaMax); err != nil {
				return err
			}
			continue
		}
		if err := checkBounds(KindGamma, name, p.Gamma, MoncurveGammaMin, MoncurveGammaMax); err != nil {
			return err
		}
		if err := checkBounds(KindGamma, channelNames[i]+" offset", p.Offset, MoncurveOffMin, MoncurveOffMax); err != nil {
			return err
		}
		if p.Offset > 0 && p.Gamma <= 1 {
			return invalidf(KindGamma, name, "offset %s requires gamma greater than 1, got %s",
				formatFloat(p.Offset), formatFloat(p.Gamma))
		}
	}
	return nil
}

// Finalize validates and computes the cache identifier.
func (g *Gamma) Finalize() error {
	if err := g.Validate(); err != nil {
		return err
	}
	id := newIDBuilder(KindGamma).int(int(g.Style))
	for _, p := range g.Params {
		id.float(p.Gamma, p.Offset)
	}
	g.cacheID = id.String()
	return nil
}

// Clone returns a copy.
func (g *Gamma) Clone() Data {
	c := *g
	c.base = g.cloneBase()
	return &c
}

// Inverse returns the same parameters with the opposite style direction.
func (g *Gamma) Inverse() (Data, error) {
	inv := &Gamma{base: base{meta: g.meta.Clone()}, Style: g.Style.Inverse(), Params: g.Params}
	return inv, nil
}

// IsIdentity reports whether every channel has gamma 1 and, for moncurve
// styles, offset 0.
func (g *Gamma) IsIdentity() bool {
	for _, p := range g.Params {
		if p.Gamma != 1 {
			return false
		}
		if g.Style.IsMoncurve() && p.Offset != 0 {
			return false
		}
	}
	return true
}

// IdentityReplacement returns the clamp at zero of the basic styles.
func (g *Gamma) IdentityReplacement() Data {
	if g.Style.family() == GammaBasicFwd {
		return NewMinRange(0, 0)
	}
	return nil
}

// Equal reports whether other has the same style and parameters.
func (g *Gamma) Equal(other Data) bool {
	o, ok := other.(*Gamma)
	if !ok || g.Style != o.Style {
		return false
	}
	for i := range g.Params {
		if !nearlyEqual(g.Params[i].Gamma, o.Params[i].Gamma) {
			return false
		}
		if g.Style.IsMoncurve() && !nearlyEqual(g.Params[i].Offset, o.Params[i].Offset) {
			return false
		}
	}
	return true
}

// HasChannelCrosstalk returns false.
func (*Gamma) HasChannelCrosstalk() bool { return false }

// exponents returns the effective forward exponent of each channel.
func (g *Gamma) exponents() [4]float64 {
	var e [4]float64
	for i, p := range g.Params {
		if g.Style.IsReverse() {
			e[i] = 1 / p.Gamma
		} else {
			e[i] = p.Gamma
		}
	}
	return e
}

// CanCompose reports whether g followed by next is one basic gamma of the
// same family whose exponents stay within the basic bounds.
func (g *Gamma) CanCompose(next *Gamma) bool {
	if !g.Style.IsBasic() || g.Style.family() != next.Style.family() {
		return false
	}
	a, b := g.exponents(), next.exponents()
	for i := range a {
		e := a[i] * b[i]
		if e < BasicGammaMin || e > BasicGammaMax {
			return false
		}
	}
	return true
}

// Compose returns the gamma applying g and then next. Exponents multiply;
// the result uses the forward style of the family. The caller must have
// checked CanCompose.
func (g *Gamma) Compose(next *Gamma) *Gamma {
	a, b := g.exponents(), next.exponents()
	out := &Gamma{base: base{meta: g.meta.Clone()}, Style: g.Style.family()}
	out.Metadata().Combine(next.meta)
	for i := range a {
		out.Params[i] = GammaParams{Gamma: a[i] * b[i]}
	}
	return out
}

// Moncurve holds the derived constants of one moncurve channel.
type Moncurve struct {
	Gamma    float64
	Scale    float64 // 1 / (1 + offset)
	Offset   float64 // offset / (1 + offset)
	BreakPnt float64 // input value where the linear segment ends
	Slope    float64 // slope of the linear segment
}

// MoncurveParams derives the forward constants of channel i.
//
// Above BreakPnt the forward curve is (x*Scale + Offset)^Gamma and below it
// x*Slope. A gamma of 1 with zero offset degenerates to the identity and is
// returned as Slope 1 with BreakPnt +Inf.
func (g *Gamma) MoncurveParams(i int) Moncurve {
	p := g.Params[i]
	if p.Gamma == 1 || p.Offset == 0 {
		if p.Gamma == 1 {
			return Moncurve{Gamma: 1, Scale: 1, BreakPnt: math.Inf(1), Slope: 1}
		}
		return Moncurve{Gamma: p.Gamma, Scale: 1, BreakPnt: 0, Slope: 0}
	}
	a := p.Offset
	gm := p.Gamma
	bp := a / (gm - 1)
	slope := math.Pow(a*gm/((gm-1)*(1+a)), gm) / bp
	return Moncurve{
		Gamma:    gm,
		Scale:    1 / (1 + a),
		Offset:   a / (1 + a),
		BreakPnt: bp,
		Slope:    slope,
	}
}

// MoncurveRev holds the derived constants of one reverse moncurve channel.
type MoncurveRev struct {
	InvGamma float64
	Scale    float64 // 1 + offset
	Offset   float64 // offset
	BreakPnt float64 // forward output at the forward break point
	Slope    float64 // 1 / forward slope
}

// MoncurveRevParams derives the reverse constants of channel i. Above
// BreakPnt the reverse curve is x^InvGamma*Scale - Offset and below it
// x*Slope.
func (g *Gamma) MoncurveRevParams(i int) MoncurveRev {
	f := g.MoncurveParams(i)
	if f.Gamma == 1 {
		return MoncurveRev{InvGamma: 1, Scale: 1, BreakPnt: math.Inf(1), Slope: 1}
	}
	if f.Slope == 0 {
		return MoncurveRev{InvGamma: 1 / f.Gamma, Scale: 1, BreakPnt: 0, Slope: 0}
	}
	return MoncurveRev{
		InvGamma: 1 / f.Gamma,
		Scale:    1 + g.Params[i].Offset,
		Offset:   g.Params[i].Offset,
		BreakPnt: f.BreakPnt * f.Slope,
		Slope:    1 / f.Slope,
	}
}
