package cpu

import (
	"math"

	"github.com/gogpu/colorpipe/opdata"
)

type gammaMode uint8

const (
	gammaClamp gammaMode = iota
	gammaMirror
	gammaPassThru
	gammaMoncurveFwd
	gammaMoncurveRev
)

// gammaChannel holds the evaluation constants of one channel.
type gammaChannel struct {
	mode     gammaMode
	mirror   bool
	exponent float64
	scale    float64
	offset   float64
	breakPnt float64
	slope    float64
}

func (c *gammaChannel) eval(x float64) float64 {
	switch c.mode {
	case gammaClamp:
		return math.Pow(max(x, 0), c.exponent)
	case gammaMirror:
		return math.Copysign(math.Pow(math.Abs(x), c.exponent), x)
	case gammaPassThru:
		if x < 0 {
			return x
		}
		return math.Pow(x, c.exponent)
	}

	sign := 1.0
	if c.mirror && x < 0 {
		sign, x = -1, -x
	}
	if x <= c.breakPnt {
		return sign * x * c.slope
	}
	if c.mode == gammaMoncurveFwd {
		return sign * math.Pow(x*c.scale+c.offset, c.exponent)
	}
	return sign * (math.Pow(x, c.exponent)*c.scale - c.offset)
}

// Gamma renders the basic and moncurve gamma families on all four channels.
type Gamma struct {
	ch [4]gammaChannel
}

// NewGamma returns the renderer of d.
func NewGamma(d *opdata.Gamma) *Gamma {
	r := &Gamma{}
	s := d.Style
	for i, p := range d.Params {
		c := &r.ch[i]
		switch {
		case s.IsBasic():
			c.exponent = p.Gamma
			if s.IsReverse() {
				c.exponent = 1 / p.Gamma
			}
			switch s {
			case opdata.GammaBasicMirrorFwd, opdata.GammaBasicMirrorRev:
				c.mode = gammaMirror
			case opdata.GammaBasicPassThruFwd, opdata.GammaBasicPassThruRev:
				c.mode = gammaPassThru
			default:
				c.mode = gammaClamp
			}
		case s.IsReverse():
			m := d.MoncurveRevParams(i)
			*c = gammaChannel{
				mode: gammaMoncurveRev, exponent: m.InvGamma, scale: m.Scale,
				offset: m.Offset, breakPnt: m.BreakPnt, slope: m.Slope,
			}
		default:
			m := d.MoncurveParams(i)
			*c = gammaChannel{
				mode: gammaMoncurveFwd, exponent: m.Gamma, scale: m.Scale,
				offset: m.Offset, breakPnt: m.BreakPnt, slope: m.Slope,
			}
		}
		c.mirror = s == opdata.GammaMoncurveMirrorFwd || s == opdata.GammaMoncurveMirrorRev
	}
	return r
}

// Apply implements Renderer.
func (r *Gamma) Apply(rgba []float32) {
	for i := 0; i+3 < len(rgba); i += 4 {
		for c := range 4 {
			rgba[i+c] = float32(r.ch[c].eval(float64(rgba[i+c])))
		}
	}
}

// Log renders a lin-to-log or log-to-lin curve on RGB. Alpha passes
// through.
type Log struct {
	d *opdata.Log
}

// NewLog returns the renderer of d.
func NewLog(d *opdata.Log) *Log {
	return &Log{d: d}
}

// Apply implements Renderer.
func (r *Log) Apply(rgba []float32) {
	fwd := r.d.Direction == opdata.DirectionForward
	for i := 0; i+3 < len(rgba); i += 4 {
		for c := range 3 {
			x := float64(rgba[i+c])
			if fwd {
				rgba[i+c] = float32(r.d.LinToLog(c, x))
			} else {
				rgba[i+c] = float32(r.d.LogToLin(c, x))
			}
		}
	}
}

// ExposureContrast renders an exposure/contrast adjustment on RGB. The
// property values are read once per Apply call.
type ExposureContrast struct {
	d *opdata.ExposureContrast
}

// NewExposureContrast returns the renderer of d. The renderer keeps d's
// property handles, so later edits of dynamic properties are observed.
func NewExposureContrast(d *opdata.ExposureContrast) *ExposureContrast {
	return &ExposureContrast{d: d}
}

// Apply implements Renderer.
func (r *ExposureContrast) Apply(rgba []float32) {
	coef := r.d.Coefficients()
	for i := 0; i+3 < len(rgba); i += 4 {
		for c := range 3 {
			rgba[i+c] = float32(r.d.Apply(coef, float64(rgba[i+c])))
		}
	}
}

// FixedFunction renders a fixed colour-science formula on RGB. Alpha passes
// through.
type FixedFunction struct {
	d *opdata.FixedFunction
}

// NewFixedFunction returns the renderer of d.
func NewFixedFunction(d *opdata.FixedFunction) *FixedFunction {
	return &FixedFunction{d: d}
}

// Apply implements Renderer.
func (r *FixedFunction) Apply(rgba []float32) {
	for i := 0; i+3 < len(rgba); i += 4 {
		red, green, blue := r.d.Apply(float64(rgba[i]), float64(rgba[i+1]), float64(rgba[i+2]))
		rgba[i], rgba[i+1], rgba[i+2] = float32(red), float32(green), float32(blue)
	}
}

// CDL renders a colour decision list on RGB. Alpha passes through.
type CDL struct {
	d *opdata.CDL
}

// NewCDL returns the renderer of d.
func NewCDL(d *opdata.CDL) *CDL {
	return &CDL{d: d}
}

// Apply implements Renderer.
func (r *CDL) Apply(rgba []float32) {
	for i := 0; i+3 < len(rgba); i += 4 {
		out := r.d.Apply([3]float64{float64(rgba[i]), float64(rgba[i+1]), float64(rgba[i+2])})
		rgba[i], rgba[i+1], rgba[i+2] = float32(out[0]), float32(out[1]), float32(out[2])
	}
}
