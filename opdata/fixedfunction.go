package opdata

import (
	"fmt"
	"math"
)

// FixedFunctionStyle names a hard-coded colour-science formula.
type FixedFunctionStyle uint8

const (
	// FFACESDarkToDim10Fwd is the ACES 1.0 dark-to-dim surround
	// compensation.
	FFACESDarkToDim10Fwd FixedFunctionStyle = iota
	FFACESDarkToDim10Inv
	// FFRec2100Surround is the Rec.2100 surround compensation. It takes one
	// parameter, the power applied to luminance; its inverse is the same
	// style with the reciprocal power.
	FFRec2100Surround
	FFRGBToHSV
	FFHSVToRGB
	FFXYZToXyY
	FFXyYToXYZ
	FFXYZToUvY
	FFUvYToXYZ
	FFXYZToLuv
	FFLuvToXYZ

	ffStyleCount
)

var ffStyleNames = [ffStyleCount]string{
	FFACESDarkToDim10Fwd: "ACES_DarkToDim10 (Forward)",
	FFACESDarkToDim10Inv: "ACES_DarkToDim10 (Inverse)",
	FFRec2100Surround:    "REC2100_Surround",
	FFRGBToHSV:           "RGB_TO_HSV",
	FFHSVToRGB:           "HSV_TO_RGB",
	FFXYZToXyY:           "XYZ_TO_xyY",
	FFXyYToXYZ:           "xyY_TO_XYZ",
	FFXYZToUvY:           "XYZ_TO_uvY",
	FFUvYToXYZ:           "uvY_TO_XYZ",
	FFXYZToLuv:           "XYZ_TO_LUV",
	FFLuvToXYZ:           "LUV_TO_XYZ",
}

// String returns the style name.
func (s FixedFunctionStyle) String() string {
	if s < ffStyleCount {
		return ffStyleNames[s]
	}
	return fmt.Sprintf("FixedFunctionStyle(%d)", s)
}

// ParamCount returns the number of parameters the style takes.
func (s FixedFunctionStyle) ParamCount() int {
	if s == FFRec2100Surround {
		return 1
	}
	return 0
}

// inverse returns the paired style. Rec2100 pairs with itself.
func (s FixedFunctionStyle) inverse() FixedFunctionStyle {
	switch s {
	case FFACESDarkToDim10Fwd:
		return FFACESDarkToDim10Inv
	case FFACESDarkToDim10Inv:
		return FFACESDarkToDim10Fwd
	case FFRec2100Surround:
		return FFRec2100Surround
	case FFRGBToHSV:
		return FFHSVToRGB
	case FFHSVToRGB:
		return FFRGBToHSV
	case FFXYZToXyY:
		return FFXyYToXYZ
	case FFXyYToXYZ:
		return FFXYZToXyY
	case FFXYZToUvY:
		return FFUvYToXYZ
	case FFUvYToXYZ:
		return FFXYZToUvY
	case FFXYZToLuv:
		return FFLuvToXYZ
	case FFLuvToXYZ:
		return FFXYZToLuv
	default:
		panic(fmt.Sprintf("opdata: unhandled fixed function style %d", s))
	}
}

// Rec2100 surround parameter bounds.
const (
	Rec2100SurroundMin = 0.001
	Rec2100SurroundMax = 100
)

// Constants used by the fixed-function formulas.
const (
	ACESDarkToDimGamma = 0.9811
	ACESDarkToDimYMin  = 1e-10
	Rec2100YMin        = 1e-4
	LuvUn              = 0.19783000664283681
	LuvVn              = 0.46831999493879100
	LuvYBreak          = 0.008856
	LuvLBreak          = 0.08
	LuvKappa           = 9.0329
)

// ACES AP1 luminance weights.
var ACESAP1Luma = [3]float64{0.27222871678091454, 0.67408176581114831, 0.053689517407937051}

// Rec.2020 luminance weights used by the Rec.2100 surround.
var Rec2100Luma = [3]float64{0.2627, 0.6780, 0.0593}

// FixedFunction applies one of the formulas named by Style. Alpha passes
// through unchanged.
type FixedFunction struct {
	base
	Style  FixedFunctionStyle
	Params []float64
}

// NewFixedFunction returns a fixed function with the given parameters.
func NewFixedFunction(style FixedFunctionStyle, params ...float64) *FixedFunction {
	return &FixedFunction{Style: style, Params: params}
}

// Kind returns KindFixedFunction.
func (*FixedFunction) Kind() Kind { return KindFixedFunction }

// Validate checks the parameter count and bounds of the style.
func (f *FixedFunction) Validate() error {
	if f.Style >= ffStyleCount {
		return invalidf(KindFixedFunction, "style", "unknown style %d", f.Style)
	}
	want := f.Style.ParamCount()
	if len(f.Params) != want {
		if want == 0 {
			return invalidf(KindFixedFunction, "params", "the style '%s' must have zero parameters but %d found",
				f.Style, len(f.Params))
		}
		return invalidf(KindFixedFunction, "params", "the style '%s' must have %d parameter but %d found",
			f.Style, want, len(f.Params))
	}
	if f.Style == FFRec2100Surround {
		return checkBounds(KindFixedFunction, "surround", f.Params[0], Rec2100SurroundMin, Rec2100SurroundMax)
	}
	return nil
}

// Finalize validates and computes the cache identifier.
func (f *FixedFunction) Finalize() error {
	if err := f.Validate(); err != nil {
		return err
	}
	f.cacheID = newIDBuilder(KindFixedFunction).int(int(f.Style)).float(f.Params...).String()
	return nil
}

// Clone returns a deep copy.
func (f *FixedFunction) Clone() Data {
	c := *f
	c.base = f.cloneBase()
	c.Params = append([]float64(nil), f.Params...)
	return &c
}

// Inverse returns the paired style. The Rec.2100 surround inverts to the
// reciprocal power, which must itself be within bounds.
func (f *FixedFunction) Inverse() (Data, error) {
	inv := &FixedFunction{base: base{meta: f.meta.Clone()}, Style: f.Style.inverse()}
	if f.Style == FFRec2100Surround {
		if len(f.Params) != 1 || f.Params[0] == 0 {
			return nil, unsupported(KindFixedFunction, "inverse", "surround parameter is missing or zero")
		}
		p := 1 / f.Params[0]
		if p < Rec2100SurroundMin || p > Rec2100SurroundMax {
			return nil, unsupported(KindFixedFunction, "inverse",
				fmt.Sprintf("reciprocal surround %s is out of bounds", formatFloat(p)))
		}
		inv.Params = []float64{p}
		return inv, nil
	}
	return inv, nil
}

// IsIdentity reports whether the style is a Rec.2100 surround of power 1.
func (f *FixedFunction) IsIdentity() bool {
	return f.Style == FFRec2100Surround && len(f.Params) == 1 && f.Params[0] == 1
}

// IdentityReplacement returns nil.
func (*FixedFunction) IdentityReplacement() Data { return nil }

// Equal reports whether other has the same style and parameters.
func (f *FixedFunction) Equal(other Data) bool {
	o, ok := other.(*FixedFunction)
	if !ok || f.Style != o.Style || len(f.Params) != len(o.Params) {
		return false
	}
	for i := range f.Params {
		if !nearlyEqual(f.Params[i], o.Params[i]) {
			return false
		}
	}
	return true
}

// HasChannelCrosstalk returns true: every style mixes channels.
func (*FixedFunction) HasChannelCrosstalk() bool { return true }

// SurroundPower returns the exponent applied to luminance by the surround
// styles: the Rec.2100 parameter or the ACES constant.
func (f *FixedFunction) SurroundPower() float64 {
	switch f.Style {
	case FFACESDarkToDim10Fwd:
		return ACESDarkToDimGamma
	case FFACESDarkToDim10Inv:
		return 1 / ACESDarkToDimGamma
	case FFRec2100Surround:
		return f.Params[0]
	default:
		return 1
	}
}

// Apply evaluates the formula on one RGB triple.
func (f *FixedFunction) Apply(r, g, b float64) (float64, float64, float64) {
	switch f.Style {
	case FFACESDarkToDim10Fwd, FFACESDarkToDim10Inv:
		return surround(r, g, b, ACESAP1Luma, ACESDarkToDimYMin, f.SurroundPower())
	case FFRec2100Surround:
		return surround(r, g, b, Rec2100Luma, Rec2100YMin, f.SurroundPower())
	case FFRGBToHSV:
		return rgbToHSV(r, g, b)
	case FFHSVToRGB:
		return hsvToRGB(r, g, b)
	case FFXYZToXyY:
		return xyzToXyY(r, g, b)
	case FFXyYToXYZ:
		return xyYToXYZ(r, g, b)
	case FFXYZToUvY:
		return xyzToUvY(r, g, b)
	case FFUvYToXYZ:
		return uvYToXYZ(r, g, b)
	case FFXYZToLuv:
		return xyzToLuv(r, g, b)
	case FFLuvToXYZ:
		return luvToXYZ(r, g, b)
	default:
		panic(fmt.Sprintf("opdata: unhandled fixed function style %d", f.Style))
	}
}

func surround(r, g, b float64, w [3]float64, yMin, power float64) (float64, float64, float64) {
	y := math.Max(yMin, w[0]*r+w[1]*g+w[2]*b)
	s := math.Pow(y, power-1)
	return r * s, g * s, b * s
}

func rgbToHSV(r, g, b float64) (float64, float64, float64) {
	lo := math.Min(r, math.Min(g, b))
	hi := math.Max(r, math.Max(g, b))
	delta := hi - lo
	val := hi
	if lo < 0 {
		val += lo
	}
	if delta == 0 {
		return 0, 0, val
	}
	sat := delta / math.Max(math.Abs(hi), math.Abs(lo))
	var hue float64
	switch hi {
	case r:
		hue = (g - b) / delta
	case g:
		hue = 2 + (b-r)/delta
	default:
		hue = 4 + (r-g)/delta
	}
	if hue < 0 {
		hue += 6
	}
	return hue / 6, sat, val
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = (h - math.Floor(h)) * 6
	s = math.Min(math.Max(s, 0), 1.999)

	var hi, lo float64
	switch {
	case s <= 1 && v >= 0:
		hi = v
		lo = v * (1 - s)
	case v >= 0:
		hi = v / (2 - s)
		lo = hi * (1 - s)
	default:
		lo = v / (2 - s)
		hi = lo * (1 - s)
	}
	delta := hi - lo
	r := clamp01(math.Abs(h-3) - 1)
	g := clamp01(2 - math.Abs(h-2))
	b := clamp01(2 - math.Abs(h-4))
	return lo + delta*r, lo + delta*g, lo + delta*b
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}

func xyzToXyY(x, y, z float64) (float64, float64, float64) {
	d := x + y + z
	if d != 0 {
		d = 1 / d
	}
	return x * d, y * d, y
}

func xyYToXYZ(cx, cy, y float64) (float64, float64, float64) {
	var d float64
	if cy != 0 {
		d = y / cy
	}
	return cx * d, y, (1 - cx - cy) * d
}

func xyzToUvY(x, y, z float64) (float64, float64, float64) {
	d := x + 15*y + 3*z
	if d != 0 {
		d = 1 / d
	}
	return 4 * x * d, 9 * y * d, y
}

func uvYToXYZ(u, v, y float64) (float64, float64, float64) {
	var d float64
	if v != 0 {
		d = 1 / v
	}
	return 2.25 * y * u * d, y, 0.75*y*(4-u)*d - 5*y
}

func xyzToLuv(x, y, z float64) (float64, float64, float64) {
	d := x + 15*y + 3*z
	if d != 0 {
		d = 1 / d
	}
	u := 4 * x * d
	v := 9 * y * d
	var l float64
	if y <= LuvYBreak {
		l = LuvKappa * y
	} else {
		l = 1.16*math.Cbrt(y) - 0.16
	}
	return l, 13 * l * (u - LuvUn), 13 * l * (v - LuvVn)
}

func luvToXYZ(l, us, vs float64) (float64, float64, float64) {
	var y float64
	if l > LuvLBreak {
		t := (l + 0.16) / 1.16
		y = t * t * t
	} else {
		y = l / LuvKappa
	}
	var d float64
	if l != 0 {
		d = 1 / (13 * l)
	}
	u := us*d + LuvUn
	v := vs*d + LuvVn
	var dd float64
	if v != 0 {
		dd = 0.25 / v
	}
	return 9 * y * u * dd, y, y * (12 - 3*u - 20*v) * dd
}
