package opdata

import (
	"fmt"
	"math"
)

// CDLStyle selects the clamping behaviour and direction of a CDL.
type CDLStyle uint8

const (
	// CDLASCFwd is the ASC CDL v1.2 formula, clamping to [0, 1] after the
	// slope/offset and after saturation.
	CDLASCFwd CDLStyle = iota
	CDLASCRev
	// CDLNoClampFwd does not clamp; negative values bypass the power.
	CDLNoClampFwd
	CDLNoClampRev
)

// String returns the style name.
func (s CDLStyle) String() string {
	switch s {
	case CDLASCFwd:
		return "v1.2_Fwd"
	case CDLASCRev:
		return "v1.2_Rev"
	case CDLNoClampFwd:
		return "noClampFwd"
	case CDLNoClampRev:
		return "noClampRev"
	default:
		return fmt.Sprintf("CDLStyle(%d)", s)
	}
}

// IsReverse reports whether the style is a reverse direction.
func (s CDLStyle) IsReverse() bool { return s%2 == 1 }

// Inverse returns the style of the opposite direction.
func (s CDLStyle) Inverse() CDLStyle { return s ^ 1 }

// IsClamping reports whether the style clamps to [0, 1].
func (s CDLStyle) IsClamping() bool { return s <= CDLASCRev }

// Rec709Luma holds the luma weights used by CDL saturation.
var Rec709Luma = [3]float64{0.2126, 0.7152, 0.0722}

// CDL is an ASC colour decision list: per-channel slope, offset and power
// followed by a saturation around Rec.709 luma. Alpha passes through
// unchanged.
type CDL struct {
	base
	Style      CDLStyle
	Slope      [3]float64
	Offset     [3]float64
	Power      [3]float64
	Saturation float64
}

// NewCDL returns a neutral CDL of the given style.
func NewCDL(style CDLStyle) *CDL {
	return &CDL{
		Style:      style,
		Slope:      [3]float64{1, 1, 1},
		Power:      [3]float64{1, 1, 1},
		Saturation: 1,
	}
}

// Kind returns KindCDL.
func (*CDL) Kind() Kind { return KindCDL }

// Validate checks that slopes, powers and saturation are usable in the
// style's direction.
func (c *CDL) Validate() error {
	if c.Style > CDLNoClampRev {
		return invalidf(KindCDL, "style", "unknown style %d", c.Style)
	}
	if !finite(c.Slope[:]...) || !finite(c.Offset[:]...) || !finite(c.Power[:]...) || !finite(c.Saturation) {
		return invalidf(KindCDL, "params", "parameters must be finite")
	}
	for i := range 3 {
		if c.Slope[i] < 0 {
			return &ValidationError{Kind: KindCDL, Param: channelNames[i] + " slope", Value: c.Slope[i], Bound: BoundLower}
		}
		if c.Power[i] <= 0 {
			return invalidf(KindCDL, channelNames[i]+" power", "must be positive, got %s", formatFloat(c.Power[i]))
		}
		if c.Style.IsReverse() && c.Slope[i] == 0 {
			return invalidf(KindCDL, channelNames[i]+" slope", "a reverse CDL needs a non-zero slope")
		}
	}
	if c.Saturation < 0 {
		return &ValidationError{Kind: KindCDL, Param: "saturation", Value: c.Saturation, Bound: BoundLower}
	}
	if c.Style.IsReverse() && c.Saturation == 0 {
		return invalidf(KindCDL, "saturation", "a reverse CDL needs a non-zero saturation")
	}
	return nil
}

// Finalize validates and computes the cache identifier.
func (c *CDL) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.cacheID = newIDBuilder(KindCDL).int(int(c.Style)).
		float(c.Slope[:]...).float(c.Offset[:]...).float(c.Power[:]...).float(c.Saturation).String()
	return nil
}

// Clone returns a copy.
func (c *CDL) Clone() Data {
	out := *c
	out.base = c.cloneBase()
	return &out
}

// Inverse flips the style direction.
func (c *CDL) Inverse() (Data, error) {
	inv := c.Clone().(*CDL)
	inv.Style = c.Style.Inverse()
	inv.cacheID = ""
	return inv, nil
}

// IsIdentity reports whether slope, offset, power and saturation are
// neutral.
func (c *CDL) IsIdentity() bool {
	return c.Slope == [3]float64{1, 1, 1} && c.Offset == [3]float64{} &&
		c.Power == [3]float64{1, 1, 1} && c.Saturation == 1
}

// IdentityReplacement returns the [0, 1] clamp of the clamping styles.
func (c *CDL) IdentityReplacement() Data {
	if c.Style.IsClamping() {
		return NewRange(0, 1, 0, 1)
	}
	return nil
}

// Equal reports whether other has the same style and parameters.
func (c *CDL) Equal(other Data) bool {
	o, ok := other.(*CDL)
	if !ok || c.Style != o.Style || !nearlyEqual(c.Saturation, o.Saturation) {
		return false
	}
	for i := range 3 {
		if !nearlyEqual(c.Slope[i], o.Slope[i]) || !nearlyEqual(c.Offset[i], o.Offset[i]) ||
			!nearlyEqual(c.Power[i], o.Power[i]) {
			return false
		}
	}
	return true
}

// HasChannelCrosstalk reports whether saturation differs from 1.
func (c *CDL) HasChannelCrosstalk() bool { return c.Saturation != 1 }

// Apply evaluates the CDL on one RGB triple.
func (c *CDL) Apply(rgb [3]float64) [3]float64 {
	clamp := c.Style.IsClamping()
	if !c.Style.IsReverse() {
		for i := range 3 {
			t := rgb[i]*c.Slope[i] + c.Offset[i]
			if clamp {
				t = clamp01(t)
			}
			if t >= 0 {
				t = math.Pow(t, c.Power[i])
			}
			rgb[i] = t
		}
		rgb = saturate(rgb, c.Saturation)
		if clamp {
			for i := range rgb {
				rgb[i] = clamp01(rgb[i])
			}
		}
		return rgb
	}

	if clamp {
		for i := range rgb {
			rgb[i] = clamp01(rgb[i])
		}
	}
	rgb = saturate(rgb, 1/c.Saturation)
	for i := range 3 {
		t := rgb[i]
		if clamp {
			t = clamp01(t)
		}
		if t >= 0 {
			t = math.Pow(t, 1/c.Power[i])
		}
		t = (t - c.Offset[i]) / c.Slope[i]
		if clamp {
			t = clamp01(t)
		}
		rgb[i] = t
	}
	return rgb
}

func saturate(rgb [3]float64, sat float64) [3]float64 {
	if sat == 1 {
		return rgb
	}
	luma := Rec709Luma[0]*rgb[0] + Rec709Luma[1]*rgb[1] + Rec709Luma[2]*rgb[2]
	for i := range rgb {
		rgb[i] = luma + sat*(rgb[i]-luma)
	}
	return rgb
}
