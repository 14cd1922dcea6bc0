package opdata

import (
	"fmt"
	"math"

	"github.com/gogpu/colorpipe/dynamic"
)

// ExposureContrastStyle selects the domain exposure and contrast act in.
type ExposureContrastStyle uint8

const (
	// ECLinearFwd works on scene-linear values.
	ECLinearFwd ExposureContrastStyle = iota
	ECLinearRev
	// ECVideoFwd works on video-like values: exposure and pivot are raised
	// to the 0.54 power before use.
	ECVideoFwd
	ECVideoRev
	// ECLogFwd works on logarithmic values: exposure becomes an offset of
	// LogExposureStep per stop and contrast scales around the log pivot.
	ECLogFwd
	ECLogRev
)

// String returns the style name.
func (s ExposureContrastStyle) String() string {
	switch s {
	case ECLinearFwd:
		return "linear"
	case ECLinearRev:
		return "linearRev"
	case ECVideoFwd:
		return "video"
	case ECVideoRev:
		return "videoRev"
	case ECLogFwd:
		return "log"
	case ECLogRev:
		return "logRev"
	default:
		return fmt.Sprintf("ExposureContrastStyle(%d)", s)
	}
}

// IsReverse reports whether the style is a reverse direction.
func (s ExposureContrastStyle) IsReverse() bool { return s%2 == 1 }

// Inverse returns the style of the opposite direction.
func (s ExposureContrastStyle) Inverse() ExposureContrastStyle { return s ^ 1 }

// IsLog reports whether the style is logarithmic.
func (s ExposureContrastStyle) IsLog() bool { return s >= ECLogFwd }

// IsVideo reports whether the style is video.
func (s ExposureContrastStyle) IsVideo() bool { return s == ECVideoFwd || s == ECVideoRev }

// Exposure/contrast constants.
const (
	DefaultPivot           = 0.18
	DefaultLogExposureStep = 0.088
	DefaultLogMidGray      = 0.435
	VideoOETFPower         = 0.54
	MinPivot               = 0.001
	MinContrast            = 0.001
)

// ExposureContrast adjusts exposure, contrast and gamma around a pivot.
// Exposure, contrast and gamma live in dynamic properties so they can be
// edited after the pipeline is built. Alpha passes through unchanged.
type ExposureContrast struct {
	base
	Style ExposureContrastStyle

	Exposure *dynamic.Handle
	Contrast *dynamic.Handle
	Gamma    *dynamic.Handle

	Pivot           float64
	LogExposureStep float64
	LogMidGray      float64
}

// NewExposureContrast returns a neutral adjustment of the given style with
// non-dynamic properties.
func NewExposureContrast(style ExposureContrastStyle) *ExposureContrast {
	return &ExposureContrast{
		Style:           style,
		Exposure:        dynamic.NewHandle(dynamic.NewProperty(dynamic.TypeExposure, 0, false)),
		Contrast:        dynamic.NewHandle(dynamic.NewProperty(dynamic.TypeContrast, 1, false)),
		Gamma:           dynamic.NewHandle(dynamic.NewProperty(dynamic.TypeGamma, 1, false)),
		Pivot:           DefaultPivot,
		LogExposureStep: DefaultLogExposureStep,
		LogMidGray:      DefaultLogMidGray,
	}
}

// Kind returns KindExposureContrast.
func (*ExposureContrast) Kind() Kind { return KindExposureContrast }

// DynamicHandles returns the exposure, contrast and gamma handles.
func (e *ExposureContrast) DynamicHandles() []*dynamic.Handle {
	return []*dynamic.Handle{e.Exposure, e.Contrast, e.Gamma}
}

// Handle returns the handle of property type t.
func (e *ExposureContrast) Handle(t dynamic.Type) *dynamic.Handle {
	switch t {
	case dynamic.TypeExposure:
		return e.Exposure
	case dynamic.TypeContrast:
		return e.Contrast
	case dynamic.TypeGamma:
		return e.Gamma
	default:
		return nil
	}
}

// IsDynamic reports whether any property is dynamic.
func (e *ExposureContrast) IsDynamic() bool {
	return e.Exposure.IsDynamic() || e.Contrast.IsDynamic() || e.Gamma.IsDynamic()
}

// Validate checks the static parameters.
func (e *ExposureContrast) Validate() error {
	if e.Style > ECLogRev {
		return invalidf(KindExposureContrast, "style", "unknown style %d", e.Style)
	}
	if e.Exposure == nil || e.Contrast == nil || e.Gamma == nil {
		return invalidf(KindExposureContrast, "properties", "exposure, contrast and gamma must be set")
	}
	if !finite(e.Pivot, e.LogExposureStep, e.LogMidGray) {
		return invalidf(KindExposureContrast, "pivot", "parameters must be finite")
	}
	if e.Pivot < 0 {
		return &ValidationError{Kind: KindExposureContrast, Param: "pivot", Value: e.Pivot, Limit: 0, Bound: BoundLower}
	}
	if e.LogExposureStep <= 0 {
		return invalidf(KindExposureContrast, "logExposureStep", "must be positive, got %s", formatFloat(e.LogExposureStep))
	}
	return nil
}

// Finalize validates and computes the cache identifier. Values of dynamic
// properties are not part of the identifier.
func (e *ExposureContrast) Finalize() error {
	if err := e.Validate(); err != nil {
		return err
	}
	id := newIDBuilder(KindExposureContrast).int(int(e.Style)).float(e.Pivot, e.LogExposureStep, e.LogMidGray)
	for _, h := range e.DynamicHandles() {
		if h.IsDynamic() {
			id.str("dynamic")
		} else {
			id.float(h.Value())
		}
	}
	e.cacheID = id.String()
	return nil
}

// Clone returns a copy whose handles point at the same properties.
func (e *ExposureContrast) Clone() Data {
	c := *e
	c.base = e.cloneBase()
	c.Exposure = e.Exposure.Clone()
	c.Contrast = e.Contrast.Clone()
	c.Gamma = e.Gamma.Clone()
	return &c
}

// Inverse returns a copy with the opposite style direction sharing the
// same properties.
func (e *ExposureContrast) Inverse() (Data, error) {
	inv := e.Clone().(*ExposureContrast)
	inv.Style = e.Style.Inverse()
	inv.cacheID = ""
	return inv, nil
}

// IsIdentity reports whether no property is dynamic and exposure 0,
// contrast 1 and gamma 1 are set.
func (e *ExposureContrast) IsIdentity() bool {
	if e.IsDynamic() {
		return false
	}
	return e.Exposure.Value() == 0 && e.Contrast.Value() == 1 && e.Gamma.Value() == 1
}

// IdentityReplacement returns nil.
func (*ExposureContrast) IdentityReplacement() Data { return nil }

// Equal reports whether other has the same style and parameters. A dynamic
// property matches another dynamic property regardless of value.
func (e *ExposureContrast) Equal(other Data) bool {
	o, ok := other.(*ExposureContrast)
	if !ok || e.Style != o.Style {
		return false
	}
	if !nearlyEqual(e.Pivot, o.Pivot) || !nearlyEqual(e.LogExposureStep, o.LogExposureStep) ||
		!nearlyEqual(e.LogMidGray, o.LogMidGray) {
		return false
	}
	a, b := e.DynamicHandles(), o.DynamicHandles()
	for i := range a {
		if a[i].IsDynamic() != b[i].IsDynamic() {
			return false
		}
		if !a[i].IsDynamic() && !nearlyEqual(a[i].Value(), b[i].Value()) {
			return false
		}
	}
	return true
}

// HasChannelCrosstalk returns false.
func (*ExposureContrast) HasChannelCrosstalk() bool { return false }

// ECCoefficients are the per-block constants of an exposure/contrast
// evaluation, derived from the current property values.
type ECCoefficients struct {
	Exposure float64 // multiplier (linear, video) or offset (log)
	Contrast float64 // contrast * gamma, or its reciprocal for reverse styles
	Pivot    float64 // pivot in the working domain
}

// Coefficients reads the current property values and derives the
// constants for the style. Renderers call it once per block.
func (e *ExposureContrast) Coefficients() ECCoefficients {
	exposure := e.Exposure.Value()
	contrast := math.Max(MinContrast, e.Contrast.Value()*e.Gamma.Value())
	pivot := math.Max(MinPivot, e.Pivot)

	var c ECCoefficients
	switch {
	case e.Style.IsLog():
		c.Exposure = exposure * e.LogExposureStep
		c.Pivot = math.Max(0, math.Log2(pivot/0.18)*e.LogExposureStep+e.LogMidGray)
		c.Contrast = contrast
	case e.Style.IsVideo():
		c.Exposure = math.Pow(math.Pow(2, exposure), VideoOETFPower)
		c.Pivot = math.Pow(pivot, VideoOETFPower)
		c.Contrast = contrast
	default:
		c.Exposure = math.Pow(2, exposure)
		c.Pivot = pivot
		c.Contrast = contrast
	}
	if e.Style.IsReverse() {
		c.Contrast = 1 / c.Contrast
		if !e.Style.IsLog() {
			c.Exposure = 1 / c.Exposure
		}
	}
	return c
}

// Apply evaluates one channel value with precomputed coefficients.
func (e *ExposureContrast) Apply(c ECCoefficients, x float64) float64 {
	switch {
	case e.Style == ECLogFwd:
		return (x+c.Exposure-c.Pivot)*c.Contrast + c.Pivot
	case e.Style == ECLogRev:
		return (x-c.Pivot)*c.Contrast + c.Pivot - c.Exposure
	case c.Contrast == 1:
		return x * c.Exposure
	case e.Style.IsReverse():
		return math.Pow(math.Max(0, x/c.Pivot), c.Contrast) * c.Pivot * c.Exposure
	default:
		return math.Pow(math.Max(0, x*c.Exposure/c.Pivot), c.Contrast) * c.Pivot
	}
}
