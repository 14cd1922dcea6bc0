package opdata

import "fmt"

// Kind identifies the variant of an OpData.
type Kind uint8

const (
	KindMatrix Kind = iota
	KindLut1D
	KindInvLut1D
	KindLut3D
	KindGamma
	KindLog
	KindExposureContrast
	KindFixedFunction
	KindRange
	KindCDL
	KindReference

	kindCount
)

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

var kindNames = [kindCount]string{
	KindMatrix:           "Matrix",
	KindLut1D:            "Lut1D",
	KindInvLut1D:         "InvLut1D",
	KindLut3D:            "Lut3D",
	KindGamma:            "Gamma",
	KindLog:              "Log",
	KindExposureContrast: "ExposureContrast",
	KindFixedFunction:    "FixedFunction",
	KindRange:            "Range",
	KindCDL:              "CDL",
	KindReference:        "Reference",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Direction is the processing direction of an operation.
type Direction uint8

const (
	// DirectionForward applies the operation as defined.
	DirectionForward Direction = iota

	// DirectionInverse applies the mathematical inverse.
	DirectionInverse
)

// Inverse returns the opposite direction.
func (d Direction) Inverse() Direction {
	if d == DirectionForward {
		return DirectionInverse
	}
	return DirectionForward
}

// Compose returns the direction of applying d inside an outer direction.
func (d Direction) Compose(outer Direction) Direction {
	if outer == DirectionInverse {
		return d.Inverse()
	}
	return d
}

// String returns "forward" or "inverse".
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionInverse:
		return "inverse"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// Interpolation selects how tables are sampled between grid points.
type Interpolation uint8

const (
	// InterpDefault uses the kind's default: linear for 1D tables and
	// trilinear for 3D tables.
	InterpDefault Interpolation = iota
	InterpNearest
	InterpLinear
	InterpTetrahedral
)

// String returns the interpolation name.
func (i Interpolation) String() string {
	switch i {
	case InterpDefault:
		return "default"
	case InterpNearest:
		return "nearest"
	case InterpLinear:
		return "linear"
	case InterpTetrahedral:
		return "tetrahedral"
	default:
		return fmt.Sprintf("Interpolation(%d)", i)
	}
}
