package dynamic

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Type identifies the parameter a dynamic property controls.
type Type uint8

const (
	// TypeExposure is an exposure adjustment in stops.
	TypeExposure Type = iota

	// TypeContrast is a contrast multiplier around a pivot.
	TypeContrast

	// TypeGamma is an additional power applied together with contrast.
	TypeGamma

	typeCount
)

// Types returns every property type in declaration order.
func Types() []Type {
	return []Type{TypeExposure, TypeContrast, TypeGamma}
}

// String returns the lower-case name of the type.
func (t Type) String() string {
	switch t {
	case TypeExposure:
		return "exposure"
	case TypeContrast:
		return "contrast"
	case TypeGamma:
		return "gamma"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// Property is a mutable numeric cell.
//
// A property that is not dynamic still stores a value; it behaves as a
// constant parameter of the operation that owns it. Only dynamic properties
// are exposed by a pipeline for live editing.
//
// Thread safety: Property is safe for concurrent use.
type Property struct {
	typ     Type
	bits    atomic.Uint64
	dynamic atomic.Bool
}

// NewProperty creates a property of the given type holding v.
func NewProperty(t Type, v float64, dynamic bool) *Property {
	p := &Property{typ: t}
	p.bits.Store(math.Float64bits(v))
	p.dynamic.Store(dynamic)
	return p
}

// Type returns the property type.
func (p *Property) Type() Type { return p.typ }

// Value returns the current value.
func (p *Property) Value() float64 {
	return math.Float64frombits(p.bits.Load())
}

// SetValue stores v. Every operation pointing at this cell observes the new
// value from the next block it renders.
func (p *Property) SetValue(v float64) {
	p.bits.Store(math.Float64bits(v))
}

// IsDynamic reports whether the property is exposed for live editing.
func (p *Property) IsDynamic() bool { return p.dynamic.Load() }

// MakeDynamic marks the property as live-editable.
func (p *Property) MakeDynamic() { p.dynamic.Store(true) }

// Snapshot returns a new non-dynamic property frozen at the current value.
func (p *Property) Snapshot() *Property {
	return NewProperty(p.typ, p.Value(), false)
}

// String formats the property for diagnostics.
func (p *Property) String() string {
	if p.IsDynamic() {
		return fmt.Sprintf("%s=%g (dynamic)", p.typ, p.Value())
	}
	return fmt.Sprintf("%s=%g", p.typ, p.Value())
}
