package opdata

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	// ErrValidation reports a parameter that is out of bounds, a wrong
	// parameter count, or a malformed table.
	ErrValidation = errors.New("opdata: validation failed")

	// ErrUnsupported reports an operation that has no meaning for a kind,
	// such as the inverse of a 3D table or combining two operations that
	// are not combinable.
	ErrUnsupported = errors.New("opdata: unsupported operation")
)

// BoundKind tells which side of an interval a ValidationError violated.
type BoundKind uint8

const (
	BoundNone BoundKind = iota
	BoundLower
	BoundUpper
)

// ValidationError describes a rejected parameter.
//
// When Bound is BoundLower or BoundUpper, Value and Limit carry the rejected
// value and the violated limit, and the message names both.
type ValidationError struct {
	Kind  Kind
	Param string
	Value float64
	Limit float64
	Bound BoundKind
	Msg   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	prefix := "opdata: " + e.Kind.String()
	if e.Param != "" {
		prefix += ": " + e.Param
	}
	switch e.Bound {
	case BoundLower:
		return fmt.Sprintf("%s: parameter %s is less than lower bound %s",
			prefix, formatFloat(e.Value), formatFloat(e.Limit))
	case BoundUpper:
		return fmt.Sprintf("%s: parameter %s is greater than upper bound %s",
			prefix, formatFloat(e.Value), formatFloat(e.Limit))
	}
	return prefix + ": " + e.Msg
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnsupportedError describes an operation a kind cannot perform.
type UnsupportedError struct {
	Kind Kind
	Op   string
	Msg  string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("opdata: %s: %s is not supported", e.Kind, e.Op)
	}
	return fmt.Sprintf("opdata: %s: %s is not supported: %s", e.Kind, e.Op, e.Msg)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func invalidf(k Kind, param, format string, args ...any) error {
	return &ValidationError{Kind: k, Param: param, Msg: fmt.Sprintf(format, args...)}
}

// checkBounds validates lo <= v <= hi.
func checkBounds(k Kind, param string, v, lo, hi float64) error {
	if v < lo {
		return &ValidationError{Kind: k, Param: param, Value: v, Limit: lo, Bound: BoundLower}
	}
	if v > hi {
		return &ValidationError{Kind: k, Param: param, Value: v, Limit: hi, Bound: BoundUpper}
	}
	if v != v {
		return invalidf(k, param, "value is NaN")
	}
	return nil
}

func unsupported(k Kind, op, msg string) error {
	return &UnsupportedError{Kind: k, Op: op, Msg: msg}
}
