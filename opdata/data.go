package opdata

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"github.com/gogpu/colorpipe/dynamic"
)

// Data is the mathematical description of one transform step.
//
// The set of implementations is closed: *Matrix, *Lut1D, *InvLut1D, *Lut3D,
// *Gamma, *Log, *ExposureContrast, *FixedFunction, *Range, *CDL and
// *Reference. Code that dispatches over kinds uses a type switch whose
// default case panics, and the package tests run every Kind through every
// dispatch site.
//
// Parameters are exported fields. A Data value is treated as immutable once
// Finalize has returned; to change a finalized value, Clone it, modify the
// clone and finalize the clone.
type Data interface {
	// Kind returns the variant tag.
	Kind() Kind

	// Validate checks parameter bounds and table shapes.
	Validate() error

	// Finalize validates, computes derived state and the cache identifier.
	// Calling it again on an unchanged value yields the same identifier.
	Finalize() error

	// CacheID returns the identifier computed by the last Finalize, or ""
	// if the value was never finalized.
	CacheID() string

	// Clone returns a deep copy. Dynamic properties are shared by reference.
	Clone() Data

	// Inverse returns a new value describing the inverse transform, or an
	// *UnsupportedError if the kind has no inverse.
	Inverse() (Data, error)

	// IsIdentity reports whether the parameters describe an identity,
	// ignoring any clamping the kind performs.
	IsIdentity() bool

	// IdentityReplacement returns the clamp an identity of this kind still
	// performs, or nil if it is a pure pass-through.
	IdentityReplacement() Data

	// Equal reports whether other has the same kind and the same effective
	// parameters.
	Equal(other Data) bool

	// HasChannelCrosstalk reports whether an output channel depends on
	// more than its own input channel.
	HasChannelCrosstalk() bool

	// Metadata returns the annotation attached by the file front end.
	Metadata() *Metadata

	isData()
}

// Dynamic is implemented by kinds that reference dynamic properties.
type Dynamic interface {
	Data

	// DynamicHandles returns the handles of every property, dynamic or not.
	DynamicHandles() []*dynamic.Handle
}

// base carries the state common to every kind.
type base struct {
	meta    *Metadata
	cacheID string
}

func (*base) isData() {}

// Metadata returns the annotation, creating an empty one on first use.
func (b *base) Metadata() *Metadata {
	if b.meta == nil {
		b.meta = &Metadata{}
	}
	return b.meta
}

// CacheID returns the identifier computed by the last Finalize.
func (b *base) CacheID() string { return b.cacheID }

func (b *base) cloneBase() base {
	return base{meta: b.meta.Clone(), cacheID: b.cacheID}
}

// idBuilder accumulates the parameters of a kind into a digest.
type idBuilder struct {
	kind Kind
	h    hash.Hash
	buf  [8]byte
}

func newIDBuilder(k Kind) *idBuilder {
	b := &idBuilder{kind: k, h: sha256.New()}
	b.h.Write([]byte(k.String()))
	return b
}

func (b *idBuilder) float(vs ...float64) *idBuilder {
	for _, v := range vs {
		binary.LittleEndian.PutUint64(b.buf[:], math.Float64bits(v))
		b.h.Write(b.buf[:])
	}
	return b
}

func (b *idBuilder) float32s(vs []float32) *idBuilder {
	if len(vs) == 0 {
		return b
	}
	_ = binary.Write(b.h, binary.LittleEndian, vs)
	return b
}

func (b *idBuilder) int(vs ...int) *idBuilder {
	for _, v := range vs {
		binary.LittleEndian.PutUint64(b.buf[:], uint64(v))
		b.h.Write(b.buf[:])
	}
	return b
}

func (b *idBuilder) str(s string) *idBuilder {
	b.int(len(s))
	b.h.Write([]byte(s))
	return b
}

func (b *idBuilder) String() string {
	sum := b.h.Sum(nil)
	return b.kind.String() + ":" + hex.EncodeToString(sum[:12])
}

// finite reports whether every value is a finite number.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

const equalTolerance = 1e-9

func nearlyEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= equalTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func nearlyEqualSlices32(a, b []float32, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if math.Abs(float64(a[i])-float64(b[i])) > tol {
			return false
		}
	}
	return true
}
