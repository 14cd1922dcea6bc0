// Package ops wraps operation data into pipeline steps and optimizes
// ordered lists of them.
//
// An [Op] pairs an [opdata.Data] with a processing direction. Finalize
// resolves the direction once: the op keeps the forward-direction data it
// renders, which is the single source both the CPU renderers and the
// shader emitters read. The [Optimize] function rewrites an op list into a
// shorter equivalent one; it never reorders ops.
package ops

import (
	"errors"
	"fmt"

	"github.com/gogpu/colorpipe/dynamic"
	"github.com/gogpu/colorpipe/opdata"
)

// ErrNotFinalized is returned when an operation that needs the rendered
// data is called before Finalize.
var ErrNotFinalized = errors.New("ops: op is not finalized")

// Op is one step of a pipeline.
//
// An Op is built single-threaded, finalized, and then treated as read-only:
// renderers may share it across goroutines. The only state that changes
// after Finalize lives in dynamic property cells.
type Op struct {
	data    opdata.Data
	dir     opdata.Direction
	render  opdata.Data
	cacheID string
}

// New returns an op applying d in direction dir. d is owned by the op from
// here on; callers that keep using it must pass a clone.
func New(d opdata.Data, dir opdata.Direction) *Op {
	return &Op{data: d, dir: dir}
}

// Data returns the wrapped operation data.
func (o *Op) Data() opdata.Data { return o.data }

// Direction returns the processing direction.
func (o *Op) Direction() opdata.Direction { return o.dir }

// Kind returns the kind of the wrapped data.
func (o *Op) Kind() opdata.Kind { return o.data.Kind() }

// Render returns the forward-direction data the backends execute, or nil
// before Finalize.
func (o *Op) Render() opdata.Data { return o.render }

// CacheID returns the identifier computed by Finalize.
func (o *Op) CacheID() string { return o.cacheID }

// IsFinalized reports whether Finalize has succeeded.
func (o *Op) IsFinalized() bool { return o.render != nil }

// Finalize finalizes the data, resolves the direction and computes the
// cache identifier. Calling it again keeps the rendered data and refreshes
// the identifiers.
func (o *Op) Finalize() error {
	if err := o.data.Finalize(); err != nil {
		return fmt.Errorf("ops: finalize %s: %w", o.Kind(), err)
	}
	if o.render == nil {
		if o.dir == opdata.DirectionInverse {
			inv, err := o.data.Inverse()
			if err != nil {
				return fmt.Errorf("ops: invert %s: %w", o.Kind(), err)
			}
			o.render = inv
		} else {
			o.render = o.data
		}
	}
	if o.render != o.data {
		if err := o.render.Finalize(); err != nil {
			return fmt.Errorf("ops: finalize inverse %s: %w", o.Kind(), err)
		}
	}
	o.cacheID = fmt.Sprintf("<%s %s %s>", o.Kind(), o.dir, o.data.CacheID())
	return nil
}

// Clone returns a copy of the op. The data is deep-copied; dynamic
// properties stay shared with the original.
func (o *Op) Clone() *Op {
	c := &Op{data: o.data.Clone(), dir: o.dir, cacheID: o.cacheID}
	switch {
	case o.render == nil:
	case o.render == o.data:
		c.render = c.data
	default:
		c.render = o.render.Clone()
	}
	return c
}

// String formats the op for diagnostics.
func (o *Op) String() string {
	if o.cacheID != "" {
		return o.cacheID
	}
	return fmt.Sprintf("<%s %s>", o.Kind(), o.dir)
}

// IsIdentity reports whether the op leaves every value unchanged, ignoring
// clamping. It is false before Finalize.
func (o *Op) IsIdentity() bool {
	return o.render != nil && o.render.IsIdentity()
}

// HasChannelCrosstalk reports whether an output channel depends on other
// input channels.
func (o *Op) HasChannelCrosstalk() bool {
	if o.render == nil {
		return o.data.HasChannelCrosstalk()
	}
	return o.render.HasChannelCrosstalk()
}

// IsInverse reports whether next undoes o: the inverse of o's rendered data
// equals next's rendered data and any dynamic properties are the same
// cells. Kinds need not match; a forward table and its inverse evaluation
// qualify.
func (o *Op) IsInverse(next *Op) bool {
	if o.render == nil || next.render == nil {
		return false
	}
	inv, err := o.render.Inverse()
	if err != nil || !inv.Equal(next.render) {
		return false
	}
	return sameCells(o.render, next.render)
}

// sameCells reports whether two data values reference the same dynamic
// cells for every property that is dynamic in either.
func sameCells(a, b opdata.Data) bool {
	da, okA := a.(opdata.Dynamic)
	db, okB := b.(opdata.Dynamic)
	if !okA || !okB {
		return okA == okB
	}
	ha, hb := da.DynamicHandles(), db.DynamicHandles()
	if len(ha) != len(hb) {
		return false
	}
	for i := range ha {
		if (ha[i].IsDynamic() || hb[i].IsDynamic()) && !ha[i].SameCell(hb[i]) {
			return false
		}
	}
	return true
}

// handles returns the dynamic handles of the data and, when distinct, of
// the rendered data. Handles of one property type appear data first.
func (o *Op) handles() []*dynamic.Handle {
	var hs []*dynamic.Handle
	if d, ok := o.data.(opdata.Dynamic); ok {
		hs = append(hs, d.DynamicHandles()...)
	}
	if o.render != nil && o.render != o.data {
		if d, ok := o.render.(opdata.Dynamic); ok {
			hs = append(hs, d.DynamicHandles()...)
		}
	}
	return hs
}

// IsDynamic reports whether any property of the op is dynamic.
func (o *Op) IsDynamic() bool {
	for _, h := range o.handles() {
		if h.IsDynamic() {
			return true
		}
	}
	return false
}

// HasDynamicProperty reports whether the op exposes a dynamic property of
// type t.
func (o *Op) HasDynamicProperty(t dynamic.Type) bool {
	for _, h := range o.handles() {
		if h.Type() == t && h.IsDynamic() {
			return true
		}
	}
	return false
}

// DynamicProperty returns the live cell of type t.
func (o *Op) DynamicProperty(t dynamic.Type) (*dynamic.Property, error) {
	for _, h := range o.handles() {
		if h.Type() == t && h.IsDynamic() {
			return h.Load(), nil
		}
	}
	return nil, fmt.Errorf("ops: %s has no %s property: %w", o.Kind(), t, dynamic.ErrNotDynamic)
}

// ReplaceDynamicProperty points every handle of type t at p. Each handle
// switches atomically; a renderer sees either the old or the new cell.
func (o *Op) ReplaceDynamicProperty(t dynamic.Type, p *dynamic.Property) error {
	if !o.HasDynamicProperty(t) {
		return fmt.Errorf("ops: %s has no %s property: %w", o.Kind(), t, dynamic.ErrNotDynamic)
	}
	for _, h := range o.handles() {
		if h.Type() == t {
			h.Replace(p)
		}
	}
	return nil
}

// RemoveDynamicProperties freezes every property at its current value. The
// op stops following live edits and its cache identifier then reflects the
// frozen values.
func (o *Op) RemoveDynamicProperties() error {
	hs := o.handles()
	if len(hs) == 0 {
		return nil
	}
	frozen := make(map[dynamic.Type]*dynamic.Property)
	for _, h := range hs {
		if p, ok := frozen[h.Type()]; ok {
			h.Replace(p)
			continue
		}
		h.Detach()
		frozen[h.Type()] = h.Load()
	}
	if o.render == nil {
		return nil
	}
	return o.Finalize()
}

// unify registers every dynamic handle of the op with r.
func (o *Op) unify(r *dynamic.Registry) {
	for _, h := range o.handles() {
		r.Unify(h)
	}
}

// isolate repoints every dynamic handle at a private copy of its cell.
// fresh maps old cells to their copies so that handles sharing a cell
// before keep sharing one after.
func (o *Op) isolate(fresh map[*dynamic.Property]*dynamic.Property) {
	for _, h := range o.handles() {
		old := h.Load()
		if !old.IsDynamic() {
			continue
		}
		p, ok := fresh[old]
		if !ok {
			p = dynamic.NewProperty(old.Type(), old.Value(), true)
			fresh[old] = p
		}
		h.Replace(p)
	}
}
