package dynamic

import "sync/atomic"

// Handle is an operation's reference to a Property.
//
// Cloning a handle copies the reference, so the clone and the original keep
// observing the same cell. Replace repoints a handle at another cell in one
// atomic step; readers see either the old or the new cell in full.
type Handle struct {
	p atomic.Pointer[Property]
}

// NewHandle returns a handle pointing at p.
func NewHandle(p *Property) *Handle {
	h := &Handle{}
	h.p.Store(p)
	return h
}

// Load returns the property the handle currently points at.
func (h *Handle) Load() *Property { return h.p.Load() }

// Replace repoints the handle at p.
func (h *Handle) Replace(p *Property) {
	if p == nil {
		return
	}
	h.p.Store(p)
}

// Value returns the current value of the referenced property.
func (h *Handle) Value() float64 { return h.p.Load().Value() }

// Type returns the type of the referenced property.
func (h *Handle) Type() Type { return h.p.Load().Type() }

// IsDynamic reports whether the referenced property is live-editable.
func (h *Handle) IsDynamic() bool { return h.p.Load().IsDynamic() }

// Clone returns a new handle pointing at the same property.
func (h *Handle) Clone() *Handle { return NewHandle(h.p.Load()) }

// Detach repoints the handle at a frozen, non-dynamic copy of its current
// value. After Detach the owning operation no longer follows live edits.
func (h *Handle) Detach() {
	h.p.Store(h.p.Load().Snapshot())
}

// Isolate repoints the handle at a private copy of its property that keeps
// the dynamic flag. Used when a pipeline clone must not share live cells
// with the pipeline it was cloned from.
func (h *Handle) Isolate() {
	old := h.p.Load()
	h.p.Store(NewProperty(old.Type(), old.Value(), old.IsDynamic()))
}

// SameCell reports whether two handles reference the same property.
func (h *Handle) SameCell(other *Handle) bool {
	return other != nil && h.p.Load() == other.p.Load()
}
