package dynamic

import "errors"

// ErrNotDynamic is returned when a property type is requested from a
// pipeline that exposes no dynamic cell of that type.
var ErrNotDynamic = errors.New("dynamic: property is not dynamic")

// Registry collects the dynamic cells of one pipeline.
//
// While a pipeline is built, every dynamic handle is passed to Unify. The
// first dynamic property seen for a type becomes the pipeline's cell for
// that type and every later handle of the same type is repointed at it, so
// a single SetValue reaches every operation.
//
// Registry is filled by the single goroutine building the pipeline and is
// read-only afterwards.
type Registry struct {
	cells [typeCount]*Property
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Unify registers h. Non-dynamic handles are ignored.
func (r *Registry) Unify(h *Handle) {
	if h == nil || !h.IsDynamic() {
		return
	}
	t := h.Type()
	if cell := r.cells[t]; cell != nil {
		h.Replace(cell)
		return
	}
	r.cells[t] = h.Load()
}

// Has reports whether the registry holds a cell of type t.
func (r *Registry) Has(t Type) bool {
	return t < typeCount && r.cells[t] != nil
}

// Get returns the cell of type t.
func (r *Registry) Get(t Type) (*Property, error) {
	if !r.Has(t) {
		return nil, ErrNotDynamic
	}
	return r.cells[t], nil
}

// Types returns the registered property types.
func (r *Registry) Types() []Type {
	var out []Type
	for _, t := range Types() {
		if r.cells[t] != nil {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of registered cells.
func (r *Registry) Len() int {
	n := 0
	for _, c := range r.cells {
		if c != nil {
			n++
		}
	}
	return n
}
