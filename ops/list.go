package ops

import (
	"strings"

	"github.com/gogpu/colorpipe/dynamic"
)

// FinalizeAll finalizes every op of the list.
func FinalizeAll(list []*Op) error {
	for _, o := range list {
		if err := o.Finalize(); err != nil {
			return err
		}
	}
	return nil
}

// CloneAll returns a deep copy of the list. Dynamic properties stay shared
// with the original.
func CloneAll(list []*Op) []*Op {
	out := make([]*Op, len(list))
	for i, o := range list {
		out[i] = o.Clone()
	}
	return out
}

// CloneDetached returns a deep copy of the list whose dynamic properties
// are private copies of the original cells. Ops that shared a cell share
// the copy.
func CloneDetached(list []*Op) []*Op {
	out := CloneAll(list)
	fresh := make(map[*dynamic.Property]*dynamic.Property)
	for _, o := range out {
		o.isolate(fresh)
	}
	return out
}

// Unify registers every dynamic handle of the list with r, so that all ops
// of one pipeline share a single cell per property type.
func Unify(list []*Op, r *dynamic.Registry) {
	for _, o := range list {
		o.unify(r)
	}
}

// CacheID returns an identifier of the whole list.
func CacheID(list []*Op) string {
	var b strings.Builder
	for _, o := range list {
		b.WriteString(o.CacheID())
	}
	return b.String()
}

// IsNoOp reports whether the list changes nothing: it is empty or holds
// only identities without dynamic properties.
func IsNoOp(list []*Op) bool {
	for _, o := range list {
		if !o.IsIdentity() || o.IsDynamic() {
			return false
		}
	}
	return true
}

// HasChannelCrosstalk reports whether some op of the list mixes channels.
func HasChannelCrosstalk(list []*Op) bool {
	for _, o := range list {
		if o.HasChannelCrosstalk() {
			return true
		}
	}
	return false
}
