package colorpipe

import (
	"errors"
	"fmt"

	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/ops"
)

// maxReferenceDepth bounds nested reference resolution.
const maxReferenceDepth = 64

var (
	// ErrUnresolvedReference is returned by Build for a Reference operation
	// when no resolver was configured or the resolver returned nothing.
	ErrUnresolvedReference = errors.New("colorpipe: unresolved reference")

	// ErrReferenceCycle is returned by Build when a reference resolves,
	// directly or through others, to itself.
	ErrReferenceCycle = errors.New("colorpipe: reference cycle")
)

// Transform is one element of the input of Build: a single operation or a
// group of transforms.
type Transform interface {
	isTransform()
}

// OpTransform applies one operation. Build copies Data; the caller keeps
// ownership of it.
type OpTransform struct {
	Data      opdata.Data
	Direction opdata.Direction
}

// GroupTransform applies its children in order, or their inverses in
// reverse order when Direction is inverse. The "name" or "id" attribute of
// Metadata labels build errors of the group's operations.
type GroupTransform struct {
	Children  []Transform
	Direction opdata.Direction
	Metadata  *opdata.Metadata
}

func (OpTransform) isTransform()    {}
func (GroupTransform) isTransform() {}

// ReferenceResolver turns a Reference operation into the transform it
// names. It is supplied by the front end that parsed the transforms.
type ReferenceResolver interface {
	Resolve(ref *opdata.Reference) (Transform, error)
}

// ReferenceResolverFunc adapts a function to ReferenceResolver.
type ReferenceResolverFunc func(ref *opdata.Reference) (Transform, error)

// Resolve calls f(ref).
func (f ReferenceResolverFunc) Resolve(ref *opdata.Reference) (Transform, error) { return f(ref) }

// flattener turns nested transforms into an op list.
type flattener struct {
	resolver ReferenceResolver
	visiting map[string]bool
	depth    int
	group    string
	list     []*ops.Op
	groups   []string // group label of each op in list
}

func (f *flattener) add(t Transform, outer opdata.Direction) error {
	switch t := t.(type) {
	case OpTransform:
		return f.addOp(t.Data, t.Direction.Compose(outer))
	case *OpTransform:
		return f.addOp(t.Data, t.Direction.Compose(outer))
	case GroupTransform:
		return f.addLabeled(t.Metadata, t.Children, t.Direction.Compose(outer))
	case *GroupTransform:
		return f.addLabeled(t.Metadata, t.Children, t.Direction.Compose(outer))
	case nil:
		return fmt.Errorf("colorpipe: nil transform")
	default:
		panic(fmt.Sprintf("colorpipe: unhandled transform %T", t))
	}
}

func (f *flattener) addLabeled(md *opdata.Metadata, children []Transform, dir opdata.Direction) error {
	label, ok := md.Attribute("name")
	if !ok {
		label, ok = md.Attribute("id")
	}
	if !ok {
		return f.addGroup(children, dir)
	}
	outer := f.group
	f.group = label
	err := f.addGroup(children, dir)
	f.group = outer
	return err
}

func (f *flattener) addGroup(children []Transform, dir opdata.Direction) error {
	if dir == opdata.DirectionForward {
		for _, c := range children {
			if err := f.add(c, dir); err != nil {
				return err
			}
		}
		return nil
	}
	for i := len(children) - 1; i >= 0; i-- {
		if err := f.add(children[i], dir); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) addOp(d opdata.Data, dir opdata.Direction) error {
	if d == nil {
		return fmt.Errorf("colorpipe: transform without operation data")
	}
	ref, ok := d.(*opdata.Reference)
	if !ok {
		f.list = append(f.list, ops.New(d, dir))
		f.groups = append(f.groups, f.group)
		return nil
	}

	if err := ref.Validate(); err != nil {
		return err
	}
	target := ref.Target()
	if f.resolver == nil {
		return fmt.Errorf("%w: %q", ErrUnresolvedReference, target)
	}
	if f.visiting[target] || f.depth >= maxReferenceDepth {
		return fmt.Errorf("%w: %q", ErrReferenceCycle, target)
	}
	resolved, err := f.resolver.Resolve(ref)
	if err != nil {
		return fmt.Errorf("colorpipe: resolve %q: %w", target, err)
	}
	if resolved == nil {
		return fmt.Errorf("%w: %q", ErrUnresolvedReference, target)
	}
	f.visiting[target] = true
	f.depth++
	err = f.add(resolved, ref.Direction.Compose(dir))
	f.depth--
	delete(f.visiting, target)
	return err
}

// flatten returns the op list of transforms applied in direction dir and
// the group label of each op.
func flatten(transforms []Transform, dir opdata.Direction, resolver ReferenceResolver) ([]*ops.Op, []string, error) {
	f := &flattener{resolver: resolver, visiting: make(map[string]bool)}
	if err := f.addGroup(transforms, dir); err != nil {
		return nil, nil, err
	}
	return f.list, f.groups, nil
}
