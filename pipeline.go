package colorpipe

import (
	"fmt"
	"slices"

	"github.com/gogpu/colorpipe/dynamic"
	"github.com/gogpu/colorpipe/internal/cache"
	"github.com/gogpu/colorpipe/internal/cpu"
	"github.com/gogpu/colorpipe/internal/lut"
	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/ops"
	"github.com/gogpu/colorpipe/shader"
)

// Pipeline is a built, finalized and optimized list of operations.
//
// A Pipeline is immutable once Build returns; the only state that changes
// afterwards is the value of its dynamic properties. It is safe to use from
// multiple goroutines.
type Pipeline struct {
	ops      []*ops.Op
	registry *dynamic.Registry
	dir      opdata.Direction
}

// Build flattens transforms in direction dir into operations, finalizes
// them and optimizes the result.
//
// Build copies the operation data it is given. Dynamic properties are
// copied too: every pipeline owns its cells, and all operations of one
// pipeline share one cell per property type.
//
// Errors wrap ErrBuild; a failing operation also matches
// opdata.ErrValidation or opdata.ErrUnsupported.
func Build(transforms []Transform, dir opdata.Direction, opts ...BuildOption) (*Pipeline, error) {
	o := defaultBuildOptions()
	for _, opt := range opts {
		opt(&o)
	}

	list, groups, err := flatten(transforms, dir, o.resolver)
	if err != nil {
		return nil, buildErr(-1, "", err)
	}
	list = ops.CloneDetached(list)
	for i, op := range list {
		if err := op.Finalize(); err != nil {
			return nil, &BuildError{Index: i, Op: op.String(), Group: groups[i], Err: err}
		}
	}

	ops.Unify(list, dynamic.NewRegistry())
	optimized, err := ops.Optimize(list, o.optimizer)
	if err != nil {
		return nil, buildErr(-1, "", err)
	}

	p := newPipeline(optimized, dir)
	Logger().Debug("colorpipe: pipeline built",
		"direction", dir.String(),
		"ops_in", len(list),
		"ops_out", len(optimized),
		"dynamic", p.registry.Len())
	return p, nil
}

// newPipeline wraps a finalized list and collects its dynamic cells.
func newPipeline(list []*ops.Op, dir opdata.Direction) *Pipeline {
	r := dynamic.NewRegistry()
	ops.Unify(list, r)
	return &Pipeline{ops: list, registry: r, dir: dir}
}

// Direction returns the direction the pipeline was built in.
func (p *Pipeline) Direction() opdata.Direction { return p.dir }

// Ops returns the optimized operations. The ops are shared with the
// pipeline and must not be modified.
func (p *Pipeline) Ops() []*ops.Op {
	return append([]*ops.Op(nil), p.ops...)
}

// Len returns the number of operations.
func (p *Pipeline) Len() int { return len(p.ops) }

// CacheID returns an identifier of the pipeline. Pipelines with equal
// identifiers produce the same results, except for the values of dynamic
// properties.
func (p *Pipeline) CacheID() string { return ops.CacheID(p.ops) }

// IsNoOp reports whether the pipeline leaves every pixel unchanged.
func (p *Pipeline) IsNoOp() bool { return ops.IsNoOp(p.ops) }

// HasChannelCrosstalk reports whether some output channel depends on
// other input channels.
func (p *Pipeline) HasChannelCrosstalk() bool { return ops.HasChannelCrosstalk(p.ops) }

// HasDynamicProperty reports whether the pipeline exposes a dynamic
// property of type t.
func (p *Pipeline) HasDynamicProperty(t dynamic.Type) bool { return p.registry.Has(t) }

// DynamicProperties returns the types of the pipeline's dynamic properties.
func (p *Pipeline) DynamicProperties() []dynamic.Type { return p.registry.Types() }

// DynamicProperty returns the pipeline's cell of type t. Setting its value
// affects every processor and program created from the pipeline.
func (p *Pipeline) DynamicProperty(t dynamic.Type) (*dynamic.Property, error) {
	c, err := p.registry.Get(t)
	if err != nil {
		return nil, fmt.Errorf("colorpipe: %s: %w", t, err)
	}
	return c, nil
}

// SetDynamicValue sets the value of the property of type t.
func (p *Pipeline) SetDynamicValue(t dynamic.Type, v float64) error {
	c, err := p.DynamicProperty(t)
	if err != nil {
		return err
	}
	c.SetValue(v)
	return nil
}

// Clone returns a copy of the pipeline sharing its dynamic properties:
// setting a value on either affects both.
func (p *Pipeline) Clone() *Pipeline {
	return newPipeline(ops.CloneAll(p.ops), p.dir)
}

// CloneDetached returns a copy of the pipeline with its own dynamic
// properties, initialised to the current values.
func (p *Pipeline) CloneDetached() *Pipeline {
	return newPipeline(ops.CloneDetached(p.ops), p.dir)
}

// Freeze returns a copy of the pipeline whose dynamic properties are fixed
// at their current values. The copy is optimized again, so adjustments
// that became identities disappear.
func (p *Pipeline) Freeze(opts ...BuildOption) (*Pipeline, error) {
	o := defaultBuildOptions()
	for _, opt := range opts {
		opt(&o)
	}
	list := ops.CloneDetached(p.ops)
	for i, op := range list {
		if err := op.RemoveDynamicProperties(); err != nil {
			return nil, buildErr(i, op.String(), err)
		}
	}
	optimized, err := ops.Optimize(list, o.optimizer)
	if err != nil {
		return nil, buildErr(-1, "", err)
	}
	return newPipeline(optimized, p.dir), nil
}

// chain returns the CPU renderers of the pipeline.
func (p *Pipeline) chain() (cpu.Chain, error) {
	c, err := ops.CPURenderers(p.ops)
	if err != nil {
		return nil, &RenderError{Target: "cpu", Err: err}
	}
	return c, nil
}

// CPUProcessor returns a processor applying the pipeline to images in
// memory.
func (p *Pipeline) CPUProcessor(opts ...ProcessorOption) (*CPUProcessor, error) {
	c, err := p.chain()
	if err != nil {
		return nil, err
	}
	o := defaultProcessorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newCPUProcessor(c, o), nil
}

// GPUShader generates a shader program applying the pipeline.
//
// With cfg.Legacy set the whole pipeline is baked into one
// cfg.Lut3DEdgeLen^3 tetrahedral 3D table. Dynamic properties are then
// frozen at their current values.
func (p *Pipeline) GPUShader(cfg shader.Config) (*shader.Program, error) {
	d, err := shader.NewDesc(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Legacy {
		err = p.emitLegacy(d, cfg.Lut3DEdgeLen)
	} else {
		for _, op := range p.ops {
			if err = op.EmitShader(d); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, &RenderError{Target: cfg.Language.String(), Err: err}
	}
	prog, err := d.Build()
	if err != nil {
		return nil, &RenderError{Target: cfg.Language.String(), Err: err}
	}
	return prog, nil
}

// bakedTables holds legacy tables of pipelines without dynamic properties,
// keyed by pipeline cache identifier and grid size.
var bakedTables = cache.New[string, []float32](16)

// emitLegacy samples the CPU chain on an n^3 grid and emits it as a single
// 3D table.
func (p *Pipeline) emitLegacy(d *shader.Desc, n int) error {
	values, err := p.legacyTable(n)
	if err != nil {
		return err
	}
	baked := opdata.NewLut3DFrom(n, slices.Clone(values))
	baked.Interpolation = opdata.InterpTetrahedral
	op := ops.New(baked, opdata.DirectionForward)
	if err := op.Finalize(); err != nil {
		return err
	}
	return op.EmitShader(d)
}

// legacyTable returns the baked grid of the pipeline, from bakedTables when
// the pipeline has no dynamic properties.
func (p *Pipeline) legacyTable(n int) ([]float32, error) {
	if p.registry.Len() > 0 {
		Logger().Warn("colorpipe: legacy shader freezes dynamic properties",
			"properties", fmt.Sprint(p.registry.Types()))
		return p.bake(n)
	}
	key := fmt.Sprintf("%s|%d", p.CacheID(), n)
	if v, ok := bakedTables.Get(key); ok {
		return v, nil
	}
	v, err := p.bake(n)
	if err != nil {
		return nil, err
	}
	bakedTables.Set(key, v)
	return v, nil
}

// bake returns the pipeline sampled on an n^3 grid, blue fastest.
func (p *Pipeline) bake(n int) ([]float32, error) {
	c, err := ops.CPURenderers(p.ops)
	if err != nil {
		return nil, err
	}

	values := lut.Identity3D(n)
	rgba := make([]float32, 4*n*n*n)
	for i := range n * n * n {
		copy(rgba[4*i:4*i+3], values[3*i:3*i+3])
		rgba[4*i+3] = 1
	}
	c.Apply(rgba)
	for i := range n * n * n {
		copy(values[3*i:3*i+3], rgba[4*i:4*i+3])
	}
	return values, nil
}
