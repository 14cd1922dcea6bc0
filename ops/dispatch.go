package ops

import (
	"fmt"

	"github.com/gogpu/colorpipe/internal/cpu"
	"github.com/gogpu/colorpipe/internal/gpugen"
	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/shader"
)

// CPURenderer returns the CPU renderer of the op's rendered data.
// Reference ops cannot be rendered and must be resolved before.
func (o *Op) CPURenderer() (cpu.Renderer, error) {
	if o.render == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFinalized, o)
	}
	switch d := o.render.(type) {
	case *opdata.Matrix:
		return cpu.NewMatrix(d), nil
	case *opdata.Range:
		return cpu.NewRange(d), nil
	case *opdata.Gamma:
		return cpu.NewGamma(d), nil
	case *opdata.Log:
		return cpu.NewLog(d), nil
	case *opdata.ExposureContrast:
		return cpu.NewExposureContrast(d), nil
	case *opdata.FixedFunction:
		return cpu.NewFixedFunction(d), nil
	case *opdata.CDL:
		return cpu.NewCDL(d), nil
	case *opdata.Lut1D:
		return cpu.NewLut1D(d), nil
	case *opdata.InvLut1D:
		return cpu.NewInvLut1D(d), nil
	case *opdata.Lut3D:
		return cpu.NewLut3D(d), nil
	case *opdata.Reference:
		return nil, unresolved(d)
	default:
		panic(fmt.Sprintf("ops: unhandled kind %s", o.render.Kind()))
	}
}

// EmitShader appends the op's shader code and resources to d.
func (o *Op) EmitShader(d *shader.Desc) error {
	if o.render == nil {
		return fmt.Errorf("%w: %s", ErrNotFinalized, o)
	}
	switch r := o.render.(type) {
	case *opdata.Matrix:
		return gpugen.Matrix(d, r)
	case *opdata.Range:
		return gpugen.Range(d, r)
	case *opdata.Gamma:
		return gpugen.Gamma(d, r)
	case *opdata.Log:
		return gpugen.Log(d, r)
	case *opdata.ExposureContrast:
		return gpugen.ExposureContrast(d, r)
	case *opdata.FixedFunction:
		return gpugen.FixedFunction(d, r)
	case *opdata.CDL:
		return gpugen.CDL(d, r)
	case *opdata.Lut1D:
		return gpugen.Lut1D(d, r)
	case *opdata.InvLut1D:
		return gpugen.InvLut1D(d, r)
	case *opdata.Lut3D:
		return gpugen.Lut3D(d, r)
	case *opdata.Reference:
		return unresolved(r)
	default:
		panic(fmt.Sprintf("ops: unhandled kind %s", o.render.Kind()))
	}
}

func unresolved(r *opdata.Reference) error {
	return &opdata.UnsupportedError{
		Kind: opdata.KindReference,
		Op:   "render",
		Msg:  fmt.Sprintf("reference %q was not resolved", r.Target()),
	}
}

// CPURenderers returns the renderers of every op in order.
func CPURenderers(list []*Op) (cpu.Chain, error) {
	chain := make(cpu.Chain, 0, len(list))
	for _, o := range list {
		r, err := o.CPURenderer()
		if err != nil {
			return nil, err
		}
		chain = append(chain, r)
	}
	return chain, nil
}
