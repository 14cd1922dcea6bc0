// Package colorpipe builds and runs colour-transform pipelines.
//
// # Overview
//
// A pipeline is an ordered list of colour operations (matrices, 1D and 3D
// lookup tables, gamma and log curves, exposure/contrast, range clamps,
// fixed colour-science formulas and ASC CDL). [Build] flattens the caller's
// transforms into operations, validates and finalizes them, and optimizes
// the list. The result can be run on the CPU against images in memory or
// turned into a shader program for the GPU.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/colorpipe"
//	    "github.com/gogpu/colorpipe/opdata"
//	)
//
//	toLinear := opdata.NewGamma(opdata.GammaMoncurveFwd, 2.4, 0.055)
//	p, err := colorpipe.Build([]colorpipe.Transform{
//	    colorpipe.OpTransform{Data: toLinear},
//	}, opdata.DirectionForward)
//	if err != nil {
//	    return err
//	}
//
//	proc, err := p.CPUProcessor()
//	if err != nil {
//	    return err
//	}
//	img, err := colorpipe.NewPackedImageDesc(pixels, w, h, colorpipe.OrderRGBA, opdata.BitDepthUInt16)
//	if err != nil {
//	    return err
//	}
//	err = proc.Apply(img)
//
// # Dynamic properties
//
// Exposure, contrast and gamma of an ExposureContrast operation can be
// marked dynamic. A pipeline exposes one cell per property type; setting
// it with [Pipeline.SetDynamicValue] affects every operation of the
// pipeline and every processor and shader program created from it,
// without rebuilding. [Pipeline.Clone] shares the cells,
// [Pipeline.CloneDetached] gives the copy its own.
//
// # GPU
//
// [Pipeline.GPUShader] generates WGSL and, through naga, GLSL, HLSL, MSL or
// SPIR-V. Table operations become float textures; the returned
// [shader.Program] describes them and the bind group layout with gputypes
// descriptors. The package never touches a GPU device itself.
//
// # Concurrency
//
// A built Pipeline is read-only. Processors and programs created from it
// may be used from any number of goroutines; dynamic values may be changed
// concurrently with rendering, and each pixel block reads the values once.
package colorpipe
