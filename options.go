package colorpipe

import (
	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/ops"
)

// BuildOption configures Build.
//
// Example:
//
//	p, err := colorpipe.Build(transforms, opdata.DirectionForward,
//	    colorpipe.WithOptimization(ops.OptimizationLossy),
//	    colorpipe.WithInputBitDepth(opdata.BitDepthUInt10))
type BuildOption func(*buildOptions)

// buildOptions holds the configuration of one Build call.
type buildOptions struct {
	optimizer ops.OptimizerConfig
	resolver  ReferenceResolver
}

func defaultBuildOptions() buildOptions {
	return buildOptions{optimizer: ops.DefaultOptimizerConfig()}
}

// WithOptimization selects the optimizer rewrites. The default is
// ops.OptimizationDefault; ops.OptimizationNone keeps the flattened list
// as is.
func WithOptimization(flags ops.OptimizationFlags) BuildOption {
	return func(o *buildOptions) {
		o.optimizer.Flags = flags
	}
}

// WithCompositionPolicy selects how lossy table composition chooses the
// size of the composed table.
func WithCompositionPolicy(p ops.CompositionPolicy) BuildOption {
	return func(o *buildOptions) {
		o.optimizer.Policy = p
	}
}

// WithInputBitDepth declares the bit depth of the images the pipeline will
// process. It guides ops.CompositionResampleBitDepth.
func WithInputBitDepth(d opdata.BitDepth) BuildOption {
	return func(o *buildOptions) {
		o.optimizer.InputBitDepth = d
	}
}

// WithTolerances sets the deviations within which a composed table still
// counts as an identity.
func WithTolerances(t ops.Tolerances) BuildOption {
	return func(o *buildOptions) {
		o.optimizer.Tolerances = t
	}
}

// WithMaxPasses bounds the number of optimizer iterations.
func WithMaxPasses(n int) BuildOption {
	return func(o *buildOptions) {
		o.optimizer.MaxPasses = n
	}
}

// WithReferenceResolver resolves Reference operations during Build.
// Without a resolver any Reference fails the build.
func WithReferenceResolver(r ReferenceResolver) BuildOption {
	return func(o *buildOptions) {
		o.resolver = r
	}
}

// DefaultBlockSize is the number of pixels a processor transforms per
// block.
const DefaultBlockSize = 1024

// ProcessorOption configures a CPUProcessor.
type ProcessorOption func(*processorOptions)

type processorOptions struct {
	blockSize int
	workers   int
}

func defaultProcessorOptions() processorOptions {
	return processorOptions{blockSize: DefaultBlockSize}
}

// WithBlockSize sets the number of pixels per block. Values below 1 select
// DefaultBlockSize.
func WithBlockSize(n int) ProcessorOption {
	return func(o *processorOptions) {
		if n < 1 {
			n = DefaultBlockSize
		}
		o.blockSize = n
	}
}

// WithWorkers sets the number of goroutines processing blocks. 1 processes
// on the calling goroutine; 0, the default, uses a process-wide pool sized
// to GOMAXPROCS. A processor with its own pool must be closed.
func WithWorkers(n int) ProcessorOption {
	return func(o *processorOptions) {
		o.workers = max(n, 0)
	}
}
