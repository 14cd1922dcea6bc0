package colorpipe

import (
	"fmt"

	"github.com/gogpu/colorpipe/internal/cpu"
	"github.com/gogpu/colorpipe/internal/packing"
	"github.com/gogpu/colorpipe/internal/parallel"
)

// CPUProcessor applies a pipeline to images in memory.
//
// Images are processed in blocks of pixels: each block is converted to
// float RGBA, run through every operation and converted back. Blocks are
// independent and run in parallel. Every block reads the current values of
// the dynamic properties once, so a value changed during Apply may reach
// some blocks and not others.
//
// Thread safety: CPUProcessor is safe for concurrent use.
type CPUProcessor struct {
	chain   cpu.Chain
	pool    *parallel.BlockPool
	ownPool bool
	scratch *parallel.ScratchPool
}

func newCPUProcessor(c cpu.Chain, o processorOptions) *CPUProcessor {
	p := &CPUProcessor{
		chain:   c,
		scratch: parallel.NewScratchPool(o.blockSize),
	}
	switch o.workers {
	case 0:
		p.pool = parallel.Shared()
	default:
		p.pool = parallel.NewBlockPool(o.workers)
		p.ownPool = true
	}
	return p
}

// BlockSize returns the number of pixels per block.
func (p *CPUProcessor) BlockSize() int { return p.scratch.BlockSize() }

// IsNoOp reports whether the processor leaves pixels unchanged.
func (p *CPUProcessor) IsNoOp() bool { return len(p.chain) == 0 }

// Close releases the processor's own worker pool, if any. A closed
// processor keeps working on the calling goroutine.
func (p *CPUProcessor) Close() {
	if p.ownPool {
		p.pool.Close()
	}
}

// Apply transforms the image in place. An empty image is not an error.
func (p *CPUProcessor) Apply(img ImageDesc) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	d, err := img.generic()
	if err != nil {
		return err
	}
	n := d.NumPixels()
	if n == 0 || len(p.chain) == 0 {
		return nil
	}

	size := p.scratch.BlockSize()
	p.pool.Run(parallel.Blocks(n, size), func(b int) {
		start, end := parallel.BlockRange(b, n, size)
		if px, ok := packing.Block(d, start, end-start); ok {
			p.chain.Apply(px)
			return
		}
		s := p.scratch.Get()
		defer p.scratch.Put(s)
		px := s.Pixels(end - start)
		packing.Pack(d, px, start, end-start)
		p.chain.Apply(px)
		packing.Unpack(d, px, start, end-start)
	})
	return nil
}

// ApplyRGBA transforms interleaved float RGBA pixels in place. The length
// of rgba must be a multiple of 4.
func (p *CPUProcessor) ApplyRGBA(rgba []float32) error {
	if len(rgba)%4 != 0 {
		return fmt.Errorf("%w: %d floats is not a whole number of RGBA pixels", ErrInvalidImage, len(rgba))
	}
	n := len(rgba) / 4
	size := p.scratch.BlockSize()
	p.pool.Run(parallel.Blocks(n, size), func(b int) {
		start, end := parallel.BlockRange(b, n, size)
		p.chain.Apply(rgba[4*start : 4*end])
	})
	return nil
}

// ApplyPixel transforms a single RGBA pixel.
func (p *CPUProcessor) ApplyPixel(px [4]float32) [4]float32 {
	p.chain.ApplyPixel(&px)
	return px
}
