package parallel

import "sync"

// Scratch is a reusable float RGBA buffer holding one block of pixels.
type Scratch struct {
	// RGBA holds 4 floats per pixel. Its length is 4 * the pool's block size.
	RGBA []float32
}

// Pixels returns the first n pixels of the buffer.
func (s *Scratch) Pixels(n int) []float32 {
	return s.RGBA[:4*n]
}

// ScratchPool provides block-sized scratch buffers via sync.Pool.
//
// Thread safety: ScratchPool is safe for concurrent use.
type ScratchPool struct {
	blockSize int
	pool      sync.Pool
}

// NewScratchPool creates a pool of buffers large enough for blockSize
// pixels.
func NewScratchPool(blockSize int) *ScratchPool {
	if blockSize <= 0 {
		blockSize = 1
	}
	p := &ScratchPool{blockSize: blockSize}
	p.pool.New = func() any {
		return &Scratch{RGBA: make([]float32, 4*blockSize)}
	}
	return p
}

// BlockSize returns the number of pixels each buffer holds.
func (p *ScratchPool) BlockSize() int {
	return p.blockSize
}

// Get returns a buffer. Its contents are unspecified.
func (p *ScratchPool) Get() *Scratch {
	return p.pool.Get().(*Scratch)
}

// Put returns a buffer to the pool. Buffers of another size are dropped.
// If s is nil, this is a no-op.
func (p *ScratchPool) Put(s *Scratch) {
	if s == nil || len(s.RGBA) != 4*p.blockSize {
		return
	}
	p.pool.Put(s)
}
