// Package cpu implements the per-kind CPU renderers of the colour pipeline.
//
// Every renderer works in place on canonical pixels: interleaved float32
// R, G, B, A. Renderers hold the finalized operation data they were built
// from and never derive parameters of their own, so they agree with the
// shader generator, which reads the same data.
//
// Renderers are safe for concurrent use. Renderers of dynamic operations
// read the current property values once at the start of each Apply call.
package cpu

// Renderer processes a block of canonical RGBA pixels in place.
type Renderer interface {
	// Apply transforms len(rgba)/4 pixels.
	Apply(rgba []float32)
}

// Chain applies a list of renderers in order.
type Chain []Renderer

// Apply runs every renderer of the chain over the block.
func (c Chain) Apply(rgba []float32) {
	for _, r := range c {
		r.Apply(rgba)
	}
}

// ApplyPixel runs the chain over a single pixel.
func (c Chain) ApplyPixel(px *[4]float32) {
	c.Apply(px[:])
}
