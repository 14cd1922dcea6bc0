// Package opdata defines the mathematical description of each step of a
// colour pipeline.
//
// Every step is one variant of the sealed [Data] interface: [Matrix],
// [Lut1D], [InvLut1D], [Lut3D], [Gamma], [Log], [ExposureContrast],
// [FixedFunction], [Range], [CDL] and [Reference]. A value knows how to
// validate itself, compute its cache identifier, produce its inverse and
// compare itself with another value; it knows nothing about pipelines or
// execution backends.
//
// Validation failures are reported as [*ValidationError] naming the
// parameter, its value and the violated bound, and match [ErrValidation].
// Operations a kind cannot perform return [*UnsupportedError], matching
// [ErrUnsupported].
package opdata
