// Package gpugen emits WGSL for each operation kind into a [shader.Desc].
//
// Every emitter reads the finalized forward-direction data the CPU
// renderers read and reproduces the same arithmetic: tables are fetched
// with textureLoad and interpolated in the shader exactly as internal/lut
// does it. Non-dynamic parameters are inlined as literals; dynamic ones
// become uniforms.
package gpugen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// lit formats v as a WGSL f32 literal. Infinities saturate to the largest
// finite f32.
func lit(v float64) string {
	switch {
	case math.IsNaN(v):
		v = 0
	case v > math.MaxFloat32:
		v = math.MaxFloat32
	case v < -math.MaxFloat32:
		v = -math.MaxFloat32
	}
	s := strconv.FormatFloat(float64(float32(v)), 'g', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	if strings.HasPrefix(s, "-") {
		return "(" + s + ")"
	}
	return s
}

func vec3Lit(v [3]float64) string {
	return fmt.Sprintf("vec3<f32>(%s, %s, %s)", lit(v[0]), lit(v[1]), lit(v[2]))
}

func vec4Lit(v [4]float64) string {
	return fmt.Sprintf("vec4<f32>(%s, %s, %s, %s)", lit(v[0]), lit(v[1]), lit(v[2]), lit(v[3]))
}

func splat3(v float64) string { return fmt.Sprintf("vec3<f32>(%s)", lit(v)) }

// code accumulates the lines of one operation block.
type code struct {
	strings.Builder
}

func (c *code) line(format string, args ...any) {
	fmt.Fprintf(&c.Builder, format, args...)
	c.WriteByte('\n')
}
