package gpugen

import (
	"fmt"
	"math"

	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/shader"
)

// Matrix emits col = M * col + offset.
func Matrix(d *shader.Desc, m *opdata.Matrix) error {
	var c code
	if m.IsDiagonal() {
		c.line("col = col * %s;", vec4Lit([4]float64{m.M[0], m.M[5], m.M[10], m.M[15]}))
	} else {
		var cols [4]string
		for j := range 4 {
			cols[j] = vec4Lit([4]float64{m.M[j], m.M[4+j], m.M[8+j], m.M[12+j]})
		}
		c.line("let m = mat4x4<f32>(%s, %s, %s, %s);", cols[0], cols[1], cols[2], cols[3])
		c.line("col = m * col;")
	}
	if !m.IsOffsetZero() {
		c.line("col = col + %s;", vec4Lit(m.Offset))
	}
	d.AddOp("Matrix", c.String())
	return nil
}

// Range emits the affine remap and the clamps of the bounded sides.
func Range(d *shader.Desc, r *opdata.Range) error {
	var c code
	c.line("var rgb = col.rgb;")
	if s, o := r.Scale(), r.Offset(); s != 1 || o != 0 {
		c.line("rgb = rgb * %s + %s;", lit(s), lit(o))
	}
	if r.HasMin {
		c.line("rgb = max(rgb, %s);", splat3(r.MinOut))
	}
	if r.HasMax {
		c.line("rgb = min(rgb, %s);", splat3(r.MaxOut))
	}
	c.line("col = vec4<f32>(rgb, col.a);")
	d.AddOp("Range", c.String())
	return nil
}

// Gamma emits the power curve of g on all four channels.
func Gamma(d *shader.Desc, g *opdata.Gamma) error {
	var c code
	label := fmt.Sprintf("Gamma %s", g.Style)
	if g.Style.IsBasic() {
		var e [4]float64
		for i, p := range g.Params {
			e[i] = p.Gamma
			if g.Style.IsReverse() {
				e[i] = 1 / p.Gamma
			}
		}
		c.line("let e = %s;", vec4Lit(e))
		switch g.Style {
		case opdata.GammaBasicMirrorFwd, opdata.GammaBasicMirrorRev:
			c.line("col = sign(col) * pow(abs(col), e);")
		case opdata.GammaBasicPassThruFwd, opdata.GammaBasicPassThruRev:
			c.line("col = select(pow(col, e), col, col < vec4<f32>(0.0));")
		default:
			c.line("col = pow(max(col, vec4<f32>(0.0)), e);")
		}
		d.AddOp(label, c.String())
		return nil
	}

	var exp, scale, off, brk, slope [4]float64
	for i := range 4 {
		if g.Style.IsReverse() {
			m := g.MoncurveRevParams(i)
			exp[i], scale[i], off[i], brk[i], slope[i] = m.InvGamma, m.Scale, m.Offset, m.BreakPnt, m.Slope
		} else {
			m := g.MoncurveParams(i)
			exp[i], scale[i], off[i], brk[i], slope[i] = m.Gamma, m.Scale, m.Offset, m.BreakPnt, m.Slope
		}
	}
	c.line("let g = %s;", vec4Lit(exp))
	c.line("let scale = %s;", vec4Lit(scale))
	c.line("let off = %s;", vec4Lit(off))
	c.line("let brk = %s;", vec4Lit(brk))
	c.line("let slope = %s;", vec4Lit(slope))
	mirror := g.Style == opdata.GammaMoncurveMirrorFwd || g.Style == opdata.GammaMoncurveMirrorRev
	if mirror {
		c.line("let s = select(vec4<f32>(1.0), vec4<f32>(-1.0), col < vec4<f32>(0.0));")
		c.line("let x = abs(col);")
	} else {
		c.line("let x = col;")
	}
	if g.Style.IsReverse() {
		c.line("col = select(pow(x, g) * scale - off, x * slope, x <= brk);")
	} else {
		c.line("col = select(pow(x * scale + off, g), x * slope, x <= brk);")
	}
	if mirror {
		c.line("col = s * col;")
	}
	d.AddOp(label, c.String())
	return nil
}

// Log emits the lin-to-log or log-to-lin curve on RGB.
func Log(d *shader.Desc, l *opdata.Log) error {
	var logSlope, logOff, linSlope, linOff [3]float64
	for i, p := range l.Params {
		logSlope[i], logOff[i], linSlope[i], linOff[i] = p.LogSideSlope, p.LogSideOffset, p.LinSideSlope, p.LinSideOffset
	}
	log2Base := math.Log2(l.Base)

	var c code
	c.line("let linSlope = %s;", vec3Lit(linSlope))
	c.line("let linOff = %s;", vec3Lit(linOff))
	c.line("let logOff = %s;", vec3Lit(logOff))
	var k [3]float64
	if l.Direction == opdata.DirectionForward {
		for i := range k {
			k[i] = logSlope[i] / log2Base
		}
		c.line("let k = %s;", vec3Lit(k))
		c.line("let arg = max(%s, linSlope * col.rgb + linOff);", splat3(opdata.MinLogArg()))
		c.line("col = vec4<f32>(k * log2(arg) + logOff, col.a);")
		d.AddOp("Log lin-to-log", c.String())
		return nil
	}
	for i := range k {
		k[i] = log2Base / logSlope[i]
	}
	c.line("let k = %s;", vec3Lit(k))
	c.line("col = vec4<f32>((exp2((col.rgb - logOff) * k) - linOff) / linSlope, col.a);")
	d.AddOp("Log log-to-lin", c.String())
	return nil
}

// ExposureContrast emits the adjustment on RGB. Dynamic adjustments read
// their coefficients from a uniform that follows the live properties;
// static ones inline them.
func ExposureContrast(d *shader.Desc, e *opdata.ExposureContrast) error {
	var ec string
	if e.IsDynamic() {
		ec = d.AddUniform("ec", true, func() [4]float32 {
			k := e.Coefficients()
			return [4]float32{float32(k.Exposure), float32(k.Contrast), float32(k.Pivot), 0}
		})
	} else {
		k := e.Coefficients()
		ec = vec4Lit([4]float64{k.Exposure, k.Contrast, k.Pivot, 0})
	}

	var c code
	c.line("let ec = %s;", ec)
	c.line("let x = col.rgb;")
	switch {
	case e.Style == opdata.ECLogFwd:
		c.line("let rgb = (x + ec.x - ec.z) * ec.y + ec.z;")
	case e.Style == opdata.ECLogRev:
		c.line("let rgb = (x - ec.z) * ec.y + ec.z - ec.x;")
	case e.Style.IsReverse():
		c.line("let p = pow(max(vec3<f32>(0.0), x / ec.z), vec3<f32>(ec.y)) * ec.z * ec.x;")
		c.line("let rgb = select(p, x * ec.x, ec.y == 1.0);")
	default:
		c.line("let p = pow(max(vec3<f32>(0.0), x * ec.x / ec.z), vec3<f32>(ec.y)) * ec.z;")
		c.line("let rgb = select(p, x * ec.x, ec.y == 1.0);")
	}
	c.line("col = vec4<f32>(rgb, col.a);")
	d.AddOp(fmt.Sprintf("ExposureContrast %s", e.Style), c.String())
	return nil
}

// CDL emits slope, offset, power and saturation on RGB.
func CDL(d *shader.Desc, cdl *opdata.CDL) error {
	clamp := cdl.Style.IsClamping()
	var c code
	clamp01 := func(v string) {
		if clamp {
			c.line("%[1]s = clamp(%[1]s, vec3<f32>(0.0), vec3<f32>(1.0));", v)
		}
	}
	saturate := func(sat float64) {
		if sat == 1 {
			return
		}
		c.line("let luma = dot(t, %s);", vec3Lit(opdata.Rec709Luma))
		c.line("t = luma + %s * (t - luma);", lit(sat))
	}

	if !cdl.Style.IsReverse() {
		c.line("var t = col.rgb * %s + %s;", vec3Lit(cdl.Slope), vec3Lit(cdl.Offset))
		clamp01("t")
		c.line("t = select(t, pow(t, %s), t >= vec3<f32>(0.0));", vec3Lit(cdl.Power))
		saturate(cdl.Saturation)
		clamp01("t")
	} else {
		var inv [3]float64
		for i, p := range cdl.Power {
			inv[i] = 1 / p
		}
		c.line("var t = col.rgb;")
		clamp01("t")
		saturate(1 / cdl.Saturation)
		clamp01("t")
		c.line("t = select(t, pow(t, %s), t >= vec3<f32>(0.0));", vec3Lit(inv))
		c.line("t = (t - %s) / %s;", vec3Lit(cdl.Offset), vec3Lit(cdl.Slope))
		clamp01("t")
	}
	c.line("col = vec4<f32>(t, col.a);")
	d.AddOp(fmt.Sprintf("CDL %s", cdl.Style), c.String())
	return nil
}
