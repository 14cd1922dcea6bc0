package gpugen

import (
	"fmt"

	"github.com/gogpu/colorpipe/internal/lut"
	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/shader"
)

// Half-float domain constants: the smallest normal, the subnormal code
// scale and the code of the largest finite value.
const (
	halfMinNormal  = 6.103515625e-05
	halfSubnormal  = 16777216
	halfMaxCode    = 0x7BFF
	halfSignBit    = 0x8000
	halfMaxFinite  = 65504
	halfMantissa   = 1024
	halfExpBiasPos = 15
)

const halfPosHelper = `fn %[1]shalf_pos(x: f32) -> f32 {
	let ax = min(abs(x), %[2]d.0);
	if (ax < %[3]s) {
		return ax * %[4]d.0;
	}
	var e = floor(log2(ax));
	var m = ax / exp2(e);
	if (m >= 2.0) {
		e = e + 1.0;
		m = m * 0.5;
	}
	if (m < 1.0) {
		e = e - 1.0;
		m = m * 2.0;
	}
	return (e + %[5]d.0 + m - 1.0) * %[6]d.0;
}`

// halfPos adds the helper mapping a value to its fractional position among
// the non-negative half-float codes and returns its name.
func halfPos(d *shader.Desc) string {
	name := d.Prefix() + "half_pos"
	if !d.HasHelper(name) {
		d.AddHelper(name, fmt.Sprintf(halfPosHelper, d.Prefix(), halfMaxFinite,
			lit(halfMinNormal), halfSubnormal, halfExpBiasPos, halfMantissa))
	}
	return name
}

// texel1D returns the texture coordinate of table entry i in a texture of
// the given width.
func texel1D(i string, width, height int) string {
	if height == 1 {
		return fmt.Sprintf("vec2<i32>(%s, 0)", i)
	}
	return fmt.Sprintf("vec2<i32>(%[1]s %% %[2]d, %[1]s / %[2]d)", i, width)
}

var rgbComponents = [3][2]string{{"x", "r"}, {"y", "g"}, {"z", "b"}}

// Lut1D emits a per-channel table lookup on RGB. The table is stored in a
// 2D texture, wrapped into rows of MaxTextureWidth entries.
func Lut1D(d *shader.Desc, l *opdata.Lut1D) error {
	n := l.Size()
	w, h := lut.Layout1D(n, d.Config().MaxTextureWidth)
	tex, err := d.AddTexture2D("lut1d", w, h, l.Values)
	if err != nil {
		return err
	}
	nearest := l.Interpolation == opdata.InterpNearest

	var c code
	if l.HalfDomain {
		hp := halfPos(d)
		c.line("let pos = vec3<f32>(%[1]s(col.r), %[1]s(col.g), %[1]s(col.b));", hp)
		c.line("let base = select(vec3<i32>(0), vec3<i32>(%d), col.rgb < vec3<f32>(0.0));", halfSignBit)
		if nearest {
			c.line("let i0 = vec3<i32>(floor(pos + 0.5)) + base;")
		} else {
			c.line("let i0 = vec3<i32>(floor(pos)) + base;")
			c.line("let i1 = min(vec3<i32>(floor(pos)) + vec3<i32>(1), vec3<i32>(%d)) + base;", halfMaxCode)
		}
	} else {
		c.line("let pos = clamp(col.rgb, vec3<f32>(0.0), vec3<f32>(1.0)) * %s;", lit(float64(n-1)))
		if nearest {
			c.line("let i0 = vec3<i32>(floor(pos + 0.5));")
		} else {
			c.line("let i0 = vec3<i32>(floor(pos));")
			c.line("let i1 = min(i0 + vec3<i32>(1), vec3<i32>(%d));", n-1)
		}
	}

	if nearest {
		var out [3]string
		for i, rc := range rgbComponents {
			out[i] = fmt.Sprintf("textureLoad(%s, %s, 0).%s", tex, texel1D("i0."+rc[0], w, h), rc[1])
		}
		c.line("col = vec4<f32>(%s, %s, %s, col.a);", out[0], out[1], out[2])
		d.AddOp("Lut1D", c.String())
		return nil
	}

	c.line("let f = pos - floor(pos);")
	for _, rc := range rgbComponents {
		c.line("let a%[1]s = textureLoad(%[2]s, %[3]s, 0).%[1]s;", rc[1], tex, texel1D("i0."+rc[0], w, h))
		c.line("let b%[1]s = textureLoad(%[2]s, %[3]s, 0).%[1]s;", rc[1], tex, texel1D("i1."+rc[0], w, h))
	}
	c.line("col = vec4<f32>(ar + f.x * (br - ar), ag + f.y * (bg - ag), ab + f.z * (bb - ab), col.a);")
	d.AddOp("Lut1D", c.String())
	return nil
}

// InvLut1D emits the fast forward table baked from l.
func InvLut1D(d *shader.Desc, l *opdata.InvLut1D) error {
	return Lut1D(d, l.Fast())
}

// Lut3D emits a 3D table lookup on RGB with trilinear or tetrahedral
// interpolation. Texel (x, y, z) holds grid point (b, g, r).
func Lut3D(d *shader.Desc, l *opdata.Lut3D) error {
	n := l.GridSize
	tex, err := d.AddTexture3D("lut3d", n, l.Values)
	if err != nil {
		return err
	}
	fetch := func(at string) string {
		return fmt.Sprintf("textureLoad(%s, %s.zyx, 0).rgb", tex, at)
	}

	var c code
	c.line("let p = clamp(col.rgb, vec3<f32>(0.0), vec3<f32>(1.0)) * %s;", lit(float64(n-1)))
	c.line("let i0 = vec3<i32>(floor(p));")
	c.line("let i1 = min(i0 + vec3<i32>(1), vec3<i32>(%d));", n-1)
	c.line("let f = p - floor(p);")

	if !l.Tetrahedral() {
		corner := func(r, g, b string) string {
			return fmt.Sprintf("textureLoad(%s, vec3<i32>(%s.z, %s.y, %s.x), 0).rgb", tex, b, g, r)
		}
		for _, r := range []string{"0", "1"} {
			for _, g := range []string{"0", "1"} {
				for _, b := range []string{"0", "1"} {
					c.line("let c%s%s%s = %s;", r, g, b, corner("i"+r, "i"+g, "i"+b))
				}
			}
		}
		c.line("let c00 = c000 + f.z * (c001 - c000);")
		c.line("let c01 = c010 + f.z * (c011 - c010);")
		c.line("let c10 = c100 + f.z * (c101 - c100);")
		c.line("let c11 = c110 + f.z * (c111 - c110);")
		c.line("let c0 = c00 + f.y * (c01 - c00);")
		c.line("let c1 = c10 + f.y * (c11 - c10);")
		c.line("col = vec4<f32>(c0 + f.x * (c1 - c0), col.a);")
		d.AddOp("Lut3D trilinear", c.String())
		return nil
	}

	c.WriteString(tetrahedralSelect)
	c.line("let v = w.x * %s + w.y * %s + w.z * %s + w.w * %s;", fetch("i0"), fetch("ca"), fetch("cb"), fetch("i1"))
	c.line("col = vec4<f32>(v, col.a);")
	d.AddOp("Lut3D tetrahedral", c.String())
	return nil
}

// tetrahedralSelect picks the two intermediate corners and the barycentric
// weights of the tetrahedron containing f.
const tetrahedralSelect = `var ca: vec3<i32>;
var cb: vec3<i32>;
var w: vec4<f32>;
if (f.x > f.y) {
	if (f.y > f.z) {
		ca = vec3<i32>(i1.x, i0.y, i0.z);
		cb = vec3<i32>(i1.x, i1.y, i0.z);
		w = vec4<f32>(1.0 - f.x, f.x - f.y, f.y - f.z, f.z);
	} else if (f.x > f.z) {
		ca = vec3<i32>(i1.x, i0.y, i0.z);
		cb = vec3<i32>(i1.x, i0.y, i1.z);
		w = vec4<f32>(1.0 - f.x, f.x - f.z, f.z - f.y, f.y);
	} else {
		ca = vec3<i32>(i0.x, i0.y, i1.z);
		cb = vec3<i32>(i1.x, i0.y, i1.z);
		w = vec4<f32>(1.0 - f.z, f.z - f.x, f.x - f.y, f.y);
	}
} else {
	if (f.z > f.y) {
		ca = vec3<i32>(i0.x, i0.y, i1.z);
		cb = vec3<i32>(i0.x, i1.y, i1.z);
		w = vec4<f32>(1.0 - f.z, f.z - f.y, f.y - f.x, f.x);
	} else if (f.z > f.x) {
		ca = vec3<i32>(i0.x, i1.y, i0.z);
		cb = vec3<i32>(i0.x, i1.y, i1.z);
		w = vec4<f32>(1.0 - f.y, f.y - f.z, f.z - f.x, f.x);
	} else {
		ca = vec3<i32>(i0.x, i1.y, i0.z);
		cb = vec3<i32>(i1.x, i1.y, i0.z);
		w = vec4<f32>(1.0 - f.y, f.y - f.x, f.x - f.z, f.z);
	}
}
`
