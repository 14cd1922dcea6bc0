package gpugen

import (
	"fmt"

	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/shader"
)

// ffHelpers holds the WGSL sources of the fixed-function formulas. %[1]s is
// the resource prefix; the remaining verbs receive the constants listed in
// ffConstants.
var ffHelpers = map[opdata.FixedFunctionStyle]struct{ name, src string }{
	opdata.FFRGBToHSV: {"rgb_to_hsv", `fn %[1]srgb_to_hsv(c: vec3<f32>) -> vec3<f32> {
	let lo = min(c.r, min(c.g, c.b));
	let hi = max(c.r, max(c.g, c.b));
	let delta = hi - lo;
	var val = hi;
	if (lo < 0.0) {
		val = val + lo;
	}
	if (delta == 0.0) {
		return vec3<f32>(0.0, 0.0, val);
	}
	let sat = delta / max(abs(hi), abs(lo));
	var hue: f32;
	if (hi == c.r) {
		hue = (c.g - c.b) / delta;
	} else if (hi == c.g) {
		hue = 2.0 + (c.b - c.r) / delta;
	} else {
		hue = 4.0 + (c.r - c.g) / delta;
	}
	if (hue < 0.0) {
		hue = hue + 6.0;
	}
	return vec3<f32>(hue / 6.0, sat, val);
}`},
	opdata.FFHSVToRGB: {"hsv_to_rgb", `fn %[1]shsv_to_rgb(c: vec3<f32>) -> vec3<f32> {
	let h = (c.x - floor(c.x)) * 6.0;
	let s = clamp(c.y, 0.0, 1.999);
	let v = c.z;
	var hi: f32;
	var lo: f32;
	if (s <= 1.0 && v >= 0.0) {
		hi = v;
		lo = v * (1.0 - s);
	} else if (v >= 0.0) {
		hi = v / (2.0 - s);
		lo = hi * (1.0 - s);
	} else {
		lo = v / (2.0 - s);
		hi = lo * (1.0 - s);
	}
	let w = vec3<f32>(abs(h - 3.0) - 1.0, 2.0 - abs(h - 2.0), 2.0 - abs(h - 4.0));
	return lo + (hi - lo) * clamp(w, vec3<f32>(0.0), vec3<f32>(1.0));
}`},
	opdata.FFXYZToXyY: {"xyz_to_xyY", `fn %[1]sxyz_to_xyY(c: vec3<f32>) -> vec3<f32> {
	var d = c.x + c.y + c.z;
	if (d != 0.0) {
		d = 1.0 / d;
	}
	return vec3<f32>(c.x * d, c.y * d, c.y);
}`},
	opdata.FFXyYToXYZ: {"xyY_to_xyz", `fn %[1]sxyY_to_xyz(c: vec3<f32>) -> vec3<f32> {
	var d: f32 = 0.0;
	if (c.y != 0.0) {
		d = c.z / c.y;
	}
	return vec3<f32>(c.x * d, c.z, (1.0 - c.x - c.y) * d);
}`},
	opdata.FFXYZToUvY: {"xyz_to_uvY", `fn %[1]sxyz_to_uvY(c: vec3<f32>) -> vec3<f32> {
	var d = c.x + 15.0 * c.y + 3.0 * c.z;
	if (d != 0.0) {
		d = 1.0 / d;
	}
	return vec3<f32>(4.0 * c.x * d, 9.0 * c.y * d, c.y);
}`},
	opdata.FFUvYToXYZ: {"uvY_to_xyz", `fn %[1]suvY_to_xyz(c: vec3<f32>) -> vec3<f32> {
	var d: f32 = 0.0;
	if (c.y != 0.0) {
		d = 1.0 / c.y;
	}
	return vec3<f32>(2.25 * c.z * c.x * d, c.z, 0.75 * c.z * (4.0 - c.x) * d - 5.0 * c.z);
}`},
	opdata.FFXYZToLuv: {"xyz_to_luv", `fn %[1]sxyz_to_luv(c: vec3<f32>) -> vec3<f32> {
	var d = c.x + 15.0 * c.y + 3.0 * c.z;
	if (d != 0.0) {
		d = 1.0 / d;
	}
	let u = 4.0 * c.x * d;
	let v = 9.0 * c.y * d;
	var l: f32;
	if (c.y <= %[4]s) {
		l = %[6]s * c.y;
	} else {
		l = 1.16 * pow(c.y, 1.0 / 3.0) - 0.16;
	}
	return vec3<f32>(l, 13.0 * l * (u - %[2]s), 13.0 * l * (v - %[3]s));
}`},
	opdata.FFLuvToXYZ: {"luv_to_xyz", `fn %[1]sluv_to_xyz(c: vec3<f32>) -> vec3<f32> {
	var y: f32;
	if (c.x > %[5]s) {
		let t = (c.x + 0.16) / 1.16;
		y = t * t * t;
	} else {
		y = c.x / %[6]s;
	}
	var d: f32 = 0.0;
	if (c.x != 0.0) {
		d = 1.0 / (13.0 * c.x);
	}
	let u = c.y * d + %[2]s;
	let v = c.z * d + %[3]s;
	var dd: f32 = 0.0;
	if (v != 0.0) {
		dd = 0.25 / v;
	}
	return vec3<f32>(9.0 * y * u * dd, y, y * (12.0 - 3.0 * u - 20.0 * v) * dd);
}`},
}

// ffConstants returns the values substituted after the prefix.
func ffConstants() []any {
	return []any{
		lit(opdata.LuvUn),
		lit(opdata.LuvVn),
		lit(opdata.LuvYBreak),
		lit(opdata.LuvLBreak),
		lit(opdata.LuvKappa),
	}
}

// FixedFunction emits the formula of f on RGB. Conversion formulas go into
// shared helper functions; the surround styles are inlined.
func FixedFunction(d *shader.Desc, f *opdata.FixedFunction) error {
	var c code
	label := fmt.Sprintf("FixedFunction %s", f.Style)
	switch f.Style {
	case opdata.FFACESDarkToDim10Fwd, opdata.FFACESDarkToDim10Inv:
		surroundCode(&c, opdata.ACESAP1Luma, opdata.ACESDarkToDimYMin, f.SurroundPower())
	case opdata.FFRec2100Surround:
		surroundCode(&c, opdata.Rec2100Luma, opdata.Rec2100YMin, f.SurroundPower())
	default:
		h, ok := ffHelpers[f.Style]
		if !ok {
			panic(fmt.Sprintf("gpugen: unhandled fixed function style %d", f.Style))
		}
		name := d.Prefix() + h.name
		if !d.HasHelper(name) {
			args := append([]any{d.Prefix()}, ffConstants()...)
			d.AddHelper(name, fmt.Sprintf(h.src, args...))
		}
		c.line("col = vec4<f32>(%s(col.rgb), col.a);", name)
	}
	d.AddOp(label, c.String())
	return nil
}

func surroundCode(c *code, w [3]float64, yMin, power float64) {
	c.line("let y = max(%s, dot(col.rgb, %s));", lit(yMin), vec3Lit(w))
	c.line("col = vec4<f32>(col.rgb * pow(y, %s), col.a);", lit(power-1))
}
