// Package shader assembles GPU programs that apply a colour pipeline.
//
// Operations emit into a [Desc]: WGSL helper functions, one code block per
// operation acting on the running colour variable col, scalar uniforms and
// lookup textures. [Desc.Build] wraps the blocks into a colour function and
// an optional entry point, validates the module with naga and translates it
// into the configured [Language].
//
// Textures always hold float32 RGBA texels and are read with textureLoad;
// interpolation is computed in the shader with the same arithmetic the CPU
// renderers use, so both backends agree to float precision.
package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Uniform is one member of the program's uniform block. Every member is a
// vec4<f32>; scalars use the x component.
type Uniform struct {
	// Name is the member name inside the uniform struct.
	Name string
	// Dynamic marks uniforms backed by a live property; their value must be
	// re-uploaded whenever the property changes.
	Dynamic bool
	// Value returns the current value.
	Value func() [4]float32
}

// Texture is a lookup table uploaded as a float32 RGBA texture.
type Texture struct {
	// Name is the module-scope identifier of the texture.
	Name      string
	Dimension gputypes.TextureDimension
	Width     int
	Height    int
	Depth     int
	// Data holds Width*Height*Depth RGBA texels, x fastest.
	Data []float32
	// Binding is assigned by Build.
	Binding uint32
}

// Desc collects the resources and code emitted by the operations of one
// pipeline. It is used by a single goroutine.
type Desc struct {
	cfg      Config
	uniforms []*Uniform
	textures []*Texture
	helpers  []string
	helperOK map[string]bool
	body     strings.Builder
	names    map[string]int
}

// NewDesc returns an empty description for cfg.
func NewDesc(cfg Config) (*Desc, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Desc{
		cfg:      cfg,
		helperOK: make(map[string]bool),
		names:    make(map[string]int),
	}, nil
}

// Config returns the configuration.
func (d *Desc) Config() Config { return d.cfg }

// Prefix returns the resource prefix.
func (d *Desc) Prefix() string { return d.cfg.ResourcePrefix }

// UniqueName returns a prefixed identifier derived from base that no other
// call has returned.
func (d *Desc) UniqueName(base string) string {
	n := d.names[base]
	d.names[base] = n + 1
	return fmt.Sprintf("%s%s%d", d.cfg.ResourcePrefix, base, n)
}

// AddHelper adds a module-scope function once; later calls with the same
// name are ignored. name must be the function's prefixed identifier.
func (d *Desc) AddHelper(name, src string) {
	if d.helperOK[name] {
		return
	}
	d.helperOK[name] = true
	d.helpers = append(d.helpers, src)
}

// HasHelper reports whether a helper of that name was added.
func (d *Desc) HasHelper(name string) bool { return d.helperOK[name] }

// AddOp appends the code of one operation as its own block. code may
// declare locals; it reads and writes col.
func (d *Desc) AddOp(label, code string) {
	fmt.Fprintf(&d.body, "\t// %s\n\t{\n", label)
	for line := range strings.SplitSeq(strings.TrimRight(code, "\n"), "\n") {
		if line == "" {
			d.body.WriteString("\n")
			continue
		}
		d.body.WriteString("\t\t")
		d.body.WriteString(line)
		d.body.WriteString("\n")
	}
	d.body.WriteString("\t}\n")
}

// AddUniform declares a uniform and returns the WGSL expression reading it.
func (d *Desc) AddUniform(base string, dynamic bool, value func() [4]float32) string {
	u := &Uniform{Name: d.UniqueName(base), Dynamic: dynamic, Value: value}
	d.uniforms = append(d.uniforms, u)
	return d.uniformVar() + "." + u.Name
}

func (d *Desc) uniformVar() string { return d.cfg.ResourcePrefix + "uniforms" }

// AddTexture2D declares a width x height texture holding rgb, a table of
// RGB triples in row-major texel order, and returns its identifier. Texels
// past the end of rgb are zero.
func (d *Desc) AddTexture2D(base string, width, height int, rgb []float32) (string, error) {
	if width > d.cfg.MaxTextureWidth {
		return "", fmt.Errorf("%w: texture width %d exceeds %d", ErrConfig, width, d.cfg.MaxTextureWidth)
	}
	return d.addTexture(base, gputypes.TextureDimension2D, width, height, 1, rgb)
}

// AddTexture3D declares an n^3 texture holding rgb, a table of RGB triples
// with the first texture axis varying fastest, and returns its identifier.
func (d *Desc) AddTexture3D(base string, n int, rgb []float32) (string, error) {
	return d.addTexture(base, gputypes.TextureDimension3D, n, n, n, rgb)
}

func (d *Desc) addTexture(base string, dim gputypes.TextureDimension, w, h, depth int, rgb []float32) (string, error) {
	if d.cfg.MaxTextures > 0 && len(d.textures) >= d.cfg.MaxTextures {
		return "", fmt.Errorf("%w: more than %d textures", ErrConfig, d.cfg.MaxTextures)
	}
	texels := w * h * depth
	if len(rgb) > 3*texels {
		return "", fmt.Errorf("%w: %d values do not fit a %dx%dx%d texture", ErrConfig, len(rgb)/3, w, h, depth)
	}
	data := make([]float32, 4*texels)
	for i := 0; 3*i+2 < len(rgb); i++ {
		copy(data[4*i:4*i+3], rgb[3*i:3*i+3])
	}
	t := &Texture{
		Name:      d.UniqueName(base),
		Dimension: dim,
		Width:     w,
		Height:    h,
		Depth:     depth,
		Data:      data,
	}
	d.textures = append(d.textures, t)
	return t.Name, nil
}

// NumTextures returns the number of declared textures.
func (d *Desc) NumTextures() int { return len(d.textures) }

// Uniforms returns the declared uniforms.
func (d *Desc) Uniforms() []*Uniform { return d.uniforms }

// Textures returns the declared textures.
func (d *Desc) Textures() []*Texture { return d.textures }
