package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// ErrUpload reports a texture that could not be uploaded.
var ErrUpload = errors.New("shader: texture upload failed")

// Program is a generated shader and the resources it binds. It is
// immutable; UniformData reads live property values and may be called from
// any goroutine.
type Program struct {
	cfg      Config
	wgsl     string
	source   string
	spirv    []byte
	uniforms []*Uniform
	textures []*Texture

	imageBinding uint32
}

// Build assembles, validates and translates the program.
func (d *Desc) Build() (*Program, error) {
	p := &Program{
		cfg:      d.cfg,
		uniforms: d.uniforms,
		textures: d.textures,
	}
	binding := uint32(0)
	if len(d.uniforms) > 0 {
		binding++
	}
	for _, t := range d.textures {
		t.Binding = binding
		binding++
	}
	p.imageBinding = binding
	p.wgsl = d.wgsl(p)

	src, bin, err := translate(p.wgsl, d.cfg)
	if err != nil {
		return nil, err
	}
	p.source, p.spirv = src, bin
	slogger().Debug("shader: program built",
		"language", d.cfg.Language.String(),
		"wgsl_bytes", len(p.wgsl),
		"uniforms", len(p.uniforms),
		"textures", len(p.textures))
	return p, nil
}

// wgsl renders the module source.
func (d *Desc) wgsl(p *Program) string {
	var b strings.Builder
	pre := d.cfg.ResourcePrefix
	group := d.cfg.Group

	if len(d.uniforms) > 0 {
		fmt.Fprintf(&b, "struct %sUniforms {\n", pre)
		for _, u := range d.uniforms {
			fmt.Fprintf(&b, "\t%s: vec4<f32>,\n", u.Name)
		}
		b.WriteString("}\n\n")
		fmt.Fprintf(&b, "@group(%d) @binding(0) var<uniform> %s: %sUniforms;\n", group, d.uniformVar(), pre)
	}
	for _, t := range d.textures {
		fmt.Fprintf(&b, "@group(%d) @binding(%d) var %s: %s;\n", group, t.Binding, t.Name, textureType(t.Dimension))
	}
	if d.cfg.EntryPoint != "" {
		switch d.cfg.Stage {
		case StageCompute:
			fmt.Fprintf(&b, "@group(%d) @binding(%d) var<storage, read_write> %spixels: array<vec4<f32>>;\n", group, p.imageBinding, pre)
		default:
			fmt.Fprintf(&b, "@group(%d) @binding(%d) var %simage: texture_2d<f32>;\n", group, p.imageBinding, pre)
		}
	}
	b.WriteString("\n")

	for _, h := range d.helpers {
		b.WriteString(strings.TrimRight(h, "\n"))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "fn %s(inColor: vec4<f32>) -> vec4<f32> {\n", d.cfg.FunctionName)
	b.WriteString("\tvar col = inColor;\n")
	b.WriteString(d.body.String())
	b.WriteString("\treturn col;\n}\n")

	if d.cfg.EntryPoint == "" {
		return b.String()
	}
	b.WriteString("\n")
	switch d.cfg.Stage {
	case StageCompute:
		fmt.Fprintf(&b, "@compute @workgroup_size(64)\nfn %s(@builtin(global_invocation_id) id: vec3<u32>) {\n", d.cfg.EntryPoint)
		fmt.Fprintf(&b, "\tif (id.x >= arrayLength(&%spixels)) {\n\t\treturn;\n\t}\n", pre)
		fmt.Fprintf(&b, "\t%[1]spixels[id.x] = %[2]s(%[1]spixels[id.x]);\n}\n", pre, d.cfg.FunctionName)
	default:
		fmt.Fprintf(&b, "@fragment\nfn %s(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {\n", d.cfg.EntryPoint)
		fmt.Fprintf(&b, "\treturn %s(textureLoad(%simage, vec2<i32>(pos.xy), 0));\n}\n", d.cfg.FunctionName, pre)
	}
	return b.String()
}

func textureType(dim gputypes.TextureDimension) string {
	if dim == gputypes.TextureDimension3D {
		return "texture_3d<f32>"
	}
	return "texture_2d<f32>"
}

// Config returns the configuration the program was built with.
func (p *Program) Config() Config { return p.cfg }

// Language returns the output language.
func (p *Program) Language() Language { return p.cfg.Language }

// Source returns the program text in the configured language. It is empty
// for SPIR-V; use SPIRV.
func (p *Program) Source() string { return p.source }

// WGSL returns the generated WGSL the other languages were translated
// from.
func (p *Program) WGSL() string { return p.wgsl }

// SPIRV returns the SPIR-V binary when the language is LanguageSPIRV.
func (p *Program) SPIRV() []byte { return p.spirv }

// Uniforms returns the members of the uniform block in declaration order.
func (p *Program) Uniforms() []*Uniform { return p.uniforms }

// Textures returns the lookup textures.
func (p *Program) Textures() []*Texture { return p.textures }

// HasDynamicUniforms reports whether some uniform follows a live property.
func (p *Program) HasDynamicUniforms() bool {
	for _, u := range p.uniforms {
		if u.Dynamic {
			return true
		}
	}
	return false
}

// UniformData returns the uniform block contents for the current property
// values, 16 little-endian bytes per member. It returns nil when the
// program has no uniforms.
func (p *Program) UniformData() []byte {
	if len(p.uniforms) == 0 {
		return nil
	}
	buf := make([]byte, 16*len(p.uniforms))
	for i, u := range p.uniforms {
		v := u.Value()
		for c := range 4 {
			binary.LittleEndian.PutUint32(buf[16*i+4*c:], math.Float32bits(v[c]))
		}
	}
	return buf
}

// stageVisibility returns the shader stage the resources are visible to.
func (p *Program) stageVisibility() gputypes.ShaderStages {
	if p.cfg.Stage == StageCompute {
		return gputypes.ShaderStageCompute
	}
	return gputypes.ShaderStageFragment
}

// BindGroupLayout describes every binding of the program's bind group.
func (p *Program) BindGroupLayout() gputypes.BindGroupLayoutDescriptor {
	vis := p.stageVisibility()
	desc := gputypes.BindGroupLayoutDescriptor{Label: p.cfg.ResourcePrefix + "bind_group"}
	if len(p.uniforms) > 0 {
		desc.Entries = append(desc.Entries, gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: vis,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: uint64(16 * len(p.uniforms)),
			},
		})
	}
	for _, t := range p.textures {
		desc.Entries = append(desc.Entries, gputypes.BindGroupLayoutEntry{
			Binding:    t.Binding,
			Visibility: vis,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeUnfilterableFloat,
				ViewDimension: t.ViewDimension(),
			},
		})
	}
	if p.cfg.EntryPoint == "" {
		return desc
	}
	entry := gputypes.BindGroupLayoutEntry{Binding: p.imageBinding, Visibility: vis}
	if p.cfg.Stage == StageCompute {
		entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
	} else {
		entry.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeUnfilterableFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	}
	desc.Entries = append(desc.Entries, entry)
	return desc
}

// ImageBinding returns the binding of the source image (fragment stage) or
// pixel buffer (compute stage).
func (p *Program) ImageBinding() uint32 { return p.imageBinding }

// UploadTextures pushes every table into the texture of the same name in
// targets. Targets must have been created from the textures' descriptors.
func (p *Program) UploadTextures(targets map[string]gpucontext.TextureUpdater) error {
	for _, t := range p.textures {
		dst, ok := targets[t.Name]
		if !ok {
			return fmt.Errorf("%w: no target for %s", ErrUpload, t.Name)
		}
		if err := dst.UpdateData(t.Bytes()); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUpload, t.Name, err)
		}
	}
	return nil
}

// ViewDimension returns the view dimension the shader declares.
func (t *Texture) ViewDimension() gputypes.TextureViewDimension {
	if t.Dimension == gputypes.TextureDimension3D {
		return gputypes.TextureViewDimension3D
	}
	return gputypes.TextureViewDimension2D
}

// Descriptor returns the descriptor to create the texture with.
func (t *Texture) Descriptor() gputypes.TextureDescriptor {
	return gputypes.TextureDescriptor{
		Label: t.Name,
		Size: gputypes.Extent3D{
			Width:              uint32(t.Width),  //nolint:gosec // bounded by MaxTextureWidth
			Height:             uint32(t.Height), //nolint:gosec // bounded by MaxTextureWidth
			DepthOrArrayLayers: uint32(t.Depth),  //nolint:gosec // bounded by the 3D grid size
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     t.Dimension,
		Format:        gputypes.TextureFormatRGBA32Float,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}
}

// DataLayout returns the layout of Bytes.
func (t *Texture) DataLayout() gputypes.TextureDataLayout {
	return gputypes.TextureDataLayout{
		BytesPerRow:  uint32(16 * t.Width), //nolint:gosec // bounded by MaxTextureWidth
		RowsPerImage: uint32(t.Height),     //nolint:gosec // bounded by MaxTextureWidth
	}
}

// Bytes returns the texel data as little-endian float32.
func (t *Texture) Bytes() []byte {
	buf := make([]byte, 4*len(t.Data))
	for i, v := range t.Data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}
