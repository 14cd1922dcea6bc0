package shader

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrConfig reports an unusable shader configuration.
var ErrConfig = errors.New("shader: invalid config")

// Language is the dialect of the generated program.
type Language uint8

const (
	// LanguageWGSL is the native output; every other language is
	// translated from it.
	LanguageWGSL Language = iota
	LanguageGLSL330
	LanguageGLSL450
	LanguageGLSLES300
	LanguageHLSL51
	LanguageMSL21
	LanguageSPIRV
	languageCount
)

var languageNames = [languageCount]string{
	LanguageWGSL:      "wgsl",
	LanguageGLSL330:   "glsl_3.30",
	LanguageGLSL450:   "glsl_4.50",
	LanguageGLSLES300: "glsl_es_3.00",
	LanguageHLSL51:    "hlsl_sm_5.1",
	LanguageMSL21:     "msl_2.1",
	LanguageSPIRV:     "spirv",
}

// Languages returns every supported language.
func Languages() []Language {
	out := make([]Language, languageCount)
	for i := range out {
		out[i] = Language(i)
	}
	return out
}

// String returns the language name, which is also its translator name.
func (l Language) String() string {
	if l < languageCount {
		return languageNames[l]
	}
	return fmt.Sprintf("Language(%d)", l)
}

// ParseLanguage returns the language named s.
func ParseLanguage(s string) (Language, error) {
	for i, name := range languageNames {
		if name == s {
			return Language(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown language %q", ErrConfig, s)
}

// supportsCompute reports whether the language can express a compute entry
// point.
func (l Language) supportsCompute() bool {
	return l != LanguageGLSL330 && l != LanguageGLSLES300
}

// Stage selects the entry point generated around the colour function.
type Stage uint8

const (
	// StageFragment reads the source image with textureLoad at the fragment
	// position and returns the processed colour.
	StageFragment Stage = iota
	// StageCompute processes a storage buffer of RGBA pixels in place.
	StageCompute
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}

// Config controls shader generation.
type Config struct {
	// Language is the output dialect.
	Language Language
	// FunctionName names the colour function fn(vec4<f32>) -> vec4<f32>.
	FunctionName string
	// ResourcePrefix prefixes every module-scope name the program declares,
	// so that several programs can be pasted into one shader.
	ResourcePrefix string
	// Legacy bakes the whole pipeline into a single 3D table of
	// Lut3DEdgeLen points per axis.
	Legacy bool
	// Lut3DEdgeLen is the grid size of the legacy table.
	Lut3DEdgeLen int
	// MaxTextureWidth is the widest texture a 1D table may use; longer
	// tables wrap into rows of a 2D texture.
	MaxTextureWidth int
	// MaxTextures limits the number of textures; 0 means no limit.
	MaxTextures int
	// EntryPoint names the generated entry point. Empty generates the
	// colour function only, which only WGSL output supports.
	EntryPoint string
	// Stage selects the kind of entry point.
	Stage Stage
	// Group is the bind group every resource is declared in.
	Group uint32
}

// DefaultConfig returns a WGSL fragment configuration.
func DefaultConfig() Config {
	return Config{
		Language:        LanguageWGSL,
		FunctionName:    "applyColor",
		ResourcePrefix:  "cp_",
		Lut3DEdgeLen:    32,
		MaxTextureWidth: 4096,
		EntryPoint:      "main",
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Language >= languageCount {
		return fmt.Errorf("%w: unknown language %d", ErrConfig, c.Language)
	}
	if !identRe.MatchString(c.FunctionName) {
		return fmt.Errorf("%w: function name %q is not an identifier", ErrConfig, c.FunctionName)
	}
	if c.ResourcePrefix != "" && !identRe.MatchString(c.ResourcePrefix) {
		return fmt.Errorf("%w: resource prefix %q is not an identifier", ErrConfig, c.ResourcePrefix)
	}
	if c.EntryPoint == "" && c.Language != LanguageWGSL {
		return fmt.Errorf("%w: %s output needs an entry point", ErrConfig, c.Language)
	}
	if c.EntryPoint != "" && !identRe.MatchString(c.EntryPoint) {
		return fmt.Errorf("%w: entry point %q is not an identifier", ErrConfig, c.EntryPoint)
	}
	if c.Stage == StageCompute && !c.Language.supportsCompute() {
		return fmt.Errorf("%w: %s has no compute stage", ErrConfig, c.Language)
	}
	if c.Stage > StageCompute {
		return fmt.Errorf("%w: unknown stage %d", ErrConfig, c.Stage)
	}
	if c.MaxTextureWidth < 2 {
		return fmt.Errorf("%w: max texture width %d", ErrConfig, c.MaxTextureWidth)
	}
	if c.Legacy && (c.Lut3DEdgeLen < 2 || c.Lut3DEdgeLen > 129) {
		return fmt.Errorf("%w: legacy edge length %d outside [2, 129]", ErrConfig, c.Lut3DEdgeLen)
	}
	return nil
}
