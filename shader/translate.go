package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	"github.com/gogpu/naga/spirv"
)

var (
	// ErrInvalidModule reports generated WGSL that naga rejects. It always
	// indicates a bug in an emitter.
	ErrInvalidModule = errors.New("shader: generated module is invalid")

	// ErrTranslate reports a failed translation to the target language.
	ErrTranslate = errors.New("shader: translation failed")
)

// Translator converts a validated module into a target language. Text
// languages return source; binary ones return bin.
type Translator interface {
	Translate(m *ir.Module, cfg Config) (source string, bin []byte, err error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(m *ir.Module, cfg Config) (string, []byte, error)

// Translate calls f.
func (f TranslatorFunc) Translate(m *ir.Module, cfg Config) (string, []byte, error) {
	return f(m, cfg)
}

// translators maps language names to translators. WGSL needs none: the
// generated source is the output.
var translators = gpucontext.NewRegistry[Translator]()

func init() {
	translators.Register(LanguageGLSL330.String(), func() Translator { return glslTranslator(glsl.Version330) })
	translators.Register(LanguageGLSL450.String(), func() Translator { return glslTranslator(glsl.Version450) })
	translators.Register(LanguageGLSLES300.String(), func() Translator { return glslTranslator(glsl.VersionES300) })
	translators.Register(LanguageHLSL51.String(), func() Translator { return TranslatorFunc(translateHLSL) })
	translators.Register(LanguageMSL21.String(), func() Translator { return TranslatorFunc(translateMSL) })
	translators.Register(LanguageSPIRV.String(), func() Translator { return TranslatorFunc(translateSPIRV) })
}

// RegisterTranslator replaces the translator used for l. It is meant for
// tests and for backends that post-process naga's output.
func RegisterTranslator(l Language, t Translator) {
	translators.Register(l.String(), func() Translator { return t })
}

// AvailableTranslators returns the names of the registered translators.
func AvailableTranslators() []string { return translators.Available() }

func glslTranslator(v glsl.Version) Translator {
	return TranslatorFunc(func(m *ir.Module, cfg Config) (string, []byte, error) {
		opts := glsl.DefaultOptions()
		opts.LangVersion = v
		opts.EntryPoint = cfg.EntryPoint
		src, _, err := glsl.Compile(m, opts)
		return src, nil, err
	})
}

func translateHLSL(m *ir.Module, cfg Config) (string, []byte, error) {
	opts := hlsl.DefaultOptions()
	opts.EntryPoint = cfg.EntryPoint
	src, _, err := hlsl.Compile(m, opts)
	return src, nil, err
}

func translateMSL(m *ir.Module, _ Config) (string, []byte, error) {
	src, _, err := msl.Compile(m, msl.DefaultOptions())
	return src, nil, err
}

func translateSPIRV(m *ir.Module, _ Config) (string, []byte, error) {
	bin, err := naga.GenerateSPIRV(m, spirv.DefaultOptions())
	return "", bin, err
}

// translate validates src and converts it to cfg.Language.
func translate(src string, cfg Config) (string, []byte, error) {
	m, err := compileModule(src)
	if err != nil {
		return "", nil, err
	}
	if cfg.Language == LanguageWGSL {
		return src, nil, nil
	}
	t := translators.Get(cfg.Language.String())
	if t == nil {
		return "", nil, fmt.Errorf("%w: no translator for %s", ErrTranslate, cfg.Language)
	}
	out, bin, err := t.Translate(m, cfg)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", ErrTranslate, cfg.Language, err)
	}
	return out, bin, nil
}

// compileModule parses, lowers and validates WGSL source.
func compileModule(src string) (*ir.Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrInvalidModule, err)
	}
	m, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, fmt.Errorf("%w: lower: %w", ErrInvalidModule, err)
	}
	verrs, err := naga.Validate(m)
	if err != nil {
		return nil, fmt.Errorf("%w: validate: %w", ErrInvalidModule, err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, e := range verrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidModule, strings.Join(msgs, "; "))
	}
	return m, nil
}
