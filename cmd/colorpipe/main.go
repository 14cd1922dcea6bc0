// Command colorpipe applies a colour pipeline to an image or prints the
// shader that applies it on the GPU.
//
// Usage:
//
//	colorpipe -in photo.tiff -out graded.tiff -srgb -exposure 0.5 -saturation 1.2
//	colorpipe -exposure 1 -shader glsl_4.50
//	colorpipe -matrix 0.6,0.3,0.1,0.2,0.7,0.1,0.1,0.1,0.8 -shader msl_2.1 -legacy
//
// PNG and TIFF files are read and written with 16 bits per channel.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/gogpu/colorpipe"
	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/shader"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "colorpipe:", err)
		}
		os.Exit(2)
	}
}

type options struct {
	in, out    string
	srgb       bool
	inverse    bool
	exposure   float64
	contrast   float64
	saturation float64
	matrix     string
	workers    int

	shader    string
	shaderOut string
	stage     string
	legacy    bool
	edge      int
	verbose   bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("colorpipe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "", "input image (.png, .tif, .tiff)")
	fs.StringVar(&o.out, "out", "", "output image (.png, .tif, .tiff)")
	fs.BoolVar(&o.srgb, "srgb", false, "decode sRGB before the adjustments and encode it after")
	fs.BoolVar(&o.inverse, "inverse", false, "apply the pipeline in the inverse direction")
	fs.Float64Var(&o.exposure, "exposure", 0, "exposure in stops")
	fs.Float64Var(&o.contrast, "contrast", 1, "contrast around 0.18")
	fs.Float64Var(&o.saturation, "saturation", 1, "saturation around Rec.709 luma")
	fs.StringVar(&o.matrix, "matrix", "", "3x3 row-major RGB matrix, nine comma-separated numbers")
	fs.IntVar(&o.workers, "workers", 0, "CPU workers; 0 uses one per core")
	fs.StringVar(&o.shader, "shader", "", "print a shader in this language: "+languageList())
	fs.StringVar(&o.shaderOut, "shader-out", "", "write the shader to a file instead of stdout")
	fs.StringVar(&o.stage, "stage", "fragment", "shader entry point: fragment or compute")
	fs.BoolVar(&o.legacy, "legacy", false, "bake the pipeline into a single 3D table")
	fs.IntVar(&o.edge, "edge", 32, "grid size of the -legacy table")
	fs.BoolVar(&o.verbose, "v", false, "log debug messages to stderr")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if (o.in == "") != (o.out == "") {
		return nil, errors.New("-in and -out must be given together")
	}
	if o.in == "" && o.shader == "" {
		fs.Usage()
		return nil, errUsage
	}
	return o, nil
}

func languageList() string {
	names := make([]string, 0, len(shader.Languages()))
	for _, l := range shader.Languages() {
		names = append(names, l.String())
	}
	return strings.Join(names, ", ")
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	colorpipe.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	defer colorpipe.SetLogger(nil)

	transforms, err := o.transforms()
	if err != nil {
		return err
	}
	dir := opdata.DirectionForward
	if o.inverse {
		dir = opdata.DirectionInverse
	}
	p, err := colorpipe.Build(transforms, dir)
	if err != nil {
		return err
	}
	colorpipe.Logger().Info("colorpipe: pipeline", "ops", p.Len(), "noop", p.IsNoOp(), "id", p.CacheID())

	if o.in != "" {
		if err := processFile(p, o.in, o.out, o.workers); err != nil {
			return err
		}
	}
	if o.shader != "" {
		return writeShader(p, o, stdout)
	}
	return nil
}

// transforms returns the adjustments selected on the command line, wrapped
// in an sRGB decode and encode when -srgb is set.
func (o *options) transforms() ([]colorpipe.Transform, error) {
	var list []colorpipe.Transform
	if o.matrix != "" {
		m, err := parseMatrix(o.matrix)
		if err != nil {
			return nil, err
		}
		list = append(list, colorpipe.OpTransform{Data: opdata.NewMatrix3(m)})
	}
	if o.exposure != 0 || o.contrast != 1 {
		ec := opdata.NewExposureContrast(opdata.ECLinearFwd)
		ec.Exposure.Load().SetValue(o.exposure)
		ec.Contrast.Load().SetValue(o.contrast)
		list = append(list, colorpipe.OpTransform{Data: ec})
	}
	if o.saturation != 1 {
		cdl := opdata.NewCDL(opdata.CDLNoClampFwd)
		cdl.Saturation = o.saturation
		list = append(list, colorpipe.OpTransform{Data: cdl})
	}
	if !o.srgb {
		return list, nil
	}

	decode := opdata.NewGamma(opdata.GammaMoncurveFwd, 2.4, 0.055)
	return []colorpipe.Transform{
		colorpipe.OpTransform{Data: decode},
		colorpipe.GroupTransform{Children: list},
		colorpipe.OpTransform{Data: decode, Direction: opdata.DirectionInverse},
	}, nil
}

func parseMatrix(s string) ([9]float64, error) {
	var m [9]float64
	fields := strings.Split(s, ",")
	if len(fields) != len(m) {
		return m, fmt.Errorf("-matrix: want 9 numbers, got %d", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return m, fmt.Errorf("-matrix: %w", err)
		}
		m[i] = v
	}
	return m, nil
}

func processFile(p *colorpipe.Pipeline, in, out string, workers int) error {
	img, err := readImage(in)
	if err != nil {
		return err
	}
	proc, err := p.CPUProcessor(colorpipe.WithWorkers(workers))
	if err != nil {
		return err
	}
	defer proc.Close()

	// NRGBA64 stores big-endian 16-bit RGBA, which the processor reads in
	// place.
	b := img.Bounds()
	desc := &colorpipe.PackedImageDesc{
		Data:      img.Pix,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Order:     colorpipe.OrderRGBA,
		BitDepth:  opdata.BitDepthUInt16,
		YStride:   img.Stride,
		ByteOrder: binary.BigEndian,
	}
	if err := proc.Apply(desc); err != nil {
		return err
	}
	colorpipe.Logger().Debug("colorpipe: image processed", "file", in, "width", b.Dx(), "height", b.Dy())
	return writeImage(out, img)
}

func readImage(path string) (*image.NRGBA64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src image.Image
	switch ext(path) {
	case ".png":
		src, err = png.Decode(f)
	case ".tif", ".tiff":
		src, err = tiff.Decode(f)
	default:
		return nil, fmt.Errorf("%s: unsupported image format", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if n, ok := src.(*image.NRGBA64); ok {
		return n, nil
	}
	b := src.Bounds()
	dst := image.NewNRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

func writeImage(path string, img *image.NRGBA64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch ext(path) {
	case ".png":
		err = png.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = fmt.Errorf("%s: unsupported image format", path)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func writeShader(p *colorpipe.Pipeline, o *options, stdout io.Writer) error {
	cfg := shader.DefaultConfig()
	lang, err := shader.ParseLanguage(o.shader)
	if err != nil {
		return err
	}
	cfg.Language = lang
	cfg.Legacy = o.legacy
	cfg.Lut3DEdgeLen = o.edge
	switch o.stage {
	case "fragment":
		cfg.Stage = shader.StageFragment
	case "compute":
		cfg.Stage = shader.StageCompute
	default:
		return fmt.Errorf("-stage: unknown stage %q", o.stage)
	}

	prog, err := p.GPUShader(cfg)
	if err != nil {
		return err
	}

	w := stdout
	if o.shaderOut != "" {
		f, err := os.Create(o.shaderOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if lang == shader.LanguageSPIRV {
		_, err = w.Write(prog.SPIRV())
	} else {
		_, err = io.WriteString(w, prog.Source())
	}
	if err != nil {
		return err
	}
	for _, t := range prog.Textures() {
		colorpipe.Logger().Info("colorpipe: shader texture", "name", t.Name, "width", t.Width, "height", t.Height, "depth", t.Depth)
	}
	return nil
}
