package ops

import (
	"errors"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/colorpipe/dynamic"
	"github.com/gogpu/colorpipe/opdata"
	"github.com/gogpu/colorpipe/shader"
)

// samples returns one finalizable value of every kind.
func samples() []opdata.Data {
	curve := opdata.NewLut1D(17, false)
	for i := range 17 {
		v := float32(math.Pow(float64(i)/16, 2.2))
		curve.Values[3*i], curve.Values[3*i+1], curve.Values[3*i+2] = v, v, v
	}
	cube := opdata.NewLut3D(5)
	for i := range cube.Values {
		cube.Values[i] = cube.Values[i]*0.9 + 0.05
	}
	ec := opdata.NewExposureContrast(opdata.ECLinearFwd)
	ec.Exposure.Load().SetValue(0.5)
	cdl := opdata.NewCDL(opdata.CDLASCFwd)
	cdl.Slope = [3]float64{1.1, 0.9, 1}
	cdl.Saturation = 0.8

	return []opdata.Data{
		opdata.NewMatrix3([9]float64{0.8, 0.1, 0.1, 0.05, 0.9, 0.05, 0, 0.2, 0.8}),
		curve,
		opdata.NewInvLut1D(curve.Clone().(*opdata.Lut1D)),
		cube,
		opdata.NewGamma(opdata.GammaMoncurveFwd, 2.4, 0.055),
		opdata.NewLog2(opdata.DirectionForward),
		ec,
		opdata.NewFixedFunction(opdata.FFRGBToHSV),
		opdata.NewRange(0.1, 0.9, 0, 1),
		cdl,
		opdata.NewReference("shot.clf"),
	}
}

func finalizedOp(t *testing.T, d opdata.Data, dir opdata.Direction) *Op {
	t.Helper()
	o := New(d, dir)
	if err := o.Finalize(); err != nil {
		t.Fatalf("Finalize(%s) error = %v", d.Kind(), err)
	}
	return o
}

// testPixels spans the unit cube plus a few out-of-range values.
var testPixels = []float32{
	0, 0, 0, 1,
	0.18, 0.18, 0.18, 1,
	0.5, 0.25, 0.75, 0.5,
	1, 1, 1, 1,
	0.9, 0.1, 0.4, 0,
	0.05, 0.6, 0.95, 1,
}

func apply(t *testing.T, list []*Op) []float32 {
	t.Helper()
	chain, err := CPURenderers(list)
	if err != nil {
		t.Fatalf("CPURenderers() error = %v", err)
	}
	px := append([]float32(nil), testPixels...)
	chain.Apply(px)
	return px
}

func assertClose(t *testing.T, got, want []float32, tol float64) {
	t.Helper()
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Fatalf("value %d = %v, want %v (tol %v)", i, got[i], want[i], tol)
		}
	}
}

func TestDispatch_EveryKind(t *testing.T) {
	seen := make(map[opdata.Kind]bool)
	for _, d := range samples() {
		seen[d.Kind()] = true
		o := finalizedOp(t, d, opdata.DirectionForward)

		desc, err := shader.NewDesc(shader.DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		r, cpuErr := o.CPURenderer()
		gpuErr := o.EmitShader(desc)

		if d.Kind() == opdata.KindReference {
			if !errors.Is(cpuErr, opdata.ErrUnsupported) || !errors.Is(gpuErr, opdata.ErrUnsupported) {
				t.Errorf("Reference: errors = %v, %v, want ErrUnsupported", cpuErr, gpuErr)
			}
			continue
		}
		if cpuErr != nil || r == nil {
			t.Errorf("%s: CPURenderer() = %v, %v", d.Kind(), r, cpuErr)
		}
		if gpuErr != nil {
			t.Errorf("%s: EmitShader() error = %v", d.Kind(), gpuErr)
		}
	}
	for _, k := range opdata.Kinds() {
		if !seen[k] {
			t.Errorf("kind %s is not covered", k)
		}
	}
}

func TestOp_NotFinalized(t *testing.T) {
	o := New(opdata.NewMatrix(), opdata.DirectionForward)
	if _, err := o.CPURenderer(); !errors.Is(err, ErrNotFinalized) {
		t.Errorf("CPURenderer() error = %v, want ErrNotFinalized", err)
	}
	if _, err := Optimize([]*Op{o}, DefaultOptimizerConfig()); !errors.Is(err, ErrNotFinalized) {
		t.Errorf("Optimize() error = %v, want ErrNotFinalized", err)
	}
}

func TestOp_InverseDirectionRendersInverse(t *testing.T) {
	g := opdata.NewGamma(opdata.GammaBasicFwd, 2, 0)
	o := finalizedOp(t, g, opdata.DirectionInverse)
	r, ok := o.Render().(*opdata.Gamma)
	if !ok {
		t.Fatalf("Render() = %T, want *opdata.Gamma", o.Render())
	}
	if r.Style != opdata.GammaBasicRev {
		t.Errorf("render style = %s, want %s", r.Style, opdata.GammaBasicRev)
	}
	if !strings.Contains(o.CacheID(), "inverse") {
		t.Errorf("CacheID() = %q, want the direction in it", o.CacheID())
	}

	fwd := finalizedOp(t, g.Clone(), opdata.DirectionForward)
	if fwd.CacheID() == o.CacheID() {
		t.Error("forward and inverse ops share a cache identifier")
	}
}

func TestOp_Clone(t *testing.T) {
	o := finalizedOp(t, opdata.NewRange(0, 1, 0, 2), opdata.DirectionForward)
	c := o.Clone()
	if c.Data() == o.Data() {
		t.Error("Clone shares the data")
	}
	if c.Render() != c.Data() {
		t.Error("Clone of a forward op does not render its own data")
	}
	if c.CacheID() != o.CacheID() {
		t.Errorf("Clone CacheID = %q, want %q", c.CacheID(), o.CacheID())
	}
}

func TestCombineWith_Unsupported(t *testing.T) {
	m := finalizedOp(t, opdata.NewMatrix3([9]float64{2, 0, 0, 0, 2, 0, 0, 0, 2}), opdata.DirectionForward)
	g := finalizedOp(t, opdata.NewGamma(opdata.GammaBasicFwd, 2, 0), opdata.DirectionForward)
	if m.CanCombineWith(g) {
		t.Fatal("CanCombineWith(matrix, gamma) = true")
	}
	_, err := m.CombineWith(g)
	if !errors.Is(err, opdata.ErrUnsupported) {
		t.Errorf("CombineWith() error = %v, want ErrUnsupported", err)
	}
}

func TestOptimize_RemovesIdentity(t *testing.T) {
	list := []*Op{
		finalizedOp(t, opdata.NewGamma(opdata.GammaBasicFwd, 2.2, 0), opdata.DirectionForward),
		finalizedOp(t, opdata.NewMatrix(), opdata.DirectionForward),
		finalizedOp(t, opdata.NewLog2(opdata.DirectionForward), opdata.DirectionForward),
	}
	cfg := DefaultOptimizerConfig()
	cfg.Flags = OptimizeIdentity
	got, err := Optimize(list, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Kind() != opdata.KindGamma || got[1].Kind() != opdata.KindLog {
		t.Errorf("kinds = %s, %s, want Gamma, Log", got[0].Kind(), got[1].Kind())
	}
	if len(list) != 3 {
		t.Error("Optimize modified its input")
	}
}

func TestOptimize_IdentityKeepsClamp(t *testing.T) {
	cdl := opdata.NewCDL(opdata.CDLASCFwd)
	list := []*Op{finalizedOp(t, cdl, opdata.DirectionForward)}
	got, err := Optimize(list, DefaultOptimizerConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind() != opdata.KindRange {
		t.Fatalf("got %v, want one Range", got)
	}
	assertClose(t, apply(t, got), apply(t, list), 1e-7)
}

func TestOptimize_CancelsInversePairs(t *testing.T) {
	g := opdata.NewGamma(opdata.GammaMoncurveFwd, 2.4, 0.055)
	log := opdata.NewLog(opdata.DirectionForward, 10, opdata.LogParams{
		LogSideSlope: 0.5, LogSideOffset: 0.1, LinSideSlope: 2, LinSideOffset: 0.01,
	})
	list := []*Op{
		finalizedOp(t, g, opdata.DirectionForward),
		finalizedOp(t, log, opdata.DirectionForward),
		finalizedOp(t, log.Clone(), opdata.DirectionInverse),
		finalizedOp(t, g.Clone(), opdata.DirectionInverse),
	}
	got, err := Optimize(list, DefaultOptimizerConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want an empty list", got)
	}
	if !IsNoOp(got) {
		t.Error("IsNoOp(empty) = false")
	}
}

func TestOptimize_CancelsDeeplyNestedPairsInOnePass(t *testing.T) {
	const depth = 10
	logs := make([]opdata.Data, depth)
	for i := range logs {
		logs[i] = opdata.NewLog(opdata.DirectionForward, float64(i+2), opdata.DefaultLogParams())
	}
	var list []*Op
	for _, d := range logs {
		list = append(list, finalizedOp(t, d.Clone(), opdata.DirectionForward))
	}
	for i := depth - 1; i >= 0; i-- {
		list = append(list, finalizedOp(t, logs[i].Clone(), opdata.DirectionInverse))
	}

	cfg := DefaultOptimizerConfig()
	cfg.MaxPasses = 1
	got, err := Optimize(list, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("%d nested pairs optimize to %d ops, want 0", depth, len(got))
	}
}

func TestOptimize_InverseRangePairLeavesClamp(t *testing.T) {
	r := opdata.NewRange(0.1, 0.9, 0, 1)
	list := []*Op{
		finalizedOp(t, r, opdata.DirectionForward),
		finalizedOp(t, r.Clone(), opdata.DirectionInverse),
	}
	got, err := Optimize(list, DefaultOptimizerConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind() != opdata.KindRange {
		t.Fatalf("got %v, want one Range", got)
	}
	c := got[0].Render().(*opdata.Range)
	if c.MinOut != 0.1 || c.MaxOut != 0.9 || c.Scale() != 1 {
		t.Errorf("clamp = [%v, %v] scale %v, want [0.1, 0.9] scale 1", c.MinOut, c.MaxOut, c.Scale())
	}
	assertClose(t, apply(t, got), apply(t, list), 1e-6)
}

func TestOptimize_CombinesNeighbours(t *testing.T) {
	list := []*Op{
		finalizedOp(t, opdata.NewMatrixFrom(f64.Mat4{
			0.8, 0.1, 0.1, 0,
			0.05, 0.9, 0.05, 0,
			0, 0.2, 0.8, 0,
			0, 0, 0, 1,
		}, f64.Vec4{0.01, 0, 0, 0}), opdata.DirectionForward),
		finalizedOp(t, opdata.NewScale(f64.Vec4{1.2, 0.9, 1.1, 1}), opdata.DirectionForward),
		finalizedOp(t, opdata.NewGamma(opdata.GammaBasicFwd, 2, 0), opdata.DirectionForward),
		finalizedOp(t, opdata.NewGamma(opdata.GammaBasicFwd, 1.5, 0), opdata.DirectionForward),
		finalizedOp(t, opdata.NewRange(0, 1, 0, 1), opdata.DirectionForward),
		finalizedOp(t, opdata.NewRange(0, 1, 0.1, 0.9), opdata.DirectionForward),
	}
	got, err := Optimize(list, DefaultOptimizerConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d (%v), want 3", len(got), got)
	}
	assertClose(t, apply(t, got), apply(t, list), 1e-5)
}

func TestOptimize_FlagsGateCombination(t *testing.T) {
	list := []*Op{
		finalizedOp(t, opdata.NewScale(f64.Vec4{2, 2, 2, 1}), opdata.DirectionForward),
		finalizedOp(t, opdata.NewScale(f64.Vec4{0.25, 0.25, 0.25, 1}), opdata.DirectionForward),
	}
	cfg := DefaultOptimizerConfig()
	cfg.Flags = OptimizationLossless &^ OptimizeCombineMatrix
	got, err := Optimize(list, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 with matrix combination disabled", len(got))
	}

	cfg.Flags = OptimizationNone
	got, err = Optimize(list, cfg)
	if err != nil || len(got) != 2 {
		t.Errorf("OptimizationNone: len = %d, err = %v", len(got), err)
	}
}

func TestOptimize_ComposeLut1DIsLossy(t *testing.T) {
	square := opdata.NewLut1D(65, false)
	root := opdata.NewLut1D(65, false)
	for i := range 65 {
		x := float64(i) / 64
		for ch := range 3 {
			square.Values[3*i+ch] = float32(x * x)
			root.Values[3*i+ch] = float32(math.Sqrt(x)) * 0.5
		}
	}
	list := []*Op{
		finalizedOp(t, square, opdata.DirectionForward),
		finalizedOp(t, root, opdata.DirectionForward),
	}

	got, err := Optimize(list, DefaultOptimizerConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("lossless: len = %d, want 2", len(got))
	}

	cfg := DefaultOptimizerConfig()
	cfg.Flags = OptimizationLossy
	cfg.Policy = CompositionResampleBig
	got, err = Optimize(list, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("lossy: len = %d, want 1", len(got))
	}
	if n := got[0].Render().(*opdata.Lut1D).Size(); n != bigLut1DSize {
		t.Errorf("composed size = %d, want %d", n, bigLut1DSize)
	}
	assertClose(t, apply(t, got), apply(t, list), 1e-2)
}

func TestOptimize_ComposeLut3D(t *testing.T) {
	a := opdata.NewLut3D(3)
	b := opdata.NewLut3D(5)
	for i := range a.Values {
		a.Values[i] = a.Values[i]*0.8 + 0.1
	}
	for i := range b.Values {
		b.Values[i] = 1 - b.Values[i]
	}
	b.Interpolation = opdata.InterpTetrahedral
	list := []*Op{
		finalizedOp(t, a, opdata.DirectionForward),
		finalizedOp(t, b, opdata.DirectionForward),
	}
	cfg := DefaultOptimizerConfig()
	cfg.Flags = OptimizationLossy
	got, err := Optimize(list, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	l := got[0].Render().(*opdata.Lut3D)
	if l.GridSize != 5 || !l.Tetrahedral() {
		t.Errorf("grid = %d tetrahedral = %v, want 5 true", l.GridSize, l.Tetrahedral())
	}
	// Both tables are affine, so the composition is exact on the grid.
	assertClose(t, apply(t, got), apply(t, list), 1e-5)
}

func TestOptimize_ComposedIdentityIsDropped(t *testing.T) {
	up := opdata.NewLut1D(33, false)
	down := opdata.NewLut1D(33, false)
	for i := range up.Values {
		up.Values[i] = up.Values[i]*0.5 + 0.25
		down.Values[i] = (down.Values[i] - 0.25) * 2
	}
	list := []*Op{
		finalizedOp(t, up, opdata.DirectionForward),
		finalizedOp(t, down, opdata.DirectionForward),
	}
	cfg := DefaultOptimizerConfig()
	cfg.Flags = OptimizationLossy
	got, err := Optimize(list, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind() != opdata.KindRange {
		t.Fatalf("got %v, want the [0, 1] clamp", got)
	}
}

func dynamicEC(value float64) *opdata.ExposureContrast {
	ec := opdata.NewExposureContrast(opdata.ECLinearFwd)
	p := ec.Exposure.Load()
	p.SetValue(value)
	p.MakeDynamic()
	return ec
}

func TestUnify_SharesOneCell(t *testing.T) {
	list := []*Op{
		finalizedOp(t, dynamicEC(1), opdata.DirectionForward),
		finalizedOp(t, opdata.NewRange(0, 1, 0, 1), opdata.DirectionForward),
		finalizedOp(t, dynamicEC(2), opdata.DirectionForward),
	}
	reg := dynamic.NewRegistry()
	Unify(list, reg)

	cell, err := reg.Get(dynamic.TypeExposure)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{0, 2} {
		p, err := list[i].DynamicProperty(dynamic.TypeExposure)
		if err != nil || p != cell {
			t.Errorf("op %d: DynamicProperty = %p, %v, want %p", i, p, err, cell)
		}
	}
	if _, err := list[1].DynamicProperty(dynamic.TypeExposure); !errors.Is(err, dynamic.ErrNotDynamic) {
		t.Errorf("Range DynamicProperty error = %v, want ErrNotDynamic", err)
	}
	if reg.Has(dynamic.TypeContrast) {
		t.Error("registry holds a contrast cell, want none")
	}

	// Both ops now double once per exposure stop of the shared cell.
	cell.SetValue(0)
	before := apply(t, list)
	cell.SetValue(1)
	after := apply(t, list)
	if got, want := after[4], before[4]*4; math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("after SetValue: %v, want %v", got, want)
	}
}

func TestDynamicOps_NotRemovedAsIdentity(t *testing.T) {
	list := []*Op{finalizedOp(t, dynamicEC(0), opdata.DirectionForward)}
	got, err := Optimize(list, DefaultOptimizerConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want the dynamic op kept", len(got))
	}
	if IsNoOp(got) {
		t.Error("IsNoOp = true for a dynamic op")
	}
}

func TestCloneDetached(t *testing.T) {
	list := []*Op{
		finalizedOp(t, dynamicEC(1), opdata.DirectionForward),
		finalizedOp(t, dynamicEC(1), opdata.DirectionInverse),
	}
	Unify(list, dynamic.NewRegistry())

	shared := CloneAll(list)
	detached := CloneDetached(list)

	orig, _ := list[0].DynamicProperty(dynamic.TypeExposure)
	s, _ := shared[0].DynamicProperty(dynamic.TypeExposure)
	if s != orig {
		t.Error("CloneAll does not share the cell")
	}

	d0, _ := detached[0].DynamicProperty(dynamic.TypeExposure)
	d1, _ := detached[1].DynamicProperty(dynamic.TypeExposure)
	if d0 == orig {
		t.Error("CloneDetached shares the original cell")
	}
	if d0 != d1 {
		t.Error("CloneDetached split a cell the ops shared")
	}
	orig.SetValue(3)
	if d0.Value() != 1 {
		t.Errorf("detached value = %v after editing the original, want 1", d0.Value())
	}
}

func TestReplaceDynamicProperty(t *testing.T) {
	o := finalizedOp(t, dynamicEC(0), opdata.DirectionInverse)
	p := dynamic.NewProperty(dynamic.TypeExposure, 2, true)
	if err := o.ReplaceDynamicProperty(dynamic.TypeExposure, p); err != nil {
		t.Fatal(err)
	}
	got, _ := o.DynamicProperty(dynamic.TypeExposure)
	if got != p {
		t.Error("DynamicProperty does not return the replacement")
	}
	if err := o.ReplaceDynamicProperty(dynamic.TypeGamma, p); !errors.Is(err, dynamic.ErrNotDynamic) {
		t.Errorf("replacing a static property: error = %v, want ErrNotDynamic", err)
	}
}

func TestRemoveDynamicProperties(t *testing.T) {
	o := finalizedOp(t, dynamicEC(1), opdata.DirectionForward)
	live, _ := o.DynamicProperty(dynamic.TypeExposure)
	dynID := o.CacheID()

	if err := o.RemoveDynamicProperties(); err != nil {
		t.Fatal(err)
	}
	if o.IsDynamic() {
		t.Error("IsDynamic() = true after RemoveDynamicProperties")
	}
	if o.CacheID() == dynID {
		t.Error("CacheID unchanged after freezing")
	}
	before := apply(t, []*Op{o})
	live.SetValue(4)
	after := apply(t, []*Op{o})
	assertClose(t, after, before, 0)
}
