package opdata

import (
	"errors"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/colorpipe/dynamic"
)

// samples returns one valid, non-trivial value of every kind.
func samples() []Data {
	curve := NewLut1D(17, false)
	for i := range 17 {
		v := float32(math.Pow(float64(i)/16, 2.2))
		curve.Values[3*i], curve.Values[3*i+1], curve.Values[3*i+2] = v, v, v
	}

	cube := NewLut3D(5)
	for i := range cube.Values {
		cube.Values[i] = cube.Values[i]*0.9 + 0.05
	}

	ec := NewExposureContrast(ECLinearFwd)
	ec.Exposure.Load().SetValue(1.5)
	ec.Contrast.Load().SetValue(1.2)

	cdl := NewCDL(CDLASCFwd)
	cdl.Slope = [3]float64{1.1, 0.9, 1.0}
	cdl.Offset = [3]float64{0.01, -0.02, 0}
	cdl.Power = [3]float64{1.2, 1.0, 0.8}
	cdl.Saturation = 0.9

	return []Data{
		NewMatrixFrom(f64.Mat4{
			0.8, 0.1, 0.1, 0,
			0.05, 0.9, 0.05, 0,
			0, 0.2, 0.8, 0,
			0, 0, 0, 1,
		}, f64.Vec4{0.01, 0, -0.01, 0}),
		curve,
		NewInvLut1D(curve.Clone().(*Lut1D)),
		cube,
		NewGamma(GammaMoncurveFwd, 2.4, 0.055),
		NewLog(DirectionForward, 10, LogParams{LogSideSlope: 0.5, LogSideOffset: 0.1, LinSideSlope: 2, LinSideOffset: 0.01}),
		ec,
		NewFixedFunction(FFRec2100Surround, 0.78),
		NewRange(0.1, 0.9, 0, 1),
		cdl,
		NewReference("looks/shot.clf"),
	}
}

func TestSamples_CoverEveryKind(t *testing.T) {
	seen := make(map[Kind]bool)
	for _, d := range samples() {
		seen[d.Kind()] = true
	}
	for _, k := range Kinds() {
		if !seen[k] {
			t.Errorf("no sample for kind %v", k)
		}
	}
}

func TestFinalize_Idempotent(t *testing.T) {
	for _, d := range samples() {
		t.Run(d.Kind().String(), func(t *testing.T) {
			if d.CacheID() != "" {
				t.Fatalf("CacheID() before Finalize = %q, want empty", d.CacheID())
			}
			if err := d.Finalize(); err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}
			first := d.CacheID()
			if first == "" {
				t.Fatal("CacheID() empty after Finalize")
			}
			if !strings.HasPrefix(first, d.Kind().String()+":") {
				t.Errorf("CacheID() = %q, want prefix %q", first, d.Kind().String()+":")
			}
			if err := d.Finalize(); err != nil {
				t.Fatalf("second Finalize() error = %v", err)
			}
			if d.CacheID() != first {
				t.Errorf("CacheID() changed: %q -> %q", first, d.CacheID())
			}
		})
	}
}

func TestClone_EqualAndIndependent(t *testing.T) {
	for _, d := range samples() {
		t.Run(d.Kind().String(), func(t *testing.T) {
			c := d.Clone()
			if !c.Equal(d) || !d.Equal(c) {
				t.Fatal("clone is not Equal to original")
			}
			c.Metadata().SetAttribute("name", "clone")
			if _, ok := d.Metadata().Attribute("name"); ok {
				t.Error("metadata shared between clone and original")
			}
		})
	}
}

func TestInverse_Twice(t *testing.T) {
	for _, d := range samples() {
		t.Run(d.Kind().String(), func(t *testing.T) {
			inv, err := d.Inverse()
			if d.Kind() == KindLut3D {
				if !errors.Is(err, ErrUnsupported) {
					t.Fatalf("Inverse() error = %v, want ErrUnsupported", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Inverse() error = %v", err)
			}
			if err := inv.Finalize(); err != nil {
				t.Fatalf("inverse Finalize() error = %v", err)
			}
			if inv.Equal(d) && d.Kind() != KindFixedFunction {
				t.Error("inverse is Equal to original")
			}
			back, err := inv.Inverse()
			if err != nil {
				t.Fatalf("second Inverse() error = %v", err)
			}
			if !back.Equal(d) {
				t.Error("Inverse().Inverse() is not Equal to original")
			}
		})
	}
}

func TestFixedFunction_Rec2100Bounds(t *testing.T) {
	ff := NewFixedFunction(FFRec2100Surround, 120)
	err := ff.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error %T is not *ValidationError", err)
	}
	if ve.Value != 120 || ve.Limit != 100 || ve.Bound != BoundUpper {
		t.Errorf("ValidationError = %+v, want value 120 above limit 100", ve)
	}
	msg := err.Error()
	if !strings.Contains(msg, "120") || !strings.Contains(msg, "100") {
		t.Errorf("message %q should name the value and the bound", msg)
	}

	ff.Params[0] = 1e-5
	if err := ff.Validate(); err == nil || !strings.Contains(err.Error(), "0.001") {
		t.Errorf("Validate() error = %v, want lower bound 0.001", err)
	}
}

func TestFixedFunction_Rec2100Inverse(t *testing.T) {
	ff := NewFixedFunction(FFRec2100Surround, 2.0)
	if err := ff.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	inv, err := ff.Inverse()
	if err != nil {
		t.Fatalf("Inverse() error = %v", err)
	}
	got := inv.(*FixedFunction).Params
	if len(got) != 1 || got[0] != 0.5 {
		t.Errorf("inverse params = %v, want [0.5]", got)
	}
}

func TestFixedFunction_ParamCount(t *testing.T) {
	tests := []struct {
		name   string
		ff     *FixedFunction
		substr string
	}{
		{"rec2100 none", NewFixedFunction(FFRec2100Surround), "must have 1 parameter but 0 found"},
		{"rec2100 two", NewFixedFunction(FFRec2100Surround, 1, 2), "must have 1 parameter but 2 found"},
		{"hsv one", NewFixedFunction(FFRGBToHSV, 1), "must have zero parameters but 1 found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ff.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.substr)
			}
		})
	}
}

func TestFixedFunction_ReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		ff   *FixedFunction
		in   [][3]float64
		want [][3]float64
		tol  float64
	}{
		{
			name: "rec2100 surround",
			ff:   NewFixedFunction(FFRec2100Surround, 0.78),
			in:   [][3]float64{{0.11, 0.02, 0.04}, {0.71, 0.51, 0.81}, {0.43, 0.82, 0.71}, {-1, -0.001, 1.2}},
			want: [][3]float64{
				{0.21779590, 0.03959925, 0.07919850},
				{0.80029451, 0.57485944, 0.91301214},
				{0.46350446, 0.88389223, 0.76532131},
				{-7.58577776, -0.00758577, 9.10293388},
			},
			tol: 1e-6,
		},
		{
			name: "aces dark to dim",
			ff:   NewFixedFunction(FFACESDarkToDim10Fwd),
			in:   [][3]float64{{0.11, 0.02, 0.04}, {0.71, 0.51, 0.92}, {0.43, 0.82, 0.71}, {-0.3, 0.5, 1.2}},
			want: [][3]float64{
				{0.11661188, 0.02120216, 0.04240432},
				{0.71719729, 0.51516991, 0.92932611},
				{0.43281638, 0.82537078, 0.71465027},
				{-0.30653429, 0.51089048, 1.22613716},
			},
			tol: 1e-6,
		},
		{
			name: "rgb to hsv",
			ff:   NewFixedFunction(FFRGBToHSV),
			in:   [][3]float64{{1.5, 2.5, 0.5}, {3.125, -0.625, 1.25}, {-5.0 / 3, -4.0 / 3, -1.0 / 3}, {0.1, -0.8, 0.4}},
			want: [][3]float64{{3.0 / 12, 0.8, 2.5}, {11.0 / 12, 1.2, 2.5}, {15.0 / 24, 0.8, -2}, {19.0 / 24, 1.5, -0.4}},
			tol:  1e-9,
		},
		{
			name: "hsv to rgb",
			ff:   NewFixedFunction(FFHSVToRGB),
			in: [][3]float64{
				{3.0 / 12, 0.8, 2.5}, {11.0 / 12, 1.2, 2.5}, {15.0 / 24, 0.8, -2}, {19.0 / 24, 1.5, -0.4},
				{-89.0 / 24, 0.5, 0.4}, {81.0 / 24, 1.5, -0.4}, {81.0 / 24, -0.5, 0.4},
			},
			want: [][3]float64{
				{1.5, 2.5, 0.5}, {3.125, -0.625, 1.25}, {-5.0 / 3, -4.0 / 3, -1.0 / 3}, {0.1, -0.8, 0.4},
				{0.25, 0.4, 0.2}, {-0.8, 0.4, -0.5}, {0.4, 0.4, 0.4},
			},
			tol: 1e-9,
		},
		{
			name: "xyz to xyY",
			ff:   NewFixedFunction(FFXYZToXyY),
			in:   [][3]float64{{3600.0 / 4095, 250.0 / 4095, 900.0 / 4095}, {400.0 / 4095, 3000.0 / 4095, 4000.0 / 4095}},
			want: [][3]float64{{49669.0 / 65535, 3449.0 / 65535, 4001.0 / 65535}, {3542.0 / 65535, 26568.0 / 65535, 48011.0 / 65535}},
			tol:  1e-5,
		},
		{
			name: "xyz to uvY",
			ff:   NewFixedFunction(FFXYZToUvY),
			in:   [][3]float64{{3600.0 / 4095, 350.0 / 4095, 1900.0 / 4095}, {400.0 / 4095, 3000.0 / 4095, 4000.0 / 4095}},
			want: [][3]float64{{64859.0 / 65535, 14188.0 / 65535, 5601.0 / 65535}, {1827.0 / 65535, 30827.0 / 65535, 48011.0 / 65535}},
			tol:  1e-5,
		},
		{
			name: "xyz to luv",
			ff:   NewFixedFunction(FFXYZToLuv),
			in:   [][3]float64{{3600.0 / 4095, 3500.0 / 4095, 1900.0 / 4095}, {50.0 / 4095, 30.0 / 4095, 19.0 / 4095}},
			want: [][3]float64{{61659.0 / 65535, 28199.0 / 65535, 33176.0 / 65535}, {4337.0 / 65535, 9090.0 / 65535, 926.0 / 65535}},
			tol:  1e-5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.ff.Finalize(); err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}
			for i, in := range tt.in {
				r, g, b := tt.ff.Apply(in[0], in[1], in[2])
				got := [3]float64{r, g, b}
				for ch := range 3 {
					if !closeRel(got[ch], tt.want[i][ch], tt.tol) {
						t.Errorf("sample %d ch %d = %.8f, want %.8f", i, ch, got[ch], tt.want[i][ch])
					}
				}
			}
		})
	}
}

// closeRel compares with an absolute tolerance below 1 and a relative one
// above.
func closeRel(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol*math.Max(1, math.Abs(want))
}

func TestFixedFunction_RoundTrip(t *testing.T) {
	styles := []*FixedFunction{
		NewFixedFunction(FFACESDarkToDim10Fwd),
		NewFixedFunction(FFRec2100Surround, 0.78),
		NewFixedFunction(FFRGBToHSV),
		NewFixedFunction(FFXYZToXyY),
		NewFixedFunction(FFXYZToUvY),
		NewFixedFunction(FFXYZToLuv),
	}
	in := [3]float64{0.42, 0.37, 0.21}
	for _, ff := range styles {
		t.Run(ff.Style.String(), func(t *testing.T) {
			inv, err := ff.Inverse()
			if err != nil {
				t.Fatalf("Inverse() error = %v", err)
			}
			r, g, b := ff.Apply(in[0], in[1], in[2])
			r, g, b = inv.(*FixedFunction).Apply(r, g, b)
			got := [3]float64{r, g, b}
			for ch := range 3 {
				if math.Abs(got[ch]-in[ch]) > 1e-9 {
					t.Errorf("round trip ch %d = %v, want %v", ch, got[ch], in[ch])
				}
			}
		})
	}
}

func TestGamma_Validate(t *testing.T) {
	tests := []struct {
		name    string
		g       *Gamma
		wantErr bool
	}{
		{"basic ok", NewGamma(GammaBasicFwd, 2.2, 0), false},
		{"basic too small", NewGamma(GammaBasicFwd, 0.001, 0), true},
		{"basic too large", NewGamma(GammaBasicRev, 120, 0), true},
		{"moncurve ok", NewGamma(GammaMoncurveFwd, 2.4, 0.055), false},
		{"moncurve gamma below 1", NewGamma(GammaMoncurveFwd, 0.9, 0), true},
		{"moncurve offset too large", NewGamma(GammaMoncurveRev, 2.4, 0.95), true},
		{"moncurve offset needs gamma above 1", NewGamma(GammaMoncurveFwd, 1, 0.1), true},
		{"moncurve identity", NewGamma(GammaMoncurveFwd, 1, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("error %v does not match ErrValidation", err)
			}
		})
	}
}

func TestGamma_MoncurveContinuity(t *testing.T) {
	g := NewGamma(GammaMoncurveFwd, 2.4, 0.055)
	m := g.MoncurveParams(0)
	lin := m.BreakPnt * m.Slope
	pow := math.Pow(m.BreakPnt*m.Scale+m.Offset, m.Gamma)
	if math.Abs(lin-pow) > 1e-12 {
		t.Errorf("segments disagree at break point: %v vs %v", lin, pow)
	}
	// sRGB: slope of the linear segment is 1/12.92.
	if math.Abs(m.Slope-1/12.92) > 1e-4 {
		t.Errorf("Slope = %v, want ~%v", m.Slope, 1/12.92)
	}
	r := g.MoncurveRevParams(0)
	if math.Abs(r.BreakPnt-lin) > 1e-12 {
		t.Errorf("reverse BreakPnt = %v, want %v", r.BreakPnt, lin)
	}
}

func TestGamma_Compose(t *testing.T) {
	a := NewGamma(GammaBasicFwd, 2, 0)
	b := NewGamma(GammaBasicRev, 2, 0)
	if !a.CanCompose(b) {
		t.Fatal("CanCompose() = false, want true")
	}
	c := a.Compose(b)
	if !c.IsIdentity() {
		t.Errorf("composed params = %v, want identity", c.Params)
	}
	if c.IdentityReplacement() == nil {
		t.Error("basic identity should still clamp at zero")
	}

	mirror := NewGamma(GammaBasicMirrorFwd, 2, 0)
	if a.CanCompose(mirror) {
		t.Error("basic and mirror families should not compose")
	}
	big := NewGamma(GammaBasicFwd, 50, 0)
	if big.CanCompose(NewGamma(GammaBasicFwd, 3, 0)) {
		t.Error("composition above the basic bound should be refused")
	}
}

func TestMatrix_InverseAndCompose(t *testing.T) {
	m := samples()[0].(*Matrix)
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse() error = %v", err)
	}
	id := m.Compose(inv.(*Matrix))
	for i := range id.M {
		if math.Abs(id.M[i]-IdentityMat4[i]) > 1e-12 {
			t.Fatalf("M * M^-1 = %v, want identity", id.M)
		}
	}
	for i := range id.Offset {
		if math.Abs(id.Offset[i]) > 1e-12 {
			t.Fatalf("composed offset = %v, want zero", id.Offset)
		}
	}

	singular := NewScale(f64.Vec4{1, 0, 1, 1})
	if _, err := singular.Inverse(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("singular Inverse() error = %v, want ErrUnsupported", err)
	}
}

func TestMatrix_ComposeOrder(t *testing.T) {
	scale := NewScale(f64.Vec4{2, 2, 2, 1})
	shift := NewMatrixFrom(IdentityMat4, f64.Vec4{1, 0, 0, 0})
	got := scale.Compose(shift).Apply(f64.Vec4{1, 1, 1, 1})
	want := f64.Vec4{3, 2, 2, 1}
	if got != want {
		t.Errorf("scale then shift = %v, want %v", got, want)
	}
}

func TestRange_Compose(t *testing.T) {
	a := NewRange(0, 1, 0, 2)
	b := NewRange(0.5, 1.5, 0, 1)
	if !a.CanCompose(b) {
		t.Fatal("CanCompose() = false, want true")
	}
	c := a.Compose(b)
	for _, x := range []float64{-1, 0, 0.2, 0.3, 0.5, 0.7, 1, 2} {
		want := b.Apply(a.Apply(x))
		if got := c.Apply(x); math.Abs(got-want) > 1e-12 {
			t.Errorf("composed(%v) = %v, want %v", x, got, want)
		}
	}
	if a.CanCompose(NewMinRange(0, 0)) {
		t.Error("half-open ranges should not compose")
	}
}

func TestRange_Validate(t *testing.T) {
	r := NewRange(1, 0, 0, 1)
	if err := r.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Validate() error = %v, want ErrValidation", err)
	}
	if !(&Range{}).IsIdentity() {
		t.Error("unbounded range should be identity")
	}
}

func TestLut1D_Validate(t *testing.T) {
	if err := NewLut1DFrom([]float32{0, 0, 0}, false).Validate(); err == nil {
		t.Error("single-entry table accepted")
	}
	if err := NewLut1DFrom(make([]float32, 3*100), true).Validate(); err == nil {
		t.Error("half-domain table with 100 entries accepted")
	}
	bad := NewLut1D(4, false)
	bad.Values[4] = float32(math.NaN())
	if err := bad.Validate(); err == nil {
		t.Error("NaN value accepted")
	}
	if !NewLut1D(1024, false).IsIdentity() {
		t.Error("identity table not recognized")
	}
}

func TestInvLut1D_FastTable(t *testing.T) {
	fwd := samples()[1].(*Lut1D)
	inv := NewInvLut1D(fwd)
	if err := inv.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	fast := inv.Fast()
	if fast.HalfDomain || fast.Size() != FastInvLut1DSize {
		t.Fatalf("fast table: half=%v size=%d, want regular %d", fast.HalfDomain, fast.Size(), FastInvLut1DSize)
	}
	for _, x := range []float32{0.1, 0.3, 0.5, 0.8, 0.95} {
		y := fwd.Eval(0, x)
		back := fast.Eval(0, y)
		if math.Abs(float64(back-x)) > 2e-3 {
			t.Errorf("inverse(forward(%v)) = %v", x, back)
		}
	}
}

func TestInvLut1D_ExtendedRangeUsesHalfDomain(t *testing.T) {
	fwd := NewLut1D(5, false)
	for i := range 5 {
		v := float32(i) * 2
		fwd.Values[3*i], fwd.Values[3*i+1], fwd.Values[3*i+2] = v, v, v
	}
	inv := NewInvLut1D(fwd)
	if err := inv.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	fast := inv.Fast()
	if !fast.HalfDomain {
		t.Fatal("fast table should use the half domain when output leaves [0, 1]")
	}
	if got := fast.Eval(1, 4); math.Abs(float64(got)-0.5) > 1e-3 {
		t.Errorf("inverse(4) = %v, want 0.5", got)
	}
}

func TestInvLut1D_RejectsNonMonotonic(t *testing.T) {
	fwd := NewLut1DFrom([]float32{0, 0, 0, 1, 1, 1, 0.5, 0.5, 0.5}, false)
	if err := NewInvLut1D(fwd).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Validate() error = %v, want ErrValidation", err)
	}
}

func TestLut3D_Validate(t *testing.T) {
	if err := NewLut3DFrom(130, nil).Validate(); err == nil || !strings.Contains(err.Error(), "129") {
		t.Errorf("Validate() error = %v, want upper bound 129", err)
	}
	l := NewLut3D(3)
	l.Values = l.Values[:10]
	if err := l.Validate(); err == nil {
		t.Error("short table accepted")
	}
	if !NewLut3D(17).IsIdentity() {
		t.Error("identity grid not recognized")
	}
}

func TestExposureContrast_RoundTrip(t *testing.T) {
	for _, style := range []ExposureContrastStyle{ECLinearFwd, ECVideoFwd, ECLogFwd} {
		t.Run(style.String(), func(t *testing.T) {
			ec := NewExposureContrast(style)
			ec.Exposure.Load().SetValue(0.7)
			ec.Contrast.Load().SetValue(1.3)
			ec.Gamma.Load().SetValue(1.1)
			inv, _ := ec.Inverse()
			cf := ec.Coefficients()
			ci := inv.(*ExposureContrast).Coefficients()
			for _, x := range []float64{0.05, 0.18, 0.5, 1.2} {
				got := inv.(*ExposureContrast).Apply(ci, ec.Apply(cf, x))
				if math.Abs(got-x) > 1e-9 {
					t.Errorf("round trip(%v) = %v", x, got)
				}
			}
		})
	}
}

func TestExposureContrast_DynamicEquality(t *testing.T) {
	a := NewExposureContrast(ECLinearFwd)
	a.Exposure.Load().MakeDynamic()
	b := a.Clone().(*ExposureContrast)
	b.Exposure.Isolate()
	b.Exposure.Load().SetValue(3)

	if !a.Equal(b) {
		t.Error("dynamic properties should compare equal regardless of value")
	}
	if a.IsIdentity() {
		t.Error("a dynamic adjustment is never an identity")
	}
	if err := a.Finalize(); err != nil {
		t.Fatal(err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatal(err)
	}
	if a.CacheID() != b.CacheID() {
		t.Error("dynamic values should not change the cache identifier")
	}
}

func TestExposureContrast_CloneSharesCells(t *testing.T) {
	a := NewExposureContrast(ECLinearFwd)
	a.Exposure.Load().MakeDynamic()
	b := a.Clone().(*ExposureContrast)
	a.Exposure.Load().SetValue(2)
	if b.Exposure.Value() != 2 {
		t.Errorf("clone exposure = %v, want 2", b.Exposure.Value())
	}
	if b.Handle(dynamic.TypeExposure) != b.Exposure {
		t.Error("Handle(exposure) does not return the exposure handle")
	}
}

func TestCDL_RoundTrip(t *testing.T) {
	cdl := samples()[9].(*CDL)
	cdl.Style = CDLNoClampFwd
	inv, err := cdl.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	in := [3]float64{0.3, 0.5, 0.7}
	got := inv.(*CDL).Apply(cdl.Apply(in))
	for i := range in {
		if math.Abs(got[i]-in[i]) > 1e-9 {
			t.Errorf("round trip ch %d = %v, want %v", i, got[i], in[i])
		}
	}
}

func TestCDL_ClampingIdentityReplacement(t *testing.T) {
	if NewCDL(CDLASCFwd).IdentityReplacement() == nil {
		t.Error("ASC CDL identity should clamp")
	}
	if NewCDL(CDLNoClampFwd).IdentityReplacement() != nil {
		t.Error("no-clamp CDL identity should not clamp")
	}
}

func TestReference_Validate(t *testing.T) {
	if err := (&Reference{}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Validate() error = %v, want ErrValidation", err)
	}
	r := &Reference{Path: "a.clf", Alias: "look"}
	if r.Target() != "look" {
		t.Errorf("Target() = %q, want alias", r.Target())
	}
}

func TestMetadata_Combine(t *testing.T) {
	a := NewMetadata("ProcessList")
	a.SetAttribute("id", "a")
	b := NewMetadata("ProcessList")
	b.SetAttribute("id", "b")
	b.SetAttribute("name", "second")
	b.AddChild("Description", "from b")

	a.Combine(b)
	if id, _ := a.Attribute("id"); id != "a + b" {
		t.Errorf("id = %q, want %q", id, "a + b")
	}
	if name, _ := a.Attribute("name"); name != "second" {
		t.Errorf("name = %q, want %q", name, "second")
	}
	if len(a.Children) != 1 {
		t.Errorf("children = %d, want 1", len(a.Children))
	}
}

func TestBitDepth(t *testing.T) {
	tests := []struct {
		bd      BitDepth
		max     float64
		bytes   int
		isFloat bool
		ideal   int
	}{
		{BitDepthUInt8, 255, 1, false, 256},
		{BitDepthUInt10, 1023, 2, false, 1024},
		{BitDepthUInt12, 4095, 2, false, 4096},
		{BitDepthUInt16, 65535, 2, false, 65536},
		{BitDepthF16, 1, 2, true, 65536},
		{BitDepthF32, 1, 4, true, 65536},
	}
	for _, tt := range tests {
		t.Run(tt.bd.String(), func(t *testing.T) {
			if tt.bd.MaxValue() != tt.max {
				t.Errorf("MaxValue() = %v, want %v", tt.bd.MaxValue(), tt.max)
			}
			if tt.bd.BytesPerChannel() != tt.bytes {
				t.Errorf("BytesPerChannel() = %v, want %v", tt.bd.BytesPerChannel(), tt.bytes)
			}
			if tt.bd.IsFloat() != tt.isFloat {
				t.Errorf("IsFloat() = %v, want %v", tt.bd.IsFloat(), tt.isFloat)
			}
			if tt.bd.IdealLutSize() != tt.ideal {
				t.Errorf("IdealLutSize() = %v, want %v", tt.bd.IdealLutSize(), tt.ideal)
			}
		})
	}
	if BitDepthUnknown.IsValid() {
		t.Error("unknown bit depth reported valid")
	}
}

func TestKindAndDirectionStrings(t *testing.T) {
	if KindExposureContrast.String() != "ExposureContrast" {
		t.Errorf("String() = %q", KindExposureContrast.String())
	}
	if Kind(200).String() != "Kind(200)" {
		t.Errorf("String() = %q", Kind(200).String())
	}
	if DirectionForward.Inverse() != DirectionInverse || DirectionInverse.Compose(DirectionInverse) != DirectionForward {
		t.Error("direction algebra is wrong")
	}
}
