package opdata

import "math"

// LogParams holds the affine coefficients around the logarithm of one
// channel:
//
//	log side = LogSideSlope * log_base(LinSideSlope*x + LinSideOffset) + LogSideOffset
type LogParams struct {
	LogSideSlope  float64
	LogSideOffset float64
	LinSideSlope  float64
	LinSideOffset float64
}

// DefaultLogParams returns the coefficients of a plain logarithm.
func DefaultLogParams() LogParams {
	return LogParams{LogSideSlope: 1, LinSideSlope: 1}
}

// Log converts between linear values and a logarithmic encoding. With
// Direction forward it maps linear to log; inverse maps log to linear.
// Alpha passes through unchanged.
type Log struct {
	base
	Direction Direction
	Base      float64

	// Params holds the R, G, B coefficients.
	Params [3]LogParams
}

// minLogArg is the smallest argument passed to the logarithm; smaller and
// negative values are clamped to it.
const minLogArg = 1.1754943508222875e-38 // smallest normal float32

// NewLog returns a log with the same coefficients on every channel.
func NewLog(dir Direction, base float64, p LogParams) *Log {
	return &Log{Direction: dir, Base: base, Params: [3]LogParams{p, p, p}}
}

// NewLog2 returns a plain base-2 logarithm.
func NewLog2(dir Direction) *Log { return NewLog(dir, 2, DefaultLogParams()) }

// Kind returns KindLog.
func (*Log) Kind() Kind { return KindLog }

// Validate checks the base and that no slope is zero.
func (l *Log) Validate() error {
	if !(l.Base > 0) || l.Base == 1 || !finite(l.Base) {
		return invalidf(KindLog, "base", "base must be positive and not 1, got %s", formatFloat(l.Base))
	}
	for i, p := range l.Params {
		if !finite(p.LogSideSlope, p.LogSideOffset, p.LinSideSlope, p.LinSideOffset) {
			return invalidf(KindLog, channelNames[i], "coefficients must be finite")
		}
		if p.LogSideSlope == 0 {
			return invalidf(KindLog, channelNames[i]+" logSideSlope", "must not be zero")
		}
		if p.LinSideSlope == 0 {
			return invalidf(KindLog, channelNames[i]+" linSideSlope", "must not be zero")
		}
	}
	return nil
}

// Finalize validates and computes the cache identifier.
func (l *Log) Finalize() error {
	if err := l.Validate(); err != nil {
		return err
	}
	id := newIDBuilder(KindLog).int(int(l.Direction)).float(l.Base)
	for _, p := range l.Params {
		id.float(p.LogSideSlope, p.LogSideOffset, p.LinSideSlope, p.LinSideOffset)
	}
	l.cacheID = id.String()
	return nil
}

// Clone returns a copy.
func (l *Log) Clone() Data {
	c := *l
	c.base = l.cloneBase()
	return &c
}

// Inverse flips the direction.
func (l *Log) Inverse() (Data, error) {
	inv := &Log{base: base{meta: l.meta.Clone()}, Direction: l.Direction.Inverse(), Base: l.Base, Params: l.Params}
	return inv, nil
}

// IsIdentity returns false: a logarithm is never the identity.
func (*Log) IsIdentity() bool { return false }

// IdentityReplacement returns nil.
func (*Log) IdentityReplacement() Data { return nil }

// Equal reports whether other has the same direction, base and
// coefficients.
func (l *Log) Equal(other Data) bool {
	o, ok := other.(*Log)
	if !ok || l.Direction != o.Direction || !nearlyEqual(l.Base, o.Base) {
		return false
	}
	for i := range l.Params {
		a, b := l.Params[i], o.Params[i]
		if !nearlyEqual(a.LogSideSlope, b.LogSideSlope) || !nearlyEqual(a.LogSideOffset, b.LogSideOffset) ||
			!nearlyEqual(a.LinSideSlope, b.LinSideSlope) || !nearlyEqual(a.LinSideOffset, b.LinSideOffset) {
			return false
		}
	}
	return true
}

// HasChannelCrosstalk returns false.
func (*Log) HasChannelCrosstalk() bool { return false }

// LinToLog evaluates the forward curve of channel ch.
func (l *Log) LinToLog(ch int, x float64) float64 {
	p := l.Params[ch]
	arg := math.Max(minLogArg, p.LinSideSlope*x+p.LinSideOffset)
	return p.LogSideSlope*math.Log(arg)/math.Log(l.Base) + p.LogSideOffset
}

// LogToLin evaluates the inverse curve of channel ch.
func (l *Log) LogToLin(ch int, y float64) float64 {
	p := l.Params[ch]
	return (math.Pow(l.Base, (y-p.LogSideOffset)/p.LogSideSlope) - p.LinSideOffset) / p.LinSideSlope
}

// MinLogArg returns the clamp applied to the logarithm's argument.
func MinLogArg() float64 { return minLogArg }
