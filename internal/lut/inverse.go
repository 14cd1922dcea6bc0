package lut

import "sort"

// Monotonic reports the direction of a sequence: +1 non-decreasing,
// -1 non-increasing, 0 neither. A constant sequence counts as non-decreasing.
func Monotonic(ys []float64) int {
	up, down := true, true
	for i := 1; i < len(ys); i++ {
		switch {
		case ys[i] > ys[i-1]:
			down = false
		case ys[i] < ys[i-1]:
			up = false
		}
	}
	switch {
	case up:
		return 1
	case down:
		return -1
	default:
		return 0
	}
}

// InvertMonotonic returns x such that the piecewise-linear function through
// (xs[i], ys[i]) evaluates to y. ys must be monotonic in direction dir
// (+1 or -1). Values of y outside the range of ys map to the end of the
// domain they are nearest to. On flat segments the lowest x is returned.
func InvertMonotonic(xs, ys []float64, dir int, y float64) float64 {
	n := len(ys)
	if dir < 0 {
		// Search the mirrored sequence so the logic below only handles
		// increasing data.
		i := sort.Search(n, func(i int) bool { return ys[i] <= y })
		switch {
		case i == 0:
			return xs[0]
		case i == n:
			return xs[n-1]
		}
		y0, y1 := ys[i-1], ys[i]
		if y0 == y1 {
			return xs[i]
		}
		f := (y0 - y) / (y0 - y1)
		return xs[i-1] + f*(xs[i]-xs[i-1])
	}

	i := sort.Search(n, func(i int) bool { return ys[i] >= y })
	switch {
	case i == 0:
		return xs[0]
	case i == n:
		return xs[n-1]
	}
	y0, y1 := ys[i-1], ys[i]
	if y0 == y1 {
		return xs[i-1]
	}
	f := (y - y0) / (y1 - y0)
	return xs[i-1] + f*(xs[i]-xs[i-1])
}

// Layout1D returns the texture size used to store a 1D table of n entries
// in rows of at most maxWidth texels.
func Layout1D(n, maxWidth int) (width, height int) {
	if n <= maxWidth {
		return n, 1
	}
	return maxWidth, (n + maxWidth - 1) / maxWidth
}
