package lut

// Index3D returns the offset of the RGB triple at grid coordinates
// (r, g, b) in a table with n points per axis.
func Index3D(n, r, g, b int) int {
	return ((r*n+g)*n + b) * 3
}

// Identity3D returns an identity grid of n points per axis.
func Identity3D(n int) []float32 {
	t := make([]float32, 3*n*n*n)
	scale := float32(1) / float32(n-1)
	for r := range n {
		for g := range n {
			for b := range n {
				i := Index3D(n, r, g, b)
				t[i] = float32(r) * scale
				t[i+1] = float32(g) * scale
				t[i+2] = float32(b) * scale
			}
		}
	}
	return t
}

// gridPos clamps x to [0, 1] and splits it into a lower grid index and a
// fractional weight.
func gridPos(x float32, n int) (int, int, float32) {
	if !(x > 0) {
		return 0, 0, 0
	}
	if x >= 1 {
		return n - 1, n - 1, 0
	}
	p := x * float32(n-1)
	i := int(p)
	if i >= n-1 {
		return n - 1, n - 1, 0
	}
	return i, i + 1, p - float32(i)
}

// Trilinear samples the table at (r, g, b).
func Trilinear(t []float32, n int, r, g, b float32) (float32, float32, float32) {
	r0, r1, fr := gridPos(r, n)
	g0, g1, fg := gridPos(g, n)
	b0, b1, fb := gridPos(b, n)

	var out [3]float32
	for ch := range 3 {
		c000 := t[Index3D(n, r0, g0, b0)+ch]
		c001 := t[Index3D(n, r0, g0, b1)+ch]
		c010 := t[Index3D(n, r0, g1, b0)+ch]
		c011 := t[Index3D(n, r0, g1, b1)+ch]
		c100 := t[Index3D(n, r1, g0, b0)+ch]
		c101 := t[Index3D(n, r1, g0, b1)+ch]
		c110 := t[Index3D(n, r1, g1, b0)+ch]
		c111 := t[Index3D(n, r1, g1, b1)+ch]

		c00 := c000 + fb*(c001-c000)
		c01 := c010 + fb*(c011-c010)
		c10 := c100 + fb*(c101-c100)
		c11 := c110 + fb*(c111-c110)
		c0 := c00 + fg*(c01-c00)
		c1 := c10 + fg*(c11-c10)
		out[ch] = c0 + fr*(c1-c0)
	}
	return out[0], out[1], out[2]
}

// Tetrahedral samples the table at (r, g, b), splitting each cube into six
// tetrahedra along its main diagonal.
func Tetrahedral(t []float32, n int, r, g, b float32) (float32, float32, float32) {
	r0, r1, fr := gridPos(r, n)
	g0, g1, fg := gridPos(g, n)
	b0, b1, fb := gridPos(b, n)

	// Each tetrahedron runs from the low corner through two intermediate
	// corners to the high corner; w holds the four barycentric weights.
	i000 := Index3D(n, r0, g0, b0)
	i111 := Index3D(n, r1, g1, b1)
	var ia, ib int
	var w [4]float32
	if fr > fg {
		switch {
		case fg > fb:
			ia, ib = Index3D(n, r1, g0, b0), Index3D(n, r1, g1, b0)
			w = [4]float32{1 - fr, fr - fg, fg - fb, fb}
		case fr > fb:
			ia, ib = Index3D(n, r1, g0, b0), Index3D(n, r1, g0, b1)
			w = [4]float32{1 - fr, fr - fb, fb - fg, fg}
		default:
			ia, ib = Index3D(n, r0, g0, b1), Index3D(n, r1, g0, b1)
			w = [4]float32{1 - fb, fb - fr, fr - fg, fg}
		}
	} else {
		switch {
		case fb > fg:
			ia, ib = Index3D(n, r0, g0, b1), Index3D(n, r0, g1, b1)
			w = [4]float32{1 - fb, fb - fg, fg - fr, fr}
		case fb > fr:
			ia, ib = Index3D(n, r0, g1, b0), Index3D(n, r0, g1, b1)
			w = [4]float32{1 - fg, fg - fb, fb - fr, fr}
		default:
			ia, ib = Index3D(n, r0, g1, b0), Index3D(n, r1, g1, b0)
			w = [4]float32{1 - fg, fg - fr, fr - fb, fb}
		}
	}

	var out [3]float32
	for ch := range 3 {
		out[ch] = w[0]*t[i000+ch] + w[1]*t[ia+ch] + w[2]*t[ib+ch] + w[3]*t[i111+ch]
	}
	return out[0], out[1], out[2]
}
