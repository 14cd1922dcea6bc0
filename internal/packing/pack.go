package packing

// Pack reads n pixels starting at pixel index start (row-major) into dst as
// interleaved RGBA floats. dst must hold at least 4*n values. Images
// without alpha get an alpha of 1.
func Pack(d *GenericImageDesc, dst []float32, start, n int) {
	if n <= 0 {
		return
	}
	if d.floats != nil {
		copy(dst[:4*n], d.floats[4*start:4*(start+n)])
		return
	}

	c := d.conv
	size := c.Size()
	hasAlpha := d.HasAlpha()
	x, y := start%d.Width, start/d.Width
	for i := range n {
		base := y*d.YStride + x*d.XStride
		for ch := range 3 {
			p := &d.Channels[ch]
			o := p.Offset + base
			dst[4*i+ch] = c.Read(p.Data[o : o+size])
		}
		if hasAlpha {
			p := &d.Channels[3]
			o := p.Offset + base
			dst[4*i+3] = c.Read(p.Data[o : o+size])
		} else {
			dst[4*i+3] = 1
		}

		x++
		if x == d.Width {
			x = 0
			y++
		}
	}
}

// Unpack writes n pixels from src back to the image starting at pixel
// index start. Integer destinations are rounded and clamped; the alpha of
// images without an alpha channel is dropped.
func Unpack(d *GenericImageDesc, src []float32, start, n int) {
	if n <= 0 {
		return
	}
	if d.floats != nil {
		dst := d.floats[4*start : 4*(start+n)]
		if &dst[0] != &src[0] {
			copy(dst, src[:4*n])
		}
		return
	}

	c := d.conv
	size := c.Size()
	hasAlpha := d.HasAlpha()
	x, y := start%d.Width, start/d.Width
	for i := range n {
		base := y*d.YStride + x*d.XStride
		for ch := range 3 {
			p := &d.Channels[ch]
			o := p.Offset + base
			c.Write(p.Data[o:o+size], src[4*i+ch])
		}
		if hasAlpha {
			p := &d.Channels[3]
			o := p.Offset + base
			c.Write(p.Data[o:o+size], src[4*i+3])
		}

		x++
		if x == d.Width {
			x = 0
			y++
		}
	}
}

// Block returns the caller's memory for pixels [start, start+n) when the
// image has a float view, letting renderers work in place without a copy.
func Block(d *GenericImageDesc, start, n int) ([]float32, bool) {
	if d.floats == nil {
		return nil, false
	}
	return d.floats[4*start : 4*(start+n)], true
}
