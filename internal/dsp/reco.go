package dsp

// RecoCore computes dst = clip(src1 + src2): prediction plus residual.
func RecoCore[T Sample](src1 []T, src1Stride int, src2 []T, src2Stride int, dst []T, dstStride, width, height int, clp ClipRange) {
	hi := clp.Max()
	for y := 0; y < height; y++ {
		a := src1[y*src1Stride : y*src1Stride+width]
		b := src2[y*src2Stride : y*src2Stride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := range d {
			d[x] = clipTo[T](int(a[x])+int(b[x]), hi)
		}
	}
}

// RecoFlatCore is RecoCore over n contiguous samples.
func RecoFlatCore[T Sample](src1, src2, dst []T, n int, clp ClipRange) {
	hi := clp.Max()
	a, b, d := src1[:n], src2[:n], dst[:n]
	for i := range d {
		d[i] = clipTo[T](int(a[i])+int(b[i]), hi)
	}
}

// CopyClipCore computes dst = clip(src).
func CopyClipCore[T Sample](src []T, srcStride int, dst []T, dstStride, width, height int, clp ClipRange) {
	hi := clp.Max()
	for y := 0; y < height; y++ {
		s := src[y*srcStride : y*srcStride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := range d {
			d[x] = clipTo[T](int(s[x]), hi)
		}
	}
}

// CopyClipFlatCore is CopyClipCore over n contiguous samples.
func CopyClipFlatCore[T Sample](src, dst []T, n int, clp ClipRange) {
	hi := clp.Max()
	s, d := src[:n], dst[:n]
	for i := range d {
		d[i] = clipTo[T](int(s[i]), hi)
	}
}

// LinTfCore computes dst = RoundShift(scale*src, shift) + offset, clipped to
// the range when clip is set.
func LinTfCore[T Sample](src []T, srcStride int, dst []T, dstStride, width, height int, scale int, shift uint, offset int, clp ClipRange, clip bool) {
	hi := clp.Max()
	for y := 0; y < height; y++ {
		s := src[y*srcStride : y*srcStride+width]
		d := dst[y*dstStride : y*dstStride+width]
		if clip {
			for x := range d {
				d[x] = clipTo[T](RoundShift(scale*int(s[x]), shift)+offset, hi)
			}
			continue
		}
		for x := range d {
			d[x] = T(RoundShift(scale*int(s[x]), shift) + offset)
		}
	}
}

// RemoveHighFreqCore computes dst = 2*dst - src in place.
func RemoveHighFreqCore[T Sample](dst []T, dstStride int, src []T, srcStride, width, height int) {
	for y := 0; y < height; y++ {
		s := src[y*srcStride : y*srcStride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := range d {
			d[x] = 2*d[x] - s[x]
		}
	}
}

// applyLutCore computes dst = lut[src]. Source samples must be valid table
// indices.
func applyLutCore(src []Pel, srcStride int, dst []Pel, dstStride, width, height int, lut []Pel) {
	for y := 0; y < height; y++ {
		s := src[y*srcStride : y*srcStride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := range d {
			d[x] = lut[s[x]]
		}
	}
}

// weightCiipCore blends the inter prediction in res with the intra
// prediction in src. numIntra == 1 is an even blend; otherwise the operand
// selected by numIntra (src when non-zero) gets weight 3 of 4.
func weightCiipCore(res, src []Pel, n int, numIntra int) {
	r, s := res[:n], src[:n]
	if numIntra == 1 {
		for i := range r {
			r[i] = Pel((int(r[i]) + int(s[i]) + 1) >> 1)
		}
		return
	}
	if numIntra != 0 {
		for i := range r {
			r[i] = Pel((int(r[i]) + 3*int(s[i]) + 2) >> 2)
		}
		return
	}
	for i := range r {
		r[i] = Pel((int(s[i]) + 3*int(r[i]) + 2) >> 2)
	}
}
