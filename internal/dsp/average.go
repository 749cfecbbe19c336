package dsp

// Bi-prediction averaging. The operands are intermediate predictions at
// IFInternalPrec bits with IFInternalOffs removed; offset carries both the
// rounding half and the re-added internal offsets, so the kernels only add
// and shift.

// AddAvgParams returns the shift and offset that collapse the sum of two
// intermediate predictions to the output bit depth.
func AddAvgParams(bitDepth int) (shift uint, offset int) {
	shift = uint(max(2, IFInternalPrec-bitDepth)) + 1
	offset = (1 << (shift - 1)) + 2*IFInternalOffs
	return shift, offset
}

// WeightedAvgParams returns the shift and offset for a weighted average
// whose weights sum to 1<<log2WeightBase.
func WeightedAvgParams(bitDepth, log2WeightBase int) (shift uint, offset int) {
	shift = uint(max(2, IFInternalPrec-bitDepth) + log2WeightBase)
	offset = (1 << (shift - 1)) + (IFInternalOffs << log2WeightBase)
	return shift, offset
}

// AddAvgCore computes dst = clip((src1 + src2 + offset) >> shift).
func AddAvgCore[T Sample](src1 []T, src1Stride int, src2 []T, src2Stride int, dst []T, dstStride, width, height int, shift uint, offset int, clp ClipRange) {
	hi := clp.Max()
	for y := 0; y < height; y++ {
		a := src1[y*src1Stride : y*src1Stride+width]
		b := src2[y*src2Stride : y*src2Stride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := range d {
			d[x] = clipTo[T]((int(a[x])+int(b[x])+offset)>>shift, hi)
		}
	}
}

// AddAvgFlatCore is AddAvgCore over n contiguous samples.
func AddAvgFlatCore[T Sample](src1, src2, dst []T, n int, shift uint, offset int, clp ClipRange) {
	hi := clp.Max()
	a, b, d := src1[:n], src2[:n], dst[:n]
	for i := range d {
		d[i] = clipTo[T]((int(a[i])+int(b[i])+offset)>>shift, hi)
	}
}

// WeightedAvgCore computes dst = clip((w0*src1 + w1*src2 + offset) >> shift).
func WeightedAvgCore[T Sample](src1 []T, src1Stride int, src2 []T, src2Stride int, dst []T, dstStride, width, height int, w0, w1 int, shift uint, offset int, clp ClipRange) {
	hi := clp.Max()
	for y := 0; y < height; y++ {
		a := src1[y*src1Stride : y*src1Stride+width]
		b := src2[y*src2Stride : y*src2Stride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := range d {
			d[x] = clipTo[T]((int(a[x])*w0+int(b[x])*w1+offset)>>shift, hi)
		}
	}
}

// RoundGeoCore computes dst = clip((src + offset) >> shift) over n samples.
// Used to bring geometric-partition blends back to output precision.
func RoundGeoCore[T Sample](src, dst []T, n int, shift uint, offset int, clp ClipRange) {
	hi := clp.Max()
	s, d := src[:n], dst[:n]
	for i := range d {
		d[i] = clipTo[T]((int(s[i])+offset)>>shift, hi)
	}
}
