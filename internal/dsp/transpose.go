package dsp

// TransposeCore writes the transpose of an n x n block:
// dst[j*dstStride+i] = src[i*srcStride+j].
func TransposeCore[T any](n int, src []T, srcStride int, dst []T, dstStride int) {
	for i := 0; i < n; i++ {
		s := src[i*srcStride : i*srcStride+n]
		for j, v := range s {
			dst[j*dstStride+i] = v
		}
	}
}

func transpose4x4(src []Pel, srcStride int, dst []Pel, dstStride int) {
	TransposeCore(4, src, srcStride, dst, dstStride)
}

func transpose8x8(src []Pel, srcStride int, dst []Pel, dstStride int) {
	TransposeCore(8, src, srcStride, dst, dstStride)
}
