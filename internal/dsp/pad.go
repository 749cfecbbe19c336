package dsp

// PaddingCore replicates the outermost columns of a width x height region
// padSize times to the left and right, then replicates the first and last
// (already widened) rows padSize times above and below. off is the index of
// the region origin in buf; the border must lie inside buf.
func PaddingCore[T any](buf []T, off, stride, width, height, padSize int) {
	for y := 0; y < height; y++ {
		row := off + y*stride
		left, right := buf[row], buf[row+width-1]
		l := buf[row-padSize : row]
		for i := range l {
			l[i] = left
		}
		r := buf[row+width : row+width+padSize]
		for i := range r {
			r[i] = right
		}
	}

	n := width + 2*padSize
	top := off - padSize
	bottom := off + (height-1)*stride - padSize
	for i := 1; i <= padSize; i++ {
		copy(buf[top-i*stride:top-i*stride+n], buf[top:top+n])
		copy(buf[bottom+i*stride:bottom+i*stride+n], buf[bottom:bottom+n])
	}
}

// CopyBlock copies a width x height block row by row without interpreting
// the samples.
func CopyBlock[T any](src []T, srcStride int, dst []T, dstStride, width, height int) {
	if srcStride == width && dstStride == width {
		copy(dst[:width*height], src[:width*height])
		return
	}
	for y := 0; y < height; y++ {
		copy(dst[y*dstStride:y*dstStride+width], src[y*srcStride:y*srcStride+width])
	}
}

// FillMap sets every element of a width x height region to val. A region
// whose stride equals its width is filled as a single run.
func FillMap[T any](m []T, stride, width, height int, val T) {
	if width == stride {
		run := m[:width*height]
		for i := range run {
			run[i] = val
		}
		return
	}
	for y := 0; y < height; y++ {
		row := m[y*stride : y*stride+width]
		for i := range row {
			row[i] = val
		}
	}
}
