package dsp

import "math"

// SSECore returns the sum of squared differences of two width x height
// blocks.
func SSECore[T Sample](a []T, aStride int, b []T, bStride, width, height int) uint64 {
	var sse uint64
	for y := 0; y < height; y++ {
		ra := a[y*aStride : y*aStride+width]
		rb := b[y*bStride : y*bStride+width]
		for x := range ra {
			d := int64(ra[x]) - int64(rb[x])
			sse += uint64(d * d)
		}
	}
	return sse
}

// PSNRFromSSE converts a sum of squared errors over count samples of the
// given bit depth to a peak signal-to-noise ratio in dB. Identical blocks
// report 99.
func PSNRFromSSE(sse uint64, count, bitDepth int) float64 {
	if sse == 0 || count == 0 {
		return 99.0 // perfect
	}
	peak := float64(int(1)<<bitDepth - 1)
	mse := float64(sse) / float64(count)
	return 10.0 * math.Log10(peak*peak/mse)
}
