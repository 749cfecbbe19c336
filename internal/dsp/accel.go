package dsp

// Wide kernels: unrolled pure Go, eight samples per step over fixed-size
// array views, so the compiler drops per-sample bounds checks and lowers
// the clamps to conditional moves. There is no assembly here; the CPU feature
// check only decides whether the wider vector units make the unrolled form
// pay off. They must match the reference kernels bit for bit.

const lanes = 8

// clampPel clamps v to [0, hi] without branches.
func clampPel(v, hi int) Pel {
	return Pel(min(max(v, 0), hi))
}

func addAvgWide(src1 []Pel, src1Stride int, src2 []Pel, src2Stride int, dst []Pel, dstStride, width, height int, shift uint, offset int, clp ClipRange) {
	hi := clp.Max()
	for y := 0; y < height; y++ {
		a := src1[y*src1Stride : y*src1Stride+width]
		b := src2[y*src2Stride : y*src2Stride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := 0; x+lanes <= width; x += lanes {
			av, bv, dv := (*[lanes]Pel)(a[x:]), (*[lanes]Pel)(b[x:]), (*[lanes]Pel)(d[x:])
			for i := range dv {
				dv[i] = clampPel((int(av[i])+int(bv[i])+offset)>>shift, hi)
			}
		}
	}
}

func addAvgFlatWide(src1, src2, dst []Pel, n int, shift uint, offset int, clp ClipRange) {
	hi := clp.Max()
	a, b, d := src1[:n], src2[:n], dst[:n]
	x := 0
	for ; x+lanes <= n; x += lanes {
		av, bv, dv := (*[lanes]Pel)(a[x:]), (*[lanes]Pel)(b[x:]), (*[lanes]Pel)(d[x:])
		for i := range dv {
			dv[i] = clampPel((int(av[i])+int(bv[i])+offset)>>shift, hi)
		}
	}
	for ; x < n; x++ {
		d[x] = clampPel((int(a[x])+int(b[x])+offset)>>shift, hi)
	}
}

func recoWide(src1 []Pel, src1Stride int, src2 []Pel, src2Stride int, dst []Pel, dstStride, width, height int, clp ClipRange) {
	hi := clp.Max()
	for y := 0; y < height; y++ {
		a := src1[y*src1Stride : y*src1Stride+width]
		b := src2[y*src2Stride : y*src2Stride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := 0; x+lanes <= width; x += lanes {
			av, bv, dv := (*[lanes]Pel)(a[x:]), (*[lanes]Pel)(b[x:]), (*[lanes]Pel)(d[x:])
			for i := range dv {
				dv[i] = clampPel(int(av[i])+int(bv[i]), hi)
			}
		}
	}
}

func recoFlatWide(src1, src2, dst []Pel, n int, clp ClipRange) {
	hi := clp.Max()
	a, b, d := src1[:n], src2[:n], dst[:n]
	x := 0
	for ; x+lanes <= n; x += lanes {
		av, bv, dv := (*[lanes]Pel)(a[x:]), (*[lanes]Pel)(b[x:]), (*[lanes]Pel)(d[x:])
		for i := range dv {
			dv[i] = clampPel(int(av[i])+int(bv[i]), hi)
		}
	}
	for ; x < n; x++ {
		d[x] = clampPel(int(a[x])+int(b[x]), hi)
	}
}

func copyClipWide(src []Pel, srcStride int, dst []Pel, dstStride, width, height int, clp ClipRange) {
	hi := clp.Max()
	for y := 0; y < height; y++ {
		s := src[y*srcStride : y*srcStride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := 0; x+lanes <= width; x += lanes {
			sv, dv := (*[lanes]Pel)(s[x:]), (*[lanes]Pel)(d[x:])
			for i := range dv {
				dv[i] = clampPel(int(sv[i]), hi)
			}
		}
	}
}

func copyClipFlatWide(src, dst []Pel, n int, clp ClipRange) {
	hi := clp.Max()
	s, d := src[:n], dst[:n]
	x := 0
	for ; x+lanes <= n; x += lanes {
		sv, dv := (*[lanes]Pel)(s[x:]), (*[lanes]Pel)(d[x:])
		for i := range dv {
			dv[i] = clampPel(int(sv[i]), hi)
		}
	}
	for ; x < n; x++ {
		d[x] = clampPel(int(s[x]), hi)
	}
}

func removeHighFreqWide(dst []Pel, dstStride int, src []Pel, srcStride, width, height int) {
	for y := 0; y < height; y++ {
		s := src[y*srcStride : y*srcStride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := 0; x+lanes <= width; x += lanes {
			sv, dv := (*[lanes]Pel)(s[x:]), (*[lanes]Pel)(d[x:])
			for i := range dv {
				dv[i] = 2*dv[i] - sv[i]
			}
		}
	}
}

func linTfWide(src []Pel, srcStride int, dst []Pel, dstStride, width, height int, scale int, shift uint, offset int, clp ClipRange, clip bool) {
	hi := clp.Max()
	round := 0
	if shift > 0 {
		round = 1 << (shift - 1)
	}
	for y := 0; y < height; y++ {
		s := src[y*srcStride : y*srcStride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := 0; x+lanes <= width; x += lanes {
			sv, dv := (*[lanes]Pel)(s[x:]), (*[lanes]Pel)(d[x:])
			if clip {
				for i := range dv {
					dv[i] = clampPel(((scale*int(sv[i])+round)>>shift)+offset, hi)
				}
				continue
			}
			for i := range dv {
				dv[i] = Pel(((scale*int(sv[i]) + round) >> shift) + offset)
			}
		}
	}
}

func transpose4x4Wide(src []Pel, srcStride int, dst []Pel, dstStride int) {
	var r [4]*[4]Pel
	for i := range r {
		r[i] = (*[4]Pel)(src[i*srcStride:])
	}
	for j := 0; j < 4; j++ {
		d := (*[4]Pel)(dst[j*dstStride:])
		d[0], d[1], d[2], d[3] = r[0][j], r[1][j], r[2][j], r[3][j]
	}
}

func transpose8x8Wide(src []Pel, srcStride int, dst []Pel, dstStride int) {
	var r [8]*[8]Pel
	for i := range r {
		r[i] = (*[8]Pel)(src[i*srcStride:])
	}
	for j := 0; j < 8; j++ {
		d := (*[8]Pel)(dst[j*dstStride:])
		d[0], d[1], d[2], d[3] = r[0][j], r[1][j], r[2][j], r[3][j]
		d[4], d[5], d[6], d[7] = r[4][j], r[5][j], r[6][j], r[7][j]
	}
}

// sseWide accumulates eight squared differences per step, as the unrolled
// 16x16 distortion loops do.
func sseWide(a []Pel, aStride int, b []Pel, bStride, width, height int) uint64 {
	var sse uint64
	for y := 0; y < height; y++ {
		ra := a[y*aStride : y*aStride+width]
		rb := b[y*bStride : y*bStride+width]
		for x := 0; x+lanes <= width; x += lanes {
			av, bv := (*[lanes]Pel)(ra[x:]), (*[lanes]Pel)(rb[x:])
			d0 := int64(av[0]) - int64(bv[0])
			d1 := int64(av[1]) - int64(bv[1])
			d2 := int64(av[2]) - int64(bv[2])
			d3 := int64(av[3]) - int64(bv[3])
			d4 := int64(av[4]) - int64(bv[4])
			d5 := int64(av[5]) - int64(bv[5])
			d6 := int64(av[6]) - int64(bv[6])
			d7 := int64(av[7]) - int64(bv[7])
			sse += uint64(d0*d0 + d1*d1 + d2*d2 + d3*d3 +
				d4*d4 + d5*d5 + d6*d6 + d7*d7)
		}
	}
	return sse
}

// installWide replaces the 8-multiple slots with the unrolled Go kernels.
// With wide16 set the 16-multiple average slot is replaced too. The backend
// is named "wide-go" so logs do not suggest SIMD code.
func installWide(o *Ops, wide16 bool) {
	o.Backend = "wide-go"

	o.AddAvg8 = addAvgWide
	o.AddAvgFlat = addAvgFlatWide
	if wide16 {
		o.AddAvg16 = addAvgWide
	}

	o.Reco8 = recoWide
	o.RecoFlat = recoFlatWide

	o.CopyClip8 = copyClipWide
	o.CopyClipFlat = copyClipFlatWide

	o.LinTf8 = linTfWide
	o.RemoveHighFreq8 = removeHighFreqWide

	o.Transpose4x4 = transpose4x4Wide
	o.Transpose8x8 = transpose8x8Wide

	o.SSE8 = sseWide
}
