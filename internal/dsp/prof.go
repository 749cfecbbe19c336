package dsp

// Gradient extraction and per-sample refinement for optical-flow based
// prediction refinement (PROF) and bi-directional optical flow (BDOF).

// gradFilterCore computes horizontal and vertical first differences of a
// width x height source whose outermost ring is a BDOFExtendSize border.
// Gradients of the interior are written one sample in from the top-left of
// gradX/gradY. With pad set, the gradient border ring is filled by edge
// replication: left and right columns first, then whole top and bottom rows.
func gradFilterCore(src []Pel, srcStride, width, height, gradStride int, gradX, gradY []Pel, bitDepth int, pad bool) {
	shift := uint(max(6, bitDepth-6))
	innerW := width - 2*BDOFExtendSize
	innerH := height - 2*BDOFExtendSize

	for y := 0; y < innerH; y++ {
		s := (y+1)*srcStride + 1
		g := (y+1)*gradStride + 1
		for x := 0; x < innerW; x++ {
			gradY[g+x] = (src[s+x+srcStride] >> shift) - (src[s+x-srcStride] >> shift)
			gradX[g+x] = (src[s+x+1] >> shift) - (src[s+x-1] >> shift)
		}
	}

	if !pad {
		return
	}

	for y := 0; y < innerH; y++ {
		g := (y+1)*gradStride + 1
		gradX[g-1] = gradX[g]
		gradX[g+innerW] = gradX[g+innerW-1]
		gradY[g-1] = gradY[g]
		gradY[g+innerW] = gradY[g+innerW-1]
	}

	first := gradStride
	last := innerH * gradStride
	copy(gradX[0:width], gradX[first:first+width])
	copy(gradX[last+gradStride:last+gradStride+width], gradX[last:last+width])
	copy(gradY[0:width], gradY[first:first+width])
	copy(gradY[last+gradStride:last+gradStride+width], gradY[last:last+width])
}

func gradFilterPad(src []Pel, srcStride, width, height, gradStride int, gradX, gradY []Pel, bitDepth int) {
	gradFilterCore(src, srcStride, width, height, gradStride, gradX, gradY, bitDepth, true)
}

func gradFilterNoPad(src []Pel, srcStride, width, height, gradStride int, gradX, gradY []Pel, bitDepth int) {
	gradFilterCore(src, srcStride, width, height, gradStride, gradX, gradY, bitDepth, false)
}

// PROFLimit returns the clamp bound L for the refinement offset:
// 1 << max(bitDepth+1, 13).
func PROFLimit(bitDepth int) int {
	return 1 << max(bitDepth+1, 13)
}

// applyPROFCore refines src with dI = clip(-L, L-1, dMvX*gradX + dMvY*gradY).
// For uni-prediction (bi false) the result is also rounded with offset and
// shift and clipped to the output range.
func applyPROFCore(dst []Pel, dstStride int, src []Pel, srcStride, width, height int, gradX, gradY []Pel, gradStride int, dMvX, dMvY []int, dMvStride int, bi bool, shift uint, offset int, clp ClipRange) {
	limit := PROFLimit(clp.BitDepth)
	hi := clp.Max()
	for y := 0; y < height; y++ {
		gx := gradX[y*gradStride : y*gradStride+width]
		gy := gradY[y*gradStride : y*gradStride+width]
		mx := dMvX[y*dMvStride : y*dMvStride+width]
		my := dMvY[y*dMvStride : y*dMvStride+width]
		s := src[y*srcStride : y*srcStride+width]
		d := dst[y*dstStride : y*dstStride+width]
		for x := range d {
			dI := Clip3(-limit, limit-1, mx[x]*int(gx[x])+my[x]*int(gy[x]))
			v := int(Pel(int(s[x]) + dI))
			if !bi {
				v = clipTo[int]((v+offset)>>shift, hi)
			}
			d[x] = Pel(v)
		}
	}
}
