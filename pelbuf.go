package pelbuf

import (
	"math"
	"unsafe"

	"github.com/deepteams/pelbuf/internal/dsp"
	"github.com/deepteams/pelbuf/internal/pool"
)

// PelBuf is a view over picture samples. Its methods reach the kernels
// through the active dispatch table and pick the kernel variant from the
// region shape: one flat run when every operand is contiguous, otherwise a
// row kernel specialised for widths that are multiples of 16, 8 or 4, or
// the general one. Every variant produces identical output.
type PelBuf struct {
	AreaBuf[Pel]
}

// NewPelBuf returns a w x h sample view starting at buf[0].
func NewPelBuf(buf []Pel, stride, w, h int) PelBuf {
	return PelBuf{NewAreaBuf(buf, stride, w, h)}
}

// SubBuf returns the w x h view at (x, y).
func (b PelBuf) SubBuf(x, y, w, h int) PelBuf {
	return PelBuf{b.AreaBuf.SubBuf(x, y, w, h)}
}

// SubArea returns the view of a, relative to the origin of b.
func (b PelBuf) SubArea(a Area) PelBuf { return b.SubBuf(a.X, a.Y, a.Width, a.Height) }

// Bi-prediction weight table. The weight of the second operand is
// BCWWeights[idx] out of 1<<BCWLog2WeightBase; BCWDefaultIdx is the even
// blend.
var BCWWeights = [...]int{-2, 3, 4, 5, 10}

const (
	BCWLog2WeightBase = 3
	BCWDefaultIdx     = 2
)

func (b PelBuf) sameSize(op string, o PelBuf) {
	check(b.SameSize(o.AreaBuf), op, "size mismatch %dx%d vs %dx%d", b.Width, b.Height, o.Width, o.Height)
}

// coalesce returns the row length and row count to use when the rows of
// every operand are contiguous: up to four rows are merged into one.
func coalesce(width, height int) (w, h, k int) {
	switch {
	case height%4 == 0:
		return width * 4, height / 4, 4
	case height%2 == 0:
		return width * 2, height / 2, 2
	}
	return width, height, 1
}

// Reconstruct sets b = clip(pred + resi).
func (b PelBuf) Reconstruct(pred, resi PelBuf, clp ClipRange) {
	b.sameSize("Reconstruct", pred)
	b.sameSize("Reconstruct", resi)
	if b.Empty() {
		return
	}
	k := kernels()
	d, p, r := b.Data(), pred.Data(), resi.Data()
	if b.IsContiguous() && pred.IsContiguous() && resi.IsContiguous() {
		k.RecoFlat(p, r, d, b.Width*b.Height, clp)
		return
	}
	fn := k.Reco
	switch {
	case b.Width&7 == 0:
		fn = k.Reco8
	case b.Width&3 == 0:
		fn = k.Reco4
	}
	fn(p, pred.Stride, r, resi.Stride, d, b.Stride, b.Width, b.Height, clp)
}

// AddAvg sets b to the rounded average of two intermediate predictions,
// collapsed to the output bit depth of clp.
func (b PelBuf) AddAvg(src1, src2 PelBuf, clp ClipRange) {
	b.sameSize("AddAvg", src1)
	b.sameSize("AddAvg", src2)
	if b.Empty() {
		return
	}
	shift, offset := dsp.AddAvgParams(clp.BitDepth)
	k := kernels()
	d, s1, s2 := b.Data(), src1.Data(), src2.Data()
	if b.IsContiguous() && src1.IsContiguous() && src2.IsContiguous() {
		k.AddAvgFlat(s1, s2, d, b.Width*b.Height, shift, offset, clp)
		return
	}
	fn := k.AddAvg
	switch {
	case b.Width&15 == 0:
		fn = k.AddAvg16
	case b.Width&7 == 0:
		fn = k.AddAvg8
	case b.Width&3 == 0:
		fn = k.AddAvg4
	}
	fn(s1, src1.Stride, s2, src2.Stride, d, b.Stride, b.Width, b.Height, shift, offset, clp)
}

// AddWeightedAvg sets b to the weighted average of two intermediate
// predictions using bi-prediction weight index bcwIdx.
func (b PelBuf) AddWeightedAvg(src1, src2 PelBuf, clp ClipRange, bcwIdx int) {
	check(bcwIdx >= 0 && bcwIdx < len(BCWWeights), "AddWeightedAvg", "weight index %d out of range", bcwIdx)
	b.sameSize("AddWeightedAvg", src1)
	b.sameSize("AddWeightedAvg", src2)
	if b.Empty() {
		return
	}
	w1 := BCWWeights[bcwIdx]
	w0 := 1<<BCWLog2WeightBase - w1
	shift, offset := dsp.WeightedAvgParams(clp.BitDepth, BCWLog2WeightBase)
	w, h := b.Width, b.Height
	s1s, s2s, ds := src1.Stride, src2.Stride, b.Stride
	if b.IsContiguous() && src1.IsContiguous() && src2.IsContiguous() {
		w, h = w*h, 1
		s1s, s2s, ds = w, w, w
	}
	kernels().WeightedAvg(src1.Data(), s1s, src2.Data(), s2s, b.Data(), ds, w, h, w0, w1, shift, offset, clp)
}

// CopyClip sets b = clip(src).
func (b PelBuf) CopyClip(src PelBuf, clp ClipRange) {
	b.sameSize("CopyClip", src)
	if b.Empty() {
		return
	}
	k := kernels()
	if b.IsContiguous() && src.IsContiguous() {
		k.CopyClipFlat(src.Data(), b.Data(), b.Width*b.Height, clp)
		return
	}
	fn := k.CopyClip
	switch {
	case b.Width&7 == 0:
		fn = k.CopyClip8
	case b.Width&3 == 0:
		fn = k.CopyClip4
	}
	fn(src.Data(), src.Stride, b.Data(), b.Stride, b.Width, b.Height, clp)
}

// RoundToOutputBitdepth brings an intermediate-precision prediction in src
// to the output bit depth of clp, with rounding and clipping.
func (b PelBuf) RoundToOutputBitdepth(src PelBuf, clp ClipRange) {
	b.sameSize("RoundToOutputBitdepth", src)
	if b.Empty() {
		return
	}
	shift := uint(max(0, IFInternalPrec-clp.BitDepth))
	offset := IFInternalOffs
	if shift > 0 {
		offset += 1 << (shift - 1)
	}
	k := kernels()
	if b.IsContiguous() && src.IsContiguous() {
		k.RoundGeo(src.Data(), b.Data(), b.Width*b.Height, shift, offset, clp)
		return
	}
	for y := 0; y < b.Height; y++ {
		k.RoundGeo(src.Row(y), b.Row(y), b.Width, shift, offset, clp)
	}
}

// RemoveHighFreq sets b = 2*b - other, clipped to clp when clip is set.
func (b PelBuf) RemoveHighFreq(other PelBuf, clip bool, clp ClipRange) {
	b.sameSize("RemoveHighFreq", other)
	if b.Empty() {
		return
	}
	k := kernels()
	w, h := b.Width, b.Height
	ds, ss := b.Stride, other.Stride
	if b.IsContiguous() && other.IsContiguous() {
		var n int
		w, h, n = coalesce(w, h)
		ds, ss = ds*n, ss*n
	}
	fn := k.RemoveHighFreq
	switch {
	case w&7 == 0:
		fn = k.RemoveHighFreq8
	case w&3 == 0:
		fn = k.RemoveHighFreq4
	}
	fn(b.Data(), ds, other.Data(), ss, w, h)
	if clip {
		b.CopyClip(b, clp)
	}
}

// LinearTransform sets b = RoundShift(scale*b, shift) + offset in place,
// clipped to clp when clip is set.
func (b PelBuf) LinearTransform(scale int, shift uint, offset int, clip bool, clp ClipRange) {
	if b.Empty() {
		return
	}
	k := kernels()
	w, h, stride := b.Width, b.Height, b.Stride
	if b.IsContiguous() {
		var n int
		w, h, n = coalesce(w, h)
		stride *= n
	}
	fn := k.LinTf
	switch {
	case w&7 == 0:
		fn = k.LinTf8
	case w&3 == 0:
		fn = k.LinTf4
	}
	d := b.Data()
	fn(d, stride, d, stride, w, h, scale, shift, offset, clp, clip)
}

// ScaleSignal applies chroma residual scaling in place. The forward
// direction divides by scale/2^CScaleFPPrec with rounding and clamps to
// [-max, max] of clp; the inverse direction multiplies back. Pel is 16 bits
// wide, so the inverse result is clamped to the int16 range before it is
// stored.
func (b PelBuf) ScaleSignal(scale int, forward bool, clp ClipRange) {
	maxAbs := clp.Max()
	if forward {
		check(b.Width != 1, "ScaleSignal", "forward scaling of width-1 blocks is not supported")
		check(scale > 0, "ScaleSignal", "scale %d must be positive", scale)
		for y := 0; y < b.Height; y++ {
			row := b.Row(y)
			for x, v := range row {
				sign, abs := 1, int(v)
				if abs < 0 {
					sign, abs = -1, -abs
				}
				q := ((abs << CScaleFPPrec) + scale>>1) / scale
				row[x] = Pel(dsp.Clip3(-maxAbs, maxAbs, sign*q))
			}
		}
		return
	}
	for y := 0; y < b.Height; y++ {
		row := b.Row(y)
		for x, v := range row {
			val := dsp.Clip3(-maxAbs-1, maxAbs, int(v))
			sign := 1
			if v < 0 {
				sign = -1
			}
			val = sign * ((sign*val*scale + 1<<(CScaleFPPrec-1)) >> CScaleFPPrec)
			row[x] = Pel(dsp.Clip3(math.MinInt16, math.MaxInt16, val))
		}
	}
}

// RspSignal remaps b through lut in place.
func (b PelBuf) RspSignal(lut []Pel) { b.RspSignalFrom(b, lut) }

// RspSignalFrom sets b = lut[src].
func (b PelBuf) RspSignalFrom(src PelBuf, lut []Pel) {
	b.sameSize("RspSignal", src)
	if b.Empty() {
		return
	}
	kernels().ApplyLut(src.Data(), src.Stride, b.Data(), b.Stride, b.Width, b.Height, lut)
}

// TransposedFrom sets b to the transpose of src. b must be src.Height wide
// and src.Width high. Regions tiled by 8 or 4 go through the block
// transpose kernels. b and src may share memory; src is then staged in a
// scratch buffer first.
func (b PelBuf) TransposedFrom(src PelBuf) {
	check(b.Width == src.Height && b.Height == src.Width, "TransposedFrom",
		"incompatible size %dx%d for transpose of %dx%d", b.Width, b.Height, src.Width, src.Height)
	if b.Empty() {
		return
	}
	if unsafe.SliceData(b.Buf) == unsafe.SliceData(src.Buf) {
		tmp := pool.GetPels(src.Width * src.Height)
		defer pool.PutPels(tmp)
		staged := NewPelBuf(tmp, src.Width, src.Width, src.Height)
		staged.CopyFrom(src)
		src = staged
	}
	k := kernels()
	n, fn := 0, dsp.TransposeFunc(nil)
	switch {
	case b.Width&7 == 0 && b.Height&7 == 0:
		n, fn = 8, k.Transpose8x8
	case b.Width&3 == 0 && b.Height&3 == 0:
		n, fn = 4, k.Transpose4x4
	}
	if fn == nil {
		for y := 0; y < src.Height; y++ {
			for x := 0; x < src.Width; x++ {
				b.Set(y, x, src.At(x, y))
			}
		}
		return
	}
	for y := 0; y < src.Height; y += n {
		for x := 0; x < src.Width; x += n {
			fn(src.Buf[src.Index(x, y):], src.Stride, b.Buf[b.Index(y, x):], b.Stride)
		}
	}
}

// WeightCiip blends the intra prediction into the inter prediction held in
// b. numIntra counts the intra-coded neighbours: 1 gives an even blend, 0
// favours the inter side, more favours the intra side. Both views must be
// contiguous.
func (b PelBuf) WeightCiip(intra PelBuf, numIntra int) {
	check(b.Width > 2, "WeightCiip", "width %d is not supported", b.Width)
	b.sameSize("WeightCiip", intra)
	check(b.IsContiguous() && intra.IsContiguous(), "WeightCiip", "views must be contiguous")
	kernels().WeightCiip(b.Data(), intra.Data(), b.Width*b.Height, numIntra)
}

// Subtract sets b -= other without clipping.
func (b PelBuf) Subtract(other PelBuf) { Subtract(b.AreaBuf, other.AreaBuf) }

// CopyFrom copies the samples of src, which must have the same size.
func (b PelBuf) CopyFrom(src PelBuf) {
	b.sameSize("CopyFrom", src)
	if b.Empty() {
		return
	}
	kernels().CopyBuffer(src.Data(), src.Stride, b.Data(), b.Stride, b.Width, b.Height)
}

// ExtendBorderPel replicates the edge samples of b into a border of margin
// samples on every side. The border must lie inside the backing memory,
// which is the case for views of a Storage created with at least that
// margin.
func (b PelBuf) ExtendBorderPel(margin int) {
	if margin <= 0 || b.Empty() {
		return
	}
	checkd(b.Off-margin*b.Stride-margin >= 0 &&
		b.Off+(b.Height-1+margin)*b.Stride+b.Width+margin <= len(b.Buf),
		"ExtendBorderPel", "margin %d exceeds the backing memory", margin)
	kernels().Padding(b.Buf, b.Off, b.Stride, b.Width, b.Height, margin)
}

// ExtendBorderPelTop replicates the first row of columns [x, x+size) into
// the margin rows above b.
func (b PelBuf) ExtendBorderPelTop(x, size, margin int) {
	b.checkBorderRun("ExtendBorderPelTop", x, size, margin)
	src := b.Index(x, 0)
	for i := 1; i <= margin; i++ {
		dst := src - i*b.Stride
		copy(b.Buf[dst:dst+size], b.Buf[src:src+size])
	}
}

// ExtendBorderPelBottom replicates the last row of columns [x, x+size)
// into the margin rows below b.
func (b PelBuf) ExtendBorderPelBottom(x, size, margin int) {
	b.checkBorderRun("ExtendBorderPelBottom", x, size, margin)
	src := b.Index(x, b.Height-1)
	for i := 1; i <= margin; i++ {
		dst := src + i*b.Stride
		copy(b.Buf[dst:dst+size], b.Buf[src:src+size])
	}
}

func (b PelBuf) checkBorderRun(op string, x, size, margin int) {
	checkd(b.borderRunFits(x, size, margin), op,
		"run of %d at column %d with margin %d exceeds the backing memory", size, x, margin)
}

// borderRunFits reports whether margin rows of columns [x, x+size) above
// and below b lie inside the backing memory.
func (b PelBuf) borderRunFits(x, size, margin int) bool {
	return size >= 0 && margin >= 0 && x+size <= b.Stride &&
		b.Off+x-margin*b.Stride >= 0 &&
		b.Off+(b.Height-1+margin)*b.Stride+x+size <= len(b.Buf)
}

// SSE returns the sum of squared differences between b and other.
func (b PelBuf) SSE(other PelBuf) uint64 {
	b.sameSize("SSE", other)
	if b.Empty() {
		return 0
	}
	k := kernels()
	fn := k.SSE
	if b.Width&7 == 0 {
		fn = k.SSE8
	}
	return fn(b.Data(), b.Stride, other.Data(), other.Stride, b.Width, b.Height)
}

// PSNR returns the peak signal-to-noise ratio of b against ref in dB at the
// bit depth of clp. Identical views report 99.
func (b PelBuf) PSNR(ref PelBuf, clp ClipRange) float64 {
	return dsp.PSNRFromSSE(b.SSE(ref), b.Width*b.Height, clp.BitDepth)
}
