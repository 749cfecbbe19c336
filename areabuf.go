package pelbuf

import "github.com/deepteams/pelbuf/internal/dsp"

// AreaBuf is a non-owning rectangular view over sample memory. Element
// (x, y) lives at Buf[Off+y*Stride+x]. Because Off indexes into Buf, reads
// to the left of or above the origin (into a storage margin) stay inside the
// backing slice. The view keeps Buf reachable but does not own it: the
// samples are managed by whoever allocated them.
type AreaBuf[T any] struct {
	Buf    []T
	Off    int
	Stride int
	Width  int
	Height int
}

// NewAreaBuf returns a view of w x h samples starting at buf[0].
func NewAreaBuf[T any](buf []T, stride, w, h int) AreaBuf[T] {
	return AreaBuf[T]{Buf: buf, Stride: stride, Width: w, Height: h}
}

// Index returns the position of (x, y) in Buf.
func (b AreaBuf[T]) Index(x, y int) int { return b.Off + y*b.Stride + x }

// At returns the sample at (x, y).
func (b AreaBuf[T]) At(x, y int) T { return b.Buf[b.Off+y*b.Stride+x] }

// Set stores v at (x, y).
func (b AreaBuf[T]) Set(x, y int, v T) { b.Buf[b.Off+y*b.Stride+x] = v }

// Row returns the Width samples of row y.
func (b AreaBuf[T]) Row(y int) []T {
	start := b.Off + y*b.Stride
	return b.Buf[start : start+b.Width]
}

// Data returns the backing memory from the origin on.
func (b AreaBuf[T]) Data() []T { return b.Buf[b.Off:] }

// Empty reports whether the view covers no samples.
func (b AreaBuf[T]) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// IsContiguous reports whether the rows are packed back to back, so the
// region can be processed as one run of Width*Height samples.
func (b AreaBuf[T]) IsContiguous() bool { return b.Stride == b.Width }

// SameSize reports whether b and o have the same width and height.
func (b AreaBuf[T]) SameSize(o AreaBuf[T]) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// SubBuf returns the w x h view at (x, y) relative to the origin of b.
func (b AreaBuf[T]) SubBuf(x, y, w, h int) AreaBuf[T] {
	checkd(x >= 0 && y >= 0 && x+w <= b.Width && y+h <= b.Height,
		"SubBuf", "sub-area %dx%d at (%d,%d) outside %dx%d view", w, h, x, y, b.Width, b.Height)
	return AreaBuf[T]{Buf: b.Buf, Off: b.Off + y*b.Stride + x, Stride: b.Stride, Width: w, Height: h}
}

// SubArea returns the view of a, relative to the origin of b.
func (b AreaBuf[T]) SubArea(a Area) AreaBuf[T] { return b.SubBuf(a.X, a.Y, a.Width, a.Height) }

// Fill sets every sample of the view to v.
func (b AreaBuf[T]) Fill(v T) {
	dsp.FillMap(b.Buf[b.Off:], b.Stride, b.Width, b.Height, v)
}

// CopyFrom copies the samples of src, which must have the same size.
func (b AreaBuf[T]) CopyFrom(src AreaBuf[T]) {
	check(b.SameSize(src), "CopyFrom", "size mismatch %dx%d vs %dx%d", b.Width, b.Height, src.Width, src.Height)
	dsp.CopyBlock(src.Buf[src.Off:], src.Stride, b.Buf[b.Off:], b.Stride, b.Width, b.Height)
}

// Sample is the set of integer element types the generic arithmetic
// helpers accept.
type Sample = dsp.Sample

// Add computes dst += other elementwise, without clipping.
func Add[T Sample](dst, other AreaBuf[T]) {
	check(dst.SameSize(other), "Add", "size mismatch %dx%d vs %dx%d", dst.Width, dst.Height, other.Width, other.Height)
	for y := 0; y < dst.Height; y++ {
		d, o := dst.Row(y), other.Row(y)
		for x := range d {
			d[x] += o[x]
		}
	}
}

// Subtract computes dst -= other elementwise, without clipping.
func Subtract[T Sample](dst, other AreaBuf[T]) {
	check(dst.SameSize(other), "Subtract", "size mismatch %dx%d vs %dx%d", dst.Width, dst.Height, other.Width, other.Height)
	for y := 0; y < dst.Height; y++ {
		d, o := dst.Row(y), other.Row(y)
		for x := range d {
			d[x] -= o[x]
		}
	}
}

// Clip clamps every element of dst to [lo, hi] in place.
func Clip[T Sample](dst AreaBuf[T], lo, hi T) {
	for y := 0; y < dst.Height; y++ {
		d := dst.Row(y)
		for x := range d {
			d[x] = min(max(d[x], lo), hi)
		}
	}
}

// HandleBuf is a 2-D map of handle-sized values (indices or identifiers of
// per-block side information), filled through the dispatch table.
type HandleBuf struct {
	AreaBuf[uintptr]
}

// NewHandleBuf returns a w x h handle map backed by m.
func NewHandleBuf(m []uintptr, stride, w, h int) HandleBuf {
	return HandleBuf{NewAreaBuf(m, stride, w, h)}
}

// Fill sets every handle of the map to v.
func (b HandleBuf) Fill(v uintptr) {
	kernels().FillHandles(b.Buf[b.Off:], b.Stride, b.Width, b.Height, v)
}

// SubBuf returns the w x h handle map at (x, y).
func (b HandleBuf) SubBuf(x, y, w, h int) HandleBuf {
	return HandleBuf{b.AreaBuf.SubBuf(x, y, w, h)}
}
