package pelbuf

// YUVPlane describes one caller-owned plane at the boundary of the package:
// Width x Height samples starting at Buf[Off], rows Stride samples apart.
type YUVPlane struct {
	Buf    []Pel
	Off    int
	Stride int
	Width  int
	Height int
}

// Bound reports whether p refers to memory.
func (p YUVPlane) Bound() bool { return p.Buf != nil }

// View returns p as a sample view aliasing its memory.
func (p YUVPlane) View() PelBuf {
	return PelBuf{AreaBuf[Pel]{Buf: p.Buf, Off: p.Off, Stride: p.Stride, Width: p.Width, Height: p.Height}}
}

// YUVBuffer is the plane array exchanged with the rest of the pipeline.
// Chroma planes are unbound for monochrome content.
type YUVBuffer struct {
	Planes [MaxNumComponents]YUVPlane
}

// NewYUVBuffer allocates packed planes for a cf picture of luma size
// w x h.
func NewYUVBuffer(cf ChromaFormat, w, h int) *YUVBuffer {
	check(cf.Valid(), "NewYUVBuffer", "invalid chroma format %d", int(cf))
	check(w > 0 && h > 0, "NewYUVBuffer", "invalid size %dx%d", w, h)
	y := &YUVBuffer{}
	for i := 0; i < cf.NumComponents(); i++ {
		comp := ComponentID(i)
		pw, ph := w>>cf.ScaleX(comp), h>>cf.ScaleY(comp)
		y.Planes[i] = YUVPlane{Buf: make([]Pel, pw*ph), Stride: pw, Width: pw, Height: ph}
	}
	return y
}

// SetupUnitBuf binds dst to the planes of yuv without copying. dst must be
// empty and yuv must have a bound plane for every component of cf.
func SetupUnitBuf(yuv YUVBuffer, dst *UnitBuf, cf ChromaFormat) {
	check(dst.Empty(), "SetupUnitBuf", "unit buffer already in use")
	check(cf.Valid(), "SetupUnitBuf", "invalid chroma format %d", int(cf))
	n := cf.NumComponents()
	bufs := make([]PelBuf, n)
	for i := 0; i < n; i++ {
		p := yuv.Planes[i]
		check(p.Bound(), "SetupUnitBuf", "%v plane not set up", ComponentID(i))
		bufs[i] = p.View()
	}
	dst.ChromaFormat = cf
	dst.Bufs = bufs
}

// SetupYUVBuffer exposes the planes of src through yuv without copying.
// An enabled conformance window moves each plane origin inward by the left
// and top offsets and shrinks the plane by the window, all scaled to the
// component. The window must leave samples in every plane. yuv must not
// have any bound plane; on a panic yuv is left unchanged.
func SetupYUVBuffer(src UnitBuf, yuv *YUVBuffer, win *Window) {
	var cw Window
	if win != nil && win.Enabled {
		cw = *win
		check(cw.Left >= 0 && cw.Right >= 0 && cw.Top >= 0 && cw.Bottom >= 0,
			"SetupYUVBuffer", "negative window offset %+v", cw)
	}
	cf := src.ChromaFormat
	var planes [MaxNumComponents]YUVPlane
	for i, area := range src.Bufs {
		comp := ComponentID(i)
		sx, sy := cf.ScaleX(comp), cf.ScaleY(comp)
		check(!yuv.Planes[i].Bound(), "SetupYUVBuffer", "%v plane already in use", comp)
		w := (area.Width<<sx - (cw.Left + cw.Right)) >> sx
		h := (area.Height<<sy - (cw.Top + cw.Bottom)) >> sy
		check(w > 0 && h > 0, "SetupYUVBuffer",
			"window %d+%d x %d+%d leaves no %v samples in %dx%d", cw.Left, cw.Right, cw.Top, cw.Bottom,
			comp, area.Width, area.Height)
		planes[i] = YUVPlane{
			Buf:    area.Buf,
			Off:    area.Index(cw.Left>>sx, cw.Top>>sy),
			Stride: area.Stride,
			Width:  w,
			Height: h,
		}
	}
	copy(yuv.Planes[:len(src.Bufs)], planes[:len(src.Bufs)])
}

// CopyToYUV copies the planes of src into the bound planes of yuv, which
// must have the same sizes.
func CopyToYUV(src UnitBuf, yuv YUVBuffer) {
	for i, b := range src.Bufs {
		p := yuv.Planes[i]
		check(p.Bound(), "CopyToYUV", "%v plane not set up", ComponentID(i))
		p.View().CopyFrom(b)
	}
}

// CopyFromYUV copies the bound planes of yuv into dst, which must have the
// same sizes.
func CopyFromYUV(dst UnitBuf, yuv YUVBuffer) {
	for i, b := range dst.Bufs {
		p := yuv.Planes[i]
		check(p.Bound(), "CopyFromYUV", "%v plane not set up", ComponentID(i))
		b.CopyFrom(p.View())
	}
}
