package pelbuf

import (
	"context"
	"log/slog"

	"github.com/deepteams/pelbuf/internal/dsp"
	"github.com/deepteams/pelbuf/internal/pool"
)

// StorageOptions controls the extended plane layout of CreateWithOptions.
type StorageOptions struct {
	// MaxCUSize rounds the luma extent up to a multiple of this size before
	// the margin is added. 0 keeps the requested extent.
	MaxCUSize int

	// Margin is the border, in luma samples, allocated around every plane.
	Margin int

	// Alignment rounds the row stride up to a multiple of this many samples
	// and aligns the start of every plane allocation to Alignment samples.
	// It must be 0 or a power of two.
	Alignment int

	// ScaleChromaMargin scales the chroma margin down by the subsampling of
	// each axis.
	ScaleChromaMargin bool
}

// DefaultStorageOptions returns the layout used for full pictures: 128
// sample coding tree units, a 16 sample border for interpolation and
// 32 sample row alignment.
func DefaultStorageOptions() StorageOptions {
	return StorageOptions{
		MaxCUSize:         128,
		Margin:            16,
		Alignment:         dsp.MemoryAlignDefSize,
		ScaleChromaMargin: true,
	}
}

// Storage owns the sample memory of a multi-plane buffer. The embedded
// UnitBuf holds the content views; views handed out by the Get methods stay
// valid until the Storage is destroyed, swapped or re-created.
//
// Plane memory is never recycled. A view that outlives its Storage keeps the
// old samples alive and cannot alias the planes of a later Storage.
//
// The zero value is an empty Storage ready for Create.
type Storage struct {
	UnitBuf

	origin [MaxNumComponents][]Pel // allocation of each plane, start aligned
}

func (s *Storage) owns() bool {
	for _, r := range s.origin {
		if r != nil {
			return true
		}
	}
	return false
}

// Create lays out all planes of a cf picture of luma size area back to back
// in one allocation. Every plane is contiguous (stride equal to width).
func (s *Storage) Create(cf ChromaFormat, area Area) {
	check(s.Empty() && !s.owns(), "Create", "storage is already initialized")
	check(cf.Valid(), "Create", "invalid chroma format %d", int(cf))

	numComp := cf.NumComponents()
	var sizes [MaxNumComponents]int
	total := 0
	for i := 0; i < numComp; i++ {
		comp := ComponentID(i)
		w, h := area.Width>>cf.ScaleX(comp), area.Height>>cf.ScaleY(comp)
		check(w > 0 && h > 0, "Create", "zero area for %v: %dx%d", comp, w, h)
		sizes[i] = w * h
		total += sizes[i]
	}

	all := make([]Pel, total)
	s.ChromaFormat = cf
	s.Bufs = make([]PelBuf, numComp)
	start := 0
	for i := 0; i < numComp; i++ {
		comp := ComponentID(i)
		w, h := area.Width>>cf.ScaleX(comp), area.Height>>cf.ScaleY(comp)
		plane := all[start : start+sizes[i] : start+sizes[i]]
		s.origin[i] = plane
		s.Bufs[i] = NewPelBuf(plane, w, w, h)
		start += sizes[i]
	}
	s.logGeometry("pelbuf: storage created")
}

// CreateUnit is Create for the luma footprint of unit.
func (s *Storage) CreateUnit(unit UnitArea) {
	s.Create(unit.ChromaFormat, unit.Y().Area)
}

// CreateWithOptions lays out a cf picture of luma size area with one
// allocation per plane. The extent is rounded up to opts.MaxCUSize, a
// border of opts.Margin samples surrounds it, and rows are padded to
// opts.Alignment. The content views start inside the border and report
// the requested size, not the extended one.
func (s *Storage) CreateWithOptions(cf ChromaFormat, area Area, opts StorageOptions) {
	check(s.Empty() && !s.owns(), "CreateWithOptions", "storage is already initialized")
	check(cf.Valid(), "CreateWithOptions", "invalid chroma format %d", int(cf))
	check(opts.Alignment >= 0 && opts.Alignment&(opts.Alignment-1) == 0,
		"CreateWithOptions", "unsupported alignment %d", opts.Alignment)
	check(opts.Margin >= 0 && opts.MaxCUSize >= 0, "CreateWithOptions", "negative margin or block size")

	extW, extH := area.Width, area.Height
	if cu := opts.MaxCUSize; cu > 0 {
		extW = (extW + cu - 1) / cu * cu
		extH = (extH + cu - 1) / cu * cu
	}

	numComp := cf.NumComponents()
	bufs := make([]PelBuf, numComp)
	for i := 0; i < numComp; i++ {
		comp := ComponentID(i)
		sx, sy := cf.ScaleX(comp), cf.ScaleY(comp)
		mx, my := opts.Margin, opts.Margin
		if opts.ScaleChromaMargin {
			mx >>= sx
			my >>= sy
		}
		stride := extW>>sx + 2*mx
		rows := extH>>sy + 2*my
		if a := opts.Alignment; a > 0 {
			stride = (stride + a - 1) / a * a
		}
		w, h := area.Width>>sx, area.Height>>sy
		if w <= 0 || h <= 0 {
			s.release()
			check(false, "CreateWithOptions", "zero area for %v: %dx%d", comp, w, h)
		}

		aligned := pool.MakeAligned(stride*rows, opts.Alignment*2)
		s.origin[i] = aligned
		bufs[i] = PelBuf{AreaBuf[Pel]{
			Buf:    aligned,
			Off:    stride*my + mx,
			Stride: stride,
			Width:  w,
			Height: h,
		}}
	}
	s.ChromaFormat = cf
	s.Bufs = bufs
	s.logGeometry("pelbuf: storage created", slog.Int("margin", opts.Margin), slog.Int("alignment", opts.Alignment))
}

// CreateFromBuf adopts the views of buf without copying or owning the
// samples.
func (s *Storage) CreateFromBuf(buf UnitBuf) {
	check(s.Empty() && !s.owns(), "CreateFromBuf", "storage is already initialized")
	s.ChromaFormat = buf.ChromaFormat
	s.Bufs = append([]PelBuf(nil), buf.Bufs...)
}

// TakeOwnership moves the memory and views of other into s. Memory held by
// s is released and other is left empty.
func (s *Storage) TakeOwnership(other *Storage) {
	s.ChromaFormat = other.ChromaFormat
	s.Bufs = append(s.Bufs[:0:0], other.Bufs...)
	s.origin, other.origin = other.origin, s.origin
	other.Destroy()
}

// Swap exchanges the memory of s and other. Both must have the same chroma
// format and identical plane sizes and strides.
func (s *Storage) Swap(other *Storage) {
	check(s.ChromaFormat == other.ChromaFormat && len(s.Bufs) == len(other.Bufs),
		"Swap", "incompatible formats %v and %v", s.ChromaFormat, other.ChromaFormat)
	for i := range s.Bufs {
		a, b := &s.Bufs[i], &other.Bufs[i]
		check(a.SameSize(b.AreaBuf) && a.Stride == b.Stride, "Swap",
			"incompatible %v planes %dx%d/%d and %dx%d/%d",
			ComponentID(i), a.Width, a.Height, a.Stride, b.Width, b.Height, b.Stride)
	}
	for i := range s.Bufs {
		a, b := &s.Bufs[i], &other.Bufs[i]
		a.Buf, b.Buf = b.Buf, a.Buf
		a.Off, b.Off = b.Off, a.Off
		s.origin[i], other.origin[i] = other.origin[i], s.origin[i]
	}
}

// Destroy releases the memory owned by s and resets it to empty. Views
// taken from s must not be used afterwards. Destroy may be called more
// than once.
func (s *Storage) Destroy() {
	if s.owns() {
		s.logGeometry("pelbuf: storage released")
	}
	s.release()
	s.ChromaFormat = Chroma400
	s.Bufs = nil
}

func (s *Storage) release() {
	clear(s.origin[:])
}

// Origin returns the allocation backing comp, starting at the first
// allocated sample (margin included).
func (s *Storage) Origin(comp ComponentID) []Pel { return s.origin[comp] }

// GetBuf returns the content view of comp.
func (s *Storage) GetBuf(comp ComponentID) PelBuf { return s.Bufs[comp] }

// GetCompBuf returns the view of a component rectangle.
func (s *Storage) GetCompBuf(blk CompArea) PelBuf {
	r := s.Bufs[blk.Comp]
	checkd(blk.X >= 0 && blk.Y >= 0 &&
		(blk.Y+blk.Height-1)*r.Stride+blk.X+blk.Width-1 < (r.Height-1)*r.Stride+r.Width,
		"GetCompBuf", "%v area %dx%d at (%d,%d) outside %dx%d plane",
		blk.Comp, blk.Width, blk.Height, blk.X, blk.Y, r.Width, r.Height)
	return PelBuf{AreaBuf[Pel]{
		Buf:    r.Buf,
		Off:    r.Index(blk.X, blk.Y),
		Stride: r.Stride,
		Width:  blk.Width,
		Height: blk.Height,
	}}
}

// GetUnitBuf returns the views of every component rectangle of unit.
func (s *Storage) GetUnitBuf(unit UnitArea) UnitBuf {
	u := UnitBuf{ChromaFormat: s.ChromaFormat, Bufs: make([]PelBuf, len(s.Bufs))}
	for i := range u.Bufs {
		u.Bufs[i] = s.GetCompBuf(unit.Blocks[i])
	}
	return u
}

// planeViews returns views at the origin of every plane sized to unit, with
// the row stride chosen by stride.
func (s *Storage) planeViews(unit UnitArea, stride func(i int) int) UnitBuf {
	u := UnitBuf{ChromaFormat: s.ChromaFormat, Bufs: make([]PelBuf, len(s.Bufs))}
	for i, r := range s.Bufs {
		blk := unit.Blocks[i]
		u.Bufs[i] = PelBuf{AreaBuf[Pel]{
			Buf:    r.Buf,
			Off:    r.Off,
			Stride: stride(i),
			Width:  blk.Width,
			Height: blk.Height,
		}}
	}
	return u
}

func (s *Storage) checkUnitFits(op string, unit UnitArea, always bool) {
	y := s.Bufs[CompY]
	ok := unit.Y().Width <= y.Width && unit.Y().Height <= y.Height
	if always {
		check(ok, op, "unit %dx%d exceeds %dx%d plane", unit.Y().Width, unit.Y().Height, y.Width, y.Height)
		return
	}
	checkd(ok, op, "unit %dx%d exceeds %dx%d plane", unit.Y().Width, unit.Y().Height, y.Width, y.Height)
}

// GetBufWithStrides returns views at the plane origins sized to unit with
// caller supplied strides, for treating the memory as a smaller logical
// picture. Strides must not exceed those of the planes.
func (s *Storage) GetBufWithStrides(strY, strCb, strCr int, unit UnitArea) UnitBuf {
	s.checkUnitFits("GetBufWithStrides", unit, false)
	strides := [MaxNumComponents]int{strY, strCb, strCr}
	for i, r := range s.Bufs {
		checkd(strides[i] <= r.Stride, "GetBufWithStrides", "%v stride %d exceeds plane stride %d",
			ComponentID(i), strides[i], r.Stride)
	}
	return s.planeViews(unit, func(i int) int { return strides[i] })
}

// GetBufPart returns views at the plane origins sized to unit, keeping the
// plane strides.
func (s *Storage) GetBufPart(unit UnitArea) UnitBuf {
	s.checkUnitFits("GetBufPart", unit, false)
	return s.planeViews(unit, func(i int) int { return s.Bufs[i].Stride })
}

// GetCompactBuf returns views at the plane origins sized to unit whose
// stride equals their width, as used for tightly packed exports.
func (s *Storage) GetCompactBuf(unit UnitArea) UnitBuf {
	s.checkUnitFits("GetCompactBuf", unit, true)
	return s.planeViews(unit, func(i int) int { return unit.Blocks[i].Width })
}

// GetCompactCompBuf returns a packed view of blk at the origin of its
// plane.
func (s *Storage) GetCompactCompBuf(blk CompArea) PelBuf {
	r := s.Bufs[blk.Comp]
	return PelBuf{AreaBuf[Pel]{Buf: r.Buf, Off: r.Off, Stride: blk.Width, Width: blk.Width, Height: blk.Height}}
}

func (s *Storage) logGeometry(msg string, attrs ...slog.Attr) {
	l := Logger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, b := range s.Bufs {
		args := []any{
			slog.String("format", s.ChromaFormat.String()),
			slog.String("comp", ComponentID(i).String()),
			slog.Int("width", b.Width),
			slog.Int("height", b.Height),
			slog.Int("stride", b.Stride),
			slog.Int("offset", b.Off),
		}
		for _, a := range attrs {
			args = append(args, a)
		}
		l.Debug(msg, args...)
	}
}
