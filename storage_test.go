package pelbuf

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"unsafe"
)

func TestStorageLayout(t *testing.T) {
	formats := []ChromaFormat{Chroma400, Chroma420, Chroma422, Chroma444}
	areas := []Area{NewArea(0, 0, 64, 64), NewArea(0, 0, 100, 60), NewArea(0, 0, 16, 8)}
	opts := []StorageOptions{
		{MaxCUSize: 16, Margin: 8, Alignment: 32, ScaleChromaMargin: true},
		{MaxCUSize: 64, Margin: 16, Alignment: 16},
		{MaxCUSize: 0, Margin: 0, Alignment: 0},
		DefaultStorageOptions(),
	}
	for _, cf := range formats {
		for _, area := range areas {
			for _, o := range opts {
				var s Storage
				s.CreateWithOptions(cf, area, o)
				if got := s.NumComponents(); got != cf.NumComponents() {
					t.Fatalf("%v: %d planes, want %d", cf, got, cf.NumComponents())
				}
				for i, b := range s.Bufs {
					comp := ComponentID(i)
					sx, sy := cf.ScaleX(comp), cf.ScaleY(comp)
					mx, my := o.Margin, o.Margin
					if o.ScaleChromaMargin {
						mx, my = mx>>sx, my>>sy
					}
					name := cf.String() + "/" + comp.String()
					if o.Alignment > 0 && b.Stride%o.Alignment != 0 {
						t.Errorf("%s %+v: stride %d not a multiple of %d", name, o, b.Stride, o.Alignment)
					}
					if b.Off != b.Stride*my+mx {
						t.Errorf("%s %+v: origin offset %d, want %d", name, o, b.Off, b.Stride*my+mx)
					}
					if b.Width != area.Width>>sx || b.Height != area.Height>>sy {
						t.Errorf("%s %+v: size %dx%d, want %dx%d", name, o, b.Width, b.Height, area.Width>>sx, area.Height>>sy)
					}
					origin := s.Origin(comp)
					if unsafe.SliceData(origin) != unsafe.SliceData(b.Buf) {
						t.Errorf("%s: view is not backed by the plane allocation", name)
					}
					if o.Alignment > 0 {
						addr := uintptr(unsafe.Pointer(unsafe.SliceData(origin)))
						if addr%uintptr(2*o.Alignment) != 0 {
							t.Errorf("%s %+v: allocation start %#x not aligned", name, o, addr)
						}
					}
					// The last sample of the bottom-right margin must be addressable.
					last := b.Index(b.Width-1+mx, b.Height-1+my)
					if last >= len(b.Buf) {
						t.Errorf("%s %+v: margin exceeds allocation (%d >= %d)", name, o, last, len(b.Buf))
					}
				}
				s.Destroy()
			}
		}
	}
}

func TestStorage420Scenario(t *testing.T) {
	var s Storage
	s.CreateWithOptions(Chroma420, NewArea(0, 0, 64, 64), StorageOptions{
		MaxCUSize:         16,
		Margin:            8,
		Alignment:         32,
		ScaleChromaMargin: true,
	})
	defer s.Destroy()

	y := s.GetBuf(CompY)
	if y.Width != 64 || y.Height != 64 || y.Stride != 96 || y.Off != 96*8+8 {
		t.Errorf("luma: %dx%d stride %d offset %d", y.Width, y.Height, y.Stride, y.Off)
	}
	for _, comp := range []ComponentID{CompCb, CompCr} {
		c := s.GetBuf(comp)
		if c.Width != 32 || c.Height != 32 {
			t.Errorf("%v: %dx%d, want 32x32", comp, c.Width, c.Height)
		}
		// 32 + 2*4 rounded up to the alignment.
		if c.Stride != 64 {
			t.Errorf("%v: stride %d, want 64", comp, c.Stride)
		}
		if c.Off != c.Stride*4+4 {
			t.Errorf("%v: offset %d, want %d", comp, c.Off, c.Stride*4+4)
		}
		if rows := len(s.Origin(comp)) / c.Stride; rows != 32+8 {
			t.Errorf("%v: %d allocated rows, want 40", comp, rows)
		}
	}

	// The content view excludes the margin: filling it leaves the border
	// untouched until it is extended.
	cb := s.GetBuf(CompCb)
	cb.Fill(7)
	if cb.At(-1, 0) != 0 || cb.At(0, -1) != 0 || cb.At(32, 31) != 0 {
		t.Error("Fill wrote into the margin")
	}
	s.ExtendBorderPel(8, true)
	if cb.At(-4, -4) != 7 || cb.At(35, 35) != 7 {
		t.Error("ExtendBorderPel did not fill the chroma margin")
	}
}

func TestStorageCreateShared(t *testing.T) {
	var s Storage
	s.Create(Chroma420, NewArea(0, 0, 16, 8))
	defer s.Destroy()

	wants := [][2]int{{16, 8}, {8, 4}, {8, 4}}
	for i, w := range wants {
		b := s.GetBuf(ComponentID(i))
		if b.Width != w[0] || b.Height != w[1] || !b.IsContiguous() || b.Off != 0 {
			t.Errorf("plane %d: %dx%d stride %d off %d", i, b.Width, b.Height, b.Stride, b.Off)
		}
	}
	// Planes are laid out back to back in one allocation.
	luma := unsafe.Pointer(unsafe.SliceData(s.Origin(CompY)))
	if unsafe.Pointer(unsafe.SliceData(s.Origin(CompCb))) != unsafe.Add(luma, 128*2) ||
		unsafe.Pointer(unsafe.SliceData(s.Origin(CompCr))) != unsafe.Add(luma, (128+32)*2) {
		t.Error("chroma planes do not follow luma")
	}
}

func TestStorageCreateUnit(t *testing.T) {
	var s Storage
	s.CreateUnit(NewUnitArea(Chroma422, NewArea(32, 32, 16, 16)))
	defer s.Destroy()
	if cb := s.GetBuf(CompCb); cb.Width != 8 || cb.Height != 16 {
		t.Errorf("Cb %dx%d, want 8x16", cb.Width, cb.Height)
	}
}

func TestStoragePreconditions(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"recreate", func() {
			var s Storage
			s.Create(Chroma444, NewArea(0, 0, 4, 4))
			s.Create(Chroma444, NewArea(0, 0, 4, 4))
		}},
		{"recreate with options", func() {
			var s Storage
			s.CreateWithOptions(Chroma420, NewArea(0, 0, 8, 8), DefaultStorageOptions())
			s.CreateWithOptions(Chroma420, NewArea(0, 0, 8, 8), DefaultStorageOptions())
		}},
		{"zero chroma area", func() {
			var s Storage
			s.Create(Chroma420, NewArea(0, 0, 1, 1))
		}},
		{"zero area with options", func() {
			var s Storage
			s.CreateWithOptions(Chroma444, NewArea(0, 0, 0, 8), StorageOptions{})
		}},
		{"alignment", func() {
			var s Storage
			s.CreateWithOptions(Chroma444, NewArea(0, 0, 8, 8), StorageOptions{Alignment: 24})
		}},
		{"swap format", func() {
			var a, b Storage
			a.Create(Chroma420, NewArea(0, 0, 8, 8))
			b.Create(Chroma444, NewArea(0, 0, 8, 8))
			a.Swap(&b)
		}},
		{"swap stride", func() {
			var a, b Storage
			a.CreateWithOptions(Chroma420, NewArea(0, 0, 8, 8), StorageOptions{Alignment: 16})
			b.CreateWithOptions(Chroma420, NewArea(0, 0, 8, 8), StorageOptions{Alignment: 32})
			a.Swap(&b)
		}},
		{"compact larger than plane", func() {
			var s Storage
			s.Create(Chroma400, NewArea(0, 0, 8, 8))
			s.GetCompactBuf(NewUnitArea(Chroma400, NewArea(0, 0, 16, 4)))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustPanicPrecondition(t, tt.fn)
		})
	}
}

func TestStorageDestroyedViewDoesNotAlias(t *testing.T) {
	for _, create := range []struct {
		name string
		fn   func(*Storage)
	}{
		{"shared", func(s *Storage) { s.Create(Chroma400, NewArea(0, 0, 64, 64)) }},
		{"options", func(s *Storage) {
			s.CreateWithOptions(Chroma420, NewArea(0, 0, 64, 64), DefaultStorageOptions())
		}},
	} {
		t.Run(create.name, func(t *testing.T) {
			for iter := 0; iter < 8; iter++ {
				var a, b Storage
				create.fn(&a)
				stale := a.GetBuf(CompY)
				a.Destroy()

				create.fn(&b)
				stale.Fill(777)
				if got := b.GetBuf(CompY).At(0, 0); got != 0 {
					b.Destroy()
					t.Fatalf("iter %d: write through a destroyed storage view reached the new storage: %d", iter, got)
				}
				if unsafe.SliceData(stale.Buf) == unsafe.SliceData(b.Origin(CompY)) {
					t.Fatalf("iter %d: new storage reuses destroyed memory", iter)
				}
				b.Destroy()
			}
		})
	}
}

func TestStorageDestroyIdempotent(t *testing.T) {
	var s Storage
	s.CreateWithOptions(Chroma420, NewArea(0, 0, 32, 32), DefaultStorageOptions())
	s.Destroy()
	s.Destroy()
	if !s.Empty() || s.Origin(CompY) != nil {
		t.Fatal("storage not empty after Destroy")
	}
	// A destroyed storage can be created again.
	s.Create(Chroma400, NewArea(0, 0, 8, 8))
	s.Destroy()
}

func TestStorageTakeOwnership(t *testing.T) {
	var src, dst Storage
	src.CreateWithOptions(Chroma420, NewArea(0, 0, 16, 16), StorageOptions{Margin: 4, Alignment: 16})
	src.GetBuf(CompY).Fill(33)
	src.GetBuf(CompCr).Fill(44)
	origin := unsafe.SliceData(src.Origin(CompY))

	dst.Create(Chroma444, NewArea(0, 0, 4, 4))
	dst.TakeOwnership(&src)

	if !src.Empty() || src.owns() {
		t.Fatal("source still holds memory")
	}
	if dst.ChromaFormat != Chroma420 || unsafe.SliceData(dst.Origin(CompY)) != origin {
		t.Fatal("memory was not transferred")
	}
	if dst.GetBuf(CompY).At(15, 15) != 33 || dst.GetBuf(CompCr).At(0, 0) != 44 {
		t.Fatal("samples lost in transfer")
	}
	dst.Destroy()
}

func TestStorageSwap(t *testing.T) {
	var a, b Storage
	opts := StorageOptions{MaxCUSize: 8, Margin: 2, Alignment: 8}
	a.CreateWithOptions(Chroma420, NewArea(0, 0, 16, 16), opts)
	b.CreateWithOptions(Chroma420, NewArea(0, 0, 16, 16), opts)
	defer a.Destroy()
	defer b.Destroy()
	a.Fill(1)
	b.Fill(2)
	ya := a.GetBuf(CompY)

	a.Swap(&b)
	if a.GetBuf(CompCb).At(3, 3) != 2 || b.GetBuf(CompCb).At(3, 3) != 1 {
		t.Fatal("samples not exchanged")
	}
	// Views taken before the swap keep pointing at the same memory.
	if ya.At(0, 0) != 1 || b.GetBuf(CompY).At(0, 0) != 1 {
		t.Fatal("swap copied samples")
	}
}

func TestStorageViews(t *testing.T) {
	var s Storage
	s.CreateWithOptions(Chroma420, NewArea(0, 0, 32, 32), StorageOptions{Margin: 8, Alignment: 32, ScaleChromaMargin: true})
	defer s.Destroy()
	y := s.GetBuf(CompY)
	for yy := 0; yy < y.Height; yy++ {
		for x := 0; x < y.Width; x++ {
			y.Set(x, yy, Pel(yy*100+x))
		}
	}

	unit := NewUnitArea(Chroma420, NewArea(8, 4, 16, 8))
	ub := s.GetUnitBuf(unit)
	if ub.Y().At(0, 0) != 408 || ub.Y().Width != 16 || ub.Y().Stride != y.Stride {
		t.Errorf("unit luma: first %d size %d stride %d", ub.Y().At(0, 0), ub.Y().Width, ub.Y().Stride)
	}
	if cb := ub.Cb(); cb.Width != 8 || cb.Height != 4 || cb.Off != s.GetBuf(CompCb).Index(4, 2) {
		t.Errorf("unit Cb: %dx%d off %d", cb.Width, cb.Height, cb.Off)
	}

	part := s.GetBufPart(unit)
	if part.Y().Off != y.Off || part.Y().Stride != y.Stride || part.Y().Width != 16 {
		t.Errorf("part: off %d stride %d width %d", part.Y().Off, part.Y().Stride, part.Y().Width)
	}

	compact := s.GetCompactBuf(unit)
	for i, b := range compact.Bufs {
		if !b.IsContiguous() || b.Width != unit.Blocks[i].Width {
			t.Errorf("compact plane %d: width %d stride %d", i, b.Width, b.Stride)
		}
	}
	cc := s.GetCompactCompBuf(unit.Cr())
	if cc.Stride != 8 || cc.Off != s.GetBuf(CompCr).Off {
		t.Errorf("compact Cr: stride %d off %d", cc.Stride, cc.Off)
	}

	ws := s.GetBufWithStrides(32, 16, 16, NewUnitArea(Chroma420, NewArea(0, 0, 32, 32)))
	if ws.Y().Stride != 32 || ws.Cb().Stride != 16 || ws.Y().At(1, 0) != 1 {
		t.Errorf("strided view: %d %d", ws.Y().Stride, ws.Cb().Stride)
	}
}

func TestStorageCreateFromBuf(t *testing.T) {
	yuv := NewYUVBuffer(Chroma420, 8, 8)
	var ub UnitBuf
	SetupUnitBuf(*yuv, &ub, Chroma420)

	var s Storage
	s.CreateFromBuf(ub)
	s.GetBuf(CompCb).Fill(9)
	if yuv.Planes[CompCb].Buf[15] != 9 {
		t.Fatal("CreateFromBuf copied samples")
	}
	s.Destroy()
	if yuv.Planes[CompCb].Buf[15] != 9 {
		t.Fatal("Destroy released memory it does not own")
	}
}

func TestStorageLogsGeometry(t *testing.T) {
	var out bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	var s Storage
	s.CreateWithOptions(Chroma420, NewArea(0, 0, 16, 16), DefaultStorageOptions())
	s.Destroy()

	log := out.String()
	for _, want := range []string{"storage created", "storage released", "comp=Cb", "format=4:2:0", "stride="} {
		if !strings.Contains(log, want) {
			t.Errorf("log missing %q:\n%s", want, log)
		}
	}
}
