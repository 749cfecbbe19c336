package pelbuf

import (
	"sync"
	"unsafe"
)

// RegionGuard checks the disjoint-rectangle contract of parallel workers:
// every worker claims the view it is about to write, and a claim that
// overlaps a live claim on the same plane panics. The guard is active in
// builds tagged pelbufdebug; otherwise Claim only returns a release func.
type RegionGuard struct {
	active bool

	mu     sync.Mutex
	claims map[*Pel][]footprint
}

// footprint is a claimed view in absolute sample offsets of its plane, so
// views taken with different strides compare correctly.
type footprint struct {
	off, stride   int
	width, height int
}

func footprintOf(b PelBuf) footprint {
	return footprint{off: b.Off, stride: b.Stride, width: b.Width, height: b.Height}
}

func (f footprint) overlaps(o footprint) bool {
	if f.stride == o.stride && f.stride > 0 {
		a := Area{X: f.off % f.stride, Y: f.off / f.stride, Width: f.width, Height: f.height}
		return a.Overlaps(Area{X: o.off % o.stride, Y: o.off / o.stride, Width: o.width, Height: o.height})
	}
	for i := 0; i < f.height; i++ {
		s := f.off + i*f.stride
		e := s + f.width
		for j := 0; j < o.height; j++ {
			r := o.off + j*o.stride
			if r < e && s < r+o.width {
				return true
			}
		}
	}
	return false
}

// NewRegionGuard returns a guard with no live claims.
func NewRegionGuard() *RegionGuard { return newRegionGuard(debugChecks) }

func newRegionGuard(active bool) *RegionGuard {
	return &RegionGuard{active: active, claims: make(map[*Pel][]footprint)}
}

// Claim registers b as owned by the caller until the returned func is
// called. It panics if b overlaps a live claim on the same memory.
func (g *RegionGuard) Claim(b PelBuf) (release func()) {
	if !g.active || b.Empty() {
		return func() {}
	}
	k, f := unsafe.SliceData(b.Buf), footprintOf(b)
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.claims[k] {
		check(!c.overlaps(f), "Claim", "region %dx%d at offset %d/%d overlaps claimed %dx%d at offset %d/%d",
			f.width, f.height, f.off, f.stride, c.width, c.height, c.off, c.stride)
	}
	g.claims[k] = append(g.claims[k], f)

	var once sync.Once
	return func() {
		once.Do(func() { g.drop(k, f) })
	}
}

// ClaimUnit claims every plane of u. It panics, leaving nothing claimed,
// if any plane overlaps a live claim.
func (g *RegionGuard) ClaimUnit(u UnitBuf) (release func()) {
	releases := make([]func(), 0, len(u.Bufs))
	defer func() {
		if r := recover(); r != nil {
			for _, rel := range releases {
				rel()
			}
			panic(r)
		}
	}()
	for _, b := range u.Bufs {
		releases = append(releases, g.Claim(b))
	}
	return func() {
		for _, rel := range releases {
			rel()
		}
	}
}

func (g *RegionGuard) drop(k *Pel, f footprint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	list := g.claims[k]
	for i, c := range list {
		if c == f {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(g.claims, k)
		return
	}
	g.claims[k] = list
}
