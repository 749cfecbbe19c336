package dsp

import (
	"math/rand"
	"testing"
)

// Conformance tests: every slot of an accelerated table must produce the
// same samples as the reference kernels.

func wideOps() *Ops {
	o := Reference()
	installWide(o, true)
	return o
}

func makeRandPels(rng *rand.Rand, n, lo, hi int) []Pel {
	b := make([]Pel, n)
	for i := range b {
		b[i] = Pel(lo + rng.Intn(hi-lo+1))
	}
	return b
}

func equalPels(t *testing.T, iter int, name string, want, got []Pel) {
	t.Helper()
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("%s iter %d, index %d: reference=%d accelerated=%d", name, iter, i, want[i], got[i])
		}
	}
}

// tables returns the tables under test: the wide set on every platform and
// the shared table this process selected.
func tables() map[string]*Ops {
	return map[string]*Ops{"wide": wideOps(), "shared": Shared()}
}

func TestAddAvgConformance(t *testing.T) {
	ref := Reference()
	for name, ops := range tables() {
		rng := rand.New(rand.NewSource(42))
		for iter := 0; iter < 300; iter++ {
			bd := 8 + 2*rng.Intn(3)
			clp := ClipRange{BitDepth: bd}
			shift, offset := AddAvgParams(bd)
			w := 8 * (1 + rng.Intn(4))
			h := 1 + rng.Intn(8)
			stride := w + rng.Intn(5)
			a := makeRandPels(rng, stride*h, -IFInternalOffs, 2*IFInternalOffs)
			b := makeRandPels(rng, stride*h, -IFInternalOffs, 2*IFInternalOffs)
			want := make([]Pel, stride*h)
			got := make([]Pel, stride*h)
			ref.AddAvg(a, stride, b, stride, want, stride, w, h, shift, offset, clp)
			slot := ops.AddAvg8
			if w%16 == 0 {
				slot = ops.AddAvg16
			}
			slot(a, stride, b, stride, got, stride, w, h, shift, offset, clp)
			equalPels(t, iter, name+"/AddAvg", want, got)

			n := stride*h - rng.Intn(3)
			ref.AddAvgFlat(a, b, want, n, shift, offset, clp)
			ops.AddAvgFlat(a, b, got, n, shift, offset, clp)
			equalPels(t, iter, name+"/AddAvgFlat", want[:n], got[:n])
		}
	}
}

func TestRecoConformance(t *testing.T) {
	ref := Reference()
	for name, ops := range tables() {
		rng := rand.New(rand.NewSource(43))
		for iter := 0; iter < 300; iter++ {
			clp := ClipRange{BitDepth: 10}
			w := 8 * (1 + rng.Intn(4))
			h := 1 + rng.Intn(8)
			stride := w + rng.Intn(9)
			pred := makeRandPels(rng, stride*h, 0, 1023)
			resi := makeRandPels(rng, stride*h, -1100, 1100)
			want := make([]Pel, stride*h)
			got := make([]Pel, stride*h)
			ref.Reco(pred, stride, resi, stride, want, stride, w, h, clp)
			ops.Reco8(pred, stride, resi, stride, got, stride, w, h, clp)
			equalPels(t, iter, name+"/Reco8", want, got)

			n := stride * h
			ref.RecoFlat(pred, resi, want, n, clp)
			ops.RecoFlat(pred, resi, got, n, clp)
			equalPels(t, iter, name+"/RecoFlat", want, got)
		}
	}
}

func TestCopyClipConformance(t *testing.T) {
	ref := Reference()
	for name, ops := range tables() {
		rng := rand.New(rand.NewSource(44))
		for iter := 0; iter < 300; iter++ {
			clp := ClipRange{BitDepth: 8 + rng.Intn(5)}
			w := 8 * (1 + rng.Intn(4))
			h := 1 + rng.Intn(8)
			stride := w + rng.Intn(9)
			src := makeRandPels(rng, stride*h, -5000, 5000)
			want := make([]Pel, stride*h)
			got := make([]Pel, stride*h)
			ref.CopyClip(src, stride, want, stride, w, h, clp)
			ops.CopyClip8(src, stride, got, stride, w, h, clp)
			equalPels(t, iter, name+"/CopyClip8", want, got)

			n := stride*h - rng.Intn(7)
			ref.CopyClipFlat(src, want, n, clp)
			ops.CopyClipFlat(src, got, n, clp)
			equalPels(t, iter, name+"/CopyClipFlat", want[:n], got[:n])
		}
	}
}

func TestLinTfConformance(t *testing.T) {
	ref := Reference()
	for name, ops := range tables() {
		rng := rand.New(rand.NewSource(45))
		for iter := 0; iter < 300; iter++ {
			clp := ClipRange{BitDepth: 10}
			w := 8 * (1 + rng.Intn(3))
			h := 1 + rng.Intn(6)
			src := makeRandPels(rng, w*h, -1023, 1023)
			scale := rng.Intn(64) - 32
			shift := uint(rng.Intn(7))
			offset := rng.Intn(200) - 100
			clip := rng.Intn(2) == 0
			want := make([]Pel, w*h)
			got := make([]Pel, w*h)
			ref.LinTf(src, w, want, w, w, h, scale, shift, offset, clp, clip)
			ops.LinTf8(src, w, got, w, w, h, scale, shift, offset, clp, clip)
			equalPels(t, iter, name+"/LinTf8", want, got)
		}
	}
}

func TestRemoveHighFreqConformance(t *testing.T) {
	ref := Reference()
	for name, ops := range tables() {
		rng := rand.New(rand.NewSource(46))
		for iter := 0; iter < 300; iter++ {
			w := 8 * (1 + rng.Intn(3))
			h := 1 + rng.Intn(6)
			src := makeRandPels(rng, w*h, -4000, 4000)
			want := makeRandPels(rng, w*h, -4000, 4000)
			got := append([]Pel(nil), want...)
			ref.RemoveHighFreq(want, w, src, w, w, h)
			ops.RemoveHighFreq8(got, w, src, w, w, h)
			equalPels(t, iter, name+"/RemoveHighFreq8", want, got)
		}
	}
}

func TestTransposeConformance(t *testing.T) {
	ref := Reference()
	for name, ops := range tables() {
		rng := rand.New(rand.NewSource(47))
		for iter := 0; iter < 200; iter++ {
			const stride = 13
			src := makeRandPels(rng, 8*stride, -512, 512)
			want := make([]Pel, 8*stride)
			got := make([]Pel, 8*stride)
			ref.Transpose4x4(src, stride, want, stride)
			ops.Transpose4x4(src, stride, got, stride)
			equalPels(t, iter, name+"/Transpose4x4", want, got)
			ref.Transpose8x8(src, stride, want, stride)
			ops.Transpose8x8(src, stride, got, stride)
			equalPels(t, iter, name+"/Transpose8x8", want, got)
		}
	}
}

func TestSSEConformance(t *testing.T) {
	ref := Reference()
	for name, ops := range tables() {
		rng := rand.New(rand.NewSource(48))
		for iter := 0; iter < 300; iter++ {
			w := 8 * (1 + rng.Intn(4))
			h := 1 + rng.Intn(8)
			as, bs := w+rng.Intn(5), w+rng.Intn(5)
			a := makeRandPels(rng, as*h, -16384, 16383)
			b := makeRandPels(rng, bs*h, -16384, 16383)
			want := ref.SSE(a, as, b, bs, w, h)
			if got := ops.SSE8(a, as, b, bs, w, h); got != want {
				t.Fatalf("%s/SSE8 iter %d: reference=%d accelerated=%d", name, iter, want, got)
			}
		}
	}
}
