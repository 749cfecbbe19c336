package main

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepteams/pelbuf"
)

// writeTestYUV writes frames of constant planes to a file in dir. Frame n
// has luma 16*n+lumaBase and both chroma planes at the mid level.
func writeTestYUV(t *testing.T, dir string, f frameFormat, frames, lumaBase int) string {
	t.Helper()
	var buf bytes.Buffer
	mid := 1 << (f.bitDepth - 1)
	for n := 0; n < frames; n++ {
		for i := 0; i < f.chroma.NumComponents(); i++ {
			comp := pelbuf.ComponentID(i)
			count := (f.width >> f.chroma.ScaleX(comp)) * (f.height >> f.chroma.ScaleY(comp))
			v := mid
			if comp == pelbuf.CompY {
				v = (lumaBase + 16*n) << (f.bitDepth - 8)
			}
			for j := 0; j < count; j++ {
				if f.bytesPerSample() == 2 {
					binary.Write(&buf, binary.LittleEndian, uint16(v))
				} else {
					buf.WriteByte(byte(v))
				}
			}
		}
	}
	path := filepath.Join(dir, "test.yuv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestFrameSize(t *testing.T) {
	tests := []struct {
		f    frameFormat
		want int
	}{
		{frameFormat{16, 8, pelbuf.Chroma420, 8}, 16*8 + 2*8*4},
		{frameFormat{16, 8, pelbuf.Chroma422, 8}, 16*8 + 2*8*8},
		{frameFormat{16, 8, pelbuf.Chroma444, 10}, 3 * 16 * 8 * 2},
		{frameFormat{16, 8, pelbuf.Chroma400, 12}, 16 * 8 * 2},
	}
	for _, tt := range tests {
		if got := tt.f.frameSize(); got != tt.want {
			t.Errorf("%+v: frameSize = %d, want %d", tt.f, got, tt.want)
		}
	}
}

func TestParseCrop(t *testing.T) {
	tests := []struct {
		in      string
		want    pelbuf.Window
		wantErr bool
	}{
		{"", pelbuf.Window{}, false},
		{"0,8,0,4", pelbuf.Window{Enabled: true, Right: 8, Bottom: 4}, false},
		{" 2, 2 ,4,4", pelbuf.Window{Enabled: true, Left: 2, Right: 2, Top: 4, Bottom: 4}, false},
		{"1,2,3", pelbuf.Window{}, true},
		{"1,2,3,-4", pelbuf.Window{}, true},
		{"a,b,c,d", pelbuf.Window{}, true},
	}
	for _, tt := range tests {
		got, err := parseCrop(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseCrop(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseCrop(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestReadFrame(t *testing.T) {
	for _, bd := range []int{8, 10} {
		f := frameFormat{width: 8, height: 4, chroma: pelbuf.Chroma420, bitDepth: bd}
		path := writeTestYUV(t, t.TempDir(), f, 3, 32)
		in, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		yuv, err := readFrame(in, f, 2)
		in.Close()
		if err != nil {
			t.Fatalf("bd %d: %v", bd, err)
		}
		if got, want := yuv.Planes[pelbuf.CompY].Buf[5], pelbuf.Pel(64<<(bd-8)); got != want {
			t.Errorf("bd %d: luma %d, want %d", bd, got, want)
		}
		if got, want := yuv.Planes[pelbuf.CompCr].Buf[1], pelbuf.Pel(1<<(bd-1)); got != want {
			t.Errorf("bd %d: chroma %d, want %d", bd, got, want)
		}
	}
}

func TestReadFrameMissing(t *testing.T) {
	f := frameFormat{width: 8, height: 4, chroma: pelbuf.Chroma444, bitDepth: 8}
	path := writeTestYUV(t, t.TempDir(), f, 1, 0)
	for _, idx := range []int{1, 3} {
		in, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := readFrame(in, f, idx); err == nil {
			t.Errorf("frame %d: expected error", idx)
		}
		in.Close()
	}
}

func TestRunPNG(t *testing.T) {
	dir := t.TempDir()
	f := frameFormat{width: 32, height: 16, chroma: pelbuf.Chroma420, bitDepth: 10}
	input := writeTestYUV(t, dir, f, 2, 100)

	tests := []struct {
		name   string
		args   []string
		w, h   int
		wantGY uint8
	}{
		{"full", []string{"-frame", "1"}, 32, 16, 116},
		{"crop", []string{"-crop", "4,4,2,2"}, 24, 12, 100},
		{"scaled", []string{"-scale", "0.5"}, 16, 8, 100},
		{"noaccel", []string{"-noaccel"}, 32, 16, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".png")
			args := append([]string{"-w", "32", "-h", "16", "-bitdepth", "10", "-o", out}, tt.args...)
			if err := runPNG(append(args, input)); err != nil {
				t.Fatal(err)
			}
			img := decodePNG(t, out)
			if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
				t.Fatalf("bounds %v, want %dx%d", b, tt.w, tt.h)
			}
			// Neutral chroma maps luma straight to gray, up to the rounding
			// of the resampling filters.
			r, g, b, _ := img.At(tt.w/2, tt.h/2).RGBA()
			for _, c := range []uint32{r >> 8, g >> 8, b >> 8} {
				if d := int(c) - int(tt.wantGY); d < -2 || d > 2 {
					t.Errorf("center pixel (%d,%d,%d), want gray %d", r>>8, g>>8, b>>8, tt.wantGY)
					break
				}
			}
		})
	}
}

func TestRunPNGMonochrome(t *testing.T) {
	dir := t.TempDir()
	f := frameFormat{width: 8, height: 8, chroma: pelbuf.Chroma400, bitDepth: 8}
	input := writeTestYUV(t, dir, f, 1, 200)
	out := filepath.Join(dir, "mono.png")
	if err := runPNG([]string{"-w", "8", "-h", "8", "-format", "400", "-o", out, input}); err != nil {
		t.Fatal(err)
	}
	img := decodePNG(t, out)
	if _, ok := img.(*image.Gray); !ok {
		t.Fatalf("decoded %T, want *image.Gray", img)
	}
	if v := img.(*image.Gray).GrayAt(3, 3).Y; v != 200 {
		t.Errorf("sample %d, want 200", v)
	}
}

func TestRunPNGErrors(t *testing.T) {
	dir := t.TempDir()
	f := frameFormat{width: 8, height: 8, chroma: pelbuf.Chroma420, bitDepth: 8}
	input := writeTestYUV(t, dir, f, 1, 0)
	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"-w", "8", "-h", "8"}},
		{"no size", []string{input}},
		{"odd 420", []string{"-w", "7", "-h", "8", input}},
		{"bit depth", []string{"-w", "8", "-h", "8", "-bitdepth", "16", input}},
		{"format", []string{"-w", "8", "-h", "8", "-format", "411", input}},
		{"crop", []string{"-w", "8", "-h", "8", "-crop", "4,4,0,0", input}},
		{"frame", []string{"-w", "8", "-h", "8", "-frame", "5", input}},
		{"missing file", []string{"-w", "8", "-h", "8", filepath.Join(dir, "nope.yuv")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-o", filepath.Join(dir, "err.png")}, tt.args...)
			if err := runPNG(args); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunInfo(t *testing.T) {
	dir := t.TempDir()
	f := frameFormat{width: 16, height: 16, chroma: pelbuf.Chroma420, bitDepth: 8}
	input := writeTestYUV(t, dir, f, 3, 0)

	var out bytes.Buffer
	if err := runInfo([]string{"-w", "16", "-h", "16", input}, &out); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		"Format:     4:2:0, 8 bit",
		"Frame size: 384 bytes",
		"Frames:     3\n",
		"Kernels:",
		"Plane Cb ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunCmp(t *testing.T) {
	f := frameFormat{width: 16, height: 8, chroma: pelbuf.Chroma420, bitDepth: 8}
	a := writeTestYUV(t, t.TempDir(), f, 1, 100)
	b := writeTestYUV(t, t.TempDir(), f, 1, 101)

	var out bytes.Buffer
	if err := runCmp([]string{"-w", "16", "-h", "8", a, b}, &out); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	// Luma differs by one everywhere; chroma is identical.
	for _, want := range []string{"Y   PSNR  48.13 dB  SSE 128", "Cb  PSNR  99.00 dB  SSE 0"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if err := runCmp([]string{"-w", "16", "-h", "8", a}, &out); err == nil {
		t.Error("expected error for a single input")
	}
}
