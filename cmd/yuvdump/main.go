// Command yuvdump inspects raw planar YUV files through pelbuf picture
// storage.
//
// Usage:
//
//	yuvdump png [options] <input.yuv>    one frame → PNG preview (use "-" for stdin)
//	yuvdump info [options] <input.yuv>   plane geometry and frame count
//	yuvdump cmp [options] <a.yuv> <b.yuv> per-plane PSNR of one frame
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/deepteams/pelbuf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "png":
		err = runPNG(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:], os.Stdout)
	case "cmp":
		err = runCmp(os.Args[2:], os.Stdout)
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "yuvdump: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "yuvdump: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  yuvdump png [options] <input.yuv>    Convert one frame to a PNG preview
  yuvdump info [options] <input.yuv>   Print plane geometry and frame count
  yuvdump cmp [options] <a.yuv> <b.yuv>
                                       Print the per-plane PSNR of one frame

Use "-" as input to read from stdin.

Run "yuvdump <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// frameFormat describes the layout of a raw planar YUV file.
type frameFormat struct {
	width, height int
	chroma        pelbuf.ChromaFormat
	bitDepth      int
}

// bytesPerSample is 1 for 8-bit files and 2 (little endian) otherwise.
func (f frameFormat) bytesPerSample() int {
	if f.bitDepth > 8 {
		return 2
	}
	return 1
}

// frameSize returns the size of one frame in bytes.
func (f frameFormat) frameSize() int {
	n := 0
	for i := 0; i < f.chroma.NumComponents(); i++ {
		comp := pelbuf.ComponentID(i)
		n += (f.width >> f.chroma.ScaleX(comp)) * (f.height >> f.chroma.ScaleY(comp))
	}
	return n * f.bytesPerSample()
}

// commonFlags registers the layout flags shared by every command.
type commonFlags struct {
	width, height *int
	format        *string
	bitDepth      *int
	verbose       *bool
	noAccel       *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		width:    fs.Int("w", 0, "luma width in samples (required)"),
		height:   fs.Int("h", 0, "luma height in samples (required)"),
		format:   fs.String("format", "420", "chroma format: 400/420/422/444"),
		bitDepth: fs.Int("bitdepth", 8, "sample bit depth 8-14 (>8 reads 16-bit little endian)"),
		verbose:  fs.Bool("v", false, "log storage and kernel setup to stderr"),
		noAccel:  fs.Bool("noaccel", false, "use the portable kernels only"),
	}
}

func (c commonFlags) parse(cmd string) (frameFormat, error) {
	if *c.verbose {
		pelbuf.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	err := pelbuf.InitKernels(pelbuf.KernelConfig{DisableAccel: *c.noAccel})
	if err != nil && !errors.Is(err, pelbuf.ErrKernelsInitialized) {
		return frameFormat{}, fmt.Errorf("%s: %w", cmd, err)
	}
	cf, err := pelbuf.ParseChromaFormat(*c.format)
	if err != nil {
		return frameFormat{}, fmt.Errorf("%s: %w", cmd, err)
	}
	f := frameFormat{width: *c.width, height: *c.height, chroma: cf, bitDepth: *c.bitDepth}
	if f.width <= 0 || f.height <= 0 {
		return f, fmt.Errorf("%s: -w and -h must be positive", cmd)
	}
	if f.bitDepth < 8 || f.bitDepth > pelbuf.IFInternalPrec {
		return f, fmt.Errorf("%s: unsupported bit depth %d", cmd, f.bitDepth)
	}
	if cf != pelbuf.Chroma400 && (f.width&1 != 0 || (cf == pelbuf.Chroma420 && f.height&1 != 0)) {
		return f, fmt.Errorf("%s: %dx%d is not a valid %v size", cmd, f.width, f.height, cf)
	}
	return f, nil
}

// parseCrop parses a "left,right,top,bottom" conformance window in luma
// samples. An empty string disables the window.
func parseCrop(s string) (pelbuf.Window, error) {
	if s == "" {
		return pelbuf.Window{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return pelbuf.Window{}, fmt.Errorf("crop %q: want left,right,top,bottom", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return pelbuf.Window{}, fmt.Errorf("crop %q: invalid offset %q", s, p)
		}
		v[i] = n
	}
	return pelbuf.Window{Enabled: true, Left: v[0], Right: v[1], Top: v[2], Bottom: v[3]}, nil
}

// readFrame skips index frames of r and reads the next one into packed
// planes.
func readFrame(r io.Reader, f frameFormat, index int) (*pelbuf.YUVBuffer, error) {
	size := int64(f.frameSize())
	if index > 0 {
		if _, err := io.CopyN(io.Discard, r, size*int64(index)); err != nil {
			return nil, fmt.Errorf("skipping to frame %d: %w", index, err)
		}
	}
	raw := make([]byte, size)
	if _, err := io.ReadFull(r, raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("frame %d: no such frame", index)
		}
		return nil, fmt.Errorf("frame %d: %w", index, err)
	}

	yuv := pelbuf.NewYUVBuffer(f.chroma, f.width, f.height)
	maxVal := 1<<f.bitDepth - 1
	pos := 0
	for i := 0; i < f.chroma.NumComponents(); i++ {
		p := yuv.Planes[i]
		for j := range p.Buf {
			var v int
			if f.bytesPerSample() == 2 {
				v = int(binary.LittleEndian.Uint16(raw[pos:]))
				pos += 2
			} else {
				v = int(raw[pos])
				pos++
			}
			p.Buf[j] = pelbuf.Pel(min(v, maxVal))
		}
	}
	return yuv, nil
}

// loadPicture copies a frame into picture storage with a replicated border,
// the way an encoder holds its source pictures.
func loadPicture(yuv *pelbuf.YUVBuffer, f frameFormat) *pelbuf.Storage {
	var in pelbuf.UnitBuf
	pelbuf.SetupUnitBuf(*yuv, &in, f.chroma)

	opts := pelbuf.DefaultStorageOptions()
	pic := &pelbuf.Storage{}
	pic.CreateWithOptions(f.chroma, pelbuf.NewArea(0, 0, f.width, f.height), opts)
	pic.CopyFrom(in)
	pic.ExtendBorderPel(opts.Margin, opts.ScaleChromaMargin)
	return pic
}

// --- png ---

func runPNG(args []string) error {
	fs := flag.NewFlagSet("png", flag.ContinueOnError)
	common := addCommonFlags(fs)
	frame := fs.Int("frame", 0, "frame index")
	crop := fs.String("crop", "", "conformance window left,right,top,bottom in luma samples")
	scale := fs.Float64("scale", 1, "output scale factor")
	output := fs.String("o", "", "output path (default: <input>.png)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("png: missing input file\nUsage: yuvdump png [options] <input.yuv>")
	}
	inputPath := fs.Arg(0)

	f, err := common.parse("png")
	if err != nil {
		return err
	}
	win, err := parseCrop(*crop)
	if err != nil {
		return fmt.Errorf("png: %w", err)
	}
	if win.Left+win.Right >= f.width || win.Top+win.Bottom >= f.height {
		return fmt.Errorf("png: crop window leaves no picture")
	}
	if *scale <= 0 {
		return fmt.Errorf("png: invalid scale %v", *scale)
	}

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	yuv, err := readFrame(in, f, *frame)
	if err != nil {
		return fmt.Errorf("png: %w", err)
	}
	pic := loadPicture(yuv, f)
	defer pic.Destroy()

	img := toImage(pic, f, &win)
	if *scale != 1 {
		b, k := img.Bounds(), *scale
		w := max(1, int(float64(b.Dx())*k+0.5))
		h := max(1, int(float64(b.Dy())*k+0.5))
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		img = dst
	}

	outputPath := *output
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.png"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".png"
		}
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("png: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}
	b := img.Bounds()
	fmt.Fprintf(os.Stderr, "Converted %s frame %d → %s (%dx%d)\n", inputPath, *frame, outputPath, b.Dx(), b.Dy())
	return nil
}

// toImage brings the picture to 8 bits, exposes the window through the
// plane bridge and converts it to RGB. Chroma planes are scaled up to the
// luma grid with bilinear filtering.
func toImage(pic *pelbuf.Storage, f frameFormat, win *pelbuf.Window) image.Image {
	clp8 := pelbuf.ClipRange{BitDepth: 8}
	for _, b := range pic.Bufs {
		b.LinearTransform(1, uint(f.bitDepth-8), 0, true, clp8)
	}

	var out pelbuf.YUVBuffer
	pelbuf.SetupYUVBuffer(pic.UnitBuf, &out, win)

	luma := planeToGray(out.Planes[pelbuf.CompY])
	if f.chroma == pelbuf.Chroma400 {
		return luma
	}
	r := luma.Bounds()
	cb := image.NewGray(r)
	cr := image.NewGray(r)
	xdraw.BiLinear.Scale(cb, r, planeToGray(out.Planes[pelbuf.CompCb]), image.Rect(0, 0, out.Planes[pelbuf.CompCb].Width, out.Planes[pelbuf.CompCb].Height), xdraw.Src, nil)
	xdraw.BiLinear.Scale(cr, r, planeToGray(out.Planes[pelbuf.CompCr]), image.Rect(0, 0, out.Planes[pelbuf.CompCr].Width, out.Planes[pelbuf.CompCr].Height), xdraw.Src, nil)

	img := image.NewRGBA(r)
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			i := y*luma.Stride + x
			cR, cG, cB := color.YCbCrToRGB(luma.Pix[i], cb.Pix[y*cb.Stride+x], cr.Pix[y*cr.Stride+x])
			o := y*img.Stride + 4*x
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = cR, cG, cB, 0xff
		}
	}
	return img
}

// planeToGray copies an 8-bit plane into a gray image.
func planeToGray(p pelbuf.YUVPlane) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	v := p.View()
	for y := 0; y < p.Height; y++ {
		row := v.Row(y)
		dst := g.Pix[y*g.Stride : y*g.Stride+p.Width]
		for x, s := range row {
			dst[x] = uint8(s)
		}
	}
	return g
}

// --- info ---

func runInfo(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("info: missing input file\nUsage: yuvdump info [options] <input.yuv>")
	}
	inputPath := fs.Arg(0)

	f, err := common.parse("info")
	if err != nil {
		return err
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}
	fmt.Fprintf(w, "File:       %s\n", name)
	fmt.Fprintf(w, "Format:     %v, %d bit\n", f.chroma, f.bitDepth)
	fmt.Fprintf(w, "Dimensions: %d x %d\n", f.width, f.height)
	fmt.Fprintf(w, "Frame size: %d bytes\n", f.frameSize())

	if inputPath != "-" {
		fi, err := os.Stat(inputPath)
		if err != nil {
			return fmt.Errorf("info: %w", err)
		}
		fmt.Fprintf(w, "File size:  %d bytes\n", fi.Size())
		fmt.Fprintf(w, "Frames:     %d", fi.Size()/int64(f.frameSize()))
		if rest := fi.Size() % int64(f.frameSize()); rest != 0 {
			fmt.Fprintf(w, " (+%d trailing bytes)", rest)
		}
		fmt.Fprintln(w)
	}

	var pic pelbuf.Storage
	opts := pelbuf.DefaultStorageOptions()
	pic.CreateWithOptions(f.chroma, pelbuf.NewArea(0, 0, f.width, f.height), opts)
	defer pic.Destroy()
	fmt.Fprintf(w, "Kernels:    %s\n", pelbuf.ActiveKernels().Backend)
	for i, b := range pic.Bufs {
		fmt.Fprintf(w, "Plane %-3v  %d x %d, stride %d, origin offset %d\n",
			pelbuf.ComponentID(i), b.Width, b.Height, b.Stride, b.Off)
	}
	return nil
}

// --- cmp ---

func runCmp(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("cmp", flag.ContinueOnError)
	common := addCommonFlags(fs)
	frame := fs.Int("frame", 0, "frame index")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("cmp: missing input files\nUsage: yuvdump cmp [options] <a.yuv> <b.yuv>")
	}

	f, err := common.parse("cmp")
	if err != nil {
		return err
	}

	var planes [2]pelbuf.UnitBuf
	for i := range planes {
		in, err := openInput(fs.Arg(i))
		if err != nil {
			return err
		}
		yuv, err := readFrame(in, f, *frame)
		in.Close()
		if err != nil {
			return fmt.Errorf("cmp: %s: %w", fs.Arg(i), err)
		}
		pelbuf.SetupUnitBuf(*yuv, &planes[i], f.chroma)
	}

	clp := pelbuf.ClipRange{BitDepth: f.bitDepth}
	for i, b := range planes[0].Bufs {
		ref := planes[1].Bufs[i]
		fmt.Fprintf(w, "%-3v PSNR %6.2f dB  SSE %d\n", pelbuf.ComponentID(i), b.PSNR(ref, clp), b.SSE(ref))
	}
	return nil
}
