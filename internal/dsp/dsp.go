// Package dsp provides the per-sample kernels of the pixel-buffer layer and
// the dispatch table through which every buffer operation reaches them.
//
// Kernels operate on raw (slice, stride) pairs. A slice argument always
// starts at the top-left sample of the region; kernels that read or write
// outside the nominal region (padding) take the full backing slice plus the
// offset of the region origin instead.
package dsp

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Pel is one picture sample. 8 to 14 bit content is stored in 16 bits to
// leave headroom for the intermediate prediction precision.
type Pel = int16

// Precision constants shared by the prediction kernels.
const (
	IFInternalPrec = 14                       // intermediate interpolation precision
	IFInternalOffs = 1 << (IFInternalPrec - 1) // offset removed from intermediate samples

	CScaleFPPrec = 11 // chroma residual scaling fixed-point precision

	MipShiftMatrix  = 6
	MipOffsetMatrix = 32

	BDOFExtendSize = 1 // gradient border for optical-flow refinement

	MemoryAlignDefSize = 32
)

// Kernel signatures. Strided kernels take (src, srcStride, ..., dst,
// dstStride, width, height); flat kernels process n consecutive samples.
type (
	AddAvgFunc      func(src1 []Pel, src1Stride int, src2 []Pel, src2Stride int, dst []Pel, dstStride, width, height int, shift uint, offset int, clp ClipRange)
	AddAvgFlatFunc  func(src1, src2, dst []Pel, n int, shift uint, offset int, clp ClipRange)
	WeightedAvgFunc func(src1 []Pel, src1Stride int, src2 []Pel, src2Stride int, dst []Pel, dstStride, width, height int, w0, w1 int, shift uint, offset int, clp ClipRange)

	RecoFunc     func(src1 []Pel, src1Stride int, src2 []Pel, src2Stride int, dst []Pel, dstStride, width, height int, clp ClipRange)
	RecoFlatFunc func(src1, src2, dst []Pel, n int, clp ClipRange)

	CopyClipFunc     func(src []Pel, srcStride int, dst []Pel, dstStride, width, height int, clp ClipRange)
	CopyClipFlatFunc func(src, dst []Pel, n int, clp ClipRange)

	RoundGeoFunc       func(src, dst []Pel, n int, shift uint, offset int, clp ClipRange)
	LinTfFunc          func(src []Pel, srcStride int, dst []Pel, dstStride, width, height int, scale int, shift uint, offset int, clp ClipRange, clip bool)
	RemoveHighFreqFunc func(dst []Pel, dstStride int, src []Pel, srcStride, width, height int)

	CopyBufferFunc func(src []Pel, srcStride int, dst []Pel, dstStride, width, height int)
	PaddingFunc    func(buf []Pel, off, stride, width, height, padSize int)
	TransposeFunc  func(src []Pel, srcStride int, dst []Pel, dstStride int)

	GradFilterFunc func(src []Pel, srcStride, width, height, gradStride int, gradX, gradY []Pel, bitDepth int)
	ApplyPROFFunc  func(dst []Pel, dstStride int, src []Pel, srcStride, width, height int, gradX, gradY []Pel, gradStride int, dMvX, dMvY []int, dMvStride int, bi bool, shift uint, offset int, clp ClipRange)

	MipMatrixMulFunc func(res, input []Pel, weight []uint8, maxVal, inputOffset int, transpose bool)
	WeightCiipFunc   func(res, src []Pel, n int, numIntra int)
	ApplyLutFunc     func(src []Pel, srcStride int, dst []Pel, dstStride, width, height int, lut []Pel)
	FillHandlesFunc  func(m []uintptr, stride, width, height int, val uintptr)

	SSEFunc func(a []Pel, aStride int, b []Pel, bStride, width, height int) uint64
)

// Ops is the dispatch table: one slot per kernel. A table is populated with
// the portable implementations by Reference and may have slots replaced by
// platform variants that produce identical output. Once published through
// Shared it must not be modified.
type Ops struct {
	// Backend names the implementation set, e.g. "reference" or
	// "wide-go" (unrolled Go kernels, no assembly).
	Backend string

	AddAvg     AddAvgFunc // any width
	AddAvg4    AddAvgFunc // width % 4 == 0
	AddAvg8    AddAvgFunc // width % 8 == 0
	AddAvg16   AddAvgFunc // width % 16 == 0
	AddAvgFlat AddAvgFlatFunc

	WeightedAvg WeightedAvgFunc

	Reco     RecoFunc
	Reco4    RecoFunc
	Reco8    RecoFunc
	RecoFlat RecoFlatFunc

	CopyClip     CopyClipFunc
	CopyClip4    CopyClipFunc
	CopyClip8    CopyClipFunc
	CopyClipFlat CopyClipFlatFunc

	RoundGeo RoundGeoFunc

	LinTf  LinTfFunc
	LinTf4 LinTfFunc
	LinTf8 LinTfFunc

	RemoveHighFreq  RemoveHighFreqFunc
	RemoveHighFreq4 RemoveHighFreqFunc
	RemoveHighFreq8 RemoveHighFreqFunc

	CopyBuffer CopyBufferFunc
	Padding    PaddingFunc

	Transpose4x4 TransposeFunc
	Transpose8x8 TransposeFunc

	GradFilter     GradFilterFunc // with 1-sample border extension
	ProfGradFilter GradFilterFunc // interior only
	ApplyPROF      ApplyPROFFunc

	MipMatrixMul4x4 MipMatrixMulFunc // 4 inputs, 4x4 outputs
	MipMatrixMul8x4 MipMatrixMulFunc // 8 inputs, 4x4 outputs
	MipMatrixMul8x8 MipMatrixMulFunc // 8 inputs, 8x8 outputs

	WeightCiip  WeightCiipFunc
	ApplyLut    ApplyLutFunc
	FillHandles FillHandlesFunc

	SSE  SSEFunc
	SSE8 SSEFunc // width % 8 == 0
}

// Reference returns a new table holding the portable implementations.
func Reference() *Ops {
	return &Ops{
		Backend: "reference",

		AddAvg:     AddAvgCore[Pel],
		AddAvg4:    AddAvgCore[Pel],
		AddAvg8:    AddAvgCore[Pel],
		AddAvg16:   AddAvgCore[Pel],
		AddAvgFlat: AddAvgFlatCore[Pel],

		WeightedAvg: WeightedAvgCore[Pel],

		Reco:     RecoCore[Pel],
		Reco4:    RecoCore[Pel],
		Reco8:    RecoCore[Pel],
		RecoFlat: RecoFlatCore[Pel],

		CopyClip:     CopyClipCore[Pel],
		CopyClip4:    CopyClipCore[Pel],
		CopyClip8:    CopyClipCore[Pel],
		CopyClipFlat: CopyClipFlatCore[Pel],

		RoundGeo: RoundGeoCore[Pel],

		LinTf:  LinTfCore[Pel],
		LinTf4: LinTfCore[Pel],
		LinTf8: LinTfCore[Pel],

		RemoveHighFreq:  RemoveHighFreqCore[Pel],
		RemoveHighFreq4: RemoveHighFreqCore[Pel],
		RemoveHighFreq8: RemoveHighFreqCore[Pel],

		CopyBuffer: CopyBlock[Pel],
		Padding:    PaddingCore[Pel],

		Transpose4x4: transpose4x4,
		Transpose8x8: transpose8x8,

		GradFilter:     gradFilterPad,
		ProfGradFilter: gradFilterNoPad,
		ApplyPROF:      applyPROFCore,

		MipMatrixMul4x4: mipMatrixMul4x4,
		MipMatrixMul8x4: mipMatrixMul8x4,
		MipMatrixMul8x8: mipMatrixMul8x8,

		WeightCiip:  weightCiipCore,
		ApplyLut:    applyLutCore,
		FillHandles: FillMap[uintptr],

		SSE:  SSECore[Pel],
		SSE8: SSECore[Pel],
	}
}

// Config controls how Init builds the shared table.
type Config struct {
	// DisableAccel keeps the reference implementations in every slot even
	// when the CPU supports a faster variant.
	DisableAccel bool
}

// ErrAlreadyInitialized is returned by Configure once the shared table has
// been built.
var ErrAlreadyInitialized = errors.New("dsp: dispatch table already initialized")

var (
	initOnce sync.Once
	cfgMu    sync.Mutex
	cfg      Config
	shared   atomic.Pointer[Ops]
)

// Configure sets the configuration used by Init. It must be called before
// the first call to Init or Shared.
func Configure(c Config) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	if shared.Load() != nil {
		return ErrAlreadyInitialized
	}
	cfg = c
	return nil
}

// Init builds the shared dispatch table: the reference implementations,
// then the platform overrides reported by the CPU probe. Calling Init more
// than once has no further effect. Init must complete before kernels are
// used concurrently.
func Init() {
	initOnce.Do(func() {
		cfgMu.Lock()
		c := cfg
		ops := Reference()
		if !c.DisableAccel {
			accelerate(ops)
		}
		shared.Store(ops)
		cfgMu.Unlock()

		Logger().Debug("dsp: dispatch table ready",
			"backend", ops.Backend,
			"cpu", cpuFeatures(),
			"accel_disabled", c.DisableAccel)
	})
}

// Shared returns the process-wide dispatch table, initializing it on first
// use. The returned table is read-only.
func Shared() *Ops {
	if o := shared.Load(); o != nil {
		return o
	}
	Init()
	return shared.Load()
}
