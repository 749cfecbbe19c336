package pelbuf

import (
	"sync/atomic"

	"github.com/deepteams/pelbuf/internal/dsp"
)

// Pel is one picture sample.
type Pel = dsp.Pel

// ClipRange is the valid output interval [0, 2^BitDepth-1] of a component.
type ClipRange = dsp.ClipRange

// Kernels is the dispatch table every buffer operation goes through. A
// custom table (for instance a mock set in tests) can be built from
// ReferenceKernels and installed with UseKernels.
type Kernels = dsp.Ops

// Precision constants of the prediction pipeline.
const (
	IFInternalPrec = dsp.IFInternalPrec
	IFInternalOffs = dsp.IFInternalOffs
	CScaleFPPrec   = dsp.CScaleFPPrec
)

var active atomic.Pointer[Kernels]

// kernels returns the table used by views: the installed one, or the
// process-wide shared table.
func kernels() *Kernels {
	if k := active.Load(); k != nil {
		return k
	}
	return dsp.Shared()
}

// UseKernels installs k as the table used by every view operation. Passing
// nil restores the shared table. It must not race with kernel use.
func UseKernels(k *Kernels) {
	active.Store(k)
}

// ActiveKernels returns the table currently used by view operations.
func ActiveKernels() *Kernels { return kernels() }

// ReferenceKernels returns a fresh table of the portable implementations.
func ReferenceKernels() *Kernels { return dsp.Reference() }

// KernelConfig controls how the shared table is built.
type KernelConfig = dsp.Config

// ErrKernelsInitialized is returned by InitKernels when the shared table
// already exists.
var ErrKernelsInitialized = dsp.ErrAlreadyInitialized

// InitKernels builds the shared table, applying cfg first when this is the
// first initialization. It returns ErrKernelsInitialized if the table
// already exists and cfg could not be applied.
func InitKernels(cfg KernelConfig) error {
	if err := dsp.Configure(cfg); err != nil {
		return err
	}
	dsp.Init()
	return nil
}

// AddAvgParams returns the bi-prediction averaging shift and offset for a
// bit depth.
func AddAvgParams(bitDepth int) (shift uint, offset int) { return dsp.AddAvgParams(bitDepth) }
