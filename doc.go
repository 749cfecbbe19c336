// Package pelbuf provides the picture-sample buffers and per-sample kernels
// of a block-based video encoder.
//
// The package is organized in three layers:
//   - Views: AreaBuf is a non-owning strided rectangle over a slice; PelBuf
//     adds the codec operations (reconstruction, bi-prediction averaging,
//     clipping, scaling, transposition, lookup-table remapping) and UnitBuf
//     groups one view per colour component.
//   - Storage: Storage owns the memory of a multi-plane picture, laying out
//     each plane with optional block-size rounding, border margin and row
//     alignment.
//   - Kernels: every view operation reaches its kernel through a dispatch
//     table built once per process. The portable implementations can be
//     replaced by faster variants selected from the CPU features, with
//     bit-identical results.
//
// Views carry no locks. Concurrent callers must write disjoint rectangles;
// RegionGuard checks this in builds tagged pelbufdebug, which also enable
// the bounds checks of sub-view accessors. Contract violations panic with
// a *PreconditionError.
//
// Basic usage:
//
//	var pic pelbuf.Storage
//	pic.CreateWithOptions(pelbuf.Chroma420, pelbuf.NewArea(0, 0, 1920, 1080), pelbuf.DefaultStorageOptions())
//	defer pic.Destroy()
//
//	blk := pic.GetUnitBuf(pelbuf.NewUnitArea(pelbuf.Chroma420, pelbuf.NewArea(64, 64, 16, 16)))
//	blk.AddAvg(pred0, pred1, pelbuf.UniformClipRanges(10))
package pelbuf
