//go:build amd64

package dsp

import "golang.org/x/sys/cpu"

// accelerate installs the unrolled Go kernels on CPUs with SSE4.1; AVX2 also
// takes the 16-multiple slots. The feature bits only gate the selection.
func accelerate(o *Ops) {
	if !cpu.X86.HasSSE41 {
		return
	}
	installWide(o, cpu.X86.HasAVX2)
}

// cpuFeatures names the probed vector unit for the dispatch log.
func cpuFeatures() string {
	switch {
	case cpu.X86.HasAVX2:
		return "avx2"
	case cpu.X86.HasSSE41:
		return "sse4.1"
	default:
		return "sse2"
	}
}
