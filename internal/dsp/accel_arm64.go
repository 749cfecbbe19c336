//go:build arm64

package dsp

import "golang.org/x/sys/cpu"

// accelerate installs the unrolled Go kernels on CPUs reporting Advanced
// SIMD. No NEON code is involved.
func accelerate(o *Ops) {
	if !cpu.ARM64.HasASIMD {
		return
	}
	installWide(o, true)
}

func cpuFeatures() string {
	if cpu.ARM64.HasASIMD {
		return "asimd"
	}
	return "generic"
}
