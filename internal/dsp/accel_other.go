//go:build !amd64 && !arm64

package dsp

// accelerate keeps the reference kernels on platforms without a probe.
func accelerate(*Ops) {}

func cpuFeatures() string { return "generic" }
