//go:build pelbufdebug

package pelbuf

// debugChecks enables bounds checks on sub-buffer requests and the
// region-overlap assertions of RegionGuard.
const debugChecks = true
