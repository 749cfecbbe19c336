//go:build !pelbufdebug

package pelbuf

const debugChecks = false
