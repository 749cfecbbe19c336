// Package pool provides bucketed sync.Pool instances for short-lived sample
// scratch buffers, organized by sample-count class to minimize waste, and
// aligned allocation for long-lived planes.
package pool

import (
	"sync"
	"unsafe"
)

// Size classes for bucketed pools, in samples.
const (
	Size1K   = 1 << 10
	Size4K   = 1 << 12
	Size16K  = 1 << 14
	Size64K  = 1 << 16
	Size256K = 1 << 18
	Size1M   = 1 << 20
	Size4M   = 1 << 22
)

const numBuckets = 7

// bucketIndex returns the pool index for a given sample count.
func bucketIndex(size int) int {
	switch {
	case size <= Size1K:
		return 0
	case size <= Size4K:
		return 1
	case size <= Size16K:
		return 2
	case size <= Size64K:
		return 3
	case size <= Size256K:
		return 4
	case size <= Size1M:
		return 5
	default:
		return 6
	}
}

var sizes = [numBuckets]int{Size1K, Size4K, Size16K, Size64K, Size256K, Size1M, Size4M}

var pools [numBuckets]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]int16, sz)
				return &b
			},
		}
	}
}

// GetPels returns a zeroed int16 slice of exactly size samples. The slice may
// have a larger capacity. The caller must call PutPels when done.
func GetPels(size int) []int16 {
	idx := bucketIndex(size)
	bp := pools[idx].Get().(*[]int16)
	b := *bp
	if cap(b) < size {
		b = make([]int16, size)
		*bp = b
		return b
	}
	b = b[:size]
	clear(b)
	return b
}

// PutPels returns a slice obtained from GetPels to the pool. Slices smaller
// than Size1K are dropped.
func PutPels(b []int16) {
	c := cap(b)
	if c < Size1K {
		return
	}
	idx := bucketIndex(c)
	b = b[:c]
	pools[idx].Put(&b)
}

// MakeAligned allocates a zeroed slice of size samples whose first element
// sits on an align-byte boundary. align must be zero or a power of two.
//
// The memory is not pooled: long-lived allocations are left to the garbage
// collector, so a slice still referenced elsewhere is never handed out
// again.
func MakeAligned(size, align int) []int16 {
	const elem = int(unsafe.Sizeof(int16(0)))
	if align <= elem {
		return make([]int16, size)
	}
	raw := make([]int16, size+align/elem)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	skip := int((uintptr(align)-addr%uintptr(align))%uintptr(align)) / elem
	return raw[skip : skip+size : skip+size]
}
