package fidimag

import (
	"runtime"
	"sync"
)

// minChunk is the smallest range handed to a worker; smaller loops run inline.
const minChunk = 512

// parallelFor calls fn over contiguous sub-ranges of [0, n) from several goroutines.
// Callers must guarantee that fn writes to disjoint indices for disjoint ranges: no locking
// is performed.
func parallelFor(n int, fn func(lo, hi int)) {
	parallelForChunk(n, minChunk, fn)
}

func parallelForChunk(n, chunk int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n/chunk {
		workers = n / chunk
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	var wg sync.WaitGroup
	size := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
