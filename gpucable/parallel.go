// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpucable

import (
	"runtime"
	"sync"
)

// ParallelRun runs fun over [0,n) split into contiguous chunks across nThr
// goroutines (nThr <= 0 uses GOMAXPROCS), waiting for all to finish.
// The CPU analog of one data-parallel kernel dispatch.
func ParallelRun(fun func(st, ed int), n, nThr int) {
	if nThr <= 0 {
		nThr = runtime.GOMAXPROCS(0)
	}
	if nThr > n {
		nThr = n
	}
	if nThr <= 1 {
		fun(0, n)
		return
	}
	chunk := (n + nThr - 1) / nThr
	var wg sync.WaitGroup
	for st := 0; st < n; st += chunk {
		ed := st + chunk
		if ed > n {
			ed = n
		}
		wg.Add(1)
		go func(st, ed int) {
			defer wg.Done()
			fun(st, ed)
		}(st, ed)
	}
	wg.Wait()
}
