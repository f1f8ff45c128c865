// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package taskpool provides a reusable concurrency bound for the
// tree-compression framework's non-preemptive tasks (skeletonize,
// update-weights, skeleton-to-skeleton, near/far construction). Unlike the
// GEMM engine's own communicator-driven parallel region (comm.Construct),
// this runtime has no fixed thread shape or long-lived goroutines: callers
// fan out through ParallelFor or their own errgroup capped by NumWorkers,
// and every goroutine exits when its call returns.
package taskpool

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool holds a concurrency bound reused across many tree-compression calls.
// It spawns no goroutines itself; Group and ParallelFor each spawn a fresh
// batch bounded by n and let them exit when the call returns.
type Pool struct {
	n int
}

// New returns a Pool bounded to n concurrent tasks. n <= 0 selects
// runtime.GOMAXPROCS(0).
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &Pool{n: n}
}

// NumWorkers reports the pool's concurrency bound.
func (p *Pool) NumWorkers() int { return p.n }

// Group returns an errgroup.Group capped at the pool's concurrency bound,
// for bounded fan-out where the caller doesn't need its own
// errgroup.WithContext (callers that need cancellation, such as the
// post-order sibling skeletonization pass, build their own errgroup and cap
// it with NumWorkers instead).
func (p *Pool) Group() *errgroup.Group {
	g := &errgroup.Group{}
	g.SetLimit(p.n)
	return g
}

// ParallelFor executes fn for each index in [0, n) split into
// NumWorkers contiguous ranges. Blocks until every range completes. Used
// by the symbolic near/far construction, which is embarrassingly
// parallel over leaves.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := min(p.n, n)
	if workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunk
		end := min(start+chunk, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
