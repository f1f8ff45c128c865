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

// Package comm implements the thread communicator tree that drives the
// GEMM engine's parallel region: a 4-level JC/PC/IC/JR group hierarchy with
// sense-reversal barriers at each internal level.
package comm

import "sync/atomic"

// Barrier is a lock-free sense-reversal barrier for n participants. Unlike a
// counting barrier with a mutex, threads only ever spin on an atomic load;
// two successive Wait calls can never be conflated because the sense value
// alternates every round.
type Barrier struct {
	n       int32
	arrived atomic.Int32
	sense   atomic.Bool
}

// NewBarrier returns a barrier for exactly n participants. n must be >= 1.
func NewBarrier(n int) *Barrier {
	if n < 1 {
		panic("comm: barrier requires at least one participant")
	}
	return &Barrier{n: int32(n)}
}

// N reports the number of participants this barrier was built for.
func (b *Barrier) N() int { return int(b.n) }

// Wait blocks the calling goroutine until all n participants have called
// Wait. localSense is caller-owned state (initially false) that Wait flips
// on every call; passing the same pointer across repeated barrier rounds
// from the same logical thread is what prevents a fast thread from lapping
// a slow one.
func (b *Barrier) Wait(localSense *bool) {
	*localSense = !*localSense
	mySense := *localSense

	if b.arrived.Add(1) == b.n {
		b.arrived.Store(0)
		b.sense.Store(mySense)
		return
	}

	for b.sense.Load() != mySense {
		// Busy-spin: the engine's parallel region never suspends, so a
		// blocking primitive here would defeat the no-suspension contract.
	}
}
