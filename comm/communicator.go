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

package comm

import "fmt"

// Communicator is one node of the 4-ary JC/PC/IC/JR thread tree. An internal
// node's threads are partitioned into NGroups child communicators of
// Child.NThreads each; leaves (the JR level) have no children and NGroups
// equals NThreads (every thread is its own singleton group).
type Communicator struct {
	Name     string
	NThreads int
	NGroups  int
	Children []*Communicator

	barrier *Barrier
}

// Barrier blocks the calling goroutine until every thread owned by this
// communicator has called Barrier with its own localSense pointer.
func (c *Communicator) Barrier(localSense *bool) {
	c.barrier.Wait(localSense)
}

func newLeaf(name string, n int) *Communicator {
	return &Communicator{
		Name:     name,
		NThreads: n,
		NGroups:  n,
		barrier:  NewBarrier(n),
	}
}

func newInternal(name string, nGroups int, child func() *Communicator) *Communicator {
	if nGroups < 1 {
		panic(fmt.Sprintf("comm: %s level requires at least one group", name))
	}
	children := make([]*Communicator, nGroups)
	for i := range children {
		children[i] = child()
	}
	nThreads := nGroups * children[0].NThreads
	return &Communicator{
		Name:     name,
		NThreads: nThreads,
		NGroups:  nGroups,
		Children: children,
		barrier:  NewBarrier(nThreads),
	}
}

// Construct allocates the 4-level JC/PC/IC/JR communicator tree.
// n_threads at the root is jcNt*pcNt*icNt*jrNt. All four counts must be >= 1;
// a configuration that does not resolve to a positive thread count is a
// configuration error and is fatal.
func Construct(jcNt, pcNt, icNt, jrNt int) *Communicator {
	if jcNt < 1 || pcNt < 1 || icNt < 1 || jrNt < 1 {
		panic(fmt.Sprintf("comm: invalid thread configuration jc=%d pc=%d ic=%d jr=%d", jcNt, pcNt, icNt, jrNt))
	}
	return newInternal("jc", jcNt, func() *Communicator {
		return newInternal("pc", pcNt, func() *Communicator {
			return newInternal("ic", icNt, func() *Communicator {
				return newLeaf("jr", jrNt)
			})
		})
	})
}
