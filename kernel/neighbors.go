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

package kernel

import (
	"container/heap"
	"sort"
)

// Neighbor is one (distance, global_id) pair in a NeighborTable column.
type Neighbor struct {
	Dist float64
	GID  int
}

// NeighborTable is a k x N matrix of neighbor pairs, one column per point,
// maintained via a bounded-heap insertion primitive. BuildNeighborTable
// constructs one so the tree's NN-pruned near-list construction has
// something to prune against.
type NeighborTable struct {
	K    int
	Cols [][]Neighbor
}

func (t *NeighborTable) Neighbors(i int) []Neighbor { return t.Cols[i] }

// BuildNeighborTable computes, for every column i of K, the k nearest
// columns under the kernel-induced distance d(i,j) = K(i,i) - 2K(i,j) +
// K(j,j), using a bounded max-heap so each column costs O(N log k)
// instead of a full O(N log N) sort.
func BuildNeighborTable(K SPDMatrix, k int) *NeighborTable {
	n := K.Dim()
	if k > n-1 {
		k = n - 1
	}
	if k < 0 {
		k = 0
	}
	cols := make([][]Neighbor, n)
	for i := 0; i < n; i++ {
		h := &neighborMaxHeap{}
		kii := K.At(i, i)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			d := kii - 2*K.At(i, j) + K.At(j, j)
			if h.Len() < k {
				heap.Push(h, Neighbor{Dist: d, GID: j})
			} else if k > 0 && d < (*h)[0].Dist {
				heap.Pop(h)
				heap.Push(h, Neighbor{Dist: d, GID: j})
			}
		}
		sorted := []Neighbor(*h)
		sort.Slice(sorted, func(a, b int) bool { return sorted[a].Dist < sorted[b].Dist })
		cols[i] = sorted
	}
	return &NeighborTable{K: k, Cols: cols}
}

// neighborMaxHeap keeps the current k smallest distances with the largest
// at the top, so a candidate only needs comparing against one element to
// decide whether it displaces the current worst neighbor.
type neighborMaxHeap []Neighbor

func (h neighborMaxHeap) Len() int            { return len(h) }
func (h neighborMaxHeap) Less(i, j int) bool   { return h[i].Dist > h[j].Dist }
func (h neighborMaxHeap) Swap(i, j int)        { h[i], h[j] = h[j], h[i] }
func (h *neighborMaxHeap) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }
func (h *neighborMaxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
