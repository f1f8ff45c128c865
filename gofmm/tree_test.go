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

package gofmm

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/corewavelabs/blisfmm/kernel"
)

func randomPoints(n, dim int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	pts := make([][]float64, n)
	for i := range pts {
		pts[i] = make([]float64, dim)
		for d := range pts[i] {
			pts[i][d] = rng.NormFloat64()
		}
	}
	return pts
}

func identityLIDs(n int) []int {
	lids := make([]int, n)
	for i := range lids {
		lids[i] = i
	}
	return lids
}

// TestPartitionInvariant checks that for every internal node, lids is the
// disjoint union of lchild.lids and rchild.lids.
func TestPartitionInvariant(t *testing.T) {
	K := kernel.GaussianKernel{Points: randomPoints(200, 4, 10), Bandwidth: 1.5}
	tree := Build(K, identityLIDs(200), BuildOptions{LeafSize: 8, Splitter: CenterSplit, Seed: 1})

	for _, n := range tree.Nodes {
		if n.IsLeaf() {
			continue
		}
		seen := map[int]bool{}
		for _, id := range n.Left.LIDs {
			require.False(t, seen[id])
			seen[id] = true
		}
		for _, id := range n.Right.LIDs {
			require.False(t, seen[id], "id %d in both children", id)
			seen[id] = true
		}
		require.Equal(t, len(n.LIDs), len(seen))
		for _, id := range n.LIDs {
			require.True(t, seen[id])
		}

		union := append(append([]int{}, n.Left.LIDs...), n.Right.LIDs...)
		if diff := cmp.Diff(n.LIDs, union, cmpopts.SortSlices(func(a, b int) bool { return a < b })); diff != "" {
			t.Errorf("lids mismatch (-parent +children union):\n%s", diff)
		}
	}
}

func TestSingleLeafWhenLeafSizeCoversAll(t *testing.T) {
	K := kernel.GaussianKernel{Points: randomPoints(50, 3, 2), Bandwidth: 1.0}
	tree := Build(K, identityLIDs(50), BuildOptions{LeafSize: 50, Splitter: CenterSplit, Seed: 2})

	require.True(t, tree.Root.IsLeaf())
	require.Len(t, tree.Nodes, 1)
	require.Equal(t, 50, len(tree.Root.LIDs))
}

func TestLeavesRespectLeafSize(t *testing.T) {
	K := kernel.GaussianKernel{Points: randomPoints(300, 5, 3), Bandwidth: 2.0}
	tree := Build(K, identityLIDs(300), BuildOptions{LeafSize: 16, Splitter: RandomSplit, Seed: 4})

	for _, leaf := range tree.Leaves() {
		require.LessOrEqual(t, len(leaf.LIDs), 16)
	}
}

func TestMortonIndexUniquePerNode(t *testing.T) {
	K := kernel.GaussianKernel{Points: randomPoints(120, 3, 5), Bandwidth: 1.0}
	tree := Build(K, identityLIDs(120), BuildOptions{LeafSize: 8, Splitter: CenterSplit, Seed: 5})

	require.Equal(t, len(tree.Nodes), len(tree.MortonIndex))
	for morton, n := range tree.MortonIndex {
		require.Equal(t, morton, n.Morton)
	}
}
