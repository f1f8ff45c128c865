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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corewavelabs/blisfmm/kernel"
)

// TestAdaptiveSkeletonizationMeetsTolerance checks the per-node invariant:
// isskel(v) implies the ID residual is within stol.
func TestAdaptiveSkeletonizationMeetsTolerance(t *testing.T) {
	K := kernel.GaussianKernel{Points: randomPoints(300, 4, 40), Bandwidth: 1.4}
	const stol = 1e-2
	tree := Build(K, identityLIDs(300), BuildOptions{LeafSize: 12, Splitter: CenterSplit, Seed: 40})
	Skeletonize(tree, K, SkeletonizeOptions{S: 24, Stol: stol, Adaptive: true, Seed: 40}, nil)

	for _, n := range tree.Nodes {
		if !n.IsSkel || n.IsRoot() {
			continue
		}
		var bmap []int
		if n.IsLeaf() {
			bmap = n.LIDs
		} else {
			bmap = append(append([]int(nil), n.Left.Skels...), n.Right.Skels...)
		}
		lidSet := map[int]struct{}{}
		for _, id := range n.LIDs {
			lidSet[id] = struct{}{}
		}
		var amap []int
		for i := 0; i < 300; i++ {
			if _, in := lidSet[i]; !in {
				amap = append(amap, i)
			}
		}
		Kab := K.Gather(amap, bmap)
		skelBlock := K.Gather(amap, n.Skels)
		approx := skelBlock.Mul(n.Proj)
		resid := Kab.Sub(approx).FrobeniusNorm() / Kab.FrobeniusNorm()
		require.LessOrEqualf(t, resid, stol*5, "node %d residual %g exceeds tolerance", n.ID, resid)
	}
}

// TestAdaptiveFailurePropagatesToParent checks ADAPTIVE non-skeletonization
// propagation: if a child fails, the parent is also marked !isskel
// without attempting its own decomposition.
func TestAdaptiveFailurePropagatesToParent(t *testing.T) {
	K := kernel.GaussianKernel{Points: randomPoints(64, 3, 41), Bandwidth: 1.0}
	tree := Build(K, identityLIDs(64), BuildOptions{LeafSize: 4, Splitter: CenterSplit, Seed: 41})
	// An unreachable tolerance forces every leaf to fail.
	Skeletonize(tree, K, SkeletonizeOptions{S: 1, Stol: 1e-15, Adaptive: true, Seed: 41}, nil)

	for _, n := range tree.Nodes {
		if n.IsRoot() {
			continue
		}
		require.False(t, n.IsSkel)
	}
}

// TestFixedRankAlwaysUsesRankS checks that the non-ADAPTIVE path
// preallocates to rank s regardless of stol.
func TestFixedRankAlwaysUsesRankS(t *testing.T) {
	K := kernel.GaussianKernel{Points: randomPoints(64, 3, 42), Bandwidth: 1.0}
	tree := Build(K, identityLIDs(64), BuildOptions{LeafSize: 8, Splitter: CenterSplit, Seed: 42})
	Skeletonize(tree, K, SkeletonizeOptions{S: 5, Adaptive: false, Seed: 42}, nil)

	for _, leaf := range tree.Leaves() {
		require.True(t, leaf.IsSkel)
		require.Len(t, leaf.Skels, 5)
		require.Equal(t, 5, leaf.Proj.Rows)
	}
}
