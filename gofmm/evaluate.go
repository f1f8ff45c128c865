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
	"github.com/corewavelabs/blisfmm/kernel"
	"github.com/corewavelabs/blisfmm/taskpool"
)

// Upward is the weight-compression pass: post-order, w_skel := proj *
// w[lids] at a leaf, or the sum of the child projections' column blocks
// applied to the children's w_skel at an internal node. w is N x nrhs
// (one row per global index), so GatherRows is the natural row-selection
// primitive. w_skel/u_skel are rebuilt every call since they depend on
// the right-hand side.
func Upward(t *Tree, w *kernel.Dense) {
	t.PostOrder(func(n *Node) {
		if n.IsRoot() || !n.IsSkel {
			n.WSkel = nil
			return
		}
		if n.IsLeaf() {
			n.WSkel = n.Proj.Mul(w.GatherRows(n.LIDs))
			return
		}
		rank := n.Proj.Rows
		nrhs := w.Cols
		acc := kernel.NewDense(rank, nrhs)
		leftLen := len(n.Left.Skels)
		if leftLen > 0 && n.Left.WSkel != nil {
			acc.AddInPlace(n.Proj.ColSlice(0, leftLen).Mul(n.Left.WSkel))
		}
		rightLen := len(n.Right.Skels)
		if rightLen > 0 && n.Right.WSkel != nil {
			acc.AddInPlace(n.Proj.ColSlice(leftLen, leftLen+rightLen).Mul(n.Right.WSkel))
		}
		n.WSkel = acc
	})
}

// Horizontal is the skeleton-to-skeleton pass: for every skeletonized
// node with a non-empty far list, u_skel := sum over far(n)
// of K(n.skels, beta.skels) * beta.w_skel.
func Horizontal(t *Tree, K kernel.SPDMatrix, pool *taskpool.Pool) {
	run := func(start, end int) {
		for _, n := range t.Nodes[start:end] {
			if !n.IsSkel || len(n.FarNodes) == 0 {
				n.USkel = nil
				continue
			}
			var acc *kernel.Dense
			for beta := range n.FarNodes {
				Kab := K.Gather(n.Skels, beta.Skels)
				contrib := Kab.Mul(beta.WSkel)
				if acc == nil {
					acc = contrib
				} else {
					acc.AddInPlace(contrib)
				}
			}
			n.USkel = acc
		}
	}
	if pool != nil {
		pool.ParallelFor(len(t.Nodes), run)
	} else {
		run(0, len(t.Nodes))
	}
}

// Evaluate is the treecode downward/direct pass: for every target leaf
// tau, recurse from the root, pruning at a skeletonized node
// disjoint from tau's near set (using K(tau.lids, beta.skels)*beta.w_skel)
// and falling back to the direct K(tau.lids, beta.lids)*w[beta.lids] term
// at leaves. Upward must have populated w_skel before this runs; u_skel
// (Horizontal's output) is not consulted here (see DESIGN.md for why the literal
// per-leaf recursion is used as the evaluator of record instead of a
// separate downward propagation of u_skel).
func Evaluate(t *Tree, K kernel.SPDMatrix, w *kernel.Dense, symmetric bool, pool *taskpool.Pool) *kernel.Dense {
	n := K.Dim()
	nrhs := w.Cols
	u := kernel.NewDense(n, nrhs)

	leaves := t.Leaves()
	run := func(start, end int) {
		for _, tau := range leaves[start:end] {
			acc := kernel.NewDense(len(tau.LIDs), nrhs)
			evaluateLeaf(tau, t.Root, K, w, symmetric, acc)
			for i, gid := range tau.LIDs {
				copy(u.Row(gid), acc.Row(i))
			}
		}
	}
	if pool != nil {
		pool.ParallelFor(len(leaves), run)
	} else {
		run(0, len(leaves))
	}
	return u
}

func evaluateLeaf(tau, beta *Node, K kernel.SPDMatrix, w *kernel.Dense, symmetric bool, acc *kernel.Dense) {
	prunable := beta.IsSkel && !beta.containsNearMember(tau.NearNodes) && (!symmetric || !beta.isAncestorOrSelf(tau))
	if prunable {
		Kts := K.Gather(tau.LIDs, beta.Skels)
		acc.AddInPlace(Kts.Mul(beta.WSkel))
		return
	}
	if beta.IsLeaf() {
		Ktb := K.Gather(tau.LIDs, beta.LIDs)
		acc.AddInPlace(Ktb.Mul(w.GatherRows(beta.LIDs)))
		return
	}
	evaluateLeaf(tau, beta.Left, K, w, symmetric, acc)
	evaluateLeaf(tau, beta.Right, K, w, symmetric, acc)
}
