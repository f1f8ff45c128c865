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

// InteractionOptions selects the near-list construction variant.
type InteractionOptions struct {
	NN        *kernel.NeighborTable // non-nil enables NN-pruned near lists
	Symmetric bool
}

// BuildNear populates every leaf's NearNodes set. In NN-pruned mode
// (opt.NN != nil) a leaf's near set also includes the leaf containing
// every k-nearest-neighbor of every point it owns; otherwise a leaf is
// only ever near to itself. In SYMMETRIC mode the near relation is
// mirrored so membership is always reciprocal (the symmetry
// invariant).
func BuildNear(t *Tree, opt InteractionOptions, pool *taskpool.Pool) {
	leaves := t.Leaves()
	for _, leaf := range leaves {
		leaf.NearNodes = map[*Node]struct{}{}
	}

	run := func(start, end int) {
		for _, alpha := range leaves[start:end] {
			alpha.insertNear(alpha)
			if opt.NN == nil {
				continue
			}
			for _, p := range alpha.LIDs {
				for _, nb := range opt.NN.Neighbors(p) {
					if leaf := t.LeafOf(nb.GID); leaf != nil {
						alpha.insertNear(leaf)
					}
				}
			}
		}
	}
	if pool != nil {
		pool.ParallelFor(len(leaves), run)
	} else {
		run(0, len(leaves))
	}

	if opt.Symmetric {
		for _, alpha := range leaves {
			for beta := range alpha.NearNodes {
				beta.insertNear(alpha)
			}
		}
	}
}

// BuildFar populates FarNodes on every node: first, every target leaf's
// far list is derived by a root-down traversal that prunes at skeletonized
// nodes disjoint from the leaf's near set; then far-list members shared
// by both children of an internal node are propagated up to the parent
// and removed from the children (far-list merging), and finally, in
// SYMMETRIC mode, the resulting sets are mirrored.
func BuildFar(t *Tree, opt InteractionOptions, pool *taskpool.Pool) {
	for _, n := range t.Nodes {
		n.FarNodes = map[*Node]struct{}{}
	}

	leaves := t.Leaves()
	run := func(start, end int) {
		for _, alpha := range leaves[start:end] {
			visitFar(alpha, t.Root, opt.Symmetric)
		}
	}
	if pool != nil {
		pool.ParallelFor(len(leaves), run)
	} else {
		run(0, len(leaves))
	}

	t.PostOrder(func(n *Node) {
		if n.IsLeaf() {
			return
		}
		common := intersectNodeSets(n.Left.FarNodes, n.Right.FarNodes)
		for m := range common {
			n.insertFar(m)
			delete(n.Left.FarNodes, m)
			delete(n.Right.FarNodes, m)
		}
	})

	if opt.Symmetric {
		for _, n := range t.Nodes {
			for m := range n.FarNodes {
				m.insertFar(n)
			}
		}
	}
}

func visitFar(alpha, beta *Node, symmetric bool) {
	if !beta.IsSkel || beta.containsNearMember(alpha.NearNodes) {
		if !beta.IsLeaf() {
			visitFar(alpha, beta.Left, symmetric)
			visitFar(alpha, beta.Right, symmetric)
		}
		return
	}
	if symmetric && beta.Morton < alpha.Morton {
		return
	}
	alpha.insertFar(beta)
}

func intersectNodeSets(a, b map[*Node]struct{}) map[*Node]struct{} {
	out := map[*Node]struct{}{}
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for n := range small {
		if _, ok := big[n]; ok {
			out[n] = struct{}{}
		}
	}
	return out
}
