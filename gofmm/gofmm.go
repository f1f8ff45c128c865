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

// Options bundles the tree, skeletonization, and interaction-list settings
// for one Compress call.
type Options struct {
	Build       BuildOptions
	Skeletonize SkeletonizeOptions
	Interaction InteractionOptions
}

// Evaluator holds a compressed SPD matrix: its tree, skeleton bases, and
// interaction lists. The tree and its skeletons live across many
// evaluations; call MatVec once per right-hand-side batch to rebuild
// w_skel/u_skel and obtain the approximate product.
type Evaluator struct {
	Tree      *Tree
	K         kernel.SPDMatrix
	Symmetric bool
	Pool      *taskpool.Pool
}

// Compress builds the tree, runs the interpolative-decomposition pass, and
// derives near/far interaction lists. lids is the full index set to
// partition, typically 0..K.Dim()-1 in some starting order.
func Compress(K kernel.SPDMatrix, lids []int, opt Options, pool *taskpool.Pool) *Evaluator {
	t := Build(K, lids, opt.Build)
	Skeletonize(t, K, opt.Skeletonize, pool)
	BuildNear(t, opt.Interaction, pool)
	BuildFar(t, opt.Interaction, pool)
	return &Evaluator{Tree: t, K: K, Symmetric: opt.Interaction.Symmetric, Pool: pool}
}

// MatVec rebuilds w_skel (Upward) and u_skel (Horizontal) for the given
// right-hand side and returns the approximate K*w product (Evaluate).
func (e *Evaluator) MatVec(w *kernel.Dense) *kernel.Dense {
	Upward(e.Tree, w)
	Horizontal(e.Tree, e.K, e.Pool)
	return Evaluate(e.Tree, e.K, w, e.Symmetric, e.Pool)
}
