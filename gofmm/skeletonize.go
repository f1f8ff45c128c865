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
	"context"
	"math/rand"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/corewavelabs/blisfmm/kernel"
	"github.com/corewavelabs/blisfmm/taskpool"
)

// SkeletonizeOptions configures per-node interpolative decomposition.
type SkeletonizeOptions struct {
	Decomposer kernel.Decomposer
	S          int
	Stol       float64
	Adaptive   bool
	Seed       int64
}

type skelCtx struct {
	K       kernel.SPDMatrix
	N       int
	opt     SkeletonizeOptions
	pool    *taskpool.Pool
	rngMu   sync.Mutex
	rng     *rand.Rand
}

// Skeletonize runs the post-order interpolative-decomposition pass over
// every node of t, scheduling concurrent sibling subtrees through pool.
func Skeletonize(t *Tree, K kernel.SPDMatrix, opt SkeletonizeOptions, pool *taskpool.Pool) {
	if opt.Decomposer == nil {
		if opt.Adaptive {
			opt.Decomposer = kernel.AdaptiveDecomposer{}
		} else {
			opt.Decomposer = kernel.FixedRankDecomposer{}
		}
	}
	ctx := &skelCtx{
		K:    K,
		N:    K.Dim(),
		opt:  opt,
		pool: pool,
		rng:  rand.New(rand.NewSource(opt.Seed)),
	}
	_ = skeletonizeSubtree(context.Background(), t.Root, ctx)
}

func skeletonizeSubtree(ctx context.Context, n *Node, sc *skelCtx) error {
	if !n.IsLeaf() {
		g, gctx := errgroup.WithContext(ctx)
		if sc.pool != nil {
			g.SetLimit(sc.pool.NumWorkers())
		}
		g.Go(func() error { return skeletonizeSubtree(gctx, n.Left, sc) })
		g.Go(func() error { return skeletonizeSubtree(gctx, n.Right, sc) })
		if err := g.Wait(); err != nil {
			return err
		}
	}
	skeletonizeOne(n, sc)
	return nil
}

func skeletonizeOne(n *Node, sc *skelCtx) {
	if n.IsRoot() {
		return
	}

	if sc.opt.Adaptive && !n.IsLeaf() && (!n.Left.IsSkel || !n.Right.IsSkel) {
		n.Skels = nil
		n.Proj = nil
		n.IsSkel = false
		return
	}

	var bmap []int
	if n.IsLeaf() {
		bmap = n.LIDs
	} else {
		bmap = make([]int, 0, len(n.Left.Skels)+len(n.Right.Skels))
		bmap = append(bmap, n.Left.Skels...)
		bmap = append(bmap, n.Right.Skels...)
	}

	amap := sc.sampleAmap(n, len(bmap))
	Kab := sc.K.Gather(amap, bmap)

	localSkels, proj := sc.opt.Decomposer.Decompose(amap, bmap, Kab, sc.opt.S, sc.opt.Stol)
	if len(localSkels) == 0 {
		n.IsSkel = false
		n.Skels = nil
		n.Proj = nil
		return
	}

	skels := make([]int, len(localSkels))
	for i, local := range localSkels {
		skels[i] = bmap[local]
	}
	n.Skels = skels
	n.Proj = proj
	n.IsSkel = true
}

// sampleAmap draws the row-sample set: distinct uniform samples from the
// complement of n.LIDs, sized 2*|bmap|, unless the
// complement is smaller than that target, in which case every off-diagonal
// row is used.
func (sc *skelCtx) sampleAmap(n *Node, bmapLen int) []int {
	lidSet := make(map[int]struct{}, len(n.LIDs))
	for _, i := range n.LIDs {
		lidSet[i] = struct{}{}
	}
	complementSize := sc.N - len(n.LIDs)
	target := 2 * bmapLen

	if target >= complementSize {
		return lo.Reject(lo.Range(sc.N), func(i, _ int) bool {
			_, in := lidSet[i]
			return in
		})
	}

	sc.rngMu.Lock()
	defer sc.rngMu.Unlock()
	seen := make(map[int]struct{}, target)
	amap := make([]int, 0, target)
	for len(amap) < target {
		cand := sc.rng.Intn(sc.N)
		if _, in := lidSet[cand]; in {
			continue
		}
		if _, dup := seen[cand]; dup {
			continue
		}
		seen[cand] = struct{}{}
		amap = append(amap, cand)
	}
	return amap
}
