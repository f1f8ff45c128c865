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

	"github.com/corewavelabs/blisfmm/kernel"
)

// Tree is the arena-backed binary compression tree over an SPD matrix's
// index set.
type Tree struct {
	Root        *Node
	Nodes       []*Node
	MortonIndex map[uint64]*Node
	LeafOfID    map[int]*Node
	LeafSize    int
}

// BuildOptions configures tree construction.
type BuildOptions struct {
	LeafSize int // node terminates when |lids| <= LeafSize
	Splitter Splitter
	Seed     int64
}

// Build partitions lids recursively per opt.Splitter until every leaf has
// at most opt.LeafSize indices.
func Build(K kernel.SPDMatrix, lids []int, opt BuildOptions) *Tree {
	if opt.LeafSize < 1 {
		panic("gofmm: LeafSize must be >= 1")
	}
	if opt.Splitter == nil {
		opt.Splitter = CenterSplit
	}
	t := &Tree{
		MortonIndex: map[uint64]*Node{},
		LeafOfID:    map[int]*Node{},
		LeafSize:    opt.LeafSize,
	}
	rng := rand.New(rand.NewSource(opt.Seed))
	offset := 0
	t.Root = t.buildNode(K, lids, 0, 1, &offset, opt, rng)
	return t
}

func (t *Tree) buildNode(K kernel.SPDMatrix, lids []int, level int, morton uint64, offset *int, opt BuildOptions, rng *rand.Rand) *Node {
	n := &Node{
		ID:     len(t.Nodes),
		Level:  level,
		Morton: morton,
		LIDs:   lids,
		Offset: *offset,
	}
	t.Nodes = append(t.Nodes, n)
	t.MortonIndex[morton] = n

	if len(lids) <= opt.LeafSize {
		*offset += len(lids)
		for _, id := range lids {
			t.LeafOfID[id] = n
		}
		return n
	}

	left, right := opt.Splitter(K, lids, rng)
	if len(right) == 0 {
		*offset += len(lids)
		for _, id := range lids {
			t.LeafOfID[id] = n
		}
		return n
	}

	n.Left = t.buildNode(K, left, level+1, morton<<1, offset, opt, rng)
	n.Right = t.buildNode(K, right, level+1, morton<<1|1, offset, opt, rng)
	n.Left.Parent = n
	n.Right.Parent = n
	return n
}

// Leaves returns every leaf node in the tree, in construction order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	for _, n := range t.Nodes {
		if n.IsLeaf() {
			out = append(out, n)
		}
	}
	return out
}

// PostOrder calls visit on every node, children before parent.
func (t *Tree) PostOrder(visit func(*Node)) {
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		walk(n.Left)
		walk(n.Right)
		visit(n)
	}
	walk(t.Root)
}

// LeafOf returns the unique leaf containing global index id, or nil.
func (t *Tree) LeafOf(id int) *Node { return t.LeafOfID[id] }
