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

// Package gofmm implements a hierarchical SPD-matrix compression
// framework in the style of GOFMM/SPD-ASKIT: binary tree construction
// with geometry-oblivious splitters, per-node interpolative decomposition,
// near/far interaction lists, and a treecode matrix-vector evaluator.
package gofmm

import (
	"sync"

	"github.com/corewavelabs/blisfmm/kernel"
)

// Node is one node of the compression tree. Parent/Left/Right form an
// acyclic ownership tree; interaction sets reference
// other nodes directly by pointer since evaluation runs single-process --
// there is no serialization boundary forcing index-based weak references.
type Node struct {
	ID     int
	Level  int
	Morton uint64
	Parent *Node
	Left   *Node
	Right  *Node

	LIDs   []int
	Offset int

	Skels  []int
	Proj   *kernel.Dense
	IsSkel bool
	WSkel  *kernel.Dense
	USkel  *kernel.Dense

	NearNodes map[*Node]struct{}
	FarNodes  map[*Node]struct{}

	mu sync.Mutex
}

func (n *Node) IsLeaf() bool { return n.Left == nil && n.Right == nil }

func (n *Node) IsRoot() bool { return n.Parent == nil }

// isAncestorOrSelf reports whether n is on other's path to the root.
func (n *Node) isAncestorOrSelf(other *Node) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

func (n *Node) insertNear(other *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.NearNodes == nil {
		n.NearNodes = map[*Node]struct{}{}
	}
	n.NearNodes[other] = struct{}{}
}

func (n *Node) insertFar(other *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FarNodes == nil {
		n.FarNodes = map[*Node]struct{}{}
	}
	n.FarNodes[other] = struct{}{}
}

// containsNearMember reports whether any member of near is n itself or a
// descendant of n -- used by far-list construction and by the evaluator's
// prune condition.
func (n *Node) containsNearMember(near map[*Node]struct{}) bool {
	for m := range near {
		if n.isAncestorOrSelf(m) {
			return true
		}
	}
	return false
}
