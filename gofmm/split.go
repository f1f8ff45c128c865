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
	"math"
	"math/rand"

	"github.com/corewavelabs/blisfmm/kernel"
)

// Splitter partitions a node's lids into two roughly equal halves.
type Splitter func(K kernel.SPDMatrix, lids []int, rng *rand.Rand) (left, right []int)

// CenterSplit is an SPD-geometry-oblivious splitter: it finds a point far
// from an approximate centroid, then a point far from that point,
// projects every point onto the axis between them, and partitions at the
// median.
func CenterSplit(K kernel.SPDMatrix, lids []int, rng *rand.Rand) (left, right []int) {
	n := len(lids)
	if n < 2 {
		return lids, nil
	}

	ns := int(math.Ceil(math.Log(float64(n))))
	if ns < 1 {
		ns = 1
	}
	if ns > n {
		ns = n
	}
	sample := make([]int, ns)
	perm := rng.Perm(n)
	for i := 0; i < ns; i++ {
		sample[i] = lids[perm[i]]
	}

	approxDist := func(i int) float64 {
		kii := K.At(i, i)
		var sum float64
		for _, j := range sample {
			sum += K.At(i, j)
		}
		return kii - 2*sum/float64(ns)
	}

	idf2c := lids[0]
	best := math.Inf(-1)
	for _, i := range lids {
		if d := approxDist(i); d > best {
			best, idf2c = d, i
		}
	}

	idf2f := lids[0]
	best = math.Inf(-1)
	for _, i := range lids {
		if d := K.At(i, i) - 2*K.At(i, idf2c); d > best {
			best, idf2f = d, i
		}
	}

	return projectAndSplit(K, lids, idf2c, idf2f)
}

// RandomSplit replaces CenterSplit's centroid-guided anchor selection with
// two distinct uniform samples.
func RandomSplit(K kernel.SPDMatrix, lids []int, rng *rand.Rand) (left, right []int) {
	n := len(lids)
	if n < 2 {
		return lids, nil
	}
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return projectAndSplit(K, lids, lids[i], lids[j])
}

func projectAndSplit(K kernel.SPDMatrix, lids []int, idf2c, idf2f int) (left, right []int) {
	n := len(lids)
	proj := make([]float64, n)
	for idx, i := range lids {
		proj[idx] = K.At(i, idf2f) - K.At(i, idf2c)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	mid := n / 2
	quickselect(order, proj, mid)

	left = make([]int, 0, mid)
	right = make([]int, 0, n-mid)
	for idx, o := range order {
		if idx < mid {
			left = append(left, lids[o])
		} else {
			right = append(right, lids[o])
		}
	}
	return left, right
}

// quickselect partitions order in place so that order[:k] holds the
// indices of the k smallest values of key(order[i]), an O(n) expected-time
// linear selection used here to find the median.
func quickselect(order []int, key []float64, k int) {
	lo, hi := 0, len(order)-1
	for lo < hi {
		p := partition(order, key, lo, hi)
		switch {
		case p == k:
			return
		case p < k:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

func partition(order []int, key []float64, lo, hi int) int {
	pivot := key[order[(lo+hi)/2]]
	order[(lo+hi)/2], order[hi] = order[hi], order[(lo+hi)/2]
	store := lo
	for i := lo; i < hi; i++ {
		if key[order[i]] < pivot {
			order[i], order[store] = order[store], order[i]
			store++
		}
	}
	order[store], order[hi] = order[hi], order[store]
	return store
}
