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

import "math"

// Decomposer is the interpolative-decomposition collaborator, with two
// overloads: FixedRankDecomposer returns rank min(s, rows, cols) unless the
// block is numerically rank-deficient (see FixedRank), AdaptiveDecomposer grows
// rank until stol is met and signals failure with an empty skels slice.
type Decomposer interface {
	// Decompose factors Kab (|amap| x |bmap|) such that
	// Kab ~= Kab[:, skels] * proj, skels indexing bmap positions (not
	// global ids -- the caller maps them back through bmap).
	Decompose(amap, bmap []int, Kab *Dense, s int, stol float64) (skels []int, proj *Dense)
}

type FixedRankDecomposer struct{}

func (FixedRankDecomposer) Decompose(_, _ []int, Kab *Dense, s int, _ float64) ([]int, *Dense) {
	return FixedRank(Kab, s)
}

type AdaptiveDecomposer struct{}

func (AdaptiveDecomposer) Decompose(_, _ []int, Kab *Dense, s int, stol float64) ([]int, *Dense) {
	return Adaptive(Kab, s, stol)
}

// FixedRank computes an interpolative decomposition of Kab at rank
// min(s, Kab.Cols, Kab.Rows), ignoring tolerance; it never falls back to an
// adaptively chosen rank. It stops early, returning fewer skeletons, only
// when the next pivot column's residual norm is below idEps relative to
// Kab's norm (a numerically rank-deficient block), and returns no
// skeletons for an all-zero block.
func FixedRank(Kab *Dense, s int) (skels []int, proj *Dense) {
	skels, proj, _ = pivotedID(Kab, s, 0)
	return skels, proj
}

// Adaptive computes an interpolative decomposition that stops as soon as
// the relative Frobenius residual drops to stol, using at most rank s.
// If rank s is exhausted without reaching stol, it returns a nil/empty
// skels, signaling rank deficiency: the caller marks isskel=false and
// propagates non-skeletonization to the parent.
func Adaptive(Kab *Dense, s int, stol float64) (skels []int, proj *Dense) {
	skels, proj, achieved := pivotedID(Kab, s, stol)
	if !achieved {
		return nil, nil
	}
	return skels, proj
}

const idEps = 1e-13

// pivotedID is a column-pivoted modified Gram-Schmidt QR: at each step it
// orthogonalizes the remaining column of largest residual norm against the
// basis so far. The chosen pivots (in selection order) are the skeleton
// columns; the projection is recovered by back-substituting every column's
// QR coefficients against the upper-triangular block formed by the
// skeleton columns themselves (proj[:,j] = R11^-1 * R[:,j], which reduces
// to the identity column for j itself a skeleton).
func pivotedID(Kab *Dense, s int, stol float64) (skels []int, proj *Dense, achieved bool) {
	m, n := Kab.Rows, Kab.Cols
	maxRank := s
	if maxRank > n {
		maxRank = n
	}
	if maxRank > m {
		maxRank = m
	}
	if maxRank < 0 {
		maxRank = 0
	}

	work := make([][]float64, n)
	for j := 0; j < n; j++ {
		col := make([]float64, m)
		for i := 0; i < m; i++ {
			col[i] = Kab.At(i, j)
		}
		work[j] = col
	}

	normSq := make([]float64, n)
	var totalSq float64
	for j := 0; j < n; j++ {
		normSq[j] = dot(work[j], work[j])
		totalSq += normSq[j]
	}
	origNorm := math.Sqrt(totalSq)
	if origNorm == 0 {
		if stol <= 0 {
			return nil, NewDense(0, n), true
		}
		return nil, nil, false
	}

	perm := make([]int, n)
	for j := range perm {
		perm[j] = j
	}

	Q := make([][]float64, 0, maxRank)
	R := make([][]float64, 0, maxRank) // R[k] is length n, indexed by original column id
	rank := 0
	achieved = stol <= 0

	for k := 0; k < maxRank; k++ {
		pivot := k
		for j := k + 1; j < n; j++ {
			if normSq[perm[j]] > normSq[perm[pivot]] {
				pivot = j
			}
		}
		perm[k], perm[pivot] = perm[pivot], perm[k]

		if stol > 0 {
			var resid float64
			for j := k; j < n; j++ {
				resid += normSq[perm[j]]
			}
			if math.Sqrt(resid) <= stol*origNorm {
				achieved = true
				break
			}
		}

		colIdx := perm[k]
		norm := math.Sqrt(normSq[colIdx])
		if norm < idEps*origNorm {
			break
		}
		q := make([]float64, m)
		for i := range q {
			q[i] = work[colIdx][i] / norm
		}
		Q = append(Q, q)

		rrow := make([]float64, n)
		for j := 0; j < n; j++ {
			r := dot(q, work[j])
			rrow[j] = r
			axpy(work[j], -r, q)
			normSq[j] = dot(work[j], work[j])
		}
		R = append(R, rrow)
		rank = k + 1
	}

	if stol > 0 && !achieved {
		if rank == maxRank {
			var resid float64
			for j := rank; j < n; j++ {
				resid += normSq[perm[j]]
			}
			achieved = math.Sqrt(resid) <= stol*origNorm
		}
		if !achieved {
			return nil, nil, false
		}
	}

	if rank == 0 {
		return nil, NewDense(0, n), true
	}

	// R11[i][k] = R[i][perm[k]], upper triangular (i <= k) by construction.
	r11 := NewDense(rank, rank)
	for i := 0; i < rank; i++ {
		for k := 0; k < rank; k++ {
			r11.Set(i, k, R[i][perm[k]])
		}
	}

	projOut := NewDense(rank, n)
	b := make([]float64, rank)
	for j := 0; j < n; j++ {
		for i := 0; i < rank; i++ {
			b[i] = R[i][j]
		}
		x := backSubstituteUpper(r11, b)
		for i := 0; i < rank; i++ {
			projOut.Set(i, j, x[i])
		}
	}

	skels = append([]int(nil), perm[:rank]...)
	return skels, projOut, true
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func axpy(y []float64, alpha float64, x []float64) {
	for i := range y {
		y[i] += alpha * x[i]
	}
}

// backSubstituteUpper solves r*x = b for x, where r is upper triangular
// (r.At(i,k) == 0 for i>k).
func backSubstituteUpper(r *Dense, b []float64) []float64 {
	n := r.Rows
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for k := i + 1; k < n; k++ {
			sum -= r.At(i, k) * x[k]
		}
		diag := r.At(i, i)
		if math.Abs(diag) < idEps {
			x[i] = 0
			continue
		}
		x[i] = sum / diag
	}
	return x
}
