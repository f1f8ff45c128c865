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

// SPDMatrix is a callable symmetric positive-definite matrix that the
// tree-compression framework never materializes in full. Dim is both the
// row and column count since the matrix is square.
type SPDMatrix interface {
	Dim() int
	At(i, j int) float64
	// Gather returns K(amap, bmap) as a dense len(amap) x len(bmap) matrix.
	Gather(amap, bmap []int) *Dense
}

// gatherDense is the shared Gather implementation for any At-based SPDMatrix.
func gatherDense(K SPDMatrix, amap, bmap []int) *Dense {
	out := NewDense(len(amap), len(bmap))
	for i, a := range amap {
		row := out.Row(i)
		for j, b := range bmap {
			row[j] = K.At(a, b)
		}
	}
	return out
}

// DenseSPD wraps a fully materialized SPD matrix, used for small test
// fixtures (random diagonally-dominant SPD matrices).
type DenseSPD struct {
	M *Dense
}

func (d DenseSPD) Dim() int                 { return d.M.Rows }
func (d DenseSPD) At(i, j int) float64      { return d.M.At(i, j) }
func (d DenseSPD) Gather(a, b []int) *Dense { return gatherDense(d, a, b) }

// GaussianKernel is the reference SPD callable for 4-D-point end-to-end
// tests: K(i,j) = exp(-||x_i - x_j||^2 / (2*bandwidth^2)).
type GaussianKernel struct {
	Points    [][]float64
	Bandwidth float64
}

func (g GaussianKernel) Dim() int { return len(g.Points) }

func (g GaussianKernel) At(i, j int) float64 {
	if i == j {
		return 1
	}
	xi, xj := g.Points[i], g.Points[j]
	var sq float64
	for d := range xi {
		diff := xi[d] - xj[d]
		sq += diff * diff
	}
	return math.Exp(-sq / (2 * g.Bandwidth * g.Bandwidth))
}

func (g GaussianKernel) Gather(amap, bmap []int) *Dense { return gatherDense(g, amap, bmap) }
