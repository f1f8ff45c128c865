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

// Package kernel provides the reference SPD-matrix callable, the
// interpolative-decomposition primitive, and the neighbor-table builder
// that the gofmm package treats as external collaborators: the ID routine,
// the BLAS-style gemm used internally by the treecode evaluator, and the
// bounded-heap KNN builder.
package kernel

import (
	"fmt"
	"math"
)

// Dense is a small, dense row-major matrix used for the gather/projection
// products that flow through skeletonization and evaluation. It is
// intentionally separate from the gemm package's packed-panel engine:
// those buffers exist for one cache-blocked engine call, while Dense holds
// the small (|skels|-by-whatever) matrices that live on tree nodes across
// many evaluations.
type Dense struct {
	Rows, Cols int
	Data       []float64
}

// NewDense allocates a zeroed rows x cols matrix.
func NewDense(rows, cols int) *Dense {
	if rows < 0 || cols < 0 {
		panic("kernel: negative Dense dimension")
	}
	return &Dense{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func (d *Dense) At(i, j int) float64 { return d.Data[i*d.Cols+j] }

func (d *Dense) Set(i, j int, v float64) { d.Data[i*d.Cols+j] = v }

// Row returns a mutable view of row i.
func (d *Dense) Row(i int) []float64 { return d.Data[i*d.Cols : (i+1)*d.Cols] }

// ColSlice returns column block [lo,hi) as a new Dense sharing no storage
// with d, used to split a node's proj into child-aligned column blocks
// (proj_left, proj_right in the upward weight-compression pass).
func (d *Dense) ColSlice(lo, hi int) *Dense {
	out := NewDense(d.Rows, hi-lo)
	for i := 0; i < d.Rows; i++ {
		copy(out.Row(i), d.Data[i*d.Cols+lo:i*d.Cols+hi])
	}
	return out
}

// Mul computes d * other.
func (d *Dense) Mul(other *Dense) *Dense {
	if d.Cols != other.Rows {
		panic(fmt.Sprintf("kernel: Mul dimension mismatch %dx%d * %dx%d", d.Rows, d.Cols, other.Rows, other.Cols))
	}
	out := NewDense(d.Rows, other.Cols)
	for i := 0; i < d.Rows; i++ {
		ai := d.Data[i*d.Cols : (i+1)*d.Cols]
		oi := out.Data[i*out.Cols : (i+1)*out.Cols]
		for k := 0; k < d.Cols; k++ {
			a := ai[k]
			if a == 0 {
				continue
			}
			bk := other.Data[k*other.Cols : (k+1)*other.Cols]
			for j := 0; j < other.Cols; j++ {
				oi[j] += a * bk[j]
			}
		}
	}
	return out
}

// FrobeniusNorm returns sqrt(sum of squared entries).
func (d *Dense) FrobeniusNorm() float64 {
	var sum float64
	for _, v := range d.Data {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sub returns d - other, element-wise.
func (d *Dense) Sub(other *Dense) *Dense {
	if d.Rows != other.Rows || d.Cols != other.Cols {
		panic("kernel: Sub shape mismatch")
	}
	out := NewDense(d.Rows, d.Cols)
	for i := range d.Data {
		out.Data[i] = d.Data[i] - other.Data[i]
	}
	return out
}

// GatherRows selects rows (in order, with repetition allowed) into a new
// Dense of shape len(rows) x d.Cols.
func (d *Dense) GatherRows(rows []int) *Dense {
	out := NewDense(len(rows), d.Cols)
	for i, r := range rows {
		copy(out.Row(i), d.Row(r))
	}
	return out
}

// AddInPlace accumulates other into d, in place.
func (d *Dense) AddInPlace(other *Dense) {
	if d.Rows != other.Rows || d.Cols != other.Cols {
		panic("kernel: AddInPlace shape mismatch")
	}
	for i := range d.Data {
		d.Data[i] += other.Data[i]
	}
}
