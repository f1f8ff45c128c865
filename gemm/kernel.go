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

package gemm

// Aux is the macro->micro auxiliary descriptor: pc==0 signals the
// first K-slab (overwrite C); pc>0 means accumulate. IsLast marks the final
// slab, which is the only one that applies Epilogue (the "fused" kernel
// capability; the "semiring" capability is just pc==0's overwrite behavior
// on the plain MicroKernel).
type Aux[T Real] struct {
	PC       int
	JB, IB   int // actual active size of this tile, <= NR/MR at a corner
	BNext    []T // next B panel, for software-prefetch hints only
	IsLast   bool
	Epilogue func(tile []T, rows, cols, ldc int)
}

// MicroKernel computes tile[i,j] (+)= sum_k a[k*mr+i]*b[k*nr+j] for a
// contiguous mr x nr tile, honoring aux.PC for overwrite-vs-accumulate and,
// on the last slab, invoking aux.Epilogue bounded to the aux.IB x aux.JB
// active region of c (<=mr x nr at a corner tile) so the epilogue never
// touches elements outside its own tile. a and b are packed panels: a has
// k*mr elements laid out k-major/mr-contiguous, b has k*nr elements laid
// out k-major/nr-contiguous, matching the pack-A / pack-B panel layout. c is
// addressed as a dense mr x nr block with leading dimension ldc.
func MicroKernel[T Real](k, mr, nr int, a, b []T, c []T, ldc int, aux *Aux[T]) {
	acc := make([]T, mr*nr)
	for kk := 0; kk < k; kk++ {
		aRow := a[kk*mr : kk*mr+mr]
		bRow := b[kk*nr : kk*nr+nr]
		for i := 0; i < mr; i++ {
			av := aRow[i]
			if av == 0 {
				continue
			}
			accRow := acc[i*nr : i*nr+nr]
			for j := 0; j < nr; j++ {
				accRow[j] += av * bRow[j]
			}
		}
	}

	for i := 0; i < mr; i++ {
		cRow := c[i*ldc : i*ldc+nr]
		accRow := acc[i*nr : i*nr+nr]
		if aux.PC == 0 {
			copy(cRow, accRow)
		} else {
			for j := 0; j < nr; j++ {
				cRow[j] += accRow[j]
			}
		}
	}

	if aux.IsLast && aux.Epilogue != nil {
		aux.Epilogue(c, aux.IB, aux.JB, ldc)
	}
}
