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

// PackAFunc fills (or, for a caller that keeps A permanently pre-packed,
// simply indexes into) the packA panel for the MC x KC block starting at
// (rowStart, colStart). It returns the slice the macro-kernel should read
// from — ordinarily dst itself, but a pre-packed caller (conv2d's filters)
// may return a direct view into its own buffer and ignore dst.
type PackAFunc[T Real] func(dst []T, rowStart, colStart, mTile, kTile int) []T

// PackBFunc fills the packB panel for the KC x NC block starting at
// (kStart, colStart) and returns dst.
type PackBFunc[T Real] func(dst []T, kStart, colStart, kTile, nTile int) []T

// DefaultPackA packs row-major A (lda-strided) into PACK_MR-wide,
// K-contiguous micro-panels.
func DefaultPackA[T Real](a []T, lda, mr int) PackAFunc[T] {
	return func(dst []T, rowStart, colStart, mTile, kTile int) []T {
		panels := ceilDiv(mTile, mr)
		for p := 0; p < panels; p++ {
			base := rowStart + p*mr
			active := min(mr, mTile-p*mr)
			out := dst[p*kTile*mr : (p+1)*kTile*mr]
			for kk := 0; kk < kTile; kk++ {
				for i := 0; i < mr; i++ {
					if i < active {
						out[kk*mr+i] = a[(base+i)*lda+colStart+kk]
					} else {
						out[kk*mr+i] = 0
					}
				}
			}
		}
		return dst
	}
}

// DefaultPackB packs row-major B (ldb-strided) into PACK_NR-wide,
// K-contiguous micro-panels.
func DefaultPackB[T Real](b []T, ldb, nr int) PackBFunc[T] {
	return func(dst []T, kStart, colStart, kTile, nTile int) []T {
		panels := ceilDiv(nTile, nr)
		for q := 0; q < panels; q++ {
			base := colStart + q*nr
			active := min(nr, nTile-q*nr)
			out := dst[q*kTile*nr : (q+1)*kTile*nr]
			for kk := 0; kk < kTile; kk++ {
				row := (kStart + kk) * ldb
				for j := 0; j < nr; j++ {
					if j < active {
						out[kk*nr+j] = b[row+base+j]
					} else {
						out[kk*nr+j] = 0
					}
				}
			}
		}
		return dst
	}
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func roundUp(a, b int) int { return ceilDiv(a, b) * b }
