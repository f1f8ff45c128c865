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

package conv2d

import "github.com/corewavelabs/blisfmm/gemm"

// PrepackFilters packs a (d1 x k) row-major filter matrix (k = w1*h1*d0,
// one row per output channel, receptive-field-major within a row: index
// (x*h1+y)*d0+c) into PACK_MR-wide, k-contiguous panels exactly once,
// ahead of any engine call, since filters are assumed pre-packed into
// packA (the conv engine does not pack A on the fly).
func PrepackFilters[T gemm.Real](filters []T, g Geometry, mr int) []T {
	k := g.K()
	d1 := g.D1
	panels := (d1 + mr - 1) / mr
	dst := make([]T, panels*k*mr)
	pack := gemm.DefaultPackA[T](filters, k, mr)
	return pack(dst, 0, 0, d1, k)
}

// packA returns a PackAFunc closing over a buffer already produced by
// PrepackFilters. Conv2D configures the engine so the whole filter fits in
// a single MC x KC tile (MC >= d1, KC >= k), so every call site always
// asks for the full range; this is checked rather than assumed silently.
func packA[T gemm.Real](packed []T, d1, k int) gemm.PackAFunc[T] {
	return func(_ []T, rowStart, colStart, mTile, kTile int) []T {
		if rowStart != 0 || colStart != 0 || mTile != d1 || kTile != k {
			panic("conv2d: Config.MC/KC too small to hold the whole filter in one tile")
		}
		return packed
	}
}

// packB returns a PackBFunc implementing pack2Dimg: for each of up
// to NR output positions in the requested panel, it walks the w1 x h1 x d0
// receptive window out of img, writing zero for any window element that
// falls in the zero-padded border.
func packB[T gemm.Real](img Image[T], g Geometry) gemm.PackBFunc[T] {
	nx, h1, d0 := g.NX(), g.H1, g.D0
	s, p := g.Stride, g.Pad
	return func(dst []T, kStart, colStart, kTile, nCols int) []T {
		nr := len(dst) / kTile
		for j := 0; j < nr; j++ {
			if j >= nCols {
				for kk := 0; kk < kTile; kk++ {
					dst[kk*nr+j] = 0
				}
				continue
			}
			pos := colStart + j
			x0 := (pos%nx)*s - p
			y0 := (pos/nx)*s - p
			for kk := 0; kk < kTile; kk++ {
				kidx := kStart + kk
				dx := kidx / (h1 * d0)
				rem := kidx % (h1 * d0)
				dy := rem / d0
				c := rem % d0
				dst[kk*nr+j] = img.At(x0+dx, y0+dy, c)
			}
		}
		return dst
	}
}
