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

// Package conv2d lowers a 2-D convolution to the gemm package's six-loop
// engine: filters are pre-packed once into packA's layout, and the
// image is packed on the fly into packB by a custom pack2Dimg routine that
// walks each output position's receptive-field window directly out of the
// (possibly padded) input tensor.
package conv2d

import "github.com/corewavelabs/blisfmm/gemm"

// Image is an input tensor of shape (W0, H0, D0) stored HWC row-major:
// Data[(y*W0+x)*D0+c].
type Image[T gemm.Real] struct {
	Data       []T
	W0, H0, D0 int
}

// At returns the channel value at (x, y, c), or zero if (x, y) falls
// outside [0, W0) x [0, H0) -- the convolution's implicit zero padding.
func (img Image[T]) At(x, y, c int) T {
	if x < 0 || x >= img.W0 || y < 0 || y >= img.H0 {
		var zero T
		return zero
	}
	return img.Data[(y*img.W0+x)*img.D0+c]
}

// Geometry holds the conv2d call's geometry and derives the
// output extents and GEMM-equivalent (m, n, k).
type Geometry struct {
	W0, H0, D0 int // input
	W1, H1, D1 int // filter
	Stride, Pad int
}

// M is the GEMM-equivalent output-channel dimension (d1).
func (g Geometry) M() int { return g.D1 }

// NX, NY are the output spatial extents.
func (g Geometry) NX() int { return (g.W0-g.W1+2*g.Pad)/g.Stride + 1 }
func (g Geometry) NY() int { return (g.H0-g.H1+2*g.Pad)/g.Stride + 1 }

// N is the GEMM-equivalent output position count (nx*ny).
func (g Geometry) N() int { return g.NX() * g.NY() }

// K is the GEMM-equivalent reduction dimension (w1*h1*d0).
func (g Geometry) K() int { return g.W1 * g.H1 * g.D0 }

// Validate panics (domain error) if the geometry yields non-positive
// output extents.
func (g Geometry) Validate() {
	if g.NX() <= 0 || g.NY() <= 0 {
		panic("conv2d: geometry yields non-positive output extent")
	}
	if g.D1 <= 0 || g.K() <= 0 {
		panic("conv2d: non-positive channel or reduction dimension")
	}
}
