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

// Config bundles the engine Config with the constraint conv2d imposes on
// it: the whole pre-packed filter set must fit in one MC x KC tile, since
// filters are packed once up front rather than re-packed per IC/PC tile.
type Config struct {
	Engine gemm.Config
}

// DefaultConfig derives an engine Config whose MC/KC are sized to the
// geometry's (d1, k) so PrepackFilters's single-tile assumption holds.
func DefaultConfig(g Geometry) Config {
	cfg := gemm.DefaultConfig()
	cfg.MC = roundUp(g.D1, cfg.MR)
	cfg.KC = g.K()
	return Config{Engine: cfg}
}

func roundUp(a, b int) int { return ((a + b - 1) / b) * b }

// Run computes the convolution C[oc, pos] = sum over the receptive field
// of A[oc, ...] * B[...], lowered to a GEMM of shape (m=d1, n=nx*ny,
// k=w1*h1*d0). filters is (d1 x k) row-major; out is (d1 x
// n) row-major with leading dimension n.
func Run[T gemm.Real](cfg Config, img Image[T], filters []T, g Geometry, out []T) {
	g.Validate()
	cfg.Engine.Validate()

	m, n, k := g.M(), g.N(), g.K()
	if cfg.Engine.MC < m || cfg.Engine.KC < k {
		panic("conv2d: Config.Engine.MC/KC must be >= (d1, k) to hold the pre-packed filter in one tile")
	}

	packed := PrepackFilters[T](filters, g, cfg.Engine.MR)
	pA := packA[T](packed, m, k)
	pB := packB[T](img, g)

	gemm.Run[T](cfg.Engine, m, n, k, pA, pB, out, n, nil)
}
