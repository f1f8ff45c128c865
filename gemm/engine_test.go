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

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func referenceMatmul(m, n, k int, a []float32, lda int, b []float32, ldb int) []float32 {
	c := make([]float32, m*n)
	for i := 0; i < m; i++ {
		for kk := 0; kk < k; kk++ {
			av := a[i*lda+kk]
			if av == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				c[i*n+j] += av * b[kk*ldb+j]
			}
		}
	}
	return c
}

func randomMatrix(rng *rand.Rand, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = rng.Float32()*2 - 1
	}
	return out
}

func requireCloseRelative(t *testing.T, want, got []float32, tol float64) {
	t.Helper()
	var num, den float64
	for i := range want {
		diff := float64(want[i]) - float64(got[i])
		num += diff * diff
		den += float64(want[i]) * float64(want[i])
	}
	if den == 0 {
		den = 1
	}
	rel := num / den
	require.Lessf(t, rel, tol*tol, "relative error %g exceeds tolerance %g", rel, tol)
}

// TestGEMM64SingleThread checks a small single-threaded product against a
// reference triple loop.
func TestGEMM64SingleThread(t *testing.T) {
	const m, n, k = 64, 64, 64
	rng := rand.New(rand.NewSource(1))
	a := randomMatrix(rng, m*k)
	b := randomMatrix(rng, k*n)
	want := referenceMatmul(m, n, k, a, k, b, n)

	cfg := DefaultConfig()
	c := make([]float32, m*n)
	Run[float32](cfg, m, n, k, DefaultPackA[float32](a, k, cfg.MR), DefaultPackB[float32](b, n, cfg.NR), c, n, nil)

	requireCloseRelative(t, want, c, 1e-5)
}

// TestGEMM1024MultiThread runs a larger product across a non-trivial
// (jc=2,pc=1,ic=2,jr=1) communicator shape and checks it against a serial
// reference.
func TestGEMM1024MultiThread(t *testing.T) {
	const m, n, k = 1024, 1024, 1024
	rng := rand.New(rand.NewSource(2))
	a := randomMatrix(rng, m*k)
	b := randomMatrix(rng, k*n)
	want := referenceMatmul(m, n, k, a, k, b, n)

	cfg := DefaultConfig()
	cfg.JCNt, cfg.PCNt, cfg.ICNt, cfg.JRNt = 2, 1, 2, 1
	c := make([]float32, m*n)
	Run[float32](cfg, m, n, k, DefaultPackA[float32](a, k, cfg.MR), DefaultPackB[float32](b, n, cfg.NR), c, n, nil)

	requireCloseRelative(t, want, c, 1e-5)
}

// TestGEMMMultiplePCGroups exercises a non-trivial PCNt shape, where
// distinct PC groups pack disjoint K-slabs into distinct pack-B buffers and
// accumulate into the same C tile under tileLocks.
func TestGEMMMultiplePCGroups(t *testing.T) {
	const m, n, k = 256, 256, 256
	rng := rand.New(rand.NewSource(9))
	a := randomMatrix(rng, m*k)
	b := randomMatrix(rng, k*n)
	want := referenceMatmul(m, n, k, a, k, b, n)

	cfg := DefaultConfig()
	cfg.KC = 64
	cfg.JCNt, cfg.PCNt, cfg.ICNt, cfg.JRNt = 1, 4, 1, 1
	c := make([]float32, m*n)
	Run[float32](cfg, m, n, k, DefaultPackA[float32](a, k, cfg.MR), DefaultPackB[float32](b, n, cfg.NR), c, n, nil)

	requireCloseRelative(t, want, c, 1e-5)
}

// TestGEMMCornerTiles exercises the macro-kernel's corner-handling path
// with dimensions not divisible by MR/NR.
func TestGEMMCornerTiles(t *testing.T) {
	const m, n, k = 37, 53, 29
	rng := rand.New(rand.NewSource(3))
	a := randomMatrix(rng, m*k)
	b := randomMatrix(rng, k*n)
	want := referenceMatmul(m, n, k, a, k, b, n)

	cfg := DefaultConfig()
	cfg.MC, cfg.NC, cfg.KC = 16, 16, 16
	c := make([]float32, m*n)
	Run[float32](cfg, m, n, k, DefaultPackA[float32](a, k, cfg.MR), DefaultPackB[float32](b, n, cfg.NR), c, n, nil)

	requireCloseRelative(t, want, c, 1e-5)
}

// TestGEMMMultipleKSlabsAccumulate exercises the semiring-vs-fused slab
// transition by forcing KC smaller than k.
func TestGEMMMultipleKSlabsAccumulate(t *testing.T) {
	const m, n, k = 40, 40, 200
	rng := rand.New(rand.NewSource(4))
	a := randomMatrix(rng, m*k)
	b := randomMatrix(rng, k*n)
	want := referenceMatmul(m, n, k, a, k, b, n)

	cfg := DefaultConfig()
	cfg.KC = 32
	c := make([]float32, m*n)
	Run[float32](cfg, m, n, k, DefaultPackA[float32](a, k, cfg.MR), DefaultPackB[float32](b, n, cfg.NR), c, n, nil)

	requireCloseRelative(t, want, c, 1e-5)
}

func TestConfigValidateRejectsStrassen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseStrassen = true
	require.Panics(t, func() { cfg.Validate() })
}

func TestConfigValidateRejectsBadThreadShape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JCNt = 0
	require.Panics(t, func() { cfg.Validate() })
}

// TestEpilogueAppliedOnceOnFinalSlab uses dimensions not divisible by
// MR/NR so both the full-tile and corner-tile paths invoke the epilogue,
// and checks every element is doubled exactly once -- a strided,
// out-of-bounds-reaching epilogue would corrupt neighboring tiles instead.
func TestEpilogueAppliedOnceOnFinalSlab(t *testing.T) {
	const m, n, k = 21, 22, 50
	rng := rand.New(rand.NewSource(5))
	a := randomMatrix(rng, m*k)
	b := randomMatrix(rng, k*n)
	want := referenceMatmul(m, n, k, a, k, b, n)

	var calls int
	cfg := DefaultConfig()
	cfg.KC = 8
	c := make([]float32, m*n)
	Run[float32](cfg, m, n, k, DefaultPackA[float32](a, k, cfg.MR), DefaultPackB[float32](b, n, cfg.NR), c, n,
		func(tile []float32, rows, cols, ldc int) {
			calls++
			for i := 0; i < rows; i++ {
				row := tile[i*ldc : i*ldc+cols]
				for j := range row {
					row[j] *= 2
				}
			}
		})

	require.Greater(t, calls, 0)
	for i := range want {
		require.InDelta(t, float64(want[i])*2, float64(c[i]), 1e-3)
	}
}
