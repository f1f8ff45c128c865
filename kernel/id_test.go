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

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func lowRankMatrix(m, n, rank int, seed int64) *Dense {
	rng := rand.New(rand.NewSource(seed))
	u := NewDense(m, rank)
	v := NewDense(rank, n)
	for i := range u.Data {
		u.Data[i] = rng.NormFloat64()
	}
	for i := range v.Data {
		v.Data[i] = rng.NormFloat64()
	}
	return u.Mul(v)
}

func TestFixedRankReconstructsExactLowRankBlock(t *testing.T) {
	Kab := lowRankMatrix(20, 12, 4, 1)
	skels, proj := FixedRank(Kab, 4)
	require.Len(t, skels, 4)
	require.Equal(t, 4, proj.Rows)
	require.Equal(t, 12, proj.Cols)

	approx := reconstructFromSkels(Kab, skels, proj)
	resid := Kab.Sub(approx).FrobeniusNorm() / Kab.FrobeniusNorm()
	require.Less(t, resid, 1e-8)
}

func TestAdaptiveSignalsFailureWhenRankInsufficient(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	Kab := NewDense(10, 10)
	for i := range Kab.Data {
		Kab.Data[i] = rng.NormFloat64()
	}
	// A full-rank random matrix can't be compressed to rank 1 within a
	// tight tolerance.
	skels, proj := Adaptive(Kab, 1, 1e-9)
	require.Nil(t, skels)
	require.Nil(t, proj)
}

func TestAdaptiveSucceedsOnLowRankBlock(t *testing.T) {
	Kab := lowRankMatrix(15, 9, 3, 3)
	skels, proj := Adaptive(Kab, 9, 1e-6)
	require.NotEmpty(t, skels)
	require.LessOrEqual(t, len(skels), 9)
	approx := reconstructFromSkels(Kab, skels, proj)
	resid := Kab.Sub(approx).FrobeniusNorm() / Kab.FrobeniusNorm()
	require.Less(t, resid, 1e-6)
}

func reconstructFromSkels(Kab *Dense, skels []int, proj *Dense) *Dense {
	skelBlock := NewDense(Kab.Rows, len(skels))
	for col, s := range skels {
		for i := 0; i < Kab.Rows; i++ {
			skelBlock.Set(i, col, Kab.At(i, s))
		}
	}
	return skelBlock.Mul(proj)
}
