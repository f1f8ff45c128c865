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
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGaussianKernelDiagonalIsOne(t *testing.T) {
	K := GaussianKernel{Points: [][]float64{{0, 0}, {1, 1}, {2, -1}}, Bandwidth: 1.0}
	for i := 0; i < K.Dim(); i++ {
		require.Equal(t, 1.0, K.At(i, i))
	}
}

func TestGaussianKernelSymmetric(t *testing.T) {
	K := GaussianKernel{Points: [][]float64{{0, 0}, {1, 2}, {-1, 3}, {4, 4}}, Bandwidth: 2.0}
	for i := 0; i < K.Dim(); i++ {
		for j := 0; j < K.Dim(); j++ {
			require.InDelta(t, K.At(i, j), K.At(j, i), 1e-15)
		}
	}
}

func TestGaussianKernelDecaysWithDistance(t *testing.T) {
	K := GaussianKernel{Points: [][]float64{{0, 0}, {1, 0}, {5, 0}}, Bandwidth: 1.0}
	near := K.At(0, 1)
	far := K.At(0, 2)
	require.Greater(t, near, far)
	require.Greater(t, near, 0.0)
	require.Less(t, far, 1e-3)
}

func TestGaussianKernelGatherMatchesAt(t *testing.T) {
	K := GaussianKernel{Points: [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, Bandwidth: 1.5}
	amap := []int{0, 2}
	bmap := []int{1, 3}
	g := K.Gather(amap, bmap)
	require.Equal(t, len(amap), g.Rows)
	require.Equal(t, len(bmap), g.Cols)
	for i, a := range amap {
		for j, b := range bmap {
			require.Equal(t, K.At(a, b), g.At(i, j))
		}
	}
}

func TestDenseSPDWrapsAndGathers(t *testing.T) {
	m := NewDense(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				m.Set(i, j, 4)
			} else {
				m.Set(i, j, 1)
			}
		}
	}
	d := DenseSPD{M: m}
	require.Equal(t, 3, d.Dim())
	require.Equal(t, 4.0, d.At(0, 0))

	g := d.Gather([]int{0, 1}, []int{2})
	require.Equal(t, 2, g.Rows)
	require.Equal(t, 1, g.Cols)
	require.Equal(t, 1.0, g.At(0, 0))
	require.Equal(t, 1.0, g.At(1, 0))
}

func TestGaussianKernelBandwidthWidensSpread(t *testing.T) {
	pts := [][]float64{{0, 0}, {3, 0}}
	narrow := GaussianKernel{Points: pts, Bandwidth: 0.5}
	wide := GaussianKernel{Points: pts, Bandwidth: 5.0}
	require.Less(t, narrow.At(0, 1), wide.At(0, 1))
	require.False(t, math.IsNaN(wide.At(0, 1)))
}
