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

// macroKernel is the jr/ir loop: it walks NR-wide column panels of packB
// and MR-wide row panels of packA sharded by the worker's jr_id, invoking
// MicroKernel for every MR x NR tile of the mTile x nTile region. An
// undersized corner tile is computed into a zero-initialized scratch and
// the ib x jb top-left submatrix is copied into C (+= when pc>0, = otherwise);
// the epilogue, when present, is then applied directly to that same ib x jb
// region of C (strided by ldc), so it never touches neighboring tiles.
func macroKernel[T Real](cfg Config, k int, packA, packB []T, c []T, ldc int, mTile, nTile int, jrID, jrNt int, aux Aux[T]) {
	mr, nr := cfg.MR, cfg.NR

	for jStart := jrID * nr; jStart < nTile; jStart += jrNt * nr {
		jb := min(nr, nTile-jStart)
		bPanel := packB[jStart/nr*k*nr:]

		for iStart := 0; iStart < mTile; iStart += mr {
			ib := min(mr, mTile-iStart)
			aPanel := packA[iStart/mr*k*mr:]

			localAux := aux
			localAux.IB, localAux.JB = ib, jb

			if ib == mr && jb == nr {
				cTile := c[iStart*ldc+jStart:]
				MicroKernel[T](k, mr, nr, aPanel, bPanel, cTile, ldc, &localAux)
				continue
			}

			scratch := make([]T, mr*nr)
			scratchAux := localAux
			scratchAux.PC = 0 // scratch always starts from zero
			scratchAux.IsLast = false
			MicroKernel[T](k, mr, nr, aPanel, bPanel, scratch, nr, &scratchAux)

			for i := 0; i < ib; i++ {
				cRow := c[(iStart+i)*ldc+jStart : (iStart+i)*ldc+jStart+jb]
				sRow := scratch[i*nr : i*nr+jb]
				if aux.PC == 0 {
					copy(cRow, sRow)
				} else {
					for j := 0; j < jb; j++ {
						cRow[j] += sRow[j]
					}
				}
			}
			if aux.IsLast && aux.Epilogue != nil {
				aux.Epilogue(c[iStart*ldc+jStart:], ib, jb, ldc)
			}
		}
	}
}
