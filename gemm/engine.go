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
	"sync"

	"github.com/corewavelabs/blisfmm/comm"
	"github.com/corewavelabs/blisfmm/packbuf"
)

// Run computes C := A*B (+ epilogue(C)) for an m x k A and k x n B, both
// addressed through the supplied pack functions, using the six-loop
// blocked engine driven by a fresh communicator tree built from
// cfg's thread counts. C is m x n, row-major with leading dimension ldc.
// epilogue, if non-nil, is applied once per MR x NR output tile on the
// final K-slab (by the micro-kernel for a full tile, by the macro-kernel
// after a corner tile's write-back), bounded to that tile's rows x cols
// region of C (strided by ldc) -- it must never assume tile is contiguous
// or extends past cols.
func Run[T Real](cfg Config, m, n, k int, packA PackAFunc[T], packB PackBFunc[T], c []T, ldc int, epilogue func(tile []T, rows, cols, ldc int)) {
	cfg.Validate()
	if m <= 0 || n <= 0 || k <= 0 {
		panic("gemm: non-positive matrix dimension")
	}

	buf := packbuf.New[T](cfg.KC, roundUp(cfg.MC, cfg.MR), roundUp(cfg.NC, cfg.NR), cfg.JCNt, cfg.PCNt, cfg.ICNt)
	root := comm.Construct(cfg.JCNt, cfg.PCNt, cfg.ICNt, cfg.JRNt)
	locks := newTileLocks()

	nThreads := cfg.NThreads()
	var wg sync.WaitGroup
	wg.Add(nThreads)
	for tid := 0; tid < nThreads; tid++ {
		go func(tid int) {
			defer wg.Done()
			w := comm.NewWorker(tid, root)
			runWorker(w, cfg, m, n, k, packA, packB, c, ldc, buf, locks, epilogue)
		}(tid)
	}
	wg.Wait()
}

func runWorker[T Real](
	w *comm.Worker,
	cfg Config,
	m, n, k int,
	packA PackAFunc[T],
	packB PackBFunc[T],
	c []T,
	ldc int,
	buf *packbuf.Buffers[T],
	locks *tileLocks,
	epilogue func(tile []T, rows, cols, ldc int),
) {
	jcNt, pcNt, icNt, jrNt := cfg.JCNt, cfg.PCNt, cfg.ICNt, cfg.JRNt
	kTilesTotal := ceilDiv(k, cfg.KC)
	mTilesTotal := ceilDiv(m, cfg.MC)

	// Loop 1: jc, sharded across jc_nt groups.
	for jcTile := w.JCID; jcTile*cfg.NC < n; jcTile += jcNt {
		jStart := jcTile * cfg.NC
		nTile := min(cfg.NC, n-jStart)
		nPanelsB := ceilDiv(nTile, cfg.NR)

		// Loop 2: pc, sharded across pc_nt groups.
		for pcTile := w.PCID; pcTile < kTilesTotal; pcTile += pcNt {
			kStart := pcTile * cfg.KC
			kTile := min(cfg.KC, k-kStart)
			isLastSlab := pcTile == kTilesTotal-1

			// Pack-B: distributed across the ic_jr residual, then
			// synchronized before any worker reads the shared panel.
			bBuf := buf.PanelB(w.JCID, w.PCID)
			for panel := w.ICJR; panel < nPanelsB; panel += icNt * jrNt {
				lo, hi := panel*kTile*cfg.NR, (panel+1)*kTile*cfg.NR
				colStart := jStart + panel*cfg.NR
				nCols := min(cfg.NR, nTile-panel*cfg.NR)
				packB(bBuf[lo:hi], kStart, colStart, kTile, nCols)
			}
			w.BarrierPackB()
			bPanels := bBuf[:nPanelsB*kTile*cfg.NR]

			// Loop 3: ic, sharded across ic_nt groups.
			for icTile := w.ICID; icTile < mTilesTotal; icTile += icNt {
				iStart := icTile * cfg.MC
				mTile := min(cfg.MC, m-iStart)

				// Pack-A: the MC x KC block in the (jc_id, ic_id) panel,
				// which this worker's JR lanes share.
				aBuf := buf.PanelA(w.JCID, w.ICID)
				aPanels := packA(aBuf, iStart, kStart, mTile, kTile)

				aux := Aux[T]{PC: pcTile, IsLast: isLastSlab}
				if isLastSlab {
					aux.Epilogue = epilogue
				}

				cTile := c[iStart*ldc+jStart:]

				if pcNt > 1 {
					mu := locks.get(iStart, jStart)
					mu.Lock()
					macroKernel[T](cfg, kTile, aPanels, bPanels, cTile, ldc, mTile, nTile, w.JRID, jrNt, aux)
					mu.Unlock()
				} else {
					macroKernel[T](cfg, kTile, aPanels, bPanels, cTile, ldc, mTile, nTile, w.JRID, jrNt, aux)
				}

				w.BarrierRound()
			}

			// Every IC group must finish reading this slab's packed B
			// before the next pc iteration repacks the same panel.
			w.BarrierPackB()
		}
	}
}
