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

package packbuf

import "unsafe"

// Real is the element-kind constraint the engine is monomorphized over.
type Real interface {
	~float32 | ~float64
}

// Buffers holds one engine call's packA/packB scratch, sized as follows:
//
//	cap(packA) = KC * (PackMC+1) * jcNt * icNt
//	cap(packB) = KC * (PackNC+1) * jcNt * pcNt
//
// Worker slices are addressed by (jcID, icID) for A and (jcID, pcID) for B;
// the arithmetic below is the sole data-race-freedom guarantee for the
// engine and must not be changed independently of the sizing above. B is
// keyed by pcID as well as jcID because distinct PC groups pack disjoint
// K-slabs concurrently and must not share a panel.
type Buffers[T Real] struct {
	packA []T
	packB []T

	kc, packMC, packNC int
	jcNt, icNt, pcNt   int
}

// New allocates a packA/packB pair for a call with the given blocking
// factors and communicator shape. Allocation failure is fatal.
func New[T Real](kc, packMC, packNC, jcNt, pcNt, icNt int) *Buffers[T] {
	if kc <= 0 || packMC <= 0 || packNC <= 0 || jcNt <= 0 || pcNt <= 0 || icNt <= 0 {
		panic("packbuf: non-positive sizing parameter")
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))

	aLen := kc * (packMC + 1) * jcNt * icNt
	bLen := kc * (packNC + 1) * jcNt * pcNt

	aBytes := allocAlignedBytes(alignedByteLen(aLen * elemSize))
	bBytes := allocAlignedBytes(alignedByteLen(bLen * elemSize))

	return &Buffers[T]{
		packA:  unsafe.Slice((*T)(unsafe.Pointer(&aBytes[0])), aLen),
		packB:  unsafe.Slice((*T)(unsafe.Pointer(&bBytes[0])), bLen),
		kc:     kc,
		packMC: packMC,
		packNC: packNC,
		jcNt:   jcNt,
		icNt:   icNt,
		pcNt:   pcNt,
	}
}

// PanelA returns this worker's packA slice for group coordinate (jcID,
// icID): packA + ((jcID*icNt)+icID) * PackMC * KC, of length PackMC*KC.
func (b *Buffers[T]) PanelA(jcID, icID int) []T {
	off := ((jcID * b.icNt) + icID) * b.packMC * b.kc
	return b.packA[off : off+b.packMC*b.kc]
}

// PanelB returns this worker's packB slice for group coordinate (jcID,
// pcID): packB + ((jcID*pcNt)+pcID) * PackNC * KC, of length PackNC*KC.
func (b *Buffers[T]) PanelB(jcID, pcID int) []T {
	off := ((jcID * b.pcNt) + pcID) * b.packNC * b.kc
	return b.packB[off : off+b.packNC*b.kc]
}
