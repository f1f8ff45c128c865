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

package comm

// Worker is a read-only coordinate identifying one thread's position in the
// communicator tree, computed once at the start of the parallel region by
// successive integer division down from the root.
//
// Two communicator levels matter for the engine's synchronization:
//
//   - PackBGroup spans every (ic_id, jr_id) pair for this worker's
//     (jc_id, pc_id): the threads that jointly pack one KC x NC slab of B
//     and must all see it complete before any of them reads it (pc_comm).
//   - RoundGroup spans only this worker's jr_id siblings at a fixed
//     (jc_id, pc_id, ic_id): the threads that jointly own one MC x KC
//     slab of A and must stay in lockstep across successive M-tile rounds
//     (ic_comm).
type Worker struct {
	TID int

	JCID, PCID, ICID, JRID int

	// ICJR is the thread's linear rank within its IC group (ic_id*jr_nt +
	// jr_id), used to stripe pack-B work across the JR lanes of a PC tile.
	ICJR int

	PackBGroup *Communicator
	RoundGroup *Communicator

	packBSense, roundSense bool
}

// NewWorker builds the Worker for thread tid under root, a tree built by
// Construct. tid must be in [0, root.NThreads).
func NewWorker(tid int, root *Communicator) *Worker {
	if tid < 0 || tid >= root.NThreads {
		panic("comm: tid out of range for communicator")
	}

	pcComm0 := root.Children[0]
	icComm0 := pcComm0.Children[0]
	jrNt := icComm0.Children[0].NThreads
	icNt := icComm0.NGroups
	pcNt := pcComm0.NGroups

	rem := tid
	jcID := rem / (pcNt * icNt * jrNt)
	rem %= pcNt * icNt * jrNt
	pcID := rem / (icNt * jrNt)
	rem %= icNt * jrNt
	icID := rem / jrNt
	jrID := rem % jrNt

	pcComm := root.Children[jcID]
	icComm := pcComm.Children[pcID]
	jrComm := icComm.Children[icID]

	return &Worker{
		TID:        tid,
		JCID:       jcID,
		PCID:       pcID,
		ICID:       icID,
		JRID:       jrID,
		ICJR:       icID*jrNt + jrID,
		PackBGroup: icComm,
		RoundGroup: jrComm,
	}
}

// BarrierPackB synchronizes every (ic_id, jr_id) worker sharing this
// worker's (jc_id, pc_id) on pack-B completion.
func (w *Worker) BarrierPackB() { w.PackBGroup.Barrier(&w.packBSense) }

// BarrierRound synchronizes this worker's jr_id siblings at a fixed
// (jc_id, pc_id, ic_id) between successive M-tile rounds,
// so that one lane can never begin repacking A while another is still
// reading the previous round's panel.
func (w *Worker) BarrierRound() { w.RoundGroup.Barrier(&w.roundSense) }
