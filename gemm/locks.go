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

import "sync"

// tileLocks guards concurrent accumulation into the same C tile when
// PCNt > 1: distinct PC groups process disjoint K ranges that still target
// the same (iStart, jStart) output tile, so their accumulating writes must
// be serialized. When PCNt == 1 (the common case, and the default
// configuration) no locking occurs and this type is unused.
type tileLocks struct {
	mu    sync.Mutex
	locks map[[2]int]*sync.Mutex
}

func newTileLocks() *tileLocks {
	return &tileLocks{locks: make(map[[2]int]*sync.Mutex)}
}

func (t *tileLocks) get(iStart, jStart int) *sync.Mutex {
	key := [2]int{iStart, jStart}
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	return l
}
