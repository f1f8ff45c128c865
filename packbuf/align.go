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

// Package packbuf implements the engine's packed-panel scratch allocator:
// two process-scoped, aligned buffers (packA, packB) addressed by
// worker coordinate so that per-worker slices never overlap.
package packbuf

// AlignSize is the minimum element alignment the engine requires of
// packA/packB so that micro-kernel loads land on cache-line boundaries.
const AlignSize = 64

// alignedByteLen rounds n up to the next multiple of AlignSize bytes.
func alignedByteLen(n int) int {
	if r := n % AlignSize; r != 0 {
		n += AlignSize - r
	}
	return n
}
