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

//go:build linux || darwin

package packbuf

import "golang.org/x/sys/unix"

// allocAlignedBytes returns n bytes of page-aligned (and therefore
// AlignSize-aligned, since the OS page size is always a multiple of 64)
// anonymous memory via mmap. An allocation error here is fatal.
func allocAlignedBytes(n int) []byte {
	if n == 0 {
		n = 1
	}
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		panic("packbuf: aligned scratch allocation failed: " + err.Error())
	}
	return b
}
