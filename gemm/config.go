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

// Package gemm implements the six-loop blocked matrix engine: a
// BLIS-style GEMM driven by the comm/packbuf primitives, plus the Conv2D
// lowering's own B-panel packer hooks in the sibling conv2d package.
package gemm

import "fmt"

// Real is the element-kind constraint the engine is monomorphized over.
type Real interface {
	~float32 | ~float64
}

// Config holds the cache-blocking factors and communicator shape for one
// engine call. All fields are read once at engine entry.
type Config struct {
	MC, NC, KC int // L2/L3 blocking factors
	MR, NR     int // micro-kernel tile dimensions

	JCNt, PCNt, ICNt, JRNt int // thread counts; PCNt defaults to 1

	UseStrassen bool // any true value is a fatal unsupported-mode error
}

// DefaultConfig returns blocking factors tuned for a small-to-medium L2/L3
// hierarchy and a single-threaded communicator shape.
func DefaultConfig() Config {
	return Config{
		MC: 256, NC: 512, KC: 256,
		MR: 4, NR: 4,
		JCNt: 1, PCNt: 1, ICNt: 1, JRNt: 1,
	}
}

// Validate checks the configuration error and unsupported-mode conditions.
// It panics (fatal) rather than returning an error: these are not
// recoverable at the call site.
func (c Config) Validate() {
	if c.UseStrassen {
		panic("gemm: Strassen variant requested but not implemented")
	}
	if c.MC <= 0 || c.NC <= 0 || c.KC <= 0 || c.MR <= 0 || c.NR <= 0 {
		panic("gemm: non-positive blocking factor")
	}
	if c.JCNt < 1 || c.PCNt < 1 || c.ICNt < 1 || c.JRNt < 1 {
		panic(fmt.Sprintf("gemm: invalid thread configuration jc=%d pc=%d ic=%d jr=%d", c.JCNt, c.PCNt, c.ICNt, c.JRNt))
	}
}

// NThreads is the total thread count this configuration's communicator
// tree will contain.
func (c Config) NThreads() int { return c.JCNt * c.PCNt * c.ICNt * c.JRNt }
