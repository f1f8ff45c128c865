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

// Package main provides a diagnostic tool that prints the CPU features Go
// detects alongside the thread-communicator shape a gemm.Config would
// resolve to, so a misconfigured JC/PC/IC/JR shape is easy to spot before a
// long run.
package main

import (
	"flag"
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/corewavelabs/blisfmm/gemm"
)

func main() {
	jc := flag.Int("jc", 1, "JC loop thread count")
	pc := flag.Int("pc", 1, "PC loop thread count")
	ic := flag.Int("ic", 1, "IC loop thread count")
	jr := flag.Int("jr", 1, "JR loop thread count")
	flag.Parse()

	fmt.Printf("GOOS: %s\n", runtime.GOOS)
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("NumCPU: %d\n", runtime.NumCPU())
	fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Println()

	switch runtime.GOARCH {
	case "arm64":
		printARM64Features()
	case "amd64":
		printAMD64Features()
	}
	fmt.Println()

	cfg := gemm.DefaultConfig()
	cfg.JCNt, cfg.PCNt, cfg.ICNt, cfg.JRNt = *jc, *pc, *ic, *jr
	printCommunicatorShape(cfg)
}

func printCommunicatorShape(cfg gemm.Config) {
	fmt.Println("=== communicator shape ===")
	fmt.Printf("  JC: %d groups\n", cfg.JCNt)
	fmt.Printf("  PC: %d groups per JC group\n", cfg.PCNt)
	fmt.Printf("  IC: %d groups per PC group\n", cfg.ICNt)
	fmt.Printf("  JR: %d threads per IC group\n", cfg.JRNt)
	fmt.Printf("  total threads: %d\n", cfg.NThreads())
	if cfg.NThreads() > runtime.NumCPU() {
		fmt.Printf("  warning: total threads (%d) exceed NumCPU (%d); oversubscription likely\n", cfg.NThreads(), runtime.NumCPU())
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("  config rejected: %v\n", r)
		}
	}()
	cfg.Validate()
	fmt.Println("  config: valid")
}

func printARM64Features() {
	fmt.Println("=== golang.org/x/sys/cpu.ARM64 ===")
	fmt.Printf("  HasASIMD:    %v (NEON baseline)\n", cpu.ARM64.HasASIMD)
	fmt.Printf("  HasFP:       %v (Floating point)\n", cpu.ARM64.HasFP)
	fmt.Printf("  HasFPHP:     %v (FP16 scalar, ARMv8.2-A)\n", cpu.ARM64.HasFPHP)
	fmt.Printf("  HasASIMDHP:  %v (FP16 NEON, ARMv8.2-A)\n", cpu.ARM64.HasASIMDHP)
	fmt.Printf("  HasASIMDFHM: %v (FP16 FMA, ARMv8.4-A)\n", cpu.ARM64.HasASIMDFHM)
	fmt.Printf("  HasSVE:      %v (Scalable Vector Extension)\n", cpu.ARM64.HasSVE)
	fmt.Printf("  HasSVE2:     %v (SVE2)\n", cpu.ARM64.HasSVE2)
	fmt.Printf("  HasATOMICS:  %v (Large System Extensions)\n", cpu.ARM64.HasATOMICS)
}

func printAMD64Features() {
	fmt.Println("=== golang.org/x/sys/cpu.X86 ===")
	fmt.Printf("  HasAVX:      %v\n", cpu.X86.HasAVX)
	fmt.Printf("  HasAVX2:     %v\n", cpu.X86.HasAVX2)
	fmt.Printf("  HasAVX512F:  %v\n", cpu.X86.HasAVX512F)
	fmt.Printf("  HasAVX512BW: %v\n", cpu.X86.HasAVX512BW)
	fmt.Printf("  HasAVX512VL: %v\n", cpu.X86.HasAVX512VL)
	fmt.Printf("  HasFMA:      %v\n", cpu.X86.HasFMA)
	fmt.Printf("  HasSSE2:     %v\n", cpu.X86.HasSSE2)
	fmt.Printf("  HasSSE41:    %v\n", cpu.X86.HasSSE41)
	fmt.Printf("  HasSSE42:    %v\n", cpu.X86.HasSSE42)
}
