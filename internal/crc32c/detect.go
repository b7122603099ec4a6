// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package crc32c

import "golang.org/x/sys/cpu"

// detectAccel inspects the CPU feature flags exposed by golang.org/x/sys/cpu
// to decide whether a hardware CRC32C instruction (x86 SSE 4.2 `crc32`, or
// ARMv8 `crc32cx`) is available. This mirrors the feature-detection idiom
// spec.md §4.2/§5 calls for: a process-wide, read-only flag computed
// idempotently on first use.
func detectAccel() {
	accelAvailable = cpu.X86.HasSSE42 || cpu.ARM64.HasCRC32
}
