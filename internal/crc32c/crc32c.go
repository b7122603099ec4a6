// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package crc32c computes the CRC32C (Castagnoli polynomial 0x1EDC6F41,
// reflected, xor-out 0xFFFFFFFF) checksum used to protect each block's
// encoded body. It exposes a pure-Go, table-driven scalar baseline and
// transparently prefers the architecture-accelerated path already built
// into the standard library's hash/crc32 package (SSE 4.2 on x86, the
// crc32cx instruction on ARMv8) when the running CPU supports it.
package crc32c

import (
	"hash/crc32"
	"sync"
)

// table is the scalar, table-driven Castagnoli table, computed once.
var table = crc32.MakeTable(crc32.Castagnoli)

var (
	accelOnce      sync.Once
	accelAvailable bool
)

// Available reports whether the running CPU has a hardware-accelerated
// CRC32C path. The check runs at most once per process; any race on first
// access is benign because every caller computes the same answer.
func Available() bool {
	accelOnce.Do(detectAccel)
	return accelAvailable
}

// Checksum returns the CRC32C of buf. When the host CPU is detected to
// support hardware CRC32C, this delegates to hash/crc32's
// architecture-accelerated implementation; otherwise it falls back
// unconditionally to the scalar table-driven path. Both paths are
// bit-exact with each other for any input, including buffers too short to
// benefit from acceleration.
func Checksum(buf []byte) uint32 {
	if Available() {
		return crc32.Checksum(buf, table)
	}
	return ScalarChecksum(buf)
}

// ScalarChecksum computes the CRC32C using the pure-Go, table-driven
// implementation unconditionally, regardless of CPU feature detection.
// Used directly by tests that assert the accelerated and scalar paths
// agree.
func ScalarChecksum(buf []byte) uint32 {
	crc := ^uint32(0)
	for _, b := range buf {
		crc = table[byte(crc)^b] ^ (crc >> 8)
	}
	return ^crc
}
