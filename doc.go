// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package hzr implements the HZR codec: a byte-oriented, lossless
// compression format combining canonical Huffman coding with a five-tier
// run-length encoding specialized for runs of the zero byte. It targets
// sparse or low-entropy buffers (vertex/index arrays, depth buffers,
// serialized game state) where a single-pass, allocation-light codec
// outperforms general-purpose deflate on decode speed at comparable
// ratios.
//
// Encode, Decode and Verify are one-shot, whole-buffer operations: there
// is no streaming API, no dictionary sharing across calls, and no
// parallel encode. All state is stack-local or lives in caller-provided
// buffers, so every entry point is safe to call concurrently from
// multiple goroutines as long as they operate on disjoint buffers.
package hzr
