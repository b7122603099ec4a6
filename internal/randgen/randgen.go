// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package randgen generates reproducible pseudorandom byte buffers for
// exercising the codec's round-trip, bound-tightness and fallback
// properties across a range of entropy and zero-density profiles, from
// all-zero through uniformly random.
package randgen

import "math/rand/v2"

// Profile controls the statistical shape of a generated buffer.
type Profile struct {
	// ZeroDensity is the probability, in [0, 1], that any given byte is
	// zero. Values near 1 exercise the zero-run tiers; 0 produces buffers
	// with no zero runs at all.
	ZeroDensity float64

	// AlphabetSize bounds the non-zero byte values used, in [1, 255]. A
	// small alphabet mimics indexed or quantized data; 255 produces
	// uniformly distributed high-entropy data that should fall back to
	// COPY once Huffman coding cannot beat it.
	AlphabetSize int
}

// Uniform is a high-entropy profile: every non-zero byte value equally
// likely, and no zero bytes at all.
var Uniform = Profile{ZeroDensity: 0, AlphabetSize: 255}

// Sparse is a zero-heavy profile typical of the codec's intended use:
// mostly zero with occasional small non-zero values.
var Sparse = Profile{ZeroDensity: 0.9, AlphabetSize: 16}

// Generator produces reproducible pseudorandom buffers from a fixed seed,
// so a test run and a subsequent debugging session see identical data.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator seeded deterministically from seed.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Bytes returns a newly allocated buffer of n bytes drawn according to p.
func (g *Generator) Bytes(n int, p Profile) []byte {
	out := make([]byte, n)
	for i := range out {
		if p.ZeroDensity > 0 && g.rng.Float64() < p.ZeroDensity {
			continue
		}
		alphabet := p.AlphabetSize
		if alphabet <= 0 {
			alphabet = 255
		}
		out[i] = byte(1 + g.rng.IntN(alphabet))
	}
	return out
}

// ZeroRuns returns a buffer built from runCount runs, each a random length
// in [minRun, maxRun] of the zero byte separated by a single random
// non-zero byte, exercising the full span of zero-run tiers.
func (g *Generator) ZeroRuns(runCount, minRun, maxRun int) []byte {
	var out []byte
	for i := 0; i < runCount; i++ {
		n := minRun
		if maxRun > minRun {
			n += g.rng.IntN(maxRun - minRun + 1)
		}
		out = append(out, make([]byte, n)...)
		out = append(out, byte(1+g.rng.IntN(255)))
	}
	return out
}
