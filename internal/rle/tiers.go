// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package rle defines the five zero-run tiers used on top of the literal
// byte alphabet: a run of a single zero is always transmitted as the
// literal-0 symbol, and longer runs are transmitted as one of five tier
// symbols plus a tier-specific number of extra bits holding the run length
// relative to the tier's base length.
package rle

// NumLiterals is the number of single-byte literal symbols (0..255).
const NumLiterals = 256

// Tier symbols, numbered immediately after the 256 literals.
const (
	TwoZeros     = 256 // run of exactly 2 zeros, no extra bits
	UpTo6        = 257 // run of 3..6 zeros, 2 extra bits
	UpTo22       = 258 // run of 7..22 zeros, 4 extra bits
	UpTo278      = 259 // run of 23..278 zeros, 8 extra bits
	UpTo16662    = 260 // run of 279..16662 zeros, 14 extra bits
	NumSymbols   = 261
	MaxRunLength = 16662
)

// ExtraBits gives the number of extra bits following the tier symbol's
// code, indexed by symbol.
var ExtraBits = [NumSymbols]int{
	TwoZeros:  0,
	UpTo6:     2,
	UpTo22:    4,
	UpTo278:   8,
	UpTo16662: 14,
}

// Base gives the shortest run length representable by the tier, i.e. the
// decoded length is Base[symbol] + extra, where extra is read from
// ExtraBits[symbol] bits.
var Base = [NumSymbols]int{
	TwoZeros:  2,
	UpTo6:     3,
	UpTo22:    7,
	UpTo278:   23,
	UpTo16662: 279,
}

// TierFor returns the symbol and extra-bits value for a zero run of the
// given length. length must be in [2, MaxRunLength]; a length of 1 is
// never tiered (it is emitted as literal 0 by the caller).
func TierFor(length int) (symbol Symbol, extra uint32) {
	switch {
	case length == 2:
		return TwoZeros, 0
	case length <= 6:
		return UpTo6, uint32(length - Base[UpTo6])
	case length <= 22:
		return UpTo22, uint32(length - Base[UpTo22])
	case length <= 278:
		return UpTo278, uint32(length - Base[UpTo278])
	default:
		return UpTo16662, uint32(length - Base[UpTo16662])
	}
}

// Symbol is a 9-bit wire symbol: a literal byte value (0..255) or one of
// the five tier symbols above (256..260).
type Symbol = int

// ScanZeroRun returns the number of consecutive zero bytes starting at
// in[pos], capped at MaxRunLength so that the longest run fits in a single
// UpTo16662 token.
func ScanZeroRun(in []byte, pos int) int {
	limit := len(in) - pos
	if limit > MaxRunLength {
		limit = MaxRunLength
	}
	n := 1
	for n < limit && in[pos+n] == 0 {
		n++
	}
	return n
}

// RunLength decodes the total run length for a tier symbol given its extra
// bits value.
func RunLength(symbol Symbol, extra uint32) int {
	if symbol == TwoZeros {
		return 2
	}
	return Base[symbol] + int(extra)
}
