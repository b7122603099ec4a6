// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hzr

import (
	"github.com/cosnicolaou/hzr/internal/bitstream"
	"github.com/cosnicolaou/hzr/internal/crc32c"
	"github.com/cosnicolaou/hzr/internal/huffman"
	"github.com/cosnicolaou/hzr/internal/rle"
)

// Encode compresses in and returns a newly allocated artifact sized
// exactly to the encoded length.
func Encode(in []byte) ([]byte, error) {
	out := make([]byte, MaxCompressedSize(len(in)))
	n, err := EncodeInto(in, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// EncodeInto compresses in into out, which must be at least
// MaxCompressedSize(len(in)) bytes, and returns the number of bytes
// written. EncodeInto never retains in or out beyond the call.
func EncodeInto(in, out []byte) (int, error) {
	if out == nil || (in == nil && len(in) != 0) {
		return 0, ErrInvalidArgument
	}
	if len(out) < HeaderSize {
		return 0, ErrInvalidArgument
	}

	w := bitstream.NewWriter(out)
	w.WriteBits(uint32(len(in)), 32)
	w.ForceFlush()
	if w.Failed {
		return 0, ErrInvalidArgument
	}

	pos := 0
	for pos < len(in) {
		blockSize := nextBlockSize(len(in) - pos)
		if err := encodeBlock(w, in[pos:pos+blockSize]); err != nil {
			return 0, err
		}
		pos += blockSize
	}
	return w.BytePos(), nil
}

// encodeBlock encodes a single block (at most MaxBlockSize bytes) at the
// writer's current (byte-aligned) position, choosing COPY, HUFF_RLE or
// FILL per spec.md §4.7.
func encodeBlock(w *bitstream.Writer, in []byte) error {
	blockStart := w.BytePos()

	var symbols [huffman.NumSymbols]huffman.SymbolInfo
	histogram(in, &symbols)

	if onlySingleCode(&symbols) {
		return encodeFill(w, in)
	}

	// Reserve room for the block header; it is rewritten once the body's
	// size and CRC are known.
	if w.Remaining() < BlockHeaderSize {
		return encodeCopy(w, blockStart, in)
	}
	w.WriteBits(0, 16)
	w.WriteBits(0, 32)
	w.WriteBits(0, 8)
	bodyStart := w.BytePos()

	if !huffman.Build(&symbols, w) || w.Failed {
		w.Rewind(blockStart)
		return encodeCopy(w, blockStart, in)
	}

	for pos := 0; pos < len(in); {
		b := in[pos]
		if b == 0 {
			n := rle.ScanZeroRun(in, pos)
			if n == 1 {
				emit(w, &symbols[0])
			} else {
				sym, extra := rle.TierFor(n)
				emit(w, &symbols[sym])
				w.WriteBits(extra, rle.ExtraBits[sym])
			}
			pos += n
		} else {
			emit(w, &symbols[b])
			pos++
		}
		if w.Failed {
			w.Rewind(blockStart)
			return encodeCopy(w, blockStart, in)
		}
	}
	w.ForceFlush()

	bodyEnd := w.BytePos()
	encodedSize := bodyEnd - bodyStart
	if w.Failed || encodedSize >= MaxBlockSize {
		w.Rewind(blockStart)
		return encodeCopy(w, blockStart, in)
	}

	crc := crc32c.Checksum(w.Bytes()[bodyStart:bodyEnd])
	writeBlockHeader(w, blockStart, encodedSize, crc, ModeHuffRLE)
	return nil
}

func emit(w *bitstream.Writer, s *huffman.SymbolInfo) {
	w.WriteBits(s.Code, s.Bits)
}

// writeBlockHeader rewrites the 7-byte header at blockStart without
// disturbing the writer's current (post-body) position.
func writeBlockHeader(w *bitstream.Writer, blockStart, encodedSize int, crc uint32, mode byte) {
	buf := w.Bytes()
	buf[blockStart] = byte(encodedSize - 1)
	buf[blockStart+1] = byte((encodedSize - 1) >> 8)
	buf[blockStart+2] = byte(crc)
	buf[blockStart+3] = byte(crc >> 8)
	buf[blockStart+4] = byte(crc >> 16)
	buf[blockStart+5] = byte(crc >> 24)
	buf[blockStart+6] = mode
}

func encodeCopy(w *bitstream.Writer, blockStart int, in []byte) error {
	if w.Remaining() < BlockHeaderSize+len(in) {
		return ErrInvalidArgument
	}
	crc := crc32c.Checksum(in)
	w.WriteBits(0, 16)
	w.WriteBits(0, 32)
	w.WriteBits(0, 8)
	w.ForceFlush()
	copy(w.Bytes()[w.BytePos():], in)
	w.Rewind(w.BytePos() + len(in))
	writeBlockHeader(w, blockStart, len(in), crc, ModeCopy)
	return nil
}

func encodeFill(w *bitstream.Writer, in []byte) error {
	if w.Remaining() < BlockHeaderSize+1 {
		return ErrInvalidArgument
	}
	blockStart := w.BytePos()
	fill := byte(0)
	if len(in) > 0 {
		fill = in[0]
	}
	crc := crc32c.Checksum(in[:min1(len(in), 1)])
	w.WriteBits(0, 16)
	w.WriteBits(0, 32)
	w.WriteBits(uint32(ModeFill), 8)
	w.WriteBits(uint32(fill), 8)
	w.ForceFlush()
	writeBlockHeader(w, blockStart, 1, crc, ModeFill)
	return nil
}

func min1(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// histogram computes, for a block of input data, the frequency of each of
// the 261 symbols: literal bytes, and the five zero-run tiers for runs of
// two or more zeros (spec.md §4.6 / §9's Histogram).
func histogram(in []byte, symbols *[huffman.NumSymbols]huffman.SymbolInfo) {
	for pos := 0; pos < len(in); {
		b := in[pos]
		if b == 0 {
			n := rle.ScanZeroRun(in, pos)
			if n == 1 {
				symbols[0].Count++
			} else {
				sym, _ := rle.TierFor(n)
				symbols[sym].Count++
			}
			pos += n
		} else {
			symbols[b].Count++
			pos++
		}
	}
}

// onlySingleCode reports whether the histogram uses at most one distinct
// "code" in the sense of spec.md §4.7: the literal-0 encoding and every
// zero-run tier are coalesced into a single code, since they all
// ultimately represent runs of the zero byte. A block that uses only one
// code (a uniform non-zero byte, or an all-zero buffer of any length) is
// better served by FILL than by building a Huffman tree over it.
func onlySingleCode(symbols *[huffman.NumSymbols]huffman.SymbolInfo) bool {
	usedCodes := 0
	hasZeros := false
	nonZeroLiterals := 0
	for k := 0; k < huffman.NumSymbols; k++ {
		if symbols[k].Count <= 0 {
			continue
		}
		if k == 0 || k >= rle.NumLiterals {
			hasZeros = true
		} else {
			nonZeroLiterals++
		}
		usedCodes = nonZeroLiterals
		if hasZeros {
			usedCodes++
		}
		if usedCodes > 1 {
			return false
		}
	}
	return usedCodes == 1
}
