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

// Decode decompresses in, which must be a well-formed HZR artifact, and
// returns a newly allocated buffer holding the decoded bytes.
func Decode(in []byte) ([]byte, error) {
	decodedSize, err := Verify(in)
	if err != nil {
		return nil, err
	}
	out := make([]byte, decodedSize)
	if _, err := DecodeInto(in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeInto decompresses in into out, which must be at least as large as
// the decoded length encoded in in's master header (discoverable via
// Verify), and returns the number of bytes written.
func DecodeInto(in, out []byte) (int, error) {
	if in == nil || len(in) < HeaderSize {
		return 0, StructuralError("artifact shorter than the master header")
	}
	r := bitstream.NewReader(in)
	decodedSize := int(r.ReadBitsChecked(32))
	if r.Failed || decodedSize < 0 {
		return 0, StructuralError("truncated master header")
	}
	if len(out) < decodedSize {
		return 0, ErrBufferTooSmall
	}
	r.AlignToByte()

	outPos := 0
	for outPos < decodedSize {
		blockSize := nextBlockSize(decodedSize - outPos)
		n, err := decodeBlock(r, out[outPos:outPos+blockSize])
		if err != nil {
			return 0, err
		}
		outPos += n
	}
	return outPos, nil
}

// decodeBlock decodes a single block at r's current (byte-aligned)
// position into out, which must be exactly the decoded size of that block.
func decodeBlock(r *bitstream.Reader, out []byte) (int, error) {
	header := r.ReadBitsChecked(16)
	crc := r.ReadBitsChecked(32)
	mode := r.ReadBitsChecked(8)
	if r.Failed {
		return 0, StructuralError("truncated block header")
	}
	encodedSize := int(header) + 1

	switch mode {
	case ModeCopy:
		if encodedSize != len(out) {
			return 0, StructuralError("COPY block size does not match decoded size")
		}
		body := r.PeekBytes(encodedSize)
		if body == nil {
			return 0, StructuralError("COPY body runs past end of artifact")
		}
		if crc32c.Checksum(body) != crc {
			return 0, StructuralError("COPY block checksum mismatch")
		}
		copy(out, body)
		r.AdvanceBytesChecked(encodedSize)
		if r.Failed {
			return 0, StructuralError("failed to advance past COPY body")
		}
		return len(out), nil

	case ModeFill:
		fillByte := r.ReadBitsChecked(8)
		if r.Failed {
			return 0, StructuralError("truncated FILL byte")
		}
		var sample [1]byte
		if len(out) > 0 {
			sample[0] = byte(fillByte)
		}
		n := 0
		if len(out) > 0 {
			n = 1
		}
		if crc32c.Checksum(sample[:n]) != crc {
			return 0, StructuralError("FILL block checksum mismatch")
		}
		for i := range out {
			out[i] = byte(fillByte)
		}
		return len(out), nil

	case ModeHuffRLE:
		bodyBytes := r.PeekBytes(encodedSize)
		if bodyBytes == nil {
			return 0, StructuralError("HUFF_RLE body runs past end of artifact")
		}
		if crc32c.Checksum(bodyBytes) != crc {
			return 0, StructuralError("HUFF_RLE block checksum mismatch")
		}
		body := r.Sub(encodedSize)
		if err := decodeHuffRLE(body, out); err != nil {
			return 0, err
		}
		r.AdvanceBytesChecked(encodedSize)
		if r.Failed {
			return 0, StructuralError("failed to advance past HUFF_RLE body")
		}
		return len(out), nil

	default:
		return 0, StructuralError("unrecognized block mode")
	}
}

// decodeHuffRLE decodes a HUFF_RLE block body (tree description followed by
// the symbol stream) into out, which must be exactly the block's decoded
// size.
func decodeHuffRLE(r *bitstream.Reader, out []byte) error {
	tree, ok := huffman.ReadTree(r)
	if !ok {
		return StructuralError("malformed Huffman tree description")
	}

	outPos := 0
	// The fast loop uses unchecked reads; it stops early enough that the
	// Reader's 4-byte look-ahead never reads outside the block body, mirroring
	// the reference decoder's in_fast_end threshold.
	fastEndByte := r.Len() - 10
	for outPos < len(out) && r.BytePos() < fastEndByte {
		symbol := tree.DecodeFast(r)
		n, ok := emitSymbol(symbol, r, out, outPos, true)
		if !ok {
			return StructuralError("symbol stream overruns decoded block size")
		}
		outPos += n
	}

	for outPos < len(out) {
		symbol, ok := tree.DecodeSlow(r)
		if !ok || r.Failed {
			return StructuralError("truncated symbol stream")
		}
		n, ok := emitSymbol(symbol, r, out, outPos, false)
		if !ok {
			return StructuralError("symbol stream overruns decoded block size")
		}
		outPos += n
	}

	if !r.AtEnd() {
		return StructuralError("trailing data after symbol stream")
	}
	return nil
}

// emitSymbol expands a single decoded symbol (a literal byte or a zero-run
// tier) into out at outPos, returning the number of bytes written. fast
// selects the unchecked or checked extra-bits read to match the caller's
// loop.
func emitSymbol(symbol int, r *bitstream.Reader, out []byte, outPos int, fast bool) (int, bool) {
	if symbol < rle.NumLiterals {
		if outPos >= len(out) {
			return 0, false
		}
		out[outPos] = byte(symbol)
		return 1, true
	}

	extraBits := rle.ExtraBits[symbol]
	var extra uint32
	if fast {
		extra = r.ReadBits(extraBits)
	} else {
		extra = r.ReadBitsChecked(extraBits)
		if r.Failed {
			return 0, false
		}
	}
	n := rle.RunLength(symbol, extra)
	if outPos+n > len(out) {
		return 0, false
	}
	row := out[outPos : outPos+n]
	for i := range row {
		row[i] = 0
	}
	return n, true
}
