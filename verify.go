// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hzr

import (
	"github.com/cosnicolaou/hzr/internal/bitstream"
	"github.com/cosnicolaou/hzr/internal/crc32c"
)

// Verify checks that in is a structurally well-formed HZR artifact -
// every block header is present, every mode byte is valid, and every
// block's CRC32C matches its encoded body - without building a Huffman
// tree or expanding any symbol. On success it returns the decoded length
// that DecodeInto will require the output buffer to hold.
//
// Verify is the cheap pass a caller can run before committing to a
// decode-sized allocation; it never returns a length larger than what a
// subsequent Decode would produce for the same input.
func Verify(in []byte) (int, error) {
	if in == nil || len(in) < HeaderSize {
		return 0, StructuralError("artifact shorter than the master header")
	}
	r := bitstream.NewReader(in)
	decodedSize := int(r.ReadBitsChecked(32))
	if r.Failed || decodedSize < 0 {
		return 0, StructuralError("truncated master header")
	}
	r.AlignToByte()

	remaining := decodedSize
	for remaining > 0 {
		blockSize := nextBlockSize(remaining)
		if err := verifyBlock(r, blockSize); err != nil {
			return 0, err
		}
		remaining -= blockSize
	}
	if !r.AtEnd() {
		return 0, StructuralError("trailing data after final block")
	}
	return decodedSize, nil
}

// verifyBlock checks a single block's header and CRC, advancing r past it.
func verifyBlock(r *bitstream.Reader, blockSize int) error {
	header := r.ReadBitsChecked(16)
	crc := r.ReadBitsChecked(32)
	mode := r.ReadBitsChecked(8)
	if r.Failed {
		return StructuralError("truncated block header")
	}
	encodedSize := int(header) + 1

	switch mode {
	case ModeCopy:
		if encodedSize != blockSize {
			return StructuralError("COPY block size does not match decoded size")
		}
		body := r.PeekBytes(encodedSize)
		if body == nil || crc32c.Checksum(body) != crc {
			return StructuralError("COPY block checksum mismatch")
		}
		r.AdvanceBytesChecked(encodedSize)

	case ModeFill:
		fillByte := r.ReadBitsChecked(8)
		if r.Failed {
			return StructuralError("truncated FILL byte")
		}
		var sample [1]byte
		n := 0
		if blockSize > 0 {
			sample[0] = byte(fillByte)
			n = 1
		}
		if crc32c.Checksum(sample[:n]) != crc {
			return StructuralError("FILL block checksum mismatch")
		}

	case ModeHuffRLE:
		body := r.PeekBytes(encodedSize)
		if body == nil || crc32c.Checksum(body) != crc {
			return StructuralError("HUFF_RLE block checksum mismatch")
		}
		r.AdvanceBytesChecked(encodedSize)

	default:
		return StructuralError("unrecognized block mode")
	}
	if r.Failed {
		return StructuralError("failed to advance past block body")
	}
	return nil
}
