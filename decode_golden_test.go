// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hzr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosnicolaou/hzr"
)

// The tests below pin the wire bytes that the block-framing rules fix on
// their own, independent of Huffman code assignment: the whole artifact for
// empty input, and the master header, mode byte, fill byte and total length
// of FILL blocks. The last test only checks that two distinct symbols never
// select FILL. Each test also round-trips its input.

func TestGoldenEmptyInput(t *testing.T) {
	encoded, err := hzr.Encode(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, encoded)
}

func TestGoldenUniformFillBlock(t *testing.T) {
	in := make([]byte, 300)
	for i := range in {
		in[i] = 0x42
	}
	encoded, err := hzr.Encode(in)
	require.NoError(t, err)

	// master header: decoded length 300, little-endian.
	require.Equal(t, []byte{0x2c, 0x01, 0x00, 0x00}, encoded[0:4])
	// block header: size field is unused for FILL (always 0 => size 1),
	// followed by the CRC32C of a single 0x42 byte, then mode FILL (2),
	// then the fill byte itself.
	require.Equal(t, byte(hzr.ModeFill), encoded[4+6])
	require.Equal(t, byte(0x42), encoded[4+7])
	require.Equal(t, hzr.HeaderSize+hzr.BlockHeaderSize+1, len(encoded))

	decoded, err := hzr.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, in, decoded)
}

func TestGoldenAllZeroFillBlock(t *testing.T) {
	in := make([]byte, 65536)
	encoded, err := hzr.Encode(in)
	require.NoError(t, err)
	require.Equal(t, hzr.HeaderSize+hzr.BlockHeaderSize+1, len(encoded))
	require.Equal(t, byte(hzr.ModeFill), encoded[4+6])
	require.Equal(t, byte(0x00), encoded[4+7])

	decoded, err := hzr.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, in, decoded)
}

func TestGoldenTwoDistinctBytesForcesHuffman(t *testing.T) {
	// Exactly two distinct non-zero byte values: onlySingleCode must be
	// false (two codes in use), so the block is encoded HUFF_RLE or COPY,
	// never FILL.
	in := make([]byte, 1000)
	for i := range in {
		if i%2 == 0 {
			in[i] = 0x01
		} else {
			in[i] = 0x02
		}
	}
	encoded, err := hzr.Encode(in)
	require.NoError(t, err)
	require.NotEqual(t, byte(hzr.ModeFill), encoded[4+6])

	decoded, err := hzr.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, in, decoded)
}
