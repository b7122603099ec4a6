// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hzr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosnicolaou/hzr"
	"github.com/cosnicolaou/hzr/internal/randgen"
)

func roundTrip(t *testing.T, in []byte) {
	t.Helper()
	encoded, err := hzr.Encode(in)
	require.NoError(t, err)
	require.LessOrEqual(t, len(encoded), hzr.MaxCompressedSize(len(in)))

	decodedSize, err := hzr.Verify(encoded)
	require.NoError(t, err)
	require.Equal(t, len(in), decodedSize)

	decoded, err := hzr.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, in, decoded)
}

func TestRoundTripDegenerateInputs(t *testing.T) {
	cases := map[string][]byte{
		"nil":         nil,
		"empty":       {},
		"single-zero": {0},
		"single-one":  {1},
		"all-zero-small":  make([]byte, 5),
		"all-zero-block":  make([]byte, 65536),
		"all-ones-block":  bytesOf(1, 65536),
		"two-bytes":   {0, 0},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			roundTrip(t, in)
		})
	}
}

func bytesOf(v byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRoundTripAllLiteralBytes(t *testing.T) {
	in := make([]byte, 256)
	for i := range in {
		in[i] = byte(i)
	}
	roundTrip(t, in)
}

func TestRoundTripZeroRunTiers(t *testing.T) {
	g := randgen.New(1)
	in := g.ZeroRuns(20, 1, 20000)
	roundTrip(t, in)
}

func TestRoundTripSparseProfile(t *testing.T) {
	g := randgen.New(99)
	in := g.Bytes(3*65536+17, randgen.Sparse)
	roundTrip(t, in)
}

func TestRoundTripUniformFallsBackToCopy(t *testing.T) {
	g := randgen.New(7)
	in := g.Bytes(131072, randgen.Uniform)
	encoded, err := hzr.Encode(in)
	require.NoError(t, err)
	// High-entropy data cannot beat COPY's overhead; the artifact must never
	// grow past the bound a COPY-only encoding would establish.
	require.LessOrEqual(t, len(encoded), hzr.MaxCompressedSize(len(in)))
	roundTrip(t, in)
}

func TestRoundTripMultipleBlocks(t *testing.T) {
	g := randgen.New(3)
	in := g.Bytes(hzr.MaxBlockSize*3+12345, randgen.Sparse)
	roundTrip(t, in)
}

func TestIdempotentDoubleEncode(t *testing.T) {
	g := randgen.New(5)
	in := g.Bytes(10000, randgen.Sparse)
	encoded1, err := hzr.Encode(in)
	require.NoError(t, err)
	encoded2, err := hzr.Encode(in)
	require.NoError(t, err)
	require.Equal(t, encoded1, encoded2)

	// Encoding an artifact again and decoding that yields the artifact.
	doubled, err := hzr.Encode(encoded1)
	require.NoError(t, err)
	decoded, err := hzr.Decode(doubled)
	require.NoError(t, err)
	require.Equal(t, encoded1, decoded)
}

func TestMaxCompressedSizeIsTight(t *testing.T) {
	require.Equal(t, hzr.HeaderSize, hzr.MaxCompressedSize(0))
	require.Equal(t, hzr.HeaderSize+hzr.BlockHeaderSize+1, hzr.MaxCompressedSize(1))
	require.Equal(t, hzr.HeaderSize+hzr.BlockHeaderSize+hzr.MaxBlockSize, hzr.MaxCompressedSize(hzr.MaxBlockSize))
	require.Equal(t, hzr.HeaderSize+2*hzr.BlockHeaderSize+hzr.MaxBlockSize+1, hzr.MaxCompressedSize(hzr.MaxBlockSize+1))
}

func TestEmptyInputEncodesToBareHeader(t *testing.T) {
	encoded, err := hzr.Encode(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, encoded)
}

func TestVerifierDetectsBitFlip(t *testing.T) {
	g := randgen.New(11)
	in := g.Bytes(4096, randgen.Sparse)
	encoded, err := hzr.Encode(in)
	require.NoError(t, err)

	for _, byteIdx := range []int{hzr.HeaderSize, len(encoded) - 1} {
		corrupt := append([]byte(nil), encoded...)
		corrupt[byteIdx] ^= 0x01
		_, err := hzr.Verify(corrupt)
		require.Error(t, err)
		require.True(t, errors.Is(err, hzr.ErrStructural))
	}
}

func TestVerifierAcceptsValidArtifacts(t *testing.T) {
	g := randgen.New(13)
	for i := 0; i < 20; i++ {
		in := g.Bytes(i*137, randgen.Sparse)
		encoded, err := hzr.Encode(in)
		require.NoError(t, err)
		_, err = hzr.Verify(encoded)
		require.NoError(t, err)
	}
}

func TestDecodeIntoRejectsUndersizedBuffer(t *testing.T) {
	encoded, err := hzr.Encode(make([]byte, 100))
	require.NoError(t, err)
	out := make([]byte, 10)
	_, err = hzr.DecodeInto(encoded, out)
	require.ErrorIs(t, err, hzr.ErrBufferTooSmall)
}

func TestDecodeRejectsTruncatedArtifact(t *testing.T) {
	g := randgen.New(17)
	in := g.Bytes(5000, randgen.Sparse)
	encoded, err := hzr.Encode(in)
	require.NoError(t, err)
	_, err = hzr.Decode(encoded[:len(encoded)-1])
	require.Error(t, err)
	require.True(t, errors.Is(err, hzr.ErrStructural))
}

func TestEncodeIntoRejectsNilOutput(t *testing.T) {
	_, err := hzr.EncodeInto([]byte{1, 2, 3}, nil)
	require.ErrorIs(t, err, hzr.ErrInvalidArgument)
}

func TestStructuralErrorUnwrapsToSentinel(t *testing.T) {
	var structErr hzr.StructuralError
	_, err := hzr.Verify([]byte{1})
	require.True(t, errors.As(err, &structErr))
	require.NotEmpty(t, structErr.Error())
	require.True(t, errors.Is(err, hzr.ErrStructural))
}
