// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package randgen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosnicolaou/hzr/internal/randgen"
)

func TestDeterministic(t *testing.T) {
	a := randgen.New(42).Bytes(4096, randgen.Sparse)
	b := randgen.New(42).Bytes(4096, randgen.Uniform)
	require.NotEqual(t, a, b, "different profiles must diverge even from the same seed's first draw")

	c := randgen.New(42).Bytes(4096, randgen.Sparse)
	require.Equal(t, a, c, "same seed and profile must reproduce the same buffer")
}

func TestZeroDensityRoughlyHonored(t *testing.T) {
	buf := randgen.New(7).Bytes(100000, randgen.Profile{ZeroDensity: 0.9, AlphabetSize: 8})
	zeros := 0
	for _, b := range buf {
		if b == 0 {
			zeros++
		}
	}
	frac := float64(zeros) / float64(len(buf))
	require.InDelta(t, 0.9, frac, 0.02)
}

func TestZeroRunsProducesRuns(t *testing.T) {
	buf := randgen.New(1).ZeroRuns(10, 5, 50)
	require.NotEmpty(t, buf)
	nonZero := 0
	for _, b := range buf {
		if b != 0 {
			nonZero++
		}
	}
	require.Equal(t, 10, nonZero)
}
