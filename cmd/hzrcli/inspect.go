// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"

	"github.com/grailbio/base/must"
	"github.com/spf13/cobra"
	"v.io/x/lib/cmd/flagvar"

	"github.com/cosnicolaou/hzr"
)

var inspectFlags struct {
	Verbose bool `cmd:"verbose,false,'print every block header, not just a summary'"`
}

var inspectFlagSet = flag.NewFlagSet("inspect", flag.ContinueOnError)

func init() {
	must.Nil(flagvar.RegisterFlagsInStruct(inspectFlagSet, "cmd", &inspectFlags, nil, nil))
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input> [flags]",
	Short: "print the master header and per-block headers of an artifact",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := inspectFlagSet.Parse(args[1:]); err != nil {
			return err
		}

		ctx := context.Background()
		rd, _, err := openFileOrURL(ctx, args[0])
		if err != nil {
			return err
		}
		defer rd.Close()

		in, err := ioutil.ReadAll(rd)
		if err != nil {
			return err
		}

		return inspectArtifact(args[0], in, inspectFlags.Verbose)
	},
}

// inspectArtifact walks the same header structure hzr.Verify checks, but
// prints each field instead of only reporting pass/fail.
func inspectArtifact(name string, in []byte, verbose bool) error {
	decodedSize, err := hzr.Verify(in)
	if err != nil {
		return fmt.Errorf("%v: %w", name, err)
	}
	fmt.Printf("=== %v ===\n", name)
	fmt.Printf("decoded size : %d\n", decodedSize)
	fmt.Printf("artifact size: %d\n", len(in))

	if !verbose {
		return nil
	}

	pos := hzr.HeaderSize
	blockIndex := 0
	remaining := decodedSize
	fmt.Printf("block, mode, encoded size, crc\n")
	for remaining > 0 {
		if pos+hzr.BlockHeaderSize > len(in) {
			break
		}
		header := in[pos : pos+hzr.BlockHeaderSize]
		size := int(header[0]) | int(header[1])<<8
		crc := uint32(header[2]) | uint32(header[3])<<8 | uint32(header[4])<<16 | uint32(header[5])<<24
		mode := header[6]
		fmt.Printf("% 6d   % 6d   % 12d   %#08x\n", blockIndex, mode, size+1, crc)

		blockSize := remaining
		if blockSize > hzr.MaxBlockSize {
			blockSize = hzr.MaxBlockSize
		}
		switch mode {
		case hzr.ModeFill:
			pos += hzr.BlockHeaderSize + 1
		default:
			pos += hzr.BlockHeaderSize + size + 1
		}
		remaining -= blockSize
		blockIndex++
	}
	return nil
}
