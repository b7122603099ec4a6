// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/spf13/cobra"

	"github.com/cosnicolaou/hzr"
)

var decodeOutput string

func init() {
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "", "output file or s3 path, omit for stdout")
}

var decodeCmd = &cobra.Command{
	Use:   "decode <input>",
	Short: "verify then decompress an HZR artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rd, size, err := openFileOrURL(ctx, args[0])
		if err != nil {
			return err
		}
		defer rd.Close()

		in, err := ioutil.ReadAll(rd)
		if err != nil {
			return err
		}

		decodedSize, err := hzr.Verify(in)
		if err != nil {
			return fmt.Errorf("refusing to decode, artifact failed verification: %w", err)
		}

		out := make([]byte, decodedSize)
		if _, err := hzr.DecodeInto(in, out); err != nil {
			return err
		}

		wr, closeWriter, err := createFileOrStdout(ctx, decodeOutput)
		if err != nil {
			return err
		}
		progressWr, done := withProgress(wr, size)
		defer done()
		if _, err := progressWr.Write(out); err != nil {
			return err
		}
		return closeWriter()
	},
}
