// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io/ioutil"

	"github.com/spf13/cobra"

	"github.com/cosnicolaou/hzr"
)

var encodeOutput string

func init() {
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "output file or s3 path, omit for stdout")
}

var encodeCmd = &cobra.Command{
	Use:   "encode <input>",
	Short: "compress a file to an HZR artifact",
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

		encoded, err := hzr.Encode(in)
		if err != nil {
			return err
		}

		wr, closeWriter, err := createFileOrStdout(ctx, encodeOutput)
		if err != nil {
			return err
		}
		progressWr, done := withProgress(wr, size)
		defer done()
		if _, err := progressWr.Write(encoded); err != nil {
			return err
		}
		return closeWriter()
	},
}
