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

var verifyCmd = &cobra.Command{
	Use:   "verify <input>...",
	Short: "check artifact structure and block checksums without decoding",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		for _, name := range args {
			rd, _, err := openFileOrURL(ctx, name)
			if err != nil {
				return err
			}
			in, err := ioutil.ReadAll(rd)
			rd.Close()
			if err != nil {
				return err
			}
			decodedSize, err := hzr.Verify(in)
			if err != nil {
				return fmt.Errorf("%v: %w", name, err)
			}
			numBlocks := (decodedSize + hzr.MaxBlockSize - 1) / hzr.MaxBlockSize
			fmt.Printf("%v: OK, decodes to %d bytes in %d blocks\n", name, decodedSize, numBlocks)
		}
		return nil
	},
}
