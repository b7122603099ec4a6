// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command hzrcli encodes, decodes and inspects HZR artifacts. Input and
// output files may be local paths, s3:// paths, or (for input) http(s)://
// URLs.
package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff/v3"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"
)

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

var rootCmd = &cobra.Command{
	Use:   "hzrcli",
	Short: "encode, decode and inspect HZR artifacts",
}

func main() {
	rootCmd.AddCommand(encodeCmd, decodeCmd, verifyCmd, inspectCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("hzrcli: %v", err)
	}
}

// openFileOrURL opens name, which may be a local path, an s3:// path, or
// an http(s):// URL, retrying transient remote errors with an exponential
// backoff.
func openFileOrURL(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		var resp *http.Response
		op := func() error {
			r, err := http.Get(name)
			if err != nil {
				return err
			}
			resp = r
			return nil
		}
		if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)); err != nil {
			return nil, 0, err
		}
		return resp.Body, resp.ContentLength, nil
	}

	var size int64
	var rd io.Reader
	op := func() error {
		info, err := file.Stat(ctx, name)
		if err != nil {
			return err
		}
		f, err := file.Open(ctx, name)
		if err != nil {
			return err
		}
		size = info.Size()
		rd = f.Reader(ctx)
		return nil
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)); err != nil {
		return nil, 0, err
	}
	return ioutil.NopCloser(rd), size, nil
}

func createFileOrStdout(ctx context.Context, name string) (io.Writer, func() error, error) {
	if len(name) == 0 {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f.Writer(ctx), func() error { return f.Close(ctx) }, nil
}

// withProgress wraps w with a progress bar sized to total bytes, shown on
// stderr only when stdout is a terminal (so the bar never accompanies
// piped binary output).
func withProgress(w io.Writer, total int64) (io.Writer, func()) {
	if total <= 0 || !terminal.IsTerminal(int(os.Stdout.Fd())) {
		return w, func() {}
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()
	return io.MultiWriter(w, progressWriter{bar}), func() { fmt.Fprintln(os.Stderr) }
}

type progressWriter struct {
	bar *progressbar.ProgressBar
}

func (p progressWriter) Write(b []byte) (int, error) {
	p.bar.Add(len(b))
	return len(b), nil
}
