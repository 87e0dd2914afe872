// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"cloudeng.io/errors"
	"github.com/cosnicolaou/bwtzip"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type flags struct {
	input      string
	output     string
	compress   bool
	decompress bool
	spinner    bool
}

func main() {
	var fl flags

	root := &cobra.Command{
		Use:   "bwtzip",
		Short: "bwtzip compresses and decompresses files with a BWT/MTF/BZRLE/arithmetic-coding pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(&fl)
		},
	}
	root.Flags().StringVarP(&fl.input, "in", "i", "", "input file, omit for stdin")
	root.Flags().StringVarP(&fl.output, "out", "o", "", "output file, omit for stdout")
	root.Flags().BoolVarP(&fl.compress, "compress", "c", false, "compress the input")
	root.Flags().BoolVarP(&fl.decompress, "decompress", "d", false, "decompress the input")
	root.Flags().BoolVar(&fl.spinner, "progress", true, "show an indeterminate progress spinner on a terminal")

	root.AddCommand(newInspectCommand())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func openInput(name string) (io.Reader, func() error, error) {
	if len(name) == 0 {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func createOutput(name string) (io.Writer, func() error, error) {
	if len(name) == 0 {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func run(fl *flags) error {
	if fl.compress == fl.decompress {
		return fmt.Errorf("exactly one of --compress or --decompress must be set")
	}

	in, closeIn, err := openInput(fl.input)
	if err != nil {
		return err
	}
	out, closeOut, err := createOutput(fl.output)
	if err != nil {
		return err
	}

	stop := maybeSpinner(fl, out)

	errs := &errors.M{}
	if fl.compress {
		errs.Append(bwtzip.Compress(out, in))
	} else {
		errs.Append(bwtzip.Decompress(out, in))
	}
	stop()

	errs.Append(closeIn())
	errs.Append(closeOut())
	return errs.Err()
}

// maybeSpinner writes an indeterminate progress spinner to stderr while
// out is a regular file (rather than stdout) and stderr is attached to a
// terminal. There is no known total size for a streaming, unsized input,
// so a byte-accurate bar isn't meaningful here.
func maybeSpinner(fl *flags, out io.Writer) func() {
	if !fl.spinner || out == io.Writer(os.Stdout) || !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		frames := `|/-\`
		i := 0
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				fmt.Fprint(os.Stderr, "\r")
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "\r%c", frames[i%len(frames)])
				i++
			}
		}
	}()
	return func() { close(done) }
}
