// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cosnicolaou/bwtzip/internal/arith"
	"github.com/cosnicolaou/bwtzip/internal/bitstream"
	"github.com/cosnicolaou/bwtzip/internal/bzrle"
	"github.com/cosnicolaou/bwtzip/internal/mtf"
	"github.com/spf13/cobra"
)

// Wire-format parameters, kept in lockstep with the unexported constants
// in pipeline.go; inspect needs them to walk the same block framing
// without depending on the root package's internal details.
const (
	inspectBlockSize          = 1 << 24
	inspectPrimaryIdxBits     = 24
	inspectBZRLESymbolBits    = 16
	inspectBZRLESentinelA     = 0
	inspectBZRLESentinelB     = 256
	inspectArithBitsPerSymbol = 16
	inspectArithMaxSymbol     = 256
)

func newInspectCommand() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "decode just the BWT block framing of a compressed file (primary indices, block sizes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(input)
			if err != nil {
				return err
			}
			defer closeIn()
			return inspect(input, in)
		},
	}
	cmd.Flags().StringVarP(&input, "in", "i", "", "input file, omit for stdin")
	return cmd
}

// inspect undoes the arithmetic-coding, BZRLE and MTF stages of name to
// recover the raw BWT-block stream (widxBits of primary index followed
// by the block's last column), then walks that framing directly — no
// Inverse, no reassembled original bytes — printing each block's primary
// index and byte length.
func inspect(name string, src io.Reader) error {
	arithStage, err := arith.NewDecoder(src, inspectArithBitsPerSymbol, inspectArithMaxSymbol)
	if err != nil {
		return err
	}
	bzrleStage := bzrle.NewDecoder(arithStage, inspectBZRLESymbolBits, inspectBZRLESentinelA, inspectBZRLESentinelB)
	mtfStage := mtf.NewDecoder(bzrleStage)

	in := bitstream.New()
	in.AttachReader(mtfStage)

	fmt.Fprintf(os.Stdout, "=== %v ===\n", name)
	fmt.Fprintf(os.Stdout, "Block, Primary, Size\n")
	block := 0
	for {
		v, n := in.ReadNBitsU64(inspectPrimaryIdxBits)
		if n == 0 {
			break
		}
		if n < inspectPrimaryIdxBits {
			return fmt.Errorf("%s: truncated primary index in block %d", name, block)
		}
		size := 0
		for size < inspectBlockSize {
			_, cnt := in.ReadNBits(8)
			if cnt == 0 {
				break
			}
			if cnt < 8 {
				return fmt.Errorf("%s: truncated trailing byte in block %d", name, block)
			}
			size++
		}
		if size == 0 {
			return fmt.Errorf("%s: primary index with no block bytes in block %d", name, block)
		}
		fmt.Fprintf(os.Stdout, "% 8d   : % 12d - % 12d\n", block, v, size)
		block++
		if size < inspectBlockSize {
			break
		}
	}
	return nil
}
