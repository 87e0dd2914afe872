// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bwtzip

import (
	"io"

	"github.com/cosnicolaou/bwtzip/internal/arith"
	"github.com/cosnicolaou/bwtzip/internal/bwt"
	"github.com/cosnicolaou/bwtzip/internal/bzrle"
	"github.com/cosnicolaou/bwtzip/internal/mtf"
)

// NewDecompressor chains the inverse pipeline — arithmetic decoding,
// BZRLE, MTF, then BWT — on top of src, and returns the outermost stage.
// Reading it to exhaustion reproduces the original bytes.
func NewDecompressor(src io.Reader) (io.Reader, error) {
	arithStage, err := arith.NewDecoder(src, arithBitsPerSymbol, arithMaxSymbol)
	if err != nil {
		return nil, err
	}
	bzrleStage := bzrle.NewDecoder(arithStage, bzrleSymbolBits, bzrleSentinelA, bzrleSentinelB)
	mtfStage := mtf.NewDecoder(bzrleStage)
	bwtStage, err := bwt.NewDecoder(mtfStage, blockSize, primaryIdxBits)
	if err != nil {
		return nil, err
	}
	return bwtStage, nil
}

// Decompress reads src to completion and writes the decompressed stream
// to dst. An entirely empty src produces zero output bytes.
func Decompress(dst io.Writer, src io.Reader) error {
	empty, full, err := peekNonEmpty(src)
	if err != nil {
		return err
	}
	if empty {
		return nil
	}
	stage, err := NewDecompressor(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, stage); err != nil {
		return &IOError{Err: err}
	}
	return nil
}
