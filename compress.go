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

// NewCompressor chains the forward pipeline — BWT, MTF, BZRLE, then
// adaptive arithmetic coding — on top of src, and returns the outermost
// stage. Reading it to exhaustion drains the entire compressed stream.
func NewCompressor(src io.Reader) (io.Reader, error) {
	bwtStage, err := bwt.NewEncoder(src, blockSize, primaryIdxBits)
	if err != nil {
		return nil, err
	}
	mtfStage := mtf.NewEncoder(bwtStage)
	bzrleStage := bzrle.NewEncoder(mtfStage, bzrleSymbolBits, bzrleSentinelA, bzrleSentinelB)
	arithStage, err := arith.NewEncoder(bzrleStage, arithBitsPerSymbol, arithMaxSymbol)
	if err != nil {
		return nil, err
	}
	return arithStage, nil
}

// Compress reads src to completion and writes the compressed stream to
// dst. An entirely empty src produces zero output bytes: the pipeline is
// never constructed, rather than being constructed and immediately
// flushing an EOF-only codeword.
func Compress(dst io.Writer, src io.Reader) error {
	empty, full, err := peekNonEmpty(src)
	if err != nil {
		return err
	}
	if empty {
		return nil
	}
	stage, err := NewCompressor(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, stage); err != nil {
		return &IOError{Err: err}
	}
	return nil
}
