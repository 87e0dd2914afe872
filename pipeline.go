// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bwtzip implements a lossless byte compressor composing the
// bzip2 family of transforms: Burrows-Wheeler Transform, Move-To-Front,
// bijective run-length encoding of zeros, and adaptive arithmetic coding.
// Unlike the real bzip2 wire format, this is a bespoke, non-interoperable
// frame layout (no magic numbers, no Huffman tables, no CRC).
package bwtzip

import (
	"bytes"
	"io"
)

// Wire-format parameters. These are invariants of the bwtzip frame, not
// user-tunable knobs, so they are unexported constants rather than
// constructor arguments; compressing and decompressing with different
// values is simply a different, incompatible format.
const (
	blockSize          = 1 << 24
	primaryIdxBits     = 24
	bzrleSymbolBits    = 16
	bzrleSentinelA     = 0
	bzrleSentinelB     = 256
	arithBitsPerSymbol = 16
	arithMaxSymbol     = 256
)

// identityBridge re-threads a single already-consumed peek byte back in
// front of the remainder of a source, giving every Compress/Decompress
// call a uniform io.Reader to attach the first real pipeline stage to,
// regardless of whether the caller's source had anything to offer.
func identityBridge(peeked []byte, rest io.Reader) io.Reader {
	if len(peeked) == 0 {
		return rest
	}
	return io.MultiReader(bytes.NewReader(peeked), rest)
}

// peekNonEmpty reports whether src is empty by reading one byte from it.
// When src is not empty it also returns a Reader that reproduces the full
// original stream, peeked byte included.
func peekNonEmpty(src io.Reader) (empty bool, full io.Reader, err error) {
	first := make([]byte, 1)
	n, rerr := src.Read(first)
	if n == 0 {
		if rerr != nil && rerr != io.EOF {
			return true, nil, &IOError{Err: rerr}
		}
		return true, nil, nil
	}
	return false, identityBridge(first[:n], src), nil
}
