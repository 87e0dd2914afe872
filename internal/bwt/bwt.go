// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bwt implements the Burrows-Wheeler Transform and its inverse,
// adapted to cyclic rotations via "double-and-filter" over package sais,
// plus the fixed-width-primary-index block framing that puts BWT blocks
// on the wire.
package bwt

import (
	"io"

	"github.com/cosnicolaou/bwtzip/internal/bitstream"
	"github.com/cosnicolaou/bwtzip/internal/sais"
	"github.com/cosnicolaou/bwtzip/internal/xerrors"
)

// Transform computes the BWT of block: the last column of the
// lexicographically sorted matrix of all cyclic rotations of block, plus
// the primary index (the row containing the un-rotated input).
//
// Cyclic order is obtained by "double-and-filter": block is concatenated
// with itself, SA-IS finds the suffix array of the doubled string, and
// only indices strictly less than len(block) are kept, in the order
// SA-IS reveals them — exactly the lexicographic order of block's cyclic
// rotations.
func Transform(block []byte) (last []byte, primary int) {
	n := len(block)
	if n == 0 {
		return nil, 0
	}
	if n == 1 {
		return append([]byte(nil), block...), 0
	}
	doubled := make([]int, 2*n)
	for i := range doubled {
		doubled[i] = int(block[i%n]) + 1
	}
	sa := sais.Build(doubled)
	last = make([]byte, 0, n)
	for _, p := range sa {
		if p >= n {
			continue
		}
		if p == 0 {
			primary = len(last)
		}
		last = append(last, block[(p-1+n)%n])
	}
	return last, primary
}

// Inverse reconstructs the original block from its last column and
// primary index, via LF-mapping: bucket-sort last to find, for each row,
// the row whose last-column byte is that row's predecessor, then walk
// that mapping n times starting from the primary index.
func Inverse(last []byte, primary int) []byte {
	n := len(last)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return append([]byte(nil), last...)
	}
	var counts [256]int
	for _, b := range last {
		counts[b]++
	}
	var starts [256]int
	sum := 0
	for v := 0; v < 256; v++ {
		starts[v] = sum
		sum += counts[v]
	}
	lfMap := make([]int, n)
	var occurrence [256]int
	for j, b := range last {
		i := starts[b] + occurrence[b]
		occurrence[b]++
		lfMap[i] = j
	}
	out := make([]byte, n)
	cur := lfMap[primary]
	for i := 0; i < n; i++ {
		out[i] = last[cur]
		cur = lfMap[cur]
	}
	return out
}

// readBlock reads up to len(buf) bytes from r, looping past short reads,
// and stops cleanly at EOF; the returned count may be less than len(buf)
// only at end of stream.
func readBlock(r io.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
	return total, nil
}

// Encoder chunks an upstream byte source into blocks of size up to
// blockSize, BWT-transforms each, and frames it on the wire as
// widxBits bits of primary index followed by the raw transformed bytes,
// left un-padded between blocks.
type Encoder struct {
	upstream  io.Reader
	blockSize int
	widxBits  uint

	out *bitstream.Stream
	buf []byte
	eof bool
	err error
}

// NewEncoder returns an Encoder with the given block size and primary
// index width; 2^widxBits must be >= blockSize so every primary index
// fits.
func NewEncoder(upstream io.Reader, blockSize int, widxBits uint) (*Encoder, error) {
	if blockSize <= 0 {
		return nil, xerrors.ParameterViolation("bwt: block size must be positive")
	}
	if widxBits >= 64 || uint64(blockSize) > (uint64(1)<<widxBits) {
		return nil, xerrors.ParameterViolation("bwt: 2^W_idx must be >= block size")
	}
	return &Encoder{
		upstream:  upstream,
		blockSize: blockSize,
		widxBits:  widxBits,
		out:       bitstream.New(),
		buf:       make([]byte, blockSize),
	}, nil
}

func (e *Encoder) fillOneBlock() {
	n, err := readBlock(e.upstream, e.buf)
	if err != nil {
		e.err = &xerrors.IOError{Err: err}
		e.eof = true
		return
	}
	if n == 0 {
		e.eof = true
		return
	}
	last, primary := Transform(e.buf[:n])
	e.out.WriteNBitsU64(e.widxBits, uint64(primary))
	for _, b := range last {
		e.out.WriteByte(b)
	}
	if n < e.blockSize {
		e.eof = true
	}
}

// Read implements io.Reader.
func (e *Encoder) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	want := uint(len(p)) * 8
	for e.out.BitsInStream() < want && !e.eof {
		e.fillOneBlock()
	}
	n, _ := e.out.Read(p)
	if n == 0 {
		if e.err != nil {
			return 0, e.err
		}
		return 0, io.EOF
	}
	return n, nil
}

// Decoder reverses Encoder's block framing: it reads widxBits of primary
// index, then up to blockSize raw transformed bytes, inverts each block,
// and concatenates the results.
//
// Blocks are written back to back with no byte-alignment padding between
// them, so whenever widxBits isn't a multiple of 8 the boundary between the
// last real data bit and the stream's final, necessarily byte-aligned pad
// bits falls in the middle of a physical byte. The decoder tracks
// leftoverBits, the cumulative misalignment contributed by the primary
// index headers seen so far (block payloads are always a whole number of
// bytes and never shift it), so it can tell a short trailing read of
// leftover pad bits apart from a genuinely truncated stream.
type Decoder struct {
	blockSize int
	widxBits  uint

	in            *bitstream.Stream
	pending       []byte
	blocksDecoded uint
	leftoverBits  uint
	done          bool
	err           error
}

// NewDecoder mirrors NewEncoder's parameters.
func NewDecoder(upstream io.Reader, blockSize int, widxBits uint) (*Decoder, error) {
	if blockSize <= 0 {
		return nil, xerrors.ParameterViolation("bwt: block size must be positive")
	}
	if widxBits >= 64 || uint64(blockSize) > (uint64(1)<<widxBits) {
		return nil, xerrors.ParameterViolation("bwt: 2^W_idx must be >= block size")
	}
	in := bitstream.New()
	in.AttachReader(upstream)
	return &Decoder{blockSize: blockSize, widxBits: widxBits, in: in}, nil
}

// wantTrailingPad is the number of zero pad bits the encoder appends after
// the true final data bit of the stream, given the misalignment carried
// over from the last completed block's primary-index headers. It is 0
// exactly when the stream so far is already byte aligned.
func wantTrailingPad(leftoverBits uint) uint {
	return (8 - leftoverBits) % 8
}

func (d *Decoder) fillOneBlock() {
	v, n := d.in.ReadNBitsU64(d.widxBits)
	if n == 0 {
		if d.leftoverBits != 0 {
			d.err = xerrors.FramingMismatch("bwt: stream ended before its expected trailing pad bits")
		}
		d.done = true
		return
	}
	if n < d.widxBits {
		// A short read here is only legitimate if it is exactly the
		// trailing pad left over from byte-packing the previous block's
		// final byte, not a truncated primary index for a new block.
		if n != wantTrailingPad(d.leftoverBits) {
			d.err = xerrors.SymbolUnderflow("bwt: truncated primary index")
		}
		d.done = true
		return
	}
	primary := int(v)
	d.blocksDecoded++
	d.leftoverBits = (d.blocksDecoded * d.widxBits) % 8

	block := make([]byte, 0, d.blockSize)
	for i := 0; i < d.blockSize; i++ {
		b, cnt := d.in.ReadNBits(8)
		switch {
		case cnt == 8:
			block = append(block, b)
			continue
		case cnt == 0:
			if d.leftoverBits != 0 {
				d.err = xerrors.FramingMismatch("bwt: stream ended before its expected trailing pad bits")
				d.done = true
				return
			}
		default:
			// Short read of 1..7 bits: the stream's trailing pad, spliced
			// onto the true last data byte's final bit-packed position,
			// not a genuinely truncated byte — unless the count is wrong.
			if cnt != wantTrailingPad(d.leftoverBits) {
				d.err = xerrors.FramingMismatch("bwt: truncated final block byte")
				d.done = true
				return
			}
		}
		break
	}
	if len(block) == 0 {
		d.err = xerrors.FramingMismatch("bwt: primary index with no block bytes")
		d.done = true
		return
	}
	d.pending = append(d.pending, Inverse(block, primary)...)
	if len(block) < d.blockSize {
		d.done = true
		return
	}
	// A full-size block is ambiguous on its own: reading exactly
	// widxBits bits of a future primary index can spuriously succeed by
	// consuming nothing but the stream's trailing pad once widxBits <=
	// wantTrailingPad(leftoverBits). Peek a full byte ahead to resolve it
	// without consuming: a genuine next block always has at least 8 more
	// real bits queued up, since the pad is always shorter than a byte.
	_, peeked := d.in.PeekNBits(8)
	if peeked == 8 {
		return
	}
	if peeked != wantTrailingPad(d.leftoverBits) {
		d.err = xerrors.FramingMismatch("bwt: truncated final block byte")
	}
	d.done = true
}

// Read implements io.Reader.
func (d *Decoder) Read(p []byte) (int, error) {
	for len(d.pending) == 0 && !d.done {
		d.fillOneBlock()
	}
	if d.err != nil {
		return 0, d.err
	}
	if len(d.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}
