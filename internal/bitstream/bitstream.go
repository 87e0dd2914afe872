// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bitstream implements the sub-byte FIFO buffer shared by every
// stage of the bwtzip transform pipeline. See https://en.wikipedia.org/wiki/Bzip2
// for the family of ideas this pipeline is built from; unlike that wire
// format, bwtzip's stages compose arbitrary bit-width fields rather than
// Huffman-coded bytes, so the buffer has to support interleaved writes,
// reads and bounded look-ahead at any bit granularity.
package bitstream

import "io"

// upstreamChunkSize is the number of bytes pulled from an attached upstream
// source at a time, per spec: reads are opaque to the caller and happen in
// fixed-size chunks.
const upstreamChunkSize = 1024

// Source is the pull-based byte contract every pipeline stage honors: on
// demand, produce up to len(p) bytes into p, returning the count actually
// produced. Zero means end-of-stream. Any io.Reader satisfies it.
type Source = io.Reader

// Stream is a FIFO of bits with three zones: a read-side partial byte (bits
// already dequeued from the most-recently consumed byte), a queue of fully
// packed bytes, and a write-side partial byte (bits accumulated toward the
// next packed byte). Bit ordering is MSB-first throughout: within every
// byte, the most significant bit is the oldest/leftmost.
//
// A Stream optionally owns an upstream Source (see AttachReader). When a
// read needs more bits than are currently buffered, it pulls a fixed-size
// chunk from upstream and appends it to the queue, byte aligned. A Stream
// with no attached source is a pure write-then-drain buffer, the role each
// pipeline stage uses internally to accumulate sub-byte output before it is
// drained, a byte at a time, by the caller.
type Stream struct {
	src Source

	rbuf  byte // read-partial byte; the high rbits bits are unread
	rbits uint

	queue []byte // fully packed, unread bytes
	qhead int

	wbuf  byte // write-partial byte; the low wbits bits hold pending writes
	wbits uint

	scratch []byte // reused upstream-pull buffer
	err     error  // sticky non-EOF error from the upstream source
}

// New returns an idle Stream with no attached upstream.
func New() *Stream {
	return &Stream{}
}

// AttachReader sets the upstream byte source. It is the only transition
// from "idle" to "running" a Stream has.
func (s *Stream) AttachReader(src Source) {
	s.src = src
}

// Err returns the first non-EOF error encountered while pulling from the
// attached upstream source, if any.
func (s *Stream) Err() error {
	return s.err
}

// WriteBit appends a single bit, MSB-first, to the write-partial byte,
// rolling it into the queue once eight bits have accumulated.
func (s *Stream) WriteBit(bit byte) {
	s.wbuf = (s.wbuf << 1) | (bit & 1)
	s.wbits++
	if s.wbits == 8 {
		s.queue = append(s.queue, s.wbuf)
		s.wbuf, s.wbits = 0, 0
	}
}

// WriteNBits appends the low n bits of value, MSB-first. n must be <= 8.
// Writing zero bits is a no-op. Bits are appended one at a time, which
// sidesteps any need for a width-equal shift when n == 8.
func (s *Stream) WriteNBits(n uint, value byte) {
	for i := n; i > 0; i-- {
		s.WriteBit((value >> (i - 1)) & 1)
	}
}

// WriteNBitsU64 is WriteNBits generalized to n <= 64.
func (s *Stream) WriteNBitsU64(n uint, value uint64) {
	for i := n; i > 0; i-- {
		s.WriteBit(byte((value >> (i - 1)) & 1))
	}
}

// WriteByte appends a full byte. It implements io.ByteWriter.
func (s *Stream) WriteByte(b byte) error {
	if s.wbits == 0 {
		s.queue = append(s.queue, b)
		return nil
	}
	s.WriteNBits(8, b)
	return nil
}

// Flush pads the write-partial byte with trailing zero bits so its content
// becomes readable as a whole byte, left-aligning the pending bits into the
// MSBs. It is a no-op when the write side is already byte aligned.
func (s *Stream) Flush() {
	if s.wbits == 0 {
		return
	}
	s.queue = append(s.queue, s.wbuf<<(8-s.wbits))
	s.wbuf, s.wbits = 0, 0
}

// pullUpstream pulls one upstreamChunkSize chunk from the attached source,
// appending whatever bytes it yields to the queue. It returns false once
// the source is exhausted, at which point it is discarded (sources are
// single-shot).
func (s *Stream) pullUpstream() bool {
	if s.src == nil {
		return false
	}
	if s.scratch == nil {
		s.scratch = make([]byte, upstreamChunkSize)
	}
	n, err := s.src.Read(s.scratch)
	if n > 0 {
		s.queue = append(s.queue, s.scratch[:n]...)
	}
	if err != nil && err != io.EOF {
		s.err = err
	}
	if n == 0 {
		s.src = nil
		return false
	}
	return true
}

// compact drops already-consumed bytes from the front of the queue so it
// does not grow without bound across a long-lived Stream.
func (s *Stream) compact() {
	if s.qhead == 0 {
		return
	}
	if s.qhead == len(s.queue) {
		s.queue = s.queue[:0]
		s.qhead = 0
		return
	}
	if s.qhead > upstreamChunkSize {
		s.queue = append(s.queue[:0], s.queue[s.qhead:]...)
		s.qhead = 0
	}
}

// fillReadByte refills rbuf/rbits from the queue, then the write-partial
// byte, then upstream, in that order, per the spec's read-side priority.
func (s *Stream) fillReadByte() bool {
	for {
		if s.qhead < len(s.queue) {
			s.rbuf = s.queue[s.qhead]
			s.qhead++
			s.rbits = 8
			s.compact()
			return true
		}
		if s.wbits > 0 {
			s.rbuf = s.wbuf << (8 - s.wbits)
			s.rbits = s.wbits
			s.wbuf, s.wbits = 0, 0
			return true
		}
		if !s.pullUpstream() {
			return false
		}
	}
}

// popBit removes and returns the oldest unread bit, or ok=false if the
// stream (buffers plus any upstream) is exhausted.
func (s *Stream) popBit() (bit byte, ok bool) {
	if s.rbits == 0 {
		if !s.fillReadByte() {
			return 0, false
		}
	}
	bit = (s.rbuf >> 7) & 1
	s.rbuf <<= 1
	s.rbits--
	return bit, true
}

// ReadBit is the single-bit specialization of ReadNBits.
func (s *Stream) ReadBit() (bit byte, ok bool) {
	return s.popBit()
}

// ReadNBits removes and returns up to n bits (n <= 8) into the low bits of
// value, MSB-first. count is the number of bits actually produced, which is
// less than n only once the stream is exhausted. Reading zero bits is a
// no-op that returns 0, 0.
func (s *Stream) ReadNBits(n uint) (value byte, count uint) {
	for count = 0; count < n; count++ {
		bit, ok := s.popBit()
		if !ok {
			return value, count
		}
		value = (value << 1) | bit
	}
	return value, count
}

// ReadNBitsU64 is ReadNBits generalized to n <= 64.
func (s *Stream) ReadNBitsU64(n uint) (value uint64, count uint) {
	for count = 0; count < n; count++ {
		bit, ok := s.popBit()
		if !ok {
			return value, count
		}
		value = (value << 1) | uint64(bit)
	}
	return value, count
}

// ReadByte removes and returns one full byte. It implements io.ByteReader,
// returning io.EOF when the stream is exhausted byte-aligned and
// io.ErrUnexpectedEOF when a partial, non-empty byte remains at the end.
func (s *Stream) ReadByte() (byte, error) {
	v, n := s.ReadNBits(8)
	switch {
	case n == 8:
		return v, nil
	case n == 0:
		return 0, io.EOF
	default:
		return 0, io.ErrUnexpectedEOF
	}
}

// BitsInStream returns the number of bits currently buffered (read-partial
// plus queued plus write-partial), excluding any data not yet pulled from
// upstream.
func (s *Stream) BitsInStream() uint {
	return s.rbits + 8*uint(len(s.queue)-s.qhead) + s.wbits
}

// ensureBits pulls from upstream until at least n bits are buffered or
// upstream is exhausted.
func (s *Stream) ensureBits(n uint) {
	for s.BitsInStream() < n {
		if !s.pullUpstream() {
			return
		}
	}
}

// bitAt returns the bit at logical offset idx from the current read
// cursor, without consuming anything. idx must be < BitsInStream().
func (s *Stream) bitAt(idx uint) byte {
	if idx < s.rbits {
		return (s.rbuf >> (7 - idx)) & 1
	}
	idx -= s.rbits
	qlen := uint(len(s.queue) - s.qhead)
	byteIdx := idx / 8
	if byteIdx < qlen {
		b := s.queue[s.qhead+int(byteIdx)]
		return (b >> (7 - idx%8)) & 1
	}
	idx -= qlen * 8
	return (s.wbuf >> (s.wbits - 1 - idx)) & 1
}

// PeekNBitsOffset is the non-consuming variant of ReadNBits that starts k
// bits ahead of the current read cursor. It may pull from upstream to
// satisfy the request but never advances the read cursor.
func (s *Stream) PeekNBitsOffset(n, k uint) (value uint64, count uint) {
	s.ensureBits(n + k)
	avail := s.BitsInStream()
	if avail <= k {
		return 0, 0
	}
	count = n
	if k+count > avail {
		count = avail - k
	}
	for i := uint(0); i < count; i++ {
		value = (value << 1) | uint64(s.bitAt(k+i))
	}
	return value, count
}

// PeekNBits is PeekNBitsOffset with a zero offset.
func (s *Stream) PeekNBits(n uint) (value uint64, count uint) {
	return s.PeekNBitsOffset(n, 0)
}

// Read implements io.Reader, draining whole bytes and pulling from an
// attached upstream source as needed. It returns io.EOF once the buffers
// and any upstream are exhausted; a caller using a Stream purely as a
// private write-then-drain accumulator (no attached upstream) should only
// call Read after it has finished writing for this round, since an EOF
// here just means "nothing buffered right now", not that the Stream itself
// is spent.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := 0
	for n < len(p) {
		v, cnt := s.ReadNBits(8)
		if cnt == 0 {
			break
		}
		if cnt < 8 {
			// End of stream with a dangling partial byte: left-align it,
			// per the flush convention used throughout the pipeline.
			p[n] = v << (8 - cnt)
			n++
			break
		}
		p[n] = v
		n++
	}
	if n == 0 {
		if s.err != nil {
			return 0, s.err
		}
		return 0, io.EOF
	}
	return n, nil
}
