// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bitstream

import (
	"bytes"
	"io"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	s := New()
	s.WriteNBits(3, 0x5) // 101
	s.WriteBit(1)
	s.WriteNBits(4, 0xA) // 1010
	// total so far: 101 1 1010 = 8 bits exactly -> one packed byte 0xBA? compute:
	// 101 1 1010 -> binary 10111010 = 0xBA
	s.Flush()
	var buf bytes.Buffer
	io.Copy(&buf, s)
	if got, want := buf.Bytes(), []byte{0xBA}; !bytes.Equal(got, want) {
		t.Fatalf("got %08b want %08b", got, want)
	}
}

func TestBitOrderMSBFirst(t *testing.T) {
	s := New()
	for _, b := range []byte{1, 0, 1, 0, 1, 0, 1, 0} {
		s.WriteBit(b)
	}
	v, err := s.ReadByte()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xAA {
		t.Fatalf("got %08b want %08b", v, 0xAA)
	}
}

func TestReadNBitsTruncatedAtEOF(t *testing.T) {
	s := New()
	s.WriteNBits(3, 0x3) // 011, no upstream attached
	v, n := s.ReadNBits(8)
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
	if v != 0x3 {
		t.Fatalf("value = %x, want 3", v)
	}
	// Further reads return zero count, not an error/panic.
	if _, n := s.ReadNBits(4); n != 0 {
		t.Fatalf("expected exhausted stream, got count %d", n)
	}
}

func TestWriteZeroBitsNoOp(t *testing.T) {
	s := New()
	s.WriteNBits(0, 0xFF)
	if s.BitsInStream() != 0 {
		t.Fatalf("expected no bits written, got %d", s.BitsInStream())
	}
}

func TestReadZeroBitsNoOp(t *testing.T) {
	s := New()
	s.WriteByte(0xAB)
	v, n := s.ReadNBits(0)
	if v != 0 || n != 0 {
		t.Fatalf("got (%d, %d), want (0, 0)", v, n)
	}
	if s.BitsInStream() != 8 {
		t.Fatalf("expected untouched buffer, got %d bits", s.BitsInStream())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	s := New()
	s.WriteNBitsU64(20, 0xABCDE)
	s.Flush()
	peeked, pn := s.PeekNBits(12)
	read, rn := s.ReadNBits(8)
	read2, rn2 := s.ReadNBits(4)
	combined := (uint64(read) << 4) | uint64(read2)
	if pn != 12 || rn != 8 || rn2 != 4 {
		t.Fatalf("unexpected counts: pn=%d rn=%d rn2=%d", pn, rn, rn2)
	}
	if peeked != combined {
		t.Fatalf("peek %x != subsequent read %x", peeked, combined)
	}
}

func TestPeekOffset(t *testing.T) {
	s := New()
	s.WriteByte(0b10110010)
	v, n := s.PeekNBitsOffset(4, 4)
	if n != 4 || v != 0b0010 {
		t.Fatalf("got (%b,%d) want (0010,4)", v, n)
	}
	// still unconsumed
	if s.BitsInStream() != 8 {
		t.Fatalf("peek should not consume, bits=%d", s.BitsInStream())
	}
}

func TestAttachReaderPullsUpstreamInChunks(t *testing.T) {
	data := bytes.Repeat([]byte{0xFF}, 2048)
	s := New()
	s.AttachReader(bytes.NewReader(data))
	out, err := io.ReadAll(s)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("got %d bytes, want %d", len(out), len(data))
	}
}

func TestInterleavedWritesAndReadsLawOfTotalBits(t *testing.T) {
	s := New()
	total := uint(0)
	widths := []uint{1, 3, 5, 7, 8, 2, 6, 4}
	for i, w := range widths {
		s.WriteNBits(w, byte(i+1))
		total += w
	}
	if s.BitsInStream() != total {
		t.Fatalf("bits in stream = %d, want %d", s.BitsInStream(), total)
	}
	var got uint
	for {
		_, n := s.ReadNBits(1)
		if n == 0 {
			break
		}
		got++
	}
	if got != total {
		t.Fatalf("read %d bits, want %d", got, total)
	}
}

func TestShortFinalByteIsLeftAligned(t *testing.T) {
	s := New()
	s.WriteNBits(3, 0x5) // 101
	var buf bytes.Buffer
	io.Copy(&buf, s)
	if got, want := buf.Bytes(), []byte{0b10100000}; !bytes.Equal(got, want) {
		t.Fatalf("got %08b want %08b", got, want)
	}
}
