// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bzrle implements the bijective base-2 run-length encoding of
// zero-byte runs that sits between the MTF and arithmetic-coding stages.
// Input bytes are widened to w-bit symbols; two sentinel values that no
// literal symbol takes (a and b; the wire format uses a=0, which literals
// never are because zero bytes always go into runs, and b=256, above the
// byte range) carry run lengths so the rest of the
// pipeline never has to special-case zero runs. w must be a multiple of
// 8 (the wire format uses w=16) so symbols pack cleanly into bytes for
// the byte-oriented stage contract the rest of the pipeline shares.
package bzrle

import (
	"io"

	"github.com/cosnicolaou/bwtzip/internal/xerrors"
)

// Encoder widens an upstream byte stream into w-bit symbols, collapsing
// runs of zero bytes into a bijective base-2 encoding over {a, b}, and
// serializes the result big-endian, w/8 bytes per symbol.
type Encoder struct {
	upstream io.Reader
	a, b     uint16
	w        uint

	one     [1]byte
	pending []byte
	run     uint64
	eof     bool
}

// NewEncoder returns an Encoder with symbol width w bits (a multiple of
// 8) and sentinels a, b (the wire format uses a=0, b=256 over w=16).
func NewEncoder(upstream io.Reader, w uint, a, b uint16) *Encoder {
	return &Encoder{upstream: upstream, w: w, a: a, b: b}
}

func (e *Encoder) emit(sym uint16) {
	nbytes := e.w / 8
	for i := int(nbytes) - 1; i >= 0; i-- {
		e.pending = append(e.pending, byte(sym>>(8*uint(i))))
	}
}

// bijectiveDigits returns the bijective base-2 digit sequence (as a or b
// symbols), least-significant digit first, for n >= 1: at position i,
// emit b and subtract 2*2^i if n is divisible by 2^(i+1), else emit a and
// subtract 2^i.
func bijectiveDigits(n uint64, a, b uint16) []uint16 {
	var digits []uint16
	for i := uint(0); n > 0; i++ {
		if n%(uint64(2)<<i) == 0 {
			digits = append(digits, b)
			n -= uint64(2) << i
		} else {
			digits = append(digits, a)
			n -= uint64(1) << i
		}
	}
	return digits
}

func (e *Encoder) flushRun() {
	if e.run == 0 {
		return
	}
	for _, d := range bijectiveDigits(e.run, e.a, e.b) {
		e.emit(d)
	}
	e.run = 0
}

// fill advances until at least one output byte is pending, or upstream
// (including any trailing run) is exhausted.
func (e *Encoder) fill() {
	for len(e.pending) == 0 && !e.eof {
		n, err := e.upstream.Read(e.one[:])
		if n == 0 {
			e.flushRun()
			e.eof = true
			return
		}
		if e.one[0] == 0 {
			e.run++
		} else {
			e.flushRun()
			e.emit(uint16(e.one[0]))
		}
		if err != nil && err != io.EOF {
			e.eof = true
			return
		}
	}
}

// Read implements io.Reader.
func (e *Encoder) Read(p []byte) (int, error) {
	e.fill()
	if len(e.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(p, e.pending)
	e.pending = e.pending[n:]
	return n, nil
}

// Decoder reconstructs a byte stream from the w-bit symbol stream an
// Encoder (or, once arithmetic-decoded, its reconstruction) produces.
type Decoder struct {
	upstream io.Reader
	a, b     uint16
	w        uint

	buf     []byte
	pending []byte
	done    bool
}

// NewDecoder returns a Decoder reading big-endian w-bit symbols from
// upstream, mirroring NewEncoder's parameters.
func NewDecoder(upstream io.Reader, w uint, a, b uint16) *Decoder {
	return &Decoder{upstream: upstream, w: w, a: a, b: b, buf: make([]byte, w/8)}
}

// readSymbol reads one w/8-byte symbol from upstream. ok is false only on
// a clean end-of-stream (zero bytes available); a partial, non-zero read
// is a SymbolUnderflow.
func (d *Decoder) readSymbol() (sym uint16, ok bool, err error) {
	n, ioErr := io.ReadFull(d.upstream, d.buf)
	if n == 0 {
		if ioErr == io.EOF {
			return 0, false, nil
		}
		return 0, false, &xerrors.IOError{Err: ioErr}
	}
	if ioErr == io.ErrUnexpectedEOF {
		return 0, false, xerrors.SymbolUnderflow("bzrle: truncated symbol")
	}
	if ioErr != nil {
		return 0, false, &xerrors.IOError{Err: ioErr}
	}
	for _, b := range d.buf {
		sym = (sym << 8) | uint16(b)
	}
	return sym, true, nil
}

// digitValue returns the bijective-base-2 contribution of a sentinel
// symbol at digit position i: 2^i for a, 2*2^i for b.
func (d *Decoder) digitValue(sym uint16, i uint) uint64 {
	if sym == d.a {
		return uint64(1) << i
	}
	return uint64(2) << i
}

// fill decodes the next maximal zero-run (possibly empty) followed by
// its terminating non-sentinel byte, buffering the result in pending.
func (d *Decoder) fill() error {
	if len(d.pending) > 0 || d.done {
		return nil
	}
	var n uint64
	var i uint
	for {
		sym, ok, err := d.readSymbol()
		if err != nil {
			return err
		}
		if !ok {
			d.done = true
			for j := uint64(0); j < n; j++ {
				d.pending = append(d.pending, 0)
			}
			return nil
		}
		if sym == d.a || sym == d.b {
			n += d.digitValue(sym, i)
			i++
			continue
		}
		for j := uint64(0); j < n; j++ {
			d.pending = append(d.pending, 0)
		}
		d.pending = append(d.pending, byte(sym))
		return nil
	}
}

func (d *Decoder) Read(p []byte) (int, error) {
	if err := d.fill(); err != nil {
		return 0, err
	}
	if len(d.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}
