// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package arith implements the adaptive arithmetic encoder and decoder:
// fixed-point interval renormalization with the classic E1/E2/E3 cases, a
// pending-bit counter, and an in-band EOF symbol. Both sides share the
// cumulative-frequency table in package model and must see the same
// sequence of symbol updates to stay synchronized.
package arith

import (
	"io"
	"math"

	"github.com/cosnicolaou/bwtzip/internal/bitstream"
	"github.com/cosnicolaou/bwtzip/internal/model"
	"github.com/cosnicolaou/bwtzip/internal/xerrors"
)

const (
	codeWidth    = 48
	one          = (uint64(1) << codeWidth) - 1
	oneHalf      = (one >> 1) + 1
	oneFourth    = oneHalf >> 1
	threeFourths = 3 * oneFourth
)

// MaxFreq is the largest cumulative total that keeps all probability
// arithmetic within 64-bit products.
const MaxFreq = math.MaxUint64 / one

// params holds the alphabet parameters shared by Encoder and Decoder.
type params struct {
	bitsPerSymbol uint
	maxSymbol     int
	eofSymbol     int
}

func newParams(bitsPerSymbol uint, maxSymbol int) (params, error) {
	if maxSymbol >= (1<<bitsPerSymbol)-1 {
		return params{}, xerrors.ParameterViolation("max_symbol must be < 2^bits_per_symbol - 1 so EOF fits")
	}
	return params{
		bitsPerSymbol: bitsPerSymbol,
		maxSymbol:     maxSymbol,
		eofSymbol:     maxSymbol + 1,
	}, nil
}

func (p params) numSymbols() int { return p.maxSymbol + 2 }

// Encoder consumes upstream b-bit symbols and produces an arithmetic-coded
// byte stream. It implements io.Reader so it composes directly as a
// pipeline stage.
type Encoder struct {
	params
	model *model.Table
	in    *bitstream.Stream
	out   *bitstream.Stream

	low, high uint64
	pending   uint64
	done      bool
}

// NewEncoder returns an Encoder for symbols of bitsPerSymbol bits in
// {0..maxSymbol}, reading symbols from upstream.
func NewEncoder(upstream io.Reader, bitsPerSymbol uint, maxSymbol int) (*Encoder, error) {
	p, err := newParams(bitsPerSymbol, maxSymbol)
	if err != nil {
		return nil, err
	}
	in := bitstream.New()
	in.AttachReader(upstream)
	return &Encoder{
		params: p,
		model:  model.New(p.numSymbols(), MaxFreq),
		in:     in,
		out:    bitstream.New(),
		low:    0,
		high:   one,
	}, nil
}

// nextSymbol pulls the next b-bit symbol from upstream, reporting false
// once fewer than b bits remain (upstream exhaustion).
func (e *Encoder) nextSymbol() (int, bool) {
	v, n := e.in.ReadNBitsU64(e.bitsPerSymbol)
	if n < e.bitsPerSymbol {
		return 0, false
	}
	return int(v), true
}

func (e *Encoder) encodeSymbol(s int) {
	lower, upper, denom := e.model.Range(s)
	rng := e.high - e.low + 1
	e.high = e.low + (rng*upper)/denom - 1
	e.low = e.low + (rng*lower)/denom
	if s != e.eofSymbol {
		e.model.Update(s)
	}
	e.renormalize()
}

func (e *Encoder) renormalize() {
	for {
		switch {
		case e.high < oneHalf:
			e.emitBitPlusPending(0)
		case e.low >= oneHalf:
			e.emitBitPlusPending(1)
			e.low -= oneHalf
			e.high -= oneHalf
		case e.low >= oneFourth && e.high < threeFourths:
			e.pending++
			e.low -= oneFourth
			e.high -= oneFourth
		default:
			return
		}
		e.low = e.low << 1
		e.high = (e.high << 1) | 1
	}
}

func (e *Encoder) emitBitPlusPending(bit byte) {
	e.out.WriteBit(bit)
	opp := bit ^ 1
	for ; e.pending > 0; e.pending-- {
		e.out.WriteBit(opp)
	}
}

// Finish flushes the EOF symbol and the final disambiguating bit. It is
// idempotent; later calls are no-ops.
func (e *Encoder) Finish() {
	if e.done {
		return
	}
	e.done = true
	e.encodeSymbol(e.eofSymbol)
	e.pending++
	var bit byte
	if e.low >= oneFourth {
		bit = 1
	}
	e.emitBitPlusPending(bit)
	e.out.Flush()
}

// Read implements io.Reader, encoding as many symbols as needed to
// satisfy len(p) whole bytes, or until upstream is exhausted and EOF has
// been flushed.
func (e *Encoder) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	want := uint(len(p)) * 8
	for e.out.BitsInStream() < want && !e.done {
		if s, ok := e.nextSymbol(); ok {
			e.encodeSymbol(s)
		} else {
			e.Finish()
		}
	}
	n, _ := e.out.Read(p)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Decoder consumes an arithmetic-coded byte stream and produces the
// original b-bit symbols, written into an internal BitStream that Read
// drains a byte at a time.
type Decoder struct {
	params
	model *model.Table
	in    *bitstream.Stream
	out   *bitstream.Stream

	low, high, value uint64
	primed           bool
	done             bool
}

// NewDecoder returns a Decoder mirroring NewEncoder's parameters.
func NewDecoder(upstream io.Reader, bitsPerSymbol uint, maxSymbol int) (*Decoder, error) {
	p, err := newParams(bitsPerSymbol, maxSymbol)
	if err != nil {
		return nil, err
	}
	in := bitstream.New()
	in.AttachReader(upstream)
	return &Decoder{
		params: p,
		model:  model.New(p.numSymbols(), MaxFreq),
		in:     in,
		out:    bitstream.New(),
		low:    0,
		high:   one,
	}, nil
}

func (d *Decoder) prime() {
	if d.primed {
		return
	}
	d.primed = true
	v, n := d.in.ReadNBitsU64(codeWidth)
	if n < codeWidth {
		v <<= (codeWidth - n)
	}
	d.value = v
}

// decodeSymbol returns the next decoded symbol, or ok=false once the EOF
// symbol has been observed.
func (d *Decoder) decodeSymbol() (int, bool) {
	d.prime()
	if d.done {
		return 0, false
	}
	rng := d.high - d.low + 1
	denom := d.model.Total()
	scaled := ((d.value-d.low+1)*denom - 1) / rng
	s := d.model.Symbol(scaled)
	lower, upper, _ := d.model.Range(s)
	d.high = d.low + (rng*upper)/denom - 1
	d.low = d.low + (rng*lower)/denom
	if s == d.eofSymbol {
		d.done = true
		return 0, false
	}
	d.model.Update(s)
	d.renormalize()
	return s, true
}

func (d *Decoder) renormalize() {
	for {
		switch {
		case d.high < oneHalf:
		case d.low >= oneHalf:
			d.low -= oneHalf
			d.high -= oneHalf
			d.value -= oneHalf
		case d.low >= oneFourth && d.high < threeFourths:
			d.low -= oneFourth
			d.high -= oneFourth
			d.value -= oneFourth
		default:
			return
		}
		d.low = d.low << 1
		d.high = (d.high << 1) | 1
		bit, ok := d.in.ReadBit()
		var b uint64
		if ok {
			b = uint64(bit)
		}
		d.value = (d.value << 1) | b
	}
}

// Read implements io.Reader, decoding as many symbols as needed to
// satisfy len(p) whole bytes, or until EOF has been observed.
func (d *Decoder) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	want := uint(len(p)) * 8
	for d.out.BitsInStream() < want && !d.done {
		s, ok := d.decodeSymbol()
		if !ok {
			break
		}
		d.out.WriteNBitsU64(d.bitsPerSymbol, uint64(s))
	}
	if d.done {
		d.out.Flush()
	}
	n, _ := d.out.Read(p)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
