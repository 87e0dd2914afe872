// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package mtf implements the Move-To-Front rank transform over the
// 256-byte alphabet: a trivial but invariant-bearing stage between the
// BWT and BZRLE layers of the pipeline.
package mtf

import "io"

const alphabetSize = 256

// perm is the self-adjusting 256-entry permutation shared by Encoder and
// Decoder's update rule.
type perm struct {
	table [alphabetSize]byte
}

func newPerm() *perm {
	p := &perm{}
	for i := range p.table {
		p.table[i] = byte(i)
	}
	return p
}

// encode returns the index of b in the permutation, then moves b to the
// front, shifting the preceding entries right by one.
func (p *perm) encode(b byte) byte {
	idx := 0
	for i, v := range p.table {
		if v == b {
			idx = i
			break
		}
	}
	copy(p.table[1:idx+1], p.table[0:idx])
	p.table[0] = b
	return byte(idx)
}

// decode returns the byte at index idx in the permutation, then moves it
// to the front the same way encode does.
func (p *perm) decode(idx byte) byte {
	b := p.table[idx]
	copy(p.table[1:idx+1], p.table[0:idx])
	p.table[0] = b
	return b
}

// Encoder transforms a raw byte stream into its MTF rank stream. It
// implements io.Reader, passing each Read straight through to its upstream
// source and transforming the returned bytes in place (MTF preserves length
// one-to-one, so no internal buffering beyond the permutation state is
// needed).
type Encoder struct {
	upstream io.Reader
	perm     *perm
}

// NewEncoder returns an Encoder reading raw bytes from upstream.
func NewEncoder(upstream io.Reader) *Encoder {
	return &Encoder{upstream: upstream, perm: newPerm()}
}

func (e *Encoder) Read(p []byte) (int, error) {
	n, err := e.upstream.Read(p)
	for i := 0; i < n; i++ {
		p[i] = e.perm.encode(p[i])
	}
	return n, err
}

// Decoder inverts Encoder: given a rank stream, it reproduces the
// original bytes.
type Decoder struct {
	upstream io.Reader
	perm     *perm
}

// NewDecoder returns a Decoder reading MTF ranks from upstream.
func NewDecoder(upstream io.Reader) *Decoder {
	return &Decoder{upstream: upstream, perm: newPerm()}
}

func (d *Decoder) Read(p []byte) (int, error) {
	n, err := d.upstream.Read(p)
	for i := 0; i < n; i++ {
		p[i] = d.perm.decode(p[i])
	}
	return n, err
}
