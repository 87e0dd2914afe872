// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package model implements the adaptive cumulative-frequency table shared
// by the arithmetic encoder and decoder. Both sides must see identical
// frequency updates in identical order for the coder to stay in sync, so
// this table has no locking and no concurrency story of its own; it is
// driven entirely by its owning coder.
package model

// Table is a cumulative-frequency table over numSymbols symbols (the data
// alphabet plus one EOF symbol). cum[i] holds the sum of frequencies of
// symbols strictly less than i, so cum has numSymbols+1 entries and
// cum[numSymbols] is the running total count.
type Table struct {
	cum      []uint64
	maxTotal uint64
}

// New returns a Table for numSymbols symbols, uniformly initialized to
// frequency 1 each (cum[i] = i), resetting to that baseline whenever the
// running total would reach maxTotal.
func New(numSymbols int, maxTotal uint64) *Table {
	t := &Table{cum: make([]uint64, numSymbols+1), maxTotal: maxTotal}
	t.Reset()
	return t
}

// Reset restores the 1-uniform baseline: every symbol has frequency 1.
func (t *Table) Reset() {
	for i := range t.cum {
		t.cum[i] = uint64(i)
	}
}

// Range returns the (lower, upper, denom) triple the arithmetic coder
// needs for symbol s: the cumulative interval assigned to s and the
// current total count.
func (t *Table) Range(s int) (lower, upper, denom uint64) {
	return t.cum[s], t.cum[s+1], t.cum[len(t.cum)-1]
}

// Total returns the current running total count, cum[numSymbols].
func (t *Table) Total() uint64 {
	return t.cum[len(t.cum)-1]
}

// Symbol returns the symbol s such that cum[s] <= scaled < cum[s+1]. cum
// is strictly increasing (every symbol has frequency >= 1), so a binary
// search suffices even though the table is conceptually a flat array.
func (t *Table) Symbol(scaled uint64) int {
	lo, hi := 0, len(t.cum)-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if t.cum[mid] <= scaled {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// Update increments the frequency of s by one, then resets to the
// 1-uniform baseline if the running total has reached maxTotal.
func (t *Table) Update(s int) {
	for i := s + 1; i < len(t.cum); i++ {
		t.cum[i]++
	}
	if t.cum[len(t.cum)-1] >= t.maxTotal {
		t.Reset()
	}
}
