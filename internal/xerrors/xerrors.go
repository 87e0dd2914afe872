// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package xerrors holds the error kinds shared by every pipeline stage, per
// the error taxonomy: IO, SymbolUnderflow, FramingMismatch and
// ParameterViolation. It mirrors the named-string error idiom the teacher
// uses for StructuralError.
package xerrors

import "fmt"

// IOError wraps a failure from an underlying byte source or sink. It
// surfaces immediately to the caller; stages never retry.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("bwtzip: io error: %v", e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// SymbolUnderflow reports insufficient bits to read a required fixed-width
// field, such as a BWT primary index or a BZRLE symbol. A
// non-zero but partial read of a mandatory fixed-width field is fatal; a
// zero-bit read at a frame boundary is a clean end-of-stream and is not
// reported as this error.
type SymbolUnderflow string

func (e SymbolUnderflow) Error() string { return "bwtzip: symbol underflow: " + string(e) }

// FramingMismatch reports that the BWT decoder's byte-splicing assumptions
// at the end of a block were inconsistent with the number of blocks
// decoded so far.
type FramingMismatch string

func (e FramingMismatch) Error() string { return "bwtzip: framing mismatch: " + string(e) }

// ParameterViolation reports a construction-time invariant violation, such
// as max_symbol >= 2^bits_per_symbol - 1 for the arithmetic coder, or
// 2^W_idx < B for the BWT block framer. It fails at construction, never at
// runtime.
type ParameterViolation string

func (e ParameterViolation) Error() string { return "bwtzip: parameter violation: " + string(e) }
