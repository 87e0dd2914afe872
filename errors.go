// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bwtzip

import "github.com/cosnicolaou/bwtzip/internal/xerrors"

// IOError wraps a failure from the underlying byte source or sink passed
// to Compress/Decompress.
type IOError = xerrors.IOError

// SymbolUnderflow reports a partial read of a mandatory fixed-width wire
// field (a BWT primary index, a BZRLE symbol).
type SymbolUnderflow = xerrors.SymbolUnderflow

// FramingMismatch reports that the BWT decoder's block framing was
// inconsistent with the bytes actually available.
type FramingMismatch = xerrors.FramingMismatch

// ParameterViolation reports a construction-time invariant violation in
// one of the pipeline stages.
type ParameterViolation = xerrors.ParameterViolation
