// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package testdata generates reproducible byte corpora for round-trip and
// compression-ratio tests, in the spirit of the teacher's
// GenPredictableRandomData/GenReproducibleRandomData helpers: a fixed
// seed, so a failing test always reproduces the same input.
package testdata

import "math/rand"

// PredictableRandom returns n pseudo-random bytes generated from seed,
// reproducible across runs and platforms.
func PredictableRandom(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed))
	buf := make([]byte, n)
	r.Read(buf)
	return buf
}

// words is a small fixed vocabulary used to build pseudo-English text: it
// has enough internal repetition (common short words, simple punctuation)
// that a BWT/MTF/BZRLE/ARI pipeline can find real redundancy to exploit,
// unlike uniformly random bytes.
var words = []string{
	"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog",
	"a", "an", "of", "in", "on", "with", "and", "but", "or", "so",
	"compression", "algorithm", "transform", "stream", "block", "symbol",
	"is", "was", "were", "are", "be", "been", "being", "to", "from",
	"data", "bytes", "runs", "encode", "decode", "pipeline", "source",
}

// PseudoEnglish returns a reproducible corpus of approximately n bytes of
// pseudo-English text built from a small fixed vocabulary and seeded
// punctuation/casing choices, for compression-ratio scenarios where
// genuinely random data would be incompressible by construction.
func PseudoEnglish(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed))
	buf := make([]byte, 0, n+32)
	sentenceLen := 0
	for len(buf) < n {
		w := words[r.Intn(len(words))]
		if sentenceLen == 0 {
			buf = append(buf, w[0]-'a'+'A')
			buf = append(buf, w[1:]...)
		} else {
			buf = append(buf, w...)
		}
		sentenceLen++
		if r.Intn(12) == 0 {
			buf = append(buf, '.', ' ')
			sentenceLen = 0
		} else if r.Intn(7) == 0 {
			buf = append(buf, ',', ' ')
		} else {
			buf = append(buf, ' ')
		}
	}
	return buf[:n]
}
