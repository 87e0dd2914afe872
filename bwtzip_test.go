// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bwtzip

import (
	"bytes"
	"testing"

	"github.com/cosnicolaou/bwtzip/internal/testdata"
)

func roundTrip(t *testing.T, data []byte) []byte {
	t.Helper()
	var compressed bytes.Buffer
	if err := Compress(&compressed, bytes.NewReader(data)); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	var decompressed bytes.Buffer
	if err := Decompress(&decompressed, bytes.NewReader(compressed.Bytes())); err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	return decompressed.Bytes()
}

func TestEmptyInputProducesEmptyOutput(t *testing.T) {
	var compressed bytes.Buffer
	if err := Compress(&compressed, bytes.NewReader(nil)); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if compressed.Len() != 0 {
		t.Fatalf("compressed %d bytes for empty input, want 0", compressed.Len())
	}
	var decompressed bytes.Buffer
	if err := Decompress(&decompressed, bytes.NewReader(nil)); err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if decompressed.Len() != 0 {
		t.Fatalf("decompressed %d bytes for empty input, want 0", decompressed.Len())
	}
}

func TestSingleByte(t *testing.T) {
	var compressed bytes.Buffer
	if err := Compress(&compressed, bytes.NewReader([]byte("a"))); err != nil {
		t.Fatal(err)
	}
	if compressed.Len() == 0 {
		t.Fatal("expected a nonempty compressed frame for \"a\"")
	}
	got := roundTrip(t, []byte("a"))
	if string(got) != "a" {
		t.Fatalf("got %q, want \"a\"", got)
	}
}

func TestSevenByteRepeat(t *testing.T) {
	data := []byte("aaaaaab")
	got := roundTrip(t, data)
	if !bytes.Equal(got, data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func Test261ZeroBytes(t *testing.T) {
	data := bytes.Repeat([]byte{0}, 261)
	got := roundTrip(t, data)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch for 261 zero bytes")
	}
}

func TestVariousSmallInputs(t *testing.T) {
	cases := [][]byte{
		[]byte("Hello 123"),
		[]byte("the quick brown fox jumps over the lazy dog"),
		[]byte("mississippi mississippi mississippi banana banana"),
		bytes.Repeat([]byte("ab"), 500),
	}
	for _, c := range cases {
		got := roundTrip(t, c)
		if !bytes.Equal(got, c) {
			t.Fatalf("round trip mismatch for %q", c)
		}
	}
}

func TestPseudoEnglishCorpusCompresses(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large corpus round trip in short mode")
	}
	data := testdata.PseudoEnglish(1, 2<<20) // 2 MiB
	var compressed bytes.Buffer
	if err := Compress(&compressed, bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	if compressed.Len() >= len(data) {
		t.Fatalf("compressed size %d >= input size %d", compressed.Len(), len(data))
	}
	var decompressed bytes.Buffer
	if err := Decompress(&decompressed, bytes.NewReader(compressed.Bytes())); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decompressed.Bytes(), data) {
		t.Fatal("2 MiB pseudo-English corpus round trip mismatch")
	}
}
