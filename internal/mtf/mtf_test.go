// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mtf

import (
	"bytes"
	"io"
	"testing"
)

func encodeAll(t *testing.T, data []byte) []byte {
	t.Helper()
	enc := NewEncoder(bytes.NewReader(data))
	out, err := io.ReadAll(enc)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func decodeAll(t *testing.T, data []byte) []byte {
	t.Helper()
	dec := NewDecoder(bytes.NewReader(data))
	out, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestInvolution(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("a"),
		[]byte("Hello 123"),
		bytes.Repeat([]byte{0}, 261),
		[]byte("mississippi mississippi mississippi"),
	}
	for _, c := range cases {
		coded := encodeAll(t, c)
		back := decodeAll(t, coded)
		if !bytes.Equal(back, c) && !(len(back) == 0 && len(c) == 0) {
			t.Fatalf("round trip failed for %q: got %q", c, back)
		}
	}
}

func TestHelloEncodesFirstByteAsItself(t *testing.T) {
	coded := encodeAll(t, []byte("Hello 123"))
	if coded[0] != 'H' {
		t.Fatalf("first symbol = %d, want %d ('H')", coded[0], 'H')
	}
}

func TestRepeatsDecreaseRank(t *testing.T) {
	// "aa" -> first 'a' emits its initial index (97), the second emits 0
	// since 'a' is now at the front of the permutation.
	coded := encodeAll(t, []byte("aa"))
	if coded[0] != 'a' {
		t.Fatalf("first symbol = %d, want 97", coded[0])
	}
	if coded[1] != 0 {
		t.Fatalf("second symbol = %d, want 0", coded[1])
	}
}

func TestIdentityInitialPermutation(t *testing.T) {
	coded := encodeAll(t, []byte{0, 1, 2, 3})
	want := []byte{0, 1, 2, 3}
	if !bytes.Equal(coded, want) {
		t.Fatalf("got %v, want %v", coded, want)
	}
}
