// Copyright 2024 The bwtzip Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package sais implements suffix-array construction by induced sorting
// (SA-IS), the linear-time algorithm the BWT engine uses to find the
// lexicographic order of a string's suffixes (and, via double-and-filter,
// its cyclic rotations).
package sais

// Build returns the suffix array of s: SA[i] is the starting index of the
// i-th lexicographically smallest suffix of s (including the implicit
// empty sentinel suffix at the end, which always sorts first, so
// SA[0] == len(s)). Callers that want suffixes of s itself, excluding the
// sentinel, use SA[1:]. Every value in s must be >= 1; 0 is reserved for
// the sentinel appended internally.
func Build(s []int) []int {
	n := len(s)
	sa := make([]int, n+1)
	if n == 0 {
		sa[0] = 0
		return sa
	}
	k := maxVal(s) + 1
	withSentinel := make([]int, n+1)
	copy(withSentinel, s)
	buildRecursive(withSentinel, sa, n+1, k)
	return sa
}

func maxVal(s []int) int {
	m := 0
	for _, v := range s {
		if v > m {
			m = v
		}
	}
	return m
}

// classify marks every position of s as S-type (true) or L-type (false)
// (length n, last position is the sentinel, always S-type and always
// lexicographically smallest).
func classify(s []int, n int) []bool {
	isS := make([]bool, n)
	isS[n-1] = true
	for i := n - 2; i >= 0; i-- {
		switch {
		case s[i] < s[i+1]:
			isS[i] = true
		case s[i] > s[i+1]:
			isS[i] = false
		default:
			isS[i] = isS[i+1]
		}
	}
	return isS
}

func isLMS(isS []bool, i int) bool {
	return i > 0 && isS[i] && !isS[i-1]
}

// bucketSizes returns, for each symbol value 0..k-1, the count of
// occurrences in s.
func bucketSizes(s []int, n, k int) []int {
	sizes := make([]int, k)
	for i := 0; i < n; i++ {
		sizes[s[i]]++
	}
	return sizes
}

// bucketHeads/bucketTails return the starting offset of each symbol's
// bucket in the (conceptual) sorted order, at the first/last free slot.
func bucketHeads(sizes []int) []int {
	heads := make([]int, len(sizes))
	sum := 0
	for i, c := range sizes {
		heads[i] = sum
		sum += c
	}
	return heads
}

func bucketTails(sizes []int) []int {
	tails := make([]int, len(sizes))
	sum := 0
	for i, c := range sizes {
		sum += c
		tails[i] = sum - 1
	}
	return tails
}

// placeLMS scatters the LMS positions (in the order given by order) into
// the tails of their buckets, right to left, leaving every other slot -1.
func placeLMS(sa []int, s []int, n, k int, order []int) {
	for i := range sa {
		sa[i] = -1
	}
	sizes := bucketSizes(s, n, k)
	tails := bucketTails(sizes)
	for i := len(order) - 1; i >= 0; i-- {
		p := order[i]
		b := s[p]
		sa[tails[b]] = p
		tails[b]--
	}
}

// induceSort fills in L-type then S-type positions of sa from the
// LMS-seeded skeleton, per the standard SA-IS induction step.
func induceSort(sa []int, s []int, isS []bool, n, k int) {
	sizes := bucketSizes(s, n, k)
	heads := bucketHeads(sizes)
	for i := 0; i < n; i++ {
		j := sa[i] - 1
		if sa[i] <= 0 || isS[j] {
			continue
		}
		b := s[j]
		sa[heads[b]] = j
		heads[b]++
	}
	tails := bucketTails(sizes)
	for i := n - 1; i >= 0; i-- {
		j := sa[i] - 1
		if sa[i] <= 0 || !isS[j] {
			continue
		}
		b := s[j]
		sa[tails[b]] = j
		tails[b]--
	}
}

// lmsSubstringsEqual reports whether the LMS substrings starting at a and
// b (both LMS positions) are character-for-character identical, including
// having the same length (the distance to the next LMS position or the
// sentinel).
func lmsSubstringsEqual(s []int, isS []bool, n, a, b int) bool {
	for d := 0; ; d++ {
		ai, bi := a+d, b+d
		aEnd, bEnd := ai == n-1, bi == n-1
		if aEnd || bEnd {
			return aEnd == bEnd
		}
		aLMS := isLMS(isS, ai)
		bLMS := isLMS(isS, bi)
		if d > 0 && aLMS && bLMS {
			return true
		}
		if aLMS != bLMS || s[ai] != s[bi] {
			return false
		}
	}
}

// buildRecursive fills sa (length n) with the suffix array of s (length
// n, s[n-1] == 0 acting as the unique sentinel, alphabet size k).
func buildRecursive(s []int, sa []int, n, k int) {
	if n == 1 {
		sa[0] = 0
		return
	}
	isS := classify(s, n)

	var lmsOrder []int
	for i := 1; i < n; i++ {
		if isLMS(isS, i) {
			lmsOrder = append(lmsOrder, i)
		}
	}

	placeLMS(sa, s, n, k, lmsOrder)
	induceSort(sa, s, isS, n, k)

	// Name LMS substrings by equality, in the order SA now reveals them.
	names := make([]int, n)
	for i := range names {
		names[i] = -1
	}
	name := 0
	prev := -1
	for i := 0; i < n; i++ {
		p := sa[i]
		if !isLMS(isS, p) {
			continue
		}
		if prev != -1 && !lmsSubstringsEqual(s, isS, n, prev, p) {
			name++
		}
		names[p] = name
		prev = p
	}

	// Summary values are name+1, reserving 0 exclusively for the sentinel
	// buildRecursive appends below: names are 0-indexed, so without the
	// shift a real summary symbol could collide with the sentinel.
	summary := make([]int, len(lmsOrder))
	summaryPos := make([]int, len(lmsOrder))
	j := 0
	for i, v := range names {
		if v != -1 {
			summary[j] = v + 1
			summaryPos[j] = i
			j++
		}
	}

	var summarySA []int
	if name+1 == len(summary) {
		// Names are already unique: the summary SA is recoverable by a
		// direct bucket sort (summary[i]-1 is itself the rank).
		summarySA = make([]int, len(summary))
		for i, v := range summary {
			summarySA[v-1] = i
		}
	} else {
		withSentinel := make([]int, len(summary)+1)
		copy(withSentinel, summary)
		summarySA = make([]int, len(summary)+1)
		buildRecursive(withSentinel, summarySA, len(summary)+1, name+2)
		summarySA = summarySA[1:]
	}

	orderedLMS := make([]int, len(summarySA))
	for i, v := range summarySA {
		orderedLMS[i] = summaryPos[v]
	}

	placeLMS(sa, s, n, k, orderedLMS)
	induceSort(sa, s, isS, n, k)
}
