// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package pbwt implements the positional Burrows-Wheeler transform engine,
// used by both the cut-position optimizer (package cutpos) and the greedy
// founder matcher (package founder) to track, for a binary column alphabet,
// which chromosome copies currently agree on every column seen so far and
// how recently they diverged.
package pbwt

import "math"

// divMax is the sentinel divergence value: larger than any real edge
// index, so "the first equivalence class" (the one that has not diverged
// from anything yet) is always representable in the counts multiset.
const divMax = math.MaxUint64

// Sentinel is divMax exported for consumers (package founder) that walk
// Permutation()/Divergence() directly and must recognize rows that have
// never diverged from one another, rather than treating every sentinel
// entry as the start of its own equivalence class.
const Sentinel = divMax

// Context holds one pBWT engine instance: a permutation array over
// [0, n) chromosome copies, a parallel divergence array, and a multiset of
// divergence values realized as an ordered map (value -> count) so that
// "number of equivalence classes to the right of p" is a suffix sum.
//
// Component E and F each own a private Context; the engine keeps no
// reference to the graph it is stepped over.
type Context struct {
	n int

	perm    []uint32
	div     []uint64
	invPerm []uint32 // invPerm[row] = index i such that perm[i] == row

	// counts maps a divergence value to how many entries in div carry
	// it; keys is counts' keys kept sorted ascending so
	// DivergenceValueCountsReversed can walk them largest-to-smallest
	// without resorting on every call.
	counts map[uint64]int
	keys   []uint64

	scratchPerm []uint32
	scratchDiv  []uint64
}

// New returns a pBWT context over n chromosome copies, with the initial
// permutation the identity and every copy's divergence set to the
// sentinel (no column has been observed yet).
func New(n int) *Context {
	ctx := &Context{
		n:           n,
		perm:        make([]uint32, n),
		div:         make([]uint64, n),
		invPerm:     make([]uint32, n),
		scratchPerm: make([]uint32, n),
		scratchDiv:  make([]uint64, n),
		counts:      map[uint64]int{divMax: n},
		keys:        []uint64{divMax},
	}
	for i := range ctx.perm {
		ctx.perm[i] = uint32(i)
		ctx.invPerm[i] = uint32(i)
	}
	for i := range ctx.div {
		ctx.div[i] = divMax
	}
	return ctx
}

func (c *Context) bumpCount(v uint64, delta int) {
	c.counts[v] += delta
	if c.counts[v] == 0 {
		delete(c.counts, v)
		c.removeKey(v)
	} else if delta > 0 && c.counts[v] == delta {
		c.insertKey(v)
	}
}

func (c *Context) insertKey(v uint64) {
	i := searchUint64(c.keys, v)
	c.keys = append(c.keys, 0)
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = v
}

func (c *Context) removeKey(v uint64) {
	i := searchUint64(c.keys, v)
	if i < len(c.keys) && c.keys[i] == v {
		c.keys = append(c.keys[:i], c.keys[i+1:]...)
	}
}

func searchUint64(keys []uint64, v uint64) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if keys[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Permutation returns the current permutation array; index i holds the
// chromosome-copy index whose row is i-th in divergence-sorted order.
// The returned slice aliases internal storage and must not be retained
// across a Step call.
func (c *Context) Permutation() []uint32 { return c.perm }

// Divergence returns the divergence array parallel to Permutation(): one
// past the index of the column at which Permutation()[i] and
// Permutation()[i-1] most recently diverged, as recorded by Step (the
// sentinel divMax if they have never diverged).
func (c *Context) Divergence() []uint64 { return c.div }

// ColumnBit reports the bit at chromosome copy row for the column about to
// be stepped; callers obtain it from the graph's path matrix.
type ColumnBit func(chromCopy int) bool

// Step partitions the current permutation by the column's bit value
// (stable, zeros before ones) and updates the divergence array and the
// divergence-value multiset: the first surviving row of each of the two
// groups is given divergence edgeIndex+1 (it has just become
// distinguishable from whatever precedes it); every other row simply
// carries its existing divergence forward unchanged.
func (c *Context) Step(bit ColumnBit, edgeIndex uint64) {
	zeros := c.scratchPerm[:0]
	ones := make([]uint32, 0, c.n)
	zerosDiv := c.scratchDiv[:0]
	onesDiv := make([]uint64, 0, c.n)

	newDivValue := edgeIndex + 1
	zeroSeen, oneSeen := false, false

	for i, row := range c.perm {
		d := c.div[i]

		var newDiv uint64
		if bit(int(row)) {
			if !oneSeen {
				newDiv = newDivValue
				oneSeen = true
			} else {
				newDiv = d
			}
			ones = append(ones, row)
			onesDiv = append(onesDiv, newDiv)
		} else {
			if !zeroSeen {
				newDiv = newDivValue
				zeroSeen = true
			} else {
				newDiv = d
			}
			zeros = append(zeros, row)
			zerosDiv = append(zerosDiv, newDiv)
		}
		if newDiv != d {
			c.bumpCount(d, -1)
			c.bumpCount(newDiv, 1)
		}
	}

	out := append(zeros, ones...) //nolint:gocritic // zeros is scratch storage, reused intentionally
	outDiv := append(zerosDiv, onesDiv...)

	c.scratchPerm, c.perm = c.perm, out
	c.scratchDiv, c.div = c.div, outDiv

	for i, row := range c.perm {
		c.invPerm[row] = uint32(i)
	}
}

// DivergenceValueCountsReversed returns the divergence multiset's
// (value, count) pairs ordered from the largest value to the smallest,
// excluding the always-present sentinel entry -- the "D" histogram walk
// used by the cut-position optimizer.
func (c *Context) DivergenceValueCountsReversed() []DivCount {
	out := make([]DivCount, 0, len(c.keys))
	for i := len(c.keys) - 1; i >= 0; i-- {
		v := c.keys[i]
		if v == divMax {
			continue
		}
		out = append(out, DivCount{Value: v, Count: c.counts[v]})
	}
	return out
}

// SentinelCount returns the count of the always-present sentinel
// divergence class (copies that have not diverged from anything yet).
func (c *Context) SentinelCount() int { return c.counts[divMax] }

// DivCount is one (divergence value, multiplicity) pair.
type DivCount struct {
	Value uint64
	Count int
}

// PermIndex returns the permutation-order index i such that
// Permutation()[i] == row, i.e. the inverse permutation.
func (c *Context) PermIndex(row int) int { return int(c.invPerm[row]) }
