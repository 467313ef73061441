// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package card encodes unary cardinality constraints over a set of
// literals with an odd-even merge sorting network: O(log2(|ms|)^2) levels
// of compare-and-swap gates, each gate six clauses and two fresh
// variables, giving arc-consistent Leq/Geq predicates that unit
// propagation maintains incrementally as the input literals are decided
// one at a time. This scales better than a pairwise encoding once the
// literal set is more than a handful of members, at the cost of more
// variables and clauses for small sets.
//
// The construction follows Een and Sorensson, "Translating
// Pseudo-Boolean Constraints into SAT".
package card

import (
	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/z"
)

// LitAdder is something that can generate fresh variables and add
// clauses, the minimum a sorting network needs to build its
// compare-and-swap gates.
type LitAdder interface {
	inter.Adder
	inter.Liter
}

// Sort gives access to unary cardinality predicates over a literal set:
// Leq(b)/Geq(b)/Less(b)/Gr(b) are each a single literal, true in a model
// iff the number of true members of the set satisfies the named
// relation to b.
type Sort struct {
	n   int
	va  LitAdder
	ms  []z.Lit
	one z.Lit
}

// NewSort builds a sorting network over ms and returns a Sort exposing
// its cardinality predicates. ms is padded to the next power of two with
// a literal pinned true, so the network's recursive halving always lands
// on whole subnetworks.
func NewSort(ms []z.Lit, va LitAdder) *Sort {
	p := uint(0)
	for 1<<p < len(ms) {
		p++
	}
	ns := make([]z.Lit, 1<<p)
	copy(ns, ms)
	c := &Sort{ms: ns, va: va, n: len(ms)}
	c.one = va.Lit()
	va.Add(c.one)
	va.Add(z.LitNull)
	for i := len(ms); i < len(ns); i++ {
		ns[i] = c.one
	}
	c.sort(0, len(ns))
	return c
}

// Valid returns a literal pinned true, useful as a fixed reference point
// when composing Leq/Geq results with other constraints.
func (c *Sort) Valid() z.Lit {
	return c.one
}

// Less returns a literal true iff fewer than b of the set's members are
// true.
func (c *Sort) Less(b int) z.Lit {
	return c.Leq(b - 1)
}

// Leq returns a literal true iff at most b of the set's members are
// true.
func (c *Sort) Leq(b int) z.Lit {
	if b >= c.n {
		return c.one
	}
	if b < 0 {
		return c.one.Not()
	}
	return c.ms[(c.n-1)-b].Not()
}

// Geq returns a literal true iff at least b of the set's members are
// true.
func (c *Sort) Geq(b int) z.Lit {
	if b <= 0 {
		return c.one
	}
	if b >= c.n+1 {
		return c.one.Not()
	}
	return c.Leq(b - 1).Not()
}

// Gr returns a literal true iff more than b of the set's members are
// true.
func (c *Sort) Gr(b int) z.Lit {
	return c.Geq(b + 1)
}

// N returns the number of literals the network counts over.
func (c *Sort) N() int {
	return c.n
}

func (c *Sort) sort(l, h int) {
	if h-l <= 1 {
		return
	}
	m := l + (h-l)/2
	c.sort(l, m)
	c.sort(m, h)
	c.merge(l, h, 1)
}

// merge implements Batcher's odd-even merge of two already-sorted runs.
func (c *Sort) merge(l, h, s int) {
	if h <= l+s {
		return
	}
	var ml, mh z.Lit
	ss := 2 * s
	if ss >= h-l {
		ml, mh = c.lh(l, l+s)
		c.ms[l], c.ms[l+s] = ml, mh
		return
	}
	c.merge(l, h, ss)
	c.merge(l+s, h, ss)
	lim := h - s
	for i := l + s; i < lim; i += ss {
		ml, mh = c.lh(i, i+s)
		c.ms[i], c.ms[i+s] = ml, mh
	}
}

// lh emits a compare-and-swap gate over ms[i], ms[j] and returns its
// low, high outputs.
func (c *Sort) lh(i, j int) (z.Lit, z.Lit) {
	mi, mj := c.ms[i], c.ms[j]
	a, b := c.va.Lit(), c.va.Lit()
	c.add(mi, mj, a)
	c.add(mi.Not(), mj.Not(), b.Not())
	return a, b
}

func (c *Sort) add(mi, mj, out z.Lit) {
	// if mi is false, out is false
	c.va.Add(mi)
	c.va.Add(out.Not())
	c.va.Add(z.LitNull)
	// if mj is false, out is false
	c.va.Add(mj)
	c.va.Add(out.Not())
	c.va.Add(z.LitNull)
	// if mi and mj are both true, out is true
	c.va.Add(mi.Not())
	c.va.Add(mj.Not())
	c.va.Add(out)
	c.va.Add(z.LitNull)
}

// AtMostOne asserts that at most one of ms is true, the sorting
// network's Leq(1) predicate pinned true. Worthwhile over a pairwise
// encoding once ms is large, since the network grows as
// O(|ms|*log2(|ms|)^2) clauses against the pairwise encoding's
// O(|ms|^2).
func AtMostOne(dst LitAdder, ms []z.Lit) {
	if len(ms) <= 1 {
		return
	}
	s := NewSort(ms, dst)
	dst.Add(s.Leq(1))
	dst.Add(z.LitNull)
}
