// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package bv

import (
	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/z"
)

// Rel is a relational operator between a bitvector and a constant or
// another bitvector.
type Rel int8

const (
	Eq Rel = iota
	Neq
	Lt
	Leq
	Gt
	Geq
)

type constCmp struct {
	bv  int
	rel Rel
	k   uint64
	lit z.Lit
}

// bvCmp records a posted "a REL b" relation between two tracked vectors,
// so Propagate can narrow each side's interval from the other's and,
// conversely, derive lit once the two intervals already settle the
// question.
type bvCmp struct {
	a, b int
	rel  Rel
	lit  z.Lit
}

// mirrorRel flips rel the way viewing "a REL b" from b's side requires:
// a<b seen from b is b>a, etc. Eq and Neq read the same from either side.
func mirrorRel(rel Rel) Rel {
	switch rel {
	case Lt:
		return Gt
	case Leq:
		return Geq
	case Gt:
		return Lt
	case Geq:
		return Leq
	default:
		return rel
	}
}

type bitLoc struct {
	bv  int
	pos int
}

// opKind names a bit-blasted operator relating a derived vector to its
// operands, so Propagate can tighten the derived vector's interval from
// the operands' intervals alone, without waiting for enough of its own
// bits to be assigned.
type opKind int8

const (
	opNone opKind = iota
	opAdd
	opAnd
	opOr
	opXor
	opNot
	opIte
)

// opNode records a derived vector's operator and operand theory indices.
// cond is only meaningful for opIte.
type opNode struct {
	kind opKind
	a, b int
	cond z.Lit
}

// Theory is the bitvector theory plugin: it narrows an interval [lo,hi]
// per registered vector as its bits and posted constant comparisons
// become known, asserting newly-determined bits ahead of CNF unit
// propagation and raising a conflict — built from the vector's currently
// assigned bits and comparisons — the moment the interval empties. When a
// Builder is attached to it, it also tracks the operator relating each
// derived vector to its operands, so tightening an operand's interval
// (from its own bits, or transitively from further operands) propagates
// forward through the operator DAG to every vector built from it.
//
// It never needs to prove anything on its own: every operator and
// comparison it's given is also bit-blasted by a Builder, so CNF alone
// is already a sound and complete decision procedure. This theory is an
// accelerant that narrows intervals ahead of search; the operator-DAG
// propagation narrows them further by reasoning about operands a vector
// was built from, not just the bits it owns directly.
type Theory struct {
	id  int
	enq inter.Enqueuer

	vecs  []*BV
	bitOf map[z.Var]bitLoc

	cmps   []constCmp
	cmpsOf map[int][]int // bv index -> indices into cmps

	bvCmps   []bvCmp
	bvCmpsOf map[int][]int   // bv index -> indices into bvCmps, for either side
	bvCmpVar map[z.Var][]int // lit's var -> indices into bvCmps, for EnqueueTheory

	ops  map[int]opNode // bv index -> the operator that derives it, if any
	deps map[int][]int  // bv index -> dependent (derived) bv indices
	eff  [][2]uint64     // bv index -> last-computed effective [lo,hi]

	dirty   []int
	inQueue map[int]bool
}

// NewTheory creates an empty bitvector theory.
func NewTheory() *Theory {
	return &Theory{
		bitOf:    make(map[z.Var]bitLoc),
		cmpsOf:   make(map[int][]int),
		bvCmpsOf: make(map[int][]int),
		bvCmpVar: make(map[z.Var][]int),
		inQueue:  make(map[int]bool),
	}
}

// Init implements inter.Theory.
func (t *Theory) Init(id int, enq inter.Enqueuer) {
	t.id = id
	t.enq = enq
}

// Register adds v to the set of vectors this theory tracks, owning every
// bit literal's variable.
func (t *Theory) Register(v *BV) int {
	idx := len(t.vecs)
	t.vecs = append(t.vecs, v)
	for i, m := range v.Bits {
		t.bitOf[m.Var()] = bitLoc{bv: idx, pos: i}
	}
	return idx
}

// RegisterOp records that the vector at theory index self was built by
// applying kind to the operands at theory indices a and b (b is -1 for
// unary operators; cond is the select literal for opIte), so Propagate
// can narrow self's interval from a and b's intervals, and re-narrow
// self whenever either operand's interval changes. Builder calls this
// for every operator it bit-blasts once a Theory is attached to it.
func (t *Theory) RegisterOp(self int, kind opKind, a, b int, cond z.Lit) {
	if t.ops == nil {
		t.ops = make(map[int]opNode)
	}
	t.ops[self] = opNode{kind: kind, a: a, b: b, cond: cond}
	if t.deps == nil {
		t.deps = make(map[int][]int)
	}
	if a >= 0 {
		t.deps[a] = append(t.deps[a], self)
	}
	if b >= 0 && b != a {
		t.deps[b] = append(t.deps[b], self)
	}
	t.markDirty(self)
}

func (t *Theory) markDirty(idx int) {
	if !t.inQueue[idx] {
		t.inQueue[idx] = true
		t.dirty = append(t.dirty, idx)
	}
}

// PostConstCompare records that lit means "bv REL k", so Propagate can
// use lit's assignment (or lack of one) to tighten bv's interval, and
// conversely derive lit from bv's interval.
func (t *Theory) PostConstCompare(bv int, rel Rel, k uint64, lit z.Lit) {
	idx := len(t.cmps)
	t.cmps = append(t.cmps, constCmp{bv: bv, rel: rel, k: k, lit: lit})
	t.cmpsOf[bv] = append(t.cmpsOf[bv], idx)
	t.bitOf[lit.Var()] = bitLoc{bv: bv, pos: -1}
}

// PostBVCompare records that lit means "a REL b" between two tracked
// vectors, so Propagate can narrow each from the other's interval and
// derive lit once their intervals alone settle the relation — the
// bv-vs-bv counterpart to PostConstCompare.
func (t *Theory) PostBVCompare(a int, rel Rel, b int, lit z.Lit) {
	idx := len(t.bvCmps)
	t.bvCmps = append(t.bvCmps, bvCmp{a: a, rel: rel, b: b, lit: lit})
	t.bvCmpsOf[a] = append(t.bvCmpsOf[a], idx)
	if b != a {
		t.bvCmpsOf[b] = append(t.bvCmpsOf[b], idx)
	}
	t.bvCmpVar[lit.Var()] = append(t.bvCmpVar[lit.Var()], idx)
	t.bitOf[lit.Var()] = bitLoc{bv: a, pos: -1}
	// each side's bound can move the other's, so a change to either must
	// redirty its counterpart the same way an operator dependency does.
	if t.deps == nil {
		t.deps = make(map[int][]int)
	}
	t.deps[a] = append(t.deps[a], b)
	if b != a {
		t.deps[b] = append(t.deps[b], a)
	}
}

// Owns implements inter.Theory.
func (t *Theory) Owns(v z.Var) bool {
	_, ok := t.bitOf[v]
	return ok
}

// EnqueueTheory implements inter.Theory: mark the owning vector dirty,
// plus, for a bv-vs-bv comparison literal, the vector on the other side.
func (t *Theory) EnqueueTheory(m z.Lit) {
	if loc, ok := t.bitOf[m.Var()]; ok {
		t.markDirty(loc.bv)
	}
	for _, ci := range t.bvCmpVar[m.Var()] {
		c := t.bvCmps[ci]
		t.markDirty(c.a)
		t.markDirty(c.b)
	}
}

// fullMask is the bit pattern of every settable bit in a width-wide
// vector.
func fullMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// bounds returns the tightest [lo,hi] implied by v's currently-assigned
// bits alone. An anonymous vector has no bits to consult at all, so it
// starts at its full width range instead, narrowed only by whatever
// comparisons Propagate folds in afterward.
func (t *Theory) bounds(v *BV) (lo, hi uint64) {
	if len(v.Bits) == 0 {
		return 0, fullMask(v.Width)
	}
	for i, m := range v.Bits {
		switch t.enq.Value(m) {
		case 1:
			lo |= 1 << uint(i)
			hi |= 1 << uint(i)
		case -1:
			// bit forced 0: contributes nothing to either bound.
		default:
			hi |= 1 << uint(i)
		}
	}
	return lo, hi
}

// growEff extends eff with full-range defaults up to and including idx,
// so an operand that hasn't been processed yet this round still yields a
// sound (if loose) bound to a dependent consulting it.
func (t *Theory) growEff(idx int) {
	for len(t.eff) <= idx {
		t.eff = append(t.eff, [2]uint64{0, fullMask(t.vecs[len(t.eff)].Width)})
	}
}

// opBounds computes the interval [lo,hi] implied purely by bvIdx's
// operands' last-computed effective intervals, if bvIdx was registered
// as a derived vector. ok is false for a vector with no operator.
func (t *Theory) opBounds(bvIdx int) (lo, hi uint64, ok bool) {
	op, has := t.ops[bvIdx]
	if !has {
		return 0, 0, false
	}
	mask := fullMask(t.vecs[bvIdx].Width)
	t.growEff(op.a)
	alo, ahi := t.eff[op.a][0], t.eff[op.a][1]
	var blo, bhi uint64
	if op.b >= 0 {
		t.growEff(op.b)
		blo, bhi = t.eff[op.b][0], t.eff[op.b][1]
	}
	switch op.kind {
	case opNot:
		// a bit of NOT(a) is forced 1 wherever a's bit is forced 0, and
		// possibly 1 wherever a's bit isn't forced 1.
		return (^ahi) & mask, (^alo) & mask, true
	case opAnd:
		return alo & blo, ahi & bhi, true
	case opOr:
		return alo | blo, ahi | bhi, true
	case opXor:
		// only a loose upper bound is cheap to compute here: a bit can
		// only be forced 1 in the xor if at least one operand could be 1
		// there.
		return 0, (ahi | bhi) & mask, true
	case opAdd:
		rawLo, rawHi := alo+blo, ahi+bhi
		if rawHi <= mask {
			return rawLo, rawHi, true
		}
		// the sum can wrap past the vector's width; without tracking
		// the carry precisely, the sound bound is the full range.
		return 0, mask, true
	case opIte:
		switch t.enq.Value(op.cond) {
		case 1:
			return alo, ahi, true
		case -1:
			return blo, bhi, true
		default:
			lo, hi = alo, ahi
			if blo < lo {
				lo = blo
			}
			if bhi > hi {
				hi = bhi
			}
			return lo, hi, true
		}
	}
	return 0, 0, false
}

// Propagate implements inter.Theory.
func (t *Theory) Propagate() ([]z.Lit, bool) {
	for len(t.dirty) > 0 {
		bvIdx := t.dirty[0]
		t.dirty = t.dirty[1:]
		t.inQueue[bvIdx] = false

		v := t.vecs[bvIdx]
		lo, hi := t.bounds(v)
		if olo, ohi, ok := t.opBounds(bvIdx); ok {
			if olo > lo {
				lo = olo
			}
			if ohi < hi {
				hi = ohi
			}
		}

		for _, ci := range t.cmpsOf[bvIdx] {
			c := t.cmps[ci]
			val := t.enq.Value(c.lit)
			if val == 0 {
				continue
			}
			hold := val == 1
			switch {
			case c.rel == Eq && hold, c.rel == Neq && !hold:
				if c.k > lo {
					lo = c.k
				}
				if c.k < hi {
					hi = c.k
				}
			case c.rel == Lt && hold, c.rel == Geq && !hold:
				if c.k > 0 && c.k-1 < hi {
					hi = c.k - 1
				}
			case c.rel == Leq && hold, c.rel == Gt && !hold:
				if c.k < hi {
					hi = c.k
				}
			case c.rel == Gt && hold, c.rel == Leq && !hold:
				if c.k+1 > lo {
					lo = c.k + 1
				}
			case c.rel == Geq && hold, c.rel == Lt && !hold:
				if c.k > lo {
					lo = c.k
				}
			}
		}

		for _, ci := range t.bvCmpsOf[bvIdx] {
			c := t.bvCmps[ci]
			val := t.enq.Value(c.lit)
			if val == 0 {
				continue
			}
			hold := val == 1
			other := c.b
			effRel := c.rel
			if bvIdx == c.b {
				other = c.a
				effRel = mirrorRel(c.rel)
			}
			t.growEff(other)
			olo, ohi := t.eff[other][0], t.eff[other][1]
			switch {
			case effRel == Eq && hold, effRel == Neq && !hold:
				if olo > lo {
					lo = olo
				}
				if ohi < hi {
					hi = ohi
				}
			case effRel == Lt && hold, effRel == Geq && !hold:
				if ohi > 0 && ohi-1 < hi {
					hi = ohi - 1
				}
			case effRel == Leq && hold, effRel == Gt && !hold:
				if ohi < hi {
					hi = ohi
				}
			case effRel == Gt && hold, effRel == Leq && !hold:
				if olo+1 > lo {
					lo = olo + 1
				}
			case effRel == Geq && hold, effRel == Lt && !hold:
				if olo > lo {
					lo = olo
				}
			}
		}

		if lo > hi {
			return t.reason(bvIdx), false
		}

		for _, ci := range t.bvCmpsOf[bvIdx] {
			c := t.bvCmps[ci]
			if t.enq.Value(c.lit) != 0 {
				continue
			}
			other := c.b
			effRel := c.rel
			if bvIdx == c.b {
				other = c.a
				effRel = mirrorRel(c.rel)
			}
			t.growEff(other)
			olo, ohi := t.eff[other][0], t.eff[other][1]
			var forced int // 1 true, -1 false, 0 unknown
			switch effRel {
			case Eq:
				if lo == hi && olo == ohi && lo == olo {
					forced = 1
				} else if hi < olo || ohi < lo {
					forced = -1
				}
			case Neq:
				if lo == hi && olo == ohi && lo == olo {
					forced = -1
				} else if hi < olo || ohi < lo {
					forced = 1
				}
			case Lt:
				if hi < olo {
					forced = 1
				} else if lo >= ohi {
					forced = -1
				}
			case Leq:
				if hi <= olo {
					forced = 1
				} else if lo > ohi {
					forced = -1
				}
			case Gt:
				if lo > ohi {
					forced = 1
				} else if hi <= olo {
					forced = -1
				}
			case Geq:
				if lo >= ohi {
					forced = 1
				} else if hi < olo {
					forced = -1
				}
			}
			if forced == 0 {
				continue
			}
			lit := c.lit
			if forced == -1 {
				lit = lit.Not()
			}
			if !t.enq.Enqueue(lit, uint32(bvIdx)) {
				return t.reason(bvIdx), false
			}
		}

		for _, ci := range t.cmpsOf[bvIdx] {
			c := t.cmps[ci]
			if t.enq.Value(c.lit) != 0 {
				continue
			}
			var forced int // 1 true, -1 false, 0 unknown
			switch c.rel {
			case Eq:
				if lo == hi && lo == c.k {
					forced = 1
				} else if c.k < lo || c.k > hi {
					forced = -1
				}
			case Neq:
				if lo == hi && lo == c.k {
					forced = -1
				} else if c.k < lo || c.k > hi {
					forced = 1
				}
			case Lt:
				if hi < c.k {
					forced = 1
				} else if lo >= c.k {
					forced = -1
				}
			case Leq:
				if hi <= c.k {
					forced = 1
				} else if lo > c.k {
					forced = -1
				}
			case Gt:
				if lo > c.k {
					forced = 1
				} else if hi <= c.k {
					forced = -1
				}
			case Geq:
				if lo >= c.k {
					forced = 1
				} else if hi < c.k {
					forced = -1
				}
			}
			if forced == 0 {
				continue
			}
			lit := c.lit
			if forced == -1 {
				lit = lit.Not()
			}
			if !t.enq.Enqueue(lit, uint32(bvIdx)) {
				return t.reason(bvIdx), false
			}
		}

		if lo == hi {
			for i, m := range v.Bits {
				if t.enq.Value(m) != 0 {
					continue
				}
				want := m
				if lo&(1<<uint(i)) == 0 {
					want = m.Not()
				}
				if !t.enq.Enqueue(want, uint32(bvIdx)) {
					return t.reason(bvIdx), false
				}
			}
		}

		t.growEff(bvIdx)
		if t.eff[bvIdx][0] != lo || t.eff[bvIdx][1] != hi {
			t.eff[bvIdx][0], t.eff[bvIdx][1] = lo, hi
			for _, dep := range t.deps[bvIdx] {
				t.markDirty(dep)
			}
		}
	}
	return nil, true
}

// reason collects every currently-assigned literal touching bvIdx — its
// bits and its posted comparisons — as a falsified disjunction. When
// bvIdx is a derived vector, its operands' own assigned bits and
// comparisons are exactly what narrowed its operator-DAG bound, so they
// are pulled in too, recursively.
func (t *Theory) reason(bvIdx int) []z.Lit {
	seen := make(map[z.Var]bool)
	visited := make(map[int]bool)
	var out []z.Lit
	var visit func(idx int)
	visit = func(idx int) {
		if visited[idx] {
			return
		}
		visited[idx] = true
		v := t.vecs[idx]
		for _, m := range v.Bits {
			var lit z.Lit
			switch t.enq.Value(m) {
			case 1:
				lit = m.Not()
			case -1:
				lit = m
			default:
				continue
			}
			if !seen[lit.Var()] {
				seen[lit.Var()] = true
				out = append(out, lit)
			}
		}
		for _, ci := range t.cmpsOf[idx] {
			c := t.cmps[ci]
			var lit z.Lit
			switch t.enq.Value(c.lit) {
			case 1:
				lit = c.lit.Not()
			case -1:
				lit = c.lit
			default:
				continue
			}
			if !seen[lit.Var()] {
				seen[lit.Var()] = true
				out = append(out, lit)
			}
		}
		for _, ci := range t.bvCmpsOf[idx] {
			c := t.bvCmps[ci]
			var lit z.Lit
			switch t.enq.Value(c.lit) {
			case 1:
				lit = c.lit.Not()
			case -1:
				lit = c.lit
			default:
				continue
			}
			if !seen[lit.Var()] {
				seen[lit.Var()] = true
				out = append(out, lit)
			}
			other := c.b
			if idx == c.b {
				other = c.a
			}
			visit(other)
		}
		if op, ok := t.ops[idx]; ok {
			if op.a >= 0 {
				visit(op.a)
			}
			if op.b >= 0 && op.b != op.a {
				visit(op.b)
			}
		}
	}
	visit(bvIdx)
	return out
}

// Explain implements inter.Theory: the token is the vector index whose
// bounds forced m.
func (t *Theory) Explain(token uint32, m z.Lit) []z.Lit {
	return t.reason(int(token))
}

// Backtrack implements inter.Theory. Bounds are recomputed from the
// trail on the next Propagate, so there is no per-level state to unwind
// beyond the effective-bound cache every derived vector's opBounds
// reads: it's reset and every vector re-queued so the operator DAG
// recomputes top-down from the (now loosened) leaf vectors again.
func (t *Theory) Backtrack(level int) {
	t.dirty = t.dirty[:0]
	for k := range t.inQueue {
		t.inQueue[k] = false
	}
	t.eff = nil
	for idx := range t.vecs {
		t.markDirty(idx)
	}
}

// CheckSatisfied implements inter.Theory. Every operator this theory
// tracks is also bit-blasted, so a complete Boolean model is already a
// complete bitvector model.
func (t *Theory) CheckSatisfied() bool {
	return true
}

// Decide implements inter.Theory: this theory never branches.
func (t *Theory) Decide() (z.Lit, bool) {
	return z.LitNull, false
}
