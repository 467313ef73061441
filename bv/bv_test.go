// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package bv

import (
	"testing"

	"github.com/go-air/monograph/internal/core"
	"github.com/go-air/monograph/z"
)

func bvValue(s *core.Solver, v *BV) uint64 {
	var val uint64
	for i, m := range v.Bits {
		if s.Value(m) {
			val |= 1 << uint(i)
		}
	}
	return val
}

func TestEqConstForcesBits(t *testing.T) {
	s := core.NewSolver()
	b := NewBuilder(s)
	th := NewTheory()

	x := b.Var(4)
	th.Register(x)
	s.RegisterTheory(th)

	five := b.Const(4, 5)
	eq := b.Eq(x, five)
	b.Finish(s)

	s.Add(eq)
	s.Add(z.LitNull)

	if r := s.Solve(); r != 1 {
		t.Fatalf("got %d, want 1 (sat)", r)
	}
	if got := bvValue(s, x); got != 5 {
		t.Fatalf("got x=%d, want 5", got)
	}
}

func TestAddConstUnsat(t *testing.T) {
	s := core.NewSolver()
	b := NewBuilder(s)

	x := b.Var(3) // max value 7
	sum := b.Add(x, b.Const(3, 1))
	eight := b.Const(3, 0) // 7+1 truncates to 0 mod 8
	eq := b.Eq(sum, eight)
	ne := b.Eq(x, b.Const(3, 7))
	b.Finish(s)

	// x+1 == 0 (mod 8) holds only for x == 7; assert both and also assert
	// x != 7 to force unsat.
	s.Add(eq)
	s.Add(z.LitNull)
	s.Add(ne.Not())
	s.Add(z.LitNull)

	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat)", r)
	}
}

func TestAnonVectorNarrowedPurelyByComparisons(t *testing.T) {
	s := core.NewSolver()
	th := NewTheory()

	x := Anon(8)
	idx := th.Register(x)
	s.RegisterTheory(th)

	geq := s.Lit()
	leq := s.Lit()
	th.PostConstCompare(idx, Geq, 5, geq)
	th.PostConstCompare(idx, Leq, 3, leq)

	s.Add(geq)
	s.Add(z.LitNull)
	s.Add(leq)
	s.Add(z.LitNull)

	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat): no value is both >= 5 and <= 3", r)
	}
}

func TestAnonVectorDefaultRangeSatisfiable(t *testing.T) {
	s := core.NewSolver()
	th := NewTheory()

	x := Anon(4)
	idx := th.Register(x)
	s.RegisterTheory(th)

	geq := s.Lit()
	th.PostConstCompare(idx, Geq, 3, geq)

	s.Add(geq)
	s.Add(z.LitNull)

	if r := s.Solve(); r != 1 {
		t.Fatalf("got %d, want 1 (sat): the anon vector's full [0,15] range admits values >= 3", r)
	}
}

// TestAddPropagatesIntervalFromOperandsToSum exercises the operator-DAG
// wiring: narrowing x to exactly 44 and y to at most 211 should narrow
// their sum's interval to [44,255] before any bit of the sum is ever
// assigned, forcing a comparison literal posted on the sum to resolve
// without search.
func TestAddPropagatesIntervalFromOperandsToSum(t *testing.T) {
	s := core.NewSolver()
	th := NewTheory()
	b := NewBuilder(s)
	b.Attach(th)

	x := b.Var(8)
	y := b.Var(8)
	c := b.Add(x, y)
	b.Finish(s)
	s.RegisterTheory(th)

	xi := b.Track(x)
	yi := b.Track(y)
	ci := b.Track(c)

	xEq44 := s.Lit()
	th.PostConstCompare(xi, Eq, 44, xEq44)
	yLeq211 := s.Lit()
	th.PostConstCompare(yi, Leq, 211, yLeq211)
	cLt44 := s.Lit()
	th.PostConstCompare(ci, Lt, 44, cLt44)

	s.Add(xEq44)
	s.Add(z.LitNull)
	s.Add(yLeq211)
	s.Add(z.LitNull)

	if r := s.Solve(); r != 1 {
		t.Fatalf("got %d, want 1 (sat)", r)
	}
	if s.Value(cLt44) {
		t.Fatalf("x=44 forces x+y >= 44, but the model says c < 44")
	}
}

// TestAndPropagatesIntervalFromOperands exercises the opAnd transfer
// function: narrowing x to exactly 0x0F should narrow x&y's upper bound
// to 0x0F regardless of y, forcing a comparison posted against the high
// nibble to resolve false without search.
func TestAndPropagatesIntervalFromOperands(t *testing.T) {
	s := core.NewSolver()
	th := NewTheory()
	b := NewBuilder(s)
	b.Attach(th)

	x := b.Var(8)
	y := b.Var(8)
	c := b.And(x, y)
	b.Finish(s)
	s.RegisterTheory(th)

	xi := b.Track(x)
	ci := b.Track(c)

	xEq := s.Lit()
	th.PostConstCompare(xi, Eq, 0x0F, xEq)
	cGt := s.Lit()
	th.PostConstCompare(ci, Gt, 0x0F, cGt)

	s.Add(xEq)
	s.Add(z.LitNull)

	if r := s.Solve(); r != 1 {
		t.Fatalf("got %d, want 1 (sat)", r)
	}
	if s.Value(cGt) {
		t.Fatalf("x=0x0F forces x&y <= 0x0F, but the model says c > 0x0F")
	}
}

// TestUltPropagatesFromBVCompareIntervals exercises PostBVCompare's
// bv-vs-bv tightening: narrowing x to exactly 9 and y to at least 200
// should narrow x < y's operands enough that a redundant Ult comparison
// forced false would conflict before any bit of either vector is ever
// assigned, mirroring TestAddPropagatesIntervalFromOperandsToSum's
// operand-narrowing style but against another vector instead of a
// constant.
func TestUltPropagatesFromBVCompareIntervals(t *testing.T) {
	s := core.NewSolver()
	th := NewTheory()
	b := NewBuilder(s)
	b.Attach(th)

	x := b.Var(8)
	y := b.Var(8)
	lt := b.Ult(x, y)
	b.Finish(s)
	s.RegisterTheory(th)

	xi := b.Track(x)
	yi := b.Track(y)

	xEq9 := s.Lit()
	th.PostConstCompare(xi, Eq, 9, xEq9)
	yGeq200 := s.Lit()
	th.PostConstCompare(yi, Geq, 200, yGeq200)

	s.Add(xEq9)
	s.Add(z.LitNull)
	s.Add(yGeq200)
	s.Add(z.LitNull)
	s.Add(lt.Not())
	s.Add(z.LitNull)

	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat): x=9 and y>=200 force x<y, contradicting lt asserted false", r)
	}
}

// TestEqPropagatesFromBVCompareIntervals checks the Eq side of the same
// wiring: if x is pinned to 7 and y's interval never includes 7, the
// bv-vs-bv Eq comparison between them must resolve false without ever
// assigning a bit of y.
func TestEqPropagatesFromBVCompareIntervals(t *testing.T) {
	s := core.NewSolver()
	th := NewTheory()
	b := NewBuilder(s)
	b.Attach(th)

	x := b.Var(8)
	y := b.Var(8)
	eq := b.Eq(x, y)
	b.Finish(s)
	s.RegisterTheory(th)

	xi := b.Track(x)
	yi := b.Track(y)

	xEq7 := s.Lit()
	th.PostConstCompare(xi, Eq, 7, xEq7)
	yGeq8 := s.Lit()
	th.PostConstCompare(yi, Geq, 8, yGeq8)

	s.Add(xEq7)
	s.Add(z.LitNull)
	s.Add(yGeq8)
	s.Add(z.LitNull)
	s.Add(eq)
	s.Add(z.LitNull)

	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat): x=7 and y>=8 can never be equal, contradicting eq asserted true", r)
	}
}

func TestUltConst(t *testing.T) {
	s := core.NewSolver()
	b := NewBuilder(s)
	th := NewTheory()

	x := b.Var(4)
	idx := th.Register(x)
	s.RegisterTheory(th)

	lt := b.Ult(x, b.Const(4, 3))
	th.PostConstCompare(idx, Lt, 3, lt)
	b.Finish(s)

	s.Add(lt)
	s.Add(z.LitNull)

	if r := s.Solve(); r != 1 {
		t.Fatalf("got %d, want 1 (sat)", r)
	}
	if got := bvValue(s, x); got >= 3 {
		t.Fatalf("got x=%d, want < 3", got)
	}
}
