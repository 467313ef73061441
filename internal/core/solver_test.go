// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package core

import (
	"testing"

	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/z"
)

func addClause(s *Solver, lits ...z.Lit) {
	for _, m := range lits {
		s.Add(m)
	}
	s.Add(z.LitNull)
}

func TestSolveUnitSat(t *testing.T) {
	s := NewSolver()
	a := s.Lit()
	addClause(s, a)
	if r := s.Solve(); r != 1 {
		t.Fatalf("got %d, want 1 (sat)", r)
	}
	if !s.Value(a) {
		t.Fatalf("expected a true")
	}
}

func TestSolveEmptyClauseUnsat(t *testing.T) {
	s := NewSolver()
	addClause(s)
	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat)", r)
	}
}

func TestSolveContradictingUnits(t *testing.T) {
	s := NewSolver()
	a := s.Lit()
	addClause(s, a)
	addClause(s, a.Not())
	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat)", r)
	}
}

func TestSolvePigeonholeTwoInOne(t *testing.T) {
	// Two pigeons, one hole: unsat by a trivial clash clause.
	s := NewSolver()
	p1 := s.Lit()
	p2 := s.Lit()
	addClause(s, p1)
	addClause(s, p2)
	addClause(s, p1.Not(), p2.Not())
	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat)", r)
	}
}

func TestSolveThreeSatSatisfiable(t *testing.T) {
	s := NewSolver()
	a, b, c := s.Lit(), s.Lit(), s.Lit()
	addClause(s, a, b, c)
	addClause(s, a.Not(), b)
	addClause(s, b.Not(), c)
	if r := s.Solve(); r != 1 {
		t.Fatalf("got %d, want 1 (sat)", r)
	}
	if s.Value(a) && !s.Value(b) {
		t.Fatalf("clause a->b violated")
	}
	if s.Value(b) && !s.Value(c) {
		t.Fatalf("clause b->c violated")
	}
}

func TestAssumeUnsatCore(t *testing.T) {
	s := NewSolver()
	a := s.Lit()
	addClause(s, a.Not())
	s.Assume(a)
	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat under assumption)", r)
	}
	core := s.Why(nil)
	if len(core) == 0 {
		t.Fatalf("expected a non-empty unsat core")
	}
}

// TestAssumeUnsatCoreExcludesIrrelevantAssumption pins down that Why
// resolves back through the actual conflict rather than dumping every
// staged assumption: only x and z are involved in the clash clause, so
// y (along for the ride) must not appear in the core.
func TestAssumeUnsatCoreExcludesIrrelevantAssumption(t *testing.T) {
	s := NewSolver()
	x, y, z := s.Lit(), s.Lit(), s.Lit()
	addClause(s, x.Not(), z.Not())
	s.Assume(x, y, z)
	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat under assumptions)", r)
	}
	core := s.Why(nil)
	if len(core) == 0 {
		t.Fatalf("expected a non-empty unsat core")
	}
	for _, m := range core {
		if m.Var() == y.Var() {
			t.Fatalf("unsat core %v should not include the irrelevant assumption y", core)
		}
	}
	sawX, sawZ := false, false
	for _, m := range core {
		if m.Var() == x.Var() {
			sawX = true
		}
		if m.Var() == z.Var() {
			sawZ = true
		}
	}
	if !sawX || !sawZ {
		t.Fatalf("unsat core %v should include both x and z, the clashing assumptions", core)
	}
}

func TestLearnedClauseBacktracks(t *testing.T) {
	s := NewSolver()
	a, b, c, d := s.Lit(), s.Lit(), s.Lit(), s.Lit()
	addClause(s, a, b)
	addClause(s, a.Not(), c)
	addClause(s, b.Not(), c)
	addClause(s, c.Not(), d)
	addClause(s, c.Not(), d.Not())
	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat)", r)
	}
	if s.nConflicts == 0 {
		t.Fatalf("expected at least one conflict to have been analyzed")
	}
}

type countingTheory struct {
	id        int
	enq       inter.Enqueuer
	owned     map[z.Var]bool
	nPropRuns int
}

func (c *countingTheory) Init(id int, enq inter.Enqueuer)      { c.id = id; c.enq = enq }
func (c *countingTheory) Owns(v z.Var) bool                    { return c.owned[v] }
func (c *countingTheory) EnqueueTheory(m z.Lit)                {}
func (c *countingTheory) Propagate() ([]z.Lit, bool) {
	c.nPropRuns++
	return nil, true
}
func (c *countingTheory) Explain(token uint32, m z.Lit) []z.Lit { return nil }
func (c *countingTheory) Backtrack(level int)                   {}
func (c *countingTheory) CheckSatisfied() bool                  { return true }
func (c *countingTheory) Decide() (z.Lit, bool)                 { return z.LitNull, false }

func TestRegisterTheoryDrivesPropagate(t *testing.T) {
	s := NewSolver()
	a := s.Lit()
	th := &countingTheory{owned: map[z.Var]bool{a.Var(): true}}
	s.RegisterTheory(th)
	addClause(s, a)
	if r := s.Solve(); r != 1 {
		t.Fatalf("got %d, want 1 (sat)", r)
	}
	if th.nPropRuns == 0 {
		t.Fatalf("expected the registered theory's Propagate to run at least once")
	}
}

// enqueueOnceTheory simulates a theory that, on its first Propagate call
// after its trigger is assigned true, asserts its target directly via
// Enqueue (appending to the trail without advancing BCP's qhead) rather
// than reporting a conflict itself.
type enqueueOnceTheory struct {
	id      int
	enq     inter.Enqueuer
	owned   map[z.Var]bool
	fired   bool
	trigger z.Lit
	target  z.Lit
}

func (e *enqueueOnceTheory) Init(id int, enq inter.Enqueuer) { e.id = id; e.enq = enq }
func (e *enqueueOnceTheory) Owns(v z.Var) bool                { return e.owned[v] }
func (e *enqueueOnceTheory) EnqueueTheory(m z.Lit)            {}
func (e *enqueueOnceTheory) Propagate() ([]z.Lit, bool) {
	if !e.fired && e.enq.Value(e.trigger) == 1 {
		e.fired = true
		e.enq.Enqueue(e.target, 0)
	}
	return nil, true
}
func (e *enqueueOnceTheory) Explain(token uint32, m z.Lit) []z.Lit { return nil }
func (e *enqueueOnceTheory) Backtrack(level int)                   {}
func (e *enqueueOnceTheory) CheckSatisfied() bool                  { return true }
func (e *enqueueOnceTheory) Decide() (z.Lit, bool)                 { return z.LitNull, false }

// TestTheoryEnqueueIsRecheckedByBCPBeforeSat pins down that a theory's
// Enqueue gets a real chance at BCP before the engine ever declares SAT:
// the theory forces b true once a is true, but the clauses (!b or c) and
// (!b or !c) rule b out, and only BCP re-checking b's watch list catches it.
func TestTheoryEnqueueIsRecheckedByBCPBeforeSat(t *testing.T) {
	s := NewSolver()
	a, b, c := s.Lit(), s.Lit(), s.Lit()
	addClause(s, b.Not(), c)
	addClause(s, b.Not(), c.Not())
	addClause(s, a)

	th := &enqueueOnceTheory{owned: map[z.Var]bool{b.Var(): true}, trigger: a, target: b}
	s.RegisterTheory(th)

	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat): BCP must catch the clash once the theory forces b true", r)
	}
}

// onceUnsatisfiedTheory reports its assignment inconsistent the first
// time CheckSatisfied is consulted, then makes good on the contract by
// raising a real conflict on the Propagate call that follows.
type onceUnsatisfiedTheory struct {
	id      int
	enq     inter.Enqueuer
	owned   map[z.Var]bool
	checked int
	target  z.Lit
}

func (o *onceUnsatisfiedTheory) Init(id int, enq inter.Enqueuer) { o.id = id; o.enq = enq }
func (o *onceUnsatisfiedTheory) Owns(v z.Var) bool                { return o.owned[v] }
func (o *onceUnsatisfiedTheory) EnqueueTheory(m z.Lit)            {}
func (o *onceUnsatisfiedTheory) Propagate() ([]z.Lit, bool) {
	if o.checked > 0 {
		return []z.Lit{o.target.Not()}, false
	}
	return nil, true
}
func (o *onceUnsatisfiedTheory) Explain(token uint32, m z.Lit) []z.Lit { return nil }
func (o *onceUnsatisfiedTheory) Backtrack(level int)                   {}
func (o *onceUnsatisfiedTheory) CheckSatisfied() bool {
	o.checked++
	return o.checked > 1
}
func (o *onceUnsatisfiedTheory) Decide() (z.Lit, bool) { return z.LitNull, false }

// TestCheckSatisfiedFalseTriggersAnotherRound pins down that a theory
// reporting CheckSatisfied false sends the engine back around for
// another propagation round instead of declaring SAT on the spot.
func TestCheckSatisfiedFalseTriggersAnotherRound(t *testing.T) {
	s := NewSolver()
	a := s.Lit()
	addClause(s, a)

	th := &onceUnsatisfiedTheory{owned: map[z.Var]bool{a.Var(): true}, target: a}
	s.RegisterTheory(th)

	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat): CheckSatisfied's false must force a round that surfaces the theory's conflict", r)
	}
	if th.checked == 0 {
		t.Fatalf("expected CheckSatisfied to have been consulted")
	}
}

func TestStoppedUnwindsTrailToRoot(t *testing.T) {
	s := NewSolver()
	a, b := s.Lit(), s.Lit()
	addClause(s, a, b)
	s.Interrupt()
	if r := s.Solve(); r != 0 {
		t.Fatalf("got %d, want 0 (undetermined)", r)
	}
	if s.trail.Level() != 0 {
		t.Fatalf("expected the trail unwound to level 0 after Stopped, got level %d", s.trail.Level())
	}
}

func TestPropagationBudgetExhaustionReturnsUndetermined(t *testing.T) {
	s := NewSolver()
	a, b := s.Lit(), s.Lit()
	addClause(s, a)
	addClause(s, a.Not(), b)
	s.SetPropagationBudget(1)
	if r := s.Solve(); r != 0 {
		t.Fatalf("got %d, want 0 (undetermined): propagation budget of 1 exhausted after the root unit forces b", r)
	}
	if s.ctl.propUsed < s.ctl.propBudget {
		t.Fatalf("expected the propagation budget to be exhausted, used %d of %d", s.ctl.propUsed, s.ctl.propBudget)
	}
}

func TestConflictBudgetExhaustionReturnsUndetermined(t *testing.T) {
	s := NewSolver()
	a, b, c, d := s.Lit(), s.Lit(), s.Lit(), s.Lit()
	addClause(s, a, b)
	addClause(s, a.Not(), c)
	addClause(s, b.Not(), c)
	addClause(s, c.Not(), d)
	addClause(s, c.Not(), d.Not())
	s.SetConflictBudget(0)
	if r := s.Solve(); r != 0 {
		t.Fatalf("got %d, want 0 (undetermined): a conflict budget of 0 is exhausted before any search runs", r)
	}
	if s.trail.Level() != 0 {
		t.Fatalf("expected the trail unwound to level 0, got level %d", s.trail.Level())
	}
}
