// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package simp

import (
	"testing"

	"github.com/go-air/monograph/internal/core"
	"github.com/go-air/monograph/varmap"
	"github.com/go-air/monograph/z"
)

func addClauseDirect(s *core.Solver, lits ...z.Lit) {
	for _, m := range lits {
		s.Add(m)
	}
	s.Add(z.LitNull)
}

func TestSubsumptionDropsSupersetClause(t *testing.T) {
	s := core.NewSolver()
	vm := varmap.New()
	sp := New(vm, s)
	s.SetCnfSimp(sp)

	a := s.Lit()
	b := s.Lit()
	c := s.Lit()

	addClauseDirect(s, a, b)
	addClauseDirect(s, a, b, c)
	// freeze a and b so that only subsumption acts on these clauses.
	vm.Freeze(a.Var())
	vm.Freeze(b.Var())

	if status := s.Simplify(); status != 0 {
		t.Fatalf("Simplify status = %d, want 0", status)
	}
	if len(sp.clauses) != 1 {
		t.Fatalf("expected the superset clause to be subsumed away, got %d live clauses", len(sp.clauses))
	}
}

func TestBoundedEliminationPreservesSatisfiability(t *testing.T) {
	s := core.NewSolver()
	vm := varmap.New()
	sp := New(vm, s)
	s.SetCnfSimp(sp)

	a := s.Lit()
	b := s.Lit()
	c := s.Lit()

	// (a or b) and (!a or c), with b and c frozen: eliminating a should
	// yield (b or c).
	addClauseDirect(s, a, b)
	addClauseDirect(s, a.Not(), c)
	vm.Freeze(b.Var())
	vm.Freeze(c.Var())

	if status := s.Simplify(); status != 0 {
		t.Fatalf("Simplify status = %d, want 0", status)
	}
	s.Add(b.Not())
	s.Add(z.LitNull)
	s.Add(c.Not())
	s.Add(z.LitNull)

	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat): b and c both false contradicts (b or c)", r)
	}
}

func TestFrozenVariableIsNeverEliminated(t *testing.T) {
	vm := varmap.New()
	adder := &recordingAdder{}
	sp := New(vm, adder)

	a := z.Var(1)
	vm.Freeze(a)
	sp.OnAdded(1, []z.Lit{a.Pos(), z.Var(2).Pos()})
	sp.OnAdded(2, []z.Lit{a.Neg(), z.Var(3).Pos()})

	sp.Simplify(nil)
	if vm.Eliminated(a) {
		t.Fatalf("a is frozen and must not be eliminated")
	}
}

func TestPureLiteralEliminationRecordsSubstitution(t *testing.T) {
	vm := varmap.New()
	adder := &recordingAdder{}
	sp := New(vm, adder)

	a := z.Var(1)
	b := z.Var(2)
	sp.OnAdded(1, []z.Lit{a.Pos(), b.Pos()})

	sp.Simplify(nil)
	if !vm.Eliminated(a) {
		t.Fatalf("a appears only positively and should be eliminated as a pure literal")
	}
}

type recordingAdder struct {
	pending []z.Lit
	added   [][]z.Lit
}

func (r *recordingAdder) Add(m z.Lit) {
	if m == z.LitNull {
		r.added = append(r.added, r.pending)
		r.pending = nil
		return
	}
	r.pending = append(r.pending, m)
}
