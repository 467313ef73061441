// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package monograph is the root facade: a single handle bundling the
// CDCL(T) engine, its var-map, and its preprocessor, plus convenience
// constructors for the graph and bitvector theory plugins — the Go
// analogue of Monosat.cpp's opaque Solver/GraphTheory/BitvectorTheory
// handle API.
package monograph

import (
	"github.com/go-air/monograph/bv"
	"github.com/go-air/monograph/graph"
	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/internal/core"
	"github.com/go-air/monograph/simp"
	"github.com/go-air/monograph/varmap"
	"github.com/go-air/monograph/z"
)

// Solver is a CDCL(T) instance with its var-map and root-level
// simplifier wired together, ready to register graph and bitvector
// theories on top of the plain Boolean core.
type Solver struct {
	core *core.Solver
	vm   *varmap.Map
	sp   *simp.Simplifier
}

// New creates an empty Solver with preprocessing enabled.
func New() *Solver {
	cs := core.NewSolver()
	vm := varmap.New()
	sp := simp.New(vm, cs)
	cs.SetCnfSimp(sp)
	cs.SetFreezer(vm)
	return &Solver{core: cs, vm: vm, sp: sp}
}

// MaxVar returns the largest variable index ever allocated.
func (s *Solver) MaxVar() z.Var { return s.core.MaxVar() }

// NewVar allocates a fresh variable and returns it.
func (s *Solver) NewVar() z.Var { return s.core.Lit().Var() }

// Lit allocates a fresh variable and returns its positive literal.
func (s *Solver) Lit() z.Lit { return s.core.Lit() }

// Add appends a literal to the clause under construction; m ==
// z.LitNull commits it. Implements inter.Adder.
func (s *Solver) Add(m z.Lit) { s.core.Add(m) }

// AddClause adds one clause in a single call, equivalent to calling Add
// on each of lits followed by Add(z.LitNull).
func (s *Solver) AddClause(lits ...z.Lit) {
	for _, m := range lits {
		s.core.Add(m)
	}
	s.core.Add(z.LitNull)
}

// RegisterTheory installs a theory plugin directly; NewGraph and
// NewBVTheory are the usual way to reach this for the plugins this
// module ships, but a caller's own inter.Theory can register here too.
func (s *Solver) RegisterTheory(t inter.Theory) int { return s.core.RegisterTheory(t) }

// NewGraph creates a graph and registers its theory plugin with this
// solver in one step.
func (s *Solver) NewGraph(directed bool) (*graph.Graph, *graph.Theory) {
	g := graph.NewGraph(directed)
	th := graph.NewTheory(g, s.core)
	s.core.RegisterTheory(th)
	return g, th
}

// NewBVTheory creates a bitvector Builder and its accompanying interval
// Theory and registers the theory with this solver in one step. The
// caller must call Builder.Finish before Solve to emit the bit-blasted
// CNF for whatever vectors it built.
func (s *Solver) NewBVTheory() (*bv.Builder, *bv.Theory) {
	b := bv.NewBuilder(s.core)
	th := bv.NewTheory()
	b.Attach(th)
	s.core.RegisterTheory(th)
	return b, th
}

// VarMap exposes the solver's var-map directly, for naming variables
// and bitvectors or freezing assumption-owned variables against
// elimination.
func (s *Solver) VarMap() *varmap.Map { return s.vm }

// Freeze marks v ineligible for preprocessing elimination.
func (s *Solver) Freeze(v z.Var) { s.vm.Freeze(v) }

// SetPreprocessing toggles the root-level simplifier, mirroring
// Monosat.cpp's setPreprocessing option.
func (s *Solver) SetPreprocessing(enabled bool) { s.sp.Enabled = enabled }

// Simplify runs a preprocessing pass over the clauses added so far,
// returning 1/-1/0 as Solve does.
func (s *Solver) Simplify() int { return s.core.Simplify() }

// Value returns m's value in the last model, resolving it through the
// var-map if m's variable was eliminated by preprocessing.
func (s *Solver) Value(m z.Lit) bool {
	val := s.vm.Value(m.Var(), s.core.Value)
	if !m.IsPos() {
		return !val
	}
	return val
}

// Assume stages ms to be forced true for the next Solve call.
func (s *Solver) Assume(ms ...z.Lit) { s.core.Assume(ms...) }

// Solve runs the search to completion, interruption, or a root-level
// conflict, returning 1 (SAT), -1 (UNSAT), or 0 (undetermined).
func (s *Solver) Solve() int { return s.core.Solve() }

// SolveAssumptions stages ms and solves in one call.
func (s *Solver) SolveAssumptions(ms ...z.Lit) int {
	s.core.Assume(ms...)
	return s.core.Solve()
}

// Conflict appends a sound subset of the last Solve's assumptions
// sufficient to explain an UNSAT result, and returns it.
func (s *Solver) Conflict(dst []z.Lit) []z.Lit { return s.core.Why(dst) }

// MinimizeUnsatCore is Conflict under the name Monosat.cpp's handle API
// uses for the same operation.
func (s *Solver) MinimizeUnsatCore(dst []z.Lit) []z.Lit { return s.core.Why(dst) }

// Interrupt cooperatively stops a Solve in progress.
func (s *Solver) Interrupt() { s.core.Interrupt() }

// SetConflictBudget caps the number of conflicts the next Solve call may
// analyze before giving up with an undetermined result. n < 0 lifts the
// cap.
func (s *Solver) SetConflictBudget(n int64) { s.core.SetConflictBudget(n) }

// SetPropagationBudget caps the number of literals the next Solve call
// may propagate before giving up with an undetermined result. n < 0
// lifts the cap.
func (s *Solver) SetPropagationBudget(n int64) { s.core.SetPropagationBudget(n) }
