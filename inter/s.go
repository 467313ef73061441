// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package inter

import "github.com/go-air/monograph/z"

// Solvable encapsulates a decision procedure which may run for a long
// time.
//
// Solve returns
//
//	 1  if the problem is SAT
//	 0  if the problem is undetermined (budget or interrupt exhausted)
//	-1  if the problem is UNSAT
type Solvable interface {
	Solve() int
}

// Adder encapsulates something to which clauses can be added by sequences
// of z.LitNull-terminated literals.
type Adder interface {
	// Add appends a literal to the clause under construction; m ==
	// z.LitNull signals end of clause.
	Add(m z.Lit)
}

// MaxVar records the maximum variable seen across a stream of Adds,
// Assumes, and allocations, and returns it.
type MaxVar interface {
	MaxVar() z.Var
}

// Liter produces fresh variables and returns their positive literal.
type Liter interface {
	Lit() z.Lit
}

// Model encapsulates something a model can be extracted from.
type Model interface {
	Value(m z.Lit) bool
}

// Assumable encapsulates assumption-driven solving.
type Assumable interface {
	// Assume stages ms to be forced true for the next Solve call.
	Assume(ms ...z.Lit)

	// Why appends to dst a subset of the last Solve's assumptions
	// sufficient to explain an UNSAT result, and returns it. The subset is
	// not necessarily minimal.
	// If the last result was not UNSAT, Why returns dst unchanged.
	Why(dst []z.Lit) []z.Lit
}

// S is the complete incremental SAT(T) interface: everything needed to
// add clauses, register theories, solve under assumptions, and read back
// a model or an unsat core.
type S interface {
	MaxVar
	Liter
	Adder
	Solvable
	Model
	Assumable

	// RegisterTheory installs a theory plugin, assigning it a stable
	// theory id used to tag its lazy reasons.
	RegisterTheory(t Theory) int

	// Interrupt cooperatively stops a Solve in progress; observed at the
	// next propagation or decision boundary.
	Interrupt()
}

// CnfSimp is the hook a preprocessing simplifier uses to observe and
// remove clauses, mirroring the solver's own Add/clause-compaction
// lifecycle.
type CnfSimp interface {
	// OnAdded is called with a clause's identity and literals whenever a
	// non-tautological, duplicate-free, non-trivial clause is added.
	// Learned clauses are never passed to OnAdded.
	OnAdded(c z.C, ms []z.Lit)

	// Simplify performs preprocessing, returning a status like Solve
	// (1: sat, -1: unsat, 0: unknown) and populating rms with clause ids
	// to remove, reusing rmSpace's backing array if there's room.
	Simplify(rmSpace []z.C) (status int, rms []z.C)
}

// Simplifier is the facet of a solver that runs root-level preprocessing.
type Simplifier interface {
	SetCnfSimp(cnfSimp CnfSimp)

	// Simplify returns 1 if sat, -1 if unsat, 0 if unknown or if no
	// CnfSimp has been set.
	Simplify() int
}

// Freezer marks a variable ineligible for preprocessing elimination. A
// solver that wires one in calls it automatically on every assumption
// literal and every variable a registered theory comes to own, so a
// caller never has to remember to protect those from the simplifier
// itself.
type Freezer interface {
	Freeze(v z.Var)
}
