// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package core implements the CDCL(T) search engine: two-watched-literal
// unit propagation, VSIDS decisions, 1-UIP conflict analysis and learning,
// Luby-sequence restarts, and round-robin dispatch to registered theory
// plugins between propagation fixed points.
package core

import (
	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/z"
)

// theorySlot bundles a registered theory with the id the engine tags its
// lazy reasons with.
type theorySlot struct {
	id int
	th inter.Theory
}

// Solver is the CDCL(T) engine: clause store, trail/BCP, VSIDS heap, and
// the theories it coordinates.
type Solver struct {
	db    *ClauseDB
	trail *Trail
	heap  *VarHeap
	ctl   Ctl

	theories []theorySlot
	owner    []int8 // indexed by z.Var: -1 if no theory owns it, else theory id

	maxVar z.Var

	pending       []z.Lit // clause under construction via Add
	unitsAtRoot   []z.Lit
	contradiction bool

	assumptions []z.Lit
	assumpLevel int // trail decision level once all assumptions are pushed

	// learning scratch, reused across analyze calls.
	seen []int8

	nConflicts int
	nDecisions int
	nRestarts  int

	lubyUnit     int
	sinceRestart int

	unsatCore []z.Lit
	lastOK    bool // true unless the last Solve returned UNSAT under assumptions

	notified int // trail index up to which EnqueueTheory has been dispatched

	cnfSimp inter.CnfSimp
	freezer inter.Freezer
}

// NewSolver creates an empty Solver.
func NewSolver() *Solver {
	s := &Solver{
		db:       NewClauseDB(),
		owner:    make([]int8, 1, 64),
		seen:     make([]int8, 1, 64),
		ctl:      Ctl{confBudget: unlimited, propBudget: unlimited},
		lubyUnit: 100,
		lastOK:   true,
	}
	s.owner[0] = -1
	s.trail = NewTrail(s.db)
	s.heap = NewVarHeap(64)
	register(s)
	return s
}

func (s *Solver) growTo(v z.Var) {
	for z.Var(len(s.owner)) <= v {
		s.owner = append(s.owner, -1)
		s.seen = append(s.seen, 0)
	}
	if v > s.maxVar {
		s.maxVar = v
	}
	s.heap.Push(v)
}

// MaxVar returns the largest variable index ever allocated.
func (s *Solver) MaxVar() z.Var {
	return s.maxVar
}

// Lit allocates a fresh variable and returns its positive literal.
func (s *Solver) Lit() z.Lit {
	v := s.maxVar + 1
	s.growTo(v)
	return v.Pos()
}

// RegisterTheory installs t, assigning it a stable id used to tag its lazy
// reasons, and initializes t with the engine's enqueue callback.
func (s *Solver) RegisterTheory(t inter.Theory) int {
	id := len(s.theories)
	s.theories = append(s.theories, theorySlot{id: id, th: t})
	t.Init(id, &theoryEnqueuer{s: s, id: id})
	return id
}

// resolveOwner returns the theory id owning v, or -1, caching the answer.
func (s *Solver) resolveOwner(v z.Var) int8 {
	s.growTo(v)
	if s.owner[v] != -1 {
		return s.owner[v]
	}
	for _, slot := range s.theories {
		if slot.th.Owns(v) {
			s.owner[v] = int8(slot.id)
			s.freezeVar(v)
			return s.owner[v]
		}
	}
	return -1
}

// dispatchEnqueues calls EnqueueTheory on whichever theory owns each
// trail literal asserted since the last dispatch, in trail order. It must
// run after every operation that can grow the trail — BCP, a decision, or
// a theory's own Enqueue — so that within one round-robin pass a later
// theory sees an earlier theory's assignments before it runs.
func (s *Solver) dispatchEnqueues() {
	for s.notified < s.trail.Len() {
		m := s.trail.At(s.notified)
		if id := s.resolveOwner(m.Var()); id >= 0 {
			s.theories[id].th.EnqueueTheory(m)
		}
		s.notified++
	}
}

// propagate runs BCP and dispatches EnqueueTheory for anything it assigns,
// reporting how many literals it assigned to the propagation budget.
func (s *Solver) propagate() ClauseRef {
	before := s.trail.Len()
	ref := s.trail.Propagate()
	s.ctl.Propagated(int64(s.trail.Len() - before))
	s.dispatchEnqueues()
	return ref
}

// enqueueRoot asserts m as an un-owned root fact (a unit clause or an
// assumption) and dispatches EnqueueTheory for it.
func (s *Solver) enqueueRoot(m z.Lit) bool {
	ok := s.trail.Enqueue(m, Reason{Kind: ReasonDecision})
	s.dispatchEnqueues()
	return ok
}

// pushDecision opens a new decision level with m and dispatches
// EnqueueTheory for it.
func (s *Solver) pushDecision(m z.Lit) {
	s.trail.Decide(m)
	s.dispatchEnqueues()
}

// cancelUntil unwinds the trail and tells every theory to unwind its own
// state to match, regardless of which variables it owns — a theory may
// track level-indexed state (e.g. a graph's edge-assignment history) that
// isn't expressible purely in terms of owned literals.
func (s *Solver) cancelUntil(level int) {
	if level < s.trail.Level() {
		for i := s.trail.trailLim[level]; i < s.trail.Len(); i++ {
			s.heap.Push(s.trail.At(i).Var())
		}
	}
	s.trail.CancelUntil(level)
	if s.notified > s.trail.Len() {
		s.notified = s.trail.Len()
	}
	for _, slot := range s.theories {
		slot.th.Backtrack(level)
	}
}

// Add appends a literal to the clause under construction; m == z.LitNull
// commits it. A clause reduced to empty by self-contradiction leaves the
// solver permanently UNSAT; a clause reduced to a single literal is
// recorded as a root-level unit instead of a watched binary-minimum
// clause.
func (s *Solver) Add(m z.Lit) {
	if m != z.LitNull {
		s.growTo(m.Var())
		s.pending = append(s.pending, m)
		return
	}
	lits := simplifyClauseLits(s.pending)
	s.pending = s.pending[:0]
	if lits == nil {
		return // tautology
	}
	switch len(lits) {
	case 0:
		s.contradiction = true
	case 1:
		s.unitsAtRoot = append(s.unitsAtRoot, lits[0])
	default:
		ref := s.db.Add(append([]z.Lit(nil), lits...), false)
		if s.cnfSimp != nil {
			s.cnfSimp.OnAdded(z.C(ref), lits)
		}
	}
}

// SetCnfSimp installs the preprocessing simplifier that OnAdded calls
// report clauses to, and that Simplify later runs.
func (s *Solver) SetCnfSimp(cnfSimp inter.CnfSimp) {
	s.cnfSimp = cnfSimp
}

// SetFreezer installs f, which the engine calls on every assumption
// literal's variable and every variable a registered theory comes to own,
// so neither ever gets eliminated out from under an assumption or a
// theory's trail-based reads by a preprocessing pass installed separately
// via SetCnfSimp.
func (s *Solver) SetFreezer(f inter.Freezer) {
	s.freezer = f
}

func (s *Solver) freezeVar(v z.Var) {
	if s.freezer != nil {
		s.freezer.Freeze(v)
	}
}

// freezeOwnedVars resolves ownership for every variable allocated so far,
// which also freezes any newly-discovered theory-owned variable (see
// resolveOwner's freezeVar call) — run right before a preprocessing pass
// so a bit or predicate variable a theory already owns, but that hasn't
// yet appeared on the trail, can't be eliminated out from under it.
func (s *Solver) freezeOwnedVars() {
	for v := z.Var(1); v <= s.maxVar; v++ {
		s.resolveOwner(v)
	}
}

// Simplify runs the installed CnfSimp's preprocessing pass over the
// clause database accumulated by Add so far, removing whatever clauses
// it reports. It returns 1/-1/0 as Solve does, or 0 if no CnfSimp is
// installed.
func (s *Solver) Simplify() int {
	if s.cnfSimp == nil || s.contradiction {
		if s.contradiction {
			return -1
		}
		return 0
	}
	s.freezeOwnedVars()
	status, rms := s.cnfSimp.Simplify(nil)
	for _, c := range rms {
		s.db.Remove(ClauseRef(c))
	}
	return status
}

func simplifyClauseLits(lits []z.Lit) []z.Lit {
	if len(lits) == 0 {
		return []z.Lit{}
	}
	seen := make(map[z.Lit]bool, len(lits))
	out := lits[:0]
	for _, m := range lits {
		if seen[m.Not()] {
			return nil // tautology: m and ~m both present
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// Value returns the current Model value of m (false if unassigned).
func (s *Solver) Value(m z.Lit) bool {
	return s.trail.Value(m) == 1
}

// Interrupt cooperatively stops a Solve in progress.
func (s *Solver) Interrupt() {
	s.ctl.Interrupt()
}

// SetConflictBudget caps the number of conflicts the next Solve call may
// analyze before giving up with an undetermined result. n < 0 lifts the
// cap.
func (s *Solver) SetConflictBudget(n int64) {
	s.ctl.SetConfBudget(n)
}

// SetPropagationBudget caps the number of literals the next Solve call
// may propagate before giving up with an undetermined result. n < 0
// lifts the cap.
func (s *Solver) SetPropagationBudget(n int64) {
	s.ctl.SetPropBudget(n)
}

// Assume stages ms to be forced true for the next Solve call, freezing
// each one against preprocessing elimination: an assumption a simplifier
// resolved away before it was ever staged would silently lose its effect
// on the search.
func (s *Solver) Assume(ms ...z.Lit) {
	for _, m := range ms {
		s.freezeVar(m.Var())
	}
	s.assumptions = append(s.assumptions, ms...)
}

// Why appends a sound subset of the last Solve's assumptions sufficient
// to explain an UNSAT result, and returns it. The subset is found by
// resolving back through the conflict that ended the search (see
// analyzeFinal); it is not guaranteed minimal, but it excludes any
// assumption the conflict never actually depended on.
func (s *Solver) Why(dst []z.Lit) []z.Lit {
	if s.lastOK {
		return dst
	}
	return append(dst, s.unsatCore...)
}

// Solve runs the CDCL(T) search to completion, interruption, or a
// conflict with no surviving decision level, returning 1 (SAT), -1
// (UNSAT), or 0 (undetermined: interrupted or a budget exhausted, trail
// unwound to level 0).
func (s *Solver) Solve() int {
	defer func() { s.assumptions = s.assumptions[:0] }()
	s.cancelUntil(0)
	s.ctl.Reset()
	s.lastOK = true
	s.unsatCore = s.unsatCore[:0]

	if s.contradiction {
		return -1
	}
	for _, u := range s.unitsAtRoot {
		if !s.enqueueRoot(u) {
			s.contradiction = true
			return -1
		}
	}
	if confl := s.propagateToFixpoint(); confl != nil {
		s.contradiction = true
		return -1
	}

	for _, m := range s.assumptions {
		s.trail.Push()
		if !s.enqueueRoot(m) {
			s.lastOK = false
			s.unsatCore = append(s.analyzeFinal([]z.Lit{m}, s.trail.Level()), m)
			s.cancelUntil(0)
			return -1
		}
		if confl := s.propagateToFixpoint(); confl != nil {
			s.lastOK = false
			s.unsatCore = s.analyzeFinal(confl, s.trail.Level())
			s.cancelUntil(0)
			return -1
		}
	}
	s.assumpLevel = s.trail.Level()

	for {
		if s.ctl.Stopped() {
			s.ctl.stop.Store(false)
			s.cancelUntil(0)
			return 0
		}
		confl := s.propagateToFixpoint()

		if confl != nil {
			s.nConflicts++
			s.ctl.Conflict()
			if s.trail.Level() == 0 {
				s.contradiction = true
				s.lastOK = false
				if s.assumpLevel > 0 {
					// the trail entries that would explain which
					// assumptions are responsible were already unwound
					// by an earlier backjump to level 0; fall back to
					// the full assumption set.
					s.unsatCore = append(s.unsatCore[:0], s.assumptions...)
				}
				return -1
			}
			learnt, level := s.analyzeLits(confl)
			s.cancelUntil(level)
			s.learn(learnt)
			s.heap.Decay()
			s.db.Decay()
			continue
		}

		if lvl := s.trail.Level(); lvl < s.assumpLevel {
			// a backjump went below the assumption levels: push the next
			// assumption again on a level of its own, as the loop above does.
			m := s.assumptions[lvl]
			s.trail.Push()
			if !s.enqueueRoot(m) {
				s.lastOK = false
				s.unsatCore = append(s.analyzeFinal([]z.Lit{m}, lvl+1), m)
				s.cancelUntil(0)
				return -1
			}
			continue
		}

		if s.trail.Level() > s.assumpLevel && s.maybeRestart() {
			s.cancelUntil(s.assumpLevel)
			continue
		}

		if m, ok := s.decide(); ok {
			s.nDecisions++
			s.pushDecision(m)
			continue
		}
		// every variable assigned with no conflict, and every theory
		// confirms its own full consistency: SAT. A theory reporting
		// false here is obliged to produce a real conflict on its next
		// Propagate, so loop back instead of declaring SAT.
		if s.theoriesSatisfied() {
			return 1
		}
	}
}

// propagateToFixpoint alternates BCP and theory propagation until neither
// has anything left to assert: a theory's Enqueue only appends to the
// trail, it doesn't advance BCP's queue, so without this loop BCP could
// never re-check watch lists against a theory's last-minute implication
// before the engine declared SAT.
func (s *Solver) propagateToFixpoint() []z.Lit {
	for {
		if ref := s.propagate(); ref != RefNull {
			s.db.Bump(ref)
			return s.db.Clause(ref).Lits
		}
		before := s.trail.Len()
		if confl := s.runTheories(); confl != nil {
			return confl
		}
		if s.trail.Len() == before {
			return nil
		}
	}
}

// theoriesSatisfied runs every registered theory's full, non-incremental
// consistency check over the complete assignment.
func (s *Solver) theoriesSatisfied() bool {
	for _, slot := range s.theories {
		if !slot.th.CheckSatisfied() {
			return false
		}
	}
	return true
}

// runTheories drives every registered theory's Propagate to completion,
// returning the first falsified reason any of them reports, or nil if
// none conflicts. Theories are re-polled from the start after BCP would
// normally run again, so a later theory's propagation never gets stale
// information from an earlier one within the same round.
func (s *Solver) runTheories() []z.Lit {
	for _, slot := range s.theories {
		conflict, ok := slot.th.Propagate()
		s.dispatchEnqueues()
		if !ok {
			return conflict
		}
	}
	return nil
}

// decide asks each theory in registration order whether it has an opinion,
// falling back to the VSIDS heap.
func (s *Solver) decide() (z.Lit, bool) {
	for _, slot := range s.theories {
		if m, ok := slot.th.Decide(); ok {
			return m, true
		}
	}
	for !s.heap.Empty() {
		v := s.heap.Pop()
		if s.trail.Value(v.Pos()) == 0 {
			return v.Pos(), true
		}
	}
	return z.LitNull, false
}

// learn installs a learned clause, enqueuing its asserting literal (the
// clause's first literal, by 1-UIP construction) and bumping its VSIDS
// participants.
func (s *Solver) learn(lits []z.Lit) {
	for _, m := range lits {
		s.heap.Bump(m.Var())
	}
	if len(lits) == 1 {
		s.trail.Enqueue(lits[0], Reason{Kind: ReasonDecision})
		s.dispatchEnqueues()
		return
	}
	ref := s.db.Add(lits, true)
	s.db.Clauses[ref].LBD = s.computeLBD(lits)
	s.db.Bump(ref)
	s.trail.Enqueue(lits[0], Reason{Kind: ReasonClause, Clause: ref})
	s.dispatchEnqueues()
}

// computeLBD is the glue score: the number of distinct decision levels
// among a learned clause's literals, used to prioritize clause-database
// reduction toward low-glue clauses.
func (s *Solver) computeLBD(lits []z.Lit) int {
	levels := make(map[int]bool, len(lits))
	for _, m := range lits {
		levels[s.trail.VarLevel(m.Var())] = true
	}
	return len(levels)
}
