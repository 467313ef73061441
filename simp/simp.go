// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package simp is a root-level preprocessor: bounded-occurrence variable
// elimination by resolution plus subsumption, implemented against
// inter.CnfSimp so a core.Solver can run it between Add and Solve. It
// respects a varmap.Map's frozen set and records each eliminated
// variable's substitution so the map can still answer Value for it once
// the variable has left the live problem.
package simp

import (
	"sort"

	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/varmap"
	"github.com/go-air/monograph/z"
)

// Simplifier is an inter.CnfSimp that runs bounded variable elimination
// and subsumption over the clauses it's shown via OnAdded. Preprocessing
// is toggleable per instance, mirroring Monosat.cpp's setPreprocessing
// option.
type Simplifier struct {
	Enabled bool

	// Bound caps how many occurrences (positive plus negative) a
	// variable may have before it's too expensive to eliminate by
	// resolution. Zero selects a small default.
	Bound int

	vm    *varmap.Map
	adder inter.Adder

	clauses map[z.C][]z.Lit
	occ     map[z.Var][2][]z.C // occ[v][0]: clauses with v.Pos(); [1]: v.Neg()
	order   []z.C              // insertion order, for deterministic elimination

	removed map[z.C]bool
}

const defaultBound = 12

// New creates a Simplifier that records eliminated variables' model
// substitutions in vm and adds any resolvent clauses it derives through
// adder (ordinarily the same core.Solver that SetCnfSimp installs it on).
func New(vm *varmap.Map, adder inter.Adder) *Simplifier {
	return &Simplifier{
		Enabled: true,
		Bound:   defaultBound,
		vm:      vm,
		adder:   adder,
		clauses: make(map[z.C][]z.Lit),
		occ:     make(map[z.Var][2][]z.C),
		removed: make(map[z.C]bool),
	}
}

// OnAdded records c's literals and indexes them by variable so elimination
// and subsumption can find a variable or literal's occurrences.
func (sp *Simplifier) OnAdded(c z.C, ms []z.Lit) {
	cp := append([]z.Lit(nil), ms...)
	sp.clauses[c] = cp
	sp.order = append(sp.order, c)
	for _, m := range cp {
		sp.index(m.Var(), m.IsPos(), c)
	}
}

func (sp *Simplifier) index(v z.Var, pos bool, c z.C) {
	slots := sp.occ[v]
	if pos {
		slots[0] = append(slots[0], c)
	} else {
		slots[1] = append(slots[1], c)
	}
	sp.occ[v] = slots
}

// Simplify runs subsumption elimination followed by bounded-occurrence
// variable elimination to a fixed point, returning 0 (unknown) unless a
// clause is reduced to empty, in which case it returns -1. rms lists
// every clause id that should be dropped from the solver's database.
func (sp *Simplifier) Simplify(rmSpace []z.C) (status int, rms []z.C) {
	rms = rmSpace[:0]
	if !sp.Enabled {
		return 0, rms
	}

	if sp.subsume() {
		return -1, sp.drain(rms)
	}
	for _, v := range sp.candidates() {
		if sp.eliminate(v) {
			return -1, sp.drain(rms)
		}
	}
	return 0, sp.drain(rms)
}

// candidates lists every variable with at least one occurrence, in a
// stable order (ascending occurrence count first, so cheap eliminations
// run before expensive ones).
func (sp *Simplifier) candidates() []z.Var {
	vs := make([]z.Var, 0, len(sp.occ))
	for v := range sp.occ {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool {
		ni := len(sp.occ[vs[i]][0]) + len(sp.occ[vs[i]][1])
		nj := len(sp.occ[vs[j]][0]) + len(sp.occ[vs[j]][1])
		if ni != nj {
			return ni < nj
		}
		return vs[i] < vs[j]
	})
	return vs
}

// drain marks every clause recorded as removed in sp.removed as pending
// removal and appends it to rms, then resets sp.removed for the next
// Simplify call.
func (sp *Simplifier) drain(rms []z.C) []z.C {
	for c := range sp.removed {
		rms = append(rms, c)
		delete(sp.clauses, c)
	}
	sp.removed = make(map[z.C]bool)
	return rms
}

func (sp *Simplifier) markRemoved(c z.C) {
	if sp.removed[c] {
		return
	}
	sp.removed[c] = true
	sp.deindex(c)
}

func (sp *Simplifier) deindex(c z.C) {
	lits, ok := sp.clauses[c]
	if !ok {
		return
	}
	for _, m := range lits {
		v := m.Var()
		slots := sp.occ[v]
		slot := 0
		if !m.IsPos() {
			slot = 1
		}
		slots[slot] = removeC(slots[slot], c)
		sp.occ[v] = slots
	}
}

func removeC(cs []z.C, target z.C) []z.C {
	for i, c := range cs {
		if c == target {
			return append(cs[:i], cs[i+1:]...)
		}
	}
	return cs
}

// subsume drops every clause that is a strict superset of another live
// clause's literal set, using the occurrence list of that clause's rarest
// literal as the candidate pool rather than an all-pairs scan.
// Returns true if some clause collapsed to empty (a bottom-level
// contradiction).
func (sp *Simplifier) subsume() bool {
	for _, c := range sp.order {
		lits, ok := sp.clauses[c]
		if !ok || sp.removed[c] || len(lits) == 0 {
			continue
		}
		set := litSet(lits)
		rare := rarestLit(sp, lits)
		for _, c2 := range sp.occ[rare.Var()][polaritySlot(rare)] {
			if c2 == c || sp.removed[c2] {
				continue
			}
			other, ok := sp.clauses[c2]
			if !ok || len(other) <= len(lits) {
				continue
			}
			if subsetOf(set, other) {
				sp.markRemoved(c2)
			}
		}
	}
	return false
}

func litSet(lits []z.Lit) map[z.Lit]bool {
	s := make(map[z.Lit]bool, len(lits))
	for _, m := range lits {
		s[m] = true
	}
	return s
}

func subsetOf(set map[z.Lit]bool, superset []z.Lit) bool {
	super := litSet(superset)
	for m := range set {
		if !super[m] {
			return false
		}
	}
	return true
}

func rarestLit(sp *Simplifier, lits []z.Lit) z.Lit {
	best := lits[0]
	bestN := len(sp.occ[best.Var()][polaritySlot(best)])
	for _, m := range lits[1:] {
		n := len(sp.occ[m.Var()][polaritySlot(m)])
		if n < bestN {
			best, bestN = m, n
		}
	}
	return best
}

func polaritySlot(m z.Lit) int {
	if m.IsPos() {
		return 0
	}
	return 1
}

// eliminate tries to resolve v out of every clause it appears in,
// skipping frozen variables and elimination attempts that would grow the
// clause count beyond v's own occurrence count. Returns true if a
// resolvent collapsed to empty.
func (sp *Simplifier) eliminate(v z.Var) bool {
	if sp.vm != nil && sp.vm.Frozen(v) {
		return false
	}
	pos := liveOf(sp, sp.occ[v][0])
	neg := liveOf(sp, sp.occ[v][1])
	if len(pos) == 0 && len(neg) == 0 {
		return false
	}
	if len(pos) == 0 || len(neg) == 0 {
		// pure literal: every occurrence is one polarity, so every
		// clause containing v is satisfiable by fixing v that way;
		// those clauses are dead weight and v is free in the model.
		sp.recordSubst(v, pos, neg)
		for _, c := range pos {
			sp.markRemoved(c)
		}
		for _, c := range neg {
			sp.markRemoved(c)
		}
		return false
	}
	if len(pos)+len(neg) > sp.Bound {
		return false
	}

	var resolvents [][]z.Lit
	for _, cp := range pos {
		for _, cn := range neg {
			res, tautology := resolve(sp.clauses[cp], sp.clauses[cn], v)
			if tautology {
				continue
			}
			if len(res) == 0 {
				sp.recordSubst(v, pos, neg)
				for _, c := range pos {
					sp.markRemoved(c)
				}
				for _, c := range neg {
					sp.markRemoved(c)
				}
				return true
			}
			resolvents = append(resolvents, res)
		}
	}
	if len(resolvents) > len(pos)+len(neg) {
		return false // would grow the clause count: not worth it
	}

	sp.recordSubst(v, pos, neg)
	for _, c := range pos {
		sp.markRemoved(c)
	}
	for _, c := range neg {
		sp.markRemoved(c)
	}
	for _, res := range resolvents {
		addClause(sp.adder, res)
	}
	return false
}

func liveOf(sp *Simplifier, cs []z.C) []z.C {
	out := make([]z.C, 0, len(cs))
	for _, c := range cs {
		if !sp.removed[c] {
			out = append(out, c)
		}
	}
	return out
}

// resolve combines a clause containing v.Pos() and one containing
// v.Neg() into their resolvent, dropping v, and reports a tautology if
// some other variable appears with both polarities across the two.
func resolve(a, b []z.Lit, v z.Var) (res []z.Lit, tautology bool) {
	seen := make(map[z.Lit]bool, len(a)+len(b))
	add := func(m z.Lit) bool {
		if m.Var() == v {
			return true
		}
		if seen[m.Not()] {
			return false
		}
		if !seen[m] {
			seen[m] = true
			res = append(res, m)
		}
		return true
	}
	for _, m := range a {
		if !add(m) {
			return nil, true
		}
	}
	for _, m := range b {
		if !add(m) {
			return nil, true
		}
	}
	return res, false
}

// recordSubst stores every (still-live, among the originally-collected)
// clause that mentioned v as its elimination witness, so varmap can
// replay them to recover v's value once the rest of a model is known.
func (sp *Simplifier) recordSubst(v z.Var, pos, neg []z.C) {
	if sp.vm == nil {
		return
	}
	var clauses [][]z.Lit
	for _, c := range pos {
		clauses = append(clauses, sp.clauses[c])
	}
	for _, c := range neg {
		clauses = append(clauses, sp.clauses[c])
	}
	sp.vm.RecordElimination(v, &varmap.Subst{Lit: v.Pos(), Clauses: clauses})
}

func addClause(adder inter.Adder, lits []z.Lit) {
	for _, m := range lits {
		adder.Add(m)
	}
	adder.Add(z.LitNull)
}
