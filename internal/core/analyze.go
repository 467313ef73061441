// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package core

import "github.com/go-air/monograph/z"

// analyzeLits runs first-UIP conflict analysis over a falsified
// disjunction (a clause's literals, or a theory's conflict reason),
// resolving backward along the trail until exactly one literal at the
// current decision level remains. It returns the learned clause (its
// asserting literal first) and the level to backjump to before asserting
// it.
//
// Resolution steps through whichever reason produced each literal —
// ordinary clause or a theory's lazy Explain — uniformly, which is what
// makes CDCL(T) learning work without every theory knowing about clause
// storage.
func (s *Solver) analyzeLits(confl []z.Lit) (learnt []z.Lit, level int) {
	trail := s.trail
	learnt = append(learnt, z.LitNull) // reserved for the asserting literal
	pathC := 0
	p := z.LitNull
	idx := trail.Len() - 1
	cur := confl

	for {
		for _, q := range cur {
			if q == p {
				continue
			}
			v := q.Var()
			if s.seen[v] != 0 {
				continue
			}
			s.seen[v] = 1
			s.heap.Bump(v)
			lvl := trail.VarLevel(v)
			if lvl <= 0 {
				continue // false at the root: contributes nothing to the learned clause
			}
			if lvl == trail.Level() {
				pathC++
			} else {
				learnt = append(learnt, q)
			}
		}
		for s.seen[trail.At(idx).Var()] == 0 {
			idx--
		}
		p = trail.At(idx)
		v := p.Var()
		idx--
		s.seen[v] = 0
		pathC--
		if pathC == 0 {
			break
		}
		cur = s.reasonLiterals(trail.Reason(v), p)
	}
	learnt[0] = p.Not()

	for _, m := range learnt {
		s.seen[m.Var()] = 0
	}

	if len(learnt) == 1 {
		return learnt, 0
	}
	maxI, maxLvl := 1, trail.VarLevel(learnt[1].Var())
	for i := 2; i < len(learnt); i++ {
		if lvl := trail.VarLevel(learnt[i].Var()); lvl > maxLvl {
			maxLvl, maxI = lvl, i
		}
	}
	learnt[1], learnt[maxI] = learnt[maxI], learnt[1]
	return learnt, maxLvl
}

// reasonLiterals returns a reason clause's literals other than p — the
// literal the reason is the antecedent of. Decision and assumption
// literals have no antecedent; resolving one would be a bug in the
// surrounding analysis loop, so this returns nil rather than panicking.
func (s *Solver) reasonLiterals(r Reason, p z.Lit) []z.Lit {
	switch r.Kind {
	case ReasonClause:
		lits := s.db.Clause(r.Clause).Lits
		return without(lits, p)
	case ReasonTheory:
		lits := s.theories[r.Theory].th.Explain(r.Token, p)
		return without(lits, p)
	default:
		return nil
	}
}

// analyzeFinal builds a sound, not-necessarily-minimal subset of the
// assumptions/root units responsible for confl, a currently-falsified
// disjunction, by resolving backward along the trail from confl's
// variables down toward level 0. Unlike analyzeLits it does not learn a
// clause: each var whose Reason is itself a decision (an assumption or a
// root unit, the only ReasonDecision entries at or below maxLevel) is
// emitted into the core directly rather than resolved further; everything
// else is expanded through its reason and the search continues. It uses
// its own seen set rather than s.seen, since analyzeLits only clears the
// bits it set on the learned clause's own variables, leaving level-0
// bits from earlier resolution steps stale.
func (s *Solver) analyzeFinal(confl []z.Lit, maxLevel int) []z.Lit {
	trail := s.trail
	seen := make(map[z.Var]bool)
	var core []z.Lit

	for _, m := range confl {
		if lvl := trail.VarLevel(m.Var()); lvl > 0 && lvl <= maxLevel {
			seen[m.Var()] = true
		}
	}

	for idx := trail.Len() - 1; idx >= 0; idx-- {
		p := trail.At(idx)
		v := p.Var()
		if !seen[v] {
			continue
		}
		seen[v] = false
		r := trail.Reason(v)
		if r.Kind == ReasonDecision {
			core = append(core, p)
			continue
		}
		for _, q := range s.reasonLiterals(r, p) {
			if lvl := trail.VarLevel(q.Var()); lvl > 0 && lvl <= maxLevel {
				seen[q.Var()] = true
			}
		}
	}
	return core
}

func without(lits []z.Lit, p z.Lit) []z.Lit {
	out := make([]z.Lit, 0, len(lits))
	for _, m := range lits {
		if m != p {
			out = append(out, m)
		}
	}
	return out
}
