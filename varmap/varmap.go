// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package varmap extends z.Vars with the bookkeeping a preprocessing
// simplifier and a theory-aware facade both need on top of the plain
// outer/inner bijection: a frozen set that blocks elimination of
// assumption and theory-owned variables, substitution replay so a
// simplified-away variable still answers a model query, and uniquely
// named variable/bitvector tables.
package varmap

import (
	"fmt"

	"github.com/go-air/monograph/z"
)

// Subst records that an eliminated variable's value is determined by a
// clause it no longer appears in, so a model can still answer Value for
// it after simplification drops the variable from the live problem.
type Subst struct {
	// Lit is the eliminated variable's (inner) positive literal.
	Lit z.Lit
	// Clauses are the implication clauses that had Lit resolved away;
	// replaying them in order, each satisfied except possibly for Lit,
	// reconstructs Lit's forced value.
	Clauses [][]z.Lit
}

// Map is a var-map with elimination and naming bookkeeping layered over a
// z.Vars bijection.
type Map struct {
	vars *z.Vars

	frozen map[z.Var]bool

	substOf map[z.Var]*Subst
	elimVal map[z.Var]bool // cached resolved value, once computed

	name2var map[string]z.Var
	var2name map[z.Var]string
	name2bv  map[string][]z.Lit
}

// New creates an empty Map.
func New() *Map {
	return &Map{
		vars:     z.NewVars(),
		frozen:   make(map[z.Var]bool),
		substOf:  make(map[z.Var]*Subst),
		elimVal:  make(map[z.Var]bool),
		name2var: make(map[string]z.Var),
		var2name: make(map[z.Var]string),
		name2bv:  make(map[string][]z.Lit),
	}
}

// ToInner, ToOuter, Inner, Free delegate straight to the underlying z.Vars.
func (m *Map) ToInner(lit z.Lit) z.Lit  { return m.vars.ToInner(lit) }
func (m *Map) ToOuter(lit z.Lit) z.Lit  { return m.vars.ToOuter(lit) }
func (m *Map) Inner() z.Lit             { return m.vars.Inner() }
func (m *Map) Free(lit z.Lit)           { m.vars.Free(lit) }

// Freeze marks v as ineligible for elimination — used for assumption
// literals and any variable a theory plugin owns, neither of which a
// simplifier may remove.
func (m *Map) Freeze(v z.Var) {
	m.frozen[v] = true
}

// Frozen reports whether v is frozen.
func (m *Map) Frozen(v z.Var) bool {
	return m.frozen[v]
}

// RecordElimination stores how v's value can be recovered after a
// simplifier has eliminated it, so Value keeps working for callers that
// never see the elimination happen.
func (m *Map) RecordElimination(v z.Var, s *Subst) {
	m.substOf[v] = s
	delete(m.elimVal, v)
}

// Eliminated reports whether v has been simplified away.
func (m *Map) Eliminated(v z.Var) bool {
	_, ok := m.substOf[v]
	return ok
}

// Value resolves v's value, replaying its recorded substitution against
// modelValue (the live solver's Value for any literal still in the
// problem) if v was eliminated.
func (m *Map) Value(v z.Var, modelValue func(z.Lit) bool) bool {
	if cached, ok := m.elimVal[v]; ok {
		return cached
	}
	s, ok := m.substOf[v]
	if !ok {
		return modelValue(v.Pos())
	}
	val := resolveSubst(s, modelValue)
	m.elimVal[v] = val
	return val
}

// resolveSubst replays s's clauses: each must be satisfied by some literal
// other than s.Lit/s.Lit.Not(), except the one clause that pins s.Lit's
// value, whose other literals must all be false.
func resolveSubst(s *Subst, modelValue func(z.Lit) bool) bool {
	for _, clause := range s.Clauses {
		allOthersFalse := true
		for _, lit := range clause {
			if lit.Var() == s.Lit.Var() {
				continue
			}
			if modelValue(lit) {
				allOthersFalse = false
				break
			}
		}
		if allOthersFalse {
			// every other literal is false, so this clause forces Lit to
			// whatever polarity appears in it.
			for _, lit := range clause {
				if lit.Var() == s.Lit.Var() {
					return lit.IsPos()
				}
			}
		}
	}
	// no clause forced a value: s.Lit is a pure literal, free to be false.
	return false
}

// Name binds a unique, printable name to v. It is an error, reported by
// returning false, to reuse a name already bound to a different variable.
func (m *Map) Name(v z.Var, name string) bool {
	if existing, ok := m.name2var[name]; ok && existing != v {
		return false
	}
	m.name2var[name] = v
	m.var2name[v] = name
	return true
}

// NamedVar looks up the variable bound to name.
func (m *Map) NamedVar(name string) (z.Var, bool) {
	v, ok := m.name2var[name]
	return v, ok
}

// VarName looks up the name bound to v, if any.
func (m *Map) VarName(v z.Var) (string, bool) {
	n, ok := m.var2name[v]
	return n, ok
}

// NameBV binds a unique name to a bitvector's literal sequence.
func (m *Map) NameBV(name string, bits []z.Lit) bool {
	if _, ok := m.name2bv[name]; ok {
		return false
	}
	cp := make([]z.Lit, len(bits))
	copy(cp, bits)
	m.name2bv[name] = cp
	return true
}

// NamedBV looks up the bit literals bound to name.
func (m *Map) NamedBV(name string) ([]z.Lit, bool) {
	bits, ok := m.name2bv[name]
	return bits, ok
}

func (m *Map) String() string {
	return fmt.Sprintf("varmap{vars=%d frozen=%d eliminated=%d named=%d}",
		len(m.var2name)+len(m.substOf), len(m.frozen), len(m.substOf), len(m.name2var))
}
