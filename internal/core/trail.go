// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package core

import "github.com/go-air/monograph/z"

// ReasonKind distinguishes why a literal is on the trail.
type ReasonKind int8

const (
	// ReasonDecision marks a literal chosen by the search, not implied.
	ReasonDecision ReasonKind = iota
	// ReasonClause marks a literal implied by unit propagation on a stored clause.
	ReasonClause
	// ReasonTheory marks a literal implied by a theory plugin's lazy reason.
	ReasonTheory
)

// Reason records why a literal was asserted, so conflict analysis can
// resolve it into a falsified explanation on demand.
type Reason struct {
	Kind    ReasonKind
	Clause  ClauseRef // valid iff Kind == ReasonClause
	Theory  int       // theory id, valid iff Kind == ReasonTheory
	Token   uint32    // opaque theory token, valid iff Kind == ReasonTheory
}

// Trail is the CDCL assignment stack: the sequence of literals asserted so
// far, their decision levels, and the reason each was asserted, plus the
// two-watched-literal unit-propagation queue.
type Trail struct {
	db *ClauseDB

	assigned []z.Lit        // trail proper, in assertion order
	vals     []int8          // indexed by z.Var: 0 unassigned, 1 true, -1 false
	levels   []int           // indexed by z.Var: decision level at assertion
	reasons  []Reason        // indexed by z.Var
	trailLim []int           // trail length at the start of each decision level

	qhead int // index into assigned: next literal to propagate from
}

// NewTrail creates a Trail over db, initially empty.
func NewTrail(db *ClauseDB) *Trail {
	return &Trail{db: db}
}

func (t *Trail) growTo(v z.Var) {
	for z.Var(len(t.vals)) <= v {
		t.vals = append(t.vals, 0)
		t.levels = append(t.levels, -1)
		t.reasons = append(t.reasons, Reason{})
	}
}

// Level returns the current decision level (0 at the root).
func (t *Trail) Level() int {
	return len(t.trailLim)
}

// Value returns 0 if m is unassigned, 1 if m is true, -1 if m is false.
func (t *Trail) Value(m z.Lit) int8 {
	v := m.Var()
	if int(v) >= len(t.vals) {
		return 0
	}
	s := t.vals[v]
	if s == 0 {
		return 0
	}
	if m.IsPos() {
		return s
	}
	return -s
}

// VarLevel returns the decision level at which v was assigned, or -1 if v
// is unassigned.
func (t *Trail) VarLevel(v z.Var) int {
	if int(v) >= len(t.levels) {
		return -1
	}
	return t.levels[v]
}

// Reason returns the reason v was assigned.
func (t *Trail) Reason(v z.Var) Reason {
	return t.reasons[v]
}

// Push opens a new decision level.
func (t *Trail) Push() {
	t.trailLim = append(t.trailLim, len(t.assigned))
}

// assign records m as true at the current level with the given reason,
// without touching watch lists.
func (t *Trail) assign(m z.Lit, r Reason) {
	v := m.Var()
	t.growTo(v)
	if m.IsPos() {
		t.vals[v] = 1
	} else {
		t.vals[v] = -1
	}
	t.levels[v] = t.Level()
	t.reasons[v] = r
	t.assigned = append(t.assigned, m)
}

// Enqueue asserts m with reason r. It returns false without modifying the
// trail if m is already false (a conflict), true if m is already true
// (a no-op) or newly assigned.
func (t *Trail) Enqueue(m z.Lit, r Reason) bool {
	switch t.Value(m) {
	case 1:
		return true
	case -1:
		return false
	}
	t.assign(m, r)
	return true
}

// Decide opens a new decision level and asserts m as a decision.
func (t *Trail) Decide(m z.Lit) {
	t.Push()
	t.assign(m, Reason{Kind: ReasonDecision})
}

// CancelUntil unwinds the trail back to decision level, unassigning every
// literal asserted above it, and rewinds the propagation queue.
func (t *Trail) CancelUntil(level int) {
	if level >= t.Level() {
		return
	}
	start := t.trailLim[level]
	for i := len(t.assigned) - 1; i >= start; i-- {
		v := t.assigned[i].Var()
		t.vals[v] = 0
		t.levels[v] = -1
	}
	t.assigned = t.assigned[:start]
	t.trailLim = t.trailLim[:level]
	if t.qhead > len(t.assigned) {
		t.qhead = len(t.assigned)
	}
}

// Assigned returns the trail literals asserted at or above level, in
// assertion order — used by theories to replay/undo their own state and
// by the simplifier to extract a final model.
func (t *Trail) Assigned() []z.Lit {
	return t.assigned
}

// Len returns the number of literals currently on the trail.
func (t *Trail) Len() int {
	return len(t.assigned)
}

// At returns the i'th trail literal.
func (t *Trail) At(i int) z.Lit {
	return t.assigned[i]
}

// Propagate runs two-watched-literal unit propagation from qhead to a
// fixed point, returning the conflicting clause reference, or RefNull if
// none arose.
func (t *Trail) Propagate() ClauseRef {
	for t.qhead < len(t.assigned) {
		p := t.assigned[t.qhead]
		t.qhead++
		falsified := p.Not()
		ws := t.db.Watches[p]
		keep := ws[:0]
		for i := 0; i < len(ws); i++ {
			w := ws[i]
			if t.Value(w.Blocker) == 1 {
				keep = append(keep, w)
				continue
			}
			c := t.db.Clause(w.Ref)
			if c.removed {
				continue
			}
			// Ensure falsified sits at Lits[1] so Lits[0] is the candidate.
			if c.Lits[0] == falsified {
				c.Lits[0], c.Lits[1] = c.Lits[1], c.Lits[0]
			}
			first := c.Lits[0]
			if first != w.Blocker && t.Value(first) == 1 {
				w.Blocker = first
				keep = append(keep, w)
				continue
			}
			newWatch := z.LitNull
			found := false
			for j := 2; j < len(c.Lits); j++ {
				if t.Value(c.Lits[j]) != -1 {
					c.Lits[1], c.Lits[j] = c.Lits[j], c.Lits[1]
					newWatch = c.Lits[1]
					found = true
					break
				}
			}
			if found {
				t.db.watch(newWatch.Not(), Watcher{Ref: w.Ref, Blocker: first})
				continue
			}
			keep = append(keep, w)
			if t.Value(first) == -1 {
				// conflict: restore remaining watchers and bail out.
				t.db.Watches[p] = append(keep, ws[i+1:]...)
				return w.Ref
			}
			t.assign(first, Reason{Kind: ReasonClause, Clause: w.Ref})
		}
		t.db.Watches[p] = keep
	}
	return RefNull
}
