// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package core

import "github.com/go-air/monograph/z"

// ClauseRef is an ephemeral reference into a ClauseDB. -1 means "no
// clause" (the literal's reason is a decision, an assumption, or a lazy
// theory reason instead).
type ClauseRef int32

// RefNull is the null clause reference.
const RefNull ClauseRef = -1

// Clause is a stored disjunction of literals together with the
// bookkeeping CDCL search needs: whether it was learned (vs. an original
// problem clause), a VSIDS-style activity used to decide which learned
// clauses to keep under clause-database reduction, and a glue/LBD score
// recorded at learning time.
type Clause struct {
	Lits     []z.Lit
	Learnt   bool
	Activity float64
	LBD      int
	removed  bool
}

// ClauseDB owns every problem and learned clause plus the watch lists
// the two-watched-literal scheme needs to find unit clauses quickly.
//
// The two watched literals are always the first two entries of Lits;
// BCP (Trail.propagate) maintains the invariant that they are never both
// false unless the clause is conflicting.
type ClauseDB struct {
	Clauses []*Clause
	Watches map[z.Lit][]Watcher

	ClauseInc   float64
	ClauseDecay float64
}

// Watcher records, for a literal m, a clause that watches m's negation
// and the clause's other "blocker" literal — a cheap check that can skip
// re-scanning the clause when the blocker is already true.
type Watcher struct {
	Ref     ClauseRef
	Blocker z.Lit
}

// NewClauseDB creates an empty clause database.
func NewClauseDB() *ClauseDB {
	return &ClauseDB{
		Clauses:     make([]*Clause, 0, 1024),
		Watches:     make(map[z.Lit][]Watcher, 1024),
		ClauseInc:   1.0,
		ClauseDecay: 1.0 / 0.999,
	}
}

// Clause returns the clause at ref.
func (db *ClauseDB) Clause(ref ClauseRef) *Clause {
	return db.Clauses[ref]
}

// Add stores lits (len(lits) >= 2) as a new clause, watching its first two
// literals, and returns its reference.
func (db *ClauseDB) Add(lits []z.Lit, learnt bool) ClauseRef {
	c := &Clause{Lits: lits, Learnt: learnt}
	ref := ClauseRef(len(db.Clauses))
	db.Clauses = append(db.Clauses, c)
	if len(lits) >= 2 {
		a, b := lits[0], lits[1]
		db.watch(a.Not(), Watcher{Ref: ref, Blocker: b})
		db.watch(b.Not(), Watcher{Ref: ref, Blocker: a})
	}
	return ref
}

func (db *ClauseDB) watch(onFalse z.Lit, w Watcher) {
	db.Watches[onFalse] = append(db.Watches[onFalse], w)
}

// Bump increases a learned clause's activity, rescaling every clause's
// activity if it overflows — the clause-database analogue of VSIDS.
func (db *ClauseDB) Bump(ref ClauseRef) {
	c := db.Clauses[ref]
	if !c.Learnt {
		return
	}
	c.Activity += db.ClauseInc
	if c.Activity > 1e100 {
		for _, cl := range db.Clauses {
			cl.Activity *= 1e-100
		}
		db.ClauseInc *= 1e-100
	}
}

// Decay geometrically increases the bump increment, so recently-bumped
// clauses stay hot relative to older ones without rescaling every
// conflict.
func (db *ClauseDB) Decay() {
	db.ClauseInc *= db.ClauseDecay
}

// tail returns every literal but the first — used when a reason clause's
// first literal is the literal it implies and the rest must be falsified
// to build an explanation.
func (c *Clause) tail() []z.Lit {
	if len(c.Lits) == 0 {
		return nil
	}
	return c.Lits[1:]
}

// Remove marks ref's clause dead and detaches it from both its watch
// lists, for a preprocessor that drops subsumed or resolved-away clauses
// between solves. Propagate already skips a removed clause it stumbles
// over via a stale Watcher, so a removal mid-search (as opposed to
// between Solve calls) is also safe, just not reclaimed until the
// watcher itself is popped.
func (db *ClauseDB) Remove(ref ClauseRef) {
	c := db.Clauses[ref]
	if c.removed {
		return
	}
	c.removed = true
	if len(c.Lits) < 2 {
		return
	}
	db.unwatch(c.Lits[0].Not(), ref)
	db.unwatch(c.Lits[1].Not(), ref)
}

func (db *ClauseDB) unwatch(onFalse z.Lit, ref ClauseRef) {
	ws := db.Watches[onFalse]
	for i, w := range ws {
		if w.Ref == ref {
			db.Watches[onFalse] = append(ws[:i], ws[i+1:]...)
			return
		}
	}
}

// Removed reports whether ref's clause has been removed.
func (db *ClauseDB) Removed(ref ClauseRef) bool {
	return db.Clauses[ref].removed
}

// Lits returns ref's clause's literals.
func (db *ClauseDB) Lits(ref ClauseRef) []z.Lit {
	return db.Clauses[ref].Lits
}

// NClauses returns the number of clause slots ever allocated, including
// removed ones — a valid upper bound for ref iteration.
func (db *ClauseDB) NClauses() int {
	return len(db.Clauses)
}
