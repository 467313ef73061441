// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package inter

import "github.com/go-air/monograph/z"

// Enqueuer is the engine-provided callback a Theory uses to push implied
// literals onto the trail during Propagate, and to read the current
// assignment of any literal it cares about.
//
// A Theory must never call Enqueue for a literal the engine does not yet
// know is owned by that theory; ownership is established once, at
// registration, via Theory.Owns.
type Enqueuer interface {
	// Enqueue asserts m with a lazy reason (the calling theory's id plus
	// token) at the engine's current decision level. It returns false if m
	// is already assigned false — the caller should treat this as a
	// conflict and return its own conflict clause from Propagate instead.
	Enqueue(m z.Lit, token uint32) bool

	// Value returns 0 if m is unassigned, 1 if m is true, -1 if m is false.
	Value(m z.Lit) int8

	// Level returns the engine's current decision level.
	Level() int
}

// Theory is the contract every theory plugin (graph, bitvector, and any
// future PB/AMO/FSM plugin) implements so the CDCL engine can drive it.
//
// Ordering guarantee: within one propagation round the engine drains BCP
// before re-entering any Theory; across theories it round-robins
// registration order until a full fixed point, per the CDCL(T) coordination
// contract.
type Theory interface {
	// Init is called once at registration with this theory's id (used to
	// tag lazy reasons) and the engine callback it should use to enqueue
	// implied literals.
	Init(id int, enq Enqueuer)

	// Owns reports whether v is a variable this theory has claimed — the
	// engine uses this to route EnqueueTheory calls and decision-level
	// bookkeeping.
	Owns(v z.Var) bool

	// EnqueueTheory is called exactly once, synchronously, whenever the
	// engine assigns a literal this theory owns. Implementations typically
	// just record the assignment; heavier work happens in Propagate.
	EnqueueTheory(m z.Lit)

	// Propagate runs the theory's decision procedure to a fixed point. It
	// may call Enqueuer.Enqueue any number of times. If it detects that no
	// extension of the current partial assignment can be consistent, it
	// returns the conflicting clause (falsified, except possibly for one
	// literal) and ok=false.
	Propagate() (conflict []z.Lit, ok bool)

	// Explain materializes the reason for a literal m that was previously
	// asserted via Enqueuer.Enqueue with the given token. The returned
	// clause must be falsified under the trail except for m.
	Explain(token uint32, m z.Lit) []z.Lit

	// Backtrack undoes all theory state created at a decision level above
	// level, mirroring the engine's own trail unwinding.
	Backtrack(level int)

	// CheckSatisfied performs a full, non-incremental consistency check at
	// a complete assignment. If it returns false, the next call to
	// Propagate must produce a conflict.
	CheckSatisfied() bool

	// Decide optionally suggests a branching literal. ok is false if the
	// theory has no opinion, in which case the engine falls back to VSIDS.
	Decide() (m z.Lit, ok bool)
}
