// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package core

import "github.com/go-air/monograph/z"

// theoryEnqueuer is the inter.Enqueuer handed to exactly one theory at
// registration, closing over that theory's id so every literal it asserts
// is tagged with a lazy reason the engine can later ask that same theory
// to Explain.
type theoryEnqueuer struct {
	s  *Solver
	id int
}

func (e *theoryEnqueuer) Enqueue(m z.Lit, token uint32) bool {
	r := Reason{Kind: ReasonTheory, Theory: e.id, Token: token}
	return e.s.trail.Enqueue(m, r)
}

func (e *theoryEnqueuer) Value(m z.Lit) int8 {
	return e.s.trail.Value(m)
}

func (e *theoryEnqueuer) Level() int {
	return e.s.trail.Level()
}
