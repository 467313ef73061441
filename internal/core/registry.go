// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package core

import "sync"

// registry tracks every live Solver so a caller's own OS signal handler
// can stop all of them at once, mirroring APISignal::solvers in
// Monosat.cpp — gini itself never needed this because it assumed a
// single solver instance per process; a caller embedding several graph
// or bitvector theories side by side does not get that assumption for
// free.
var registry struct {
	mu      sync.Mutex
	solvers map[*Solver]struct{}
}

func init() {
	registry.solvers = make(map[*Solver]struct{})
}

// register adds s to the process-global registry. Called once from
// NewSolver.
func register(s *Solver) {
	registry.mu.Lock()
	registry.solvers[s] = struct{}{}
	registry.mu.Unlock()
}

// Unregister removes s from the process-global registry, e.g. once a
// caller is done with it and wants InterruptAll to stop reaching it.
func Unregister(s *Solver) {
	registry.mu.Lock()
	delete(registry.solvers, s)
	registry.mu.Unlock()
}

// InterruptAll calls Interrupt on every currently registered Solver.
func InterruptAll() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for s := range registry.solvers {
		s.Interrupt()
	}
}
