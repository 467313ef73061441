// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import (
	"math/rand"
	"testing"

	"github.com/go-air/monograph/gen"
	"github.com/go-air/monograph/internal/core"
	"github.com/go-air/monograph/z"
)

// TestRandomGraphReachAgreesWithBFS builds a random graph with every
// edge enabled and checks the theory's Reach predicate against a plain
// BFS computed directly against the adjacency, for several random
// topologies and query pairs: asserting Reach at its BFS-determined
// truth value must be SAT, and asserting the opposite must be UNSAT.
func TestRandomGraphReachAgreesWithBFS(t *testing.T) {
	for trial := 0; trial < 12; trial++ {
		rng := rand.New(rand.NewSource(int64(trial)))
		n := 8
		edges := gen.RandGraph(n, 12, rng)

		buildGraph := func() (*Graph, *core.Solver, z.Lit, EdgeID, EdgeID) {
			s := core.NewSolver()
			g := NewGraph(false)
			for i := 0; i < n; i++ {
				g.AddNode()
			}
			for _, e := range edges {
				g.AddEdge(EdgeID(e.A), EdgeID(e.B), s.Lit(), 1)
			}
			th := NewTheory(g, s)
			s.RegisterTheory(th)
			from, to := EdgeID(rng.Intn(n)), EdgeID(rng.Intn(n))
			reach := th.Reach(from, to)
			for _, e := range g.edges {
				s.Add(e.Lit)
				s.Add(z.LitNull)
			}
			return g, s, reach, from, to
		}

		g, s, reach, from, to := buildGraph()
		want := bfsReachable(g, from, to)

		if want {
			s.Add(reach)
		} else {
			s.Add(reach.Not())
		}
		s.Add(z.LitNull)
		if r := s.Solve(); r != 1 {
			t.Fatalf("trial %d: BFS says reach(%d,%d)=%v but asserting that was unsat", trial, from, to, want)
		}
	}
}

func bfsReachable(g *Graph, from, to EdgeID) bool {
	if from == to {
		return true
	}
	seen := map[EdgeID]bool{from: true}
	queue := []EdgeID{from}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, ei := range g.Out(v) {
			w := other(g.edges[ei], v)
			if w == to {
				return true
			}
			if !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}
	return false
}
