// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import (
	"testing"

	"github.com/go-air/monograph/internal/core"
	"github.com/go-air/monograph/z"
)

func TestGraphAddEdgeDirected(t *testing.T) {
	s := core.NewSolver()
	g := NewGraph(true)
	a, b := g.AddNode(), g.AddNode()
	lit := s.Lit()
	ei := g.AddEdge(a, b, lit, 3)

	if g.NEdges() != 1 {
		t.Fatalf("got %d edges, want 1", g.NEdges())
	}
	if len(g.Out(a)) != 1 || g.Out(a)[0] != ei {
		t.Fatalf("Out(a) = %v, want [%d]", g.Out(a), ei)
	}
	if len(g.In(b)) != 1 || g.In(b)[0] != ei {
		t.Fatalf("In(b) = %v, want [%d]", g.In(b), ei)
	}
	if len(g.Out(b)) != 0 {
		t.Fatalf("Out(b) = %v, want empty in a directed graph", g.Out(b))
	}
}

func TestGraphAddEdgeUndirected(t *testing.T) {
	s := core.NewSolver()
	g := NewGraph(false)
	a, b := g.AddNode(), g.AddNode()
	lit := s.Lit()
	ei := g.AddEdge(a, b, lit, 1)

	if len(g.Out(a)) != 1 || len(g.Out(b)) != 1 {
		t.Fatalf("expected symmetric adjacency, got Out(a)=%v Out(b)=%v", g.Out(a), g.Out(b))
	}
	if len(g.In(a)) != 1 || g.In(a)[0] != ei {
		t.Fatalf("In should mirror Out for undirected graphs, got %v", g.In(a))
	}
}

func TestEdgeSetAtMostOne(t *testing.T) {
	s := core.NewSolver()
	g := NewGraph(true)
	a, b, c := g.AddNode(), g.AddNode(), g.AddNode()
	l1, l2 := s.Lit(), s.Lit()
	e1 := g.AddEdge(a, b, l1, 1)
	e2 := g.AddEdge(a, c, l2, 1)

	es := g.NewEdgeSet()
	es.Add(e1)
	es.Add(e2)
	es.EnforceEdgeAssignment(s)

	s.Add(l1)
	s.Add(z.LitNull)
	s.Add(l2)
	s.Add(z.LitNull)
	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat): at most one of an edge set's members may be enabled", r)
	}
}

// TestEdgeSetAtMostOneLargeSetUsesSortingNetwork exercises the
// sorting-network path EnforceEdgeAssignment switches to once an edge
// set's member count passes pairwiseThreshold.
func TestEdgeSetAtMostOneLargeSetUsesSortingNetwork(t *testing.T) {
	s := core.NewSolver()
	g := NewGraph(true)
	root := g.AddNode()
	es := g.NewEdgeSet()
	const n = pairwiseThreshold + 3
	lits := make([]z.Lit, n)
	for i := 0; i < n; i++ {
		leaf := g.AddNode()
		lits[i] = s.Lit()
		ei := g.AddEdge(root, leaf, lits[i], 1)
		es.Add(ei)
	}
	es.EnforceEdgeAssignment(s)

	s.Add(lits[0])
	s.Add(z.LitNull)
	if r := s.Solve(); r != 1 {
		t.Fatalf("got %d, want sat: a single enabled member is allowed", r)
	}
	for i := 1; i < n; i++ {
		if s.Value(lits[i]) {
			t.Fatalf("member %d is true alongside member 0, violates at-most-one", i)
		}
	}

	s.Add(lits[1])
	s.Add(z.LitNull)
	if r := s.Solve(); r != -1 {
		t.Fatalf("got %d, want -1 (unsat): two enabled members violate at-most-one", r)
	}
}
