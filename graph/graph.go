// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package graph implements the graph theory plugin: a labeled multigraph
// whose edges are Boolean literals, with lazy decision procedures for
// reachability, shortest path, max-flow/min-cut, minimum spanning tree,
// and acyclicity, each able to produce a falsified clause on conflict.
package graph

import "github.com/go-air/monograph/z"

// EdgeID identifies one edge of a Graph, stable across the graph's
// lifetime even as other edges are added.
type EdgeID int

// Edge is one labeled arc: From -> To, enabled iff Lit is true, with an
// integer Weight used by distance/flow/MST detectors.
type Edge struct {
	From, To EdgeID
	Lit      z.Lit
	Weight   int64
}

// Graph is the multigraph the theory reasons over: nodes are dense
// integer ids, edges carry a literal that enables/disables them and a
// weight.
type Graph struct {
	Directed bool

	nNodes int
	edges  []Edge
	out    map[EdgeID][]int // node -> indices into edges, outgoing
	in     map[EdgeID][]int // node -> indices into edges, incoming (directed only)

	litToEdges map[z.Lit][]int // an outer literal may label more than one edge
}

// NewGraph creates an empty graph.
func NewGraph(directed bool) *Graph {
	return &Graph{
		Directed:   directed,
		out:        make(map[EdgeID][]int),
		in:         make(map[EdgeID][]int),
		litToEdges: make(map[z.Lit][]int),
	}
}

// AddNode allocates and returns a fresh node id.
func (g *Graph) AddNode() EdgeID {
	id := EdgeID(g.nNodes)
	g.nNodes++
	return id
}

// NNodes returns the number of nodes allocated so far.
func (g *Graph) NNodes() int {
	return g.nNodes
}

// AddEdge adds an edge from -> to, enabled by lit, with the given weight,
// and returns its id.
func (g *Graph) AddEdge(from, to EdgeID, lit z.Lit, weight int64) int {
	id := len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Lit: lit, Weight: weight})
	g.out[from] = append(g.out[from], id)
	if g.Directed {
		g.in[to] = append(g.in[to], id)
	} else {
		g.out[to] = append(g.out[to], id)
	}
	g.litToEdges[lit] = append(g.litToEdges[lit], id)
	return id
}

// Edge returns the edge at index i.
func (g *Graph) Edge(i int) Edge {
	return g.edges[i]
}

// NEdges returns the number of edges added so far.
func (g *Graph) NEdges() int {
	return len(g.edges)
}

// EdgesOf returns the outer literal m's edges — normally one, but a
// literal may label a parallel bundle of edges sharing one switch.
func (g *Graph) EdgesOf(m z.Lit) []int {
	return g.litToEdges[m]
}

// Out returns the indices of edges leaving node v.
func (g *Graph) Out(v EdgeID) []int {
	return g.out[v]
}

// In returns the indices of edges entering node v (directed graphs only;
// for undirected graphs this is the same as Out).
func (g *Graph) In(v EdgeID) []int {
	if !g.Directed {
		return g.out[v]
	}
	return g.in[v]
}

// EdgeValue is the assignment state of an edge's literal as the theory
// sees it, from an Enqueuer.Value-style three-valued read.
type EdgeValue int8

const (
	// EdgeUnknown means the edge's literal is unassigned: it exists in
	// the over-approximate view and not in the under-approximate view.
	EdgeUnknown EdgeValue = 0
	// EdgeEnabled means the edge's literal is true: present in both views.
	EdgeEnabled EdgeValue = 1
	// EdgeDisabled means the edge's literal is false: absent from both views.
	EdgeDisabled EdgeValue = -1
)
