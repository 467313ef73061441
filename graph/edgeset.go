// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import (
	"github.com/go-air/monograph/card"
	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/z"
)

// pairwiseThreshold is the member count above which EnforceEdgeAssignment
// switches from the pairwise O(n^2) encoding to a sorting network: below
// it, the pairwise encoding's constant-factor simplicity wins; above it,
// the network's O(n*log2(n)^2) clause count wins.
const pairwiseThreshold = 6

// EdgeSet groups edges that model one switched connection whose weight
// depends on which, if any, member ends up enabled — mirroring
// newEdgeSet/assign-edges-to-weight in Monosat.cpp. The set carries no
// decision procedure of its own: every detector already reads the
// group's chosen edge through the ordinary Graph, so all EdgeSet adds is
// the at-most-one constraint over its members' literals.
type EdgeSet struct {
	g     *Graph
	edges []int
}

// NewEdgeSet creates an empty edge set over g.
func (g *Graph) NewEdgeSet() *EdgeSet {
	return &EdgeSet{g: g}
}

// Add includes the edge at index ei in the set.
func (es *EdgeSet) Add(ei int) {
	es.edges = append(es.edges, ei)
}

// Edges returns the set's member edge indices.
func (es *EdgeSet) Edges() []int {
	return es.edges
}

// EnforceEdgeAssignment adds an at-most-one constraint over the set's
// member literals to dst, so enabling one member forces every other
// disabled and the group's weight is never ambiguous. Small sets get a
// pairwise encoding; larger ones get a sorting-network encoding, which
// dst must support generating fresh variables for (card.LitAdder).
func (es *EdgeSet) EnforceEdgeAssignment(dst inter.Adder) {
	if len(es.edges) > pairwiseThreshold {
		if la, ok := dst.(card.LitAdder); ok {
			ms := make([]z.Lit, len(es.edges))
			for i, ei := range es.edges {
				ms[i] = es.g.edges[ei].Lit
			}
			card.AtMostOne(la, ms)
			return
		}
	}
	for i := 0; i < len(es.edges); i++ {
		li := es.g.edges[es.edges[i]].Lit
		for j := i + 1; j < len(es.edges); j++ {
			lj := es.g.edges[es.edges[j]].Lit
			dst.Add(li.Not())
			dst.Add(lj.Not())
			dst.Add(z.LitNull)
		}
	}
}
