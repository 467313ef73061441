// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import "github.com/go-air/monograph/z"

// mstLeqDetector asserts that a spanning tree of total weight at most
// bound exists. Enabling more edges can only lower or hold steady a
// minimum spanning tree's weight, so the monotonicity runs the same
// direction as reachability: the fewest-edges (enabled-only) view is the
// one that can prove the bound is already met, and the most-edges
// (enabled+unknown) view is the one that can prove it is out of reach.
type mstLeqDetector struct {
	bound int64
	lit   z.Lit
}

func (d *mstLeqDetector) pred() z.Lit { return d.lit }

func (d *mstLeqDetector) impliesTrue(g *Graph, val edgeState) (bool, []int) {
	spanning, weight, used := kruskalMST(g, present(val, false))
	if !spanning || weight > d.bound {
		return false, nil
	}
	return true, used
}

func (d *mstLeqDetector) impliesFalse(g *Graph, val edgeState) (bool, []int) {
	spanning, weight, _ := kruskalMST(g, present(val, true))
	if !spanning {
		// unreachable even optimistically: the graph can never span, so
		// the bound is moot but the predicate is unsatisfiable either way.
		return true, disabledEdges(g, val)
	}
	if weight <= d.bound {
		return false, nil
	}
	return true, disabledEdges(g, val)
}

func disabledEdges(g *Graph, val edgeState) []int {
	var out []int
	for i := range g.edges {
		if val(i) == EdgeDisabled {
			out = append(out, i)
		}
	}
	return out
}
