// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import "github.com/go-air/monograph/z"

// edgeState reads back an edge's current three-valued state.
type edgeState func(ei int) EdgeValue

// detector is one hash-consed decision procedure instance: Reach(u,v),
// DistLeq(u,v,bound), MaxFlow(s,t,bound), and so on, all share this shape.
//
// impliesTrue/impliesFalse each report whether the property is already
// settled no matter how any remaining unassigned edges resolve, along with
// the edges whose current state the conclusion depends on. An edge in the
// returned witness is always currently enabled or disabled — never
// unknown; a detector whose proof needs no decided edge at all (a purely
// structural fact, true for every possible resolution) returns an empty,
// non-nil witness to mean "holds unconditionally."
type detector interface {
	pred() z.Lit
	impliesTrue(g *Graph, val edgeState) (bool, []int)
	impliesFalse(g *Graph, val edgeState) (bool, []int)
}

func present(val edgeState, allowUnknown bool) func(ei int) bool {
	return func(ei int) bool {
		s := val(ei)
		if allowUnknown {
			return s != EdgeDisabled
		}
		return s == EdgeEnabled
	}
}

// boundaryDisabled returns, deduplicated, every disabled edge incident to a
// node in reached — the standard over-approximate cut: since every
// non-disabled edge leaving reached was already available to the search
// that produced reached, only a disabled edge becoming enabled could ever
// extend it.
func boundaryDisabled(g *Graph, reached map[EdgeID]bool, val edgeState, backward ...bool) []int {
	neighborsOf := g.Out
	if len(backward) > 0 && backward[0] {
		neighborsOf = g.In
	}
	seen := make(map[int]bool)
	var out []int
	for v := range reached {
		for _, ei := range neighborsOf(v) {
			if val(ei) == EdgeDisabled && !seen[ei] {
				seen[ei] = true
				out = append(out, ei)
			}
		}
	}
	return out
}
