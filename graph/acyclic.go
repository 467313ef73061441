// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import "github.com/go-air/monograph/z"

// acyclicDetector asserts the graph has no cycle. Enabling more edges can
// only introduce cycles, never remove one, so acyclicity is the dual of
// reachability: the most-edges (enabled+unknown) view is the one that can
// prove the property holds for good, and the fewest-edges (enabled-only)
// view is the one that can prove it has already failed for good.
type acyclicDetector struct {
	lit z.Lit
}

func (d *acyclicDetector) pred() z.Lit { return d.lit }

func (d *acyclicDetector) impliesTrue(g *Graph, val edgeState) (bool, []int) {
	if findCycle(g, present(val, true)) != nil {
		return false, nil
	}
	// no possible resolution of the remaining unknown edges can introduce
	// a cycle; this holds unconditionally, independent of the trail.
	return true, []int{}
}

func (d *acyclicDetector) impliesFalse(g *Graph, val edgeState) (bool, []int) {
	cyc := findCycle(g, present(val, false))
	if cyc == nil {
		return false, nil
	}
	return true, cyc
}

// onPathDetector asserts that node `via` lies on some from->to path.
type onPathDetector struct {
	from, to, via EdgeID
	lit           z.Lit
}

func (d *onPathDetector) pred() z.Lit { return d.lit }

func (d *onPathDetector) impliesTrue(g *Graph, val edgeState) (bool, []int) {
	present1 := present(val, false)
	lvlsFrom, viaFrom := bfsLevels(g, d.from, present1)
	if _, ok := lvlsFrom[d.via]; !ok {
		return false, nil
	}
	lvlsVia, viaVia := bfsLevels(g, d.via, present1)
	if _, ok := lvlsVia[d.to]; !ok {
		return false, nil
	}
	edges := pathEdges(g, viaFrom, d.from, d.via)
	edges = append(edges, pathEdges(g, viaVia, d.via, d.to)...)
	return true, edges
}

func (d *onPathDetector) impliesFalse(g *Graph, val edgeState) (bool, []int) {
	present1 := present(val, true)
	lvlsFrom, _ := bfsLevels(g, d.from, present1)
	lvlsVia, _ := bfsLevels(g, d.via, present1)
	_, fromReaches := lvlsFrom[d.via]
	_, viaReaches := lvlsVia[d.to]
	if fromReaches && viaReaches {
		return false, nil
	}
	reached := make(map[EdgeID]bool)
	for v := range lvlsFrom {
		reached[v] = true
	}
	for v := range lvlsVia {
		reached[v] = true
	}
	return true, boundaryDisabled(g, reached, val)
}
