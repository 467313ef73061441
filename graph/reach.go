// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import "github.com/go-air/monograph/z"

// distLeqDetector asserts a hop-count path of at most `steps` edges exists
// between from and to. steps == -1 is the "any length" sentinel that makes
// this the Reach detector — hash-consed on the same (from, to, steps) key
// so a later DistLeq with the same nodes and a real bound does not
// allocate a second, redundant predicate.
type distLeqDetector struct {
	from, to EdgeID
	steps    int64
	backward bool
	lit      z.Lit
}

func (d *distLeqDetector) pred() z.Lit { return d.lit }

func (d *distLeqDetector) withinBound(lvl int) bool {
	return d.steps < 0 || int64(lvl) <= d.steps
}

func (d *distLeqDetector) impliesTrue(g *Graph, val edgeState) (bool, []int) {
	levels, via := bfsLevels(g, d.from, present(val, false), d.backward)
	lvl, ok := levels[d.to]
	if !ok || !d.withinBound(lvl) {
		return false, nil
	}
	return true, pathEdges(g, via, d.from, d.to)
}

func (d *distLeqDetector) impliesFalse(g *Graph, val edgeState) (bool, []int) {
	levels, _ := bfsLevels(g, d.from, present(val, true), d.backward)
	if lvl, ok := levels[d.to]; ok && d.withinBound(lvl) {
		return false, nil
	}
	reached := make(map[EdgeID]bool)
	for v, lvl := range levels {
		if d.steps < 0 || int64(lvl) < d.steps {
			reached[v] = true
		}
	}
	return true, boundaryDisabled(g, reached, val, d.backward)
}

type weightedDistLeqDetector struct {
	from, to EdgeID
	bound    int64
	lit      z.Lit
}

func (d *weightedDistLeqDetector) pred() z.Lit { return d.lit }

func (d *weightedDistLeqDetector) impliesTrue(g *Graph, val edgeState) (bool, []int) {
	dist, via := dijkstra(g, d.from, present(val, false))
	dv, ok := dist[d.to]
	if !ok || dv > d.bound {
		return false, nil
	}
	return true, pathEdges(g, via, d.from, d.to)
}

func (d *weightedDistLeqDetector) impliesFalse(g *Graph, val edgeState) (bool, []int) {
	dist, _ := dijkstra(g, d.from, present(val, true))
	if dv, ok := dist[d.to]; ok && dv <= d.bound {
		return false, nil
	}
	reached := make(map[EdgeID]bool)
	for v, dv := range dist {
		if dv < d.bound {
			reached[v] = true
		}
	}
	return true, boundaryDisabled(g, reached, val)
}
