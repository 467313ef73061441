// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

// bfsLevels runs an unweighted breadth-first search from src, following
// edge i only if present(i) reports it usable. It returns, for every node
// it reaches, the hop count from src and the edge used to first reach it.
func bfsLevels(g *Graph, src EdgeID, present func(i int) bool, backward ...bool) (levels map[EdgeID]int, via map[EdgeID]int) {
	levels = map[EdgeID]int{src: 0}
	via = make(map[EdgeID]int)
	neighborsOf := g.Out
	if len(backward) > 0 && backward[0] {
		neighborsOf = g.In
	}
	queue := []EdgeID{src}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, ei := range neighborsOf(v) {
			if !present(ei) {
				continue
			}
			w := other(g.edges[ei], v)
			if _, seen := levels[w]; seen {
				continue
			}
			levels[w] = levels[v] + 1
			via[w] = ei
			queue = append(queue, w)
		}
	}
	return levels, via
}

// other returns the endpoint of e that is not v, so traversal works the
// same way whether arriving along a directed or undirected edge.
func other(e Edge, v EdgeID) EdgeID {
	if e.From == v {
		return e.To
	}
	return e.From
}

// pathEdges walks via backward from dst to src, returning the edges on the
// path in src->dst order.
func pathEdges(g *Graph, via map[EdgeID]int, src, dst EdgeID) []int {
	if dst == src {
		return nil
	}
	var rev []int
	v := dst
	for v != src {
		ei, ok := via[v]
		if !ok {
			return nil
		}
		rev = append(rev, ei)
		v = other(g.edges[ei], v)
	}
	out := make([]int, len(rev))
	for i, ei := range rev {
		out[len(rev)-1-i] = ei
	}
	return out
}
