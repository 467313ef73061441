// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

// findCycle looks for a cycle using only edges for which present reports
// true, returning the cycle's edges if one exists.
func findCycle(g *Graph, present func(i int) bool) []int {
	if g.Directed {
		return findCycleDirected(g, present)
	}
	return findCycleUndirected(g, present)
}

func findCycleDirected(g *Graph, present func(i int) bool) []int {
	const white, gray, black = 0, 1, 2
	color := make([]int8, g.NNodes())
	viaEdge := make([]int, g.NNodes())
	for i := range viaEdge {
		viaEdge[i] = -1
	}
	var cycle []int

	var dfs func(v EdgeID) bool
	dfs = func(v EdgeID) bool {
		color[v] = gray
		for _, ei := range g.Out(v) {
			if !present(ei) {
				continue
			}
			w := g.edges[ei].To
			switch color[w] {
			case white:
				viaEdge[w] = ei
				if dfs(w) {
					return true
				}
			case gray:
				// found a back edge w <- ... <- v -> w; walk back from v
				// to w collecting the cycle's edges.
				cycle = []int{ei}
				u := v
				for u != w {
					pe := viaEdge[u]
					cycle = append(cycle, pe)
					u = g.edges[pe].From
				}
				return true
			}
		}
		color[v] = black
		return false
	}

	for v := EdgeID(0); v < EdgeID(g.NNodes()); v++ {
		if color[v] == white && dfs(v) {
			return cycle
		}
	}
	return nil
}

func findCycleUndirected(g *Graph, present func(i int) bool) []int {
	visited := make([]bool, g.NNodes())
	viaEdge := make([]int, g.NNodes())
	for i := range viaEdge {
		viaEdge[i] = -1
	}
	var cycle []int

	var dfs func(v EdgeID, parentEi int) bool
	dfs = func(v EdgeID, parentEi int) bool {
		visited[v] = true
		for _, ei := range g.Out(v) {
			if !present(ei) || ei == parentEi {
				continue
			}
			w := other(g.edges[ei], v)
			if !visited[w] {
				viaEdge[w] = ei
				if dfs(w, ei) {
					return true
				}
			} else {
				cycle = []int{ei}
				u := v
				for u != w {
					pe := viaEdge[u]
					cycle = append(cycle, pe)
					u = other(g.edges[pe], u)
				}
				return true
			}
		}
		return false
	}

	for v := EdgeID(0); v < EdgeID(g.NNodes()); v++ {
		if !visited[v] && dfs(v, -1) {
			return cycle
		}
	}
	return nil
}
