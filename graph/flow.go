// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

// flowResult is the outcome of an Edmonds-Karp max-flow computation over a
// present-filtered view of g.
type flowResult struct {
	value      int64
	flow       []int64         // per edge index, net amount routed along From->To (negative if an undirected edge's net flow runs To->From)
	sourceSide map[EdgeID]bool // nodes reachable from src in the final residual graph
}

type flowArc struct {
	to   EdgeID
	cap  int64
	rev  int // index into arcs[to] of the arc that undoes this one
	edge int // original edge index this arc was built from, -1 for a pure residual arc
}

// maxFlow computes the maximum s-t flow using only edges for which present
// reports true, treating Weight as capacity, by repeated BFS augmentation
// (Edmonds-Karp). It also partitions the nodes into the min-cut's source
// side, read off the residual graph once no augmenting path remains.
func maxFlow(g *Graph, src, dst EdgeID, present func(i int) bool) flowResult {
	n := g.NNodes()
	arcs := make([][]flowArc, n)

	addArc := func(u, v EdgeID, c int64, edge int) {
		ui := len(arcs[u])
		vi := len(arcs[v])
		arcs[u] = append(arcs[u], flowArc{to: v, cap: c, rev: vi, edge: edge})
		arcs[v] = append(arcs[v], flowArc{to: u, cap: 0, rev: ui, edge: -1})
	}

	// addUndirectedArc models a single undirected edge as one arc pair
	// whose reverse capacity starts at c instead of 0, so flow may net out
	// in either direction through the same pair rather than through two
	// arc-pairs that never hear about each other.
	addUndirectedArc := func(u, v EdgeID, c int64, edge int) int {
		ui := len(arcs[u])
		vi := len(arcs[v])
		arcs[u] = append(arcs[u], flowArc{to: v, cap: c, rev: vi, edge: edge})
		arcs[v] = append(arcs[v], flowArc{to: u, cap: c, rev: ui, edge: edge})
		return ui
	}

	edgeArc := make(map[int][2]int) // edge index -> (node, arc index) of the forward arc
	for i, e := range g.edges {
		if !present(i) || e.From == e.To {
			continue
		}
		if g.Directed {
			ui := len(arcs[e.From])
			addArc(e.From, e.To, e.Weight, i)
			edgeArc[i] = [2]int{int(e.From), ui}
		} else {
			ui := addUndirectedArc(e.From, e.To, e.Weight, i)
			edgeArc[i] = [2]int{int(e.From), ui}
		}
	}

	var total int64
	for {
		parentArc := make([]int, n)
		parentNode := make([]EdgeID, n)
		for i := range parentArc {
			parentArc[i] = -2
		}
		parentArc[src] = -1
		queue := []EdgeID{src}
		for len(queue) > 0 && parentArc[dst] == -2 {
			u := queue[0]
			queue = queue[1:]
			for ai, a := range arcs[u] {
				if a.cap <= 0 || parentArc[a.to] != -2 {
					continue
				}
				parentArc[a.to] = ai
				parentNode[a.to] = u
				queue = append(queue, a.to)
			}
		}
		if parentArc[dst] == -2 {
			break
		}
		bottleneck := int64(-1)
		for v := dst; v != src; {
			u := parentNode[v]
			a := arcs[u][parentArc[v]]
			if bottleneck < 0 || a.cap < bottleneck {
				bottleneck = a.cap
			}
			v = u
		}
		for v := dst; v != src; {
			u := parentNode[v]
			ai := parentArc[v]
			arcs[u][ai].cap -= bottleneck
			rev := arcs[u][ai].rev
			arcs[v][rev].cap += bottleneck
			v = u
		}
		total += bottleneck
	}

	sourceSide := map[EdgeID]bool{src: true}
	queue := []EdgeID{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, a := range arcs[u] {
			if a.cap > 0 && !sourceSide[a.to] {
				sourceSide[a.to] = true
				queue = append(queue, a.to)
			}
		}
	}

	flow := make([]int64, len(g.edges))
	for ei, loc := range edgeArc {
		u, ai := loc[0], loc[1]
		flow[ei] = g.edges[ei].Weight - arcs[u][ai].cap
	}

	return flowResult{value: total, flow: flow, sourceSide: sourceSide}
}
