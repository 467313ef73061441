// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import "sort"

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p, rank: make([]int, n)}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
	return true
}

// kruskalMST finds a minimum spanning forest using only edges for which
// present reports true. It returns whether the forest spans all nodes,
// its total weight, and the edges used.
func kruskalMST(g *Graph, present func(i int) bool) (spanning bool, weight int64, used []int) {
	order := make([]int, 0, len(g.edges))
	for i := range g.edges {
		if present(i) {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool { return g.edges[order[a]].Weight < g.edges[order[b]].Weight })

	uf := newUnionFind(g.NNodes())
	comps := g.NNodes()
	for _, ei := range order {
		e := g.edges[ei]
		if uf.union(int(e.From), int(e.To)) {
			used = append(used, ei)
			weight += e.Weight
			comps--
		}
	}
	return comps <= 1, weight, used
}
