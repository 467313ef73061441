// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import "container/heap"

type distItem struct {
	node EdgeID
	dist int64
}

type distHeap []distItem

func (h distHeap) Len() int            { return len(h) }
func (h distHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h distHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *distHeap) Push(x interface{}) { *h = append(*h, x.(distItem)) }
func (h *distHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// dijkstra computes shortest weighted distances from src using only edges
// for which present reports true, assuming non-negative weights.
func dijkstra(g *Graph, src EdgeID, present func(i int) bool) (dist map[EdgeID]int64, via map[EdgeID]int) {
	dist = map[EdgeID]int64{src: 0}
	via = make(map[EdgeID]int)
	h := &distHeap{{node: src, dist: 0}}
	visited := make(map[EdgeID]bool)
	for h.Len() > 0 {
		it := heap.Pop(h).(distItem)
		if visited[it.node] {
			continue
		}
		visited[it.node] = true
		for _, ei := range g.Out(it.node) {
			if !present(ei) {
				continue
			}
			e := g.edges[ei]
			w := other(e, it.node)
			if visited[w] {
				continue
			}
			nd := it.dist + e.Weight
			if cur, ok := dist[w]; !ok || nd < cur {
				dist[w] = nd
				via[w] = ei
				heap.Push(h, distItem{node: w, dist: nd})
			}
		}
	}
	return dist, via
}
