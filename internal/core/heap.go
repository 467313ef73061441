// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package core

import "github.com/go-air/monograph/z"

// VarHeap is a binary max-heap over per-variable VSIDS activity, used to
// pick the next decision variable when no theory volunteers one.
type VarHeap struct {
	heap []z.Var
	pos  []int // pos[v] == index of v in heap, -1 if not present
	act  []float64

	bumpInc float64
	decay   float64
}

// NewVarHeap creates an empty heap with capacity for n variables.
func NewVarHeap(n int) *VarHeap {
	h := &VarHeap{
		heap:    make([]z.Var, 0, n),
		pos:     make([]int, n),
		act:     make([]float64, n),
		bumpInc: 1.0,
		decay:   1.0 / 0.95,
	}
	for i := range h.pos {
		h.pos[i] = -1
	}
	return h
}

func (h *VarHeap) growTo(v z.Var) {
	for z.Var(len(h.pos)) <= v {
		h.pos = append(h.pos, -1)
		h.act = append(h.act, 0)
	}
}

// Push inserts v into the heap if it is not already present.
func (h *VarHeap) Push(v z.Var) {
	h.growTo(v)
	if h.pos[v] != -1 {
		return
	}
	h.pos[v] = len(h.heap)
	h.heap = append(h.heap, v)
	h.up(len(h.heap) - 1)
}

// Contains reports whether v is currently in the heap.
func (h *VarHeap) Contains(v z.Var) bool {
	return int(v) < len(h.pos) && h.pos[v] != -1
}

// Pop removes and returns the variable with maximal activity.
func (h *VarHeap) Pop() z.Var {
	n := len(h.heap) - 1
	h.swap(0, n)
	v := h.heap[n]
	h.heap = h.heap[:n]
	h.pos[v] = -1
	if n > 0 {
		h.down(0)
	}
	return v
}

// Empty reports whether the heap has no entries.
func (h *VarHeap) Empty() bool {
	return len(h.heap) == 0
}

// Bump increases v's activity, rescaling every activity (and the bump
// increment) if it would otherwise overflow.
func (h *VarHeap) Bump(v z.Var) {
	h.growTo(v)
	h.act[v] += h.bumpInc
	if h.act[v] > 1e100 {
		for i := range h.act {
			h.act[i] *= 1e-100
		}
		h.bumpInc *= 1e-100
	}
	if h.pos[v] != -1 {
		h.up(h.pos[v])
	}
}

// Decay geometrically increases the bump increment so recent activity
// dominates without a rescale every conflict.
func (h *VarHeap) Decay() {
	h.bumpInc *= h.decay
}

func (h *VarHeap) up(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if h.act[h.heap[p]] >= h.act[h.heap[i]] {
			break
		}
		h.swap(i, p)
		i = p
	}
}

func (h *VarHeap) down(i int) {
	n := len(h.heap)
	for {
		l, r := 2*i+1, 2*i+2
		biggest := i
		if l < n && h.act[h.heap[l]] > h.act[h.heap[biggest]] {
			biggest = l
		}
		if r < n && h.act[h.heap[r]] > h.act[h.heap[biggest]] {
			biggest = r
		}
		if biggest == i {
			return
		}
		h.swap(i, biggest)
		i = biggest
	}
}

func (h *VarHeap) swap(i, j int) {
	vi, vj := h.heap[i], h.heap[j]
	h.heap[i], h.heap[j] = vj, vi
	h.pos[vi], h.pos[vj] = j, i
}
