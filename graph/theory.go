// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import (
	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/z"
)

// detKey hash-conses a detector by its predicate family and arguments, so
// two equal queries — however they arrive — share one predicate literal
// and one theory instance instead of duplicating search state. steps ==
// -1 is the "any length" sentinel shared by Reach and DistLeq.
type detKey struct {
	kind     string
	a, b, c  EdgeID
	steps    int64
	backward bool
}

// Theory is the graph theory plugin: it owns a Graph's edge literals plus
// every predicate literal it has hash-consed, and drives each detector's
// under/over-approximate views to a fixed point every Propagate call.
type Theory struct {
	id    int
	enq   inter.Enqueuer
	liter inter.Liter
	g     *Graph

	preds   map[detKey]z.Lit
	predVar map[z.Var]int
	dets    []detector

	dirty bool

	reasons   map[uint32][]z.Lit
	nextToken uint32
}

// NewTheory creates a graph theory plugin over g, allocating fresh
// predicate variables from liter.
func NewTheory(g *Graph, liter inter.Liter) *Theory {
	return &Theory{
		g:       g,
		liter:   liter,
		preds:   make(map[detKey]z.Lit),
		predVar: make(map[z.Var]int),
		reasons: make(map[uint32][]z.Lit),
	}
}

// Init implements inter.Theory.
func (t *Theory) Init(id int, enq inter.Enqueuer) {
	t.id = id
	t.enq = enq
}

func (t *Theory) register(key detKey, build func(lit z.Lit) detector) z.Lit {
	if lit, ok := t.preds[key]; ok {
		return lit
	}
	lit := t.liter.Lit()
	t.preds[key] = lit
	t.predVar[lit.Var()] = len(t.dets)
	t.dets = append(t.dets, build(lit))
	t.dirty = true
	return lit
}

// Reach returns a literal true iff to is reachable from from. Equivalent
// to DistLeq(from, to, -1).
func (t *Theory) Reach(from, to EdgeID) z.Lit {
	return t.DistLeq(from, to, -1)
}

// ReachBackward returns a literal true iff from is reachable from to by
// traveling edges in reverse — mirroring Monosat.cpp's reachesBackward.
func (t *Theory) ReachBackward(from, to EdgeID) z.Lit {
	return t.distLeq(from, to, -1, true)
}

// DistLeq returns a literal true iff to is reachable from from within
// steps hops. steps < 0 means unbounded, making this identical to Reach.
func (t *Theory) DistLeq(from, to EdgeID, steps int64) z.Lit {
	return t.distLeq(from, to, steps, false)
}

func (t *Theory) distLeq(from, to EdgeID, steps int64, backward bool) z.Lit {
	key := detKey{kind: "dist", a: from, b: to, steps: steps, backward: backward}
	return t.register(key, func(lit z.Lit) detector {
		return &distLeqDetector{from: from, to: to, steps: steps, backward: backward, lit: lit}
	})
}

// WeightedDistLeq returns a literal true iff the shortest weighted path
// from from to to has total weight at most bound.
func (t *Theory) WeightedDistLeq(from, to EdgeID, bound int64) z.Lit {
	key := detKey{kind: "wdist", a: from, b: to, steps: bound}
	return t.register(key, func(lit z.Lit) detector {
		return &weightedDistLeqDetector{from: from, to: to, bound: bound, lit: lit}
	})
}

// MaxFlowGeq returns a literal true iff the maximum s-t flow is at least bound.
func (t *Theory) MaxFlowGeq(from, to EdgeID, bound int64) z.Lit {
	key := detKey{kind: "flow", a: from, b: to, steps: bound}
	return t.register(key, func(lit z.Lit) detector {
		return &maxFlowDetector{from: from, to: to, bound: bound, lit: lit}
	})
}

// MSTLeq returns a literal true iff a spanning tree of total weight at
// most bound exists.
func (t *Theory) MSTLeq(bound int64) z.Lit {
	key := detKey{kind: "mst", steps: bound}
	return t.register(key, func(lit z.Lit) detector {
		return &mstLeqDetector{bound: bound, lit: lit}
	})
}

// Acyclic returns a literal true iff the graph has no cycle.
func (t *Theory) Acyclic() z.Lit {
	key := detKey{kind: "acyclic"}
	return t.register(key, func(lit z.Lit) detector {
		return &acyclicDetector{lit: lit}
	})
}

// OnPath returns a literal true iff some from->to path passes through via.
func (t *Theory) OnPath(from, to, via EdgeID) z.Lit {
	key := detKey{kind: "onpath", a: from, b: to, c: via}
	return t.register(key, func(lit z.Lit) detector {
		return &onPathDetector{from: from, to: to, via: via, lit: lit}
	})
}

func (t *Theory) edgeVal(ei int) EdgeValue {
	switch t.enq.Value(t.g.edges[ei].Lit) {
	case 1:
		return EdgeEnabled
	case -1:
		return EdgeDisabled
	default:
		return EdgeUnknown
	}
}

// Owns implements inter.Theory: this theory owns every edge literal's
// variable and every predicate literal it has hash-consed.
func (t *Theory) Owns(v z.Var) bool {
	if _, ok := t.predVar[v]; ok {
		return true
	}
	if _, ok := t.g.litToEdges[v.Pos()]; ok {
		return true
	}
	if _, ok := t.g.litToEdges[v.Neg()]; ok {
		return true
	}
	return false
}

// EnqueueTheory implements inter.Theory. Any owned assignment can change a
// detector's under or over view, so it simply marks the theory dirty;
// Propagate re-checks every detector to a fixed point on the next call.
func (t *Theory) EnqueueTheory(m z.Lit) {
	t.dirty = true
}

func (t *Theory) buildReason(pred z.Lit, provingTrue bool, witness []int) []z.Lit {
	out := make([]z.Lit, 0, len(witness)+1)
	if provingTrue {
		out = append(out, pred)
	} else {
		out = append(out, pred.Not())
	}
	for _, ei := range witness {
		lit := t.g.edges[ei].Lit
		switch t.enq.Value(lit) {
		case 1:
			out = append(out, lit.Not())
		case -1:
			out = append(out, lit)
		}
	}
	return out
}

func (t *Theory) storeReason(r []z.Lit) uint32 {
	tok := t.nextToken
	t.nextToken++
	t.reasons[tok] = r
	return tok
}

// propagateOne runs one detector to a fixed point against the current
// assignment, enqueueing a forced predicate or reporting a conflict.
func (t *Theory) propagateOne(d detector) (conflict []z.Lit, enqueued bool, ok bool) {
	pred := d.pred()
	switch t.enq.Value(pred) {
	case 1:
		if bad, witness := d.impliesFalse(t.g, t.edgeVal); bad {
			return t.buildReason(pred, false, witness), false, false
		}
	case -1:
		if good, witness := d.impliesTrue(t.g, t.edgeVal); good {
			return t.buildReason(pred, true, witness), false, false
		}
	default:
		if good, witness := d.impliesTrue(t.g, t.edgeVal); good {
			reason := t.buildReason(pred, true, witness)
			tok := t.storeReason(reason)
			if !t.enq.Enqueue(pred, tok) {
				return reason, false, false
			}
			return nil, true, true
		}
		if bad, witness := d.impliesFalse(t.g, t.edgeVal); bad {
			reason := t.buildReason(pred, false, witness)
			tok := t.storeReason(reason)
			if !t.enq.Enqueue(pred.Not(), tok) {
				return reason, false, false
			}
			return nil, true, true
		}
	}
	return nil, false, true
}

// Propagate implements inter.Theory.
func (t *Theory) Propagate() ([]z.Lit, bool) {
	if !t.dirty {
		return nil, true
	}
	t.dirty = false
	for {
		progressed := false
		for _, d := range t.dets {
			confl, enq, ok := t.propagateOne(d)
			if !ok {
				return confl, false
			}
			if enq {
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return nil, true
}

// Explain implements inter.Theory.
func (t *Theory) Explain(token uint32, m z.Lit) []z.Lit {
	return t.reasons[token]
}

// Backtrack implements inter.Theory. Edge and predicate states are read
// straight off the trail on every Propagate call, so there is no per-level
// graph state to unwind beyond forcing a full recheck. Stored reasons are
// kept, since a predicate enqueued at or below level stays on the trail
// and may still be explained.
func (t *Theory) Backtrack(level int) {
	t.dirty = true
}

// CheckSatisfied implements inter.Theory: a safety net confirming every
// hash-consed predicate agrees with the graph at a complete assignment.
func (t *Theory) CheckSatisfied() bool {
	for _, d := range t.dets {
		switch t.enq.Value(d.pred()) {
		case 1:
			if bad, _ := d.impliesFalse(t.g, t.edgeVal); bad {
				return false
			}
		case -1:
			if good, _ := d.impliesTrue(t.g, t.edgeVal); good {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Decide implements inter.Theory: this theory never branches, leaving
// edge-literal decisions to VSIDS.
func (t *Theory) Decide() (z.Lit, bool) {
	return z.LitNull, false
}

// Witness returns the node sequence and enabling literals of a from->to
// path in the current model, or nil if none exists, mirroring
// getModel_Path_Nodes/getModel_Path_EdgeLits.
func (t *Theory) Witness(from, to EdgeID) (nodes []int, edgeLits []z.Lit) {
	_, via := bfsLevels(t.g, from, present(t.edgeVal, false))
	edges := pathEdges(t.g, via, from, to)
	if edges == nil && from != to {
		return nil, nil
	}
	cur := from
	nodes = append(nodes, int(cur))
	for _, ei := range edges {
		e := t.g.edges[ei]
		cur = other(e, cur)
		nodes = append(nodes, int(cur))
		edgeLits = append(edgeLits, e.Lit)
	}
	return nodes, edgeLits
}

// Flow recomputes the max from->to flow against the current model and
// returns its value alongside the edges that carry it, mirroring
// getModel_MaxFlow_EdgeFlow's per-edge labeling. flow[i] is the signed
// amount routed along edges[i].From->To (negative for an undirected edge
// whose net flow runs the other way).
func (t *Theory) Flow(from, to EdgeID) (value int64, edges []int, flow []int64) {
	r := maxFlow(t.g, from, to, present(t.edgeVal, false))
	for ei, f := range r.flow {
		if f != 0 {
			edges = append(edges, ei)
			flow = append(flow, f)
		}
	}
	return r.value, edges, flow
}

// MSTWeight recomputes a minimum spanning tree against the current model
// and returns its total weight alongside the edges it selects, or
// spanning=false if the enabled edges don't connect every node, mirroring
// getModel_AcyclicEdgeFlow's role for MST predicates.
func (t *Theory) MSTWeight() (spanning bool, weight int64, edges []int) {
	return kruskalMST(t.g, present(t.edgeVal, false))
}
