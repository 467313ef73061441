// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package graph

import "github.com/go-air/monograph/z"

type maxFlowDetector struct {
	from, to EdgeID
	bound    int64
	lit      z.Lit
}

func (d *maxFlowDetector) pred() z.Lit { return d.lit }

func (d *maxFlowDetector) impliesTrue(g *Graph, val edgeState) (bool, []int) {
	r := maxFlow(g, d.from, d.to, present(val, false))
	if r.value < d.bound {
		return false, nil
	}
	var used []int
	for ei, f := range r.flow {
		if f != 0 {
			used = append(used, ei)
		}
	}
	return true, used
}

func (d *maxFlowDetector) impliesFalse(g *Graph, val edgeState) (bool, []int) {
	r := maxFlow(g, d.from, d.to, present(val, true))
	if r.value >= d.bound {
		return false, nil
	}
	return true, boundaryDisabled(g, r.sourceSide, val)
}
