// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package gen generates test fixtures: structured and random CNF
// formulas for stressing the core engine and the simplifier, and
// random graph topologies for stressing the graph theory's detectors.
// Every generator takes its randomness source explicitly instead of
// sharing a package-level one, so tests stay reproducible without a
// mutex.
package gen

import (
	"math/rand"

	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/z"
)

// Php emits a pigeonhole formula: can P pigeons be placed into H holes
// with at most one pigeon per hole. It's unsatisfiable whenever P > H
// and is a classic hard instance for clause-learning search, useful for
// exercising restarts and clause-database growth.
func Php(dst inter.Adder, P, H int) {
	for i := 0; i < P; i++ {
		for j := 0; j < H; j++ {
			dst.Add(partVar(i, j, H))
		}
		dst.Add(z.LitNull)
	}
	for i := 0; i < P; i++ {
		for j := 0; j < i; j++ {
			for h := 0; h < H; h++ {
				dst.Add(partVar(i, h, H).Not())
				dst.Add(partVar(j, h, H).Not())
				dst.Add(z.LitNull)
			}
		}
	}
}

func partVar(pigeon, hole, H int) z.Lit {
	return z.Var(pigeon*H + hole + 1).Pos()
}

// Rand3Cnf emits a random 3-CNF over n variables and m clauses, each
// clause's three literals on distinct variables, using rng for every
// random choice so two calls with freshly seeded rngs of the same seed
// produce identical output.
func Rand3Cnf(dst inter.Adder, n, m int, rng *rand.Rand) {
	var ms [3]z.Lit
	randLit := func() z.Lit {
		return z.Lit(rng.Intn(2*n) + 2)
	}
	for i := 0; i < m; i++ {
		ms[0] = randLit()
		for {
			ms[1] = randLit()
			if ms[1].Var() != ms[0].Var() {
				break
			}
		}
		for {
			ms[2] = randLit()
			if ms[2].Var() != ms[0].Var() && ms[2].Var() != ms[1].Var() {
				break
			}
		}
		dst.Add(ms[0])
		dst.Add(ms[1])
		dst.Add(ms[2])
		dst.Add(z.LitNull)
	}
}

// Edge is an undirected pair of node indices, as returned by RandGraph.
type Edge struct{ A, B int }

// RandGraph generates a simple random undirected graph on n nodes with m
// distinct edges, or nil if m exceeds the number of possible edges.
func RandGraph(n, m int, rng *rand.Rand) []Edge {
	max := n * (n - 1) / 2
	if m > max {
		return nil
	}
	seen := make(map[Edge]bool, m)
	edges := make([]Edge, 0, m)
	for len(edges) < m {
		a, b := rng.Intn(n), rng.Intn(n)
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		e := Edge{a, b}
		if seen[e] {
			continue
		}
		seen[e] = true
		edges = append(edges, e)
	}
	return edges
}
