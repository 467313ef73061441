// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package bv

import (
	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/z"
)

// circuit is a strashed AND-inverter graph used to bit-blast bitvector
// operators into CNF once, at construction time, rather than re-deriving
// the same adder/comparator gates for structurally identical operands.
//
// Gate variables are allocated from the engine's own variable space (via
// liter) rather than a private one, so a circuit's output literals can be
// used directly as engine literals — comparison literals, theory-owned
// bits, anything else already on the trail.
type circuit struct {
	liter  inter.Liter
	nodes  map[z.Var]cnode
	strash map[uint32]z.Var
	f, t   z.Lit
}

type cnode struct {
	a, b z.Lit
	n    z.Var
}

func newCircuit(liter inter.Liter) *circuit {
	c := &circuit{
		liter:  liter,
		nodes:  make(map[z.Var]cnode, 256),
		strash: make(map[uint32]z.Var, 256),
	}
	c.f = liter.Lit()
	c.t = c.f.Not()
	// the false/true bookkeeping literal has no gate inputs; leave it
	// absent from nodes so visit() treats it as an input.
	return c
}

func (c *circuit) and(a, b z.Lit) z.Lit {
	if a == b {
		return a
	}
	if a == b.Not() {
		return c.f
	}
	if a > b {
		a, b = b, a
	}
	if a == c.f {
		return c.f
	}
	if a == c.t {
		return b
	}
	code := strashCode(a, b)
	if v, ok := c.strash[code]; ok {
		for v != 0 {
			n := c.nodes[v]
			if n.a == a && n.b == b {
				return v.Pos()
			}
			v = n.n
		}
	}
	g := c.liter.Lit()
	v := g.Var()
	c.nodes[v] = cnode{a: a, b: b, n: c.strash[code]}
	c.strash[code] = v
	return g
}

func (c *circuit) or(a, b z.Lit) z.Lit  { return c.and(a.Not(), b.Not()).Not() }
func (c *circuit) xor(a, b z.Lit) z.Lit { return c.or(c.and(a, b.Not()), c.and(a.Not(), b)) }
func (c *circuit) ite(i, t, e z.Lit) z.Lit {
	return c.or(c.and(i, t), c.and(i.Not(), e))
}

func (c *circuit) ands(ms ...z.Lit) z.Lit {
	a := c.t
	for _, m := range ms {
		a = c.and(a, m)
	}
	return a
}

func (c *circuit) ors(ms ...z.Lit) z.Lit {
	d := c.f
	for _, m := range ms {
		d = c.or(d, m)
	}
	return d
}

// toCnf Tseitinizes every AND gate reachable from roots into dst.
func (c *circuit) toCnf(dst inter.Adder, roots ...z.Lit) {
	visited := make(map[z.Var]bool, len(c.nodes))
	var visit func(m z.Lit)
	visit = func(m z.Lit) {
		v := m.Var()
		if visited[v] {
			return
		}
		visited[v] = true
		n, ok := c.nodes[v]
		if !ok {
			return
		}
		visit(n.a)
		visit(n.b)
		addAndClauses(dst, v.Pos(), n.a, n.b)
	}
	for _, root := range roots {
		visit(root)
	}
}

func addAndClauses(dst inter.Adder, g, a, b z.Lit) {
	dst.Add(g.Not())
	dst.Add(a)
	dst.Add(z.LitNull)
	dst.Add(g.Not())
	dst.Add(b)
	dst.Add(z.LitNull)
	dst.Add(g)
	dst.Add(a.Not())
	dst.Add(b.Not())
	dst.Add(z.LitNull)
}

func strashCode(a, b z.Lit) uint32 {
	return uint32(a)*1000003 + uint32(b)
}
