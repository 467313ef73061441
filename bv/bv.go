// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package bv implements the bitvector theory plugin: bounded-width
// integers represented as bit-blasted literal vectors, built up through
// an arithmetic/bitwise operator DAG, plus an interval-propagation layer
// that prunes search ahead of full CNF unit propagation.
package bv

import (
	"fmt"

	"github.com/go-air/monograph/inter"
	"github.com/go-air/monograph/z"
)

// BV is a fixed-width bitvector: Bits[0] is the least significant bit.
type BV struct {
	Width int
	Bits  []z.Lit
}

func (v *BV) String() string {
	return fmt.Sprintf("bv%d", v.Width)
}

// Anon returns a bitvector with no backing bit literals at all, tracked
// purely through a Theory's interval. It carries no gates for a Builder
// to bit-blast, so it must never be passed as an operand to a Builder
// op — only registered with Theory.Register and narrowed by
// Theory.PostConstCompare, the way Monosat.cpp's "bv anon" directive
// introduces a vector known only by the constraints posted on it.
func Anon(width int) *BV {
	return &BV{Width: width}
}

// Builder constructs BV operator DAGs, bit-blasting each gate into a
// strashed circuit and emitting the resulting CNF to dst in one batch via
// Finish. When a Theory is Attach-ed, every operator the Builder emits
// also registers its operands with that Theory, so interval tightening
// on an operand propagates forward to every vector built from it.
type Builder struct {
	c       *circuit
	outputs []z.Lit

	th     *Theory
	regIdx map[*BV]int
}

// NewBuilder creates a Builder that allocates fresh variables from liter.
func NewBuilder(liter inter.Liter) *Builder {
	return &Builder{c: newCircuit(liter)}
}

// Attach wires th to this Builder: every operator built afterward also
// registers its operator-DAG dependency with th.
func (b *Builder) Attach(th *Theory) {
	b.th = th
}

// Track registers v with this Builder's attached Theory (a no-op,
// returning -1, if none is attached), returning its theory index — the
// same index Theory.Register would have returned, but idempotent across
// repeated calls with the same vector.
func (b *Builder) Track(v *BV) int {
	if b.th == nil {
		return -1
	}
	if idx, ok := b.regIdx[v]; ok {
		return idx
	}
	idx := b.th.Register(v)
	if b.regIdx == nil {
		b.regIdx = make(map[*BV]int)
	}
	b.regIdx[v] = idx
	return idx
}

// linkOp registers out's operator dependency on x (and y, if not nil)
// with the attached Theory, if any.
func (b *Builder) linkOp(out *BV, kind opKind, x, y *BV) {
	if b.th == nil {
		return
	}
	oi := b.Track(out)
	xi := b.Track(x)
	yi := -1
	if y != nil {
		yi = b.Track(y)
	}
	b.th.RegisterOp(oi, kind, xi, yi, z.LitNull)
}

// linkCompare registers lit as meaning "x rel y" with the attached
// Theory, if any, so the comparison can be settled from x and y's
// intervals ahead of the bit-blasted CNF that already decides it.
func (b *Builder) linkCompare(lit z.Lit, rel Rel, x, y *BV) {
	if b.th == nil {
		return
	}
	xi := b.Track(x)
	yi := b.Track(y)
	b.th.PostBVCompare(xi, rel, yi, lit)
}

func (b *Builder) root(m z.Lit) z.Lit {
	b.outputs = append(b.outputs, m)
	return m
}

// Finish emits the CNF for every gate reachable from any value this
// Builder has produced, to dst, including the unit clause pinning this
// Builder's internal false literal.
func (b *Builder) Finish(dst inter.Adder) {
	dst.Add(b.c.f.Not())
	dst.Add(z.LitNull)
	b.c.toCnf(dst, b.outputs...)
}

// Const returns a bitvector fixed to value, truncated to width bits.
func (b *Builder) Const(width int, value uint64) *BV {
	v := &BV{Width: width, Bits: make([]z.Lit, width)}
	for i := 0; i < width; i++ {
		if value&(1<<uint(i)) != 0 {
			v.Bits[i] = b.root(b.c.t)
		} else {
			v.Bits[i] = b.root(b.c.f)
		}
	}
	return v
}

// Var returns a bitvector of fresh, otherwise-unconstrained bits.
func (b *Builder) Var(width int) *BV {
	v := &BV{Width: width, Bits: make([]z.Lit, width)}
	for i := 0; i < width; i++ {
		v.Bits[i] = b.root(b.c.liter.Lit())
	}
	return v
}

func (b *Builder) bit(x *BV, i int) z.Lit {
	if i < x.Width {
		return x.Bits[i]
	}
	return b.c.f // zero-extend past the vector's width
}

// Not returns the bitwise complement of x.
func (b *Builder) Not(x *BV) *BV {
	out := &BV{Width: x.Width, Bits: make([]z.Lit, x.Width)}
	for i := range out.Bits {
		out.Bits[i] = b.root(x.Bits[i].Not())
	}
	b.linkOp(out, opNot, x, nil)
	return out
}

func (b *Builder) bitwise(x, y *BV, op func(a, b z.Lit) z.Lit) *BV {
	w := x.Width
	if y.Width > w {
		w = y.Width
	}
	out := &BV{Width: w, Bits: make([]z.Lit, w)}
	for i := 0; i < w; i++ {
		out.Bits[i] = b.root(op(b.bit(x, i), b.bit(y, i)))
	}
	return out
}

// And, Or, Xor are bitwise over x and y, zero-extending the shorter operand.
func (b *Builder) And(x, y *BV) *BV {
	out := b.bitwise(x, y, b.c.and)
	b.linkOp(out, opAnd, x, y)
	return out
}

func (b *Builder) Or(x, y *BV) *BV {
	out := b.bitwise(x, y, b.c.or)
	b.linkOp(out, opOr, x, y)
	return out
}

func (b *Builder) Xor(x, y *BV) *BV {
	out := b.bitwise(x, y, b.c.xor)
	b.linkOp(out, opXor, x, y)
	return out
}

// Add is a ripple-carry adder; the result is truncated to max(x.Width, y.Width).
func (b *Builder) Add(x, y *BV) *BV {
	w := x.Width
	if y.Width > w {
		w = y.Width
	}
	out := &BV{Width: w, Bits: make([]z.Lit, w)}
	carry := b.c.f
	for i := 0; i < w; i++ {
		a, bb := b.bit(x, i), b.bit(y, i)
		out.Bits[i] = b.root(b.c.xor(b.c.xor(a, bb), carry))
		carry = b.c.or(b.c.and(a, bb), b.c.and(b.c.xor(a, bb), carry))
	}
	b.linkOp(out, opAdd, x, y)
	return out
}

// Neg returns the two's-complement negation of x.
func (b *Builder) Neg(x *BV) *BV {
	return b.Add(b.Not(x), b.Const(x.Width, 1))
}

// Sub returns x - y via two's complement.
func (b *Builder) Sub(x, y *BV) *BV {
	return b.Add(x, b.Neg(y))
}

// Mul is shift-and-add multiplication, truncated to x.Width.
func (b *Builder) Mul(x, y *BV) *BV {
	w := x.Width
	acc := b.Const(w, 0)
	for i := 0; i < y.Width; i++ {
		shifted := b.shiftLeft(x, i, w)
		masked := &BV{Width: w, Bits: make([]z.Lit, w)}
		for j := range masked.Bits {
			masked.Bits[j] = b.root(b.c.and(shifted.Bits[j], b.bit(y, i)))
		}
		acc = b.Add(acc, masked)
	}
	return acc
}

func (b *Builder) shiftLeft(x *BV, n, width int) *BV {
	out := &BV{Width: width, Bits: make([]z.Lit, width)}
	for i := 0; i < width; i++ {
		if i < n {
			out.Bits[i] = b.root(b.c.f)
		} else {
			out.Bits[i] = b.root(b.bit(x, i-n))
		}
	}
	return out
}

// ITE selects x if cond is true, y otherwise.
func (b *Builder) ITE(cond z.Lit, x, y *BV) *BV {
	w := x.Width
	if y.Width > w {
		w = y.Width
	}
	out := &BV{Width: w, Bits: make([]z.Lit, w)}
	for i := 0; i < w; i++ {
		out.Bits[i] = b.root(b.c.ite(cond, b.bit(x, i), b.bit(y, i)))
	}
	if b.th != nil {
		oi := b.Track(out)
		xi := b.Track(x)
		yi := b.Track(y)
		b.th.RegisterOp(oi, opIte, xi, yi, cond)
	}
	return out
}

// Concat places hi above lo: bit 0 of the result is bit 0 of lo.
func (b *Builder) Concat(hi, lo *BV) *BV {
	out := &BV{Width: hi.Width + lo.Width, Bits: make([]z.Lit, hi.Width+lo.Width)}
	copy(out.Bits, lo.Bits)
	copy(out.Bits[lo.Width:], hi.Bits)
	for i, m := range out.Bits {
		out.Bits[i] = b.root(m)
	}
	return out
}

// Slice extracts bits [lo, hi) of x.
func (b *Builder) Slice(x *BV, lo, hi int) *BV {
	out := &BV{Width: hi - lo, Bits: make([]z.Lit, hi-lo)}
	for i := range out.Bits {
		out.Bits[i] = b.root(b.bit(x, lo+i))
	}
	return out
}

// Popcount counts x's set bits via a binary adder tree; the result is
// wide enough to represent x.Width exactly.
func (b *Builder) Popcount(x *BV) *BV {
	rw := 1
	for (1 << rw) <= x.Width {
		rw++
	}
	acc := b.Const(rw, 0)
	for _, m := range x.Bits {
		bit := &BV{Width: rw, Bits: make([]z.Lit, rw)}
		bit.Bits[0] = b.root(m)
		for i := 1; i < rw; i++ {
			bit.Bits[i] = b.root(b.c.f)
		}
		acc = b.Add(acc, bit)
	}
	return acc
}

// Eq returns a literal true iff x and y denote the same value.
func (b *Builder) Eq(x, y *BV) z.Lit {
	w := x.Width
	if y.Width > w {
		w = y.Width
	}
	eqs := make([]z.Lit, w)
	for i := 0; i < w; i++ {
		eqs[i] = b.c.xor(b.bit(x, i), b.bit(y, i)).Not()
	}
	out := b.root(b.c.ands(eqs...))
	b.linkCompare(out, Eq, x, y)
	return out
}

// Ult returns a literal true iff x < y, unsigned.
func (b *Builder) Ult(x, y *BV) z.Lit {
	w := x.Width
	if y.Width > w {
		w = y.Width
	}
	// lt holds if, scanning from the MSB down, the first differing bit
	// has x=0, y=1.
	lt := b.c.f
	eqSoFar := b.c.t
	for i := w - 1; i >= 0; i-- {
		a, bb := b.bit(x, i), b.bit(y, i)
		bitLt := b.c.and(a.Not(), bb)
		lt = b.c.or(lt, b.c.and(eqSoFar, bitLt))
		eqSoFar = b.c.and(eqSoFar, b.c.xor(a, bb).Not())
	}
	out := b.root(lt)
	b.linkCompare(out, Lt, x, y)
	return out
}

// Ule returns a literal true iff x <= y, unsigned.
func (b *Builder) Ule(x, y *BV) z.Lit {
	return b.root(b.c.or(b.Ult(x, y), b.Eq(x, y)))
}
