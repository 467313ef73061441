// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package z

import (
	"bytes"
	"fmt"
)

// Vars maps between a stream of user-supplied ("outer") literals and a
// dense, gap-free stream of internal ("inner") literals, while also
// letting the application allocate and free purely-internal variables
// that the outer stream never sees.
//
// This is the bijection the CDCL engine's clause store and every theory
// plugin actually touch: outer variables handed to a client always
// resolve to exactly one inner variable.
type Vars struct {
	i2o  []Var
	o2i  []Var
	free []Var
	iMax Var
	oMax Var
}

// NewVars creates an empty Vars map.
func NewVars() *Vars {
	return &Vars{}
}

// Copy returns an independent copy of v.
func (v *Vars) Copy() *Vars {
	o := &Vars{
		i2o:  make([]Var, len(v.i2o)),
		o2i:  make([]Var, len(v.o2i)),
		free: make([]Var, len(v.free)),
		iMax: v.iMax,
		oMax: v.oMax,
	}
	copy(o.i2o, v.i2o)
	copy(o.o2i, v.o2i)
	copy(o.free, v.free)
	return o
}

// ToInner maps an outer literal to its inner literal, allocating a fresh
// inner variable for m's variable if this is the first time it's seen.
func (v *Vars) ToInner(m Lit) Lit {
	u := m.Var()
	v.ensureOuterCap(u)
	w := v.o2i[u]
	if m.IsPos() {
		return w.Pos()
	}
	return w.Neg()
}

// ToInners maps every literal of ms in place and returns ms.
func (v *Vars) ToInners(ms []Lit) []Lit {
	for i, m := range ms {
		ms[i] = v.ToInner(m)
	}
	return ms
}

// ToOuter maps an inner literal back to its outer literal, or LitNull if m
// has no outer counterpart (e.g. m is a purely internal variable).
func (v *Vars) ToOuter(m Lit) Lit {
	u := m.Var()
	v.ensureInnerCap(u)
	w := v.i2o[u]
	if w == 0 {
		return LitNull
	}
	if m.IsPos() {
		return w.Pos()
	}
	return w.Neg()
}

// ToOuters maps every literal of ms to its outer form in place, dropping
// literals with no outer counterpart, and returns the (possibly shorter)
// result.
func (v *Vars) ToOuters(ms []Lit) []Lit {
	j := 0
	for _, m := range ms {
		n := v.ToOuter(m)
		if n != LitNull {
			ms[j] = n
			j++
		}
	}
	return ms[:j]
}

// Inner allocates a fresh inner-only variable with no outer counterpart
// and returns its positive literal.
func (v *Vars) Inner() Lit {
	fl := len(v.free)
	if fl != 0 {
		res := v.free[fl-1]
		v.free = v.free[:fl-1]
		return res.Pos()
	}
	w := Var(len(v.i2o))
	v.ensureInnerCap(w)
	return w.Pos()
}

// Free releases an inner-only variable previously returned by Inner.
// Freeing anything else yields undefined behavior on subsequent Inner
// calls.
func (v *Vars) Free(m Lit) {
	v.free = append(v.free, m.Var())
}

func (v *Vars) String() string {
	buf := bytes.NewBuffer(nil)
	for i, w := range v.i2o {
		if i == 0 {
			continue
		}
		fmt.Fprintf(buf, "%s %s\n", w, Var(i))
	}
	return buf.String()
}

func (v *Vars) ensureInnerCap(w Var) {
	for u := Var(len(v.i2o)); u <= w; u++ {
		v.i2o = append(v.i2o, 0)
	}
}

func (v *Vars) ensureOuterCap(w Var) {
	for o := Var(len(v.o2i)); o <= w; o++ {
		i := Var(len(v.i2o))
		v.o2i = append(v.o2i, i)
		v.i2o = append(v.i2o, o)
	}
}
