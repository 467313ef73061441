// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package z

import "fmt"

// Lit encodes (variable, sign) as 2*var + sign, so negation is Lit^1.
type Lit uint32

// LitNull is the sentinel literal used to terminate a clause in Adder
// streams and to mean "no literal" elsewhere.
const LitNull Lit = 0

// Dimacs2Lit converts a DIMACS-coded literal (positive/negative int,
// 1-indexed variables) to a Lit.
func Dimacs2Lit(m int) Lit {
	if m < 0 {
		return Lit(-2*m + 1)
	}
	return Lit(2 * m)
}

// Dimacs returns the DIMACS coding of m.
func (m Lit) Dimacs() int {
	if m&1 != 0 {
		return -int(m >> 1)
	}
	return int(m >> 1)
}

func (m Lit) String() string {
	return fmt.Sprintf("%d", m.Dimacs())
}

// Var returns the variable underlying m.
func (m Lit) Var() Var {
	return Var(m >> 1)
}

// Not returns the negation of m.
func (m Lit) Not() Lit {
	return Lit(m ^ 1)
}

// Sign returns 1 if m is a positive literal, -1 otherwise.
func (m Lit) Sign() int8 {
	if m&1 == 0 {
		return 1
	}
	return -1
}

// IsPos returns true if m is a positive literal.
func (m Lit) IsPos() bool {
	return m&1 == 0
}
