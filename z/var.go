// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package z provides the literal algebra shared by the CDCL engine and
// every theory plugin: variables, signed literals, and clause references.
package z

import "fmt"

// Var is a dense, non-negative Boolean variable id.
type Var uint32

func (v Var) String() string {
	return fmt.Sprintf("v%d", uint32(v))
}

// Pos returns the positive literal of v.
func (v Var) Pos() Lit {
	return Lit(v << 1)
}

// Neg returns the negative literal of v.
func (v Var) Neg() Lit {
	return Lit((v << 1) | 1)
}
