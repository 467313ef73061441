// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

// Package trace is an in-memory codec for the GNF line format: a
// line-oriented superset of DIMACS CNF carrying graph, bitvector, and
// cardinality theory directives alongside boolean clauses. It only
// round-trips a directive sequence to and from text; it never touches a
// file system, never drives a CLI, and never replays a directive into a
// live solver — wiring a decoded trace into this module's own Solver,
// graph.Theory, or bv.Theory is the caller's job, the same way Monosat.cpp
// leaves parseOptions and signal setup to its embedder.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Directive is one GNF line: an operator token (possibly two words, as in
// "bv const") followed by its remaining whitespace-separated fields kept
// as raw text, since the grammar mixes integers, signed dimacs literals,
// relational operators ("<", "<=", ...), and free-form names in ways a
// single typed representation would have to flatten anyway.
type Directive struct {
	Op     string
	Fields []string
}

// compoundOps lists every two-token operator prefix in the grammar; any
// other directive's Op is its first token alone.
var compoundOps = map[string]bool{
	"bv const": true,
	"bv anon":  true,
	"p cnf":    true,
}

// Int returns Fields[i] parsed as an int64, or an error if it isn't one.
func (d Directive) Int(i int) (int64, error) {
	if i < 0 || i >= len(d.Fields) {
		return 0, fmt.Errorf("trace: directive %q has no field %d", d.Op, i)
	}
	return strconv.ParseInt(d.Fields[i], 10, 64)
}

// Encode renders ds as GNF text, one directive per line, in order.
func Encode(ds []Directive) string {
	var b strings.Builder
	for _, d := range ds {
		b.WriteString(d.Op)
		for _, f := range d.Fields {
			b.WriteByte(' ')
			b.WriteString(f)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Decode parses GNF text from r into a directive sequence. Blank lines
// are skipped; nothing else is validated against the grammar — a
// directive's Op and field count are only checked by whatever later
// tries to interpret it.
func Decode(r io.Reader) ([]Directive, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var out []Directive
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		d, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("trace: line %d: %w", lineNo, err)
		}
		out = append(out, d)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseLine splits one GNF line into its operator token(s) and fields. A
// boolean clause line (a bare DIMACS clause, e.g. "-3 5 0") has no
// keyword at all; it's recognized by its first token parsing as a signed
// integer and is given the synthetic Op "clause".
func parseLine(line string) (Directive, error) {
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return Directive{}, fmt.Errorf("empty line")
	}
	if _, err := strconv.ParseInt(toks[0], 10, 64); err == nil {
		return Directive{Op: "clause", Fields: toks}, nil
	}
	if len(toks) >= 2 {
		two := toks[0] + " " + toks[1]
		if compoundOps[two] {
			return Directive{Op: two, Fields: toks[2:]}, nil
		}
	}
	return Directive{Op: toks[0], Fields: toks[1:]}, nil
}
