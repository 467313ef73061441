// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package core

import "math"

// luby computes the Luby restart sequence: 1,1,2,1,1,2,4,1,1,2,1,1,2,4,8,...
// scaled by unit. Restarting on this schedule bounds the expected cost of
// unlucky branching without giving up completely on any one run.
func luby(unit float64, x int) float64 {
	size, seq := 1, 0
	for size < x+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) / 2
		seq--
		x = x % size
	}
	return unit * math.Pow(2, float64(seq))
}

// maybeRestart bumps a counter once per conflict-free search round and,
// once it reaches the next Luby threshold, resets it and reports true. It
// does not touch the trail: the caller cuts it back to the assumption
// boundary.
func (s *Solver) maybeRestart() bool {
	s.sinceRestart++
	if float64(s.sinceRestart) < luby(float64(s.lubyUnit), s.nRestarts) {
		return false
	}
	s.sinceRestart = 0
	s.nRestarts++
	return true
}
