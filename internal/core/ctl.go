// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package core

import "sync/atomic"

// unlimited marks a budget as never exhausted.
const unlimited = -1

// Ctl is a cooperative interrupt flag and budget tracker, checked at
// decision and propagation-round boundaries so a long Solve can be
// stopped from another goroutine, or bounded by a conflict/propagation
// count, without corrupting solver state. Interrupt and budget
// exhaustion behave identically on exhaustion: both surface through
// Stopped.
type Ctl struct {
	stop atomic.Bool

	confBudget int64
	propBudget int64
	confUsed   int64
	propUsed   int64
}

// Interrupt requests that the current or next Solve stop at the next
// checkpoint.
func (c *Ctl) Interrupt() {
	c.stop.Store(true)
}

// SetConfBudget caps the number of conflicts a Solve may analyze before
// Stopped reports true. n < 0 means unlimited.
func (c *Ctl) SetConfBudget(n int64) {
	c.confBudget = n
}

// SetPropBudget caps the number of literals a Solve may propagate before
// Stopped reports true. n < 0 means unlimited.
func (c *Ctl) SetPropBudget(n int64) {
	c.propBudget = n
}

// Conflict records that one more conflict was analyzed.
func (c *Ctl) Conflict() {
	c.confUsed++
}

// Propagated records that n more literals were assigned by propagation.
func (c *Ctl) Propagated(n int64) {
	c.propUsed += n
}

// Stopped reports whether an Interrupt is pending, or either budget has
// been exhausted.
func (c *Ctl) Stopped() bool {
	if c.stop.Load() {
		return true
	}
	if c.confBudget >= 0 && c.confUsed >= c.confBudget {
		return true
	}
	if c.propBudget >= 0 && c.propUsed >= c.propBudget {
		return true
	}
	return false
}

// Reset clears the used-budget counters, called at the start of each
// Solve. The budgets themselves persist across Solve calls until changed
// with SetConfBudget/SetPropBudget. The interrupt flag is left as it is,
// so an Interrupt made between Solve calls stops the next one; Solve
// clears the flag when it stops.
func (c *Ctl) Reset() {
	c.confUsed = 0
	c.propUsed = 0
}
