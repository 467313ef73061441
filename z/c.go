// Copyright 2024 The Monograph Authors. All rights reserved. Use of this
// source code is governed by a license that can be found in the LICENSE file.

package z

import "fmt"

// C is an ephemeral clause reference. Clause references may be
// invalidated by clause-store compaction; callers that need to hold onto
// a clause across such an event must go through the store's own API
// rather than caching a C.
type C uint32

// CNull is the clause reference meaning "no clause" (e.g. a decision or an
// assumption on the trail has no reason clause).
const CNull C = 0

func (p C) String() string {
	return fmt.Sprintf("c%d", uint32(p))
}
