/*
Package ropevec implements a persistent (immutable) indexed sequence backed
by a weight-balanced binary tree of variable-length leaf blocks — a rope
adapted for random-access arrays instead of text.

Every mutating operation on a Vector returns a logically new Vector; most of
the tree is shared with the previous incarnation (copy-on-write). Clients
that hold single ownership of a Vector may opt into in-place mutation for
better throughput, at the cost of a panic if ownership turns out to be
shared after all.

Sharing discipline (single-threaded reference counting vs. cross-thread
atomic reference counting) is chosen once, at construction time, via the
Concurrent option; see Immutable.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package ropevec

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'persistent.ropevec'.
func tracer() tracing.Trace {
	return tracing.Select("persistent.ropevec")
}
