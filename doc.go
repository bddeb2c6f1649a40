/*
Package countme counts live, peak and total instances of Go types.

# Overview

A type opts in by embedding a zero-sized Count token. Creating the token
increments the counters of the type, dropping it decrements the live count:

	type Widget struct {
		c countme.Count[Widget]
		name string
	}

	func NewWidget(name string) *Widget {
		return &Widget{c: countme.New[Widget](), name: name}
	}

	func (w *Widget) Close() { w.c.Drop() }

Three counters are kept per type:

  - live: instances created and not dropped yet
  - max_live: the historical maximum of live
  - total: instances ever created

For example:

	w1, w2, w3 := NewWidget("a"), NewWidget("b"), NewWidget("c")
	w1.Close()
	c := countme.Get[Widget]() // {Live: 2, MaxLive: 3, Total: 3}

GetAll returns every tracked type sorted by name; its String method renders a
fixed-width table with an aggregate row:

	fmt.Fprint(os.Stderr, countme.GetAll())

# Reference implementation

Counters live in a Registry keyed by reflect.Type. The registry stores entries
in a sync.Map and uses a separate sync.Map of per-key mutexes to serialize the
first registration of a type.

How it works (high level)

 1. Fast path: look up the entry in the sync.Map and update its atomics.
 2. Slow path (once per type): compute the display name off-lock; acquire the
    per-key mutex; re-check; store the entry; optionally delete the init mutex.
 3. max_live is raised with a compare-and-swap loop on every creation, so
    concurrent creations never under-report the peak.
 4. Snapshots read the three atomics independently. They are exact only when
    counting is quiescent.

Package-level functions (New, Get, GetAll, ResetAll) use the process-wide
Default registry. A Registry can also be created and driven directly with
reflect.Type keys, which is handy for isolated tests.

# Build tags

  - nocountme: compile every counting operation to a no-op. Count stays
    zero-sized, Get returns the zero snapshot and GetAll an empty report.
  - debug, or the race detector: internal invariant violations panic instead
    of being logged.

# Notes

- Dropping more tokens than were created is a bug in the caller. The live
count then saturates at zero; no error is reported.

- Entries are never removed. ResetAll zeroes counters but keeps the types
registered.
*/
package countme
