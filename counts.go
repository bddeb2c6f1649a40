package countme

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Counts is an immutable snapshot of the counters of one type.
type Counts struct {
	// Live is the number of instances created but not released yet.
	Live uint64
	// MaxLive is the historical maximum of Live since process start or the last reset.
	MaxLive uint64
	// Total is the number of instances ever created.
	Total uint64
}

// Add returns the field-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{Live: c.Live + o.Live, MaxLive: c.MaxLive + o.MaxLive, Total: c.Total + o.Total}
}

// IsZero reports whether all three counters are zero.
func (c Counts) IsZero() bool { return c == Counts{} }

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (c Counts) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("live", c.Live).Uint64("max_live", c.MaxLive).Uint64("total", c.Total)
}

// store holds the counters of one tracked type. All methods are safe for concurrent use.
// The three fields are updated independently; a read taken under load is approximate.
type store struct {
	name    string
	live    atomic.Uint64
	maxLive atomic.Uint64
	total   atomic.Uint64
}

func newStore(name string) *store {
	return &store{name: name}
}

// onCreate accounts one new instance and raises maxLive to cover the live value it produced.
func (s *store) onCreate() {
	s.total.Add(1)
	live := s.live.Add(1)
	for {
		cur := s.maxLive.Load()
		if live <= cur || s.maxLive.CompareAndSwap(cur, live) {
			return
		}
	}
}

// onDestroy accounts one released instance. Releasing more instances than were created
// is a caller bug; live then stays at zero instead of wrapping around.
func (s *store) onDestroy() {
	for {
		cur := s.live.Load()
		if cur == 0 || s.live.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// read returns the current counters. The three loads are not atomic as a group.
func (s *store) read() Counts {
	return Counts{Live: s.live.Load(), MaxLive: s.maxLive.Load(), Total: s.total.Load()}
}

// reset zeroes the counters. Callers quiesce the type first if they need an exact reset.
func (s *store) reset() {
	s.live.Store(0)
	s.maxLive.Store(0)
	s.total.Store(0)
}
