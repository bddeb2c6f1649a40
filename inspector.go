package countme

import "reflect"

// Source provides read access to a set of tracked types.
// *Registry implements it; so does a SourceFunc wrapping GetAll.
// Methods must be safe for concurrent use.
type Source interface {
	All() AllCounts
}

// SourceFunc adapts a function such as GetAll to the Source interface.
type SourceFunc func() AllCounts

// All calls f.
func (f SourceFunc) All() AllCounts { return f() }

// Counts returns the current counts for t. Types that were never tracked yield
// the zero snapshot and no entry is created.
func (r *Registry) Counts(t reflect.Type) Counts {
	s, ok := r.lookup(t)
	if !ok {
		return Counts{}
	}
	return s.read()
}

// All returns a best-effort snapshot of every tracked type, sorted by type name.
// It does not acquire per-key init mutexes; types registered concurrently
// may or may not be included.
func (r *Registry) All() AllCounts {
	out := make([]Entry, 0, r.Len())
	r.entries.Range(func(k, v interface{}) bool {
		s, ok := v.(*store)
		if !ok {
			if t, ok2 := k.(reflect.Type); ok2 {
				r.reportInvariantViolation("entry_type", t)
			}
			return true // skip invalid entries
		}
		out = append(out, Entry{Name: s.name, Counts: s.read()})
		return true
	})
	return NewAllCounts(out)
}

// Reset zeroes the counters of every tracked type. Entries stay registered.
func (r *Registry) Reset() {
	r.entries.Range(func(_, v interface{}) bool {
		if s, ok := v.(*store); ok {
			s.reset()
		}
		return true
	})
}

// Len returns the number of tracked types.
func (r *Registry) Len() int {
	return int(r.size.Load())
}
