package countme

import "reflect"

// test-only types; each test uses its own types so the default registry
// does not leak counts between tests.
type (
	widget struct{ c Count[widget] }
	gadget struct{ c Count[gadget] }
)

func typeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }

func acquireN(r *Registry, t reflect.Type, n int) {
	for i := 0; i < n; i++ {
		r.Acquire(t)
	}
}

func releaseN(r *Registry, t reflect.Type, n int) {
	for i := 0; i < n; i++ {
		r.Release(t)
	}
}

// entryLoad reads the stored entry for t without going through lookup.
func entryLoad(r *Registry, t reflect.Type) (*store, bool) {
	v, ok := r.entries.Load(t)
	if !ok {
		return nil, false
	}
	s, ok := v.(*store)
	return s, ok
}
