package countme

// Count is a zero-sized token that counts instances of T. Embed it in T,
// preferably as the first field, since a trailing zero-sized field is padded:
//
//	type Widget struct {
//		c countme.Count[Widget]
//		// ...
//	}
//
// Go has no destructors, so every New or Clone must be paired with exactly one
// Drop on every exit path of the owner's lifetime, typically from the owner's
// Close method or a defer. Track pairs the release with garbage collection
// instead.
type Count[T any] struct {
	_ [0]*T
}

// New creates a token, incrementing the counts of T.
func New[T any]() Count[T] {
	acquire[T]()
	return Count[T]{}
}

// Clone creates another token for T. The clone counts as a new instance.
func (Count[T]) Clone() Count[T] {
	return New[T]()
}

// Drop releases the token, decrementing the live count of T. Dropping more
// tokens than were created leaves the live count at zero.
func (Count[T]) Drop() {
	release[T]()
}

// Track creates a token for owner and releases it once owner becomes
// unreachable. The release runs from a runtime cleanup, so it happens some
// time after a garbage collection and may not happen at all before the
// process exits. Tiny pointer-free objects may be batched by the allocator and
// never released; Track suits owners that hold pointers or are larger than
// 16 bytes. A zero-sized owner, such as a struct whose only field is its
// Count, has no allocation of its own: no cleanup is attached and the
// instance stays live. Pair such owners with Drop instead.
func Track[T any](owner *T) Count[T] {
	c := New[T]()
	if owner != nil {
		trackCleanup(owner)
	}
	return c
}

// Scope runs fn while holding one live instance of T. The instance is released
// on every exit path of fn, including panics.
func Scope[T any](fn func()) {
	c := New[T]()
	defer c.Drop()
	fn()
}
