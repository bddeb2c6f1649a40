//go:build !nocountme

package countme

import (
	"reflect"
	"runtime"
)

// Enabled reports whether this build counts instances. Build with the
// nocountme tag to compile every counting operation to a no-op.
const Enabled = true

func acquire[T any]() {
	Default().Acquire(reflect.TypeFor[T]())
}

func release[T any]() {
	Default().Release(reflect.TypeFor[T]())
}

// trackCleanup attaches the release to owner. Cleanups run one at a time on a
// single runtime goroutine, so the callback must not block; release is a
// sync.Map load plus a CAS loop.
func trackCleanup[T any](owner *T) {
	runtime.AddCleanup(owner, func(struct{}) { release[T]() }, struct{}{})
}

// Get returns the counts for T. If T was never tracked the zero snapshot is
// returned and no entry is created.
func Get[T any]() Counts {
	return Default().Counts(reflect.TypeFor[T]())
}

// GetAll returns the counts of every tracked type, sorted by type name.
func GetAll() AllCounts {
	return Default().All()
}

// ResetAll zeroes the counts of every tracked type. Intended for tests;
// quiesce counting first if an exact reset is required.
func ResetAll() {
	Default().Reset()
}
