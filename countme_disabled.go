//go:build nocountme

package countme

// Enabled reports whether this build counts instances.
const Enabled = false

func acquire[T any]() {}

func release[T any]() {}

func trackCleanup[T any](*T) {}

// Get always returns the zero snapshot in builds tagged nocountme.
func Get[T any]() Counts { return Counts{} }

// GetAll always returns an empty report in builds tagged nocountme.
func GetAll() AllCounts { return AllCounts{disabled: true} }

// ResetAll does nothing in builds tagged nocountme.
func ResetAll() {}
