package countme

import "reflect"

// typeName returns the display name of t: the package-qualified name for named
// types and the reflect string for everything else.
func typeName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
