// Package module holds a type declared deep in the package tree, so its
// display name carries a long import path.
package module

import "github.com/ygrebnov/countme"

// Quux is a counted type.
type Quux struct {
	c countme.Count[Quux]
}

// NewQuux returns a counted Quux.
func NewQuux() Quux { return Quux{c: countme.New[Quux]()} }

// Close releases the counted instance.
func (q *Quux) Close() { q.c.Drop() }
