// Package workload generates counted allocations for the countme CLI.
package workload

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/countme"
	"github.com/ygrebnov/countme/internal/workload/deeply/nested/module"
)

// Foo is created and released immediately.
type Foo struct {
	c countme.Count[Foo]
}

// Bar values are held until the end of a worker's batch.
type Bar struct {
	c countme.Count[Bar]
	x int
}

// Close releases the counted instance.
func (f *Foo) Close() { f.c.Drop() }

// Close releases the counted instance.
func (b *Bar) Close() { b.c.Drop() }

// NewFoo returns a counted Foo.
func NewFoo() Foo { return Foo{c: countme.New[Foo]()} }

// NewBar returns a counted Bar.
func NewBar(x int) Bar { return Bar{c: countme.New[Bar](), x: x} }

// Multi runs workers goroutines per kind (Foo, Bar, Quux), each creating
// iterations instances. Foo and Quux are released right away; Bar values are
// collected into a slice and released together, so Bar's peak reaches
// workers*iterations at most. Cancelling ctx stops the workers early.
func Multi(ctx context.Context, workers, iterations int) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < iterations; j++ {
				if j%1024 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				f := NewFoo()
				f.Close()
			}
			return nil
		})
		g.Go(func() error {
			xs := make([]Bar, 0, iterations)
			defer func() {
				for k := range xs {
					xs[k].Close()
				}
			}()
			for j := 0; j < iterations; j++ {
				if j%1024 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				xs = append(xs, NewBar(j))
			}
			return nil
		})
		g.Go(func() error {
			for j := 0; j < iterations; j++ {
				if j%1024 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				q := module.NewQuux()
				q.Close()
			}
			return nil
		})
	}
	return g.Wait()
}

// Single creates iterations Foo values on the calling goroutine, releasing
// each one before creating the next.
func Single(iterations int) {
	for j := 0; j < iterations; j++ {
		f := NewFoo()
		f.Close()
	}
}
