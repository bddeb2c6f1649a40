//go:build !nocountme

package workload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/countme"
	"github.com/ygrebnov/countme/internal/workload/deeply/nested/module"
)

func TestMulti(t *testing.T) {
	countme.ResetAll()
	const workers, iterations = 3, 500

	require.NoError(t, Multi(context.Background(), workers, iterations))

	foo := countme.Get[Foo]()
	bar := countme.Get[Bar]()
	quux := countme.Get[module.Quux]()

	assert.Equal(t, uint64(workers*iterations), foo.Total)
	assert.Equal(t, uint64(0), foo.Live)
	assert.LessOrEqual(t, foo.MaxLive, uint64(workers))

	assert.Equal(t, uint64(workers*iterations), bar.Total)
	assert.Equal(t, uint64(0), bar.Live)
	assert.GreaterOrEqual(t, bar.MaxLive, uint64(iterations))
	assert.LessOrEqual(t, bar.MaxLive, uint64(workers*iterations))

	assert.Equal(t, uint64(workers*iterations), quux.Total)
	assert.Equal(t, uint64(0), quux.Live)
}

func TestMulti_Cancelled(t *testing.T) {
	countme.ResetAll()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Multi(ctx, 2, 10_000)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), countme.Get[Bar]().Live, "held Bars must be released on early exit")
}

func TestSingle(t *testing.T) {
	countme.ResetAll()
	Single(100)
	assert.Equal(t, countme.Counts{Live: 0, MaxLive: 1, Total: 100}, countme.Get[Foo]())
}

func TestDisplayNames(t *testing.T) {
	countme.ResetAll()
	Single(1)
	q := module.NewQuux()
	q.Close()

	all := countme.GetAll().String()
	assert.Contains(t, all, "github.com/ygrebnov/countme/internal/workload.Foo")
	assert.Contains(t, all, "github.com/ygrebnov/countme/internal/workload/deeply/nested/module.Quux")
}
