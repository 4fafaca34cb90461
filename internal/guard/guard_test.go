package guard

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard_RunsExactlyOnce(t *testing.T) {
	t.Parallel()

	var calls int
	g := New(func() { calls++ })

	g.Run()
	g.Run()
	g.Run()

	assert.Equal(t, 1, calls)
	assert.False(t, g.Armed())
}

func TestGuard_DismissPreventsRun(t *testing.T) {
	t.Parallel()

	var calls int
	g := New(func() { calls++ })

	g.Dismiss()
	g.Run()

	assert.Equal(t, 0, calls)
}

func TestGuard_DismissIdempotent(t *testing.T) {
	t.Parallel()

	g := New(func() { t.Fatal("cleanup must not run") })
	g.Dismiss()
	g.Dismiss()
	g.Run()
}

func TestGuard_NilSafe(t *testing.T) {
	t.Parallel()

	var g *Guard
	g.Run()
	g.Dismiss()
	assert.False(t, g.Armed())

	// Armed with no function is inert too.
	empty := New(nil)
	empty.Run()
	assert.False(t, empty.Armed())
}

func TestGuard_ConcurrentRuns(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	g := New(func() { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Run()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}
