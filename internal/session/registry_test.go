package session

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ConcurrentFirstAccess(t *testing.T) {
	var constructed atomic.Int32
	engine := &mockEngine{}
	r := NewRegistry(func() *Session {
		constructed.Add(1)
		return New(engine)
	})

	const callers = 64
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		got   = make([]*Session, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = r.Session()
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), constructed.Load())
	require.NotNil(t, got[0])
	for i := 1; i < callers; i++ {
		assert.Same(t, got[0], got[i])
	}
}

func TestRegistry_Reset(t *testing.T) {
	var constructed atomic.Int32
	r := NewRegistry(func() *Session {
		constructed.Add(1)
		return New(&mockEngine{})
	})

	// Reset before first access is a no-op.
	r.Reset()
	assert.Zero(t, constructed.Load())

	first := r.Session()
	assert.Same(t, first, r.Session())

	r.Reset()
	assert.Equal(t, StateReleased, first.State())

	second := r.Session()
	assert.NotSame(t, first, second)
	assert.Equal(t, StateClosed, second.State())
	assert.Equal(t, int32(2), constructed.Load())
}
