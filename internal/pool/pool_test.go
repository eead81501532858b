package pool_test

import (
	"sync"
	"testing"

	"github.com/Danton11/RIND/internal/pool"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Pool Basic Operations Tests
// =============================================================================

func TestPool_GetAndPut(t *testing.T) {
	bufPool := pool.New(func() []byte {
		return make([]byte, 512)
	})

	buf := bufPool.Get()
	assert.NotNil(t, buf)
	assert.Len(t, buf, 512)

	bufPool.Put(buf)

	buf2 := bufPool.Get()
	assert.NotNil(t, buf2)
	assert.Len(t, buf2, 512)
}

func TestPool_ConstructorCalled(t *testing.T) {
	callCount := 0
	p := pool.New(func() int {
		callCount++
		return callCount
	})

	v1 := p.Get()
	assert.Equal(t, 1, v1)
	assert.Equal(t, 1, callCount)

	// Nothing put back yet, so the constructor runs again.
	v2 := p.Get()
	assert.Equal(t, 2, v2)
	assert.Equal(t, 2, callCount)
}

func TestNewBytes_FixedSizeBuffers(t *testing.T) {
	p := pool.NewBytes(512)

	buf := p.Get()
	assert.NotNil(t, buf)
	assert.Len(t, *buf, 512)

	(*buf)[0] = 0xFF
	p.Put(buf)

	buf2 := p.Get()
	assert.Len(t, *buf2, 512)
}

// =============================================================================
// Pool Concurrency Tests
// =============================================================================

func TestPool_ConcurrentAccess(t *testing.T) {
	p := pool.NewBytes(256)

	var wg sync.WaitGroup
	const goroutines = 100
	const iterations = 1000

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				buf := p.Get()
				assert.NotNil(t, buf)
				(*buf)[0] = 1
				p.Put(buf)
			}
		}()
	}

	wg.Wait()
}

// =============================================================================
// Pool Benchmarks
// =============================================================================

func BenchmarkPool_GetPut(b *testing.B) {
	p := pool.NewBytes(512)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf := p.Get()
		p.Put(buf)
	}
}

func BenchmarkPool_Parallel(b *testing.B) {
	p := pool.NewBytes(512)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := p.Get()
			p.Put(buf)
		}
	})
}
