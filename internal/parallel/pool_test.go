package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// BlockPool Creation Tests
// =============================================================================

func TestBlockPool_Create(t *testing.T) {
	pool := NewBlockPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestBlockPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewBlockPool(n)
		expected := runtime.GOMAXPROCS(0)
		if pool.Workers() != expected {
			t.Errorf("NewBlockPool(%d).Workers() = %d, want %d (GOMAXPROCS)", n, pool.Workers(), expected)
		}
		pool.Close()
	}
}

func TestShared_SameInstance(t *testing.T) {
	if Shared() != Shared() {
		t.Error("Shared() returned different pools")
	}
}

// =============================================================================
// Run Tests
// =============================================================================

func TestBlockPool_RunVisitsEveryBlock(t *testing.T) {
	pool := NewBlockPool(4)
	defer pool.Close()

	const n = 100
	var hits [n]atomic.Int32
	pool.Run(n, func(b int) {
		hits[b].Add(1)
	})

	for i := range hits {
		if got := hits[i].Load(); got != 1 {
			t.Errorf("block %d ran %d times, want 1", i, got)
		}
	}
}

func TestBlockPool_RunEmpty(t *testing.T) {
	pool := NewBlockPool(4)
	defer pool.Close()

	called := false
	pool.Run(0, func(int) { called = true })
	pool.Run(-1, func(int) { called = true })
	if called {
		t.Error("Run with no blocks called fn")
	}
}

func TestBlockPool_RunSingleBlockInline(t *testing.T) {
	pool := NewBlockPool(4)
	defer pool.Close()

	// A single block may use goroutine-local state without synchronization.
	sum := 0
	pool.Run(1, func(b int) { sum += b + 1 })
	if sum != 1 {
		t.Errorf("sum = %d, want 1", sum)
	}
}

func TestBlockPool_RunAfterClose(t *testing.T) {
	pool := NewBlockPool(4)
	pool.Close()

	var counter atomic.Int64
	pool.Run(10, func(int) { counter.Add(1) })

	if counter.Load() != 10 {
		t.Errorf("counter = %d, want 10 (blocks run inline after Close)", counter.Load())
	}
}

func TestBlockPool_CloseDuringRun(t *testing.T) {
	for iter := range 20 {
		pool := NewBlockPool(4)
		started := make(chan struct{})
		var once sync.Once
		var counter atomic.Int64
		finished := make(chan struct{})

		go func() {
			defer close(finished)
			pool.Run(4096, func(int) {
				once.Do(func() { close(started) })
				runtime.Gosched()
				counter.Add(1)
			})
		}()

		<-started
		pool.Close()

		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatalf("iteration %d: Run did not return after a concurrent Close", iter)
		}
		if counter.Load() != 4096 {
			t.Errorf("iteration %d: counter = %d, want 4096", iter, counter.Load())
		}
	}
}

func TestBlockPool_CloseIdempotent(t *testing.T) {
	pool := NewBlockPool(4)

	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after close")
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestBlockPool_ConcurrentRuns(t *testing.T) {
	pool := NewBlockPool(4)
	defer pool.Close()

	var counter atomic.Int64
	const callers, blocks = 10, 50

	var wg sync.WaitGroup
	wg.Add(callers)
	for range callers {
		go func() {
			defer wg.Done()
			pool.Run(blocks, func(int) { counter.Add(1) })
		}()
	}
	wg.Wait()

	if counter.Load() != callers*blocks {
		t.Errorf("counter = %d, want %d", counter.Load(), callers*blocks)
	}
}

func TestBlockPool_UnevenBlocks(t *testing.T) {
	pool := NewBlockPool(4)
	defer pool.Close()

	var counter atomic.Int64
	start := time.Now()
	pool.Run(16, func(b int) {
		if b%4 == 0 {
			time.Sleep(10 * time.Millisecond)
		}
		counter.Add(1)
	})

	if counter.Load() != 16 {
		t.Errorf("counter = %d, want 16", counter.Load())
	}
	t.Logf("uneven run took %v", time.Since(start))
}

func TestBlockPool_NoGoroutineLeak(t *testing.T) {
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for range 5 {
		pool := NewBlockPool(4)
		pool.Run(100, func(int) {})
		pool.Close()
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	final := runtime.NumGoroutine()
	if final > baseline+2 {
		t.Errorf("goroutine count: baseline=%d, final=%d (leak detected)", baseline, final)
	}
}

// =============================================================================
// Block Arithmetic Tests
// =============================================================================

func TestBlocks(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 1024, 0},
		{1, 1024, 1},
		{1024, 1024, 1},
		{1025, 1024, 2},
		{5000, 1024, 5},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := Blocks(tt.n, tt.size); got != tt.want {
			t.Errorf("Blocks(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestBlockRange_PartialLastBlock(t *testing.T) {
	start, end := BlockRange(4, 5000, 1024)
	if start != 4096 || end != 5000 {
		t.Errorf("BlockRange(4, 5000, 1024) = [%d, %d), want [4096, 5000)", start, end)
	}
}

// =============================================================================
// ScratchPool Tests
// =============================================================================

func TestScratchPool_GetPut(t *testing.T) {
	p := NewScratchPool(256)
	if p.BlockSize() != 256 {
		t.Errorf("BlockSize() = %d, want 256", p.BlockSize())
	}

	s := p.Get()
	if len(s.RGBA) != 4*256 {
		t.Fatalf("len(RGBA) = %d, want %d", len(s.RGBA), 4*256)
	}
	if got := len(s.Pixels(10)); got != 40 {
		t.Errorf("len(Pixels(10)) = %d, want 40", got)
	}
	p.Put(s)
	p.Put(nil)
	p.Put(&Scratch{RGBA: make([]float32, 3)})

	if s2 := p.Get(); len(s2.RGBA) != 4*256 {
		t.Errorf("reused buffer has len %d, want %d", len(s2.RGBA), 4*256)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkBlockPool_Run(b *testing.B) {
	pool := NewBlockPool(0)
	defer pool.Close()

	buf := make([]float32, 4*1024*64)
	b.ResetTimer()
	for range b.N {
		pool.Run(64, func(blk int) {
			px := buf[blk*4096 : (blk+1)*4096]
			for i := range px {
				px[i] = px[i]*0.5 + 0.25
			}
		})
	}
}
