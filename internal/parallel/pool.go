package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// BlockPool runs independent pixel blocks on a fixed set of goroutines.
//
// Each worker owns a queue of block jobs and steals from the other queues
// when its own is empty, so slow blocks (large tables, expensive fixed
// functions) do not leave workers idle.
//
// Thread safety: BlockPool is safe for concurrent use. Several Run calls may
// share one pool.
type BlockPool struct {
	workers int

	// queues holds per-worker job queues.
	queues []chan func()

	// mu is held shared while a job is queued and exclusively while Close
	// stops the workers, so no job lands in a queue that was already
	// drained.
	mu      sync.RWMutex
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewBlockPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewBlockPool(workers int) *BlockPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &BlockPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

var (
	sharedOnce sync.Once
	sharedPool *BlockPool
)

// Shared returns a process-wide pool sized to GOMAXPROCS. It is created on
// first use and never closed.
func Shared() *BlockPool {
	sharedOnce.Do(func() {
		sharedPool = NewBlockPool(0)
	})
	return sharedPool
}

func (p *BlockPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case job := <-own:
			job()
		default:
			if job := p.steal(id); job != nil {
				job()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case job := <-own:
				job()
			}
		}
	}
}

func (p *BlockPool) drain(queue chan func()) {
	for {
		select {
		case job := <-queue:
			job()
		default:
			return
		}
	}
}

// steal takes one job from another worker's queue, or returns nil.
func (p *BlockPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

// Run calls fn for every block index in [0, n) and returns when all calls
// have finished. Blocks run in no particular order.
//
// With one block, a single worker, or a closed pool, the blocks run on the
// calling goroutine.
func (p *BlockPool) Run(n int, fn func(block int)) {
	if n <= 0 {
		return
	}
	if n == 1 || p.workers == 1 || !p.running.Load() {
		for i := range n {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		job := func() {
			defer wg.Done()
			fn(i)
		}
		if !p.enqueue(i%p.workers, job) {
			job()
		}
	}
	wg.Wait()
}

// enqueue queues job for worker w. It reports false once the pool is
// closed; the caller then runs job itself.
func (p *BlockPool) enqueue(w int, job func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running.Load() {
		return false
	}
	p.queues[w] <- job
	return true
}

// Close stops the workers after the queued jobs have run. Close is safe to
// call multiple times.
func (p *BlockPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *BlockPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *BlockPool) IsRunning() bool {
	return p.running.Load()
}

// Blocks returns the number of blocks needed to cover n items in blocks of
// size items. The last block may be partial.
func Blocks(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// BlockRange returns the half-open item range [start, end) of block b.
func BlockRange(b, n, size int) (start, end int) {
	start = b * size
	end = min(start+size, n)
	return start, end
}
