// Package worker evaluates game predicates on a pool of goroutines.
//
// The record scanner is strictly sequential, so the reader stays on the
// caller's goroutine and only the per-game work (criterion checks) fans out.
// Results arrive in completion order; Ordered restores input order.
package worker

import (
	"sync"
	"sync/atomic"

	"github.com/lgbarn/pgn-scan/internal/chess"
)

// WorkItem is a game snapshot queued for evaluation.
type WorkItem struct {
	Game  *chess.Game
	Index int // position in submission order, starting at 0
}

// Result is the outcome of evaluating one WorkItem.
type Result struct {
	Game    *chess.Game
	Index   int
	Matched bool
	Err     error
}

// ProcessFunc evaluates a single work item.
type ProcessFunc func(item WorkItem) Result

// Predicate adapts a boolean game test to a ProcessFunc.
func Predicate(match func(*chess.Game) bool) ProcessFunc {
	return func(item WorkItem) Result {
		return Result{Game: item.Game, Index: item.Index, Matched: match(item.Game)}
	}
}

// Pool manages a fixed set of worker goroutines.
type Pool struct {
	numWorkers  int
	bufferSize  int
	workChan    chan WorkItem
	resultChan  chan Result
	processFunc ProcessFunc
	wg          sync.WaitGroup
	stopFlag    int32
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n >= 1 {
			p.numWorkers = n
		}
	}
}

// WithBufferSize sets the capacity of the work and result channels.
func WithBufferSize(size int) PoolOption {
	return func(p *Pool) {
		if size >= 1 {
			p.bufferSize = size
		}
	}
}

// NewPool creates a pool running processFunc.
// Default: 1 worker, buffer size of 10.
func NewPool(processFunc ProcessFunc, opts ...PoolOption) *Pool {
	p := &Pool{
		numWorkers:  1,
		bufferSize:  10,
		processFunc: processFunc,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.workChan = make(chan WorkItem, p.bufferSize)
	p.resultChan = make(chan Result, p.bufferSize)
	return p
}

// Start starts the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for item := range p.workChan {
		if p.IsStopped() {
			continue // drain without processing
		}
		p.resultChan <- p.processFunc(item)
	}
}

// Submit queues an item. It blocks while the work channel is full, so the
// results must be consumed concurrently.
func (p *Pool) Submit(item WorkItem) {
	p.workChan <- item
}

// Stop makes workers skip the items still queued.
func (p *Pool) Stop() {
	atomic.StoreInt32(&p.stopFlag, 1)
}

// IsStopped reports whether Stop was called.
func (p *Pool) IsStopped() bool {
	return atomic.LoadInt32(&p.stopFlag) != 0
}

// Close closes the work channel, waits for the workers and then closes the
// result channel.
func (p *Pool) Close() {
	close(p.workChan)
	p.wg.Wait()
	close(p.resultChan)
}

// Results returns the result channel.
func (p *Pool) Results() <-chan Result {
	return p.resultChan
}

// Ordered calls fn for every result in Index order, holding back results
// that arrive early. Indexes must be dense and start at 0. It returns the
// first error from fn after draining the channel; results after that are
// not passed to fn.
func Ordered(results <-chan Result, fn func(Result) error) error {
	pending := make(map[int]Result)
	next := 0
	var firstErr error

	for r := range results {
		pending[r.Index] = r
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if firstErr == nil {
				firstErr = fn(ready)
			}
		}
	}
	return firstErr
}
