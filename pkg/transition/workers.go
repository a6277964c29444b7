// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package transition

import (
	"context"
	"sync"

	"github.com/stellarcyber/support-tools/pkg/adapters"
	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// workItem is one matched object awaiting its transition step.
type workItem struct {
	handle tiering.ObjectHandle
}

// workResult is the per-object outcome produced by a worker.
type workResult struct {
	key     string
	outcome tiering.Outcome
	err     error
}

// workerPool applies per-object transition steps with bounded
// concurrency. The listing goroutine feeds the work queue; the pool size
// bounds the number of in-flight provider calls so provider rate limits
// are respected deterministically.
type workerPool struct {
	workers int
	work    chan workItem
	results chan workResult
	wg      sync.WaitGroup
	logger  adapters.Logger
}

const (
	defaultWorkers   = 4
	defaultQueueSize = 64
)

func newWorkerPool(workers, queueSize int, logger adapters.Logger) *workerPool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &workerPool{
		workers: workers,
		work:    make(chan workItem, queueSize),
		results: make(chan workResult, queueSize),
		logger:  logger,
	}
}

// start launches the workers. Each worker drains the queue until it is
// closed or ctx is canceled; cancellation stops new provider calls but
// lets the in-flight one finish inside apply. Results are always
// delivered: the collector drains the channel until close, so the
// outcome that triggered a cancellation is never dropped.
func (p *workerPool) start(ctx context.Context, apply func(context.Context, workItem) workResult) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case item, ok := <-p.work:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}
					p.results <- apply(ctx, item)
				}
			}
		}(i)
	}

	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// submit queues an item, giving up when ctx is canceled.
func (p *workerPool) submit(ctx context.Context, item workItem) bool {
	select {
	case <-ctx.Done():
		return false
	case p.work <- item:
		return true
	}
}

// finish signals that no more work will be submitted.
func (p *workerPool) finish() {
	close(p.work)
}
