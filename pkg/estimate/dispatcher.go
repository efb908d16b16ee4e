package estimate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"weixiang/pkg/core"
	"weixiang/pkg/weiqi"
)

// Result is an estimate tagged with the epoch it was requested at.
type Result struct {
	Epoch       uint64
	Territories Territories
	Err         error
}

type job struct {
	epoch uint64
	req   Request
}

// Dispatcher runs estimates one at a time. A request submitted while
// another is in flight waits; a newer submission replaces a waiting one, so
// only the latest position is ever estimated next.
type Dispatcher struct {
	est     Estimator
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	next    *job
	wake    chan struct{}
	results chan Result
}

// NewDispatcher wraps est. timeout bounds each estimate; zero means two
// seconds.
func NewDispatcher(est Estimator, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		est:     est,
		timeout: timeout,
		log:     log,
		wake:    make(chan struct{}, 1),
		results: make(chan Result, 1),
	}
}

// RequestEstimate queues an estimate of stones without blocking.
func (d *Dispatcher) RequestEstimate(epoch uint64, stones []weiqi.Placed, toMove core.Color) {
	d.Submit(epoch, NewRequest(stones, toMove))
}

func (d *Dispatcher) Submit(epoch uint64, req Request) {
	d.mu.Lock()
	if d.next != nil {
		d.log.Debug("estimate superseded", zap.Uint64("epoch", d.next.epoch), zap.Uint64("by", epoch))
	}
	d.next = &job{epoch: epoch, req: req}
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Results delivers finished estimates in completion order.
func (d *Dispatcher) Results() <-chan Result {
	return d.results
}

// Run processes requests until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.wake:
		}
		d.mu.Lock()
		j := d.next
		d.next = nil
		d.mu.Unlock()
		if j == nil {
			continue
		}

		rctx, cancel := context.WithTimeout(ctx, d.timeout)
		t, err := d.est.Estimate(rctx, j.req)
		cancel()
		if err != nil {
			t = Territories{}
			d.log.Debug("estimate failed", zap.Uint64("epoch", j.epoch), zap.Error(err))
		}
		select {
		case d.results <- Result{Epoch: j.epoch, Territories: t, Err: err}:
		case <-ctx.Done():
			return
		}
	}
}
