/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package rtrun provides the idempotent start/stop lifecycle every channel's
// event-loop goroutine runs under. The contract mirrors golib's
// runner/startStop shape: New wraps a start and a stop function, Start/Stop
// are idempotent and safe to call from any goroutine, and IsRunning/Uptime
// expose state for the debug monitor.
package rtrun

import (
	"context"
	"sync"
	"time"
)

// StartStop is a start/stop lifecycle wrapper around two caller-supplied
// functions. Stop is idempotent: calling it when not running is a no-op.
type StartStop interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
	ErrorsLast() error
	ErrorsList() []error
}

type runner struct {
	mu sync.Mutex

	start func(ctx context.Context) error
	stop  func(ctx context.Context) error

	running   bool
	startedAt time.Time

	cancel context.CancelFunc

	errsMu sync.Mutex
	errs   []error
}

// New builds a StartStop around start/stop. Either may be nil; calling Start
// (resp. Stop) then records ErrorStartFuncNil (resp. is a silent no-op,
// matching Stop's general idempotency) rather than panicking.
func New(start, stop func(ctx context.Context) error) StartStop {
	return &runner{
		start: start,
		stop:  stop,
	}
}

func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrorAlreadyRunning.Error()
	}

	if r.start == nil {
		r.mu.Unlock()
		err := ErrorStartFuncNil.Error()
		r.recordError(err)
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	if err := r.start(runCtx); err != nil {
		r.recordError(err)
		return err
	}

	r.mu.Lock()
	r.running = true
	r.startedAt = time.Now()
	r.mu.Unlock()

	return nil
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}

	cancel := r.cancel
	stop := r.stop
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	var err error
	if stop != nil {
		err = stop(ctx)
	}

	r.mu.Lock()
	r.running = false
	r.startedAt = time.Time{}
	r.mu.Unlock()

	if err != nil {
		r.recordError(err)
	}

	return err
}

func (r *runner) Restart(ctx context.Context) error {
	if err := r.Stop(ctx); err != nil {
		return err
	}
	return r.Start(ctx)
}

func (r *runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return 0
	}
	return time.Since(r.startedAt)
}

func (r *runner) recordError(err error) {
	r.errsMu.Lock()
	defer r.errsMu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *runner) ErrorsLast() error {
	r.errsMu.Lock()
	defer r.errsMu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

func (r *runner) ErrorsList() []error {
	r.errsMu.Lock()
	defer r.errsMu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}
