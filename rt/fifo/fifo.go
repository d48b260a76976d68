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

// Package fifo implements the bounded, ordered message queue shared between
// two channels wired together by a connection. A Fifo couples three
// primitives: a buffered Go channel acting both as the FIFO queue and as its
// own readiness signal (collapsing the original queue+signalling-pipe pair
// into one), a weighted semaphore gating producers once the queue is full,
// and a mutex-guarded counter kept only to catch a producer/consumer
// accounting bug defensively.
package fifo

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/opensand/rt-go/errors"
	"github.com/opensand/rt-go/rt/message"
)

// DefaultMaxDepth is the queue depth used when a caller passes a
// non-positive maxDepth.
const DefaultMaxDepth = 3

// Fifo is a bounded, single-producer-side*, single-consumer-side ordered
// queue of *message.Message. (*Many producers may call Push concurrently;
// ordering among them is whatever order their Push calls succeed in.)
type Fifo struct {
	name     string
	maxDepth int64

	queue chan *message.Message
	sem   *semaphore.Weighted

	mu     sync.Mutex
	length int64
	closed bool

	onPush func(depth int64, waited time.Duration)

	onOverCapacity func(depth, maxDepth int64)
}

// SetPushHook installs fn to be called after every successful Push/TryPush
// with the resulting queue depth and how long the call blocked acquiring
// its permit. Intended for rt/metrics; nil disables the hook (the default).
func (f *Fifo) SetPushHook(fn func(depth int64, waited time.Duration)) {
	f.mu.Lock()
	f.onPush = fn
	f.mu.Unlock()
}

// SetOverCapacityHook installs fn to be called whenever Push observes the
// queue length exceed maxDepth. This should never happen — the semaphore
// already bounds concurrent Push calls to maxDepth — so the hook exists
// purely to surface the defensive check; nil disables it (the default).
func (f *Fifo) SetOverCapacityHook(fn func(depth, maxDepth int64)) {
	f.mu.Lock()
	f.onOverCapacity = fn
	f.mu.Unlock()
}

// New builds a Fifo with the given name and capacity. A non-positive
// maxDepth is replaced by DefaultMaxDepth.
func New(name string, maxDepth int64) *Fifo {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &Fifo{
		name:     name,
		maxDepth: maxDepth,
		queue:    make(chan *message.Message, maxDepth),
		sem:      semaphore.NewWeighted(maxDepth),
	}
}

// Name returns the Fifo's identifying name, typically the connection it backs.
func (f *Fifo) Name() string {
	return f.name
}

// Cap returns the configured maximum depth.
func (f *Fifo) Cap() int64 {
	return f.maxDepth
}

// Len returns the current number of queued messages.
func (f *Fifo) Len() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.length
}

// Chan exposes the underlying channel for use as a reflect.SelectCase in a
// channel's event loop. Receiving from it directly bypasses the length
// bookkeeping; callers driving the event loop must call Pop instead once the
// case fires, or use Recv in simple read paths.
func (f *Fifo) Chan() <-chan *message.Message {
	return f.queue
}

// Push enqueues m, blocking until capacity is available or ctx is done. The
// caller gives up ownership of m on success.
func (f *Fifo) Push(ctx context.Context, m *message.Message) errors.Error {
	if m == nil {
		return ErrorParamsEmpty.Error()
	}

	start := time.Now()
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return ErrorFifoPushTimeout.Error(err)
	}
	waited := time.Since(start)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		f.sem.Release(1)
		return ErrorFifoClosed.Error()
	}

	f.length++
	overCapacity := f.length > f.maxDepth
	f.mu.Unlock()

	if overCapacity {
		// Defensive only: the semaphore already bounds how many Push calls
		// can be in flight, so this should never trigger. Log and still
		// enqueue rather than drop the message.
		f.notifyOverCapacity()
	}

	select {
	case f.queue <- m:
		f.notifyPush(waited)
		return nil
	default:
		f.mu.Lock()
		f.length--
		f.mu.Unlock()
		f.sem.Release(1)
		return ErrorFifoFull.Error()
	}
}

// notifyPush invokes the push hook, if any, with the queue depth just after
// a successful enqueue.
func (f *Fifo) notifyPush(waited time.Duration) {
	f.mu.Lock()
	fn := f.onPush
	depth := f.length
	f.mu.Unlock()

	if fn != nil {
		fn(depth, waited)
	}
}

// notifyOverCapacity invokes the over-capacity hook, if any, with the queue
// depth that exceeded maxDepth.
func (f *Fifo) notifyOverCapacity() {
	f.mu.Lock()
	fn := f.onOverCapacity
	depth := f.length
	f.mu.Unlock()

	if fn != nil {
		fn(depth, f.maxDepth)
	}
}

// TryPush enqueues m without blocking, returning ErrorFifoFull if the Fifo is
// currently at capacity. This is the back-pressure-rejecting counterpart of
// Push, used by callers that never wait on a full downstream queue.
func (f *Fifo) TryPush(m *message.Message) errors.Error {
	if m == nil {
		return ErrorParamsEmpty.Error()
	}

	if !f.sem.TryAcquire(1) {
		return ErrorFifoFull.Error()
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		f.sem.Release(1)
		return ErrorFifoClosed.Error()
	}
	f.length++
	f.mu.Unlock()

	select {
	case f.queue <- m:
		f.notifyPush(0)
		return nil
	default:
		f.mu.Lock()
		f.length--
		f.mu.Unlock()
		f.sem.Release(1)
		return ErrorFifoFull.Error()
	}
}

// Pop dequeues the oldest message, non-blocking. It returns ErrorFifoEmpty if
// nothing is queued.
func (f *Fifo) Pop() (*message.Message, errors.Error) {
	select {
	case m := <-f.queue:
		f.mu.Lock()
		f.length--
		f.mu.Unlock()
		f.sem.Release(1)
		return m, nil
	default:
		return nil, ErrorFifoEmpty.Error()
	}
}

// Recv dequeues the message that made Chan() ready for a select case already
// known to have fired; it performs the same bookkeeping as Pop but assumes
// the receive will not block.
func (f *Fifo) Recv() (*message.Message, errors.Error) {
	return f.Pop()
}

// Close marks the Fifo closed: further Push calls fail, already-queued
// messages remain poppable until drained. The error return is always nil;
// it exists so a Fifo satisfies io.Closer and can be registered with a
// mapCloser.Closer.
func (f *Fifo) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close has been called.
func (f *Fifo) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
