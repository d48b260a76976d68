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

// Package event defines the pollable sources a channel's loop multiplexes
// over: messages, timers, signals, files and sockets. Each concrete event
// wraps a Go channel suitable for use as a reflect.SelectCase, letting the
// channel event loop block on an arbitrary, runtime-varying set of
// heterogeneous sources the way the original select()-over-fd_set loop did.
package event

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// MaxMessageSize is the largest payload a MessageEvent or NetSocketEvent will
// accept, matching the fixed-size receive buffer of the original runtime.
const MaxMessageSize = 9000

// Default priorities per kind. Lower values are dispatched first within a
// single drained batch; these mirror the defaults of the original add*Event
// factory methods.
const (
	PrioritySignal    uint8 = 1
	PriorityTimer     uint8 = 2
	PriorityMessage   uint8 = 3
	PriorityNetSocket uint8 = 3
	PriorityFile      uint8 = 4
	PriorityTcpListen uint8 = 4
)

// Kind identifies the category of an Event.
type Kind uint8

const (
	KindMessage Kind = iota
	KindTimer
	KindSignal
	KindFile
	KindNetSocket
	KindTcpListen
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindTimer:
		return "timer"
	case KindSignal:
		return "signal"
	case KindFile:
		return "file"
	case KindNetSocket:
		return "net-socket"
	case KindTcpListen:
		return "tcp-listen"
	default:
		return "unknown"
	}
}

// Event is a pollable source registered on a channel. Implementations must
// be safe to poll via reflect.Select using the reflect.Value returned by
// Chan, and Handle must be non-blocking once that case has fired.
type Event interface {
	// Kind reports the event's category.
	Kind() Kind

	// Name is the caller-assigned identifier used to remove/rearm the event.
	Name() string

	// Priority reports the dispatch priority; lower fires first among a
	// batch drained in the same loop iteration.
	Priority() uint8

	// CreatedAt is the time the event was registered, used as the second
	// ordering key after priority.
	CreatedAt() time.Time

	// Sequence is a monotonically increasing registration counter, used as
	// the final ordering key once priority and CreatedAt tie. CreatedAt's
	// time.Time resolution is coarser than the rate at which events can be
	// registered within a single batch, so this is the only tie-breaker
	// that guarantees a total, run-to-run-stable order.
	Sequence() uint64

	// TriggerTime is the time the event last fired, set by SetTriggerTime.
	TriggerTime() time.Time

	// SetTriggerTime stamps the event as having just fired; called by the
	// channel loop immediately before dispatch.
	SetTriggerTime()

	// Chan returns a reflect.Value wrapping the receive-only channel a
	// channel event loop should poll (via reflect.Select) to learn this
	// event is ready.
	Chan() reflect.Value

	// Handle consumes whatever made the event ready and returns false on a
	// failure serious enough to be reported through Manager.ReportError;
	// callers must only invoke Handle after Chan's channel fired ready.
	Handle() bool
}

// sequenceCounter hands out the monotonically increasing registration order
// used by base.Sequence; it is process-global so events created on
// different channels still sort deterministically relative to each other.
var sequenceCounter uint64

// base implements the bookkeeping shared by every concrete event kind.
type base struct {
	mu          sync.Mutex
	kind        Kind
	name        string
	priority    uint8
	createdAt   time.Time
	triggerTime time.Time
	seq         uint64
}

func newBase(kind Kind, name string, priority uint8) base {
	return base{
		kind:      kind,
		name:      name,
		priority:  priority,
		createdAt: time.Now(),
		seq:       atomic.AddUint64(&sequenceCounter, 1),
	}
}

func (b *base) Kind() Kind       { return b.kind }
func (b *base) Name() string     { return b.name }
func (b *base) Priority() uint8  { return b.priority }
func (b *base) Sequence() uint64 { return b.seq }

func (b *base) SetPriority(p uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.priority = p
}

func (b *base) CreatedAt() time.Time { return b.createdAt }

func (b *base) TriggerTime() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.triggerTime
}

func (b *base) SetTriggerTime() {
	b.mu.Lock()
	b.triggerTime = time.Now()
	b.mu.Unlock()
}

// Less orders two events by (priority, creation-time, registration
// sequence), the Go rendition of the original RtEvent::operator< used to
// sort a batch before dispatch. The sequence number is the deciding
// tie-breaker: a batch drained from a Go map has no inherent order, and
// CreatedAt alone does not guarantee a total order for events registered
// within the same clock tick.
func Less(a, b Event) bool {
	if a.Priority() != b.Priority() {
		return a.Priority() < b.Priority()
	}
	if !a.CreatedAt().Equal(b.CreatedAt()) {
		return a.CreatedAt().Before(b.CreatedAt())
	}
	return a.Sequence() < b.Sequence()
}
