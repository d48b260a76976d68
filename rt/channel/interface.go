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

// Package channel implements the four channel shapes a block owns (Simple,
// Mux, Demux[K], MuxDemux[K]) and their shared single-threaded event loop.
// Each channel multiplexes a dynamic set of event.Event sources with
// reflect.Select, drains every currently-ready source once one fires, sorts
// the batch by (priority, creation-time, insertion-order) and dispatches to
// a Handler in that order — the Go rendition of the original
// select()-over-fd_set-then-sorted-dispatch loop.
package channel

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/opensand/rt-go/errors"
	"github.com/opensand/rt-go/rt/event"
	"github.com/opensand/rt-go/rt/fifo"
)

// Direction distinguishes a block's two channels: Upward carries messages
// from lower-level blocks towards the application, Downward the reverse.
type Direction uint8

const (
	Upward Direction = iota
	Downward
)

func (d Direction) String() string {
	if d == Upward {
		return "upward"
	}
	return "downward"
}

// Handler is the user-supplied behavior plugged into a channel: OnInit runs
// once before the event loop starts, OnEvent once per dispatched event.
// Either may be nil, in which case the channel treats it as trivially
// succeeding.
type Handler interface {
	OnInit() bool
	OnEvent(ev event.Event) bool
}

// Channel is the behavior common to all four shapes.
type Channel interface {
	Name() string
	Direction() Direction

	AddTimerEvent(name string, duration time.Duration, autoRearm bool, start bool, priority uint8) (string, errors.Error)
	AddSignalEvent(name string, priority uint8, signals ...os.Signal) (string, errors.Error)
	AddFileEvent(name, path string, priority uint8) (string, errors.Error)
	AddNetSocketEvent(name string, conn net.Conn, maxSize int, priority uint8) (string, errors.Error)
	AddTcpListenEvent(name string, ln net.Listener, priority uint8) (string, errors.Error)
	RemoveEvent(name string) errors.Error
	StartTimer(name string) errors.Error
	RaiseTimer(name string) errors.Error
	SetTimerDuration(name string, d time.Duration) errors.Error

	// EnqueueMessage pushes data/typ onto this channel's downstream fifo
	// (fifos, for a Demux/MuxDemux shape — see the keyed variants).
	EnqueueMessage(ctx context.Context, typ uint8, data []byte) errors.Error

	// ShareMessage enqueues a Message onto this channel's own Block's
	// opposite-direction channel: same-block, cross-channel traffic,
	// distinct from EnqueueMessage's cross-block downstream push.
	ShareMessage(ctx context.Context, typ uint8, data []byte) errors.Error

	Start(ctx context.Context) errors.Error
	Stop(ctx context.Context) errors.Error
	IsRunning() bool
	Uptime() time.Duration

	// addPrevFifo, setPrevFifo and setOppositeFifo are unexported wiring
	// hooks used only by rt/block and rt/manager within this module.
	addPrevFifo(f *fifo.Fifo) int
	setPrevFifo(f *fifo.Fifo)
	setOppositeFifo(f *fifo.Fifo)
}
