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

package channel

import (
	"context"
	"sync"

	"github.com/opensand/rt-go/errors"
	"github.com/opensand/rt-go/rt/fifo"
	"github.com/opensand/rt-go/rt/message"
)

// muxChannel is the N:1 shape: many upstream fifos merged, one downstream
// fifo. MessageEvent.SourceKey distinguishes which upstream fifo produced a
// given message, the supplemental feature mined from RtChannelMux.
type muxChannel struct {
	*core

	mu   sync.Mutex
	next *fifo.Fifo
}

// NewMux builds an N:1 channel.
func NewMux(name string, dir Direction, h Handler, report ReportFunc) Channel {
	m := &muxChannel{core: newCore(name, dir, h, report)}
	m.enqueueMessage = m.enqueue
	return m
}

// SetNext wires the single downstream fifo this channel enqueues messages onto.
func (m *muxChannel) SetNext(f *fifo.Fifo) {
	m.mu.Lock()
	m.next = f
	m.mu.Unlock()
}

// AddPrev registers another upstream fifo, returning its source key.
func (m *muxChannel) AddPrev(f *fifo.Fifo) int {
	return m.addPrevFifo(f)
}

func (m *muxChannel) enqueue(ctx context.Context, typ uint8, data []byte) errors.Error {
	m.mu.Lock()
	next := m.next
	m.mu.Unlock()

	if next == nil {
		return ErrorNoNextFifo.Error()
	}
	return next.Push(ctx, message.New(typ, data))
}
