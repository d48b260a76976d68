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

// simpleChannel is the 1:1 shape: exactly one upstream fifo, one downstream
// fifo.
type simpleChannel struct {
	*core

	mu   sync.Mutex
	next *fifo.Fifo
}

// NewSimple builds a 1:1 channel.
func NewSimple(name string, dir Direction, h Handler, report ReportFunc) Channel {
	s := &simpleChannel{core: newCore(name, dir, h, report)}
	s.enqueueMessage = s.enqueue
	return s
}

// SetNext wires the single downstream fifo this channel enqueues messages onto.
func (s *simpleChannel) SetNext(f *fifo.Fifo) {
	s.mu.Lock()
	s.next = f
	s.mu.Unlock()
}

// SetPrev wires the single upstream fifo this channel receives from.
func (s *simpleChannel) SetPrev(f *fifo.Fifo) {
	s.setPrevFifo(f)
}

func (s *simpleChannel) enqueue(ctx context.Context, typ uint8, data []byte) errors.Error {
	s.mu.Lock()
	next := s.next
	s.mu.Unlock()

	if next == nil {
		return ErrorNoNextFifo.Error()
	}
	return next.Push(ctx, message.New(typ, data))
}
