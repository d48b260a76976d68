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

// Demux is the 1:N shape: one upstream fifo, many downstream fifos routed by
// a caller-chosen key K. Go generics are the natural substitute for the
// original CRTP-templated ChannelDemux<Key> hierarchy.
type Demux[K comparable] struct {
	*core

	mu   sync.Mutex
	next map[K]*fifo.Fifo
}

// NewDemux builds a 1:N channel keyed by K.
func NewDemux[K comparable](name string, dir Direction, h Handler, report ReportFunc) *Demux[K] {
	d := &Demux[K]{
		core: newCore(name, dir, h, report),
		next: make(map[K]*fifo.Fifo),
	}
	d.enqueueMessage = func(ctx context.Context, typ uint8, data []byte) errors.Error {
		return ErrorShapeMismatch.Error()
	}
	return d
}

// SetPrev wires the single upstream fifo this channel receives from.
func (d *Demux[K]) SetPrev(f *fifo.Fifo) {
	d.setPrevFifo(f)
}

// AddNext registers the downstream fifo reached when EnqueueMessageKeyed is
// called with key.
func (d *Demux[K]) AddNext(key K, f *fifo.Fifo) {
	d.mu.Lock()
	d.next[key] = f
	d.mu.Unlock()
}

// EnqueueMessageKeyed routes data/typ to the downstream fifo registered under
// key, failing with ErrorNoRoute if key is unmapped.
func (d *Demux[K]) EnqueueMessageKeyed(ctx context.Context, key K, typ uint8, data []byte) errors.Error {
	d.mu.Lock()
	f, ok := d.next[key]
	d.mu.Unlock()

	if !ok {
		return ErrorNoRoute.Error()
	}
	return f.Push(ctx, message.New(typ, data))
}
