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

// MuxDemux is the N:N shape: many upstream fifos merged (as in Mux), many
// downstream fifos routed by key K (as in Demux[K]). It is the union of the
// two, not a distinct mechanism, matching how the original RtChannelMuxDemux
// is simply RtChannelMux and RtChannelDemux<Key> combined.
type MuxDemux[K comparable] struct {
	*core

	mu   sync.Mutex
	next map[K]*fifo.Fifo
}

// NewMuxDemux builds an N:N channel keyed by K.
func NewMuxDemux[K comparable](name string, dir Direction, h Handler, report ReportFunc) *MuxDemux[K] {
	m := &MuxDemux[K]{
		core: newCore(name, dir, h, report),
		next: make(map[K]*fifo.Fifo),
	}
	m.enqueueMessage = func(ctx context.Context, typ uint8, data []byte) errors.Error {
		return ErrorShapeMismatch.Error()
	}
	return m
}

// AddPrev registers another upstream fifo, returning its source key.
func (m *MuxDemux[K]) AddPrev(f *fifo.Fifo) int {
	return m.addPrevFifo(f)
}

// AddNext registers the downstream fifo reached when EnqueueMessageKeyed is
// called with key.
func (m *MuxDemux[K]) AddNext(key K, f *fifo.Fifo) {
	m.mu.Lock()
	m.next[key] = f
	m.mu.Unlock()
}

// EnqueueMessageKeyed routes data/typ to the downstream fifo registered under
// key, failing with ErrorNoRoute if key is unmapped.
func (m *MuxDemux[K]) EnqueueMessageKeyed(ctx context.Context, key K, typ uint8, data []byte) errors.Error {
	m.mu.Lock()
	f, ok := m.next[key]
	m.mu.Unlock()

	if !ok {
		return ErrorNoRoute.Error()
	}
	return f.Push(ctx, message.New(typ, data))
}
