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

package event

import (
	"reflect"
	"sync"

	"github.com/opensand/rt-go/rt/fifo"
	"github.com/opensand/rt-go/rt/message"
)

// MessageEvent fires whenever its backing Fifo has a message ready. SourceKey
// disambiguates which previous Fifo produced it, for channels fed by more
// than one upstream connection (Mux, MuxDemux).
type MessageEvent struct {
	base

	f *fifo.Fifo

	mu        sync.Mutex
	sourceKey int
	last      *message.Message
}

// NewMessage builds a MessageEvent backed by f. sourceKey identifies which
// previous-hop Fifo this is, for Mux/MuxDemux disambiguation; simple
// one-to-one connections pass 0.
func NewMessage(name string, f *fifo.Fifo, sourceKey int, priority uint8) *MessageEvent {
	return &MessageEvent{
		base:      newBase(KindMessage, name, priority),
		f:         f,
		sourceKey: sourceKey,
	}
}

// SourceKey reports which previous-hop Fifo this event is bound to.
func (m *MessageEvent) SourceKey() int {
	return m.sourceKey
}

// Message returns the message consumed by the most recent Handle call.
func (m *MessageEvent) Message() *message.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Fifo exposes the backing queue, e.g. for monitor/status reporting.
func (m *MessageEvent) Fifo() *fifo.Fifo {
	return m.f
}

// Chan implements Event.
func (m *MessageEvent) Chan() reflect.Value {
	return reflect.ValueOf(m.f.Chan())
}

// Handle implements Event: it pops the ready message off the Fifo.
func (m *MessageEvent) Handle() bool {
	msg, err := m.f.Recv()
	if err != nil {
		return false
	}

	m.mu.Lock()
	m.last = msg
	m.mu.Unlock()

	return true
}
