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
	"net"
	"reflect"
	"sync"
)

// NetSocketEvent reads datagrams (or stream chunks) off a net.Conn on a
// background goroutine, surfacing each read as a ready tick capped at
// MaxMessageSize bytes, the same ceiling the original NetSocketEvent used.
type NetSocketEvent struct {
	base

	conn    net.Conn
	maxSize int

	mu     sync.Mutex
	ready  chan []byte
	stop   chan struct{}
	last   []byte
	closed bool
}

// NewNetSocket starts reading conn in the background. maxSize caps the read
// buffer; a non-positive value defaults to MaxMessageSize.
func NewNetSocket(name string, conn net.Conn, maxSize int, priority uint8) *NetSocketEvent {
	if maxSize <= 0 {
		maxSize = MaxMessageSize
	}

	n := &NetSocketEvent{
		base:    newBase(KindNetSocket, name, priority),
		conn:    conn,
		maxSize: maxSize,
		ready:   make(chan []byte, 16),
		stop:    make(chan struct{}),
	}

	go n.readLoop()

	return n
}

func (n *NetSocketEvent) readLoop() {
	buf := make([]byte, n.maxSize)

	for {
		sz, err := n.conn.Read(buf)
		if sz > 0 {
			chunk := make([]byte, sz)
			copy(chunk, buf[:sz])
			select {
			case n.ready <- chunk:
			case <-n.stop:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Stop closes the underlying connection and terminates the read goroutine.
func (n *NetSocketEvent) Stop() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.stop)
	_ = n.conn.Close()
}

// Chan implements Event.
func (n *NetSocketEvent) Chan() reflect.Value {
	return reflect.ValueOf(n.ready)
}

// Data returns the most recently handled chunk.
func (n *NetSocketEvent) Data() []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// Handle implements Event.
func (n *NetSocketEvent) Handle() bool {
	select {
	case chunk := <-n.ready:
		n.mu.Lock()
		n.last = chunk
		n.mu.Unlock()
		return true
	default:
		return true
	}
}
