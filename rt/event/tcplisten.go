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

// TcpListenEvent accepts inbound connections on a net.Listener in the
// background, surfacing each accepted connection as a ready tick.
type TcpListenEvent struct {
	base

	ln net.Listener

	mu     sync.Mutex
	ready  chan net.Conn
	stop   chan struct{}
	last   net.Conn
	closed bool
}

// NewTcpListen starts accepting connections on ln in the background.
func NewTcpListen(name string, ln net.Listener, priority uint8) *TcpListenEvent {
	t := &TcpListenEvent{
		base:  newBase(KindTcpListen, name, priority),
		ln:    ln,
		ready: make(chan net.Conn, 16),
		stop:  make(chan struct{}),
	}

	go t.acceptLoop()

	return t
}

func (t *TcpListenEvent) acceptLoop() {
	for {
		conn, err := t.ln.Accept()
		if err != nil {
			return
		}

		select {
		case t.ready <- conn:
		case <-t.stop:
			_ = conn.Close()
			return
		}
	}
}

// Stop closes the listener and terminates the accept goroutine.
func (t *TcpListenEvent) Stop() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	close(t.stop)
	_ = t.ln.Close()
}

// Chan implements Event.
func (t *TcpListenEvent) Chan() reflect.Value {
	return reflect.ValueOf(t.ready)
}

// Accepted returns the most recently accepted connection.
func (t *TcpListenEvent) Accepted() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Handle implements Event.
func (t *TcpListenEvent) Handle() bool {
	select {
	case conn := <-t.ready:
		t.mu.Lock()
		t.last = conn
		t.mu.Unlock()
		return true
	default:
		return true
	}
}
