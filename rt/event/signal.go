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
	"os"
	"os/signal"
	"reflect"
	"sync"
)

// SignalEvent wraps os/signal.Notify as a pollable source. A failed read
// (the channel closing unexpectedly) is fatal, matching the original
// runtime's "select() failure on the signal fd is critical" stance.
type SignalEvent struct {
	base

	mu      sync.Mutex
	signals []os.Signal
	ch      chan os.Signal
	last    os.Signal
	closed  bool
}

// NewSignal registers interest in the given signals. The caller is
// responsible for eventually calling Stop to release the os/signal
// registration.
func NewSignal(name string, priority uint8, signals ...os.Signal) *SignalEvent {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	return &SignalEvent{
		base:    newBase(KindSignal, name, priority),
		signals: signals,
		ch:      ch,
	}
}

// Stop unregisters the signal notification and marks the event inert.
func (s *SignalEvent) Stop() {
	signal.Stop(s.ch)
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Last returns the most recently received signal, or nil if none yet.
func (s *SignalEvent) Last() os.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Chan implements Event.
func (s *SignalEvent) Chan() reflect.Value {
	return reflect.ValueOf(s.ch)
}

// Handle implements Event. It returns false, the fatal signal-read failure,
// only if the notification channel was closed out from under it — normal
// operation always returns true.
func (s *SignalEvent) Handle() bool {
	sig, ok := <-s.ch
	if !ok {
		return false
	}

	s.mu.Lock()
	s.last = sig
	s.mu.Unlock()

	return true
}
