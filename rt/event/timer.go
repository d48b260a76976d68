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
	"time"

	"github.com/opensand/rt-go/errors"
)

// TimerEvent fires repeatedly (auto-rearm) or once, after a configured
// duration. Raise triggers it immediately without disturbing the configured
// period, matching the original TimerEvent::raise behavior of resetting to
// the minimal possible delay rather than exposing a manual-fire primitive.
type TimerEvent struct {
	base

	mu        sync.Mutex
	duration  time.Duration
	autoRearm bool
	enabled   bool
	timer     *time.Timer
}

// NewTimer builds a TimerEvent. If start is true the timer is armed
// immediately; otherwise Start must be called later.
func NewTimer(name string, duration time.Duration, autoRearm bool, start bool, priority uint8) *TimerEvent {
	t := &TimerEvent{
		base:      newBase(KindTimer, name, priority),
		duration:  duration,
		autoRearm: autoRearm,
	}

	t.timer = time.NewTimer(duration)
	if !t.timer.Stop() {
		<-t.timer.C
	}

	if start {
		t.Start()
	}

	return t
}

// Start (re)arms the timer for its configured duration.
func (t *TimerEvent) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.timer.Stop() {
		select {
		case <-t.timer.C:
		default:
		}
	}

	t.timer.Reset(t.duration)
	t.enabled = true
}

// Raise triggers the timer immediately, as if its configured duration had
// just elapsed, without altering that configured duration.
func (t *TimerEvent) Raise() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.timer.Stop() {
		select {
		case <-t.timer.C:
		default:
		}
	}

	t.timer.Reset(time.Nanosecond)
	t.enabled = true
}

// Disable stops the timer; Handle will not fire again until Start or Raise.
func (t *TimerEvent) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.timer.Stop() {
		select {
		case <-t.timer.C:
		default:
		}
	}
	t.enabled = false
}

// IsEnabled reports whether the timer is currently armed.
func (t *TimerEvent) IsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Duration returns the configured period.
func (t *TimerEvent) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// SetDuration changes the configured period. If the timer is currently
// enabled it is rearmed with the new duration.
func (t *TimerEvent) SetDuration(d time.Duration) errors.Error {
	if d <= 0 {
		return ErrorTimerBadDuration.Error()
	}

	t.mu.Lock()
	t.duration = d
	enabled := t.enabled
	t.mu.Unlock()

	if enabled {
		t.Start()
	}

	return nil
}

// Chan implements Event.
func (t *TimerEvent) Chan() reflect.Value {
	return reflect.ValueOf(t.timer.C)
}

// Handle implements Event: it drains the fired tick and, for an auto-rearm
// timer, immediately rearms it for the next period.
func (t *TimerEvent) Handle() bool {
	select {
	case <-t.timer.C:
	default:
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.enabled {
		return true
	}

	if t.autoRearm {
		t.timer.Reset(t.duration)
	} else {
		t.enabled = false
	}

	return true
}
