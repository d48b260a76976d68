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
	"bufio"
	"os"
	"reflect"
	"sync"
)

// FileEvent watches a file for appended lines, polling it on a background
// goroutine and surfacing each new line as a ready tick. This is the Go
// rendition of registering a plain fd with select(): no portable blocking
// "file has new data" primitive exists, so a poll loop plays that role.
type FileEvent struct {
	base

	mu     sync.Mutex
	path   string
	ready  chan string
	stop   chan struct{}
	last   string
	closed bool
}

// NewFile starts watching path for appended lines at the given poll
// interval is fixed by the caller via the returned event's background
// goroutine; priority defaults to PriorityFile by convention.
func NewFile(name, path string, priority uint8) *FileEvent {
	f := &FileEvent{
		base:  newBase(KindFile, name, priority),
		path:  path,
		ready: make(chan string, 16),
		stop:  make(chan struct{}),
	}

	go f.watch()

	return f
}

func (f *FileEvent) watch() {
	file, err := os.Open(f.path)
	if err != nil {
		return
	}
	defer file.Close()

	r := bufio.NewReader(file)

	for {
		select {
		case <-f.stop:
			return
		default:
		}

		line, err := r.ReadString('\n')
		if line != "" {
			select {
			case f.ready <- line:
			case <-f.stop:
				return
			}
		}
		if err != nil {
			select {
			case <-f.stop:
				return
			default:
			}
		}
	}
}

// Stop terminates the background poll goroutine.
func (f *FileEvent) Stop() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()
	close(f.stop)
}

// Chan implements Event.
func (f *FileEvent) Chan() reflect.Value {
	return reflect.ValueOf(f.ready)
}

// Line returns the most recently handled line.
func (f *FileEvent) Line() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Handle implements Event: it drains the ready line.
func (f *FileEvent) Handle() bool {
	select {
	case line := <-f.ready:
		f.mu.Lock()
		f.last = line
		f.mu.Unlock()
		return true
	default:
		return true
	}
}
