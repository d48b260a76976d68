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

package metrics

import (
	"time"

	"github.com/opensand/rt-go/rt/block"
	"github.com/opensand/rt-go/rt/channel"
	"github.com/opensand/rt-go/rt/event"
	"github.com/opensand/rt-go/rt/fifo"
)

// AttachBlock installs r's block-running gauge as b's run-state hook.
func AttachBlock(b *block.Block, r *Recorder) {
	b.SetRunStateHook(func(running bool) {
		r.SetBlockRunning(b.Name(), running)
	})
}

// AttachFifo installs r's depth gauge and push-wait histogram as f's push
// hook.
func AttachFifo(f *fifo.Fifo, r *Recorder) {
	f.SetPushHook(func(depth int64, waited time.Duration) {
		r.SetFifoDepth(f.Name(), depth)
		r.ObservePushWait(f.Name(), waited)
	})
	f.SetOverCapacityHook(func(depth, maxDepth int64) {
		r.IncOverCapacity(f.Name())
	})
}

// Attach installs r's per-event counter as ch's dispatch hook, if ch
// supports it. A nil or Disabled r still attaches a hook, which is a cheap
// no-op per dispatched event.
func Attach(ch channel.Channel, r *Recorder) {
	h, ok := ch.(channel.DispatchHooker)
	if !ok {
		return
	}

	h.SetDispatchHook(func(ev event.Event) {
		r.IncEvent(ch.Name(), ev.Kind().String())
	})
}
