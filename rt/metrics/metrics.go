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

// Package metrics exposes optional Prometheus instrumentation for the
// runtime: FIFO depth, push-wait latency, dispatched-event counts and
// block lifecycle transitions. A nil *Recorder, or the empty Recorder that
// Disabled() returns, makes every call a no-op, so wiring it through
// Channel/Block/Manager never requires a nil check at the call site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the collectors registered for one runtime instance.
type Recorder struct {
	reg *prometheus.Registry

	fifoDepth        *prometheus.GaugeVec
	pushWait         *prometheus.HistogramVec
	fifoOverCapacity *prometheus.CounterVec
	events           *prometheus.CounterVec
	timerFires       *prometheus.CounterVec
	blockState       *prometheus.GaugeVec
}

// Disabled returns a Recorder whose every method is a no-op: safe to plug
// in wherever a Recorder is required but no registry was supplied.
func Disabled() *Recorder {
	return &Recorder{}
}

// New builds a Recorder and registers its collectors on reg. If reg is nil,
// the returned Recorder behaves like Disabled().
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		return Disabled()
	}

	r := &Recorder{
		reg: reg,
		fifoDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "opensand_rt",
			Name:      "fifo_depth",
			Help:      "Current number of messages queued in a fifo.",
		}, []string{"fifo"}),
		pushWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opensand_rt",
			Name:      "fifo_push_wait_seconds",
			Help:      "Time a producer spent blocked acquiring a fifo's back-pressure permit.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"fifo"}),
		fifoOverCapacity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opensand_rt",
			Name:      "fifo_over_capacity_total",
			Help:      "Number of times a fifo's length was observed past its configured maxDepth.",
		}, []string{"fifo"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opensand_rt",
			Name:      "events_dispatched_total",
			Help:      "Number of events dispatched by a channel's event loop, by kind.",
		}, []string{"channel", "kind"}),
		timerFires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opensand_rt",
			Name:      "timer_fires_total",
			Help:      "Number of times a timer event fired.",
		}, []string{"channel", "timer"}),
		blockState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "opensand_rt",
			Name:      "block_running",
			Help:      "1 if the named block is running, 0 otherwise.",
		}, []string{"block"}),
	}

	reg.MustRegister(r.fifoDepth, r.pushWait, r.fifoOverCapacity, r.events, r.timerFires, r.blockState)
	return r
}

// SetFifoDepth records a fifo's current queue length.
func (r *Recorder) SetFifoDepth(fifoName string, depth int64) {
	if r == nil || r.fifoDepth == nil {
		return
	}
	r.fifoDepth.WithLabelValues(fifoName).Set(float64(depth))
}

// ObservePushWait records how long a producer blocked acquiring a fifo's
// back-pressure permit.
func (r *Recorder) ObservePushWait(fifoName string, d time.Duration) {
	if r == nil || r.pushWait == nil {
		return
	}
	r.pushWait.WithLabelValues(fifoName).Observe(d.Seconds())
}

// IncOverCapacity records one observation of a fifo's length exceeding its
// configured maxDepth.
func (r *Recorder) IncOverCapacity(fifoName string) {
	if r == nil || r.fifoOverCapacity == nil {
		return
	}
	r.fifoOverCapacity.WithLabelValues(fifoName).Inc()
}

// IncEvent records one dispatched event of the given kind on a channel.
func (r *Recorder) IncEvent(channelName, kind string) {
	if r == nil || r.events == nil {
		return
	}
	r.events.WithLabelValues(channelName, kind).Inc()
}

// IncTimerFire records one firing of a named timer on a channel.
func (r *Recorder) IncTimerFire(channelName, timerName string) {
	if r == nil || r.timerFires == nil {
		return
	}
	r.timerFires.WithLabelValues(channelName, timerName).Inc()
}

// SetBlockRunning records a block's current running state.
func (r *Recorder) SetBlockRunning(blockName string, running bool) {
	if r == nil || r.blockState == nil {
		return
	}
	v := 0.0
	if running {
		v = 1.0
	}
	r.blockState.WithLabelValues(blockName).Set(v)
}
