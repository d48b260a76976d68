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
	"net"
	"os"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/opensand/rt-go/errors"
	"github.com/opensand/rt-go/rt/event"
	"github.com/opensand/rt-go/rt/fifo"
	"github.com/opensand/rt-go/rt/message"
	"github.com/opensand/rt-go/rt/rtrun"
)

// stopper is implemented by event kinds that own a background goroutine or
// OS resource (file/net-socket/tcp-listen/signal events); applyStaged calls
// it on removal so the resource is released promptly rather than waiting on
// garbage collection.
type stopper interface {
	Stop()
}

// ReportFunc is how a channel surfaces errors up to its owning block/manager,
// following the report_error(name, thread_id, critical, message) path.
type ReportFunc func(channelName string, critical bool, err error)

// DispatchFunc, when set, is notified once per dispatched event, after the
// handler has run; it is the hook rt/metrics uses to count events per kind
// without this package importing the metrics package.
type DispatchFunc func(ev event.Event)

// core implements the bookkeeping and event loop shared by every channel
// shape. Shapes embed core and add their own prev/next fifo topology.
type core struct {
	name    string
	dir     Direction
	handler Handler

	report   ReportFunc
	onDispatch DispatchFunc

	mu            sync.Mutex
	events        map[string]event.Event
	pendingAdd    []event.Event
	pendingRemove map[string]struct{}

	breakCh  chan struct{}
	loopDone chan struct{}

	prevMu    sync.Mutex
	prevFifos []*fifo.Fifo

	oppMu    sync.Mutex
	opposite *fifo.Fifo

	run rtrun.StartStop

	// enqueueMessage is provided by the concrete shape, since "downstream"
	// may be one fifo (Simple/Mux) or a key-routed set (Demux/MuxDemux).
	enqueueMessage func(ctx context.Context, typ uint8, data []byte) errors.Error
}

func newCore(name string, dir Direction, h Handler, report ReportFunc) *core {
	if h == nil {
		h = noopHandler{}
	}

	c := &core{
		name:          name,
		dir:           dir,
		handler:       h,
		report:        report,
		events:        make(map[string]event.Event),
		pendingRemove: make(map[string]struct{}),
		breakCh:       make(chan struct{}, 1),
	}

	c.run = rtrun.New(c.loopStart, c.loopStop)

	return c
}

type noopHandler struct{}

func (noopHandler) OnInit() bool                  { return true }
func (noopHandler) OnEvent(ev event.Event) bool { return true }

func (c *core) Name() string         { return c.name }
func (c *core) Direction() Direction { return c.dir }

// SetDispatchHook installs fn as the channel's dispatch observer, replacing
// any previously set hook. Intended for rt/metrics to count dispatched
// events per kind without this package importing the metrics package.
func (c *core) SetDispatchHook(fn DispatchFunc) {
	c.onDispatch = fn
}

// FifoStatus is a point-in-time snapshot of one fifo wired into a channel,
// for rt/monitor's debug endpoint.
type FifoStatus struct {
	Name string
	Len  int64
	Cap  int64
}

// Fifos reports the current depth/capacity of every upstream fifo feeding
// this channel, plus its same-block opposite fifo if wired. It does not
// include the channel's own downstream fifo(s), which are owned by the
// concrete shape.
func (c *core) Fifos() []FifoStatus {
	c.prevMu.Lock()
	prev := append([]*fifo.Fifo(nil), c.prevFifos...)
	c.prevMu.Unlock()

	c.oppMu.Lock()
	opp := c.opposite
	c.oppMu.Unlock()

	out := make([]FifoStatus, 0, len(prev)+1)
	for _, f := range prev {
		out = append(out, FifoStatus{Name: f.Name(), Len: f.Len(), Cap: f.Cap()})
	}
	if opp != nil {
		out = append(out, FifoStatus{Name: opp.Name(), Len: opp.Len(), Cap: opp.Cap()})
	}
	return out
}

func (c *core) wake() {
	select {
	case c.breakCh <- struct{}{}:
	default:
	}
}

func (c *core) stageAdd(ev event.Event) string {
	c.mu.Lock()
	c.pendingAdd = append(c.pendingAdd, ev)
	c.mu.Unlock()
	c.wake()
	return ev.Name()
}

func (c *core) AddTimerEvent(name string, duration time.Duration, autoRearm bool, start bool, priority uint8) (string, errors.Error) {
	if name == "" {
		return "", ErrorParamsEmpty.Error()
	}
	t := event.NewTimer(name, duration, autoRearm, start, priority)
	return c.stageAdd(t), nil
}

func (c *core) AddSignalEvent(name string, priority uint8, signals ...os.Signal) (string, errors.Error) {
	if name == "" {
		return "", ErrorParamsEmpty.Error()
	}
	s := event.NewSignal(name, priority, signals...)
	return c.stageAdd(s), nil
}

func (c *core) AddFileEvent(name, path string, priority uint8) (string, errors.Error) {
	if name == "" || path == "" {
		return "", ErrorParamsEmpty.Error()
	}
	f := event.NewFile(name, path, priority)
	return c.stageAdd(f), nil
}

func (c *core) AddNetSocketEvent(name string, conn net.Conn, maxSize int, priority uint8) (string, errors.Error) {
	if name == "" || conn == nil {
		return "", ErrorParamsEmpty.Error()
	}
	n := event.NewNetSocket(name, conn, maxSize, priority)
	return c.stageAdd(n), nil
}

func (c *core) AddTcpListenEvent(name string, ln net.Listener, priority uint8) (string, errors.Error) {
	if name == "" || ln == nil {
		return "", ErrorParamsEmpty.Error()
	}
	t := event.NewTcpListen(name, ln, priority)
	return c.stageAdd(t), nil
}

func (c *core) RemoveEvent(name string) errors.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.events[name]; !ok {
		found := false
		for i, ev := range c.pendingAdd {
			if ev.Name() == name {
				c.pendingAdd = append(c.pendingAdd[:i], c.pendingAdd[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return ErrorEventNotFound.Error()
		}
		return nil
	}

	c.pendingRemove[name] = struct{}{}
	c.wake()
	return nil
}

func (c *core) findTimer(name string) (*event.TimerEvent, errors.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev, ok := c.events[name]; ok {
		if t, ok := ev.(*event.TimerEvent); ok {
			return t, nil
		}
		return nil, ErrorEventWrongKind.Error()
	}

	for _, ev := range c.pendingAdd {
		if ev.Name() == name {
			if t, ok := ev.(*event.TimerEvent); ok {
				return t, nil
			}
			return nil, ErrorEventWrongKind.Error()
		}
	}

	return nil, ErrorEventNotFound.Error()
}

func (c *core) StartTimer(name string) errors.Error {
	t, err := c.findTimer(name)
	if err != nil {
		return err
	}
	t.Start()
	c.wake()
	return nil
}

func (c *core) RaiseTimer(name string) errors.Error {
	t, err := c.findTimer(name)
	if err != nil {
		return err
	}
	t.Raise()
	c.wake()
	return nil
}

func (c *core) SetTimerDuration(name string, d time.Duration) errors.Error {
	t, err := c.findTimer(name)
	if err != nil {
		return err
	}
	if e := t.SetDuration(d); e != nil {
		return e
	}
	c.wake()
	return nil
}

// EnqueueMessage implements Channel: it pushes onto this channel's
// downstream fifo (or keyed fifos, for Demux/MuxDemux — use the keyed
// variant there instead).
func (c *core) EnqueueMessage(ctx context.Context, typ uint8, data []byte) errors.Error {
	if c.enqueueMessage == nil {
		return ErrorNoNextFifo.Error()
	}
	return c.enqueueMessage(ctx, typ, data)
}

// ShareMessage implements Channel: it pushes onto this channel's own
// Block's opposite-direction channel, wired by Block.init via
// setOppositeFifo.
func (c *core) ShareMessage(ctx context.Context, typ uint8, data []byte) errors.Error {
	c.oppMu.Lock()
	opp := c.opposite
	c.oppMu.Unlock()

	if opp == nil {
		return ErrorNoOppositeFifo.Error()
	}
	return opp.Push(ctx, message.New(typ, data))
}

// setOppositeFifo wires the fifo ShareMessage pushes onto; called once by
// Block during init.
func (c *core) setOppositeFifo(f *fifo.Fifo) {
	c.oppMu.Lock()
	c.opposite = f
	c.oppMu.Unlock()
}

func (c *core) addPrevFifo(f *fifo.Fifo) int {
	c.prevMu.Lock()
	idx := len(c.prevFifos)
	c.prevFifos = append(c.prevFifos, f)
	c.prevMu.Unlock()

	name := f.Name()
	if name == "" {
		name = "prev"
	}
	ev := event.NewMessage(name, f, idx, event.PriorityMessage)
	c.stageAdd(ev)

	return idx
}

func (c *core) setPrevFifo(f *fifo.Fifo) {
	c.prevMu.Lock()
	c.prevFifos = []*fifo.Fifo{f}
	c.prevMu.Unlock()

	ev := event.NewMessage(f.Name(), f, 0, event.PriorityMessage)
	c.stageAdd(ev)
}

func (c *core) IsRunning() bool {
	return c.run.IsRunning()
}

func (c *core) Uptime() time.Duration {
	return c.run.Uptime()
}

func (c *core) Start(ctx context.Context) errors.Error {
	if !c.handler.OnInit() {
		return ErrorOnInitFailed.Error()
	}
	if err := c.run.Start(ctx); err != nil {
		return errors.New(uint16(ErrorLifecycle), err.Error())
	}
	return nil
}

func (c *core) Stop(ctx context.Context) errors.Error {
	if err := c.run.Stop(ctx); err != nil {
		return errors.New(uint16(ErrorLifecycle), err.Error())
	}
	return nil
}

func (c *core) loopStart(ctx context.Context) error {
	c.mu.Lock()
	done := make(chan struct{})
	c.loopDone = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.loop(ctx)
	}()
	return nil
}

// loopStop stages the removal of every live event, wakes the loop so it
// notices ctx is already cancelled (rtrun cancels the run context before
// invoking stop), and blocks until the loop goroutine has actually
// returned. Without this join, Stop could report success to a caller that
// then immediately tears down resources the loop goroutine is still
// reading from.
func (c *core) loopStop(ctx context.Context) error {
	c.mu.Lock()
	for name := range c.events {
		c.pendingRemove[name] = struct{}{}
	}
	done := c.loopDone
	c.mu.Unlock()
	c.wake()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return nil
}

// applyStaged merges the staged add/remove lists into the live event set and
// rebuilds the reflect.SelectCase list, the Go rendition of
// ChannelBase::updateEvents().
func (c *core) applyStaged() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ev := range c.pendingAdd {
		c.events[ev.Name()] = ev
	}
	c.pendingAdd = nil

	for name := range c.pendingRemove {
		if ev, ok := c.events[name]; ok {
			if s, ok := ev.(stopper); ok {
				s.Stop()
			}
		}
		delete(c.events, name)
	}
	c.pendingRemove = make(map[string]struct{})

	out := make([]event.Event, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev)
	}
	return out
}

// loop is the single-threaded event-dispatch goroutine every channel runs
// under a rtrun.StartStop. Each iteration: apply staged add/remove, block on
// reflect.Select across (ctx.Done, the select-break channel, every live
// event's channel), then drain every other currently-ready event
// non-blockingly, sort the batch by (priority, creation-time, registration
// sequence) and dispatch. applyStaged ranges over the live event map, so
// the batch arrives in randomized order; the sort below is what makes
// dispatch order deterministic, not the map iteration.
func (c *core) loop(ctx context.Context) {
	for {
		live := c.applyStaged()

		cases := make([]reflect.SelectCase, 0, len(live)+2)
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(ctx.Done()),
		})
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(c.breakCh),
		})
		for _, ev := range live {
			cases = append(cases, reflect.SelectCase{
				Dir:  reflect.SelectRecv,
				Chan: ev.Chan(),
			})
		}

		chosen, _, _ := reflect.Select(cases)

		if chosen == 0 {
			c.stopLive(live)
			return
		}
		if chosen == 1 {
			continue
		}

		ready := []event.Event{live[chosen-2]}

		for {
			drainCases := make([]reflect.SelectCase, 0, len(live))
			idx := make([]int, 0, len(live))
			for i, ev := range live {
				if i == chosen-2 {
					continue
				}
				skip := false
				for _, r := range ready {
					if r == ev {
						skip = true
						break
					}
				}
				if skip {
					continue
				}
				drainCases = append(drainCases, reflect.SelectCase{
					Dir:  reflect.SelectRecv,
					Chan: ev.Chan(),
				})
				idx = append(idx, i)
			}
			drainCases = append(drainCases, reflect.SelectCase{Dir: reflect.SelectDefault})

			got, _, _ := reflect.Select(drainCases)
			if got == len(drainCases)-1 {
				break
			}
			ready = append(ready, live[idx[got]])
		}

		sort.SliceStable(ready, func(i, j int) bool {
			return event.Less(ready[i], ready[j])
		})

		for _, ev := range ready {
			if !ev.Handle() {
				if ev.Kind() == event.KindSignal {
					c.reportErr(true, ErrorEventWrongKind.Error())
					return
				}
				c.reportErr(false, ErrorHandlerRejected.Error())
				continue
			}

			ev.SetTriggerTime()

			if !c.handler.OnEvent(ev) {
				c.reportErr(false, ErrorHandlerRejected.Error())
			}

			if c.onDispatch != nil {
				c.onDispatch(ev)
			}
		}
	}
}

// stopLive releases any resource-owning events still registered when the
// loop exits via context cancellation, mirroring the cleanup applyStaged
// performs for an explicit RemoveEvent.
func (c *core) stopLive(live []event.Event) {
	for _, ev := range live {
		if s, ok := ev.(stopper); ok {
			s.Stop()
		}
	}
}

func (c *core) reportErr(critical bool, err errors.Error) {
	if c.report != nil {
		c.report(c.name, critical, err)
	}
}
