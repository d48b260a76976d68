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

// Package manager registers a program's blocks, wires their channels
// together into a pipeline, and drives the whole group's init/start/stop
// lifecycle plus signal-triggered shutdown and error reporting as a unit.
package manager

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/opensand/rt-go/errors"
	"github.com/opensand/rt-go/logger"
	loglvl "github.com/opensand/rt-go/logger/level"
	"github.com/opensand/rt-go/rt/block"
	"github.com/opensand/rt-go/rt/channel"
	"github.com/opensand/rt-go/rt/fifo"
)

// DefaultFifoDepth is a fifo depth exported for callers of the Connect*
// helpers. Those helpers always take an explicit depth and do not read this
// constant; a non-positive depth passed to them yields fifo.DefaultMaxDepth.
const DefaultFifoDepth = 5

// Manager registers blocks, connects their channels, and runs them as one
// group. The zero value is not usable; build one with New.
type Manager struct {
	log logger.Logger

	rootCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	blocks map[string]*block.Block
	order  []string

	stopMu   sync.Mutex
	stopped  bool
	statusMu sync.Mutex
	failed   bool
}

// New builds a Manager deriving its own cancellable context from ctx. If log
// is nil, a default logger.New(ctx) is used.
func New(ctx context.Context, log logger.Logger) *Manager {
	if log == nil {
		log = logger.New(ctx)
	}

	root, cancel := context.WithCancel(ctx)

	return &Manager{
		log:     log,
		rootCtx: root,
		cancel:  cancel,
		blocks:  make(map[string]*block.Block),
	}
}

// RegisterBlock adds b to the manager's registry under its own Name. Blocks
// must be registered before Init.
func (m *Manager) RegisterBlock(b *block.Block) errors.Error {
	if b == nil {
		return ErrorParamsEmpty.Error()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.blocks[b.Name()]; exists {
		return ErrorDuplicateBlock.Error()
	}

	m.blocks[b.Name()] = b
	m.order = append(m.order, b.Name())
	return nil
}

// Block returns the registered block with the given name, if any.
func (m *Manager) Block(name string) (*block.Block, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blocks[name]
	return b, ok
}

// Blocks returns every registered block, in registration order. Used by
// rt/monitor's debug endpoint.
func (m *Manager) Blocks() []*block.Block {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*block.Block, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.blocks[name])
	}
	return out
}

// ConnectChannels wires a single fifo of depth from sender to receiver,
// picking the right wiring call from each side's shape: sender must be a
// NextSetter (Simple, Mux), receiver a PrevSetter (Simple, Demux[K]) or
// PrevAdder (Mux, MuxDemux[K]). Use ConnectKeyed for a Demux/MuxDemux
// sender.
func ConnectChannels(sender, receiver channel.Channel, depth int64) errors.Error {
	ns, ok := sender.(channel.NextSetter)
	if !ok {
		return ErrorShapeMismatch.Error()
	}

	f := fifo.New(sender.Name()+">"+receiver.Name(), depth)
	ns.SetNext(f)
	return wirePrev(receiver, f)
}

// ConnectKeyed wires a single fifo of depth from a keyed-fan-out sender
// (Demux[K], MuxDemux[K]) to receiver under key, the generic counterpart of
// ConnectChannels for shapes that route by key rather than unconditionally.
func ConnectKeyed[K comparable](sender channel.NextAdder[K], receiver channel.Channel, key K, depth int64) errors.Error {
	f := fifo.New(sender.Name()+">"+receiver.Name(), depth)
	sender.AddNext(key, f)
	return wirePrev(receiver, f)
}

func wirePrev(receiver channel.Channel, f *fifo.Fifo) errors.Error {
	switch r := receiver.(type) {
	case channel.PrevSetter:
		r.SetPrev(f)
	case channel.PrevAdder:
		r.AddPrev(f)
	default:
		return ErrorShapeMismatch.Error()
	}
	return nil
}

// ConnectBlocks wires upper and lower as adjacent pipeline stages: upper's
// downward channel feeds lower's downward channel, and lower's upward
// channel feeds upper's upward channel. Both channels on both sides must be
// non-keyed shapes (Simple, Mux); use ConnectBlocksKeyed when either
// direction fans out by key.
func (m *Manager) ConnectBlocks(upper, lower *block.Block, depth int64) errors.Error {
	if upper == nil || lower == nil {
		return ErrorParamsEmpty.Error()
	}
	if err := ConnectChannels(upper.Downward(), lower.Downward(), depth); err != nil {
		return err
	}
	return ConnectChannels(lower.Upward(), upper.Upward(), depth)
}

// ConnectBlocksKeyed wires upper and lower the way ConnectBlocks does, but
// through a Demux[K]/MuxDemux[K] sender on each side, routing the downward
// leg under downKey and the upward leg under upKey.
func ConnectBlocksKeyed[K comparable](upper, lower *block.Block, downKey, upKey K, depth int64) errors.Error {
	if upper == nil || lower == nil {
		return ErrorParamsEmpty.Error()
	}

	downSender, ok := upper.Downward().(channel.NextAdder[K])
	if !ok {
		return ErrorShapeMismatch.Error()
	}
	if err := ConnectKeyed[K](downSender, lower.Downward(), downKey, depth); err != nil {
		return err
	}

	upSender, ok := lower.Upward().(channel.NextAdder[K])
	if !ok {
		return ErrorShapeMismatch.Error()
	}
	return ConnectKeyed[K](upSender, upper.Upward(), upKey, depth)
}

// Init initializes every registered block, in registration order, stopping
// at the first failure.
func (m *Manager) Init() errors.Error {
	m.mu.Lock()
	order := append([]string(nil), m.order...)
	m.mu.Unlock()

	for _, name := range order {
		b := m.blocks[name]
		if err := b.Init(m.rootCtx); err != nil {
			m.ReportError(name, "init", true, err)
			return ErrorInitFailed.Error(err)
		}
	}
	return nil
}

// Start launches every registered block's channels, in registration order,
// stopping at the first failure. Blocks already started are left running;
// call Stop to unwind a partial Start.
func (m *Manager) Start() errors.Error {
	m.mu.Lock()
	order := append([]string(nil), m.order...)
	m.mu.Unlock()

	for _, name := range order {
		b := m.blocks[name]
		if err := b.Start(m.rootCtx); err != nil {
			m.ReportError(name, "start", true, err)
			return ErrorStartFailed.Error(err)
		}
	}
	return nil
}

// Wait blocks until the manager's context is cancelled or a termination
// signal (SIGINT, SIGQUIT, SIGTERM) is received, then calls Stop.
func (m *Manager) Wait() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-m.rootCtx.Done():
	}

	m.Stop()
}

// Stop stops every registered block, in reverse registration order, and
// cancels the manager's context. Idempotent: a second call is a no-op.
func (m *Manager) Stop() errors.Error {
	m.stopMu.Lock()
	if m.stopped {
		m.stopMu.Unlock()
		return nil
	}
	m.stopped = true
	m.stopMu.Unlock()

	m.mu.Lock()
	order := append([]string(nil), m.order...)
	m.mu.Unlock()

	var failed bool
	for i := len(order) - 1; i >= 0; i-- {
		b := m.blocks[order[i]]
		if err := b.Stop(m.rootCtx); err != nil {
			failed = true
			m.ReportError(order[i], "stop", false, err)
		}
	}

	m.cancel()

	if failed {
		return ErrorStopFailed.Error()
	}
	return nil
}

// Failed reports whether any critical error has been reported since
// construction. Start does not clear it.
func (m *Manager) Failed() bool {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.failed
}

// Status is the manager's overall run outcome, reported by RunStatus.
type Status uint8

const (
	StatusOK Status = iota
	StatusFailed
)

// RunStatus reports StatusFailed if any critical error was reported since
// construction, StatusOK otherwise.
func (m *Manager) RunStatus() Status {
	if m.Failed() {
		return StatusFailed
	}
	return StatusOK
}

// ReportError logs an error attributed to a named source and thread (the Go
// rendition identifies the "thread" as the channel direction or lifecycle
// phase the error came from, since a Channel's event loop is itself a
// single goroutine). Critical errors are logged at error level, mark the
// manager failed, and trigger Stop; non-critical errors are logged at warn
// level and otherwise ignored.
func (m *Manager) ReportError(source, threadID string, critical bool, err error) {
	lvl := loglvl.WarnLevel
	if critical {
		lvl = loglvl.ErrorLevel
	}

	m.log.Entry(lvl, "block reported an error").
		FieldAdd("source", source).
		FieldAdd("thread", threadID).
		FieldAdd("critical", critical).
		ErrorAdd(true, err).
		Log()

	if !critical {
		return
	}

	m.statusMu.Lock()
	m.failed = true
	m.statusMu.Unlock()

	go m.Stop()
}
