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

// Package block pairs a block's upward and downward channels, owns the
// internal cross-fifo that lets one tell the other about a message via
// ShareMessage, and drives their init/start/stop lifecycle as a unit.
package block

import (
	"context"
	"sync"

	"github.com/opensand/rt-go/errors"
	"github.com/opensand/rt-go/ioutils/mapCloser"
	"github.com/opensand/rt-go/rt/channel"
)

// DefaultOppositeFifoDepth is the capacity of the internal cross-channel
// fifo pair a Block wires between its two channels at Init.
const DefaultOppositeFifoDepth = 3

// Handler is the optional block-level hook run once during Init, after the
// cross-channel fifo pair is wired but before either channel's own OnInit.
type Handler interface {
	OnInit() bool
}

type noopHandler struct{}

func (noopHandler) OnInit() bool { return true }

// Block owns one upward and one downward channel.Channel plus the specific
// payload the embedding program attached at construction.
type Block struct {
	name     string
	specific interface{}
	handler  Handler

	upward   channel.Channel
	downward channel.Channel

	closer mapCloser.Closer

	mu          sync.Mutex
	initialized bool

	onRunState func(running bool)
}

// SetRunStateHook installs fn to be called with the block's running state
// whenever Start or Stop changes it. Intended for rt/metrics to track block
// lifecycle without this package importing the metrics package.
func (b *Block) SetRunStateHook(fn func(running bool)) {
	b.onRunState = fn
}

// New pairs upward and downward under name. specific is an opaque payload
// forwarded to both channels' constructors by the caller and retrievable via
// Specific; it plays the role of the original runtime's block-specific
// construction argument. h may be nil.
func New(name string, specific interface{}, upward, downward channel.Channel, h Handler) *Block {
	if h == nil {
		h = noopHandler{}
	}
	return &Block{
		name:     name,
		specific: specific,
		handler:  h,
		upward:   upward,
		downward: downward,
	}
}

// Name returns the block's identifying name.
func (b *Block) Name() string {
	return b.name
}

// Specific returns the opaque payload passed to New.
func (b *Block) Specific() interface{} {
	return b.specific
}

// Upward returns the block's upward channel.
func (b *Block) Upward() channel.Channel {
	return b.upward
}

// Downward returns the block's downward channel.
func (b *Block) Downward() channel.Channel {
	return b.downward
}

// Initialized reports whether Init has completed successfully.
func (b *Block) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

// Init wires the internal cross-channel fifo pair and runs the block's own
// on_init hook; each channel's own OnInit runs later, from Start, immediately
// before its event loop launches. Init is idempotent: calling it again once
// initialized is a no-op.
func (b *Block) Init(ctx context.Context) errors.Error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	b.closer = mapCloser.New(ctx)
	toDown, toUp := channel.BindOpposite(b.upward, b.downward, DefaultOppositeFifoDepth)
	b.closer.Add(toDown, toUp)

	if !b.handler.OnInit() {
		return ErrorOnInitFailed.Error()
	}

	b.initialized = true
	return nil
}

// Start launches the upward and downward channel event loops. If the
// downward channel fails to start, the upward channel is stopped again so no
// half-started Block is left running.
func (b *Block) Start(ctx context.Context) errors.Error {
	if !b.Initialized() {
		return ErrorNotInitialized.Error()
	}

	if err := b.upward.Start(ctx); err != nil {
		return ErrorStartUpwardFailed.Error(err)
	}

	if err := b.downward.Start(ctx); err != nil {
		_ = b.upward.Stop(ctx)
		return ErrorStartDownwardFailed.Error(err)
	}

	if b.onRunState != nil {
		b.onRunState(true)
	}
	return nil
}

// Stop joins both channel threads. Idempotent: each channel's own Stop is
// idempotent, so calling Stop twice on a Block has the same effect as once.
func (b *Block) Stop(ctx context.Context) errors.Error {
	errU := b.upward.Stop(ctx)
	errD := b.downward.Stop(ctx)

	if b.closer != nil {
		_ = b.closer.Close()
	}

	if b.onRunState != nil {
		b.onRunState(false)
	}

	if errU != nil || errD != nil {
		return ErrorStopFailed.Error()
	}
	return nil
}

// IsRunning reports whether both channels are currently running.
func (b *Block) IsRunning() bool {
	return b.upward.IsRunning() && b.downward.IsRunning()
}
