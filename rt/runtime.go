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

// Package rt is the runtime's thin facade: create a block, connect blocks,
// run the graph, stop it, report an error. Everything else (Channel shapes,
// Block pairing, Manager orchestration) lives in its own subpackage; this
// package only wires them behind the small entry-point surface embedding
// programs are expected to use.
package rt

import (
	"context"
	"fmt"

	"github.com/opensand/rt-go/errors"
	"github.com/opensand/rt-go/logger"
	"github.com/opensand/rt-go/rt/block"
	"github.com/opensand/rt-go/rt/channel"
	"github.com/opensand/rt-go/rt/manager"
)

// Runtime is the facade over a single Manager instance. Build one with New,
// register blocks with CreateBlock, wire them with ConnectBlocks/
// ConnectBlocksKeyed, then call Run.
type Runtime struct {
	mgr *manager.Manager
}

// New builds a Runtime backed by a fresh Manager deriving its lifecycle
// from ctx. If log is nil, the manager falls back to its own default
// logger.
func New(ctx context.Context, log logger.Logger) *Runtime {
	return &Runtime{mgr: manager.New(ctx, log)}
}

// Manager exposes the underlying Manager for callers that need operations
// the facade doesn't surface directly (e.g. rt/monitor's debug HTTP
// endpoint, which reads the block registry).
func (r *Runtime) Manager() *manager.Manager {
	return r.mgr
}

// CreateBlock builds a Block pairing upward and downward under name and
// registers it with the runtime's manager.
func (r *Runtime) CreateBlock(name string, specific interface{}, upward, downward channel.Channel, h block.Handler) (*block.Block, errors.Error) {
	if name == "" || upward == nil || downward == nil {
		return nil, ErrorParamsEmpty.Error()
	}

	b := block.New(name, specific, upward, downward, h)
	if err := r.mgr.RegisterBlock(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ConnectBlocks wires upper and lower as adjacent pipeline stages; see
// manager.ConnectBlocks for the shape requirements.
func (r *Runtime) ConnectBlocks(upper, lower *block.Block, depth int64) errors.Error {
	return r.mgr.ConnectBlocks(upper, lower, depth)
}

// ConnectBlocksKeyed wires upper and lower through a keyed fan-out shape on
// each side; see manager.ConnectBlocksKeyed for the shape requirements.
func ConnectBlocksKeyed[K comparable](upper, lower *block.Block, downKey, upKey K, depth int64) errors.Error {
	return manager.ConnectBlocksKeyed[K](upper, lower, downKey, upKey, depth)
}

// Run drives the whole registered block graph to completion: optionally
// Init, then Start, then Wait (which blocks until a termination signal or
// context cancellation triggers Stop). It reports whether the run completed
// without any critical error.
func (r *Runtime) Run(initFirst bool) bool {
	if initFirst {
		if err := r.mgr.Init(); err != nil {
			return false
		}
	}

	if err := r.mgr.Start(); err != nil {
		return false
	}

	r.mgr.Wait()
	return r.mgr.RunStatus() == manager.StatusOK
}

// Stop stops every registered block. Idempotent.
func (r *Runtime) Stop() errors.Error {
	return r.mgr.Stop()
}

// ReportError surfaces an out-of-band error (one not raised by a Channel's
// own event loop) to the runtime's logging and shutdown machinery. source
// names the reporting component, threadID the goroutine/phase it ran on.
func (r *Runtime) ReportError(source, threadID string, critical bool, formattedMessage string) {
	r.mgr.ReportError(source, threadID, critical, fmt.Errorf("%s", formattedMessage))
}
