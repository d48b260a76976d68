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

// Package monitor serves an optional, read-only debug HTTP endpoint over a
// Manager's block registry: current running state, uptime, and wired fifo
// depths. It is never started implicitly; an embedding program calls Serve
// explicitly when it wants the endpoint.
package monitor

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opensand/rt-go/rt/channel"
	"github.com/opensand/rt-go/rt/manager"
)

// blockStatus is the JSON shape served by GET /blocks.
type blockStatus struct {
	Name    string        `json:"name"`
	Running bool          `json:"running"`
	Uptime  time.Duration `json:"uptime_ns"`
}

// fifoStatus is the JSON shape served by GET /blocks/:name/fifos.
type fifoStatus struct {
	Channel string `json:"channel"`
	Fifo    string `json:"fifo"`
	Len     int64  `json:"len"`
	Cap     int64  `json:"cap"`
}

// NewRouter builds a gin engine serving mgr's registry. It is not started;
// call Serve to run it, or mount it into an existing server.
func NewRouter(mgr *manager.Manager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/blocks", func(c *gin.Context) {
		blocks := mgr.Blocks()
		out := make([]blockStatus, 0, len(blocks))
		for _, b := range blocks {
			out = append(out, blockStatus{
				Name:    b.Name(),
				Running: b.IsRunning(),
				Uptime:  maxUptime(b.Upward().Uptime(), b.Downward().Uptime()),
			})
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/blocks/:name/fifos", func(c *gin.Context) {
		b, ok := mgr.Block(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
			return
		}

		out := make([]fifoStatus, 0)
		out = append(out, fifosOf(b.Upward())...)
		out = append(out, fifosOf(b.Downward())...)
		c.JSON(http.StatusOK, out)
	})

	return r
}

func fifosOf(ch channel.Channel) []fifoStatus {
	l, ok := ch.(channel.FifoLister)
	if !ok {
		return nil
	}

	fifos := l.Fifos()
	out := make([]fifoStatus, 0, len(fifos))
	for _, f := range fifos {
		out = append(out, fifoStatus{Channel: ch.Name(), Fifo: f.Name, Len: f.Len, Cap: f.Cap})
	}
	return out
}

func maxUptime(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// Serve runs mgr's debug router on addr, blocking until ctx is done or the
// server fails. Intended to be launched in its own goroutine by the
// embedding program.
func Serve(ctx context.Context, mgr *manager.Manager, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(mgr),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
