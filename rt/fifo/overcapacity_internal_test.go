/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package fifo

import (
	"context"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opensand/rt-go/rt/message"
)

// This internal test (package fifo, not fifo_test) reaches into the
// unexported length field to force the defensive over-capacity branch in
// Push, since the semaphore otherwise makes it unreachable through the
// public API alone.
var _ = Describe("Push over configured capacity", func() {
	It("still enqueues the message and notifies the hook instead of rejecting it", func() {
		f := New("f", 2)

		var calls int32
		var lastDepth, lastMax int64
		f.SetOverCapacityHook(func(depth, maxDepth int64) {
			atomic.AddInt32(&calls, 1)
			lastDepth = depth
			lastMax = maxDepth
		})

		f.mu.Lock()
		f.length = f.maxDepth
		f.mu.Unlock()

		Expect(f.Push(context.Background(), message.New(1, []byte("a")))).To(Succeed())

		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(1)))
		Expect(lastDepth).To(Equal(f.maxDepth + 1))
		Expect(lastMax).To(Equal(f.maxDepth))

		m, err := f.Pop()
		Expect(err).ToNot(HaveOccurred())
		Expect(m.Type).To(Equal(uint8(1)))
	})

	It("does not invoke the hook for ordinary pushes within capacity", func() {
		f := New("f", 4)

		var calls int32
		f.SetOverCapacityHook(func(depth, maxDepth int64) {
			atomic.AddInt32(&calls, 1)
		})

		Expect(f.Push(context.Background(), message.New(1, []byte("a")))).To(Succeed())
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(0)))
	})
})
