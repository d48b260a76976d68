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

package channel_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opensand/rt-go/rt/channel"
	"github.com/opensand/rt-go/rt/fifo"
)

var _ = Describe("Demux", func() {
	It("routes EnqueueMessageKeyed to the fifo registered under that key", func() {
		d := channel.NewDemux[string]("demux", channel.Downward, nil, nil)

		fa := fifo.New("a", 2)
		fb := fifo.New("b", 2)
		d.AddNext("a", fa)
		d.AddNext("b", fb)

		Expect(d.EnqueueMessageKeyed(context.Background(), "a", 1, []byte("x"))).To(Succeed())

		m, err := fa.Pop()
		Expect(err).ToNot(HaveOccurred())
		Expect(m.Type).To(Equal(uint8(1)))

		_, err = fb.Pop()
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unmapped key with ErrorNoRoute", func() {
		d := channel.NewDemux[string]("demux", channel.Downward, nil, nil)
		Expect(d.EnqueueMessageKeyed(context.Background(), "missing", 1, []byte("x"))).To(HaveOccurred())
	})

	It("rejects the unkeyed EnqueueMessage as a shape mismatch", func() {
		d := channel.NewDemux[string]("demux", channel.Downward, nil, nil)
		Expect(d.EnqueueMessage(context.Background(), 1, []byte("x"))).To(HaveOccurred())
	})
})
