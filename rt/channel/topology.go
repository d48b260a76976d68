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

import "github.com/opensand/rt-go/rt/fifo"

// NextSetter is satisfied by channel shapes with exactly one downstream
// fifo (Simple, Mux): rt/manager's connect operation uses it to wire
// same-direction Simple/Mux channels to a single next fifo.
type NextSetter interface {
	Channel
	SetNext(f *fifo.Fifo)
}

// PrevSetter is satisfied by channel shapes with exactly one upstream fifo
// (Simple, Demux[K]).
type PrevSetter interface {
	Channel
	SetPrev(f *fifo.Fifo)
}

// PrevAdder is satisfied by channel shapes with many upstream fifos (Mux,
// MuxDemux[K]): rt/manager uses it for fan-in wiring.
type PrevAdder interface {
	Channel
	AddPrev(f *fifo.Fifo) int
}

// NextAdder[K] is satisfied by the keyed fan-out shapes (Demux[K],
// MuxDemux[K]): rt/manager uses it to wire a single downstream fifo under a
// routing key without needing a type switch per concrete shape.
type NextAdder[K comparable] interface {
	Channel
	AddNext(key K, f *fifo.Fifo)
}

// DispatchHooker is satisfied by every channel shape (all of them embed
// core): rt/metrics uses it to install a per-event counting hook without a
// type switch per concrete shape.
type DispatchHooker interface {
	Channel
	SetDispatchHook(fn DispatchFunc)
}

// FifoLister is satisfied by every channel shape (all of them embed core):
// rt/monitor uses it to report wired-fifo depth/capacity without a type
// switch per concrete shape.
type FifoLister interface {
	Channel
	Fifos() []FifoStatus
}

// BindOpposite wires a and b as each other's same-block opposite channel:
// a.ShareMessage delivers to b as a Message event and vice versa. Built from
// two one-directional fifos rather than a single shared structure. It
// returns both fifos so the caller (rt/block, pairing a and b under one
// Block) can register them with its resource closer.
func BindOpposite(a, b Channel, depth int64) (toB, toA *fifo.Fifo) {
	toB = fifo.New(a.Name()+"->"+b.Name()+".opposite", depth)
	toA = fifo.New(b.Name()+"->"+a.Name()+".opposite", depth)

	a.setOppositeFifo(toB)
	b.addPrevFifo(toB)

	b.setOppositeFifo(toA)
	a.addPrevFifo(toA)

	return toB, toA
}
