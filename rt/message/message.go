/*
MIT License

Copyright (c) 2024 OpenSAND RT Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package message defines the payload exchanged between blocks through a Fifo.
package message

// Message is an opaque, owned byte payload carrying a caller-defined 8-bit
// type tag. Ownership is exclusive: whoever pops a Message from a Fifo is its
// sole owner until it is handed off again or discarded.
type Message struct {
	Type uint8
	Data []byte
}

// New builds a Message copying data so the caller may safely reuse its buffer.
func New(typ uint8, data []byte) *Message {
	d := make([]byte, len(data))
	copy(d, data)
	return &Message{Type: typ, Data: d}
}
