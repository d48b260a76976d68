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

import "github.com/opensand/rt-go/errors"

const (
	ErrorParamsEmpty errors.CodeError = iota + errors.MinPkgRtChannel
	ErrorEventNotFound
	ErrorEventWrongKind
	ErrorNoNextFifo
	ErrorNoPrevFifo
	ErrorNoOppositeFifo
	ErrorNoRoute
	ErrorShapeMismatch
	ErrorSelectFailed
	ErrorHandlerRejected
	ErrorOnInitFailed
	ErrorLifecycle
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorParamsEmpty)
	errors.RegisterIdFctMessage(ErrorParamsEmpty, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorParamsEmpty:
		return "given parameters is empty"
	case ErrorEventNotFound:
		return "no event registered with this name"
	case ErrorEventWrongKind:
		return "event is not of the kind this operation requires"
	case ErrorNoNextFifo:
		return "channel has no downstream fifo to share a message onto"
	case ErrorNoPrevFifo:
		return "channel has no upstream fifo registered"
	case ErrorNoOppositeFifo:
		return "channel has no same-block opposite fifo wired for share_message"
	case ErrorNoRoute:
		return "no downstream fifo mapped for this demux key"
	case ErrorShapeMismatch:
		return "channel shapes cannot be wired together this way"
	case ErrorSelectFailed:
		return "event loop polling failed"
	case ErrorHandlerRejected:
		return "handler returned false for this event"
	case ErrorOnInitFailed:
		return "channel handler's OnInit returned false"
	case ErrorLifecycle:
		return "channel start/stop lifecycle error"
	}

	return ""
}
