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

package logger

import (
	"bytes"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	logent "github.com/opensand/rt-go/logger/entry"
	loglvl "github.com/opensand/rt-go/logger/level"
)

var self = path.Base(reflect.TypeOf(logger{}).PkgPath())

func (o *logger) SetLevel(lvl loglvl.Level) {
	if o == nil {
		return
	}

	o.x.Store(keyLevel, lvl)
	o.log.SetLevel(lvl.Logrus())
}

func (o *logger) GetLevel() loglvl.Level {
	if o == nil || o.x == nil {
		return loglvl.NilLevel
	} else if i, ok := o.x.Load(keyLevel); !ok {
		return loglvl.NilLevel
	} else if v, k := i.(loglvl.Level); !k {
		return loglvl.NilLevel
	} else {
		return v
	}
}

func (o *logger) getStack() uint64 {
	b := make([]byte, 64)

	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]

	n, _ := strconv.ParseUint(string(b), 10, 64)

	return n
}

func (o *logger) getCaller() runtime.Frame {
	pc := make([]uintptr, 10)
	n := runtime.Callers(2, pc)

	if n > 0 {
		frames := runtime.CallersFrames(pc[:n])
		more := true

		for more {
			var frame runtime.Frame
			frame, more = frames.Next()

			if strings.Contains(frame.Function, self) {
				continue
			}

			return frame
		}
	}

	return runtime.Frame{Function: "unknown", File: "unknown", Line: 0}
}

// Entry builds a new structured entry at the given level, stamped with the
// current time, goroutine stack id, and caller frame, pre-merged with this
// logger's default fields. message is formatted with fmt.Sprintf when args
// is non-empty.
func (o *logger) Entry(lvl loglvl.Level, message string, args ...interface{}) logent.Entry {
	msg := message
	if len(args) > 0 {
		msg = fmt.Sprintf(message, args...)
	}

	e := logent.New(lvl).SetLogger(func() *logrus.Logger {
		if o == nil {
			return nil
		}
		return o.log
	})

	if o != nil {
		frame := o.getCaller()
		e = e.SetEntryContext(time.Now(), o.getStack(), frame.Function, frame.File, uint64(frame.Line), msg)
		e = e.FieldSet(o.GetFields())
	} else {
		e = e.SetEntryContext(time.Now(), 0, "", "", 0, msg)
	}

	return e
}
