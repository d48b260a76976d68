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
	"context"

	libctx "github.com/opensand/rt-go/context"
	logfld "github.com/opensand/rt-go/logger/fields"
	"github.com/sirupsen/logrus"
)

// SetFields replaces all default fields with the provided fields. These
// fields are merged into every entry produced by Entry. A nil argument
// clears them.
func (o *logger) SetFields(field logfld.Fields) {
	if o == nil {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()

	o.fld.Clean()
	o.fld.Merge(field)
}

// GetFields returns a clone of the current default fields.
func (o *logger) GetFields() logfld.Fields {
	if o == nil {
		return logfld.New(context.Background())
	}

	o.m.RLock()
	defer o.m.RUnlock()

	return o.fld.Clone()
}

// Clone returns an independent logger with its own context and fields,
// seeded with this logger's current level and fields.
func (o *logger) Clone() Logger {
	if o == nil {
		return nil
	}

	l := &logger{
		x:   libctx.New[uint8](o.x.GetContext()),
		fld: logfld.New(o.x.GetContext()),
		log: logrus.New(),
	}

	l.SetLevel(o.GetLevel())
	l.SetFields(o.GetFields())

	return l
}
