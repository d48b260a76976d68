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

// Package logger wires the runtime's structured-entry/level/fields building
// blocks into a single context-scoped Logger used to report block and
// manager failures.
package logger

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	libctx "github.com/opensand/rt-go/context"
	logent "github.com/opensand/rt-go/logger/entry"
	logfld "github.com/opensand/rt-go/logger/fields"
	loglvl "github.com/opensand/rt-go/logger/level"
)

// Logger is a minimal, context-scoped log source: a current level, a set of
// default fields merged into every entry, and a factory for one-off entries.
type Logger interface {
	// SetLevel changes the minimum level this logger will emit.
	SetLevel(lvl loglvl.Level)
	// GetLevel returns the current minimum level.
	GetLevel() loglvl.Level

	// SetFields replaces the default fields merged into every entry produced
	// by Entry. A nil argument clears them.
	SetFields(field logfld.Fields)
	// GetFields returns a clone of the default fields.
	GetFields() logfld.Fields

	// Entry builds a new structured entry at the given level. message is
	// formatted with fmt.Sprintf when args is non-empty.
	Entry(lvl loglvl.Level, message string, args ...interface{}) logent.Entry

	// Clone returns an independent logger seeded with this logger's level
	// and fields.
	Clone() Logger
}

type logger struct {
	m   sync.RWMutex
	x   libctx.Config[uint8]
	fld logfld.Fields
	log *logrus.Logger
}

const keyLevel uint8 = iota

// New returns a Logger at InfoLevel backed by a fresh logrus.Logger.
func New(ctx context.Context) Logger {
	l := &logger{
		x:   libctx.New[uint8](ctx),
		fld: logfld.New(ctx),
		log: logrus.New(),
	}

	l.SetLevel(loglvl.InfoLevel)

	return l
}
