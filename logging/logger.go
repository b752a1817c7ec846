/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
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

package logging

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields are structured key/value pairs attached to a single log entry, the
// same shape as logrus.Fields so it round-trips without copying.
type Fields map[string]interface{}

// Logger is the leveled, field-carrying logging surface consumed by the
// damping controller. It is deliberately small: the controller never needs
// hooks, output redirection, or access-log formatting, just "log this event
// with these fields at this level".
type Logger interface {
	Debug(message string, fields Fields)
	Info(message string, fields Fields)
	Warn(message string, fields Fields)
	Error(message string, fields Fields)

	// SetLevel changes the minimal level this logger will emit.
	SetLevel(lvl Level)

	// With returns a clone whose entries always carry the given fields,
	// layering over any fields already attached (e.g. a per-round logger
	// derived from the controller's base logger).
	With(fields Fields) Logger
}

type lgr struct {
	mu   sync.RWMutex
	base *logrus.Logger
	std  *logrus.Entry
}

// New returns a Logger writing to w (os.Stderr is the typical caller),
// defaulting to InfoLevel like the rest of this codebase's loggers.
func New(w io.Writer) Logger {
	b := logrus.New()
	b.SetOutput(w)
	b.SetLevel(InfoLevel.logrus())
	return &lgr{base: b, std: logrus.NewEntry(b)}
}

func (l *lgr) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.base.SetLevel(lvl.logrus())
}

func (l *lgr) With(fields Fields) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &lgr{base: l.base, std: l.std.WithFields(logrus.Fields(fields))}
}

func (l *lgr) entry() *logrus.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.std
}

func (l *lgr) Debug(message string, fields Fields) {
	l.entry().WithFields(logrus.Fields(fields)).Debug(message)
}

func (l *lgr) Info(message string, fields Fields) {
	l.entry().WithFields(logrus.Fields(fields)).Info(message)
}

func (l *lgr) Warn(message string, fields Fields) {
	l.entry().WithFields(logrus.Fields(fields)).Warn(message)
}

func (l *lgr) Error(message string, fields Fields) {
	l.entry().WithFields(logrus.Fields(fields)).Error(message)
}

// Nop returns a Logger that discards everything, used as the default when a
// caller does not supply one (tests, or callers that only care about events).
func Nop() Logger {
	return New(io.Discard)
}
