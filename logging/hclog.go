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
	"log"

	"github.com/hashicorp/go-hclog"
)

// hclogBridge adapts a Logger to hclog.Logger, the way cluster/logger.go
// adapts this codebase's logger to dragonboat's own ILogger interface.
// Any collaborator that insists on hclog (gossip transports in this
// ecosystem commonly do) can be handed this bridge without ringpop-node
// taking a second logging convention.
type hclogBridge struct {
	name string
	l    Logger
}

// NewHCLogBridge wraps l so it satisfies hclog.Logger under the given name.
func NewHCLogBridge(name string, l Logger) hclog.Logger {
	return &hclogBridge{name: name, l: l}
}

func (b *hclogBridge) fields(args []interface{}) Fields {
	f := make(Fields, len(args)/2+1)
	f["component"] = b.name
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok {
			f[k] = args[i+1]
		}
	}
	return f
}

func (b *hclogBridge) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		b.Debug(msg, args...)
	case hclog.Warn:
		b.Warn(msg, args...)
	case hclog.Error:
		b.Error(msg, args...)
	default:
		b.Info(msg, args...)
	}
}

func (b *hclogBridge) Trace(msg string, args ...interface{}) { b.Debug(msg, args...) }
func (b *hclogBridge) Debug(msg string, args ...interface{}) { b.l.Debug(msg, b.fields(args)) }
func (b *hclogBridge) Info(msg string, args ...interface{})  { b.l.Info(msg, b.fields(args)) }
func (b *hclogBridge) Warn(msg string, args ...interface{})  { b.l.Warn(msg, b.fields(args)) }
func (b *hclogBridge) Error(msg string, args ...interface{}) { b.l.Error(msg, b.fields(args)) }

func (b *hclogBridge) IsTrace() bool { return true }
func (b *hclogBridge) IsDebug() bool { return true }
func (b *hclogBridge) IsInfo() bool  { return true }
func (b *hclogBridge) IsWarn() bool  { return true }
func (b *hclogBridge) IsError() bool { return true }

func (b *hclogBridge) ImpliedArgs() []interface{} { return nil }
func (b *hclogBridge) With(args ...interface{}) hclog.Logger {
	return &hclogBridge{name: b.name, l: b.l.With(b.fields(args))}
}
func (b *hclogBridge) Name() string { return b.name }
func (b *hclogBridge) Named(name string) hclog.Logger {
	return &hclogBridge{name: b.name + "." + name, l: b.l}
}
func (b *hclogBridge) ResetNamed(name string) hclog.Logger {
	return &hclogBridge{name: name, l: b.l}
}
func (b *hclogBridge) SetLevel(level hclog.Level) {}
func (b *hclogBridge) GetLevel() hclog.Level       { return hclog.Info }

func (b *hclogBridge) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(b.StandardWriter(opts), "", 0)
}

func (b *hclogBridge) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return &hclogWriter{b: b}
}

type hclogWriter struct{ b *hclogBridge }

func (w *hclogWriter) Write(p []byte) (int, error) {
	w.b.Info(string(p))
	return len(p), nil
}
