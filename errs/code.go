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

package errs

import (
	"strconv"
)

// Message renders a human-readable string for a CodeError.
type Message func(code CodeError) string

var idMsgFct = make(map[CodeError]Message)

// CodeError is a small numeric classification for recoverable conditions,
// grouped by package the way HTTP status codes group by category.
type CodeError uint16

const (
	// UnknownError is the zero value: no classification given.
	UnknownError CodeError = 0
)

// MinPkgDamping reserves the code range used by this module's packages,
// mirroring the per-package code ranges (MinPkgCluster, MinPkgConfig, ...)
// of the kit this pattern is ported from.
const MinPkgDamping CodeError = 400

func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

func (c CodeError) Int() int {
	return int(c)
}

func (c CodeError) String() string {
	return strconv.Itoa(c.Int())
}

// findCodeErrorInMapMessage returns the registered minCode that is the
// closest one at or below c, the same range-bucket lookup the kit this is
// ported from uses for its per-package MinPkgXXX codes.
func findCodeErrorInMapMessage(c CodeError) CodeError {
	var best CodeError
	var found bool

	for min := range idMsgFct {
		if min <= c && (!found || min > best) {
			best = min
			found = true
		}
	}

	return best
}

// Message returns the registered human message for this code, falling back
// to the numeric code itself if nothing was registered.
func (c CodeError) Message() string {
	if c == UnknownError {
		return "unknown error"
	}

	if fct, ok := idMsgFct[findCodeErrorInMapMessage(c)]; ok {
		if m := fct(c); m != "" {
			return m
		}
	}

	return c.String()
}

// Error builds a new Error of this code with the given parents attached.
func (c CodeError) Error(parent ...error) Error {
	return New(c, c.Message(), parent...)
}

// ErrorParent is a convenience alias for Error, kept distinct so call sites
// read as "this code, because of these parents" at the call site.
func (c CodeError) ErrorParent(parent ...error) Error {
	return New(c, c.Message(), parent...)
}

// RegisterIdFctMessage registers the message function used to render codes
// at or above minCode. Packages call this from an init() the same way
// cluster/errors.go registers its own message table.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	idMsgFct[minCode] = fct
}

// ExistInMapMessage reports whether a message function has already been
// registered for the given code, so init() can avoid double registration.
func ExistInMapMessage(code CodeError) bool {
	_, ok := idMsgFct[code]
	return ok
}
