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
	goerrors "errors"
	"strings"
)

// Error extends the standard error with a numeric code and a parent chain,
// so a caller can inspect *why* a recoverable condition fired without
// needing a typed sentinel per cause.
type Error interface {
	error

	// IsCode reports whether this error's own code equals the given code.
	IsCode(code CodeError) bool
	// HasCode reports whether this error or any parent carries the given code.
	HasCode(code CodeError) bool
	// GetCode returns this error's own code.
	GetCode() CodeError

	// HasParent reports whether any parent error was attached.
	HasParent() bool
	// GetParent returns the parent errors, optionally prefixed by this error.
	GetParent(withSelf bool) []error
	// AddParent appends non-nil errors to the parent list.
	AddParent(parent ...error)

	// Is implements compatibility with the standard errors.Is.
	Is(err error) bool
	// Unwrap exposes the parent chain to errors.Is / errors.As.
	Unwrap() []error
}

type ers struct {
	code   CodeError
	msg    string
	parent []error
}

// New builds an Error with the given code, message and parents.
func New(code CodeError, message string, parent ...error) Error {
	e := &ers{code: code, msg: message}
	e.AddParent(parent...)
	return e
}

func (e *ers) Error() string {
	return e.msg
}

func (e *ers) IsCode(code CodeError) bool {
	return e.code == code
}

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}
	for _, p := range e.parent {
		if er, ok := p.(Error); ok && er.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) GetCode() CodeError {
	return e.code
}

func (e *ers) HasParent() bool {
	return len(e.parent) > 0
}

func (e *ers) GetParent(withSelf bool) []error {
	res := make([]error, 0, len(e.parent)+1)
	if withSelf {
		res = append(res, New(e.code, e.msg))
	}
	return append(res, e.parent...)
}

func (e *ers) AddParent(parent ...error) {
	for _, p := range parent {
		if p == nil {
			continue
		}
		e.parent = append(e.parent, p)
	}
}

func (e *ers) Is(err error) bool {
	if err == nil {
		return false
	}
	if er, ok := err.(Error); ok {
		return e.code != UnknownError && e.code == er.GetCode()
	}
	return strings.EqualFold(e.msg, err.Error())
}

func (e *ers) Unwrap() []error {
	return e.parent
}

// Is reports whether err is (or wraps) an Error, using the standard
// errors.As machinery so it composes with fmt.Errorf("%w", ...) chains.
func Is(err error) bool {
	var e Error
	return goerrors.As(err, &e)
}

// Get returns err as an Error if it is one, or nil otherwise.
func Get(err error) Error {
	var e Error
	if goerrors.As(err, &e) {
		return e
	}
	return nil
}
