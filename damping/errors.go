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

package damping

import "github.com/dachinzo/ringpop-node/errs"

// CodeError constants for the damping package, following this codebase's
// per-package error-code ranges (cluster/errors.go enumerates
// ErrorLeader, ErrorNodeHostStart, ... the same way).
const (
	ErrorValidateConfig errs.CodeError = iota + errs.MinPkgDamping
	ErrorLoadConfig
	ErrorUnattainableQuorum
	ErrorUnsatisfiableR
	ErrorCapExceeded
	ErrorBadRequest
	ErrorTransport
)

func init() {
	if !errs.ExistInMapMessage(ErrorValidateConfig) {
		errs.RegisterIdFctMessage(ErrorValidateConfig, getMessage)
	}
}

func getMessage(code errs.CodeError) string {
	switch code {
	case ErrorValidateConfig:
		return "damping config failed validation"
	case ErrorLoadConfig:
		return "unable to load damping config"
	case ErrorUnattainableQuorum:
		return "damp-request fan-out cannot reach quorum"
	case ErrorUnsatisfiableR:
		return "not enough observers to attempt the configured quorum"
	case ErrorCapExceeded:
		return "cluster-wide damped cap exceeded"
	case ErrorBadRequest:
		return "malformed damp-request"
	case ErrorTransport:
		return "damp-request transport error"
	}
	return ""
}
