// Package errs provides code-classified, parent-chaining errors for this
// module, in place of bare fmt.Errorf: every recoverable condition of the
// damping subprotocol (UnattainableQuorum, UnsatisfiableR, CapExceeded, ...)
// gets its own CodeError so callers can branch on HasCode instead of string
// matching.
package errs
