// Package logging wraps sirupsen/logrus behind the small leveled,
// field-carrying Logger interface this codebase's packages consume, and
// bridges it to hashicorp/go-hclog for collaborators built against that
// convention instead.
package logging
