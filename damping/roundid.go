package damping

import (
	"github.com/hashicorp/go-uuid"
)

// newRoundID stamps one fan-out round for log correlation: it is attached
// to the round's logger as the "round" field; Events do not carry it. Falling
// back to a fixed placeholder on generation failure (astronomically rare:
// go-uuid only fails if the system entropy source itself fails) keeps the
// round from ever blocking on an id.
func newRoundID() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "unknown-round"
	}
	return id
}
