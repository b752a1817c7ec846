package damping

import "context"

// Transport sends a damp-request to a single observer and waits for its
// response (spec §6: the Damp-Req RPC). The wire framing and actual
// network transport are out of this module's scope; this is the interface
// the fan-out consumes.
type Transport interface {
	SendDampRequest(ctx context.Context, observer Member, flapperAddrs []Address) (Response, error)
}
