package damping

import (
	"github.com/dachinzo/ringpop-node/logging"
)

// Handler answers an incoming Damp-Req on behalf of this node acting as an
// observer (spec §4.6): for each requested flapper address found in the
// local membership table, it reports that member's own damp score; members
// it has no record of are silently skipped rather than erroring, since an
// observer only ever knows what its own gossip state has seen.
type Handler struct {
	membership Membership
	log        logging.Logger
}

// NewHandler builds a Handler reading from membership.
func NewHandler(membership Membership, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{membership: membership, log: log}
}

// HandleDampRequest implements the receiving side of the Damp-Req RPC. A
// nil or empty flapperAddrs is malformed (spec §4.6: "a request naming no
// flappers is rejected") and yields ErrorBadRequest rather than an empty
// response, so a caller cannot mistake "nothing to report" for "found
// zero live flappers".
func (h *Handler) HandleDampRequest(observer Address, flapperAddrs []Address) (Response, error) {
	if len(flapperAddrs) == 0 {
		return Response{}, ErrorBadRequest.Error()
	}

	resp := Response{Observer: observer}

	for _, addr := range flapperAddrs {
		member := h.membership.FindMemberByAddress(addr)
		if member == nil {
			h.log.Debug("damp-request named unknown flapper", logging.Fields{"address": string(addr)})
			continue
		}
		resp.Scores = append(resp.Scores, Score{MemberAddress: addr, DampScore: member.DampScore()})
	}

	return resp, nil
}
