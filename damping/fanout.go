package damping

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dachinzo/ringpop-node/logging"
)

// FanoutResult is the success payload handed to a fan-out's continuation:
// the responses that counted toward quorum.
type FanoutResult struct {
	Successes []Response
}

// UnattainableQuorumError is returned to the continuation when the fan-out
// can no longer reach rVal successes, carrying the flapper list, the
// configured quorum, and every transport error observed so far (spec §4.3,
// §7). It is never retried within the round; the next damp-timer tick
// retries from scratch.
type UnattainableQuorumError struct {
	Flappers []Address
	RVal     int
	Errors   []error
}

func (e *UnattainableQuorumError) Error() string {
	return fmt.Sprintf("damping: unattainable quorum: need %d successes for %d flappers, saw %d errors",
		e.RVal, len(e.Flappers), len(e.Errors))
}

// Fanout emits one damp-request to each observer in parallel and invokes
// done exactly once (spec I4): either as soon as rVal successes arrive
// (early commit), or as soon as the outstanding responses can no longer
// reach rVal successes even in the best case (early abort, spec §4.3).
//
// Fanout returns immediately after dispatching the requests; done fires
// from a background goroutine. Responses that arrive after done has fired
// are discarded for the purpose of quorum, but per spec §9/Q2 their
// piggybacked membership changes are still applied — gossip is valuable
// even after the round has conceptually ended.
func Fanout(ctx context.Context, transport Transport, membership Membership, log logging.Logger, flapperAddrs []Address, observers []Member, rVal int, done func(FanoutResult, error)) {
	if log == nil {
		log = logging.Nop()
	}

	n := len(observers)

	type outcome struct {
		resp Response
		err  error
	}

	results := make(chan outcome, n)

	for _, obs := range observers {
		obs := obs
		go func() {
			resp, err := transport.SendDampRequest(ctx, obs, flapperAddrs)
			resp.Observer = obs.Address()
			results <- outcome{resp: resp, err: err}
		}()
	}

	go func() {
		var (
			successes []Response
			failures  []error
			consumed  int32
		)

		fire := func(res FanoutResult, err error) {
			if atomic.CompareAndSwapInt32(&consumed, 0, 1) {
				done(res, err)
			}
		}

		for i := 0; i < n; i++ {
			out := <-results

			if out.err != nil {
				failures = append(failures, out.err)
				log.Debug("damp-request failed", logging.Fields{"error": out.err.Error()})
			} else {
				if len(out.resp.Changes) > 0 {
					membership.Update(out.resp.Changes)
				}
				successes = append(successes, out.resp)
			}

			if atomic.LoadInt32(&consumed) == 1 {
				continue
			}

			if len(successes) >= rVal {
				fire(FanoutResult{Successes: append([]Response(nil), successes...)}, nil)
				continue
			}

			remaining := n - (len(successes) + len(failures))
			if remaining < rVal-len(successes) {
				fire(FanoutResult{}, &UnattainableQuorumError{
					Flappers: flapperAddrs,
					RVal:     rVal,
					Errors:   append([]error(nil), failures...),
				})
			}
		}

		// n == 0 with rVal > 0 never enters the loop above; guarantee I4
		// still holds by firing unattainable-quorum once draining is done.
		fire(FanoutResult{}, &UnattainableQuorumError{
			Flappers: flapperAddrs,
			RVal:     rVal,
			Errors:   failures,
		})
	}()
}
