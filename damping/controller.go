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

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dachinzo/ringpop-node/logging"
)

// Controller is the owning state machine of the flap damping subprotocol
// (spec §4.5): it starts/stops the damp timer as the Flapper Set becomes
// non-empty/empty, runs the subprotocol round, applies damping to
// membership under the cluster-wide cap, and runs the expiration timer
// that releases entries. It is grounded on this codebase's cRaft
// struct-of-collaborators shape (cluster/cluster.go): a small set of
// injected dependencies plus the lifecycle methods that drive them.
type Controller struct {
	publisher

	mu  sync.Mutex
	cfg Config

	membership Membership
	transport  Transport
	clock      Clock
	log        logging.Logger

	flappers *FlapperSet
	damped   *DampedSet

	dampTimerEnabled bool
	dampTimer        Timer

	expireTimerEnabled bool
	expireTimer        Timer

	// sf is a second, independent enforcement of invariant I3 (at most one
	// fan-out in flight): even if a caller somehow drove two concurrent
	// InitiateSubprotocol calls, singleflight collapses them into one
	// round instead of running two fan-outs side by side.
	sf singleflight.Group
}

// NewController wires a Controller against the given collaborators. cfg
// must already be valid (see Config.Validate).
func NewController(cfg Config, membership Membership, transport Transport, clock Clock, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	if clock == nil {
		clock = RealClock()
	}

	c := &Controller{
		cfg:        cfg,
		membership: membership,
		transport:  transport,
		clock:      clock,
		log:        log,
	}

	c.damped = NewDampedSet(cfg.SuppressDuration, clock, membership, log, c.armExpireTimer)
	c.flappers = NewFlapperSet(c.damped, log, c.armDampTimer, c.disarmDampTimer)

	return c
}

// Flappers returns the controller's Flapper Set.
func (c *Controller) Flappers() *FlapperSet { return c.flappers }

// Damped returns the controller's Damped Set.
func (c *Controller) Damped() *DampedSet { return c.damped }

// AddFlapper reports addr as a suspected flapper observed now.
func (c *Controller) AddFlapper(addr Address) {
	c.flappers.AddFlapper(Flapper{Address: addr, ObservedAt: c.clock.Now()})
}

// RemoveFlapper stops tracking addr as a suspected flapper.
func (c *Controller) RemoveFlapper(addr Address) {
	c.flappers.RemoveFlapper(addr)
}

// Stop cancels both timers, for orderly shutdown. An in-flight fan-out is
// not cancelled by Stop — it completes and its continuation becomes a
// no-op once the enabled flags it checks are false (spec §5: "Cancellation").
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dampTimerEnabled = false
	if c.dampTimer != nil {
		c.dampTimer.Stop()
	}

	c.expireTimerEnabled = false
	if c.expireTimer != nil {
		c.expireTimer.Stop()
	}
}

// armDampTimer starts the damp timer. Asking to restart an already-enabled
// timer is a no-op (spec §4.5.1: "logs and returns").
func (c *Controller) armDampTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dampTimerEnabled {
		c.log.Debug("damp timer restart requested while already enabled", nil)
		return
	}

	c.dampTimerEnabled = true
	c.dampTimer = c.clock.AfterFunc(c.cfg.TimerInterval, c.fireDampTimer)
}

// disarmDampTimer stops the damp timer (Flapper Set became empty, spec I5).
func (c *Controller) disarmDampTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dampTimerEnabled = false
	if c.dampTimer != nil {
		c.dampTimer.Stop()
	}
}

// fireDampTimer is the single-shot timer callback: it runs one subprotocol
// round then re-arms only inside the round's own completion continuation
// (spec §4.5.1), not unconditionally, so an overlapping round can never
// start (I3).
func (c *Controller) fireDampTimer() {
	c.mu.Lock()
	enabled := c.dampTimerEnabled
	c.mu.Unlock()

	if !enabled {
		return
	}

	c.InitiateSubprotocol(c.flappers.Addresses(), func() {
		c.mu.Lock()
		stillEnabled := c.dampTimerEnabled
		c.mu.Unlock()

		// spec §5: "Implementations must therefore check the enabled flag
		// inside the re-arm continuation" — a Stop()/disarm that raced
		// with this round must not resurrect the timer.
		if stillEnabled {
			c.mu.Lock()
			c.dampTimer = c.clock.AfterFunc(c.cfg.TimerInterval, c.fireDampTimer)
			c.mu.Unlock()
		}
	})
}

// armExpireTimer starts the expiration timer (Damped Set became non-empty).
func (c *Controller) armExpireTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expireTimerEnabled {
		return
	}

	c.expireTimerEnabled = true
	c.expireTimer = c.clock.AfterFunc(c.cfg.ExpirationInterval, c.fireExpireTimer)
}

// fireExpireTimer scans the Damped Set and re-arms or cancels depending on
// whether anything remains, per spec §4.2 (and §9/Q1: the "is it now empty"
// check correctly compares length via DampedSet.IsEmpty).
func (c *Controller) fireExpireTimer() {
	c.mu.Lock()
	enabled := c.expireTimerEnabled
	c.mu.Unlock()

	if !enabled {
		return
	}

	released := c.damped.ExpireTick()
	for _, addr := range released {
		c.log.Info("member released from damped set", logging.Fields{"address": string(addr)})
		incrCounter(metricExpired)
	}

	// Read before taking c.mu: DampedSet.Commit holds d.mu while calling
	// back into armExpireTimer (which takes c.mu), so never acquire d.mu
	// (IsEmpty, ExpireTick) while holding c.mu — that ordering, combined
	// with this one, is how an AB-BA deadlock happens.
	empty := c.damped.IsEmpty()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.expireTimerEnabled {
		return
	}

	if empty {
		c.expireTimerEnabled = false
		return
	}

	c.expireTimer = c.clock.AfterFunc(c.cfg.ExpirationInterval, c.fireExpireTimer)
}

// InitiateSubprotocol runs one subprotocol round for flapperAddrs: the cap
// check, observer selection, quorum adjustment, and fan-out of spec §4.5.2.
// outerCallback is invoked once the round concludes, except in these cases,
// where it is not invoked at all: flapperAddrs is empty; the round is
// skipped for CapExceeded or UnsatisfiableR (spec §9/Q3 behavior, kept as
// is); or the call is folded by singleflight into a round already in
// flight. When a damp-timer round is skipped this way the timer is not
// re-armed, and because the enabled flag stays set, AddFlapper does not
// re-arm it either: it stays stalled until the Flapper Set empties (which
// disarms it) and a later AddFlapper arms it again.
func (c *Controller) InitiateSubprotocol(flapperAddrs []Address, outerCallback func()) {
	if len(flapperAddrs) == 0 {
		return
	}

	_, _, _ = c.sf.Do("round", func() (interface{}, error) {
		c.runRound(flapperAddrs, outerCallback)
		return nil, nil
	})
}

func (c *Controller) runRound(flapperAddrs []Address, outerCallback func()) {
	round := newRoundID()
	log := c.log.With(logging.Fields{"round": round})

	if c.damped.Percentage() >= c.cfg.MaxPercentage {
		c.publish(Event{Kind: DampedLimitExceededEvent, Flappers: flapperAddrs})
		incrCounter(metricCapExceeded)
		log.Warn("damped cap exceeded, skipping round", logging.Fields{"cap": c.cfg.MaxPercentage})
		return
	}

	excluding := make(map[Address]struct{}, len(flapperAddrs))
	for _, a := range flapperAddrs {
		excluding[a] = struct{}{}
	}

	observers := c.membership.GetRandomPingableMembers(c.cfg.NVal, excluding)

	rVal := c.cfg.RVal
	if len(observers) < rVal {
		rVal = len(observers)
	}

	if rVal == 0 {
		c.publish(Event{Kind: DampReqUnsatisfiedEvent, Flappers: flapperAddrs})
		incrCounter(metricUnsatisfied)
		log.Warn("no observers available, skipping round", nil)
		return
	}

	incrCounter(metricInitiated)

	observerAddrs := make([]Address, 0, len(observers))
	for _, o := range observers {
		observerAddrs = append(observerAddrs, o.Address())
	}
	c.publish(Event{Kind: DampingInProgressEvent, Flappers: flapperAddrs, Observers: observerAddrs, RVal: rVal})

	done := make(chan struct{})

	Fanout(context.Background(), c.transport, c.membership, log, flapperAddrs, observers, rVal,
		func(res FanoutResult, err error) {
			defer close(done)
			c.handleFanoutResult(flapperAddrs, observerAddrs, rVal, res, err, log)
		})

	<-done

	if outerCallback != nil {
		outerCallback()
	}
}

func (c *Controller) handleFanoutResult(flapperAddrs, observerAddrs []Address, rVal int, res FanoutResult, err error, log logging.Logger) {
	if err != nil {
		c.publish(Event{Kind: DampReqFailedEvent, Flappers: flapperAddrs, Observers: observerAddrs, RVal: rVal, Err: err})
		incrCounter(metricQuorumFailed)
		log.Warn("damp-request fan-out failed", logging.Fields{"error": err.Error()})
		return
	}

	decided := DecideDamped(res.Successes, rVal, c.cfg.SuppressLimit)

	if len(decided) == 0 {
		c.publish(Event{Kind: DampingUnconfirmedEvent, Flappers: flapperAddrs, Observers: observerAddrs, RVal: rVal, Results: res.Successes})
		log.Info("damping round inconclusive", nil)
		return
	}

	for _, addr := range decided {
		c.membership.MakeDamped(addr)
		c.flappers.RemoveFlapper(addr)
		c.damped.Commit(addr)
	}
	incrCounter(metricCommitted)

	c.publish(Event{Kind: DampedEvent, Flappers: decided, Observers: observerAddrs, RVal: rVal, Results: res.Successes})
	log.Info("committed members to damped set", logging.Fields{"count": len(decided)})
}
