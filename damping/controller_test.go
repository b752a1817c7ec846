package damping_test

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dachinzo/ringpop-node/damping"
	"github.com/dachinzo/ringpop-node/logging"
)

type recordingSubscriber struct {
	events []damping.Event
}

func (r *recordingSubscriber) OnDampingEvent(e damping.Event) {
	r.events = append(r.events, e)
}

func (r *recordingSubscriber) kinds() []damping.EventKind {
	var out []damping.EventKind
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

var _ = Describe("Controller", func() {
	var (
		clock     *fakeClock
		members   *fakeMembership
		transport *scriptedTransport
		cfg       damping.Config
	)

	BeforeEach(func() {
		clock = newFakeClock(time.Unix(0, 0))
		transport = newScriptedTransport()
		cfg = damping.DefaultConfig()
		cfg.NVal = 2
		cfg.RVal = 2
		cfg.TimerInterval = time.Second
		cfg.ExpirationInterval = time.Second
		cfg.SuppressDuration = time.Minute
		cfg.MaxPercentage = 0.5
		cfg.SuppressLimit = 100
	})

	It("damps a member once both observers agree, and emits DampedEvent (scenario: commit)", func() {
		members = newFakeMembership([]fakeMember{
			{addr: "o1:1"}, {addr: "o2:1"},
		}, 10)
		transport.on("o1:1", func() (damping.Response, error) {
			return damping.Response{Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 120}}}, nil
		})
		transport.on("o2:1", func() (damping.Response, error) {
			return damping.Response{Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 130}}}, nil
		})

		ctrl := damping.NewController(cfg, members, transport, clock, logging.Nop())
		sub := &recordingSubscriber{}
		ctrl.Subscribe(sub)

		done := make(chan struct{})
		ctrl.InitiateSubprotocol([]damping.Address{"flap:1"}, func() { close(done) })

		Eventually(done, time.Second).Should(BeClosed())
		Expect(members.isDamped("flap:1")).To(BeTrue())
		Expect(sub.kinds()).To(ContainElement(damping.DampedEvent))
		Expect(ctrl.Damped().Contains("flap:1")).To(BeTrue())
	})

	It("does not damp and emits DampingUnconfirmedEvent when scores disagree", func() {
		members = newFakeMembership([]fakeMember{
			{addr: "o1:1"}, {addr: "o2:1"},
		}, 10)
		transport.on("o1:1", func() (damping.Response, error) {
			return damping.Response{Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 120}}}, nil
		})
		transport.on("o2:1", func() (damping.Response, error) {
			return damping.Response{Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 10}}}, nil
		})

		ctrl := damping.NewController(cfg, members, transport, clock, logging.Nop())
		sub := &recordingSubscriber{}
		ctrl.Subscribe(sub)

		done := make(chan struct{})
		ctrl.InitiateSubprotocol([]damping.Address{"flap:1"}, func() { close(done) })

		Eventually(done, time.Second).Should(BeClosed())
		Expect(members.isDamped("flap:1")).To(BeFalse())
		Expect(sub.kinds()).To(ContainElement(damping.DampingUnconfirmedEvent))
	})

	It("skips the round and emits DampedLimitExceededEvent once the cluster cap is hit (I2)", func() {
		members = newFakeMembership([]fakeMember{{addr: "o1:1"}, {addr: "o2:1"}}, 2)
		members.MakeDamped("already:1")

		ctrl := damping.NewController(cfg, members, transport, clock, logging.Nop())
		sub := &recordingSubscriber{}
		ctrl.Subscribe(sub)

		ctrl.InitiateSubprotocol([]damping.Address{"flap:1"}, nil)

		Eventually(func() []damping.EventKind { return sub.kinds() }, time.Second).
			Should(ContainElement(damping.DampedLimitExceededEvent))
	})

	It("emits DampReqUnsatisfiedEvent when no observers are available", func() {
		members = newFakeMembership(nil, 10)

		ctrl := damping.NewController(cfg, members, transport, clock, logging.Nop())
		sub := &recordingSubscriber{}
		ctrl.Subscribe(sub)

		ctrl.InitiateSubprotocol([]damping.Address{"flap:1"}, nil)

		Eventually(func() []damping.EventKind { return sub.kinds() }, time.Second).
			Should(ContainElement(damping.DampReqUnsatisfiedEvent))
	})

	It("arms the damp timer on the first AddFlapper and stops it on Stop", func() {
		members = newFakeMembership([]fakeMember{{addr: "o1:1"}, {addr: "o2:1"}}, 10)
		transport.on("o1:1", func() (damping.Response, error) { return damping.Response{}, nil })
		transport.on("o2:1", func() (damping.Response, error) { return damping.Response{}, nil })

		ctrl := damping.NewController(cfg, members, transport, clock, logging.Nop())
		ctrl.AddFlapper("flap:1")

		Expect(ctrl.Flappers().Count()).To(Equal(1))

		ctrl.Stop()
		clock.Advance(2 * time.Second)
		// No panics/deadlocks from a fired-but-stopped timer is the assertion.
	})

	It("releases a damped member on the first expiration tick after its suppress duration elapses", func() {
		members = newFakeMembership(nil, 10)
		ctrl := damping.NewController(cfg, members, transport, clock, logging.Nop())

		ctrl.Damped().Commit("flap:1")
		Expect(ctrl.Damped().Contains("flap:1")).To(BeTrue())

		clock.Advance(cfg.SuppressDuration)
		clock.Advance(cfg.ExpirationInterval)

		Expect(ctrl.Damped().Contains("flap:1")).To(BeFalse())
	})
})

var _ = Describe("Handler", func() {
	It("reports scores only for flappers known to the membership table", func() {
		members := newFakeMembership([]fakeMember{{addr: "flap:1", score: 80}}, 10)
		h := damping.NewHandler(members, logging.Nop())

		resp, err := h.HandleDampRequest("self:1", []damping.Address{"flap:1", "unknown:1"})

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Scores).To(Equal([]damping.Score{{MemberAddress: "flap:1", DampScore: 80}}))
	})

	It("rejects a request naming no flappers", func() {
		members := newFakeMembership(nil, 10)
		h := damping.NewHandler(members, logging.Nop())

		_, err := h.HandleDampRequest("self:1", nil)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("TracingSubscriber", func() {
	It("does not panic with a no-op tracer provider", func() {
		ts := damping.NewTracingSubscriber(context.Background(), otel.Tracer("damping_test"))
		Expect(func() {
			ts.OnDampingEvent(damping.Event{Kind: damping.DampedEvent, RVal: 2})
		}).NotTo(Panic())
	})
})
