package damping_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dachinzo/ringpop-node/damping"
	"github.com/dachinzo/ringpop-node/logging"
)

var _ = Describe("DampedSet", func() {
	var (
		clock   *fakeClock
		members *fakeMembership
	)

	BeforeEach(func() {
		clock = newFakeClock(time.Unix(0, 0))
		members = newFakeMembership(nil, 10)
	})

	It("fires onNonEmpty exactly once on the 0->1 transition", func() {
		fired := 0
		d := damping.NewDampedSet(time.Minute, clock, members, logging.Nop(), func() { fired++ })

		d.Commit("a:1")
		d.Commit("b:1")

		Expect(fired).To(Equal(1))
		Expect(d.Count()).To(Equal(2))
	})

	It("refreshes rather than duplicates an existing entry (L3)", func() {
		d := damping.NewDampedSet(time.Minute, clock, members, logging.Nop(), func() {})

		d.Commit("a:1")
		clock.Advance(30 * time.Second)
		d.Commit("a:1")

		Expect(d.Count()).To(Equal(1))

		clock.Advance(45 * time.Second)
		released := d.ExpireTick()
		Expect(released).To(BeEmpty(), "refreshed entry should not have expired yet")
	})

	It("releases entries whose suppress duration has elapsed", func() {
		d := damping.NewDampedSet(time.Minute, clock, members, logging.Nop(), func() {})

		d.Commit("a:1")
		clock.Advance(time.Minute)

		released := d.ExpireTick()
		Expect(released).To(ConsistOf(damping.Address("a:1")))
		Expect(d.IsEmpty()).To(BeTrue())
	})

	It("correctly reports empty by comparing length, not identity (Q1)", func() {
		d := damping.NewDampedSet(time.Minute, clock, members, logging.Nop(), func() {})
		Expect(d.IsEmpty()).To(BeTrue())

		d.Commit("a:1")
		Expect(d.IsEmpty()).To(BeFalse())

		clock.Advance(time.Minute)
		d.ExpireTick()
		Expect(d.IsEmpty()).To(BeTrue())
	})

	It("delegates Percentage to Membership", func() {
		members.MakeDamped("a:1")
		members.MakeDamped("b:1")
		d := damping.NewDampedSet(time.Minute, clock, members, logging.Nop(), func() {})

		Expect(d.Percentage()).To(BeNumerically("==", 0.2))
	})
})
