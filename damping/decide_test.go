package damping_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dachinzo/ringpop-node/damping"
)

var _ = Describe("DecideDamped", func() {
	It("damps a member when every reporting observer is at or above the limit and quorum is reached", func() {
		responses := []damping.Response{
			{Observer: "obs1", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 120}}},
			{Observer: "obs2", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 100}}},
			{Observer: "obs3", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 150}}},
		}

		Expect(damping.DecideDamped(responses, 3, 100)).To(ConsistOf(damping.Address("flap:1")))
	})

	It("withholds damping when quorum is reached but one score is below the limit", func() {
		responses := []damping.Response{
			{Observer: "obs1", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 120}}},
			{Observer: "obs2", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 40}}},
			{Observer: "obs3", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 150}}},
		}

		Expect(damping.DecideDamped(responses, 3, 100)).To(BeEmpty())
	})

	It("withholds damping when fewer than rVal observers reported on a member", func() {
		responses := []damping.Response{
			{Observer: "obs1", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 120}}},
			{Observer: "obs2", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 150}}},
		}

		Expect(damping.DecideDamped(responses, 3, 100)).To(BeEmpty())
	})

	It("never returns an address absent from every response (P4)", func() {
		responses := []damping.Response{
			{Observer: "obs1", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 120}}},
		}

		decided := damping.DecideDamped(responses, 1, 100)
		Expect(decided).To(ConsistOf(damping.Address("flap:1")))
		Expect(decided).NotTo(ContainElement(damping.Address("flap:2")))
	})

	It("is order-independent over the multiset of responses (P3)", func() {
		a := []damping.Response{
			{Observer: "obs1", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 120}}},
			{Observer: "obs2", Scores: []damping.Score{{MemberAddress: "flap:1", DampScore: 150}}},
		}
		b := []damping.Response{a[1], a[0]}

		Expect(damping.DecideDamped(a, 2, 100)).To(Equal(damping.DecideDamped(b, 2, 100)))
	})

	It("decides independently across distinct members in the same round", func() {
		responses := []damping.Response{
			{Observer: "obs1", Scores: []damping.Score{
				{MemberAddress: "flap:1", DampScore: 120},
				{MemberAddress: "flap:2", DampScore: 10},
			}},
			{Observer: "obs2", Scores: []damping.Score{
				{MemberAddress: "flap:1", DampScore: 130},
				{MemberAddress: "flap:2", DampScore: 20},
			}},
		}

		Expect(damping.DecideDamped(responses, 2, 100)).To(ConsistOf(damping.Address("flap:1")))
	})
})
