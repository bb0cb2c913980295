package probe

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("logicalPosition", func() {
	It("should rank the reference worker as zero", func() {
		Expect(logicalPosition(3, 3, 8)).To(Equal(0))
	})

	It("should wrap around the worker count", func() {
		Expect(logicalPosition(0, 3, 8)).To(Equal(5))
		Expect(logicalPosition(7, 3, 8)).To(Equal(4))
		Expect(logicalPosition(4, 3, 8)).To(Equal(1))
	})

	It("should be a permutation of the workers", func() {
		const n = 6
		const from = 4

		seen := make(map[int]bool)
		for me := 0; me < n; me++ {
			pos := logicalPosition(me, from, n)
			Expect(pos).To(BeNumerically(">=", 0))
			Expect(pos).To(BeNumerically("<", n))
			seen[pos] = true
		}

		Expect(seen).To(HaveLen(n))
	})
})

var _ = Describe("sharingRole", func() {
	It("should always make logical position zero the active worker", func() {
		for sharing := 1; sharing < 8; sharing++ {
			Expect(sharingRole(0, sharing)).To(Equal(roleActive))
		}
	})

	It("should make the position at the sharing count the setup owner", func() {
		Expect(sharingRole(1, 1)).To(Equal(roleSetupOwner))
		Expect(sharingRole(3, 3)).To(Equal(roleSetupOwner))
	})

	It("should fill the positions below the sharing count with setup", func() {
		Expect(sharingRole(1, 3)).To(Equal(roleSetup))
		Expect(sharingRole(2, 3)).To(Equal(roleSetup))
	})

	It("should idle the positions above the sharing count", func() {
		Expect(sharingRole(4, 3)).To(Equal(roleNothing))
		Expect(sharingRole(7, 3)).To(Equal(roleNothing))
	})

	It("should assign exactly one active and one owner per step", func() {
		const n = 8
		for sharing := 1; sharing < n; sharing++ {
			var active, owner, setup int
			for pos := 0; pos < n; pos++ {
				switch sharingRole(pos, sharing) {
				case roleActive:
					active++
				case roleSetupOwner:
					owner++
				case roleSetup:
					setup++
				}
			}

			Expect(active).To(Equal(1))
			Expect(owner).To(Equal(1))
			// Owner and setup workers together hold the line in
			// `sharing` caches.
			Expect(setup).To(Equal(sharing - 1))
		}
	})

	It("should have a plan for every role", func() {
		for _, r := range []role{
			roleActive, roleSetup, roleSetupOwner, roleNothing,
		} {
			_, exists := sharingPlans[r]
			Expect(exists).To(BeTrue())
		}
	})
})

var _ = Describe("visibilityRole", func() {
	It("should always make logical position zero the writer", func() {
		for sharing := 1; sharing < 8; sharing++ {
			Expect(visibilityRole(0, sharing)).To(Equal(watchActive))
		}
	})

	It("should poll on the positions up to and including the count", func() {
		Expect(visibilityRole(1, 3)).To(Equal(watchPolling))
		Expect(visibilityRole(3, 3)).To(Equal(watchPolling))
	})

	It("should idle the positions above the count", func() {
		Expect(visibilityRole(4, 3)).To(Equal(watchNothing))
	})

	It("should give every step exactly sharing pollers", func() {
		const n = 8
		for sharing := 1; sharing < n; sharing++ {
			pollers := 0
			for pos := 0; pos < n; pos++ {
				if visibilityRole(pos, sharing) == watchPolling {
					pollers++
				}
			}

			Expect(pollers).To(Equal(sharing))
		}
	})
})
