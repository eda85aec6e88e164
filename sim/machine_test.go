package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stepReference advances the machine through one complete reference,
// returning true when the reference was a hit. It must not be called on a
// machine that is already done.
func stepReference(m *Machine) bool {
	hit := false

	start := m.RefIndex()
	for m.RefIndex() == start && !m.Done() {
		m.Step()
		if m.State() == StateHit {
			hit = true
		}
	}

	return hit
}

// runUntilDone steps the machine until it reports completion, returning the
// number of Step calls made.
func runUntilDone(m *Machine) int {
	count := 0
	for !m.Done() {
		m.Step()
		count++
	}

	return count
}

func expectNoDuplicateResidency(m *Machine) {
	seen := make(map[string]bool)
	for _, p := range m.Pages() {
		if p == NoPage {
			continue
		}

		Expect(seen[p]).To(BeFalse(),
			"page %s occupies two frames", p)
		seen[p] = true
	}
}

var _ = Describe("Machine", func() {
	It("should walk a miss, a miss, and a hit one micro-step at a time",
		func() {
			m := NewMachine(2, []string{"a", "b", "a"})

			Expect(m.State()).To(Equal(StateStart))
			Expect(m.Output().Category).To(Equal(CategoryInfo))

			m.Step()
			Expect(m.State()).To(Equal(StateCheckHit))
			Expect(m.Output().Message).To(Equal("Accessing page a"))
			Expect(m.Output().HighlightFrame).To(Equal(-1))

			m.Step()
			Expect(m.State()).To(Equal(StateFaultStartSearch))
			Expect(m.Output().Category).To(Equal(CategoryFault))
			Expect(m.Faults()).To(Equal(1))
			Expect(m.Hits()).To(Equal(0))

			m.Step()
			Expect(m.State()).To(Equal(StateFaultCheckBit))
			Expect(m.Output().Message).
				To(Equal("Searching for a victim, hand at frame 0"))
			Expect(m.Output().HighlightFrame).To(Equal(0))
			Expect(m.Output().HighlightColor).To(Equal(ColorOrange))

			m.Step()
			Expect(m.State()).To(Equal(StateFaultReplace))
			Expect(m.Output().Message).
				To(Equal("Frame 0 use bit is 0, victim found"))

			m.Step()
			Expect(m.State()).To(Equal(StateStart))
			Expect(m.Output().Message).
				To(Equal("Loaded page a into empty frame 0"))
			Expect(m.Output().HighlightColor).To(Equal(ColorRed))
			Expect(m.Pointer()).To(Equal(1))
			Expect(m.RefIndex()).To(Equal(1))
			Expect(m.Pages()).To(Equal([]string{"a", NoPage}))
			Expect(m.UseBits()).To(Equal([]bool{true, false}))

			for i := 0; i < 5; i++ {
				m.Step()
			}
			Expect(m.State()).To(Equal(StateStart))
			Expect(m.Pages()).To(Equal([]string{"a", "b"}))
			Expect(m.Pointer()).To(Equal(0))
			Expect(m.Faults()).To(Equal(2))

			m.Step()
			Expect(m.Output().Message).To(Equal("Accessing page a"))

			m.Step()
			Expect(m.State()).To(Equal(StateHit))
			Expect(m.Hits()).To(Equal(1))
			Expect(m.Faults()).To(Equal(2))
			Expect(m.UseBits()).To(Equal([]bool{true, true}))
			Expect(m.Output().Category).To(Equal(CategoryHit))
			Expect(m.Output().HighlightFrame).To(Equal(0))
			Expect(m.Output().HighlightColor).To(Equal(ColorGreen))

			hitOutput := m.Output()
			m.Step()
			Expect(m.State()).To(Equal(StateStart))
			Expect(m.RefIndex()).To(Equal(3))
			Expect(m.Output()).To(Equal(hitOutput))
		})

	It("should finish the stream and treat further steps as no-ops", func() {
		m := NewMachine(2, []string{"a"})
		runUntilDone(m)

		Expect(m.State()).To(Equal(StateDone))
		Expect(m.CurrentPage()).To(Equal(NoPage))
		Expect(m.Output().Message).To(Equal("Reference stream finished"))

		hits, faults := m.Hits(), m.Faults()
		pages := m.Pages()

		m.Step()
		Expect(m.State()).To(Equal(StateDone))
		Expect(m.Output().Message).To(Equal("Simulation complete"))
		Expect(m.Output().Category).To(Equal(CategoryInfo))
		Expect(m.Hits()).To(Equal(hits))
		Expect(m.Faults()).To(Equal(faults))
		Expect(m.Pages()).To(Equal(pages))

		m.Step()
		Expect(m.Output().Message).To(Equal("Simulation complete"))
	})

	It("should replace into an empty frame without clearing any bit", func() {
		m := NewMachine(4, []string{"p"})

		setBitZeroSeen := false
		for !m.Done() {
			m.Step()
			if m.State() == StateFaultSetBitZero {
				setBitZeroSeen = true
			}
		}

		Expect(setBitZeroSeen).To(BeFalse())
		Expect(m.Pages()).To(Equal([]string{"p", NoPage, NoPage, NoPage}))
	})

	It("should give second chances by clearing use bits during the scan",
		func() {
			m := NewMachine(2, []string{"x", "y", "x", "y", "z"})
			for i := 0; i < 4; i++ {
				stepReference(m)
			}

			Expect(m.UseBits()).To(Equal([]bool{true, true}))
			Expect(m.Pointer()).To(Equal(0))

			m.Step() // access z
			m.Step() // miss
			m.Step() // start search at frame 0

			m.Step()
			Expect(m.State()).To(Equal(StateFaultSetBitZero))
			Expect(m.Output().Message).
				To(Equal("Frame 0 use bit is 1, second chance"))

			m.Step()
			Expect(m.State()).To(Equal(StateFaultCheckBit))
			Expect(m.Output().Message).To(
				Equal("Cleared use bit of frame 0, hand moves to frame 1"))
			Expect(m.UseBits()).To(Equal([]bool{false, true}))

			m.Step() // frame 1 bit is 1
			m.Step() // clear it, hand wraps to frame 0
			Expect(m.UseBits()).To(Equal([]bool{false, false}))
			Expect(m.Pointer()).To(Equal(0))

			m.Step()
			Expect(m.State()).To(Equal(StateFaultReplace))

			m.Step()
			Expect(m.Output().Message).
				To(Equal("Evicted page x, loaded page z into frame 0"))
			Expect(m.Pages()).To(Equal([]string{"z", "y"}))
			Expect(m.UseBits()).To(Equal([]bool{true, false}))
			Expect(m.Pointer()).To(Equal(1))
		})

	It("should bound every fault scan by the frame count", func() {
		m := NewMachine(3, []string{"1", "2", "3", "4", "1", "2", "5"})
		numFrames := m.NumFrames()

		scanSteps := 0
		scanning := false
		for !m.Done() {
			m.Step()

			switch m.State() {
			case StateFaultCheckBit:
				if !scanning {
					scanning = true
					scanSteps = 0
				}
				scanSteps++
			case StateFaultSetBitZero:
				scanSteps++
			case StateFaultReplace:
				// The scan checks at most every frame once with a set bit
				// plus the final zero-bit victim.
				Expect(scanSteps).To(BeNumerically("<=", 2*numFrames+1))
				scanning = false
			}
		}
	})

	It("should keep at most one copy of a page resident", func() {
		m := NewMachine(3, []string{
			"1", "2", "1", "3", "4", "2", "4", "1", "5", "1", "2", "6",
		})

		for !m.Done() {
			m.Step()
			expectNoDuplicateResidency(m)
		}
	})

	It("should keep the hit ratio within bounds", func() {
		m := NewMachine(2, []string{"1", "2", "1", "3", "1", "2"})

		Expect(m.HitRatio()).To(Equal(0.0))

		for !m.Done() {
			m.Step()
			Expect(m.HitRatio()).To(BeNumerically(">=", 0.0))
			Expect(m.HitRatio()).To(BeNumerically("<=", 1.0))

			if m.Hits() == 0 {
				Expect(m.HitRatio()).To(Equal(0.0))
			} else {
				Expect(m.HitRatio()).To(BeNumerically(">", 0.0))
			}
		}
	})

	It("should be deterministic in its total step count", func() {
		run := func() int {
			m := NewMachine(3, []string{"1", "2", "3", "4", "1", "2", "5"})
			return runUntilDone(m)
		}

		first := run()
		Expect(run()).To(Equal(first))
	})

	Context("classic three-frame example", func() {
		// Hand-simulated from the transition table: every one of the
		// seven references misses. The fills take frames 0-2, then 4
		// evicts 1, 1 evicts 2, 2 evicts 3, and 5 clears all three use
		// bits before evicting 4.
		It("should fault on every reference", func() {
			m := NewMachine(3, []string{"1", "2", "3", "4", "1", "2", "5"})

			var hitPattern []bool
			for !m.Done() {
				hitPattern = append(hitPattern, stepReference(m))
			}
			// The terminal transition consumes no reference.
			hitPattern = hitPattern[:len(hitPattern)-1]

			Expect(hitPattern).To(Equal([]bool{
				false, false, false, false, false, false, false,
			}))
			Expect(m.Faults()).To(Equal(7))
			Expect(m.Hits()).To(Equal(0))
			Expect(m.Pages()).To(Equal([]string{"5", "1", "2"}))
			Expect(m.UseBits()).To(Equal([]bool{true, false, false}))
			Expect(m.Pointer()).To(Equal(1))
		})
	})

	Context("single frame, repeated page", func() {
		It("should fault once and then hit", func() {
			m := NewMachine(1, []string{"5", "5", "5"})
			runUntilDone(m)

			Expect(m.Faults()).To(Equal(1))
			Expect(m.Hits()).To(Equal(2))
			Expect(m.Pages()).To(Equal([]string{"5"}))
			Expect(m.Pointer()).To(Equal(0))
		})
	})

	Context("working set that fits in memory", func() {
		It("should only fault on the initial fills", func() {
			m := NewMachine(2, []string{"1", "2", "1", "2"})
			runUntilDone(m)

			Expect(m.Faults()).To(Equal(2))
			Expect(m.Hits()).To(Equal(2))
			Expect(m.Pages()).To(Equal([]string{"1", "2"}))
			Expect(m.UseBits()).To(Equal([]bool{true, true}))
			Expect(m.Pointer()).To(Equal(0))
		})
	})
})
