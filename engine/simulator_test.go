package engine

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("stepsPerFrame", func() {
	It("clamps to [1,100] and scales with speed", func() {
		Expect(stepsPerFrame(10, 0.1)).To(BeNumerically("==", 100))
		Expect(stepsPerFrame(1, 0.1)).To(BeNumerically(">=", 1))
		Expect(stepsPerFrame(100, 0.001)).To(Equal(100))
	})
})

var _ = Describe("Simulator", func() {
	var (
		net *Network
		sim *Simulator
	)

	BeforeEach(func() {
		net = NewNetwork()
		net.AddNeuron(DefaultNeuronConfig())
	})

	It("notifies the observer while playing and stops notifying after pause", func() {
		notifications := 0
		sim = NewSimulator(net, func(n *Network, t float64) {
			notifications++
		}, 50)

		sim.Play()
		Eventually(func() int { return notifications }, "500ms", "10ms").Should(BeNumerically(">=", 1))

		sim.Pause()
		afterPause := notifications
		time.Sleep(100 * time.Millisecond)
		Expect(notifications).To(Equal(afterPause))
	})

	It("zeroes time and resets the network on Reset", func() {
		sim = NewSimulator(net, func(n *Network, t float64) {}, 50)
		sim.Play()
		Eventually(func() float64 { return net.CurrentTime() }, "500ms", "10ms").Should(BeNumerically(">", 0))

		sim.Reset()
		Expect(net.CurrentTime()).To(Equal(0.0))
	})

	It("accepts pattern/strength/noise changes while not running", func() {
		sim = NewSimulator(net, func(n *Network, t float64) {}, 10)
		sim.SetInputPattern(PatternPoisson)
		sim.SetInputStrength(2.0)
		sim.SetNoiseLevel(0.5)
		Expect(sim.pattern).To(Equal(PatternPoisson))
		Expect(sim.inputStrength).To(Equal(2.0))
		Expect(sim.noiseLevel).To(Equal(0.5))
	})
})
