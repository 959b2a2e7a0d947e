package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Network", func() {
	var net *Network

	BeforeEach(func() {
		net = NewNetwork()
		net.SetDeltaTime(0.1)
	})

	Describe("Step ordering", func() {
		It("delivers a delayed spike at the first step whose currentTime >= t0+delay", func() {
			source := net.AddNeuron(DefaultNeuronConfig())
			// A delivered weight of 2.0 is a 2.0pA input for one 0.1ms step,
			// raising V by 1e-5mV; the threshold sits just inside that.
			target := net.AddNeuron(NeuronConfig{
				Threshold:              -69.999995,
				RestingPotential:       -70,
				ResetPotential:         -70,
				MembraneTau:            20,
				RefractoryPeriod:       2,
				Capacitance:            100,
				Resistance:             200,
				AdaptationTimeConstant: 100,
				AdaptationIncrement:    0,
			})

			plasticity := DefaultPlasticity()
			plasticity.Enabled = false
			_, err := net.AddSynapse(SynapseSpec{
				FromIndex:  source,
				ToIndex:    target,
				Weight:     2.0,
				Delay:      5,
				Plasticity: plasticity,
			})
			Expect(err).NotTo(HaveOccurred())

			// Drive the source neuron hard enough that it spikes on the
			// very first step, at currentTime == deltaTime == 0.1ms.
			injected := make([]float64, 2)
			injected[0] = 1e9
			net.Step(injected)
			Expect(net.Neurons()[source].FiredThisStep()).To(BeTrue())
			spikeTime := net.CurrentTime()

			targetFiredAt := -1.0
			for i := 0; i < 200; i++ {
				net.Step(make([]float64, 2))
				if net.Neurons()[target].FiredThisStep() {
					targetFiredAt = net.CurrentTime()
					break
				}
			}

			Expect(targetFiredAt).To(BeNumerically(">=", spikeTime+5.0))
			Expect(targetFiredAt).To(BeNumerically("<", spikeTime+5.0+0.1+1e-9))
		})
	})

	Describe("STDP", func() {
		It("never changes weight when globally disabled", func() {
			a := net.AddNeuron(DefaultNeuronConfig())
			b := net.AddNeuron(DefaultNeuronConfig())
			syn, _ := net.AddSynapse(SynapseSpec{
				FromIndex: a, ToIndex: b, Weight: 0.5, Delay: 1,
				Plasticity: DefaultPlasticity(),
			})

			net.GlobalPlasticityEnabled = false

			for i := 0; i < 500; i++ {
				injected := make([]float64, 2)
				injected[0] = 300
				net.Step(injected)
			}

			Expect(syn.Weight()).To(Equal(0.5))
		})

		It("monotonically potentiates an LTP-only edge when post reliably follows pre", func() {
			a := net.AddNeuron(DefaultNeuronConfig())
			b := net.AddNeuron(DefaultNeuronConfig())

			plasticity := Plasticity{
				Enabled: true, APlus: 0.02, AMinus: 0, TauPlus: 20, TauMinus: 20,
				Mode: ModeTrace,
			}
			syn, _ := net.AddSynapse(SynapseSpec{
				FromIndex: a, ToIndex: b, Weight: 0.3, Delay: 1, Plasticity: plasticity,
			})

			weights := []float64{syn.Weight()}
			for rep := 0; rep < 30; rep++ {
				for i := 0; i < 50; i++ {
					injected := make([]float64, 2)
					if i == 10 {
						injected[0] = 1e9
					}
					if i == 15 {
						injected[1] = 1e9
					}
					net.Step(injected)
				}
				weights = append(weights, syn.Weight())
			}

			for i := 1; i < len(weights); i++ {
				Expect(weights[i]).To(BeNumerically(">=", weights[i-1]-1e-9))
			}
			Expect(weights[len(weights)-1]).To(BeNumerically(">", weights[0]))
			Expect(weights[len(weights)-1]).To(BeNumerically("<", 2.0))
		})
	})

	Describe("Reset", func() {
		It("round-trips a cortical column to its construction state", func() {
			b := NewTopologyBuilder(net, nil)
			b.CorticalColumn([]int{4, 6, 4, 2})

			for i := 0; i < 2000; i++ {
				injected := make([]float64, len(net.Neurons()))
				for j := range injected {
					injected[j] = 50
				}
				net.Step(injected)
			}

			net.Reset()

			Expect(net.CurrentTime()).To(Equal(0.0))
			for _, n := range net.Neurons() {
				Expect(n.MembranePotential()).To(Equal(n.Config().RestingPotential))
			}
			for _, s := range net.Synapses() {
				Expect(s.Weight()).To(Equal(s.WeightHistory()[0]))
				Expect(s.WeightHistory()).To(HaveLen(1))
			}
		})

		It("is idempotent", func() {
			net.AddNeuron(DefaultNeuronConfig())
			net.Step(make([]float64, 1))
			net.Reset()
			snap1 := net.GetNetworkStats()
			net.Reset()
			snap2 := net.GetNetworkStats()
			Expect(snap1).To(Equal(snap2))
		})
	})

	Describe("Homeostasis", func() {
		It("keeps thresholds within [-60,-40]mV while driving rate toward target", func() {
			b := NewTopologyBuilder(net, nil)
			b.Ring(8)

			net.HomeostasisEnabled = true
			net.TargetFiringRate = 10

			for i := 0; i < 100000; i++ {
				injected := make([]float64, len(net.Neurons()))
				for j := range injected {
					injected[j] = 400
				}
				net.Step(injected)
			}

			for _, n := range net.Neurons() {
				Expect(n.Config().Threshold).To(BeNumerically(">=", -60.0))
				Expect(n.Config().Threshold).To(BeNumerically("<=", -40.0))
			}
		})
	})
})
