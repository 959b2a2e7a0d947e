package engine

import "math"

// spikeHistoryCapacity and voltageHistoryCapacity bound the ring buffers
// kept per neuron.
const (
	spikeHistoryCapacity   = 200
	voltageHistoryCapacity = 200

	// voltageClampBound is the large-but-finite range the membrane
	// potential is clamped to after integration, so pathological inputs
	// saturate rather than propagate NaN/Inf.
	voltageClampBound = 1e6
)

// NeuronConfig holds the construction-time parameters of a LIF neuron.
// All fields are immutable after construction except Threshold, which
// the Network's homeostatic controller may adjust.
type NeuronConfig struct {
	Threshold               float64 // mV
	RestingPotential        float64 // mV
	ResetPotential          float64 // mV
	MembraneTau             float64 // ms
	RefractoryPeriod        float64 // ms
	Capacitance             float64 // pF
	Resistance              float64 // MΩ
	AdaptationTimeConstant  float64 // ms
	AdaptationIncrement     float64
}

// DefaultNeuronConfig returns a typical cortical-scale parameter set.
func DefaultNeuronConfig() NeuronConfig {
	return NeuronConfig{
		Threshold:              -50,
		RestingPotential:       -70,
		ResetPotential:         -70,
		MembraneTau:            20,
		RefractoryPeriod:       2,
		Capacitance:            100,
		Resistance:             200,
		AdaptationTimeConstant: 100,
		AdaptationIncrement:    0.5,
	}
}

// Neuron is a single-compartment leaky integrate-and-fire unit.
type Neuron struct {
	HookableBase

	config NeuronConfig

	membranePotential float64
	adaptationCurrent float64
	firedThisStep     bool
	refractoryUntil   float64
	lastSpikeTime     float64

	spikeHistory   *ringBuffer[float64]
	voltageHistory *ringBuffer[float64]

	totalSpikes uint64
}

// NewNeuron constructs a Neuron at resting potential, enforcing the
// invariant resetPotential <= restingPotential <= threshold.
func NewNeuron(config NeuronConfig) *Neuron {
	if !(config.ResetPotential <= config.RestingPotential &&
		config.RestingPotential <= config.Threshold) {
		panic("engine: neuron config violates resetPotential <= restingPotential <= threshold")
	}

	n := &Neuron{
		config:            config,
		membranePotential: config.RestingPotential,
		spikeHistory:      newRingBuffer[float64](spikeHistoryCapacity),
		voltageHistory:    newRingBuffer[float64](voltageHistoryCapacity),
	}

	return n
}

// Config returns the neuron's current configuration. Threshold may have
// drifted from construction if homeostasis is enabled on the owning
// Network.
func (n *Neuron) Config() NeuronConfig {
	return n.config
}

// SetThreshold is used exclusively by the Network's homeostatic
// controller; it is not part of the neuron's own dynamics.
func (n *Neuron) SetThreshold(threshold float64) {
	n.config.Threshold = threshold
}

// MembranePotential returns the current membrane potential in mV.
func (n *Neuron) MembranePotential() float64 {
	return n.membranePotential
}

// FiredThisStep reports whether the most recent Step call produced a
// spike.
func (n *Neuron) FiredThisStep() bool {
	return n.firedThisStep
}

// LastSpikeTime returns the simulated time of the most recent spike.
func (n *Neuron) LastSpikeTime() float64 {
	return n.lastSpikeTime
}

// TotalSpikes returns the cumulative spike count since construction or
// the last Reset.
func (n *Neuron) TotalSpikes() uint64 {
	return n.totalSpikes
}

// SpikeHistory returns the bounded spike-time history, oldest first.
func (n *Neuron) SpikeHistory() []float64 {
	return n.spikeHistory.values()
}

// VoltageHistory returns the bounded membrane-potential history, oldest
// first.
func (n *Neuron) VoltageHistory() []float64 {
	return n.voltageHistory.values()
}

// IsInRefractoryPeriod reports whether t falls inside the neuron's
// refractory window.
func (n *Neuron) IsInRefractoryPeriod(t float64) bool {
	return t < n.refractoryUntil
}

// Step advances the neuron by one time step: refractory check, current
// integration, adaptation decay, voltage history, threshold crossing,
// spike bookkeeping and reset. Returns whether the neuron fired.
func (n *Neuron) Step(inputCurrent, deltaTime, currentTime float64) bool {
	n.firedThisStep = false

	if n.IsInRefractoryPeriod(currentTime) {
		n.membranePotential = n.config.ResetPotential
		return false
	}

	effectiveCurrent := inputCurrent - n.adaptationCurrent

	dVdt := (n.config.RestingPotential-n.membranePotential)/n.config.MembraneTau +
		effectiveCurrent/(n.config.Capacitance*n.config.Resistance)
	n.membranePotential += dVdt * deltaTime
	n.membranePotential = clamp(n.membranePotential, -voltageClampBound, voltageClampBound)

	n.adaptationCurrent *= math.Exp(-deltaTime / n.config.AdaptationTimeConstant)

	n.voltageHistory.push(n.membranePotential)

	if n.membranePotential >= n.config.Threshold {
		n.firedThisStep = true
		n.lastSpikeTime = currentTime
		n.refractoryUntil = currentTime + n.config.RefractoryPeriod
		n.membranePotential = n.config.ResetPotential
		n.adaptationCurrent += n.config.AdaptationIncrement
		n.totalSpikes++
		n.spikeHistory.push(currentTime)

		if n.NumHooks() > 0 {
			n.InvokeHook(HookCtx{Domain: n, Pos: HookPosSpike, Item: currentTime})
		}
	}

	return n.firedThisStep
}

// Reset restores construction-time state: resting potential, zeroed
// counters, empty histories.
func (n *Neuron) Reset() {
	n.membranePotential = n.config.RestingPotential
	n.adaptationCurrent = 0
	n.firedThisStep = false
	n.refractoryUntil = 0
	n.lastSpikeTime = 0
	n.totalSpikes = 0
	n.spikeHistory.clear()
	n.voltageHistory.clear()
}

// InstantaneousFiringRate computes a rate in Hz from the last up-to-10
// spike-history entries. Returns 0 with fewer than two spikes on record.
func (n *Neuron) InstantaneousFiringRate() float64 {
	recent := n.spikeHistory.lastN(10)
	if len(recent) < 2 {
		return 0
	}

	span := recent[len(recent)-1] - recent[0]
	intervals := float64(len(recent) - 1)
	meanISI := span / intervals
	if meanISI <= 0 {
		return 0
	}

	return 1000 / meanISI
}

// MembranePotentialNormalized maps the membrane potential onto [0,1]
// relative to resting potential and threshold.
func (n *Neuron) MembranePotentialNormalized() float64 {
	span := n.config.Threshold - n.config.RestingPotential
	if span == 0 {
		return 0
	}

	v := (n.membranePotential - n.config.RestingPotential) / span
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
