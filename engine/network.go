package engine

import (
	"fmt"
)

// networkActivityCapacity bounds Network.networkActivity.
const networkActivityCapacity = 1000

// synchronyWindow is how many recent activity samples synchronyIndex is
// computed from.
const synchronyWindow = 10

// pruningThreshold and pruningGraceMS back the structural synaptic
// pruning pass.
const (
	pruningThreshold = 0.01
	pruningGraceMS   = 1000
)

// Network owns the neuron sequence, the synapse sequence, and the
// in-flight event queue. Their lifetimes equal the Network's.
type Network struct {
	HookableBase

	neurons  []*Neuron
	synapses []*Synapse
	queue    *EventQueue

	currentTime float64
	deltaTime   float64

	GlobalPlasticityEnabled bool
	HomeostasisEnabled      bool
	TargetFiringRate        float64 // Hz

	// SynapticPruningEnabled gates the structural pruning pass. Disabled
	// by default; most topologies don't need structural plasticity.
	SynapticPruningEnabled bool

	networkActivity *ringBuffer[int]
	synchronyIndex   float64

	silentSince map[string]float64
}

// NewNetwork constructs an empty Network with sensible defaults:
// deltaTime = 0.1ms, plasticity enabled, homeostasis disabled.
func NewNetwork() *Network {
	return &Network{
		queue:                   NewEventQueue(),
		deltaTime:               0.1,
		GlobalPlasticityEnabled: true,
		TargetFiringRate:        10,
		networkActivity:         newRingBuffer[int](networkActivityCapacity),
		silentSince:             make(map[string]float64),
	}
}

// CurrentTime returns the simulated time in ms.
func (net *Network) CurrentTime() float64 {
	return net.currentTime
}

// DeltaTime returns the simulated step size in ms.
func (net *Network) DeltaTime() float64 {
	return net.deltaTime
}

// SetDeltaTime sets the simulated step size in ms.
func (net *Network) SetDeltaTime(dt float64) {
	net.deltaTime = dt
}

// SynchronyIndex returns the variance-to-mean ratio of recent network
// activity.
func (net *Network) SynchronyIndex() float64 {
	return net.synchronyIndex
}

// Neurons returns the index-addressed neuron sequence. The slice itself
// must not be mutated by callers; indices are stable for the Network's
// lifetime.
func (net *Network) Neurons() []*Neuron {
	return net.neurons
}

// Synapses returns the synapse sequence.
func (net *Network) Synapses() []*Synapse {
	return net.synapses
}

// AddNeuron appends a neuron built from config and returns its stable
// index.
func (net *Network) AddNeuron(config NeuronConfig) int {
	net.neurons = append(net.neurons, NewNeuron(config))
	return len(net.neurons) - 1
}

// SynapseSpec describes the arguments to AddSynapse.
type SynapseSpec struct {
	FromIndex  int
	ToIndex    int
	Weight     float64
	Delay      int
	Plasticity Plasticity
}

// AddSynapse validates spec against the current neuron population and
// appends a new Synapse. Invalid indices or delay fail fast without
// corrupting state.
func (net *Network) AddSynapse(spec SynapseSpec) (*Synapse, error) {
	if spec.FromIndex < 0 || spec.FromIndex >= len(net.neurons) {
		return nil, fmt.Errorf("engine: fromIndex %d out of range [0,%d)", spec.FromIndex, len(net.neurons))
	}
	if spec.ToIndex < 0 || spec.ToIndex >= len(net.neurons) {
		return nil, fmt.Errorf("engine: toIndex %d out of range [0,%d)", spec.ToIndex, len(net.neurons))
	}
	if spec.Delay < 1 {
		return nil, fmt.Errorf("engine: delay must be >= 1ms, got %d", spec.Delay)
	}

	syn := NewSynapse(spec.FromIndex, spec.ToIndex, spec.Weight, spec.Delay, spec.Plasticity)
	net.synapses = append(net.synapses, syn)

	return syn, nil
}

// RemoveSynapse deletes the synapse with the given ID, if present. It is
// the structural-pruning primitive; runPruning never calls it unless
// SynapticPruningEnabled is set, but callers may also use it directly.
func (net *Network) RemoveSynapse(id string) {
	for i, s := range net.synapses {
		if s.ID == id {
			net.synapses = append(net.synapses[:i], net.synapses[i+1:]...)
			delete(net.silentSince, id)
			return
		}
	}
}

// clearTopology empties neurons, synapses, and the event queue and resets
// currentTime to zero. Every TopologyBuilder constructor calls this
// first.
func (net *Network) clearTopology() {
	net.neurons = nil
	net.synapses = nil
	net.queue.Clear()
	net.currentTime = 0
	net.networkActivity.clear()
	net.synchronyIndex = 0
	net.silentSince = make(map[string]float64)
}

// Reset restores the Network to its post-construction behavioral state
// without discarding topology: time zeroes, every neuron returns to
// resting potential with empty histories, every synapse's weight is
// restored to its first recorded value. Reset is idempotent.
func (net *Network) Reset() {
	net.currentTime = 0
	net.queue.Clear()
	net.networkActivity.clear()
	net.synchronyIndex = 0
	net.silentSince = make(map[string]float64)

	for _, n := range net.neurons {
		n.Reset()
	}
	for _, s := range net.synapses {
		s.Reset()
	}
}

// Step advances the simulation by one deltaTime: seed the input
// accumulator with the given externally injected per-neuron currents,
// drain due synaptic events on top of it, advance every neuron, enqueue
// newly emitted spikes, update activity/synchrony bookkeeping, and run
// homeostasis and pruning on their periodic schedules. injected may be
// nil, in which case only synaptic input is applied.
func (net *Network) Step(injected []float64) {
	net.currentTime += net.deltaTime

	inputs := make([]float64, len(net.neurons))
	for i, v := range injected {
		if i < len(inputs) {
			inputs[i] = v
		}
	}

	net.drainDueEvents(inputs)

	activeSpikes := net.advanceNeurons(inputs)

	net.networkActivity.push(activeSpikes)
	net.recomputeSynchronyIndex()

	if net.HomeostasisEnabled && dueForHomeostasis(net.currentTime) {
		net.runHomeostasis()
	}

	if net.SynapticPruningEnabled && dueForHomeostasis(net.currentTime) {
		net.runPruning()
	}

	if net.NumHooks() > 0 {
		net.InvokeHook(HookCtx{Domain: net, Pos: HookPosStep, Item: net.currentTime})
	}
}

func (net *Network) drainDueEvents(inputs []float64) {
	due := net.queue.DrainDueAt(net.currentTime)

	for _, evt := range due {
		if evt.TargetIndex >= 0 && evt.TargetIndex < len(inputs) {
			inputs[evt.TargetIndex] += evt.WeightAtEmission
		}

		syn := net.findSynapse(evt.SynapseID)
		if syn == nil {
			continue
		}

		pre := net.neurons[evt.SourceIndex]
		post := net.neurons[evt.TargetIndex]

		oldWeight := syn.Weight()
		applySTDP(net.GlobalPlasticityEnabled, syn, pre.SpikeHistory(), post.SpikeHistory(), net.currentTime)

		changed := syn.Weight() - oldWeight
		if net.NumHooks() > 0 && (changed > weightChangeEpsilon || changed < -weightChangeEpsilon) {
			net.InvokeHook(HookCtx{Domain: net, Pos: HookPosWeightChange, Item: syn})
		}
	}
}

func (net *Network) advanceNeurons(inputs []float64) int {
	activeSpikes := 0

	for i, n := range net.neurons {
		fired := n.Step(inputs[i], net.deltaTime, net.currentTime)
		if !fired {
			continue
		}

		activeSpikes++

		for _, syn := range net.synapses {
			if syn.FromIndex != i {
				continue
			}

			net.queue.Enqueue(SpikeEvent{
				SourceIndex:      i,
				TargetIndex:      syn.ToIndex,
				WeightAtEmission: syn.Weight(),
				ArrivalTime:      net.currentTime + float64(syn.Delay),
				SynapseID:        syn.ID,
			})
		}
	}

	return activeSpikes
}

func (net *Network) findSynapse(id string) *Synapse {
	for _, s := range net.synapses {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (net *Network) recomputeSynchronyIndex() {
	recent := net.networkActivity.lastN(synchronyWindow)
	if len(recent) < synchronyWindow {
		net.synchronyIndex = 0
		return
	}

	var sum float64
	for _, v := range recent {
		sum += float64(v)
	}
	mean := sum / float64(len(recent))

	var variance float64
	for _, v := range recent {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(recent))

	net.synchronyIndex = variance / (mean + 0.001)
}

func (net *Network) runHomeostasis() {
	for _, n := range net.neurons {
		rate := n.InstantaneousFiringRate()
		newThreshold := adjustThreshold(n.Config().Threshold, rate, net.TargetFiringRate)
		n.SetThreshold(newThreshold)
	}

	if net.NumHooks() > 0 {
		net.InvokeHook(HookCtx{Domain: net, Pos: HookPosHomeostasis, Item: net.currentTime})
	}
}

// runPruning removes synapses whose weight has stayed below
// pruningThreshold for longer than pruningGraceMS. Only called when
// SynapticPruningEnabled is set.
func (net *Network) runPruning() {
	var toRemove []string

	for _, s := range net.synapses {
		if s.Weight() > pruningThreshold {
			delete(net.silentSince, s.ID)
			continue
		}

		since, tracked := net.silentSince[s.ID]
		if !tracked {
			net.silentSince[s.ID] = net.currentTime
			continue
		}

		if net.currentTime-since >= pruningGraceMS {
			toRemove = append(toRemove, s.ID)
		}
	}

	for _, id := range toRemove {
		net.RemoveSynapse(id)
	}
}

// PopulationFiringRate averages InstantaneousFiringRate across every
// neuron. It backs NetworkStats.AvgFiringRate but is also useful on its
// own.
func (net *Network) PopulationFiringRate() float64 {
	if len(net.neurons) == 0 {
		return 0
	}

	var sum float64
	for _, n := range net.neurons {
		sum += n.InstantaneousFiringRate()
	}

	return sum / float64(len(net.neurons))
}

// NetworkStats is the read-only statistics snapshot exposed to external
// observers such as the monitoring server.
type NetworkStats struct {
	TotalSpikes     uint64
	AvgFiringRate   float64
	TotalSynapses   int
	AvgWeight       float64
	Connectivity    float64
	ActiveNeurons   int
	SynchronyIndex  float64
	CurrentTime     float64
}

// GetNetworkStats computes the stats snapshot exposed to external
// collaborators.
func (net *Network) GetNetworkStats() NetworkStats {
	stats := NetworkStats{
		CurrentTime:    net.currentTime,
		SynchronyIndex: net.synchronyIndex,
		TotalSynapses:  len(net.synapses),
	}

	for _, n := range net.neurons {
		stats.TotalSpikes += n.TotalSpikes()
		if n.FiredThisStep() {
			stats.ActiveNeurons++
		}
	}

	stats.AvgFiringRate = net.PopulationFiringRate()

	if len(net.synapses) > 0 {
		var sum float64
		for _, s := range net.synapses {
			sum += s.Weight()
		}
		stats.AvgWeight = sum / float64(len(net.synapses))
	}

	n := len(net.neurons)
	if n > 1 {
		stats.Connectivity = float64(len(net.synapses)) / float64(n*(n-1))
	}

	return stats
}

// Snapshot is an in-memory value capturing enough state to later restore
// the Network via RestoreSnapshot. It exists purely for in-process
// checkpoint/rewind diagnostics; it is never serialized to disk.
type Snapshot struct {
	currentTime    float64
	neuronVoltages []float64
	neuronRefrUntl []float64
	synapseWeights []float64
}

// Snapshot captures the Network's mutable numeric state.
func (net *Network) Snapshot() Snapshot {
	snap := Snapshot{
		currentTime:    net.currentTime,
		neuronVoltages: make([]float64, len(net.neurons)),
		neuronRefrUntl: make([]float64, len(net.neurons)),
		synapseWeights: make([]float64, len(net.synapses)),
	}

	for i, n := range net.neurons {
		snap.neuronVoltages[i] = n.membranePotential
		snap.neuronRefrUntl[i] = n.refractoryUntil
	}
	for i, s := range net.synapses {
		snap.synapseWeights[i] = s.weight
	}

	return snap
}

// RestoreSnapshot applies a previously captured Snapshot. The snapshot
// must have been taken from a Network with the same topology; a mismatch
// panics rather than silently corrupting state.
func (net *Network) RestoreSnapshot(snap Snapshot) {
	if len(snap.neuronVoltages) != len(net.neurons) || len(snap.synapseWeights) != len(net.synapses) {
		panic("engine: snapshot topology mismatch")
	}

	net.currentTime = snap.currentTime
	for i, n := range net.neurons {
		n.membranePotential = snap.neuronVoltages[i]
		n.refractoryUntil = snap.neuronRefrUntl[i]
	}
	for i, s := range net.synapses {
		s.weight = snap.synapseWeights[i]
	}
}
