package engine

const (
	minWeight = 0.0
	maxWeight = 2.0

	// weightHistoryCapacity bounds Synapse.weightHistory.
	weightHistoryCapacity = 100

	// weightChangeEpsilon is the minimum |Δweight| that is worth
	// recording in history.
	weightChangeEpsilon = 0.001
)

// PlasticityMode selects which STDP update rule a synapse uses.
// ModeTrace is the default for new topologies; ModePairwise is kept for
// the literal pairwise-summation semantics some callers may need.
type PlasticityMode int

const (
	ModeTrace PlasticityMode = iota
	ModePairwise
)

// Plasticity holds the per-edge STDP parameters.
type Plasticity struct {
	Enabled  bool
	APlus    float64
	AMinus   float64
	TauPlus  float64
	TauMinus float64
	Mode     PlasticityMode
}

// DefaultPlasticity returns a typical symmetric STDP parameter set.
func DefaultPlasticity() Plasticity {
	return Plasticity{
		Enabled:  true,
		APlus:    0.02,
		AMinus:   0.02,
		TauPlus:  20,
		TauMinus: 20,
		Mode:     ModeTrace,
	}
}

// Synapse is a directed, weighted, delayed edge between two neuron
// indices, with its own STDP parameters and weight history.
type Synapse struct {
	ID         string
	FromIndex  int
	ToIndex    int
	Delay      int // ms, >= 1
	Plasticity Plasticity

	weight         float64
	weightHistory  *ringBuffer[float64]
	lastUpdateTime float64

	// preTrace and postTrace back the exponential STDP variant
	// (ModeTrace): the pre-synaptic trace decays with TauPlus and is
	// incremented on every pre-spike; the post-synaptic trace decays
	// with TauMinus and is incremented on every post-spike. See stdp.go.
	preTrace      float64
	postTrace     float64
	traceUpdateAt float64
}

// NewSynapse constructs a Synapse with the given endpoints, initial
// weight, delay, and plasticity parameters. fromIndex/toIndex validity is
// the caller's (Network's) responsibility.
func NewSynapse(fromIndex, toIndex int, weight float64, delay int, plasticity Plasticity) *Synapse {
	if delay < 1 {
		panic("engine: synapse delay must be >= 1ms")
	}

	w := clamp(weight, minWeight, maxWeight)

	s := &Synapse{
		ID:         defaultIDGenerator.Generate(),
		FromIndex:  fromIndex,
		ToIndex:    toIndex,
		Delay:      delay,
		Plasticity: plasticity,
		weight:     w,
	}
	s.weightHistory = newRingBuffer[float64](weightHistoryCapacity)
	s.weightHistory.push(w)

	return s
}

// Weight returns the synapse's current weight, always within [0, 2].
func (s *Synapse) Weight() float64 {
	return s.weight
}

// WeightHistory returns the bounded weight history, oldest first.
// WeightHistory()[0] is invariant under Reset.
func (s *Synapse) WeightHistory() []float64 {
	return s.weightHistory.values()
}

// LastUpdateTime returns the simulated time of the most recent recorded
// weight change.
func (s *Synapse) LastUpdateTime() float64 {
	return s.lastUpdateTime
}

// applyWeightDelta clamps weight+delta to [0,2] and, if the resulting
// change exceeds weightChangeEpsilon, records it in history and updates
// lastUpdateTime.
func (s *Synapse) applyWeightDelta(delta, currentTime float64) {
	newWeight := clamp(s.weight+delta, minWeight, maxWeight)
	changed := newWeight-s.weight
	if changed < 0 {
		changed = -changed
	}

	oldWeight := s.weight
	s.weight = newWeight

	if changed > weightChangeEpsilon {
		if h := s.weightHistory; h.len() >= h.capacity && h.len() > 1 {
			// Keep the construction weight at index 0 for Reset; drop the
			// oldest value recorded after it instead.
			h.data = append(h.data[:1], h.data[2:]...)
		}
		s.weightHistory.push(newWeight)
		s.lastUpdateTime = currentTime

		_ = oldWeight // not passed on; hooks read the new weight from the Synapse
	}
}

// Reset restores the synapse's weight to its construction-time value and
// truncates history to that single element.
func (s *Synapse) Reset() {
	first := s.weightHistory.values()[0]
	s.weight = first
	s.weightHistory.truncateToFirst()
	s.lastUpdateTime = 0
	s.preTrace = 0
	s.postTrace = 0
	s.traceUpdateAt = 0
}
