package engine

import "math"

// stdpWindowMS is the trailing window over which pairwise STDP considers
// spike pairs.
const stdpWindowMS = 100

// applyPairwiseSTDP implements the classic pairwise-summation STDP rule:
// every pre/post spike pair within the trailing window contributes an
// exponentially-weighted term to the weight delta. This is O(history²)
// per delivery and re-triggers the full sum on every event; kept as an
// alternative to the trace variant below for networks that need the
// literal pairwise semantics.
func applyPairwiseSTDP(s *Synapse, preHistory, postHistory []float64, currentTime float64) float64 {
	cutoff := currentTime - stdpWindowMS

	var delta float64

	for _, tPre := range preHistory {
		if tPre <= cutoff {
			continue
		}

		for _, tPost := range postHistory {
			if tPost <= cutoff {
				continue
			}

			dt := tPost - tPre
			switch {
			case dt > 0:
				delta += s.Plasticity.APlus * math.Exp(-dt/s.Plasticity.TauPlus)
			case dt < 0:
				delta -= s.Plasticity.AMinus * math.Exp(dt/s.Plasticity.TauMinus)
			}
		}
	}

	return delta
}

// applyTraceSTDP implements the exponential pre/post trace variant, the
// default plasticity mode. Each endpoint's trace decays continuously and
// is incremented by 1 on its own spike; a
// delivery updates the weight once from the current trace values rather
// than re-summing the full spike history, giving constant per-delivery
// cost instead of quadratic.
func applyTraceSTDP(s *Synapse, preHistory, postHistory []float64, currentTime float64) float64 {
	decayTrace := func(trace, lastUpdate, tau float64) float64 {
		if currentTime <= lastUpdate {
			return trace
		}
		return trace * math.Exp(-(currentTime-lastUpdate)/tau)
	}

	s.preTrace = decayTrace(s.preTrace, s.traceUpdateAt, s.Plasticity.TauPlus)
	s.postTrace = decayTrace(s.postTrace, s.traceUpdateAt, s.Plasticity.TauMinus)

	// Fold in each spike recorded since the previous update, decayed from
	// its own time. Deliveries run before neurons step, so a spike stamped
	// with the previous update time was not yet on record at that update.
	addSpikes := func(trace float64, history []float64, tau float64) float64 {
		for i := len(history) - 1; i >= 0 && history[i] >= s.traceUpdateAt; i-- {
			if history[i] <= currentTime {
				trace += math.Exp(-(currentTime - history[i]) / tau)
			}
		}
		return trace
	}
	s.preTrace = addSpikes(s.preTrace, preHistory, s.Plasticity.TauPlus)
	s.postTrace = addSpikes(s.postTrace, postHistory, s.Plasticity.TauMinus)

	s.traceUpdateAt = currentTime

	// Both traces are sampled at this delivery: the post-synaptic trace
	// drives potentiation (APlus) and the pre-synaptic trace drives
	// depression (AMinus). The caller applies this once per delivery.
	delta := s.Plasticity.APlus*s.postTrace - s.Plasticity.AMinus*s.preTrace

	return delta
}

// applySTDP dispatches to the synapse's configured mode, skipping
// entirely when plasticity is disabled either globally or per-edge.
func applySTDP(
	globalPlasticityEnabled bool,
	s *Synapse,
	preHistory, postHistory []float64,
	currentTime float64,
) {
	if !globalPlasticityEnabled || !s.Plasticity.Enabled {
		return
	}

	var delta float64
	switch s.Plasticity.Mode {
	case ModePairwise:
		delta = applyPairwiseSTDP(s, preHistory, postHistory, currentTime)
	default:
		delta = applyTraceSTDP(s, preHistory, postHistory, currentTime)
	}

	s.applyWeightDelta(delta, currentTime)
}
