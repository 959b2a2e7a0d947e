package tracing

import (
	"github.com/rs/xid"
	"github.com/snnlab/snnsim/engine"
)

// spikeHook is attached to a single Neuron and knows that neuron's stable
// index within its owning Network.
type spikeHook struct {
	tracer      Tracer
	runID       string
	neuronIndex int
}

func (h *spikeHook) Func(ctx engine.HookCtx) {
	if ctx.Pos != engine.HookPosSpike {
		return
	}

	t, ok := ctx.Item.(float64)
	if !ok {
		return
	}

	n, ok := ctx.Domain.(*engine.Neuron)
	if !ok {
		return
	}

	h.tracer.RecordSpike(SpikeRecord{
		RunID:       h.runID,
		NeuronIndex: h.neuronIndex,
		Time:        t,
		Threshold:   n.Config().Threshold,
	})
}

// weightChangeHook is attached to the Network and fires on every STDP
// update large enough to be recorded.
type weightChangeHook struct {
	tracer Tracer
	runID  string
}

func (h *weightChangeHook) Func(ctx engine.HookCtx) {
	if ctx.Pos != engine.HookPosWeightChange {
		return
	}

	s, ok := ctx.Item.(*engine.Synapse)
	if !ok {
		return
	}

	h.tracer.RecordWeightChange(WeightChangeRecord{
		RunID:     h.runID,
		SynapseID: s.ID,
		FromIndex: s.FromIndex,
		ToIndex:   s.ToIndex,
		Time:      s.LastUpdateTime(),
		Weight:    s.Weight(),
	})
}

// Attach wires tracer to every neuron and to the network itself, so every
// spike and every recorded weight change for the lifetime of net flows
// into tracer under a single run ID. Must be called before the Network's
// topology is rebuilt; a later TopologyBuilder call replaces the neuron
// slice and the old spike hooks stop receiving events, while the
// Network-level weight-change hook stays attached.
func Attach(net *engine.Network, tracer Tracer) {
	runID := xid.New().String()

	for i, n := range net.Neurons() {
		n.AcceptHook(&spikeHook{tracer: tracer, runID: runID, neuronIndex: i})
	}

	net.AcceptHook(&weightChangeHook{tracer: tracer, runID: runID})
}
