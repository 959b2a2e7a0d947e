package engine

import "math/rand"

// TopologyBuilder constructs neuron populations and synapse sets for a
// small family of named topologies. Every constructor clears the
// Network's existing neurons, synapses, and queue and resets currentTime
// to zero before building.
type TopologyBuilder struct {
	net *Network
	rng *rand.Rand
}

// NewTopologyBuilder returns a TopologyBuilder that mutates net. A nil
// rng defaults to a new math/rand source seeded with 1.
func NewTopologyBuilder(net *Network, rng *rand.Rand) *TopologyBuilder {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &TopologyBuilder{net: net, rng: rng}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func uniformInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// Random builds size neurons and, for every ordered pair i != j, connects
// i -> j with probability p.
func (b *TopologyBuilder) Random(size int, p float64) {
	b.net.clearTopology()
	b.addDefaultNeurons(size)

	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if i == j {
				continue
			}
			if b.rng.Float64() >= p {
				continue
			}
			b.addEdge(i, j, uniform(b.rng, 0.2, 1.0), uniformInt(b.rng, 1, 5))
		}
	}
}

// Feedforward builds size neurons split into three layers of roughly
// size/3, connecting each neuron in layer L to each neuron in layer L+1
// with probability 0.5.
func (b *TopologyBuilder) Feedforward(size int) {
	b.net.clearTopology()
	b.addDefaultNeurons(size)

	layers := splitIntoLayers(size, 3)
	b.connectLayersForward(layers, 0.5, 0.5, 1.0, 1, 5)
}

// Ring connects each neuron i to (i+1) mod size with fixed weight 0.8 and
// delay 2ms.
func (b *TopologyBuilder) Ring(size int) {
	b.net.clearTopology()
	b.addDefaultNeurons(size)

	for i := 0; i < size; i++ {
		b.addEdge(i, (i+1)%size, 0.8, 2)
	}
}

// SmallWorld begins with a Ring and, for each edge, with probability
// rewireProbability removes it and replaces its target with a random
// other neuron, preserving source/weight/delay.
func (b *TopologyBuilder) SmallWorld(size int, rewireProbability float64) {
	b.Ring(size)

	for _, s := range b.net.synapses {
		if b.rng.Float64() >= rewireProbability {
			continue
		}

		newTarget := s.ToIndex
		for attempts := 0; attempts < 10; attempts++ {
			candidate := b.rng.Intn(size)
			if candidate != s.FromIndex {
				newTarget = candidate
				break
			}
		}
		s.ToIndex = newTarget
	}
}

// CorticalColumn builds a layered column with inter-layer feedforward
// connectivity (p=0.8 from layer 0, else 0.6),
// within-layer recurrent connectivity (p=0.1, no self-loops), and
// progressively higher thresholds / slower membraneTau for deeper
// layers. layerSizes defaults to [4,6,4,2] when empty.
func (b *TopologyBuilder) CorticalColumn(layerSizes []int) {
	if len(layerSizes) == 0 {
		layerSizes = []int{4, 6, 4, 2}
	}

	b.net.clearTopology()

	layers := make([][]int, len(layerSizes))
	idx := 0
	for li, size := range layerSizes {
		layer := make([]int, size)
		for k := 0; k < size; k++ {
			config := DefaultNeuronConfig()
			config.Threshold += float64(li) * 1.0
			config.MembraneTau += float64(li) * 2.0
			layer[k] = b.net.AddNeuron(config)
			idx++
		}
		layers[li] = layer
	}
	_ = idx

	for li := 0; li < len(layers)-1; li++ {
		p := 0.6
		if li == 0 {
			p = 0.8
		}
		for _, i := range layers[li] {
			for _, j := range layers[li+1] {
				if b.rng.Float64() >= p {
					continue
				}
				b.addEdge(i, j, uniform(b.rng, 0.3, 0.7), uniformInt(b.rng, 1, 3))
			}
		}
	}

	for _, layer := range layers {
		for _, i := range layer {
			for _, j := range layer {
				if i == j {
					continue
				}
				if b.rng.Float64() >= 0.1 {
					continue
				}
				b.addEdge(i, j, uniform(b.rng, 0.1, 0.3), 1)
			}
		}
	}
}

func (b *TopologyBuilder) addDefaultNeurons(size int) {
	for i := 0; i < size; i++ {
		b.net.AddNeuron(DefaultNeuronConfig())
	}
}

func (b *TopologyBuilder) addEdge(from, to int, weight float64, delay int) {
	_, err := b.net.AddSynapse(SynapseSpec{
		FromIndex:  from,
		ToIndex:    to,
		Weight:     weight,
		Delay:      delay,
		Plasticity: DefaultPlasticity(),
	})
	if err != nil {
		panic(err)
	}
}

func (b *TopologyBuilder) connectLayersForward(
	layers [][]int,
	p float64,
	weightLo, weightHi float64,
	delayLo, delayHi int,
) {
	for li := 0; li < len(layers)-1; li++ {
		for _, i := range layers[li] {
			for _, j := range layers[li+1] {
				if b.rng.Float64() >= p {
					continue
				}
				b.addEdge(i, j, uniform(b.rng, weightLo, weightHi), uniformInt(b.rng, delayLo, delayHi))
			}
		}
	}
}

func splitIntoLayers(size, numLayers int) [][]int {
	layers := make([][]int, numLayers)
	base := size / numLayers
	remainder := size % numLayers

	idx := 0
	for li := 0; li < numLayers; li++ {
		count := base
		if li < remainder {
			count++
		}
		layer := make([]int, count)
		for k := 0; k < count; k++ {
			layer[k] = idx
			idx++
		}
		layers[li] = layer
	}

	return layers
}
