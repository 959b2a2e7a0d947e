package engine_test

import (
	"math/rand"
	"testing"

	"github.com/snnlab/snnsim/engine"
	"github.com/stretchr/testify/assert"
)

func TestRingTopologyConnectsEachNeuronToNext(t *testing.T) {
	net := engine.NewNetwork()
	b := engine.NewTopologyBuilder(net, rand.New(rand.NewSource(1)))
	b.Ring(5)

	assert.Len(t, net.Neurons(), 5)
	assert.Len(t, net.Synapses(), 5)

	seen := make(map[int]int)
	for _, s := range net.Synapses() {
		assert.Equal(t, (s.FromIndex+1)%5, s.ToIndex)
		assert.Equal(t, 0.8, s.Weight())
		assert.Equal(t, 2, s.Delay)
		seen[s.FromIndex]++
	}
	assert.Len(t, seen, 5)
}

func TestFeedforwardTopologyOnlyConnectsAdjacentLayers(t *testing.T) {
	net := engine.NewNetwork()
	b := engine.NewTopologyBuilder(net, rand.New(rand.NewSource(2)))
	b.Feedforward(9)

	assert.Len(t, net.Neurons(), 9)
	for _, s := range net.Synapses() {
		assert.NotEqual(t, s.FromIndex, s.ToIndex)
		assert.GreaterOrEqual(t, s.Weight(), 0.5)
		assert.LessOrEqual(t, s.Weight(), 1.0)
	}
}

func TestRandomTopologyHasNoSelfLoops(t *testing.T) {
	net := engine.NewNetwork()
	b := engine.NewTopologyBuilder(net, rand.New(rand.NewSource(3)))
	b.Random(20, 0.3)

	for _, s := range net.Synapses() {
		assert.NotEqual(t, s.FromIndex, s.ToIndex)
	}
}

func TestSmallWorldPreservesSourceWeightAndDelay(t *testing.T) {
	net := engine.NewNetwork()
	b := engine.NewTopologyBuilder(net, rand.New(rand.NewSource(4)))
	b.SmallWorld(10, 0.3)

	assert.Len(t, net.Synapses(), 10)
	for _, s := range net.Synapses() {
		assert.Equal(t, 0.8, s.Weight())
		assert.Equal(t, 2, s.Delay)
	}
}

func TestCorticalColumnLayerSizesAndDepthScaling(t *testing.T) {
	net := engine.NewNetwork()
	b := engine.NewTopologyBuilder(net, rand.New(rand.NewSource(5)))
	b.CorticalColumn([]int{4, 6, 4, 2})

	assert.Len(t, net.Neurons(), 16)

	firstLayerThreshold := net.Neurons()[0].Config().Threshold
	lastLayerThreshold := net.Neurons()[15].Config().Threshold
	assert.Greater(t, lastLayerThreshold, firstLayerThreshold)
}

func TestTopologyConstructorClearsPreviousState(t *testing.T) {
	net := engine.NewNetwork()
	b := engine.NewTopologyBuilder(net, rand.New(rand.NewSource(6)))

	b.Ring(5)
	net.Step(make([]float64, 5))
	assert.Greater(t, net.CurrentTime(), 0.0)

	b.Ring(3)
	assert.Equal(t, 0.0, net.CurrentTime())
	assert.Len(t, net.Neurons(), 3)
}
