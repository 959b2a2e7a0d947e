package engine_test

import (
	"testing"

	"github.com/snnlab/snnsim/engine"
	"github.com/stretchr/testify/assert"
)

func TestEventQueueDeliversExactlyOnceAtFirstDueTime(t *testing.T) {
	q := engine.NewEventQueue()
	q.Enqueue(engine.SpikeEvent{SourceIndex: 0, TargetIndex: 1, ArrivalTime: 5.0})

	assert.Empty(t, q.DrainDueAt(4.9))
	delivered := q.DrainDueAt(5.0)
	assert.Len(t, delivered, 1)
	assert.Empty(t, q.DrainDueAt(5.0), "event must not be delivered twice")
}

func TestEventQueueOrdersByArrivalTime(t *testing.T) {
	q := engine.NewEventQueue()
	q.Enqueue(engine.SpikeEvent{ArrivalTime: 3.0, SynapseID: "c"})
	q.Enqueue(engine.SpikeEvent{ArrivalTime: 1.0, SynapseID: "a"})
	q.Enqueue(engine.SpikeEvent{ArrivalTime: 2.0, SynapseID: "b"})

	delivered := q.DrainDueAt(3.0)
	assert.Len(t, delivered, 3)
	assert.Equal(t, "a", delivered[0].SynapseID)
	assert.Equal(t, "b", delivered[1].SynapseID)
	assert.Equal(t, "c", delivered[2].SynapseID)
}

func TestEventQueueClear(t *testing.T) {
	q := engine.NewEventQueue()
	q.Enqueue(engine.SpikeEvent{ArrivalTime: 1.0})
	q.Clear()
	assert.Equal(t, 0, q.Len())
}
