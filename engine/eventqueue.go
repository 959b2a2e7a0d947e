package engine

import "container/heap"

// SpikeEvent is an in-flight spike delivery, created on emission and
// destroyed on delivery.
type SpikeEvent struct {
	SourceIndex      int
	TargetIndex      int
	WeightAtEmission float64
	ArrivalTime      float64
	SynapseID        string
}

// EventQueue holds in-flight SpikeEvents keyed by arrival time and drains
// them each step. The contract is exactly-once delivery at the first step
// whose currentTime >= arrivalTime; ordering among events with equal
// arrival time is unobservable to STDP and left unspecified.
//
// Backed by a container/heap min-heap keyed by arrivalTime so delivery
// scales to large in-flight event counts without a linear scan per step.
type EventQueue struct {
	events spikeEventHeap
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make(spikeEventHeap, 0)}
	heap.Init(&q.events)
	return q
}

// Enqueue adds an event to the queue.
func (q *EventQueue) Enqueue(evt SpikeEvent) {
	heap.Push(&q.events, evt)
}

// Len returns the number of in-flight events.
func (q *EventQueue) Len() int {
	return q.events.Len()
}

// DrainDueAt partitions events by arrivalTime <= t, returning the due
// events (in arrival-time order) and leaving the remaining events in the
// queue.
func (q *EventQueue) DrainDueAt(t float64) []SpikeEvent {
	var delivered []SpikeEvent

	for q.events.Len() > 0 && q.events[0].ArrivalTime <= t {
		evt := heap.Pop(&q.events).(SpikeEvent)
		delivered = append(delivered, evt)
	}

	return delivered
}

// Clear empties the queue. Used by topology constructors and Network.Reset.
func (q *EventQueue) Clear() {
	q.events = q.events[:0]
}

type spikeEventHeap []SpikeEvent

func (h spikeEventHeap) Len() int { return len(h) }

func (h spikeEventHeap) Less(i, j int) bool {
	return h[i].ArrivalTime < h[j].ArrivalTime
}

func (h spikeEventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *spikeEventHeap) Push(x interface{}) {
	*h = append(*h, x.(SpikeEvent))
}

func (h *spikeEventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	evt := old[n-1]
	*h = old[:n-1]
	return evt
}
