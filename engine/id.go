package engine

import "github.com/rs/xid"

// IDGenerator produces stable, unique identifiers for synapses and spike
// events. The default implementation is backed by xid rather than a bare
// atomic counter so that IDs remain unique across process restarts and
// sort lexicographically by creation time, which is convenient when a
// trace exporter interleaves records from several simulation runs.
type IDGenerator interface {
	Generate() string
}

type xidGenerator struct{}

// NewIDGenerator returns the default ID generator used by the engine.
func NewIDGenerator() IDGenerator {
	return xidGenerator{}
}

func (xidGenerator) Generate() string {
	return xid.New().String()
}

var defaultIDGenerator = NewIDGenerator()
