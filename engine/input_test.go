package engine_test

import (
	"testing"

	"github.com/snnlab/snnsim/engine"
	"github.com/stretchr/testify/assert"
)

type stubRand struct{ values []float64 }

func (s *stubRand) Float64() float64 {
	v := s.values[0]
	s.values = append(s.values[1:], v)
	return v
}

func TestGenerateNoneIsAllZero(t *testing.T) {
	src := engine.NewInputSource(&stubRand{values: []float64{0.5}})
	out := src.Generate(engine.PatternNone, 10, 5)
	assert.Len(t, out, 5)
	for _, v := range out {
		assert.Equal(t, 0.0, v)
	}
}

func TestUnknownPatternDegradesToZero(t *testing.T) {
	src := engine.NewInputSource(&stubRand{values: []float64{0.9}})
	out := src.Generate(engine.Pattern("not-a-real-pattern"), 10, 3)
	for _, v := range out {
		assert.Equal(t, 0.0, v)
	}
}

func TestRhythmicGatesOnSineThreshold(t *testing.T) {
	src := engine.NewInputSource(&stubRand{values: []float64{0.5}})

	// sin(0.02*t) > 0.5 requires t such that 0.02t is in (pi/6, 5pi/6).
	// t=100 -> 0.02*100=2.0 rad, sin(2.0)=0.909 > 0.5.
	out := src.Generate(engine.PatternRhythmic, 100, 4)
	assert.Equal(t, 40.0, out[0])
	assert.Equal(t, 40.0, out[1])
	assert.Equal(t, 0.0, out[2])
	assert.Equal(t, 0.0, out[3])
}

func TestPulseTrainGatesOnPulseWidth(t *testing.T) {
	src := engine.NewInputSource(&stubRand{values: []float64{0.5}})

	inPulse := src.Generate(engine.PatternPulseTrain, 102, 4) // phase=2 < 5
	assert.Equal(t, 60.0, inPulse[0])
	assert.Equal(t, 0.0, inPulse[3])

	outOfPulse := src.Generate(engine.PatternPulseTrain, 110, 4) // phase=10 >= 5
	for _, v := range outOfPulse {
		assert.Equal(t, 0.0, v)
	}
}

func TestWaveNeverNegative(t *testing.T) {
	src := engine.NewInputSource(&stubRand{values: []float64{0.5}})
	for tm := 0.0; tm < 1000; tm += 37 {
		out := src.Generate(engine.PatternWave, tm, 6)
		for _, v := range out {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 30.0)
		}
	}
}

func TestMiniEventsAddExtraCurrentWhenTriggered(t *testing.T) {
	src := engine.NewInputSource(&stubRand{values: []float64{0.0, 0.5}})
	currents := make([]float64, 1)
	src.ApplyMiniEvents(currents)
	assert.Greater(t, currents[0], 0.0)
}
