package engine

import (
	"math"
	"math/rand"
)

// Pattern names an input-current generator. Every pattern implements the
// same capability, {name, generate(time, N) -> currents}; dispatch uses a
// lookup table rather than reflection.
type Pattern string

const (
	PatternNone        Pattern = "none"
	PatternRandom      Pattern = "random"
	PatternPoisson     Pattern = "poisson"
	PatternRhythmic    Pattern = "rhythmic"
	PatternPulseTrain  Pattern = "pulse_train"
	PatternWave        Pattern = "wave"
	PatternBurst       Pattern = "burst"
)

// generators maps every known Pattern to its rule. Unknown names are
// handled by InputSource.Generate itself, degrading to "no pattern"
// rather than erroring.
var generators = map[Pattern]func(rng randSource, t float64, n int) []float64{
	PatternNone:       generateNone,
	PatternRandom:     generateRandom,
	PatternPoisson:    generatePoisson,
	PatternRhythmic:   generateRhythmic,
	PatternPulseTrain: generatePulseTrain,
	PatternWave:       generateWave,
	PatternBurst:      generateBurst,
}

// randSource is the minimal interface InputSource needs from a random
// number generator, letting tests supply a deterministic source.
type randSource interface {
	Float64() float64
}

// InputSource produces a length-N vector of injected currents in
// picoamps for a given (time, N).
type InputSource struct {
	rng randSource

	// MiniEventProbability and MiniEventAmplitudeLo/Hi are the explicit,
	// configurable controls for spontaneous miniature input currents,
	// independent of whatever driven pattern is active.
	MiniEventProbability float64
	MiniEventAmplitudeLo float64
	MiniEventAmplitudeHi float64
}

// NewInputSource returns an InputSource using the given random source (or
// the package default if nil) with default mini-event parameters.
func NewInputSource(rng randSource) *InputSource {
	if rng == nil {
		rng = defaultRandSource{}
	}
	return &InputSource{
		rng:                  rng,
		MiniEventProbability: 0.01,
		MiniEventAmplitudeLo: 2,
		MiniEventAmplitudeHi: 10,
	}
}

// Generate produces the raw, un-noised pattern currents for the given
// named pattern. An unrecognized name degrades to PatternNone's all-zero
// vector.
func (s *InputSource) Generate(pattern Pattern, t float64, n int) []float64 {
	fn, ok := generators[pattern]
	if !ok {
		fn = generateNone
	}
	return fn(s.rng, t, n)
}

// ApplyMiniEvents adds spontaneous miniature-event currents to an
// already-generated current vector, using this InputSource's configurable
// probability/amplitude.
func (s *InputSource) ApplyMiniEvents(currents []float64) {
	for i := range currents {
		if s.rng.Float64() >= s.MiniEventProbability {
			continue
		}
		currents[i] += uniformRand(s.rng, s.MiniEventAmplitudeLo, s.MiniEventAmplitudeHi)
	}
}

func uniformRand(rng randSource, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func generateNone(_ randSource, _ float64, n int) []float64 {
	return make([]float64, n)
}

func generateRandom(rng randSource, _ float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if rng.Float64() < 0.1 {
			out[i] = uniformRand(rng, 0, 50)
		}
	}
	return out
}

func generatePoisson(rng randSource, _ float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if rng.Float64() < 0.05 {
			out[i] = uniformRand(rng, 20, 50)
		}
	}
	return out
}

func generateRhythmic(_ randSource, t float64, n int) []float64 {
	out := make([]float64, n)
	if math.Sin(0.02*t) <= 0.5 {
		return out
	}
	for i := 0; i < n && i < 2; i++ {
		out[i] = 40
	}
	return out
}

func generatePulseTrain(_ randSource, t float64, n int) []float64 {
	out := make([]float64, n)
	phase := math.Mod(t, 100)
	if phase >= 5 {
		return out
	}
	for i := 0; i < n && i < 3; i++ {
		out[i] = 60
	}
	return out
}

func generateWave(_ randSource, t float64, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := math.Sin(0.01*t + float64(i)*math.Pi/float64(n))
		if v < 0 {
			v = 0
		}
		out[i] = v * 30
	}
	return out
}

func generateBurst(_ randSource, t float64, n int) []float64 {
	out := make([]float64, n)
	phase := math.Mod(t, 500)
	if phase >= 50 {
		return out
	}
	if n > 0 {
		out[0] = 80
	}
	return out
}

type defaultRandSource struct{}

func (defaultRandSource) Float64() float64 {
	return rand.Float64()
}
