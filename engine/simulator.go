package engine

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// frameInterval is the fixed visual cadence Simulator paces against,
// approximately 60Hz.
const frameInterval = time.Second / 60

// Observer is notified once per batch of engine steps with the current
// network and simulated time. The observer is invoked synchronously and
// must not block.
type Observer func(net *Network, currentTime float64)

// Simulator drives a Network forward against wall-clock time, batching
// many engine steps per observer notification.
type Simulator struct {
	HookableBase

	net      *Network
	observer Observer
	input    *InputSource

	mu      sync.Mutex
	running bool
	ticker  *time.Ticker
	stopCh  chan struct{}
	doneWg  sync.WaitGroup

	speed         float64 // [1,100], 10 ≈ real-time
	pattern       Pattern
	inputStrength float64
	noiseLevel    float64
}

// NewSimulator constructs a Simulator for net, notifying observer after
// each batch, with the given initial speed.
func NewSimulator(net *Network, observer Observer, speed float64) *Simulator {
	return &Simulator{
		net:           net,
		observer:      observer,
		input:         NewInputSource(nil),
		speed:         speed,
		pattern:       PatternNone,
		inputStrength: 1,
		noiseLevel:    0,
	}
}

// SetSpeed sets the pacing speed in [1,100]; 10 is approximately
// real-time. Takes effect on the next tick.
func (s *Simulator) SetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = speed
}

// SetInputPattern sets the named input pattern, or PatternNone when name
// is empty.
func (s *Simulator) SetInputPattern(name Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		name = PatternNone
	}
	s.pattern = name
}

// SetInputStrength sets the global current multiplier applied after
// pattern generation.
func (s *Simulator) SetInputStrength(strength float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputStrength = strength
}

// SetNoiseLevel sets the Gaussian-noise standard-deviation scale (in
// units of 10pA).
func (s *Simulator) SetNoiseLevel(noise float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noiseLevel = noise
}

// stepsPerFrame computes how many engine steps to run per visual tick,
// clamped to [1,100].
func stepsPerFrame(speed, deltaTime float64) int {
	raw := float64(frameInterval.Seconds()*1000) * (speed / 10) / deltaTime
	n := int(math.Round(raw))
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}

// Play schedules a recurring tick at the fixed visual cadence. Each tick
// runs stepsPerFrame engine steps in a tight loop (generate inputs,
// inject, Network.Step), then notifies the observer once. Play is
// idempotent while already running.
func (s *Simulator) Play() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ticker = time.NewTicker(frameInterval)
	s.stopCh = make(chan struct{})
	ticker := s.ticker
	stopCh := s.stopCh
	s.mu.Unlock()

	s.doneWg.Add(1)
	go func() {
		defer s.doneWg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				s.runFrame()
			}
		}
	}()
}

func (s *Simulator) runFrame() {
	s.mu.Lock()
	speed := s.speed
	pattern := s.pattern
	strength := s.inputStrength
	noise := s.noiseLevel
	s.mu.Unlock()

	n := stepsPerFrame(speed, s.net.DeltaTime())

	for i := 0; i < n; i++ {
		currents := s.input.Generate(pattern, s.net.CurrentTime(), len(s.net.Neurons()))
		applyInputStrength(currents, strength)
		applyGaussianNoise(currents, noise)
		s.input.ApplyMiniEvents(currents)

		s.net.Step(currents)
	}

	if s.observer != nil {
		s.observer(s.net, s.net.CurrentTime())
	}
}

// Pause stops the recurring tick, releasing the timer on every exit path,
// including when the observer panics mid-frame (the deferred Stop/Done
// calls still run).
func (s *Simulator) Pause() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	ticker := s.ticker
	stopCh := s.stopCh
	s.mu.Unlock()

	close(stopCh)
	s.doneWg.Wait()
	ticker.Stop()
}

// Reset pauses the Simulator, zeroes time, and resets the Network.
func (s *Simulator) Reset() {
	s.Pause()
	s.net.Reset()
}

// applyInputStrength scales every current by the global multiplier.
func applyInputStrength(currents []float64, strength float64) {
	for i := range currents {
		currents[i] *= strength
	}
}

// applyGaussianNoise adds Box-Muller Gaussian noise with standard
// deviation noiseLevel*10 pA to every current.
func applyGaussianNoise(currents []float64, noiseLevel float64) {
	if noiseLevel <= 0 {
		return
	}

	stddev := noiseLevel * 10
	for i := range currents {
		currents[i] += stddev * boxMuller()
	}
}

func boxMuller() float64 {
	u1 := rand.Float64()
	u2 := rand.Float64()
	for u1 == 0 {
		u1 = rand.Float64()
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
