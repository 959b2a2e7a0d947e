package engine

// homeostasisIntervalMS is the simulated-time interval between
// homeostatic passes ("floor(currentTime) mod 100 == 0").
const homeostasisIntervalMS = 100

// homeostasisGain and the rate-error deadband below tune how aggressively
// the controller chases the target firing rate.
const (
	homeostasisGain     = 0.001
	homeostasisDeadband = 1.0 // Hz

	thresholdFloor   = -60.0 // mV
	thresholdCeiling = -40.0 // mV
)

// dueForHomeostasis reports whether a homeostatic pass should run at the
// given simulated time.
func dueForHomeostasis(currentTime float64) bool {
	flooredMS := int64(currentTime)
	return flooredMS%homeostasisIntervalMS == 0
}

// adjustThreshold implements a stabilizing control law. If a neuron fires
// faster than target, its firing threshold must rise, becoming less
// negative (harder to fire); if it fires slower than target, the threshold
// must fall (easier to fire):
//
//	d := targetRate - actualRate
//	d > 0  (firing too slow)  -> lower the threshold (easier to fire)
//	d < 0  (firing too fast)  -> raise the threshold (harder to fire)
//
// which is threshold += -gain*d. The naive mirror of this law, adding
// rather than subtracting gain*d, is self-reinforcing instead of
// self-correcting and must be avoided.
func adjustThreshold(threshold, actualRate, targetRate float64) float64 {
	d := targetRate - actualRate
	if d > -homeostasisDeadband && d < homeostasisDeadband {
		return threshold
	}

	threshold += -homeostasisGain * d

	return clamp(threshold, thresholdFloor, thresholdCeiling)
}
