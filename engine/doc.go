// Package engine implements the core discrete-time simulation of a spiking
// neural network: leaky integrate-and-fire neurons, delayed plastic
// synapses, spike-timing-dependent plasticity, and homeostatic threshold
// regulation. The package has no rendering, persistence, or networking
// code; it exposes a contract that an out-of-process visual layer can
// drive and observe through the sibling monitoring package.
package engine
