// Package monitoring turns a running Network into a pollable, read-only
// HTTP server without importing or implementing any rendering code.
// Graph layout, dashboards, and animation loops are expected to live in
// separate processes polling this surface.
package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/mux"
	"github.com/snnlab/snnsim/engine"
)

// Monitor serves read-only snapshots of a Network's state and statistics.
// It never mutates the Network; mutation remains the exclusive
// responsibility of the engine thread running the Simulator.
type Monitor struct {
	mu  sync.RWMutex
	net *engine.Network

	portNumber int
	listener   net.Listener
	server     *http.Server
}

// NewMonitor creates a Monitor not yet serving any Network.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port the monitor listens on. Ports below 1000
// are rejected as privileged, falling back to an OS-assigned port.
func (m *Monitor) WithPortNumber(port int) *Monitor {
	if port != 0 && port < 1000 {
		fmt.Fprintf(os.Stderr,
			"port %d is not allowed for the monitoring server, using a random port instead\n", port)
		port = 0
	}
	m.portNumber = port
	return m
}

// RegisterNetwork sets the Network this Monitor reports on.
func (m *Monitor) RegisterNetwork(net *engine.Network) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.net = net
}

// Start binds the listener and begins serving in the background. It
// returns the resolved address so a caller with port 0 can discover the
// OS-assigned port.
func (m *Monitor) Start() (string, error) {
	router := mux.NewRouter()
	router.HandleFunc("/stats", m.handleStats).Methods(http.MethodGet)
	router.HandleFunc("/neurons", m.handleNeurons).Methods(http.MethodGet)
	router.HandleFunc("/synapses", m.handleSynapses).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", m.portNumber)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("monitoring: failed to listen: %w", err)
	}

	m.listener = ln
	m.server = &http.Server{Handler: router}

	go func() {
		if err := m.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("monitoring: server stopped: %v", err)
		}
	}()

	return ln.Addr().String(), nil
}

// Stop closes the listener. Safe to call multiple times.
func (m *Monitor) Stop() {
	if m.server != nil {
		_ = m.server.Close()
	}
}

func (m *Monitor) currentNetwork() *engine.Network {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.net
}

func (m *Monitor) handleStats(w http.ResponseWriter, r *http.Request) {
	net := m.currentNetwork()
	if net == nil {
		http.Error(w, "no network registered", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, net.GetNetworkStats())
}

type neuronView struct {
	Index                       int     `json:"index"`
	MembranePotential           float64 `json:"membranePotential"`
	MembranePotentialNormalized float64 `json:"membranePotentialNormalized"`
	Threshold                   float64 `json:"threshold"`
	FiredThisStep               bool    `json:"firedThisStep"`
	TotalSpikes                 uint64  `json:"totalSpikes"`
	InstantaneousFiringRate     float64 `json:"instantaneousFiringRate"`
}

func (m *Monitor) handleNeurons(w http.ResponseWriter, r *http.Request) {
	net := m.currentNetwork()
	if net == nil {
		http.Error(w, "no network registered", http.StatusServiceUnavailable)
		return
	}

	views := make([]neuronView, len(net.Neurons()))
	for i, n := range net.Neurons() {
		views[i] = neuronView{
			Index:                       i,
			MembranePotential:           n.MembranePotential(),
			MembranePotentialNormalized: n.MembranePotentialNormalized(),
			Threshold:                   n.Config().Threshold,
			FiredThisStep:               n.FiredThisStep(),
			TotalSpikes:                 n.TotalSpikes(),
			InstantaneousFiringRate:     n.InstantaneousFiringRate(),
		}
	}

	writeJSON(w, views)
}

type synapseView struct {
	ID        string  `json:"id"`
	FromIndex int     `json:"fromIndex"`
	ToIndex   int     `json:"toIndex"`
	Weight    float64 `json:"weight"`
	Delay     int     `json:"delay"`
}

func (m *Monitor) handleSynapses(w http.ResponseWriter, r *http.Request) {
	net := m.currentNetwork()
	if net == nil {
		http.Error(w, "no network registered", http.StatusServiceUnavailable)
		return
	}

	views := make([]synapseView, len(net.Synapses()))
	for i, s := range net.Synapses() {
		views[i] = synapseView{
			ID:        s.ID,
			FromIndex: s.FromIndex,
			ToIndex:   s.ToIndex,
			Weight:    s.Weight(),
			Delay:     s.Delay,
		}
	}

	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("monitoring: failed to encode response: %v", err)
	}
}
