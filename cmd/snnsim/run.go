package main

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime/pprof"
	"time"

	"github.com/google/pprof/profile"
	"github.com/shirou/gopsutil/process"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/snnlab/snnsim/engine"
	"github.com/snnlab/snnsim/monitoring"
	"github.com/snnlab/snnsim/tracing"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a topology and run it for a fixed number of steps",
		RunE:  runSimulation,
	}

	flags := cmd.Flags()
	flags.String("topology", "random", "topology to build: random, feedforward, ring, smallworld, corticalcolumn")
	flags.Int("size", 20, "neuron count (ignored by corticalcolumn, which uses fixed layer sizes)")
	flags.Float64("connectivity", 0.1, "connection probability for random/smallworld rewiring")
	flags.Int("steps", 20000, "number of engine steps to run")
	flags.String("pattern", "poisson", "input pattern: none, random, poisson, rhythmic, pulse_train, wave, burst")
	flags.Float64("strength", 1.0, "global input current multiplier")
	flags.Float64("noise", 0.0, "gaussian noise scale, in units of 10pA")
	flags.Bool("homeostasis", false, "enable homeostatic threshold regulation")
	flags.Float64("target-rate", 10.0, "target firing rate in Hz, used when --homeostasis is set")
	flags.Bool("pruning", false, "enable structural synaptic pruning")
	flags.Int("stats-every", 1000, "print a NetworkStats snapshot every N steps")
	flags.Int("monitor-port", 0, "port for the read-only monitoring HTTP server, 0 to disable")
	flags.Bool("diagnostics", false, "report this process's own CPU/RSS usage alongside simulation stats")
	flags.String("cpuprofile", "", "write a CPU profile of the run to this path")
	flags.String("trace", "", "base path for CSV spike/weight-change traces, empty to disable")
	flags.Int64("seed", 1, "seed for the topology/input random source")

	return cmd
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	topology, _ := flags.GetString("topology")
	size, _ := flags.GetInt("size")
	connectivity, _ := flags.GetFloat64("connectivity")
	steps, _ := flags.GetInt("steps")
	pattern, _ := flags.GetString("pattern")
	strength, _ := flags.GetFloat64("strength")
	noise, _ := flags.GetFloat64("noise")
	homeostasis, _ := flags.GetBool("homeostasis")
	targetRate, _ := flags.GetFloat64("target-rate")
	pruning, _ := flags.GetBool("pruning")
	statsEvery, _ := flags.GetInt("stats-every")
	monitorPort, _ := flags.GetInt("monitor-port")
	diagnostics, _ := flags.GetBool("diagnostics")
	cpuProfilePath, _ := flags.GetString("cpuprofile")
	tracePath, _ := flags.GetString("trace")
	seed, _ := flags.GetInt64("seed")

	net := engine.NewNetwork()
	net.HomeostasisEnabled = homeostasis
	net.TargetFiringRate = targetRate
	net.SynapticPruningEnabled = pruning

	rng := rand.New(rand.NewSource(seed))
	builder := engine.NewTopologyBuilder(net, rng)

	switch topology {
	case "random":
		builder.Random(size, connectivity)
	case "feedforward":
		builder.Feedforward(size)
	case "ring":
		builder.Ring(size)
	case "smallworld":
		builder.SmallWorld(size, connectivity)
	case "corticalcolumn":
		builder.CorticalColumn(nil)
	default:
		return fmt.Errorf("snnsim: unknown topology %q", topology)
	}

	if tracePath != "" {
		tracer, err := tracing.NewCSVTracer(tracePath)
		if err != nil {
			return fmt.Errorf("snnsim: failed to open trace: %w", err)
		}
		tracing.Attach(net, tracer)
		atexit.Register(func() {
			tracer.Flush()
			tracer.Close()
		})
	}

	if monitorPort != 0 {
		mon := monitoring.NewMonitor().WithPortNumber(monitorPort)
		mon.RegisterNetwork(net)
		addr, err := mon.Start()
		if err != nil {
			return fmt.Errorf("snnsim: failed to start monitor: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "monitoring server listening on %s\n", addr)
		atexit.Register(mon.Stop)
	}

	if cpuProfilePath != "" {
		stop, err := startCPUProfile(cpuProfilePath)
		if err != nil {
			return err
		}
		defer stop()
	}

	input := engine.NewInputSource(rng)
	inputPattern := engine.Pattern(pattern)

	var proc *process.Process
	if diagnostics {
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			return fmt.Errorf("snnsim: failed to attach process diagnostics: %w", err)
		}
		proc = p
	}

	start := time.Now()

	for step := 1; step <= steps; step++ {
		currents := input.Generate(inputPattern, net.CurrentTime(), len(net.Neurons()))
		for i := range currents {
			currents[i] *= strength
		}
		if noise > 0 {
			applyNoise(rng, currents, noise)
		}
		input.ApplyMiniEvents(currents)

		net.Step(currents)

		if statsEvery > 0 && step%statsEvery == 0 {
			printStats(cmd, net, step, start, proc)
		}
	}

	printStats(cmd, net, steps, start, proc)

	return nil
}

func applyNoise(rng *rand.Rand, currents []float64, noiseLevel float64) {
	stddev := noiseLevel * 10
	for i := range currents {
		u1, u2 := rng.Float64(), rng.Float64()
		for u1 == 0 {
			u1 = rng.Float64()
		}
		currents[i] += stddev * math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	}
}

func printStats(cmd *cobra.Command, net *engine.Network, step int, start time.Time, proc *process.Process) {
	stats := net.GetNetworkStats()
	elapsed := time.Since(start)

	fmt.Fprintf(cmd.OutOrStdout(),
		"step=%d simTime=%.1fms wall=%s spikes=%d avgRate=%.2fHz avgWeight=%.3f synchrony=%.3f synapses=%d\n",
		step, stats.CurrentTime, elapsed.Round(time.Millisecond), stats.TotalSpikes,
		stats.AvgFiringRate, stats.AvgWeight, stats.SynchronyIndex, stats.TotalSynapses)

	if proc == nil {
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"  [diagnostics] cpu=%.1f%% rss=%dMB\n", cpuPercent, memInfo.RSS/(1024*1024))
}

// startCPUProfile begins a runtime/pprof CPU profile, returning a function
// that stops it, parses the captured samples with google/pprof/profile to
// report their count, and writes the raw profile to path.
func startCPUProfile(path string) (func(), error) {
	buf := bytes.NewBuffer(nil)
	if err := pprof.StartCPUProfile(buf); err != nil {
		return nil, fmt.Errorf("snnsim: failed to start CPU profile: %w", err)
	}

	return func() {
		pprof.StopCPUProfile()

		data := buf.Bytes()
		if prof, err := profile.ParseData(data); err == nil {
			fmt.Fprintf(os.Stderr, "cpu profile: %d samples across %d functions\n",
				len(prof.Sample), len(prof.Function))
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "snnsim: failed to write CPU profile: %v\n", err)
		}
	}, nil
}
