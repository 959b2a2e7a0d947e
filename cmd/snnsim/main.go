// Command snnsim is the headless, scriptable driver for the simulation
// engine: it builds a topology, drives it for a fixed number of steps, and
// prints periodic NetworkStats snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

func main() {
	// A missing .env is not an error. Load only copies .env entries into
	// the process environment; no command-line flag reads its default
	// from the environment.
	_ = godotenv.Load()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	// Exit through atexit so registered trace flushes and the monitor
	// shutdown run.
	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snnsim",
		Short: "Spiking neural network sandbox simulator",
		Long: `snnsim builds and drives a small leaky-integrate-and-fire spiking
network with delayed plastic synapses, STDP, and optional homeostatic
threshold regulation, printing periodic statistics snapshots.`,
	}

	cmd.AddCommand(newRunCmd())

	return cmd
}
