package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunRejectsUnknownTopology(t *testing.T) {
	cmd := newRunCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--topology", "nonsense", "--steps", "1"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an unrecognized topology")
	} else if !strings.Contains(err.Error(), "nonsense") {
		t.Errorf("error %q does not mention the offending topology name", err)
	}
}

func TestRunProducesStatsOutput(t *testing.T) {
	cmd := newRunCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--topology", "ring", "--size", "5", "--steps", "10", "--stats-every", "5"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "step=10") {
		t.Errorf("expected final step count in output, got %q", out.String())
	}
}
