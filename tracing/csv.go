package tracing

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"
)

// CSVTracer is the default Tracer backend: two plain CSV files, one for
// spikes and one for weight changes, flushed in batches and on exit.
type CSVTracer struct {
	spikeFile  *os.File
	weightFile *os.File

	spikes        []SpikeRecord
	weightChanges []WeightChangeRecord
	bufferSize    int
}

// NewCSVTracer creates a CSVTracer writing to basePath+"_spikes.csv" and
// basePath+"_weights.csv". Both files are truncated if they already exist.
func NewCSVTracer(basePath string) (*CSVTracer, error) {
	spikeFile, err := os.Create(basePath + "_spikes.csv")
	if err != nil {
		return nil, fmt.Errorf("tracing: failed to create spike trace file: %w", err)
	}

	weightFile, err := os.Create(basePath + "_weights.csv")
	if err != nil {
		spikeFile.Close()
		return nil, fmt.Errorf("tracing: failed to create weight trace file: %w", err)
	}

	fmt.Fprintf(spikeFile, "RunID,NeuronIndex,Time,Threshold\n")
	fmt.Fprintf(weightFile, "RunID,SynapseID,FromIndex,ToIndex,Time,Weight\n")

	t := &CSVTracer{
		spikeFile:  spikeFile,
		weightFile: weightFile,
		bufferSize: 1000,
	}

	atexit.Register(func() {
		t.Flush()
		t.Close()
	})

	return t, nil
}

func (t *CSVTracer) RecordSpike(rec SpikeRecord) {
	t.spikes = append(t.spikes, rec)
	if len(t.spikes) >= t.bufferSize {
		t.flushSpikes()
	}
}

func (t *CSVTracer) RecordWeightChange(rec WeightChangeRecord) {
	t.weightChanges = append(t.weightChanges, rec)
	if len(t.weightChanges) >= t.bufferSize {
		t.flushWeightChanges()
	}
}

func (t *CSVTracer) Flush() {
	t.flushSpikes()
	t.flushWeightChanges()
}

func (t *CSVTracer) flushSpikes() {
	for _, rec := range t.spikes {
		fmt.Fprintf(t.spikeFile, "%s,%d,%.10f,%.10f\n",
			rec.RunID, rec.NeuronIndex, rec.Time, rec.Threshold)
	}
	t.spikes = nil
}

func (t *CSVTracer) flushWeightChanges() {
	for _, rec := range t.weightChanges {
		fmt.Fprintf(t.weightFile, "%s,%s,%d,%d,%.10f,%.10f\n",
			rec.RunID, rec.SynapseID, rec.FromIndex, rec.ToIndex, rec.Time, rec.Weight)
	}
	t.weightChanges = nil
}

// Close closes both underlying files. Safe to call after Flush.
func (t *CSVTracer) Close() error {
	if err := t.spikeFile.Close(); err != nil {
		return err
	}
	return t.weightFile.Close()
}
