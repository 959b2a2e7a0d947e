//go:build sqlite

package tracing

import (
	"database/sql"
	"fmt"
	"os"

	// registers the sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/tebeka/atexit"
)

// SQLiteTracer is an optional Tracer backend for runs that want queryable
// trace storage instead of flat CSV files. Built only with the "sqlite"
// build tag, since it pulls in cgo via mattn/go-sqlite3.
type SQLiteTracer struct {
	db *sql.DB

	spikeStmt  *sql.Stmt
	weightStmt *sql.Stmt

	spikes        []SpikeRecord
	weightChanges []WeightChangeRecord
	batchSize     int
}

// NewSQLiteTracer creates and initializes a new SQLite database at path.
// It returns an error if a file already exists at path.
func NewSQLiteTracer(path string) (*SQLiteTracer, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("tracing: database %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("tracing: failed to open database: %w", err)
	}

	t := &SQLiteTracer{db: db, batchSize: 10000}

	if err := t.init(); err != nil {
		db.Close()
		return nil, err
	}

	atexit.Register(func() { t.Flush() })

	return t, nil
}

func (t *SQLiteTracer) init() error {
	statements := []string{
		`CREATE TABLE spikes (
			run_id varchar(32), neuron_index int, time float, threshold float
		)`,
		`CREATE INDEX spikes_time_index ON spikes (time)`,
		`CREATE TABLE weight_changes (
			run_id varchar(32), synapse_id varchar(32), from_index int,
			to_index int, time float, weight float
		)`,
		`CREATE INDEX weight_changes_time_index ON weight_changes (time)`,
	}

	for _, stmt := range statements {
		if _, err := t.db.Exec(stmt); err != nil {
			return fmt.Errorf("tracing: failed to execute %q: %w", stmt, err)
		}
	}

	spikeStmt, err := t.db.Prepare(`INSERT INTO spikes VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	t.spikeStmt = spikeStmt

	weightStmt, err := t.db.Prepare(`INSERT INTO weight_changes VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	t.weightStmt = weightStmt

	return nil
}

func (t *SQLiteTracer) RecordSpike(rec SpikeRecord) {
	t.spikes = append(t.spikes, rec)
	if len(t.spikes) >= t.batchSize {
		t.flushSpikes()
	}
}

func (t *SQLiteTracer) RecordWeightChange(rec WeightChangeRecord) {
	t.weightChanges = append(t.weightChanges, rec)
	if len(t.weightChanges) >= t.batchSize {
		t.flushWeightChanges()
	}
}

func (t *SQLiteTracer) Flush() {
	t.flushSpikes()
	t.flushWeightChanges()
}

func (t *SQLiteTracer) flushSpikes() {
	if len(t.spikes) == 0 {
		return
	}

	tx, err := t.db.Begin()
	if err != nil {
		panic(err)
	}

	stmt := tx.Stmt(t.spikeStmt)
	for _, rec := range t.spikes {
		if _, err := stmt.Exec(rec.RunID, rec.NeuronIndex, rec.Time, rec.Threshold); err != nil {
			panic(err)
		}
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	t.spikes = nil
}

func (t *SQLiteTracer) flushWeightChanges() {
	if len(t.weightChanges) == 0 {
		return
	}

	tx, err := t.db.Begin()
	if err != nil {
		panic(err)
	}

	stmt := tx.Stmt(t.weightStmt)
	for _, rec := range t.weightChanges {
		if _, err := stmt.Exec(rec.RunID, rec.SynapseID, rec.FromIndex, rec.ToIndex, rec.Time, rec.Weight); err != nil {
			panic(err)
		}
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	t.weightChanges = nil
}

// Close closes the underlying database connection.
func (t *SQLiteTracer) Close() error {
	return t.db.Close()
}
