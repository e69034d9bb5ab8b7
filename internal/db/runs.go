package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lightseeker/internal/explore"
	"github.com/banshee-data/lightseeker/internal/monitoring"
)

// Run is one exploration run as stored in the runs table.
type Run struct {
	ID         string
	StartedAt  time.Time
	ConfigJSON string
}

// Arrival is where a run stopped at its target.
type Arrival struct {
	Index    int
	Position r3.Vec
}

// RunRecorder persists the controller's events for a single run. It
// implements explore.Observer; write failures are logged rather than
// returned so storage problems never stall the control loop.
type RunRecorder struct {
	db    *DB
	runID string
}

var _ explore.Observer = (*RunRecorder)(nil)

// StartRun inserts a new run row and returns a recorder for it. cfgJSON is
// stored verbatim so the run can be reproduced later.
func (db *DB) StartRun(cfgJSON string) (*RunRecorder, error) {
	if cfgJSON == "" {
		cfgJSON = "{}"
	}
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO runs (run_id, started_at, config_json) VALUES (?, ?, ?)`,
		id, time.Now().UnixNano(), cfgJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return &RunRecorder{db: db, runID: id}, nil
}

// ID returns the run identifier.
func (r *RunRecorder) ID() string { return r.runID }

func (r *RunRecorder) DeadEndRecorded(rec explore.Record) {
	_, err := r.db.Exec(
		`INSERT INTO dead_ends (run_id, idx, light, x, y, z, sim_time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.runID, rec.Index, rec.Light, rec.Position.X, rec.Position.Y, rec.Position.Z, rec.Time,
	)
	if err != nil {
		monitoring.Logf("failed to record dead end %d for run %s: %v", rec.Index, r.runID, err)
	}
}

func (r *RunRecorder) TargetSelected(target explore.Record) {
	_, err := r.db.Exec(
		`INSERT INTO targets (run_id, idx, light, x, y, z, sim_time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.runID, target.Index, target.Light, target.Position.X, target.Position.Y, target.Position.Z, target.Time,
	)
	if err != nil {
		monitoring.Logf("failed to record target for run %s: %v", r.runID, err)
	}
}

func (r *RunRecorder) TargetReached(target explore.Record, pos r3.Vec) {
	_, err := r.db.Exec(
		`INSERT INTO arrivals (run_id, idx, x, y, z) VALUES (?, ?, ?, ?, ?)`,
		r.runID, target.Index, pos.X, pos.Y, pos.Z,
	)
	if err != nil {
		monitoring.Logf("failed to record arrival for run %s: %v", r.runID, err)
	}
}

// ListRuns returns all runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.Query(`SELECT run_id, started_at, config_json FROM runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started int64
		)
		if err := rows.Scan(&r.ID, &started, &r.ConfigJSON); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(0, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recently started run.
func (db *DB) LatestRun() (Run, error) {
	var (
		r       Run
		started int64
	)
	err := db.QueryRow(
		`SELECT run_id, started_at, config_json FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&r.ID, &started, &r.ConfigJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("no runs recorded")
	}
	if err != nil {
		return Run{}, err
	}
	r.StartedAt = time.Unix(0, started)
	return r, nil
}

// DeadEnds returns the records stored for runID in index order.
func (db *DB) DeadEnds(runID string) ([]explore.Record, error) {
	rows, err := db.Query(
		`SELECT idx, light, x, y, z, sim_time FROM dead_ends WHERE run_id = ? ORDER BY idx`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query dead ends: %w", err)
	}
	defer rows.Close()

	var recs []explore.Record
	for rows.Next() {
		var rec explore.Record
		if err := rows.Scan(&rec.Index, &rec.Light, &rec.Position.X, &rec.Position.Y, &rec.Position.Z, &rec.Time); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// TargetFor returns the target selected by runID. ok is false when the run
// never filled its memory.
func (db *DB) TargetFor(runID string) (rec explore.Record, ok bool, err error) {
	err = db.QueryRow(
		`SELECT idx, light, x, y, z, sim_time FROM targets WHERE run_id = ?`,
		runID,
	).Scan(&rec.Index, &rec.Light, &rec.Position.X, &rec.Position.Y, &rec.Position.Z, &rec.Time)
	if errors.Is(err, sql.ErrNoRows) {
		return explore.Record{}, false, nil
	}
	if err != nil {
		return explore.Record{}, false, fmt.Errorf("failed to query target: %w", err)
	}
	return rec, true, nil
}

// ArrivalFor returns where runID reached its target, if it did.
func (db *DB) ArrivalFor(runID string) (a Arrival, ok bool, err error) {
	err = db.QueryRow(
		`SELECT idx, x, y, z FROM arrivals WHERE run_id = ?`,
		runID,
	).Scan(&a.Index, &a.Position.X, &a.Position.Y, &a.Position.Z)
	if errors.Is(err, sql.ErrNoRows) {
		return Arrival{}, false, nil
	}
	if err != nil {
		return Arrival{}, false, fmt.Errorf("failed to query arrival: %w", err)
	}
	return a, true, nil
}
