package analysisdb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ergosense/posture.report/internal/analysis"
)

// Run lifecycle states.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusCancelled = "cancelled"
	RunStatusFailed    = "failed"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("analysisdb: run not found")

// Run is one movement analysis scan over a recording.
type Run struct {
	ID             string    `json:"run_id"`
	SourcePath     string    `json:"source_path"`
	SampleInterval int       `json:"sample_interval"`
	Status         string    `json:"status"`
	FrameIndex     int       `json:"frame_index"`
	SkippedFrames  int       `json:"skipped_frames"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Result is set once the run completes or is cancelled with a
	// partial snapshot.
	Result *analysis.Result `json:"result,omitempty"`
}

// CreateRun inserts a new running analysis run and returns it.
func (db *DB) CreateRun(sourcePath string, sampleInterval int) (Run, error) {
	if sampleInterval < 1 {
		sampleInterval = 1
	}
	run := Run{
		ID:             uuid.NewString(),
		SourcePath:     sourcePath,
		SampleInterval: sampleInterval,
		Status:         RunStatusRunning,
	}
	_, err := db.Exec(
		`INSERT INTO analysis_runs (run_id, source_path, sample_interval, status) VALUES (?, ?, ?, ?)`,
		run.ID, run.SourcePath, run.SampleInterval, run.Status,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// CompleteRun stores the final result and marks the run completed.
func (db *DB) CompleteRun(runID string, result *analysis.Result) error {
	return db.finishRun(runID, RunStatusCompleted, result, nil)
}

// CancelRun stores the partial result plus a resumable checkpoint and
// marks the run cancelled.
func (db *DB) CancelRun(runID string, result *analysis.Result, cp analysis.WorkerCheckpoint) error {
	return db.finishRun(runID, RunStatusCancelled, result, &cp)
}

// ReopenRun marks a cancelled run as running again for a resumed scan.
func (db *DB) ReopenRun(runID string) error {
	res, err := db.Exec(
		`UPDATE analysis_runs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE run_id = ?`,
		RunStatusRunning, runID,
	)
	if err != nil {
		return fmt.Errorf("reopen run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// FailRun marks the run failed.
func (db *DB) FailRun(runID string) error {
	return db.finishRun(runID, RunStatusFailed, nil, nil)
}

func (db *DB) finishRun(runID, status string, result *analysis.Result, cp *analysis.WorkerCheckpoint) error {
	var resultJSON sql.NullString
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		resultJSON = sql.NullString{String: string(raw), Valid: true}
	}

	var checkpointJSON sql.NullString
	frameIndex, skipped, elapsed := 0, 0, 0.0
	if cp != nil {
		raw, err := json.Marshal(cp)
		if err != nil {
			return fmt.Errorf("marshal checkpoint: %w", err)
		}
		checkpointJSON = sql.NullString{String: string(raw), Valid: true}
		frameIndex = cp.FrameIndex
		skipped = cp.SkippedFrames
		elapsed = cp.ElapsedSeconds
	} else if result != nil {
		frameIndex = result.TotalFrames
		skipped = result.SkippedFrames
		elapsed = result.DurationSeconds
	}

	res, err := db.Exec(
		`UPDATE analysis_runs
		 SET status = ?, result_json = ?, checkpoint_json = ?,
		     frame_index = ?, skipped_frames = ?, elapsed_seconds = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE run_id = ?`,
		status, resultJSON, checkpointJSON, frameIndex, skipped, elapsed, runID,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun loads one run, including its result when present.
func (db *DB) GetRun(runID string) (Run, error) {
	row := db.QueryRow(
		`SELECT run_id, source_path, sample_interval, status,
		        frame_index, skipped_frames, elapsed_seconds,
		        result_json, created_at, updated_at
		 FROM analysis_runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT run_id, source_path, sample_interval, status,
		        frame_index, skipped_frames, elapsed_seconds,
		        result_json, created_at, updated_at
		 FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadCheckpoint returns the resumable checkpoint of a cancelled run,
// or nil if the run holds none.
func (db *DB) LoadCheckpoint(runID string) (*analysis.WorkerCheckpoint, error) {
	var raw sql.NullString
	err := db.QueryRow(
		`SELECT checkpoint_json FROM analysis_runs WHERE run_id = ?`, runID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", runID, err)
	}
	if !raw.Valid {
		return nil, nil
	}

	var cp analysis.WorkerCheckpoint
	if err := json.Unmarshal([]byte(raw.String), &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", runID, err)
	}
	return &cp, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var resultJSON sql.NullString
	err := row.Scan(
		&run.ID, &run.SourcePath, &run.SampleInterval, &run.Status,
		&run.FrameIndex, &run.SkippedFrames, &run.ElapsedSeconds,
		&resultJSON, &run.CreatedAt, &run.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if resultJSON.Valid {
		var result analysis.Result
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return Run{}, fmt.Errorf("decode result for run %s: %w", run.ID, err)
		}
		run.Result = &result
	}
	return run, nil
}

// RecordAssessment stores one manual or geometric assessment. runID may
// be empty for standalone worksheet calculations.
func (db *DB) RecordAssessment(runID, method string, input, result any) error {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal assessment input: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal assessment result: %w", err)
	}

	var run sql.NullString
	if runID != "" {
		run = sql.NullString{String: runID, Valid: true}
	}
	_, err = db.Exec(
		`INSERT INTO assessments (run_id, method, input_json, result_json) VALUES (?, ?, ?, ?)`,
		run, method, string(inputJSON), string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// Assessment is one stored assessment row.
type Assessment struct {
	ID        int64           `json:"assessment_id"`
	RunID     string          `json:"run_id,omitempty"`
	Method    string          `json:"method"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListAssessments returns recent assessments, optionally filtered by
// method, newest first.
func (db *DB) ListAssessments(method string, limit int) ([]Assessment, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT assessment_id, run_id, method, input_json, result_json, created_at
	          FROM assessments`
	args := []any{}
	if method != "" {
		query += ` WHERE method = ?`
		args = append(args, method)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		var a Assessment
		var runID sql.NullString
		var input, result string
		if err := rows.Scan(&a.ID, &runID, &a.Method, &input, &result, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		a.RunID = runID.String
		a.Input = json.RawMessage(input)
		a.Result = json.RawMessage(result)
		out = append(out, a)
	}
	return out, rows.Err()
}
