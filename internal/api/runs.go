package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ergosense/posture.report/internal/analysis"
	"github.com/ergosense/posture.report/internal/analysisdb"
	"github.com/ergosense/posture.report/internal/security"
)

type startRequest struct {
	// Path of the recorded landmark JSONL file to scan.
	Path string `json:"path"`

	SampleInterval    int     `json:"sample_interval,omitempty"`
	MovementThreshold float64 `json:"movement_threshold,omitempty"`

	// ResumeRunID continues a previously cancelled run from its stored
	// checkpoint. Path may be omitted; the run's recorded source is used.
	ResumeRunID string `json:"resume_run_id,omitempty"`
}

type stateResponse struct {
	Active  bool   `json:"active"`
	RunID   string `json:"run_id,omitempty"`
	Source  string `json:"source,omitempty"`
	Status  string `json:"status,omitempty"`
	Current int    `json:"current,omitempty"`
	Total   int    `json:"total,omitempty"`
	Skipped int    `json:"skipped,omitempty"`
}

func (s *Server) startAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && s.active.worker.Status() == analysis.WorkerRunning {
		s.writeJSONError(w, http.StatusConflict, "an analysis is already running")
		return
	}

	runID, run, resume, err := s.prepareRun(&req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, analysisdb.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		s.writeJSONError(w, status, err.Error())
		return
	}

	if err := security.ValidateRecordingPath(run.SourcePath); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := analysis.OpenRecording(run.SourcePath)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("failed to open recording: %v", err))
		return
	}

	params := analysis.AnalyzerParams{
		MovementThreshold:     req.MovementThreshold,
		SampleInterval:        run.SampleInterval,
		RULAHighRiskThreshold: s.cfg.GetRULAHighRiskThreshold(),
		REBAHighRiskThreshold: s.cfg.GetREBAHighRiskThreshold(),
	}
	if params.MovementThreshold <= 0 {
		params.MovementThreshold = s.cfg.GetMovementThreshold()
	}

	active := &activeRun{
		id:     runID,
		source: run.SourcePath,
		total:  rec.Total(),
	}

	worker := analysis.NewWorker(rec, analysis.WorkerConfig{
		Params: params,
		Resume: resume,
		Events: analysis.Events{
			Progress: func(current, total int) {
				active.mu.Lock()
				active.current = current
				active.total = total
				active.mu.Unlock()
			},
			Skipped: func(count int) {
				active.mu.Lock()
				active.skipped = count
				active.mu.Unlock()
			},
			Completed: func(result *analysis.Result) {
				if err := s.db.CompleteRun(runID, result); err != nil {
					s.logf("failed to store result for run %s: %v", runID, err)
				}
			},
			Cancelled: func(result *analysis.Result, cp analysis.WorkerCheckpoint) {
				if err := s.db.CancelRun(runID, result, cp); err != nil {
					s.logf("failed to store checkpoint for run %s: %v", runID, err)
				}
			},
			Error: func(err error) {
				s.logf("run %s failed: %v", runID, err)
				if dbErr := s.db.FailRun(runID); dbErr != nil {
					s.logf("failed to mark run %s failed: %v", runID, dbErr)
				}
			},
		},
	})
	active.worker = worker

	if err := worker.Start(context.Background()); err != nil {
		worker.Close()
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.active = active

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	s.writeJSON(w, stateResponse{
		Active: true,
		RunID:  runID,
		Source: run.SourcePath,
		Status: string(analysis.WorkerRunning),
		Total:  active.total,
	})
}

// prepareRun resolves the request into a run row: a fresh one, or a
// reopened cancelled run with its checkpoint. Caller holds s.mu.
func (s *Server) prepareRun(req *startRequest) (string, analysisdb.Run, *analysis.WorkerCheckpoint, error) {
	if req.ResumeRunID == "" {
		if req.Path == "" {
			return "", analysisdb.Run{}, nil, errors.New("path is required")
		}
		interval := req.SampleInterval
		if interval < 1 {
			interval = s.cfg.GetSampleInterval()
		}
		run, err := s.db.CreateRun(req.Path, interval)
		if err != nil {
			return "", analysisdb.Run{}, nil, err
		}
		return run.ID, run, nil, nil
	}

	run, err := s.db.GetRun(req.ResumeRunID)
	if err != nil {
		return "", analysisdb.Run{}, nil, err
	}
	if run.Status != analysisdb.RunStatusCancelled {
		return "", analysisdb.Run{}, nil, fmt.Errorf("run %s is %s, only cancelled runs can resume", run.ID, run.Status)
	}
	cp, err := s.db.LoadCheckpoint(run.ID)
	if err != nil {
		return "", analysisdb.Run{}, nil, err
	}
	if cp == nil {
		return "", analysisdb.Run{}, nil, fmt.Errorf("run %s has no checkpoint", run.ID)
	}
	if err := s.db.ReopenRun(run.ID); err != nil {
		return "", analysisdb.Run{}, nil, err
	}
	return run.ID, run, cp, nil
}

func (s *Server) cancelAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	if active == nil || active.worker.Status() != analysis.WorkerRunning {
		s.writeJSONError(w, http.StatusConflict, "no analysis is running")
		return
	}

	active.worker.Stop()
	active.worker.Wait()

	current, total, skipped := active.progress()
	s.writeJSON(w, stateResponse{
		Active:  false,
		RunID:   active.id,
		Source:  active.source,
		Status:  string(active.worker.Status()),
		Current: current,
		Total:   total,
		Skipped: skipped,
	})
}

func (s *Server) analysisState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	if active == nil {
		s.writeJSON(w, stateResponse{Active: false})
		return
	}

	status := active.worker.Status()
	current, total, skipped := active.progress()
	s.writeJSON(w, stateResponse{
		Active:  status == analysis.WorkerRunning,
		RunID:   active.id,
		Source:  active.source,
		Status:  string(status),
		Current: current,
		Total:   total,
		Skipped: skipped,
	})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []analysisdb.Run{}
	}
	s.writeJSON(w, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := s.db.GetRun(runID)
	if errors.Is(err, analysisdb.ErrRunNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load run: %v", err))
		return
	}
	s.writeJSON(w, run)
}
