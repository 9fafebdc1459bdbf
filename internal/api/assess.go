package api

import (
	"fmt"
	"net/http"

	"github.com/ergosense/posture.report/internal/ergo"
	"github.com/ergosense/posture.report/internal/pose"
)

// rulaRequest scores either a captured pose (landmarks) or a manually
// entered worksheet (parts). Exactly one of the two must be present.
type rulaRequest struct {
	Landmarks   pose.Landmarks  `json:"landmarks,omitempty"`
	Sensitivity float64         `json:"sensitivity,omitempty"`
	Parts       *ergo.RULAParts `json:"parts,omitempty"`
	RunID       string          `json:"run_id,omitempty"`
}

type rebaRequest struct {
	Landmarks   pose.Landmarks  `json:"landmarks,omitempty"`
	Sensitivity float64         `json:"sensitivity,omitempty"`
	Parts       *ergo.REBAParts `json:"parts,omitempty"`
	RunID       string          `json:"run_id,omitempty"`
}

type owasRequest struct {
	Landmarks pose.Landmarks `json:"landmarks,omitempty"`
	LoadCode  int            `json:"load_code,omitempty"`
	Parts     *owasParts     `json:"parts,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
}

type owasParts struct {
	Back int `json:"back"`
	Arms int `json:"arms"`
	Legs int `json:"legs"`
	Load int `json:"load"`
}

func (s *Server) assessRULA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req rulaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	var result ergo.RULAResult
	switch {
	case req.Parts != nil:
		result = ergo.RULAFromParts(*req.Parts)
	case len(req.Landmarks) > 0:
		if len(req.Landmarks) < pose.NumLandmarks {
			s.writeJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("expected %d landmarks, got %d", pose.NumLandmarks, len(req.Landmarks)))
			return
		}
		calc := ergo.RULACalculator{Sensitivity: s.sensitivity(req.Sensitivity)}
		result = calc.Calculate(pose.AllAngles(req.Landmarks), req.Landmarks)
	default:
		s.writeJSONError(w, http.StatusBadRequest, "either landmarks or parts must be provided")
		return
	}

	s.recordAssessment(req.RunID, "rula", req, result)
	s.writeJSON(w, result)
}

func (s *Server) assessREBA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req rebaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	var result ergo.REBAResult
	switch {
	case req.Parts != nil:
		result = ergo.REBAFromParts(*req.Parts)
	case len(req.Landmarks) > 0:
		if len(req.Landmarks) < pose.NumLandmarks {
			s.writeJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("expected %d landmarks, got %d", pose.NumLandmarks, len(req.Landmarks)))
			return
		}
		calc := ergo.REBACalculator{Sensitivity: s.sensitivity(req.Sensitivity)}
		result = calc.Calculate(pose.AllAngles(req.Landmarks), req.Landmarks)
	default:
		s.writeJSONError(w, http.StatusBadRequest, "either landmarks or parts must be provided")
		return
	}

	s.recordAssessment(req.RunID, "reba", req, result)
	s.writeJSON(w, result)
}

func (s *Server) assessOWAS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req owasRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	var result ergo.OWASResult
	switch {
	case req.Parts != nil:
		result = ergo.OWASFromParts(req.Parts.Back, req.Parts.Arms, req.Parts.Legs, req.Parts.Load)
	case len(req.Landmarks) > 0:
		if len(req.Landmarks) < pose.NumLandmarks {
			s.writeJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("expected %d landmarks, got %d", pose.NumLandmarks, len(req.Landmarks)))
			return
		}
		result = ergo.OWASCalculator{}.Calculate(pose.AllAngles(req.Landmarks), req.Landmarks, req.LoadCode)
	default:
		s.writeJSONError(w, http.StatusBadRequest, "either landmarks or parts must be provided")
		return
	}

	s.recordAssessment(req.RunID, "owas", req, result)
	s.writeJSON(w, result)
}

func (s *Server) assessNLE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var task ergo.NLETask
	if err := decodeJSON(r, &task); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result := ergo.NLECalculator{}.Calculate(task)
	s.recordAssessment("", "nle", task, result)
	s.writeJSON(w, result)
}

func (s *Server) assessSI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var task ergo.SITask
	if err := decodeJSON(r, &task); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result := ergo.SICalculator{}.Calculate(task)
	s.recordAssessment("", "si", task, result)
	s.writeJSON(w, result)
}

// sensitivity prefers the per-request value over the configured one.
func (s *Server) sensitivity(requested float64) float64 {
	if requested > 0 {
		return requested
	}
	return s.cfg.GetSensitivity()
}

// recordAssessment persists the assessment for later review. Storage
// failures are logged rather than surfaced; the caller already has the
// computed result.
func (s *Server) recordAssessment(runID, method string, input, result any) {
	if s.db == nil {
		return
	}
	if err := s.db.RecordAssessment(runID, method, input, result); err != nil {
		s.logf("failed to record %s assessment: %v", method, err)
	}
}
