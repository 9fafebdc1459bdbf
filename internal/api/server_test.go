package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ergosense/posture.report/internal/analysis"
	"github.com/ergosense/posture.report/internal/analysisdb"
	"github.com/ergosense/posture.report/internal/config"
	"github.com/ergosense/posture.report/internal/ergo"
	"github.com/ergosense/posture.report/internal/monitoring"
	"github.com/ergosense/posture.report/internal/pose"
	"github.com/ergosense/posture.report/internal/testutil"
)

func TestMain(m *testing.M) {
	// Keep worker and migration chatter out of test output.
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func setupServer(t *testing.T) *Server {
	t.Helper()

	db, err := analysisdb.NewDB(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp("../analysisdb/migrations"))

	return NewServer(db, config.EmptyAnalysisConfig())
}

// standingLandmarks builds a neutral standing posture, arms at the sides.
func standingLandmarks() pose.Landmarks {
	lms := make(pose.Landmarks, pose.NumLandmarks)
	set := func(i int, x, y float64) {
		lms[i] = pose.Landmark{X: x, Y: y, Visibility: 1}
	}

	set(pose.Nose, 0.50, 0.10)
	set(pose.LeftShoulder, 0.60, 0.25)
	set(pose.RightShoulder, 0.40, 0.25)
	set(pose.LeftElbow, 0.60, 0.40)
	set(pose.RightElbow, 0.40, 0.40)
	set(pose.LeftWrist, 0.60, 0.55)
	set(pose.RightWrist, 0.40, 0.55)
	set(pose.LeftIndex, 0.60, 0.60)
	set(pose.RightIndex, 0.40, 0.60)
	set(pose.LeftHip, 0.55, 0.55)
	set(pose.RightHip, 0.45, 0.55)
	set(pose.LeftKnee, 0.55, 0.75)
	set(pose.RightKnee, 0.45, 0.75)
	set(pose.LeftAnkle, 0.55, 0.95)
	set(pose.RightAnkle, 0.45, 0.95)
	set(pose.LeftFootIndex, 0.58, 0.97)
	set(pose.RightFootIndex, 0.42, 0.97)
	return lms
}

// writeRecording writes an n-frame JSONL landmark capture to a temp file.
func writeRecording(t *testing.T, n int) string {
	t.Helper()

	var sb strings.Builder
	lms := standingLandmarks()
	for i := 0; i < n; i++ {
		line := map[string]any{
			"frame_index": i,
			"detected":    true,
			"landmarks":   lms,
		}
		raw, err := json.Marshal(line)
		require.NoError(t, err)
		sb.Write(raw)
		sb.WriteByte('\n')
	}

	path := filepath.Join(t.TempDir(), "capture.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}

func TestAssessRULAGeometric(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	req := testutil.NewJSONRequest(t, "POST", "/api/assess/rula", rulaRequest{
		Landmarks: standingLandmarks(),
	})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var result ergo.RULAResult
	testutil.DecodeJSON(t, rec, &result)
	assert.GreaterOrEqual(t, result.FinalScore, 1)
	assert.LessOrEqual(t, result.FinalScore, 7)
	assert.Equal(t, 1, result.Trunk.Base, "upright trunk should score 1")
	assert.NotEmpty(t, result.Action)

	// The assessment lands in the store.
	rows, err := s.db.ListAssessments("rula", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestAssessRULAParts(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	parts := ergo.RULAParts{
		UpperArm: 2, LowerArm: 2, Wrist: 1, WristTwist: 1,
		Neck: 1, Trunk: 2, Legs: 1,
		ForceLoadA: 1,
	}
	req := testutil.NewJSONRequest(t, "POST", "/api/assess/rula", rulaRequest{Parts: &parts})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var result ergo.RULAResult
	testutil.DecodeJSON(t, rec, &result)
	want := ergo.RULAFromParts(parts)
	assert.Equal(t, want.ScoreA, result.ScoreA)
	assert.Equal(t, want.ScoreB, result.ScoreB)
	assert.Equal(t, want.FinalScore, result.FinalScore)
}

func TestAssessREBAGeometric(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	req := testutil.NewJSONRequest(t, "POST", "/api/assess/reba", rebaRequest{
		Landmarks: standingLandmarks(),
	})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var result ergo.REBAResult
	testutil.DecodeJSON(t, rec, &result)
	assert.GreaterOrEqual(t, result.FinalScore, 1)
	assert.Equal(t, 1, result.Legs.Base)
}

func TestAssessOWASParts(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	req := testutil.NewJSONRequest(t, "POST", "/api/assess/owas", owasRequest{
		Parts: &owasParts{Back: 2, Arms: 1, Legs: 2, Load: 1},
	})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var result ergo.OWASResult
	testutil.DecodeJSON(t, rec, &result)
	assert.Equal(t, "2121", result.PostureCode)
	assert.Equal(t, ergo.OWASActionCategory(2, 1, 2), result.ActionCategory)
}

func TestAssessNLE(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	task := ergo.NLETask{
		Horizontal: 25, Vertical: 75, Distance: 25,
		Asymmetry: 0, Frequency: 0.5, DurationHours: 1,
		Coupling: 1, Load: 10,
	}
	req := testutil.NewJSONRequest(t, "POST", "/api/assess/nle", task)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var result ergo.NLEResult
	testutil.DecodeJSON(t, rec, &result)
	assert.InDelta(t, 1.0, result.HM, 1e-9)
	assert.Greater(t, result.RWL, 20.0)
	assert.Less(t, result.LiftingIndex, 1.0)
}

func TestAssessSI(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	task := ergo.SITask{
		Intensity: 1, Duration: 1, Efforts: 1,
		HandPosture: 1, Speed: 1, DailyHours: 1,
	}
	req := testutil.NewJSONRequest(t, "POST", "/api/assess/si", task)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var result ergo.SIResult
	testutil.DecodeJSON(t, rec, &result)
	assert.InDelta(t, 0.0625, result.Score, 1e-9)
}

func TestAssessRejectsEmptyBody(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	req := testutil.NewJSONRequest(t, "POST", "/api/assess/rula", map[string]any{})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestAssessRejectsWrongMethod(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	for _, path := range []string{
		"/api/assess/rula", "/api/assess/reba", "/api/assess/owas",
		"/api/assess/nle", "/api/assess/si",
	} {
		req := testutil.NewTestRequest("GET", path)
		rec := testutil.NewTestRecorder()
		mux.ServeHTTP(rec, req)
		testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestAssessRejectsShortLandmarks(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	req := testutil.NewJSONRequest(t, "POST", "/api/assess/rula", rulaRequest{
		Landmarks: standingLandmarks()[:5],
	})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestStartAnalysisToCompletion(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()
	path := writeRecording(t, 6)

	req := testutil.NewJSONRequest(t, "POST", "/api/analysis/start", startRequest{Path: path})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusAccepted)

	var state stateResponse
	testutil.DecodeJSON(t, rec, &state)
	require.NotEmpty(t, state.RunID)
	assert.Equal(t, 6, state.Total)

	s.active.worker.Wait()

	run, err := s.db.GetRun(state.RunID)
	require.NoError(t, err)
	assert.Equal(t, analysisdb.RunStatusCompleted, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, 6, run.Result.TotalFrames)
	assert.Equal(t, 6, run.Result.AnalyzedFrames)

	// State endpoint reports the finished worker.
	req = testutil.NewTestRequest("GET", "/api/analysis/state")
	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.DecodeJSON(t, rec, &state)
	assert.False(t, state.Active)
	assert.Equal(t, string(analysis.WorkerCompleted), state.Status)
}

func TestStartAnalysisRequiresPath(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	req := testutil.NewJSONRequest(t, "POST", "/api/analysis/start", startRequest{})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestStartAnalysisRejectsUnsafePath(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	req := testutil.NewJSONRequest(t, "POST", "/api/analysis/start", startRequest{Path: "/etc/passwd"})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestCancelWithoutActiveRun(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	req := testutil.NewTestRequest("POST", "/api/analysis/cancel")
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusConflict)
}

func TestResumeCancelledRun(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()
	path := writeRecording(t, 8)

	// Seed a cancelled run at frame 4 with a real mid-scan checkpoint.
	run, err := s.db.CreateRun(path, 1)
	require.NoError(t, err)

	analyzer := analysis.NewMovementAnalyzer(analysis.AnalyzerParams{})
	lms := standingLandmarks()
	angles := pose.AllAngles(lms)
	rula := ergo.RULACalculator{}.Calculate(angles, lms)
	reba := ergo.REBACalculator{}.Calculate(angles, lms)
	for i := 0; i < 4; i++ {
		analyzer.Update(angles, rula, reba, -1)
	}
	cp := analysis.WorkerCheckpoint{
		Version:    analysis.CheckpointVersion,
		Analyzer:   analyzer.State(),
		FrameIndex: 4,
	}
	require.NoError(t, s.db.CancelRun(run.ID, analyzer.Result(), cp))

	req := testutil.NewJSONRequest(t, "POST", "/api/analysis/start", startRequest{ResumeRunID: run.ID})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusAccepted)

	s.active.worker.Wait()

	finished, err := s.db.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, analysisdb.RunStatusCompleted, finished.Status)
	require.NotNil(t, finished.Result)
	assert.Equal(t, 8, finished.Result.TotalFrames)
	assert.Equal(t, 8, finished.Result.AnalyzedFrames)
}

func TestResumeRejectsCompletedRun(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()
	path := writeRecording(t, 2)

	run, err := s.db.CreateRun(path, 1)
	require.NoError(t, err)
	require.NoError(t, s.db.CompleteRun(run.ID, &analysis.Result{}))

	req := testutil.NewJSONRequest(t, "POST", "/api/analysis/start", startRequest{ResumeRunID: run.ID})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestListRunsEndpoint(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	for i := 0; i < 2; i++ {
		_, err := s.db.CreateRun(fmt.Sprintf("capture-%d.jsonl", i), 1)
		require.NoError(t, err)
	}

	req := testutil.NewTestRequest("GET", "/api/runs")
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var runs []analysisdb.Run
	testutil.DecodeJSON(t, rec, &runs)
	assert.Len(t, runs, 2)
}

func TestGetRunEndpoint(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	run, err := s.db.CreateRun("capture.jsonl", 2)
	require.NoError(t, err)

	req := testutil.NewTestRequest("GET", "/api/runs/"+run.ID)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got analysisdb.Run
	testutil.DecodeJSON(t, rec, &got)
	assert.Equal(t, run.ID, got.ID)

	req = testutil.NewTestRequest("GET", "/api/runs/no-such-run")
	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestMovementChart(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()
	path := writeRecording(t, 4)

	req := testutil.NewJSONRequest(t, "POST", "/api/analysis/start", startRequest{Path: path})
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusAccepted)

	var state stateResponse
	testutil.DecodeJSON(t, rec, &state)
	s.active.worker.Wait()

	req = testutil.NewTestRequest("GET", "/debug/movement-chart?run_id="+state.RunID)
	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Per-joint movement")
}

func TestMovementChartRequiresRunID(t *testing.T) {
	s := setupServer(t)
	mux := s.ServeMux()

	req := testutil.NewTestRequest("GET", "/debug/movement-chart")
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}
