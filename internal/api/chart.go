package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ergosense/posture.report/internal/analysisdb"
)

// movementChart renders a quick bar chart (HTML) of per-joint movement
// counts and high-risk frames using go-echarts. This is a debugging-only
// endpoint (no auth) to eyeball a run without a frontend.
// Query params:
//   - run_id (required)
func (s *Server) movementChart(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "run_id is required")
		return
	}

	run, err := s.db.GetRun(runID)
	if errors.Is(err, analysisdb.ErrRunNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load run: %v", err))
		return
	}
	if run.Result == nil {
		s.writeJSONError(w, http.StatusNotFound, "run has no result yet")
		return
	}

	parts := run.Result.SortedByMovement()
	names := make([]string, 0, len(parts))
	movement := make([]opts.BarData, 0, len(parts))
	highRisk := make([]opts.BarData, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.DisplayName)
		movement = append(movement, opts.BarData{Value: p.MovementCount})
		highRisk = append(highRisk, opts.BarData{Value: p.HighRiskFrames})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Movement by Joint", Theme: "dark", Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Per-joint movement",
			Subtitle: fmt.Sprintf("run=%s frames=%d analyzed=%d", run.ID, run.Result.TotalFrames, run.Result.AnalyzedFrames),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names)
	bar.AddSeries("movements", movement)
	bar.AddSeries("high-risk frames", highRisk)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
