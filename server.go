package main

import (
	"fmt"
	"net/http"

	"github.com/ergosense/posture.report/internal/analysisdb"
	"github.com/ergosense/posture.report/internal/api"
	"github.com/ergosense/posture.report/internal/config"
	"github.com/ergosense/posture.report/internal/version"
)

// buildMux assembles the full HTTP surface: the JSON API, the debug
// chart, and the admin routes (tailsql console and backup endpoint).
func buildMux(db *analysisdb.DB, cfg *config.AnalysisConfig) http.Handler {
	mux := http.NewServeMux()

	// mount the admin debugging routes
	db.AttachAdminRoutes(mux)

	apiMux := api.NewServer(db, cfg).ServeMux()
	mux.Handle("/api/", apiMux)
	// the chart lives under /debug/, which the admin debugger owns on
	// this mux, so route the exact path through to the API server
	mux.Handle("/debug/movement-chart", apiMux)

	mux.HandleFunc("/", homeHandler)

	return api.LoggingMiddleware(mux)
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, "posture.report analysis server %s (%s)\n", version.Version, version.GitSHA)
}
