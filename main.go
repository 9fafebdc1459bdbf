package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ergosense/posture.report/internal/analysisdb"
	"github.com/ergosense/posture.report/internal/config"
	"github.com/ergosense/posture.report/internal/version"
)

var (
	listen        = flag.String("listen", "", "Listen address (defaults to config listen_addr)")
	dbFile        = flag.String("db", "", "Path to the analysis database (defaults to config db_path)")
	configFile    = flag.String("config", "", "Path to a JSON analysis config file")
	migrationsDir = flag.String("migrations", "internal/analysisdb/migrations", "Path to the migration SQL files")
	showVersion   = flag.Bool("version", false, "Print version information and exit")
)

func loadConfig() *config.AnalysisConfig {
	if *configFile == "" {
		return config.EmptyAnalysisConfig()
	}
	cfg, err := config.LoadAnalysisConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configFile, err)
	}
	return cfg
}

func main() {
	flag.Parse()

	if *showVersion {
		log.Printf("posture.report %s (sha %s, built %s)", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg := loadConfig()
	dbPath := *dbFile
	if dbPath == "" {
		dbPath = cfg.GetDBPath()
	}

	// Subcommands run to completion and exit; the default is to serve.
	if args := flag.Args(); len(args) > 0 {
		runCommand(args, dbPath, *migrationsDir)
		return
	}

	addr := *listen
	if addr == "" {
		addr = cfg.GetListenAddr()
	}

	db, err := analysisdb.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		server := &http.Server{
			Addr:    addr,
			Handler: buildMux(db, cfg),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

func runCommand(args []string, dbPath, migrationsDir string) {
	switch args[0] {
	case "migrate":
		runMigrateCommand(args[1:], dbPath, migrationsDir)
	case "help":
		printHelp()
	default:
		log.Printf("Unknown command: %s", args[0])
		printHelp()
		os.Exit(1)
	}
}
