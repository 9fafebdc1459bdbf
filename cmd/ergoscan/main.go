package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/ergosense/posture.report/internal/analysis"
	"github.com/ergosense/posture.report/internal/analysisdb"
)

func main() {
	input := flag.String("input", "", "Recorded landmark JSONL file to scan")
	sample := flag.Int("sample", 1, "Analyze every Nth frame")
	threshold := flag.Float64("threshold", 15.0, "Movement threshold in degrees")
	dbFile := flag.String("db", "", "Optional analysis database for run persistence")
	migrationsDir := flag.String("migrations", "internal/analysisdb/migrations", "Path to the migration SQL files")
	resume := flag.String("resume", "", "Run ID of a cancelled run to resume (requires -db)")
	flag.Parse()

	var db *analysisdb.DB
	if *dbFile != "" {
		var err error
		db, err = analysisdb.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := db.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	var (
		runID      string
		checkpoint *analysis.WorkerCheckpoint
	)
	switch {
	case *resume != "":
		if db == nil {
			log.Fatal("-resume requires -db")
		}
		run, err := db.GetRun(*resume)
		if err != nil {
			log.Fatalf("failed to load run %s: %v", *resume, err)
		}
		checkpoint, err = db.LoadCheckpoint(run.ID)
		if err != nil {
			log.Fatalf("failed to load checkpoint: %v", err)
		}
		if checkpoint == nil {
			log.Fatalf("run %s has no checkpoint to resume", run.ID)
		}
		if *input == "" {
			*input = run.SourcePath
		}
		*sample = run.SampleInterval
		runID = run.ID
		if err := db.ReopenRun(runID); err != nil {
			log.Fatalf("failed to reopen run: %v", err)
		}

	case *input == "":
		flag.Usage()
		os.Exit(1)

	case db != nil:
		run, err := db.CreateRun(*input, *sample)
		if err != nil {
			log.Fatalf("failed to create run: %v", err)
		}
		runID = run.ID
		log.Printf("run %s", runID)
	}

	rec, err := analysis.OpenRecording(*input)
	if err != nil {
		log.Fatalf("failed to open recording: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var result *analysis.Result
	worker := analysis.NewWorker(rec, analysis.WorkerConfig{
		Params: analysis.AnalyzerParams{
			MovementThreshold: *threshold,
			SampleInterval:    *sample,
		},
		Resume: checkpoint,
		Events: analysis.Events{
			Progress: func(current, total int) {
				if total > 0 && current%100 == 0 {
					log.Printf("frame %d/%d", current, total)
				}
			},
			Completed: func(res *analysis.Result) {
				result = res
				if db != nil {
					if err := db.CompleteRun(runID, res); err != nil {
						log.Printf("failed to store result: %v", err)
					}
				}
			},
			Cancelled: func(res *analysis.Result, cp analysis.WorkerCheckpoint) {
				result = res
				if db == nil {
					log.Printf("cancelled at frame %d (no -db, checkpoint discarded)", cp.FrameIndex)
					return
				}
				if err := db.CancelRun(runID, res, cp); err != nil {
					log.Printf("failed to store checkpoint: %v", err)
					return
				}
				log.Printf("cancelled at frame %d; resume with -resume %s", cp.FrameIndex, runID)
			},
			Error: func(err error) {
				if db != nil {
					if dbErr := db.FailRun(runID); dbErr != nil {
						log.Printf("failed to mark run failed: %v", dbErr)
					}
				}
				log.Fatalf("scan failed: %v", err)
			},
		},
	})

	if err := worker.Start(ctx); err != nil {
		log.Fatalf("failed to start scan: %v", err)
	}
	worker.Wait()

	if result != nil {
		printReport(result)
	}
}

func printReport(res *analysis.Result) {
	fmt.Printf("frames: %d total, %d analyzed, %d skipped (interval %d, %.1fs)\n\n",
		res.TotalFrames, res.AnalyzedFrames, res.SkippedFrames,
		res.SampleInterval, res.DurationSeconds)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOINT\tMOVES\tHIGH-RISK\tRATIO\tMIN\tMAX\tAVG\tSCORE")
	for _, p := range res.SortedByMovement() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			p.DisplayName, p.MovementCount, p.HighRiskFrames, p.HighRiskRatio,
			p.MinAngle, p.MaxAngle, p.AvgAngle, p.CumulativeScore)
	}
	w.Flush()

	sum := analysis.Summarize(res)
	fmt.Printf("\nmovement: mean %.1f, stddev %.1f, median %.1f\n",
		sum.MovementMean, sum.MovementStdDev, sum.MovementMedian)
	fmt.Printf("high-risk ratio: mean %.2f, max %.2f\n",
		sum.HighRiskRatioMean, sum.HighRiskRatioMax)
}
