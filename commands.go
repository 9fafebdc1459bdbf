package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ergosense/posture.report/internal/analysisdb"
)

// runMigrateCommand handles the 'migrate' subcommand dispatching
func runMigrateCommand(args []string, dbPath, migrationsDir string) {
	if len(args) < 1 {
		printMigrateHelp()
		os.Exit(1)
	}

	db, err := analysisdb.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch args[0] {
	case "up":
		log.Printf("Running migrations...")
		if err := db.MigrateUp(migrationsDir); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("All migrations applied successfully")

	case "down":
		log.Printf("Rolling back the most recent migration...")
		if err := db.MigrateDown(migrationsDir); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Rollback complete")

	case "version":
		version, dirty, err := db.MigrateVersion(migrationsDir)
		if err != nil {
			log.Fatalf("Failed to read migration version: %v", err)
		}
		if dirty {
			fmt.Printf("version %d (dirty)\n", version)
		} else {
			fmt.Printf("version %d\n", version)
		}

	case "help":
		printMigrateHelp()

	default:
		fmt.Printf("Unknown migrate action: %s\n\n", args[0])
		printMigrateHelp()
		os.Exit(1)
	}
}

func printMigrateHelp() {
	fmt.Print(`Usage: posture-report migrate <action>

Actions:
  up        Apply all pending migrations
  down      Roll back the most recent migration
  version   Print the current schema version
  help      Show this help
`)
}

func printHelp() {
	fmt.Print(`Usage: posture-report [flags] [command]

Commands:
  migrate   Manage the database schema (see 'migrate help')
  help      Show this help

With no command, starts the analysis HTTP server.
`)
}
