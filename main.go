package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/config"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/db"
)

var (
	configPath = flag.String("config", "", "Path to JSON settings file")
	dbPath     = flag.String("db", "", "Override the database path from the settings file")
	listen     = flag.String("listen", "", "Override the listen address (serve command)")
	narrate    = flag.Bool("narrate", false, "Generate an AI narrative after a pipeline run")
)

func loadConfig() *config.Config {
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		return cfg
	}
	// No -config flag: use the default file when present, defaults otherwise.
	if _, err := os.Stat(config.DefaultConfigPath); err == nil {
		cfg, err := config.Load(config.DefaultConfigPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		return cfg
	}
	return config.Empty()
}

func main() {
	flag.Parse()

	cfg := loadConfig()
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "ingest":
		runIngest(cfg, args[1:])
	case "sessions":
		runSessions(cfg, args[1:])
	case "tracker":
		runTracker(cfg, args[1:])
	case "histogram":
		runHistogram(cfg, args[1:])
	case "migrate":
		db.RunMigrateCommand(args[1:], *dbPath)
	case "serve":
		runServe(cfg)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: zazi-izandi [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  ingest <file>        Load an EGRA export (CSV or XLSX) and run the pipeline")
	fmt.Println("  sessions <file>      Load teaching session logs and record group progress")
	fmt.Println("  tracker [run_id]     Export the letter tracker CSV for a run (latest by default)")
	fmt.Println("  histogram [run_id]   Save a PNG histogram of letters-correct scores")
	fmt.Println("  migrate <action>     Manage the database schema (up, down, status, force)")
	fmt.Println("  serve                Start the HTTP API server")
	fmt.Println("  help                 Show this help")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
