package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/ai"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/api"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/config"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/db"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/ingest"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/letters"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/pipeline"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/report"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/security"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/version"
)

func openDatabase() *db.DB {
	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return database
}

// resolveRun returns the explicit run ID from args or falls back to the
// latest finished run.
func resolveRun(database *db.DB, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	runID, err := database.LatestRunID()
	if err != nil {
		log.Fatalf("Failed to find latest run: %v", err)
	}
	if runID == "" {
		log.Fatal("No finished pipeline run; ingest an EGRA export first")
	}
	return runID
}

func runIngest(cfg *config.Config, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: zazi-izandi ingest <file>")
	}

	recs, err := ingest.LoadLearners(args[0])
	if err != nil {
		log.Fatalf("Failed to load learner export: %v", err)
	}
	log.Printf("Loaded %d learner records from %s", len(recs), args[0])

	database := openDatabase()
	defer database.Close()

	result, err := pipeline.Run(database, recs, cfg.GetGroupSize())
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	fmt.Printf("Run %s finished: %d learners, %d cohorts\n", result.RunID, result.Learners, result.Cohorts)
	for _, s := range result.Summaries {
		fmt.Printf("  %s / %s: %d learners, %d groups, mean %.1f letters correct\n",
			s.School, s.ClassCohort, s.Learners, s.Groups, s.MeanLetters)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  WARNING: %s\n", w)
	}

	if *narrate {
		printNarrative(cfg, database, result)
	}
}

func printNarrative(cfg *config.Config, database *db.DB, result *pipeline.Result) {
	apiKey := cfg.GetAIKey()
	if apiKey == "" {
		log.Print("Skipping narrative: no API key configured")
		return
	}

	rollup, err := database.GroupProgressRollup()
	if err != nil {
		log.Printf("Skipping narrative: %v", err)
		return
	}
	flags := pipeline.FlagSameProgress(rollup, cfg.GetSameProgressMinGroups())

	client, err := ai.NewClient(apiKey, cfg.GetAIBaseURL(), cfg.GetAIModel(), nil)
	if err != nil {
		log.Printf("Skipping narrative: %v", err)
		return
	}
	summary, err := client.SummarizeRun(result, flags)
	if err != nil {
		log.Printf("Narrative generation failed: %v", err)
		return
	}
	fmt.Printf("\n%s\n", summary)
}

func runSessions(cfg *config.Config, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: zazi-izandi sessions <file>")
	}

	sessions, err := ingest.LoadSessions(args[0])
	if err != nil {
		log.Fatalf("Failed to load session log: %v", err)
	}

	database := openDatabase()
	defer database.Close()

	for _, s := range sessions {
		progress := letters.CalculateProgress(s.TaughtLetters)
		if err := database.RecordSession(s.School, s.TA, s.GroupName, s.TaughtLetters, progress, s.SessionAt); err != nil {
			log.Fatalf("Failed to record session for %s/%s: %v", s.TA, s.GroupName, err)
		}
	}
	fmt.Printf("Recorded %d sessions from %s\n", len(sessions), args[0])
}

func runTracker(cfg *config.Config, args []string) {
	database := openDatabase()
	defer database.Close()

	runID := resolveRun(database, args)
	export, err := report.ExportTracker(database, cfg.GetExportDir(), runID)
	if err != nil {
		log.Fatalf("Tracker export failed: %v", err)
	}
	fmt.Printf("Tracker written to %s\n", export.Filepath)
}

func runHistogram(cfg *config.Config, args []string) {
	database := openDatabase()
	defer database.Close()

	runID := resolveRun(database, args)
	recs, err := database.Learners(runID, "", "")
	if err != nil {
		log.Fatalf("Failed to load learners: %v", err)
	}

	scores := make([]float64, len(recs))
	for i, rec := range recs {
		scores[i] = float64(rec.LettersCorrect)
	}

	if err := os.MkdirAll(cfg.GetExportDir(), 0o755); err != nil {
		log.Fatalf("Failed to create export dir: %v", err)
	}
	path := filepath.Join(cfg.GetExportDir(), fmt.Sprintf("scores_%s.png", security.SanitizeFilename(runID)))
	if err := report.SaveScoreHistogram(path, scores, 0); err != nil {
		log.Fatalf("Histogram failed: %v", err)
	}
	fmt.Printf("Histogram written to %s\n", path)
}

func runServe(cfg *config.Config) {
	database := openDatabase()
	defer database.Close()

	addr := cfg.GetListenAddr()
	if *listen != "" {
		addr = *listen
	}

	mux := http.NewServeMux()
	if cfg.GetAdminRoutes() {
		database.AttachAdminRoutes(mux)
	}
	mux.Handle("/api/", api.NewServer(database, cfg).ServeMux())

	server := &http.Server{
		Addr:    addr,
		Handler: api.LoggingMiddleware(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("zazi-izandi %s listening on %s", version.Version, addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
