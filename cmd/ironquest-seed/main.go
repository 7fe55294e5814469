package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/ironquest/internal/seed"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "IronQuest server URL (e.g. https://ironquest.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("IRONQUEST_AUTH_API_KEY"), "API key for mutation endpoints")
	logDir := flag.String("logs", "", "directory of workout log YAML files")
	dryRun := flag.Bool("dry-run", false, "parse logs but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironquest-seed", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *logDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironquest-seed -server <URL> -api-key <key> -logs <dir> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if !*dryRun {
		if *serverURL == "" {
			fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
			os.Exit(1)
		}
		if *apiKey == "" {
			fmt.Fprintf(os.Stderr, "Error: -api-key is required (or set IRONQUEST_AUTH_API_KEY)\n")
			os.Exit(1)
		}
	}

	// Strip trailing slash from server URL
	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*logDir)
	if err != nil || !info.IsDir() {
		log.Error("log directory not found", "path", *logDir)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".ironquest-seed")

	state, err := seed.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil-safe in dry-run mode)
	var client *seed.Client
	if !*dryRun {
		client = seed.NewClient(*serverURL, *apiKey)
	}

	if *dryRun {
		log.Info("DRY RUN mode - logs will be parsed but not sent")
	}

	// Run replay
	runner := seed.New(client, state, *logDir, *dryRun, log)
	stats, err := runner.Run()
	if err != nil {
		log.Error("replay failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("replay complete")
}

func printStats(stats *seed.Stats) {
	fmt.Println()
	fmt.Println("=== Replay Summary ===")
	fmt.Printf("  Files total:    %d\n", stats.FilesTotal)
	fmt.Printf("  Files applied:  %d\n", stats.FilesApplied)
	fmt.Printf("  Files skipped:  %d (already applied)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:  %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Workouts sent:  %d\n", stats.WorkoutsSent)
	fmt.Printf("  Sets sent:      %d\n", stats.SetsSent)
	fmt.Printf("  XP earned:      %d\n", stats.XPEarned)
	fmt.Printf("  Gold earned:    %d\n", stats.GoldEarned)
	fmt.Println()
}
