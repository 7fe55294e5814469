package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/ironquest/internal/config"
	"github.com/meltforce/ironquest/internal/game"
	"github.com/meltforce/ironquest/internal/mcp"
	"github.com/meltforce/ironquest/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("url", "", "IronQuest server URL for remote mode (e.g. https://ironquest.tail1234.ts.net)")
	userID := flag.Int("user", 1, "default user ID for remote mode")
	dataDir := flag.String("gamedata", "", "game data directory (overrides config)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironquest-mcp", Version)
		return
	}

	// Logs go to stderr; stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	gamedataDir := *dataDir

	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL, *userID)
		if gamedataDir == "" {
			gamedataDir = "gamedata"
		}
		log.Info("remote mode", "server", *serverURL, "user", *userID)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		if gamedataDir == "" {
			gamedataDir = cfg.Game.DataDir
		}
		log.Info("local mode", "database", cfg.Database.Name)
	}

	data, err := game.Load(gamedataDir)
	if err != nil {
		log.Error("failed to load game data", "dir", gamedataDir, "error", err)
		os.Exit(1)
	}

	s := mcp.New(ds, data, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
