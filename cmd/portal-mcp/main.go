// portal-mcp is a standalone MCP server for the vocabulary portal. It opens
// the portal's SQLite database directly and serves word, study progress and
// listening tools over stdio.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "config file path")
	dbPath := flag.String("db", "", "path to portal database (default: database.path)")
	poll := flag.Duration("poll", 0, "ingest configured YouTube channels on this interval (0 disables)")
	flag.Parse()

	// stdout carries the protocol.
	log.SetOutput(os.Stderr)

	cfg, err := storage.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	engine, err := portal.NewEngine(portal.EngineConfig{Config: cfg, NotifyOut: os.Stderr})
	if err != nil {
		log.Fatalf("create portal engine: %v", err)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newServer(engine)
	if *poll > 0 {
		srv.poller = newPoller(engine, max(*poll, time.Minute))
		srv.poller.start(ctx)
		defer srv.poller.stop()
	}

	if err := srv.run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
