package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "config file path")
	addr := flag.String("addr", "", "listen address (default: server.addr)")
	flag.Parse()

	cfg, err := storage.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "portal-web: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	engine, err := portal.NewEngine(portal.EngineConfig{Config: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "portal-web: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	if cfg.Database.SeedDir != "" {
		if seeded, err := engine.Seed(""); err != nil {
			log.Printf("portal-web: seed failed: %v", err)
		} else if seeded {
			log.Printf("portal-web: seeded database from %s", cfg.Database.SeedDir)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newServer(engine, cfg.Server.AllowedOrigin),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // listening stages wait on the model
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("portal-web: listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("portal-web: %v", err)
		}
	}()

	<-done
	log.Println("portal-web: shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("portal-web: shutdown error: %v", err)
	}
	log.Println("portal-web: stopped")
}
