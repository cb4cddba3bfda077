package main

import (
	"context"
	"log"
	"sync"
	"time"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
)

// pollResult summarizes one ingest cycle across the configured channels.
type pollResult struct {
	Channels  int                    `json:"channels"`
	Processed int                    `json:"processed"`
	Skipped   int                    `json:"skipped"`
	Failed    int                    `json:"failed"`
	Results   []*portal.IngestResult `json:"results"`
}

// poller runs a background channel-ingest loop.
type poller struct {
	engine   *portal.Engine
	interval time.Duration

	mu   sync.Mutex
	done chan struct{}
}

func newPoller(engine *portal.Engine, interval time.Duration) *poller {
	return &poller{
		engine:   engine,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// start launches the background poll loop. It polls immediately, then on
// each tick of the configured interval.
func (p *poller) start(ctx context.Context) {
	go p.loop(ctx)
	log.Printf("poller: started (interval=%s)", p.interval)
}

// stop signals the poll loop to exit.
func (p *poller) stop() {
	close(p.done)
	log.Printf("poller: stopped")
}

// poll runs a single ingest cycle. Also used by the poll_now tool.
func (p *poller) poll(ctx context.Context) (*pollResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	results, err := p.engine.IngestConfiguredChannels(ctx)
	if err != nil {
		return nil, err
	}

	out := &pollResult{Channels: len(results), Results: results}
	for _, r := range results {
		out.Processed += len(r.Runs)
		out.Skipped += len(r.Skipped)
		out.Failed += len(r.Failed)
	}

	log.Printf("poller: %d channels, %d videos processed, %d skipped, %d failed",
		out.Channels, out.Processed, out.Skipped, out.Failed)
	return out, nil
}

func (p *poller) loop(ctx context.Context) {
	if _, err := p.poll(ctx); err != nil {
		log.Printf("poller: initial poll error: %v", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.poll(ctx); err != nil {
				log.Printf("poller: poll error: %v", err)
			}
		}
	}
}
