package listening

import (
	"context"
	"log"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/feeds"
)

// VideoLister lists the uploads of a channel.
type VideoLister interface {
	FetchChannel(ctx context.Context, channel string) ([]feeds.Video, error)
}

// IngestResult reports a channel ingest.
type IngestResult struct {
	Channel string       `json:"channel"`
	Skipped []string     `json:"skipped"`
	Runs    []*RunResult `json:"runs"`
	Failed  []string     `json:"failed"`
}

// IngestChannel runs the pipeline for every video in the channel feed that
// has no transcript artifact yet. Failed videos are recorded and skipped.
func (p *Pipeline) IngestChannel(ctx context.Context, lister VideoLister, channel string) (*IngestResult, error) {
	videos, err := lister.FetchChannel(ctx, channel)
	if err != nil {
		return nil, err
	}

	res := &IngestResult{Channel: channel, Skipped: []string{}, Runs: []*RunResult{}, Failed: []string{}}
	for _, v := range videos {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if p.HasTranscript(v.ID) {
			res.Skipped = append(res.Skipped, v.ID)
			continue
		}
		run, err := p.Run(ctx, v.ID)
		if err != nil {
			log.Printf("portal: ingest %s (%s) failed: %v", v.ID, v.Title, err)
			res.Failed = append(res.Failed, v.ID)
			continue
		}
		res.Runs = append(res.Runs, run)
	}
	return res, nil
}
