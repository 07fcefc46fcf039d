package scraper

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs a saving scrape on start and then every interval.
type Scheduler struct {
	manager  *Manager
	interval time.Duration
	logger   *zerolog.Logger
}

func NewScheduler(manager *Manager, interval time.Duration, logger *zerolog.Logger) *Scheduler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Scheduler{manager: manager, interval: interval, logger: logger}
}

// Start blocks until ctx is cancelled. It returns immediately when scraping is disabled.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.manager.cfg.Enabled {
		s.logger.Info().Msg("automatic scraping disabled")
		return
	}
	if s.interval <= 0 {
		s.interval = 6 * time.Hour
	}
	s.logger.Info().Dur("interval", s.interval).Str("mode", s.manager.source.Mode()).Msg("scrape scheduler started")

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	run, err := s.manager.ScrapeAll(ctx, true)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("scheduled scrape failed")
		}
		return
	}
	s.logger.Info().Str("run_id", run.RunID).Int("saved", run.TotalSaved).Msg("scheduled scrape complete")
}
