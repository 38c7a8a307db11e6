package service

import (
	"context"
	"log"
	"time"

	"clanbuy/internal/repository"
)

// ExpirySweeper periodically expires WAITING clans past their deadline. It is
// a convenience sweep: Join and the clan read paths re-check expiry
// themselves, so sweep timing never affects correctness, only how quickly
// stale clans stop showing up in aggregates.
type ExpirySweeper struct {
	clanRepo *repository.ClanRepository
	interval time.Duration
}

func NewExpirySweeper(clanRepo *repository.ClanRepository, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ExpirySweeper{clanRepo: clanRepo, interval: interval}
}

// Run blocks until ctx is canceled, sweeping on every tick.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Printf("[sweeper] clan expiry sweep every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[sweeper] stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				log.Printf("[sweeper] sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce expires all stale clans and returns how many were transitioned.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.clanRepo.ExpireStale(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[sweeper] expired %d clan(s)", n)
	}
	return n, nil
}
