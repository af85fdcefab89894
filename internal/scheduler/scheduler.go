package scheduler

import (
	"context"
	"log"
	"time"
)

type waitlistPruner interface {
	PruneStale(ctx context.Context) (int, error)
}

// Scheduler periodically evicts waitlist entries of classes that start too
// soon for a fair promotion.
type Scheduler struct {
	pruner   waitlistPruner
	interval time.Duration
}

func New(pruner waitlistPruner, interval time.Duration) *Scheduler {
	return &Scheduler{pruner: pruner, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("[Scheduler] waitlist pruning every %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("[Scheduler] stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	pruned, err := s.pruner.PruneStale(ctx)
	if err != nil {
		log.Printf("[Scheduler] waitlist pruning failed: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("[Scheduler] pruned %d stale waitlist entries", pruned)
	}
}
