package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

// EventPruner deletes security events older than the retention window.
type EventPruner struct {
	repo      domain.SecurityEventRepository
	logger    *slog.Logger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func NewEventPruner(repo domain.SecurityEventRepository, logger *slog.Logger, retention, interval time.Duration) *EventPruner {
	return &EventPruner{
		repo:      repo,
		logger:    logger,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Start sweeps once immediately, then every interval until ctx is done.
func (p *EventPruner) Start(ctx context.Context) {
	p.Sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep runs one retention pass and reports how many events were removed.
func (p *EventPruner) Sweep(ctx context.Context) int64 {
	// 🛡️ Per-sweep timeout: a stuck DELETE must not pin the worker
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := p.now().UTC().Add(-p.retention)
	deleted, err := p.repo.DeleteBefore(sweepCtx, cutoff)
	if err != nil {
		p.logger.Error("security event retention sweep failed", slog.Any("error", err))
		return 0
	}
	if deleted > 0 {
		p.logger.Info("pruned security events", slog.Int64("deleted", deleted), slog.Time("cutoff", cutoff))
	}
	return deleted
}
