package syncsource

import (
	"context"
	"time"

	"habitflow/internal/gateway"
	"habitflow/internal/syncer"
	"habitflow/pkg/logger"
)

// PollSource refreshes the working set with periodic full re-lists through
// the gateway. Coarser than push, but needs nothing beyond the gateway.
type PollSource struct {
	gw        gateway.Gateway
	co        *syncer.Coordinator
	interval  time.Duration
	onRefresh func(ctx context.Context, ownerID string)
}

// NewPoll builds a poll source. onRefresh (optional) runs after an owner's
// snapshot was replaced, e.g. to invalidate response caches.
func NewPoll(gw gateway.Gateway, co *syncer.Coordinator, interval time.Duration, onRefresh func(ctx context.Context, ownerID string)) *PollSource {
	return &PollSource{gw: gw, co: co, interval: interval, onRefresh: onRefresh}
}

// Run polls until ctx is done.
func (p *PollSource) Run(ctx context.Context) {
	logger.Info(ctx, "Poll source started", "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refreshAll(ctx)
		}
	}
}

func (p *PollSource) refreshAll(ctx context.Context) {
	// While offline the optimistic working set is the best data we have;
	// a failed re-list must not clobber it.
	if !p.co.Online() {
		return
	}
	for _, ownerID := range p.co.Store().Owners() {
		p.refreshOwner(ctx, ownerID)
	}
}

func (p *PollSource) refreshOwner(ctx context.Context, ownerID string) {
	habits, err := p.gw.ListHabits(ctx, ownerID)
	if err != nil {
		logger.Warn(ctx, "Poll refresh list habits failed", "error", err, "user_id", ownerID)
		return
	}
	logs, err := p.gw.ListLogs(ctx, ownerID)
	if err != nil {
		logger.Warn(ctx, "Poll refresh list logs failed", "error", err, "user_id", ownerID)
		return
	}
	p.co.Store().ReplaceOwner(ownerID, habits, logs)
	if p.onRefresh != nil {
		p.onRefresh(ctx, ownerID)
	}
}
