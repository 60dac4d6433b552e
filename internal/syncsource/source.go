// Package syncsource keeps the local working set aligned with the remote
// store. The push source streams change events from Kafka; when the broker
// cannot be reached at startup, the poll source takes over with periodic
// full refreshes. Same capability, two strategies.
package syncsource

import (
	"context"

	"habitflow/pkg/logger"
)

// SyncSource feeds remote changes into the local state until ctx is done.
type SyncSource interface {
	Run(ctx context.Context)
}

// Select probes the push source and falls back to polling when the
// subscription cannot be established. The fallback is required behavior,
// not best-effort: a client without push still converges.
func Select(ctx context.Context, push *PushSource, poll *PollSource) SyncSource {
	if err := push.Probe(ctx); err != nil {
		logger.Warn(ctx, "Push subscription unavailable; falling back to polling", "error", err)
		return poll
	}
	logger.Info(ctx, "Push sync source selected")
	return push
}
