package syncer

import (
	"context"
	"time"
)

// WatchConnectivity probes the gateway on an interval and feeds the result
// to the coordinator. The offline-to-online flip inside SetOnline is what
// triggers the replay; this loop only observes.
func WatchConnectivity(ctx context.Context, c *Coordinator, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := c.gw.Ping(probeCtx)
			cancel()
			c.SetOnline(ctx, err == nil)
		}
	}
}
