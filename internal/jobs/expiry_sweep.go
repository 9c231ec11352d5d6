package jobs

import (
	"context"
	"log"
	"time"

	"rollmark/attendance/internal/config"
)

type Expirer interface {
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// StartExpirySweep periodically flips sessions still marked active past their
// window. One-shot timers registered at creation do not survive a restart;
// the sweep restores the displayed status. Redemption never trusts the status
// alone, so sweep failures are logged and otherwise ignored.
func StartExpirySweep(ctx context.Context, cfg config.Config, store Expirer) {
	if !cfg.ExpirySweepEnabled {
		return
	}
	interval := cfg.ExpirySweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-cfg.SessionTTL)
				tickCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				expired, err := store.ExpireStale(tickCtx, cutoff)
				cancel()
				if err != nil {
					log.Printf("expiry sweep error: %v", err)
					continue
				}
				if expired > 0 {
					log.Printf("expiry sweep expired %d sessions", expired)
				}
			}
		}
	}()
}
