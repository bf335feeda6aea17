// Package jobs hosts background workers that run alongside the HTTP server.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/garageleadly/go-leads-backend/internal/services"
)

// ChargeRetrier runs one failed-charge retry sweep.
type ChargeRetrier interface {
	RetryFailedCharges(ctx context.Context) (services.SweepResult, error)
}

// SweepRunner periodically re-drives failed lead charges. The same sweep is
// also reachable on demand through POST /billing/retry-sweep; the runner just
// keeps it happening without an operator.
type SweepRunner struct {
	Billing  ChargeRetrier
	Interval time.Duration
}

// Run blocks until ctx is cancelled, executing one sweep per interval tick.
// An Interval <= 0 disables the runner and returns immediately.
//
// Sweep errors are logged and do not stop the loop; a transient Stripe or
// database outage should not kill recovery for the rest of the day.
func (r *SweepRunner) Run(ctx context.Context) {
	if r.Interval <= 0 {
		log.Info().Msg("charge retry sweep disabled")
		return
	}

	t := time.NewTicker(r.Interval)
	defer t.Stop()

	log.Info().Dur("interval", r.Interval).Msg("charge retry sweep started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("charge retry sweep stopped")
			return
		case <-t.C:
			res, err := r.Billing.RetryFailedCharges(ctx)
			if err != nil {
				log.Error().Err(err).Msg("charge retry sweep failed")
				continue
			}
			if res.Retried > 0 {
				log.Info().
					Int("retried", res.Retried).
					Int("recovered", res.Succeeded).
					Msg("charge retry sweep completed")
			}
		}
	}
}
