package deposit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Reconciler periodically compares every card balance with its ledger
type Reconciler struct {
	service  *Service
	interval time.Duration
	log      zerolog.Logger
}

// NewReconciler creates a reconciler; an interval of zero disables it
func NewReconciler(service *Service, interval time.Duration, log zerolog.Logger) *Reconciler {
	return &Reconciler{service: service, interval: interval, log: log}
}

// Start runs a check immediately and then every interval until ctx is done
func (r *Reconciler) Start(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Info().Msg("Deposit reconciler disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Check(ctx)
			}
		}
	}()
}

// Check runs one reconciliation pass and returns the number of divergent cards
func (r *Reconciler) Check(ctx context.Context) int {
	found, err := r.service.Reconcile(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.log.Error().Err(err).Msg("Deposit reconciliation failed")
		}
		return 0
	}

	if len(found) > 0 {
		r.log.Warn().Int("cards", len(found)).Msg("Deposit reconciliation found mismatches")
	} else {
		r.log.Debug().Msg("Deposit balances reconciled")
	}
	return len(found)
}
