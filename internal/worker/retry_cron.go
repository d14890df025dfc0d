package worker

// retry_cron.go
// Background goroutine that periodically re-delivers shipment notices stuck
// in status='pending' with a next_retry_at in the past. Re-enqueues them to
// the shipment queue so the pool's inline retry and circuit breaker apply.

import (
	"context"
	"fmt"
	"time"

	"marketrunner/internal/infra"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ShipmentRepo repository.ShipmentRepository
	Dispatcher   *Dispatcher
	CB           *infra.CircuitBreaker
	RDB          *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries due notices, and re-enqueues them. It respects the context for
// graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed platform
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	notices, err := cfg.ShipmentRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(notices) == 0 {
		return
	}

	log.Info().Int("count", len(notices)).Msg("retry_cron: re-enqueueing pending notices")

	for i := range notices {
		notice := &notices[i]

		if notice.RetryCount >= MaxNoticeRetries {
			// Past the cap the worker would refuse anyway; park it in the DLQ.
			ParkNotice(ctx, cfg.RDB, notice,
				fmt.Sprintf("max retries (%d) exceeded", MaxNoticeRetries))
			notice.Status = model.NoticeError
			notice.NextRetryAt = nil
			if err := cfg.ShipmentRepo.Update(ctx, notice); err != nil {
				log.Error().Err(err).Str("notice_id", notice.ID.String()).Msg("retry_cron: failed to park notice")
			}
			continue
		}

		// Clear the schedule before re-enqueueing so one notice is never
		// queued twice within a window.
		notice.NextRetryAt = nil
		if err := cfg.ShipmentRepo.Update(ctx, notice); err != nil {
			log.Error().Err(err).Str("notice_id", notice.ID.String()).Msg("retry_cron: failed to claim notice")
			continue
		}
		if err := cfg.Dispatcher.EnqueueShipmentNotice(ctx, ShipmentJobPayload{NoticeID: notice.ID.String()}); err != nil {
			log.Error().Err(err).Str("notice_id", notice.ID.String()).Msg("retry_cron: failed to enqueue notice")
		}
	}
}
