package worker

// shipment_worker.go
// Processes marketplace acknowledgment jobs from QueueShipments.
// Posts the shipment notice to the platform and, on acceptance, flips the
// order's picked items to shipped. Failed notices stay pending with a
// next_retry_at for the retry cron; exponential backoff, max 3 inline tries.

import (
	"context"
	"encoding/json"
	"time"

	"marketrunner/internal/infra"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxNoticeRetries is the cap across inline attempts plus cron re-deliveries;
// past it the notice moves to error and the DLQ.
const MaxNoticeRetries = 8

// ShipmentJobPayload is the job envelope sent to QueueShipments.
type ShipmentJobPayload struct {
	NoticeID string `json:"notice_id"`
}

// ShipmentWorker delivers shipment notices to the marketplace platform.
type ShipmentWorker struct {
	client       *infra.MarketplaceClient
	breaker      *infra.CircuitBreaker
	shipmentRepo repository.ShipmentRepository
	orderRepo    repository.OrderRepository
}

func NewShipmentWorker(
	client *infra.MarketplaceClient,
	breaker *infra.CircuitBreaker,
	shipmentRepo repository.ShipmentRepository,
	orderRepo repository.OrderRepository,
) *ShipmentWorker {
	return &ShipmentWorker{
		client:       client,
		breaker:      breaker,
		shipmentRepo: shipmentRepo,
		orderRepo:    orderRepo,
	}
}

// Process handles a single shipment job:
//  1. Parse ShipmentJobPayload from the job envelope
//  2. Load the notice and its order
//  3. Post to the platform through the circuit breaker, 3 inline attempts
//  4. On acceptance: notice → acknowledged, order items picked → shipped
//  5. On failure: bump retry_count and schedule the cron's next attempt
func (w *ShipmentWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ShipmentJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("shipment_worker: invalid payload")
		return
	}

	noticeID, err := uuid.Parse(payload.NoticeID)
	if err != nil {
		log.Error().Str("notice_id", payload.NoticeID).Msg("shipment_worker: invalid notice_id")
		return
	}

	notice, err := w.shipmentRepo.FindByID(ctx, noticeID)
	if err != nil {
		log.Error().Err(err).Str("notice_id", payload.NoticeID).Msg("shipment_worker: notice not found")
		return
	}
	if notice.Status != model.NoticePending {
		return
	}

	order, err := w.orderRepo.FindByID(ctx, notice.OrderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", notice.OrderID.String()).Msg("shipment_worker: order not found")
		return
	}

	var ack *infra.ShipmentAck
	sendErr := withRetry(ctx, 3, func(attempt int) error {
		return w.breaker.Execute(func() error {
			resp, err := w.client.AcknowledgeShipment(ctx, infra.ShipmentPayload{
				PlatformOrderID: order.PlatformOrderID,
				RunNumber:       notice.RunNumber,
				ShippedAt:       time.Now().UTC().Format(time.RFC3339),
			})
			if err != nil {
				log.Warn().
					Err(err).
					Int("attempt", attempt+1).
					Str("notice_id", payload.NoticeID).
					Msg("shipment_worker: platform attempt failed, retrying")
				return err
			}
			ack = resp
			return nil
		})
	})

	if sendErr != nil || ack == nil || !ack.Accepted {
		w.scheduleRetry(ctx, notice, sendErr, ack)
		return
	}

	notice.Status = model.NoticeAcknowledged
	notice.NextRetryAt = nil
	notice.LastError = nil
	if err := w.shipmentRepo.Update(ctx, notice); err != nil {
		log.Error().Err(err).Str("notice_id", payload.NoticeID).Msg("shipment_worker: failed to update notice")
		return
	}
	if err := w.orderRepo.MarkShipped(ctx, notice.OrderID, notice.RunID); err != nil {
		log.Error().Err(err).Str("order_id", notice.OrderID.String()).Msg("shipment_worker: failed to mark order shipped")
		return
	}
	log.Info().
		Str("notice_id", payload.NoticeID).
		Str("platform_order_id", order.PlatformOrderID).
		Str("reference", ack.Reference).
		Msg("shipment_worker: acknowledged")
}

func (w *ShipmentWorker) scheduleRetry(ctx context.Context, notice *model.ShipmentNotice, sendErr error, ack *infra.ShipmentAck) {
	notice.RetryCount++
	msg := "platform rejected the notice"
	if sendErr != nil {
		msg = sendErr.Error()
	} else if ack != nil && ack.Message != "" {
		msg = ack.Message
	}
	notice.LastError = &msg

	if notice.RetryCount >= MaxNoticeRetries {
		notice.Status = model.NoticeError
		notice.NextRetryAt = nil
		log.Error().
			Str("notice_id", notice.ID.String()).
			Int("retries", notice.RetryCount).
			Msg("shipment_worker: max retries exceeded, moving to error/DLQ")
	} else {
		nextRetry := time.Now().Add(computeRetryBackoff(notice.RetryCount))
		notice.NextRetryAt = &nextRetry
		log.Warn().
			Str("notice_id", notice.ID.String()).
			Int("retry_count", notice.RetryCount).
			Time("next_retry_at", nextRetry).
			Msg("shipment_worker: delivery failed, scheduled next attempt")
	}
	_ = w.shipmentRepo.Update(ctx, notice)
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// computeRetryBackoff doubles per recorded retry: 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	backoff := time.Minute << uint(retryCount-1)
	if backoff > 30*time.Minute {
		return 30 * time.Minute
	}
	return backoff
}
