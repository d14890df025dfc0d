package worker

// Notices that exhaust their retries are parked on a Redis list named
// dlq:{queue} so an operator can inspect and replay them by hand.

import (
	"context"
	"encoding/json"
	"time"

	"marketrunner/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DeadLetter records why a shipment notice was taken out of circulation.
type DeadLetter struct {
	Queue     string    `json:"queue"`
	NoticeID  string    `json:"notice_id"`
	OrderID   string    `json:"order_id"`
	RunNumber int       `json:"run_number"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
	FailedAt  time.Time `json:"failed_at"`
}

// ParkNotice pushes an exhausted notice onto the shipment dead letter list.
func ParkNotice(ctx context.Context, rdb *redis.Client, notice *model.ShipmentNotice, reason string) {
	entry := DeadLetter{
		Queue:     QueueShipments,
		NoticeID:  notice.ID.String(),
		OrderID:   notice.OrderID.String(),
		RunNumber: notice.RunNumber,
		Reason:    reason,
		Attempts:  notice.RetryCount,
		FailedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("notice_id", entry.NoticeID).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + QueueShipments
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: push failed")
		return
	}

	log.Warn().
		Str("notice_id", entry.NoticeID).
		Int("run_number", entry.RunNumber).
		Str("reason", reason).
		Int("attempts", entry.Attempts).
		Msg("dlq: notice parked")
}

// DLQLength returns the number of parked entries for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
