package workers

import (
	"context"
	"log/slog"
	"time"

	application "inflectiv/contexts/trading/marketplace/application"
	"inflectiv/contexts/trading/marketplace/ports"
)

const sourceService = "marketplace"

// OutboxRelay drains the purchase outbox into the event bus. Delivery is
// at-least-once; downstream consumers dedup by event id.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("marketplace outbox list failed",
			"event", "marketplace_outbox_list_failed",
			"module", "trading/marketplace",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		envelope := ports.EventEnvelope{
			EventID:       row.OutboxID,
			EventType:     row.EventType,
			OccurredAt:    row.CreatedAt,
			SourceService: sourceService,
			SchemaVersion: 1,
			PartitionKey:  row.PartitionKey,
			Data:          row.Payload,
		}
		if err := r.Publisher.Publish(ctx, row.EventType, envelope); err != nil {
			logger.Error("marketplace outbox publish failed",
				"event", "marketplace_outbox_publish_failed",
				"module", "trading/marketplace",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxSent(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
