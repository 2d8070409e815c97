package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/domain/outbox"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/kafka"
)

var (
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trip_service_outbox_events_published_total",
		Help: "The total number of events published to Kafka",
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trip_service_outbox_publish_errors_total",
		Help: "The total number of failed publish attempts",
	})
)

// OutboxPoller drains committed outbox rows to Kafka. Fetching claims rows
// with SKIP LOCKED, so multiple pollers never publish the same row twice
// concurrently; publish-then-mark still gives at-least-once delivery.
type OutboxPoller struct {
	outboxRepo   outbox.Repository
	kafkaProd    *kafka.Producer
	pollInterval time.Duration
	batchSize    int
}

func NewOutboxPoller(outboxRepo outbox.Repository, kafkaProd *kafka.Producer, pollInterval time.Duration, batchSize int) *OutboxPoller {
	return &OutboxPoller{
		outboxRepo:   outboxRepo,
		kafkaProd:    kafkaProd,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	slog.Info("outbox poller started", "topic", p.kafkaProd.Topic(), "interval", p.pollInterval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				slog.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

func (p *OutboxPoller) processBatch(ctx context.Context) error {
	events, err := p.outboxRepo.FetchBatch(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	var processedIDs []string
	var failedIDs []string

	for _, e := range events {
		// Key by correlation id so all events of one trip or booking land
		// on the same partition, preserving their relative order.
		key := []byte(e.CorrelationID)
		if len(key) == 0 {
			key = []byte(e.ID)
		}

		msg := event.Message{
			ID:            e.ID,
			Type:          e.EventType,
			CorrelationID: e.CorrelationID,
			CausationID:   e.CausationID,
			Producer:      e.Producer,
			OccurredAt:    e.CreatedAt,
			Payload:       e.Payload,
		}

		value, err := json.Marshal(msg)
		if err != nil {
			slog.Error("failed to marshal outbox event", "event_id", e.ID, "error", err)
			publishErrors.Inc()
			failedIDs = append(failedIDs, e.ID)
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = p.kafkaProd.SendMessage(sendCtx, key, value)
		cancel()
		if err != nil {
			slog.Error("failed to publish outbox event", "event_id", e.ID, "error", err)
			publishErrors.Inc()
			failedIDs = append(failedIDs, e.ID)
			continue
		}

		eventsPublished.Inc()
		processedIDs = append(processedIDs, e.ID)
	}

	if len(processedIDs) > 0 {
		if err := p.outboxRepo.MarkProcessed(ctx, processedIDs); err != nil {
			return err
		}
		slog.Debug("outbox events published", "count", len(processedIDs))
	}

	if len(failedIDs) > 0 {
		if err := p.outboxRepo.MarkFailed(ctx, failedIDs); err != nil {
			slog.Error("failed to reset failed outbox events", "error", err)
		}
	}

	return nil
}
