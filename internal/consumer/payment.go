package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jkamga/axis-ride-main-projet/internal/domain/event"
	"github.com/jkamga/axis-ride-main-projet/internal/infrastructure/kafka"
	"github.com/jkamga/axis-ride-main-projet/internal/usecase"
)

var (
	paymentEventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trip_service_payment_events_processed_total",
		Help: "The total number of payment events applied to bookings",
	})
	paymentEventsIgnored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trip_service_payment_events_ignored_total",
		Help: "The total number of payment events skipped as duplicates or unknown types",
	})
	paymentEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trip_service_payment_events_dropped_total",
		Help: "The total number of payment events dropped after exhausting retries",
	})
)

const maxRetries = 5

// PaymentConsumer pulls payment outcome events off Kafka and applies them
// to bookings. Processing failures are retried with exponential backoff;
// after maxRetries the message is committed and dropped so one poison
// message cannot stall the partition.
type PaymentConsumer struct {
	consumer *kafka.Consumer
	apply    *usecase.ApplyPayment
}

func NewPaymentConsumer(consumer *kafka.Consumer, apply *usecase.ApplyPayment) *PaymentConsumer {
	return &PaymentConsumer{consumer: consumer, apply: apply}
}

func (c *PaymentConsumer) Run(ctx context.Context) {
	slog.Info("payment consumer started")

	for {
		msg, err := c.consumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("payment consumer stopped")
				return
			}
			slog.Error("failed to fetch message", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				backoff := time.Duration(1<<attempt) * time.Second
				slog.Info("retrying payment event", "attempt", attempt, "max", maxRetries, "backoff", backoff)
				select {
				case <-time.After(backoff):
				case <-ctx.Done():
					return
				}
			}

			processErr := c.process(ctx, msg.Value)
			if processErr == nil {
				if err := c.consumer.CommitMessages(ctx, msg); err != nil {
					slog.Error("failed to commit kafka message", "error", err)
				}
				break
			}

			slog.Error("payment event processing failed", "error", processErr)
			if attempt == maxRetries {
				paymentEventsDropped.Inc()
				slog.Error("dropping payment event after retries", "retries", maxRetries, "error", processErr)
				if err := c.consumer.CommitMessages(ctx, msg); err != nil {
					slog.Error("failed to commit dropped message", "error", err)
				}
			}
		}
	}
}

func (c *PaymentConsumer) process(ctx context.Context, raw []byte) error {
	var ev event.Message
	if err := json.Unmarshal(raw, &ev); err != nil {
		// malformed envelope: no amount of retrying will fix it
		slog.Error("failed to unmarshal event envelope", "error", err)
		paymentEventsIgnored.Inc()
		return nil
	}

	result, err := c.apply.Execute(ctx, ev)
	if err != nil {
		return err
	}

	switch result {
	case usecase.PaymentIgnored:
		paymentEventsIgnored.Inc()
	default:
		paymentEventsProcessed.Inc()
		slog.Info("payment event applied", "event_id", ev.ID, "type", ev.Type, "result", result)
	}
	return nil
}
