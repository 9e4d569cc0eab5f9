package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/google/uuid"
)

type OutboxStore interface {
	PendingEvents(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// Relay moves committed outbox events to the publisher. Delivery is at least
// once: an event published but not yet marked is sent again on the next poll.
type Relay struct {
	store     OutboxStore
	publisher Publisher
	cfg       RelayConfig
	log       *slog.Logger
}

func NewRelay(store OutboxStore, publisher Publisher, cfg RelayConfig, log *slog.Logger) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &Relay{store: store, publisher: publisher, cfg: cfg, log: log.With("component", "outbox_relay")}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.log.Info("relay_started", "poll_interval", r.cfg.PollInterval, "batch_size", r.cfg.BatchSize)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay_stopped")
			return
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.log.Error("relay_batch_error", "error", err)
			}
		}
	}
}

// Flush publishes one batch of pending events and returns how many were
// delivered. A failed event is recorded and retried on a later poll until it
// reaches MaxAttempts.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	batch, err := r.store.PendingEvents(ctx, r.cfg.BatchSize, r.cfg.MaxAttempts)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, ev := range batch {
		if err := r.publisher.Publish(ctx, ev); err != nil {
			l := r.log.With("event_id", ev.ID, "event_type", ev.EventType, "attempt", ev.Attempts+1)
			if ev.Attempts+1 >= r.cfg.MaxAttempts {
				l.Error("relay_event_dead", "error", err)
			} else {
				l.Warn("relay_publish_error", "error", err)
			}
			if err := r.store.MarkFailed(ctx, ev.ID, err.Error()); err != nil {
				return published, err
			}
			continue
		}
		if err := r.store.MarkPublished(ctx, ev.ID); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}
