package config

import (
	"time"

	"github.com/Skotchmaster/restaurant_orders/pkg/config"
)

type ServiceConfig struct {
	config.Config

	OrderEventsTopic   string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
}

func Load() ServiceConfig {
	return ServiceConfig{
		Config: config.Load(),

		OrderEventsTopic:   config.EnvDefault("ORDER_EVENTS_TOPIC", "order_events"),
		OutboxPollInterval: config.EnvDurationDefault("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:    config.EnvIntDefault("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxAttempts:  config.EnvIntDefault("OUTBOX_MAX_ATTEMPTS", 10),
	}
}

// Validate reports the first missing required setting.
func (c ServiceConfig) Validate() error {
	if err := config.NonEmpty(c.DatabaseURL, "DATABASE_URL"); err != nil {
		return err
	}
	return config.NonEmpty(string(c.JWTAccessSecret), "JWT_SECRET")
}
