package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Booking  Booking  `yaml:"booking"`
	Outbox   Outbox   `yaml:"outbox"`
	Search   Search   `yaml:"search"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"trip-service"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"trips_db"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	// Topic carries the events we publish (trip.*, booking.*).
	Topic string `yaml:"topic" env:"KAFKA_TOPIC" env-default:"trip-events"`
	// PaymentTopic carries payment.authorized / payment.failed from the payment service.
	PaymentTopic string `yaml:"payment_topic" env:"KAFKA_PAYMENT_TOPIC" env-default:"payment-events"`
	GroupID      string `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"trip-service"`
}

type Booking struct {
	// PendingTimeout is how long a booking may stay PENDING without a payment
	// outcome before the expirer cancels it and frees its seats.
	PendingTimeout time.Duration `yaml:"pending_timeout" env:"BOOKING_PENDING_TIMEOUT" env-default:"15m"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env:"BOOKING_SWEEP_INTERVAL" env-default:"30s"`
}

type Outbox struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"OUTBOX_POLL_INTERVAL" env-default:"2s"`
	BatchSize    int           `yaml:"batch_size" env:"OUTBOX_BATCH_SIZE" env-default:"50"`
}

type Search struct {
	MaxPageSize  int `yaml:"max_page_size" env:"SEARCH_MAX_PAGE_SIZE" env-default:"50"`
	CandidateCap int `yaml:"candidate_cap" env:"SEARCH_CANDIDATE_CAP" env-default:"500"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
