package config

import (
	"log/slog"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
)

const (
	PublisherKafka     = "kafka"
	PublisherGoChannel = "gochannel"
	PublisherMock      = "mock"
)

// EventConfig selects where domain events go
type EventConfig struct {
	Enabled      bool
	Publisher    string
	KafkaBrokers string
	Topic        string
}

// Brokers returns the non-empty entries of KAFKA_BROKERS
func (c *EventConfig) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

// CreateEventPublisher builds the configured publisher. Disabled or unknown
// settings get the mock publisher, which only logs.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled")
		return events.NewMockEventPublisher(logger), nil
	}

	cfg := events.PublisherConfig{
		KafkaBrokers: c.Brokers(),
		TopicName:    c.Topic,
		Logger:       logger,
	}

	switch c.Publisher {
	case PublisherKafka:
		logger.Info("Publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", c.Topic)
		return events.NewKafkaEventPublisher(cfg)
	case PublisherGoChannel:
		logger.Info("Publishing events in process", "topic", c.Topic)
		return events.NewChannelEventPublisher(cfg), nil
	case PublisherMock:
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher, using mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
