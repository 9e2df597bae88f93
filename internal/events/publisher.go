package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	DriverGoChannel = "gochannel"
	DriverKafka     = "kafka"
	DriverNone      = "none"
)

// Config selects and configures the event backend
type Config struct {
	Driver       string   `yaml:"driver"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	TopicPrefix  string   `yaml:"topic_prefix"`
}

// NewPublisher builds the publisher named by cfg.Driver. An empty driver
// selects the in-process GoChannel backend.
func NewPublisher(cfg Config, logger *slog.Logger) (Publisher, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch cfg.Driver {
	case "", DriverGoChannel:
		return NewWatermillPublisher(gochannel.NewGoChannel(gochannel.Config{}, wmLogger), cfg.TopicPrefix, logger), nil
	case DriverKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka event driver requires at least one broker")
		}
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		return NewWatermillPublisher(pub, cfg.TopicPrefix, logger), nil
	case DriverNone:
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown event driver %q", cfg.Driver)
	}
}

// WatermillPublisher encodes events as JSON watermill messages
type WatermillPublisher struct {
	pub    message.Publisher
	prefix string
	logger *slog.Logger
}

func NewWatermillPublisher(pub message.Publisher, topicPrefix string, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{pub: pub, prefix: topicPrefix, logger: logger}
}

func (p *WatermillPublisher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = watermill.NewUUID()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	topic := p.prefix + event.Type
	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "Event published", "topic", topic, "event_id", event.ID)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.pub.Close()
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
