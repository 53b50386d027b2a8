// Package kafka publishes quote events to a Kafka topic with sarama.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/config"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/logging"
	"github.com/jsamuelsen/autoshop-quotes/internal/ports"
)

// HeaderEventType carries the event type so consumers can route without
// decoding the payload.
const HeaderEventType = "event-type"

// Publisher implements ports.EventPublisher with a synchronous producer.
// Events of one quote share a key and so keep their order.
type Publisher struct {
	client   sarama.Client
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher connects to the brokers in cfg.
func NewPublisher(cfg config.EventsConfig, logger *slog.Logger) (*Publisher, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 5
	sc.Producer.Return.Successes = true
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1

	client, err := sarama.NewClient(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("connecting to kafka: %w", err)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	return newPublisher(client, producer, cfg.Topic, logger), nil
}

func newPublisher(client sarama.Client, producer sarama.SyncProducer, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Publisher{
		client:   client,
		producer: producer,
		topic:    topic,
		logger:   logger.With(slog.String("component", "kafka-publisher")),
		now:      time.Now,
	}
}

// Publish implements ports.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, event ports.Event) error {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.EventType(), err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.Key()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: p.now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(event.EventType())},
		},
	}

	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: msg})

	logger := logging.FromContextOr(ctx, p.logger).With(
		slog.String("event_type", event.EventType()),
		slog.String("key", event.Key()),
	)

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		logger.ErrorContext(ctx, "failed to send event", slog.Any("error", err))
		return domain.NewUnavailableError("kafka", err.Error())
	}

	logger.DebugContext(ctx, "event sent",
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)

	return nil
}

// Close flushes and closes the producer and its client.
func (p *Publisher) Close() error {
	err := p.producer.Close()
	if p.client != nil && !p.client.Closed() {
		err = errors.Join(err, p.client.Close())
	}

	return err
}

// Name implements ports.HealthChecker.
func (p *Publisher) Name() string {
	return "kafka"
}

// Check implements ports.HealthChecker.
func (p *Publisher) Check(context.Context) error {
	if p.client == nil {
		return nil
	}

	if p.client.Closed() {
		return errors.New("kafka client closed")
	}

	if len(p.client.Brokers()) == 0 {
		return errors.New("no kafka brokers available")
	}

	return nil
}

// headerCarrier lets the OpenTelemetry propagator write trace context into
// record headers.
type headerCarrier struct {
	msg *sarama.ProducerMessage
}

func (c headerCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}

	return ""
}

func (c headerCarrier) Set(key, value string) {
	c.msg.Headers = append(c.msg.Headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, h := range c.msg.Headers {
		keys = append(keys, string(h.Key))
	}

	return keys
}
