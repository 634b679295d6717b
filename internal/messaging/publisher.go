package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"webstore/internal/services"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	batchTimeout    = 10 * time.Millisecond
	batchSize       = 100
	eventTypeHeader = "event-type"
)

// Producer is the subset of a kafka writer the publisher needs.
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events to one topic, keyed by order number so
// the events of an order stay in one partition.
type KafkaPublisher struct {
	producer Producer
	logger   *zap.Logger
}

// NewKafkaPublisher builds a traced kafka writer. The writer injects the
// trace context of the publishing request into the message headers.
func NewKafkaPublisher(brokers []string, topic, clientID string, tp trace.TracerProvider, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	baseWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		BatchSize:              batchSize,
		AllowAutoTopicCreation: true,
	}

	writer, err := otelkafka.NewWriter(baseWriter,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(topic),
				attribute.String("messaging.kafka.client_id", clientID),
			},
		),
	)
	if err != nil {
		return nil, err
	}
	return NewPublisher(writer, logger), nil
}

func NewPublisher(producer Producer, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger.Named("events")}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event services.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:     []byte(event.OrderNumber),
		Value:   payload,
		Headers: []kafka.Header{{Key: eventTypeHeader, Value: []byte(event.Type)}},
	}
	if err := p.producer.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("event published",
		zap.String("type", string(event.Type)),
		zap.Uint("order_id", event.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
