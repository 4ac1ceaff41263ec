package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"busly/internal/bookings"
	"busly/pkg/logger"

	"github.com/IBM/sarama"
)

// ProducerConfig contains configuration for the Kafka booking event producer
type ProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "booking-events",
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// KafkaBookingPublisher publishes booking lifecycle events to Kafka.
// It implements bookings.EventPublisher.
type KafkaBookingPublisher struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
	log      *logger.Logger
}

func NewKafkaBookingPublisher(config *ProducerConfig) (*KafkaBookingPublisher, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one user's events in order on a partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaBookingPublisher{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}, nil
}

// PublishBookingEvent publishes a single booking event, keyed by user
// so per-user ordering survives partitioning.
func (p *KafkaBookingPublisher) PublishBookingEvent(ctx context.Context, event bookings.Event) error {
	env := &envelope{
		Event:      event,
		Status:     NotificationStatusQueued,
		EnqueuedAt: time.Now(),
	}

	messageBytes, err := env.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(event.UserID),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   eventHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send booking event to Kafka: %w", err)
	}

	p.log.Debug("booking event published",
		slog.String("topic", p.config.Topic),
		slog.Int64("partition", int64(partition)),
		slog.Int64("offset", offset),
		slog.String("type", event.Type),
		slog.String("reservation_id", event.ReservationID))

	return nil
}

func (p *KafkaBookingPublisher) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// HealthCheck validates the producer is usable without sending
func (p *KafkaBookingPublisher) HealthCheck(ctx context.Context) error {
	if p.producer == nil {
		return fmt.Errorf("producer is nil")
	}
	if p.config.Topic == "" {
		return fmt.Errorf("booking event topic not configured")
	}
	return nil
}

func eventHeaders(event bookings.Event) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("reservation_id"), Value: []byte(event.ReservationID)},
		{Key: []byte("user_id"), Value: []byte(event.UserID)},
		{Key: []byte("travel_date"), Value: []byte(event.TravelDate)},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
}
