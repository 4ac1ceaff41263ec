package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"busly/internal/bookings"
	"busly/internal/shared/config"
	"busly/pkg/logger"
)

const defaultConsumerWorkers = 3

// Service owns the booking notification pipeline: the Kafka publisher
// the orchestrator writes to, and the consumer workers that turn the
// events into emails.
type Service struct {
	publisher *KafkaBookingPublisher
	consumer  *BookingEventConsumer
	log       *logger.Logger

	isRunning bool
	mu        sync.Mutex
}

// NewService wires the pipeline from configuration. When Kafka is
// disabled it returns (nil, nil): callers treat a nil service, and the
// nil publisher it would carry, as notifications-off.
func NewService(cfg *config.Config, users UserDirectory) (*Service, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producerConfig := DefaultProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.Topic = cfg.Kafka.BookingTopic

	publisher, err := NewKafkaBookingPublisher(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking event publisher: %w", err)
	}

	emailService, err := buildEmailService(cfg)
	if err != nil {
		publisher.Close()
		return nil, err
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.Topics = []string{cfg.Kafka.BookingTopic}
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroup

	consumer, err := NewBookingEventConsumer(consumerConfig, emailService, users)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create booking event consumer: %w", err)
	}

	return &Service{
		publisher: publisher,
		consumer:  consumer,
		log:       logger.GetDefault(),
	}, nil
}

// buildEmailService picks SMTP when configured, the mock otherwise
func buildEmailService(cfg *config.Config) (EmailService, error) {
	if cfg.Email.SMTPHost == "" {
		return NewMockEmailService(), nil
	}

	return NewSMTPEmailService(&SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  "Busly",
		UseTLS:    true,
	})
}

// Publisher returns the event publisher for the booking orchestrator.
// Safe to call on a nil service.
func (s *Service) Publisher() bookings.EventPublisher {
	if s == nil {
		return nil
	}
	return s.publisher
}

// Start launches the consumer workers. No-op on a nil service.
func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("notification service is already running")
	}

	if err := s.consumer.StartConsumers(ctx, defaultConsumerWorkers); err != nil {
		return fmt.Errorf("failed to start consumers: %w", err)
	}

	s.isRunning = true
	s.log.Info("notification service started",
		slog.Int("workers", defaultConsumerWorkers))
	return nil
}

// Stop shuts the pipeline down. No-op on a nil service.
func (s *Service) Stop() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	if err := s.consumer.Stop(); err != nil {
		s.log.WithError(err).Error("error stopping consumer")
	}
	if err := s.publisher.Close(); err != nil {
		s.log.WithError(err).Error("error closing publisher")
	}

	s.isRunning = false
	s.log.Info("notification service stopped")
	return nil
}

// HealthCheck reports pipeline health. A nil service is healthy by
// definition, notifications are simply off.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if err := s.publisher.HealthCheck(ctx); err != nil {
		return err
	}
	return s.consumer.HealthCheck(ctx)
}
