package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"busly/internal/bookings"
	"busly/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// UserDirectory resolves a booking event's user to a mailbox. The auth
// package provides the implementation.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (email, firstName, lastName string, err error)
}

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeout    time.Duration
	HeartbeatInterval time.Duration
	MaxProcessingTime time.Duration
	OffsetOldest      bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           []string{"localhost:9092"},
		GroupID:           "busly-notifications",
		Topics:            []string{"booking-events"},
		SessionTimeout:    30 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		MaxProcessingTime: 5 * time.Minute,
		OffsetOldest:      false,
		MaxRetries:        3,
		RetryBackoff:      time.Second,
	}
}

// BookingEventConsumer reads booking events off Kafka and turns them
// into customer emails.
type BookingEventConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	emailService  EmailService
	users         UserDirectory
	log           *logger.Logger
	ctx           context.Context
	cancel        context.CancelFunc
}

func NewBookingEventConsumer(config *ConsumerConfig, emailService EmailService, users UserDirectory) (*BookingEventConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.HeartbeatInterval
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &BookingEventConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		emailService:  emailService,
		users:         users,
		log:           logger.GetDefault(),
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func (c *BookingEventConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	c.log.Info("starting booking notification workers",
		slog.Int("workers", numWorkers),
		slog.Any("topics", c.config.Topics))

	go c.handleErrors()

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}

	return nil
}

func (c *BookingEventConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &eventGroupHandler{
		consumer: c,
		workerID: workerID,
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ctx.Done():
			return
		default:
			if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
				c.log.WithError(err).Error("consumer worker error",
					slog.Int("worker", workerID))
				time.Sleep(time.Second)
			}
		}
	}
}

func (c *BookingEventConsumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		c.log.WithError(err).Error("consumer group error")
	}
}

func (c *BookingEventConsumer) Stop() error {
	c.cancel()
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

func (c *BookingEventConsumer) HealthCheck(ctx context.Context) error {
	select {
	case <-c.ctx.Done():
		return fmt.Errorf("consumer context is cancelled")
	default:
		if c.emailService == nil {
			return fmt.Errorf("email service not configured")
		}
		return nil
	}
}

type eventGroupHandler struct {
	consumer *BookingEventConsumer
	workerID int
}

func (h *eventGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *eventGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *eventGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			if err := h.processMessage(session.Context(), message); err != nil {
				h.consumer.log.WithError(err).Error("failed to process booking event",
					slog.Int("worker", h.workerID),
					slog.Int64("offset", message.Offset))
			}
			// Mark either way; a poison message must not wedge the
			// partition, the send already retried with backoff.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *eventGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var env envelope
	if err := json.Unmarshal(message.Value, &env); err != nil {
		return fmt.Errorf("failed to unmarshal booking event: %w", err)
	}

	email, err := h.buildEmail(ctx, env.Event)
	if err != nil {
		return err
	}
	if email == nil {
		return nil
	}

	return h.sendWithRetry(ctx, email)
}

// buildEmail resolves the recipient and renders the message for the
// event type. Initiated events do not email; the customer is mid
// checkout.
func (h *eventGroupHandler) buildEmail(ctx context.Context, event bookings.Event) (*EmailMessage, error) {
	if event.Type == bookings.EventInitiated {
		return nil, nil
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return nil, fmt.Errorf("booking event has invalid user id %q: %w", event.UserID, err)
	}

	address, firstName, lastName, err := h.consumer.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	name := firstName
	if lastName != "" {
		name = firstName + " " + lastName
	}

	return RenderBookingEmail(event, address, name), nil
}

func (h *eventGroupHandler) sendWithRetry(ctx context.Context, email *EmailMessage) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoff

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = h.consumer.emailService.Send(ctx, email)
		if lastErr == nil {
			return nil
		}

		if attempt == maxRetries {
			break
		}

		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("failed to send notification after %d attempts: %w", maxRetries+1, lastErr)
}
