package bookings

import (
	"context"
	"log/slog"
	"time"

	"busly/pkg/logger"
)

// JobProcessor runs the expiry sweep that returns seats from lapsed
// pending reservations to the pool.
type JobProcessor struct {
	service  Service
	interval time.Duration
	log      *logger.Logger
	done     chan struct{}
}

func NewJobProcessor(service Service, interval time.Duration) *JobProcessor {
	if interval <= 0 {
		interval = time.Minute
	}

	return &JobProcessor{
		service:  service,
		interval: interval,
		log:      logger.GetDefault(),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. It stops when ctx is cancelled or
// Stop is called.
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.runExpirySweep(ctx)
	jp.log.Info("booking expiry sweep started",
		slog.Duration("interval", jp.interval))
}

func (jp *JobProcessor) Stop() {
	close(jp.done)
	jp.log.Info("booking expiry sweep stopped")
}

func (jp *JobProcessor) runExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.sweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) sweep(ctx context.Context) {
	released, err := jp.service.ExpireStale(ctx)
	if err != nil {
		jp.log.WithError(err).Error("expiry sweep failed")
		return
	}
	if released > 0 {
		jp.log.Info("expiry sweep released stale reservations",
			slog.Int("released", released))
	}
}
