package thumbnail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageSource is the slice of the Kafka consumer the worker depends on.
// Satisfied by *kafka.Consumer.
type MessageSource interface {
	Fetch(ctx context.Context) (kafkago.Message, error)
	Commit(ctx context.Context, msgs ...kafkago.Message) error
}

// Worker drives the pipeline from the uploads topic: one Kafka message is
// one notification batch. Offsets are committed after processing, so a crash
// mid-batch redelivers the whole notification; the pipeline's idempotence
// makes that safe.
type Worker struct {
	consumer MessageSource
	service  *Service
	logger   *zap.Logger
}

// NewWorker constructs a Worker around a consumer and the pipeline service.
func NewWorker(consumer MessageSource, service *Service, logger *zap.Logger) *Worker {
	return &Worker{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Run consumes notification messages until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		msg, err := w.consumer.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		var notification Notification
		if err := json.Unmarshal(msg.Value, &notification); err != nil {
			// Poison messages must not wedge the partition: log, commit, move on.
			w.logger.Warn("discarding unparseable notification",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		} else {
			result := w.service.Process(ctx, notification.Records)
			succeeded, skipped, failed, partial := result.Counts()
			w.logger.Info("batch processed",
				zap.String("batch_id", result.BatchID),
				zap.Int("events", len(result.Results)),
				zap.Int("succeeded", succeeded),
				zap.Int("skipped", skipped),
				zap.Int("failed", failed),
				zap.Int("partial", partial),
			)
		}

		if err := w.consumer.Commit(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("commit offset: %w", err)
		}
	}
}
