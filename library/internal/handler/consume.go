package handler

import (
	"context"
	"time"

	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const (
	recordAttempts = 5
	recordBackoff  = 200 * time.Millisecond
)

type recordEvent func(ctx context.Context, ev model.Event) error

// Consumer persists circulation events read from kafka.
type Consumer struct {
	record   recordEvent
	log      *zap.Logger
	attempts int
	backoff  time.Duration
}

func NewConsumer(record recordEvent, log *zap.Logger) *Consumer {
	return &Consumer{
		record:   record,
		log:      log.Named("consumer"),
		attempts: recordAttempts,
		backoff:  recordBackoff,
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks a message only once its event is stored. When storing keeps
// failing the claim ends with the error and the message unmarked, so the group
// session restarts from the last committed offset and the event is read again.
func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			if err := consumer.handleWithRetry(session.Context(), message); err != nil {
				consumer.log.Error("consumer.record", zap.Error(err), zap.Int64("offset", message.Offset))
				return err
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (consumer *Consumer) handleWithRetry(ctx context.Context, message *sarama.ConsumerMessage) error {
	for attempt := 1; ; attempt++ {
		err := consumer.handle(ctx, message)
		if err == nil || attempt >= consumer.attempts {
			return err
		}
		consumer.log.Warn("record failed, retrying",
			zap.Error(err), zap.Int("attempt", attempt), zap.Int64("offset", message.Offset))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(consumer.backoff * time.Duration(attempt)):
		}
	}
}

func (consumer *Consumer) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	var ev kafka.EventCirculation
	if err := kafka.Unmarshal(message.Value, &ev); err != nil {
		consumer.log.Error("bad event, skipped", zap.Error(err), zap.ByteString("value", message.Value))
		return nil
	}
	e, err := toEvent(ev)
	if err != nil {
		consumer.log.Error("bad event, skipped", zap.Error(err))
		return nil
	}
	if err := consumer.record(ctx, e); err != nil {
		return err
	}
	consumer.log.Debug("event recorded",
		zap.String("type", e.EventType),
		zap.Time("timestamp", message.Timestamp),
		zap.String("topic", message.Topic))
	return nil
}
