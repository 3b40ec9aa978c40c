package handler

import (
	"context"

	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type EventLog interface {
	Log(ctx context.Context, ev kafka.EventCirculation) error
}

type kafkaLog struct {
	producer sarama.AsyncProducer
	topic    string
}

// NewKafkaLog publishes events to topic; delivery errors surface on producer.Errors().
func NewKafkaLog(producer sarama.AsyncProducer, topic string) EventLog {
	return &kafkaLog{
		producer: producer,
		topic:    topic,
	}
}

func (l *kafkaLog) Log(ctx context.Context, ev kafka.EventCirculation) error {
	data, err := kafka.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: l.topic,
		Key:   sarama.StringEncoder(ev.PatronID),
		Value: sarama.ByteEncoder(data),
	}
	select {
	case l.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type storeLog struct {
	record func(ctx context.Context, ev model.Event) error
}

// NewStoreLog writes events straight to the store; used when kafka is disabled.
func NewStoreLog(stats StatsService) EventLog {
	return &storeLog{record: stats.RecordEvent}
}

func (l *storeLog) Log(ctx context.Context, ev kafka.EventCirculation) error {
	e, err := toEvent(ev)
	if err != nil {
		return err
	}
	return l.record(ctx, e)
}

func toEvent(ev kafka.EventCirculation) (model.Event, error) {
	amount := decimal.Zero
	if ev.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(ev.Amount); err != nil {
			return model.Event{}, errors.Wrapf(err, "event %s amount", ev.ID)
		}
	}
	return model.Event{
		ID:            ev.ID,
		EventType:     string(ev.EventType),
		PatronID:      ev.PatronID,
		BookID:        ev.BookID,
		Amount:        amount,
		TransactionID: ev.TransactionID,
		OccurredAt:    ev.Timestamp,
	}, nil
}
