package events

import (
	"context"

	"liora/pkg/kafka"
	"liora/pkg/logger"
	"liora/pkg/model"
)

const source = "liora-api"

type Publisher interface {
	PublishBooking(ctx context.Context, event *model.BookingEvent) error
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishBooking(context.Context, *model.BookingEvent) error {
	return nil
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewKafkaPublisher publishes booking events keyed by listing id, so events for one listing stay ordered.
func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) PublishBooking(ctx context.Context, event *model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.ListingID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(source).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}
