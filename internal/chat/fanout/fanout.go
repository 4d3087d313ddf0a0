package fanout

import (
	"context"

	"liora/pkg/kafka"
	"liora/pkg/logger"
	"liora/pkg/model"

	"github.com/google/uuid"
)

const source = "liora-api"

// Publisher is the producer side used by the notifier. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Deliverer hands a message to the connections held by this instance.
type Deliverer interface {
	Deliver(msg *model.Message) int
}

// KafkaNotifier routes chat messages through a topic so every API instance can deliver them.
type KafkaNotifier struct {
	producer Publisher
}

func NewKafkaNotifier(producer Publisher) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) Notify(ctx context.Context, msg *model.Message) error {
	event, err := kafka.NewMessage().
		WithKey(msg.ReceiverID).
		WithValue(msg).
		WithEventType(model.EventMessageSent).
		WithSource(source).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, event)
}

// NewHandler returns the consumer handler that delivers message.sent events to local connections.
func NewHandler(local Deliverer, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if msg.GetEventType() != model.EventMessageSent {
			return nil
		}

		var m model.Message
		if err := msg.DecodeValue(&m); err != nil {
			return kafka.NewPermanentError("failed to decode chat message", err)
		}

		delivered := local.Deliver(&m)
		log.Debug("Chat message fanned out", "id", m.ID, "receiver_id", m.ReceiverID, "connections", delivered)
		return nil
	}
}

// GroupID gives each instance its own consumer group so every instance sees every message.
func GroupID(base string) string {
	return base + "-" + uuid.NewString()
}
