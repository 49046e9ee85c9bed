package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefineTopic declares a durable topic exchange and a queue with the same name.
func DefineTopic(ch *amqp.Channel, prefix string, topic ChangeTopic) error {
	name := getName(prefix, topic)
	if err := ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // noWait
		nil,     // arguments
	); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(
		name,  // name of the queue
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // noWait
		nil,   // arguments
	); err != nil {
		return err
	}
	return ch.QueueBind(name, name, name, false, nil)
}

func getName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

// Publisher is the part of an amqp channel used to publish messages.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// SendChange publishes data as json to the exchange of topic, routed by the same name.
func SendChange[V any](ctx context.Context, ch Publisher, prefix string, topic ChangeTopic, data V) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	name := getName(prefix, topic)
	return ch.PublishWithContext(ctx,
		name,
		name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        bytes,
		},
	)
}

// SendBatch publishes every item of a batch on one channel and stops at the first error.
func SendBatch[V any](ctx context.Context, ch Publisher, prefix string, topic ChangeTopic, items []V) error {
	for i, item := range items {
		if err := SendChange(ctx, ch, prefix, topic, item); err != nil {
			return fmt.Errorf("publish %d of %d: %w", i+1, len(items), err)
		}
	}
	return nil
}
