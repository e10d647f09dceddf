package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// DefineTopic declares the durable topic exchange for prefix/topic together
// with a queue of the same name, so events published before any consumer
// attaches are kept.
func DefineTopic(ch *amqp.Channel, prefix string, topic ChangeTopic) error {
	name := getName(prefix, topic)
	if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	if err := ch.QueueBind(name, name, name, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", name, err)
	}
	return nil
}

func getName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

func newPublishing[V any](topic ChangeTopic, data V, now time.Time) (amqp.Publishing, error) {
	body, err := sonic.Marshal(data)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s message: %w", topic, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(topic),
		Timestamp:    now,
		Body:         body,
	}, nil
}

// SendChange publishes data as one JSON message on the topic exchange.
func SendChange[V any](c *amqp.Connection, prefix string, topic ChangeTopic, data V) error {
	msg, err := newPublishing(topic, data, time.Now())
	if err != nil {
		return err
	}
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	name := getName(prefix, topic)
	return ch.PublishWithContext(ctx, name, name, false, false, msg)
}
