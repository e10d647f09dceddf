package tracking

import (
	"time"

	"github.com/matst80/slask-homes/pkg/common"
	"github.com/matst80/slask-homes/pkg/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Prefix names the exchange search events are published on.
const Prefix = "global"

// RabbitTracking batches search events and publishes each batch as one
// message on the tracking topic.
type RabbitTracking struct {
	connection *amqp.Connection
	queue      *common.QueueHandler[SearchEvent]
	logger     *zap.Logger
}

func NewRabbitTracking(url string, logger *zap.Logger) (*RabbitTracking, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := &RabbitTracking{logger: logger}
	if err := ret.connect(url); err != nil {
		return nil, err
	}
	ret.queue = common.NewQueueHandler(ret.publish, 50)
	return ret, nil
}

type connection interface {
	Channel() (*amqp.Channel, error)
	Close() error
}

// declareTopic makes sure the tracking exchange exists. The connection is
// closed when that fails.
func declareTopic(conn connection) error {
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	defer ch.Close()
	if err := messaging.DefineTopic(ch, Prefix, messaging.SearchTracked); err != nil {
		conn.Close()
		return err
	}
	return nil
}

func (t *RabbitTracking) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	if err := declareTopic(conn); err != nil {
		return err
	}
	t.connection = conn
	return nil
}

func (t *RabbitTracking) publish(events []SearchEvent) {
	if err := messaging.SendChange(t.connection, Prefix, messaging.SearchTracked, events); err != nil {
		t.logger.Error("error sending search events", zap.Int("events", len(events)), zap.Error(err))
	}
}

func (t *RabbitTracking) TrackSearch(event SearchEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	t.queue.Add(event)
	return nil
}

// Close flushes queued events before closing the connection.
func (t *RabbitTracking) Close() error {
	t.queue.Stop()
	return t.connection.Close()
}
