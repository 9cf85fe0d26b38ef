package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue is the queue blog events are published to when none is configured.
const DefaultQueue = "blog_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     logrus.FieldLogger
	// mu serializes publishes on the shared channel.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Event is the JSON envelope of every published message.
type Event struct {
	Name       string                 `json:"name"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, opens a channel and declares the event queue.
func NewClient(cfg Config, log logrus.FieldLogger) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", cfg.Queue, err)
	}

	log.WithField("queue", cfg.Queue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// EncodeEvent marshals an event envelope.
func EncodeEvent(name string, data map[string]interface{}, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Event{Name: name, Data: data, OccurredAt: at.UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", name, err)
	}
	return body, nil
}

// DecodeEvent unmarshals an event envelope.
func DecodeEvent(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Name == "" {
		return Event{}, fmt.Errorf("event has no name")
	}
	return event, nil
}

// PublishEvent publishes a persistent JSON event to the configured queue.
func (c *Client) PublishEvent(name string, data map[string]interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	now := time.Now()
	body, err := EncodeEvent(name, data, now)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         name,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", name, err)
	}

	c.log.WithField("event", name).Debug("event published")
	return nil
}

// ConsumeEvents starts a goroutine that passes every event on the queue to
// handler. Messages are acked when handler succeeds. Undecodable messages
// are dropped and failed ones are requeued.
func (c *Client) ConsumeEvents(handler func(Event) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.WithField("queue", c.queue).Info("waiting for blog events")

	go func() {
		for msg := range msgs {
			event, err := DecodeEvent(msg.Body)
			if err != nil {
				c.log.WithError(err).WithField("delivery_tag", msg.DeliveryTag).Warn("dropping malformed event")
				if nackErr := msg.Nack(false, false); nackErr != nil {
					c.log.WithError(nackErr).Error("failed to nack message")
				}
				continue
			}
			if err := handler(event); err != nil {
				c.log.WithError(err).WithField("event", event.Name).Error("failed to process event")
				if nackErr := msg.Nack(false, true); nackErr != nil {
					c.log.WithError(nackErr).Error("failed to nack message")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.log.WithError(ackErr).Error("failed to ack message")
			}
		}
	}()

	return nil
}

// LogEvent is an event handler that records each event in the log.
func LogEvent(log logrus.FieldLogger) func(Event) error {
	return func(event Event) error {
		log.WithFields(logrus.Fields{
			"event":       event.Name,
			"occurred_at": event.OccurredAt,
		}).WithFields(logrus.Fields(event.Data)).Info("received blog event")
		return nil
	}
}
