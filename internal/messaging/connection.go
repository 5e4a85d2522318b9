package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rabbitmq/amqp091-go"

	"restaurant-billing/internal/config"
	"restaurant-billing/internal/logger"
)

const (
	// BillsExchange fans bill events out to every bound queue.
	BillsExchange = "bills_fanout"
	// NotificationsQueue receives every bill event for the notify command.
	NotificationsQueue = "bills_notifications"
)

// ErrUnavailable marks a failed attempt to reach the broker.
var ErrUnavailable = errors.New("rabbitmq unavailable")

// Connection wraps a RabbitMQ connection and channel with reconnection logic
type Connection struct {
	mu          sync.Mutex
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	logger      *logger.Logger
	url         string
	retries     int
	dialTimeout time.Duration
	cooldown    time.Duration
	lastFailure time.Time
}

func newConnection(url string, log *logger.Logger) *Connection {
	return &Connection{
		logger:      log,
		url:         url,
		retries:     5,
		dialTimeout: 5 * time.Second,
		cooldown:    time.Second,
	}
}

// New dials the broker configured in cfg and declares the bill topology
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	c := newConnection(cfg.RabbitMQURL(), log)
	if _, err := c.WaitChannel(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to establish initial connection")
	}
	return c, nil
}

// WaitChannel retries Channel with a growing backoff until the broker answers,
// the attempts run out, or ctx is done. The lock is not held while waiting.
func (c *Connection) WaitChannel(ctx context.Context) (*amqp091.Channel, error) {
	var err error
	for i := 0; i < c.retries; i++ {
		var ch *amqp091.Channel
		if ch, err = c.Channel(ctx); err == nil {
			return ch, nil
		}

		if i < c.retries-1 {
			waitTime := time.Duration(i+1) * 2 * time.Second
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", waitTime),
				"", err, nil)
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "rabbitmq connect canceled")
			}
		}
	}

	return nil, errors.Wrapf(err, "failed to connect to RabbitMQ after %d attempts", c.retries)
}

// dial makes one connection attempt, bounded by dialTimeout and the ctx deadline
func (c *Connection) dial(ctx context.Context) error {
	timeout := c.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return errors.Wrap(context.DeadlineExceeded, "no time left to dial")
	}

	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp091.DefaultDial(timeout),
	})
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return errors.Wrap(err, "failed to set up topology")
	}
	c.conn = conn
	c.channel = ch
	return nil
}

// setupTopology declares the bill exchange and the notifications queue
func setupTopology(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		BillsExchange, // name
		"fanout",      // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return errors.Wrapf(err, "failed to declare %s exchange", BillsExchange)
	}

	_, err = ch.QueueDeclare(
		NotificationsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		amqp091.Table{
			"x-message-ttl": 86400000, // one day
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to declare queue %s", NotificationsQueue)
	}

	err = ch.QueueBind(
		NotificationsQueue, // queue name
		"",                 // routing key (ignored for fanout)
		BillsExchange,      // exchange
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return errors.Wrapf(err, "failed to bind queue %s", NotificationsQueue)
	}

	return nil
}

// Channel returns the live channel. When the broker dropped us it makes a
// single reconnect attempt; within cooldown of a failed attempt it fails
// without dialing.
func (c *Connection) Channel(ctx context.Context) (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}

	if !c.lastFailure.IsZero() && time.Since(c.lastFailure) < c.cooldown {
		return nil, errors.Wrap(ErrUnavailable, "reconnect cooling down")
	}

	c.close()
	if err := c.dial(ctx); err != nil {
		c.lastFailure = time.Now()
		return nil, errors.Mark(errors.Wrap(err, "failed to reconnect"), ErrUnavailable)
	}
	c.lastFailure = time.Time{}
	return c.channel, nil
}

// Close closes the connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if err != nil && !errors.Is(err, amqp091.ErrClosed) {
			return err
		}
	}
	return nil
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn == nil || c.conn.IsClosed()
}
