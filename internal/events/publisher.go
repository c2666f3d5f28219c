// Package events publishes domain events to RabbitMQ. Event delivery
// is advisory: consumers feed bookkeeping exports, the API never
// depends on a broker being reachable.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// InvoiceIssued is emitted after an invoice was issued externally and
// recorded locally.
type InvoiceIssued struct {
	InvoiceID  string `json:"invoiceId"`
	Number     string `json:"number"`
	EmployerID string `json:"employerId"`
	UserID     string `json:"userId"`
	PriceGross string `json:"priceGross"`
	SellDate   string `json:"sellDate"`
}

// Publisher emits domain events.
type Publisher interface {
	PublishInvoiceIssued(ctx context.Context, event InvoiceIssued) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishInvoiceIssued(context.Context, InvoiceIssued) error { return nil }
func (Noop) Close() error                                              { return nil }

// AMQPConfig holds the broker settings.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// AMQPPublisher publishes events over a single AMQP channel.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	logger   *slog.Logger
}

// NewAMQPPublisher dials the broker and declares the exchange, the
// queue and the binding between them.
func NewAMQPPublisher(cfg AMQPConfig, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	queue, err := channel.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}

	if err := channel.QueueBind(queue.Name, routingKeyInvoiceIssued, cfg.Exchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue %s: %w", queue.Name, err)
	}

	logger.Info("Connected to message broker", "exchange", cfg.Exchange, "queue", queue.Name)

	return &AMQPPublisher{
		conn:     conn,
		channel:  channel,
		exchange: cfg.Exchange,
		queue:    queue.Name,
		logger:   logger,
	}, nil
}

const routingKeyInvoiceIssued = "invoice.issued"

// PublishInvoiceIssued sends the event as a persistent JSON message.
func (p *AMQPPublisher) PublishInvoiceIssued(ctx context.Context, event InvoiceIssued) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKeyInvoiceIssued, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKeyInvoiceIssued, err)
	}
	return nil
}

// Close shuts down the channel and the connection.
func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("Failed to close broker channel", "error", err)
	}
	return p.conn.Close()
}
