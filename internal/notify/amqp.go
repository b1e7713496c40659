package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes events to a durable topic exchange. Failures are
// logged and swallowed; a committed posting must never be failed by a
// notification.
type AMQPNotifier struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *slog.Logger
}

var _ portssvc.Notifier = (*AMQPNotifier)(nil)

// NewAMQPNotifier connects with a bounded dial timeout and declares the
// exchange up front so the first publish cannot race the broker topology.
func NewAMQPNotifier(amqpURL, exchange string, logger *slog.Logger) (*AMQPNotifier, error) {
	conn, err := amqp091.DialConfig(amqpURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPNotifier{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// Notify publishes the payload under the event name as routing key.
func (n *AMQPNotifier) Notify(ctx context.Context, event string, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Warn("notification payload marshal failed", slog.String("event", event), slog.Any("error", err))
		return
	}
	err = n.channel.PublishWithContext(ctx,
		n.exchange, event, false, false,
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err == nil {
		return
	}
	// One-shot retry over a fresh channel; broker restarts kill channels.
	n.logger.Warn("notification publish failed, reopening channel", slog.String("event", event), slog.Any("error", err))
	ch, chErr := n.conn.Channel()
	if chErr != nil {
		n.logger.Warn("channel reopen failed, notification dropped", slog.String("event", event), slog.Any("error", chErr))
		return
	}
	n.channel = ch
	err = n.channel.PublishWithContext(ctx,
		n.exchange, event, false, false,
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		n.logger.Warn("notification dropped", slog.String("event", event), slog.Any("error", err))
	}
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		n.conn.Close()
	}
}

// LogNotifier is the fallback used when no broker is configured; events go
// to the structured log only.
type LogNotifier struct {
	logger *slog.Logger
}

var _ portssvc.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event string, payload map[string]any) {
	n.logger.Info("notification", slog.String("event", event), slog.Any("payload", payload))
}
