package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vendordesk/internal/config"
)

// rabbitClient implements the Client over a durable topic exchange. Events are
// routed by "vendor.<event-type>".
type rabbitClient struct {
	cfg    config.RabbitMQ
	logger *zap.Logger

	mu    sync.Mutex
	conn  *amqp.Connection
	pubCh *amqp.Channel
}

func newRabbitClient(lc fx.Lifecycle, cfg config.RabbitMQ, logger *zap.Logger) *rabbitClient {
	client := &rabbitClient{cfg: cfg, logger: logger}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.connect()
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("closing rabbitmq client")
			return client.close()
		},
	})

	return client
}

func (r *rabbitClient) connect() error {
	conn, err := amqp.Dial(r.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(r.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(r.cfg.Queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}
	routingKey := r.cfg.RoutingKey
	if routingKey == "" {
		routingKey = "#"
	}
	if err := ch.QueueBind(r.cfg.Queue, routingKey, r.cfg.Exchange, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("bind queue: %w", err)
	}

	r.mu.Lock()
	r.conn = conn
	r.pubCh = ch
	r.mu.Unlock()

	r.logger.Info("rabbitmq connected", zap.String("exchange", r.cfg.Exchange), zap.String("queue", r.cfg.Queue))
	return nil
}

func (r *rabbitClient) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	r.pubCh = nil
	return err
}

func (r *rabbitClient) Publish(ctx context.Context, msg Message) error {
	r.mu.Lock()
	ch := r.pubCh
	r.mu.Unlock()
	if ch == nil {
		return errors.New("rabbitmq client not connected")
	}

	headers := amqp.Table{}
	for key, value := range msg.Headers {
		headers[key] = value
	}
	return ch.PublishWithContext(ctx, r.cfg.Exchange, "vendor."+msg.EventType(), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    string(msg.Key),
		Type:         msg.EventType(),
		Timestamp:    msg.Time,
		Headers:      headers,
		Body:         msg.Value,
	})
}

func (r *rabbitClient) Consume(ctx context.Context, handler Handler) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return errors.New("rabbitmq client not connected")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	defer ch.Close()

	deliveries, err := ch.ConsumeWithContext(ctx, r.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", r.cfg.Queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			msg := Message{
				Topic:   d.RoutingKey,
				Key:     []byte(d.MessageId),
				Value:   d.Body,
				Headers: map[string]string{HeaderEventType: d.Type},
				Offset:  int64(d.DeliveryTag),
				Time:    d.Timestamp,
			}
			for key, value := range d.Headers {
				if s, ok := value.(string); ok {
					msg.Headers[key] = s
				}
			}

			if err := handler(ctx, msg); err != nil {
				r.logger.Error("message handler failed", zap.Error(err), zap.Uint64("delivery_tag", d.DeliveryTag))
				_ = d.Nack(false, true)
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return ctx.Err()
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				r.logger.Warn("ack failed", zap.Error(err))
			}
		}
	}
}

func (r *rabbitClient) Topic() string { return r.cfg.Exchange }
