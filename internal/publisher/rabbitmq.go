package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"campaign_builder/internal/domain"
)

const actionCreate = "create"

// RabbitMQ publishes campaigns onto a durable queue. The channel runs in
// transactional mode so a batch is delivered whole or not at all.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
	now        func() time.Time

	mu sync.Mutex
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	fail := func(step string, err error) (*RabbitMQ, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}

	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fail("bind queue", err)
	}

	if err := ch.Tx(); err != nil {
		return fail("enable transactions", err)
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
		now:        time.Now,
	}, nil
}

type CampaignMessage struct {
	Action    string          `json:"action"`
	Campaign  domain.Campaign `json:"campaign"`
	Timestamp time.Time       `json:"timestamp"`
}

// PublishCampaigns publishes one persistent message per campaign inside a
// single transaction. On any failure the transaction is rolled back and no
// message is delivered.
func (r *RabbitMQ) PublishCampaigns(ctx context.Context, campaigns []domain.Campaign) error {
	if len(campaigns) == 0 {
		return nil
	}

	now := r.now().UTC()
	bodies := make([][]byte, len(campaigns))
	for i, c := range campaigns {
		body, err := json.Marshal(CampaignMessage{Action: actionCreate, Campaign: c, Timestamp: now})
		if err != nil {
			return fmt.Errorf("marshal campaign %s: %w", c.ID, err)
		}
		bodies[i] = body
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, body := range bodies {
		if err := ctx.Err(); err != nil {
			return r.rollback(fmt.Errorf("publish campaign %s: %w", campaigns[i].ID, err))
		}
		err := r.channel.PublishWithContext(
			ctx,
			r.exchange,
			r.routingKey,
			false,
			false,
			amqp.Publishing{
				DeliveryMode: amqp.Persistent,
				ContentType:  "application/json",
				MessageId:    campaigns[i].ID,
				Body:         body,
				Timestamp:    now,
			},
		)
		if err != nil {
			return r.rollback(fmt.Errorf("publish campaign %s: %w", campaigns[i].ID, err))
		}
	}

	if err := r.channel.TxCommit(); err != nil {
		return r.rollback(fmt.Errorf("commit: %w", err))
	}

	r.logger.Debug("published campaigns", "count", len(campaigns))
	return nil
}

func (r *RabbitMQ) rollback(cause error) error {
	if err := r.channel.TxRollback(); err != nil {
		r.logger.Error("rollback failed", "error", err)
		return errors.Join(cause, fmt.Errorf("rollback: %w", err))
	}
	return cause
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
