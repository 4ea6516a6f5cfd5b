//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"campaign_builder/internal/domain"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) config(name string) Config {
	return Config{
		URL:        s.amqpURL,
		Exchange:   "campaigns-" + name,
		RoutingKey: "campaign.created." + name,
		QueueName:  "campaign-dispatch-" + name,
	}
}

func testCampaign(id, name string) domain.Campaign {
	return domain.Campaign{
		ID:                 id,
		Name:               name,
		Schedules:          []domain.Schedule{{Date: "2030-01-02", Time: "09:30"}},
		Status:             domain.CampaignScheduled,
		TargetCount:        45,
		MaxLeads:           45,
		SelectedLeadTags:   []string{"cliente"},
		SelectedAccountIDs: []int64{1},
		Sequences: []domain.MediaSequence{{
			ID:    "seq-1",
			Name:  "Main sequence",
			Items: []domain.MediaItem{{ID: "it-1", Kind: domain.MediaText, Content: "Oi {{nome}}", Order: 1}},
		}},
		MediaTypes:   []domain.MediaKind{domain.MediaText},
		Distribution: []domain.LeadDistributionEntry{{AccountID: 1, AccountName: "Vendas", LeadCount: 45}},
		DelayMin:     60,
		DelayMax:     180,
		DelayAverage: 120,
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	pub, err := NewRabbitMQ(s.config("conn"), s.logger)
	s.NoError(err)
	s.NotNil(pub)

	s.NoError(pub.Close())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishBatch() {
	cfg := s.config("batch")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	err = pub.PublishCampaigns(s.ctx, []domain.Campaign{
		testCampaign("c-1", "Teste - 1"),
		testCampaign("c-2", "Teste - 2"),
	})
	s.Require().NoError(err)

	first := s.consumeMessage(cfg)
	second := s.consumeMessage(cfg)
	s.Require().NotNil(first)
	s.Require().NotNil(second)

	var received CampaignMessage
	s.Require().NoError(json.Unmarshal(first.Body, &received))
	s.Equal("create", received.Action)
	s.Equal("c-1", received.Campaign.ID)
	s.Equal("Teste - 1", received.Campaign.Name)
	s.Equal(120, received.Campaign.DelayAverage)
	s.Len(received.Campaign.Sequences, 1)
	s.False(received.Timestamp.IsZero())

	s.Equal("c-2", second.MessageId)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_MessageFormat() {
	cfg := s.config("format")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	s.Require().NoError(pub.PublishCampaigns(s.ctx, []domain.Campaign{testCampaign("c-9", "Formato")}))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)
	s.Equal("application/json", msg.ContentType)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)
	s.Equal("c-9", msg.MessageId)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_CancelledContextDeliversNothing() {
	cfg := s.config("cancel")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	err = pub.PublishCampaigns(ctx, []domain.Campaign{testCampaign("c-3", "Cancelada")})
	s.Error(err)

	s.Equal(0, s.queueDepth(cfg))
}

func (s *RabbitMQIntegrationSuite) queueDepth(cfg Config) int {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	q, err := ch.QueueDeclarePassive(cfg.QueueName, true, false, false, false, nil)
	s.Require().NoError(err)
	return q.Messages
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msg, ok, err := ch.Get(cfg.QueueName, true)
	deadline := time.Now().Add(5 * time.Second)
	for err == nil && !ok && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
		msg, ok, err = ch.Get(cfg.QueueName, true)
	}
	s.Require().NoError(err)
	if !ok {
		s.Fail("Timeout waiting for message")
		return nil
	}
	return &msg
}
