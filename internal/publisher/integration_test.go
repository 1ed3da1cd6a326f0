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

	"newscache/internal/domain"
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

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange",
		RoutingKey: "test-routing-key",
		QueueName:  "test-queue",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.NoError(err)
	s.NotNil(pub)

	err = pub.Close()
	s.NoError(err)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishReplace() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-replace",
		RoutingKey: "test-routing-key-replace",
		QueueName:  "test-queue-replace",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	err = pub.PublishReplace(s.ctx, domain.CategoryPersonal, 40)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.NotNil(msg)

	s.Equal("application/json", msg.ContentType)

	var received CacheEvent
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)
	s.Equal("replace", received.Action)
	s.Equal(domain.CategoryPersonal, received.Category)
	s.Equal(40, received.Count)
	s.Nil(received.Article)
	s.False(received.Timestamp.IsZero())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishSave() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-save",
		RoutingKey: "test-routing-key-save",
		QueueName:  "test-queue-save",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	article := domain.Article{
		Title:       "Saved Article",
		Description: "Description",
		URL:         "https://example.com/saved",
		Source:      domain.Source{ID: "bbc-news", Name: "BBC News"},
		PublishedAt: time.Now().UTC().Truncate(time.Millisecond),
		Category:    domain.CategorySaved,
	}

	err = pub.PublishSaveToggle(s.ctx, article, true)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.NotNil(msg)

	var received CacheEvent
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)
	s.Equal("save", received.Action)
	s.Equal(domain.CategorySaved, received.Category)
	s.Require().NotNil(received.Article)
	s.Equal("Saved Article", received.Article.Title)
	s.Equal("https://example.com/saved", received.Article.URL)
	s.Equal("bbc-news", received.Article.Source.ID)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishUnsave() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-unsave",
		RoutingKey: "test-routing-key-unsave",
		QueueName:  "test-queue-unsave",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	article := domain.Article{
		Title:    "Unsaved Article",
		URL:      "https://example.com/unsaved",
		Category: domain.CategorySaved,
	}

	err = pub.PublishSaveToggle(s.ctx, article, false)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.NotNil(msg)

	var received CacheEvent
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)
	s.Equal("unsave", received.Action)
	s.Require().NotNil(received.Article)
	s.Equal("https://example.com/unsaved", received.Article.URL)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_MessagePersistence() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-persist",
		RoutingKey: "test-routing-key-persist",
		QueueName:  "test-queue-persist",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	err = pub.PublishReplace(s.ctx, domain.CategoryLocal, 1)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.NotNil(msg)

	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}
