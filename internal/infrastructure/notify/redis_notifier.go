package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// notificationPayload is the wire form pushed onto the pub/sub channel
type notificationPayload struct {
	UserID    string         `json:"user_id,omitempty"`
	Audience  string         `json:"audience,omitempty"`
	Topic     string         `json:"topic"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// RedisNotifier delivers notifications over Redis Pub/Sub. Consumers (web
// frontends, a mail bridge) subscribe to <channel>.<topic>.
type RedisNotifier struct {
	client     redis.UniversalClient
	ownsClient bool
	channel    string
	logger     *zap.Logger
}

// NewRedisNotifier connects a notifier to Redis using the application config
func NewRedisNotifier(cfg config.RedisConfig, logger *zap.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisNotifier{
		client:     client,
		ownsClient: true,
		channel:    cfg.Channel,
		logger:     logger,
	}, nil
}

// NewRedisNotifierWithClient wraps an existing client. The caller keeps
// ownership of the client and closes it.
func NewRedisNotifierWithClient(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Notify publishes the notification on <channel>.<topic>
func (n *RedisNotifier) Notify(ctx context.Context, notification shared.Notification) error {
	data, err := json.Marshal(payloadFor(notification))
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := channelFor(n.channel, notification.Topic)
	if err := n.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Debug("notification published",
		zap.String("channel", channel),
		zap.String("topic", notification.Topic))
	return nil
}

// Close releases the Redis connection when the notifier owns it
func (n *RedisNotifier) Close() error {
	if !n.ownsClient {
		return nil
	}
	return n.client.Close()
}

func payloadFor(notification shared.Notification) notificationPayload {
	return notificationPayload{
		UserID:    notification.UserID,
		Audience:  string(notification.Audience),
		Topic:     notification.Topic,
		Message:   notification.Message,
		Data:      notification.Data,
		Timestamp: time.Now().UnixNano(),
	}
}

func channelFor(base, topic string) string {
	if topic == "" {
		return base
	}
	return base + "." + topic
}

var _ shared.Notifier = (*RedisNotifier)(nil)
