package notify

import (
	"context"

	"github.com/orderdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the application log. It is the
// fallback delivery path when Redis is not configured, and keeps local
// development dependency-free.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification
func (n *LogNotifier) Notify(ctx context.Context, notification shared.Notification) error {
	n.logger.Info("notification",
		zap.String("user_id", notification.UserID),
		zap.String("audience", string(notification.Audience)),
		zap.String("topic", notification.Topic),
		zap.String("message", notification.Message),
		zap.Any("data", notification.Data),
	)
	return nil
}

var _ shared.Notifier = (*LogNotifier)(nil)
