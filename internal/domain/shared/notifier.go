package shared

import "context"

// Notification is a message pushed to a user or a whole role. Exactly one of
// UserID or Audience is set.
type Notification struct {
	UserID   string         `json:"user_id,omitempty"`
	Audience Role           `json:"audience,omitempty"`
	Topic    string         `json:"topic"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

// Notifier delivers notifications. Delivery is best-effort: callers log
// failures and continue, they never roll back on a failed notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Mailer sends transactional email. Best-effort, same contract as Notifier.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
