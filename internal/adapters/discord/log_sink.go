package discord

import (
	"context"
	"log/slog"

	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/output"
)

var _ output.NotificationSink = LogSink{}

// LogSink stands in for the bot when no Discord token is configured. It
// writes every notification to the log instead of delivering it.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Dispatch(ctx context.Context, n entities.Notification) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		"type", n.Type,
		"event", n.EventKey,
		"recipient", n.Recipient.String(),
		"title", n.Title,
		"link", n.Link,
	)
	return nil
}
