// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"log/slog"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a [LogMailer].
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send implements [Mailer].
func (mailer *LogMailer) Send(ctx context.Context, message Message) error {
	mailer.logger.InfoContext(ctx, "email_sent",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.Int("body_bytes", len(message.Body)),
	)
	return nil
}
