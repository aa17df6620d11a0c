package channels

import (
	"context"
	"errors"
	"log/slog"

	"railguard-io/railguard/pkg/guardrails"
)

// BlockedReply is what a channel says when a message is blocked.
// Rule names never leak into the reply; the audit trail has them.
const BlockedReply = "message blocked"

// Responder handles one user message and returns the reply text.
// *agent.Agent satisfies this.
type Responder interface {
	Run(ctx context.Context, message string) (string, error)
}

// Channel is a message source bound to a responder.
type Channel interface {
	// Name identifies the channel for logging.
	Name() string

	// Listen consumes messages until the context is cancelled or the
	// source is exhausted.
	Listen(ctx context.Context) error
}

// respond runs a message through the responder and maps a guardrail
// block to the fixed refusal reply.
func respond(ctx context.Context, responder Responder, message string, logger *slog.Logger) (string, error) {
	reply, err := responder.Run(ctx, message)
	if err != nil {
		var blocked *guardrails.BlockedError
		if errors.As(err, &blocked) {
			logger.Info("message blocked", "rules", blocked.Rules)
			return BlockedReply, nil
		}
		return "", err
	}
	return reply, nil
}
