package channels

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// CLIChannel reads messages line by line from an input stream and
// writes replies to an output stream. It backs the interactive
// `railguard agent` session.
type CLIChannel struct {
	responder Responder
	in        io.Reader
	out       io.Writer
	logger    *slog.Logger
}

// NewCLIChannel creates a CLI channel over the given streams.
func NewCLIChannel(responder Responder, in io.Reader, out io.Writer, logger *slog.Logger) *CLIChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIChannel{
		responder: responder,
		in:        in,
		out:       out,
		logger:    logger.With("component", "channels.cli"),
	}
}

// Name identifies the channel.
func (c *CLIChannel) Name() string {
	return "cli"
}

// Listen reads lines until EOF or context cancellation. Blank lines
// are skipped; "exit" and "quit" end the session.
func (c *CLIChannel) Listen(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(c.out, "> ")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			fmt.Fprint(c.out, "> ")
			continue
		}
		if message == "exit" || message == "quit" {
			return nil
		}

		reply, err := respond(ctx, c.responder, message, c.logger)
		if err != nil {
			c.logger.Error("responder error", "error", err)
			fmt.Fprintf(c.out, "error: %v\n> ", err)
			continue
		}
		fmt.Fprintf(c.out, "%s\n> ", reply)
	}
	return scanner.Err()
}

// Send processes a single message and returns the reply. Used for
// one-shot invocations.
func (c *CLIChannel) Send(ctx context.Context, message string) (string, error) {
	return respond(ctx, c.responder, message, c.logger)
}
