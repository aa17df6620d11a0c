package channels

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"railguard-io/railguard/pkg/guardrails"
)

// stubResponder scripts replies keyed by message.
type stubResponder struct {
	replies map[string]string
	err     error
	seen    []string
}

func (s *stubResponder) Run(ctx context.Context, message string) (string, error) {
	s.seen = append(s.seen, message)
	if s.err != nil {
		return "", s.err
	}
	return s.replies[message], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCLIChannelRepliesPerLine(t *testing.T) {
	responder := &stubResponder{replies: map[string]string{
		"hello": "hi there",
		"bye":   "goodbye",
	}}
	var out strings.Builder
	channel := NewCLIChannel(responder, strings.NewReader("hello\nbye\n"), &out, testLogger())

	if err := channel.Listen(context.Background()); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if !strings.Contains(out.String(), "hi there") || !strings.Contains(out.String(), "goodbye") {
		t.Errorf("output missing replies: %q", out.String())
	}
	if len(responder.seen) != 2 {
		t.Errorf("responder saw %d messages, want 2", len(responder.seen))
	}
}

func TestCLIChannelSkipsBlankAndStopsOnExit(t *testing.T) {
	responder := &stubResponder{replies: map[string]string{"one": "1"}}
	var out strings.Builder
	channel := NewCLIChannel(responder, strings.NewReader("\none\nexit\nnever\n"), &out, testLogger())

	if err := channel.Listen(context.Background()); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if len(responder.seen) != 1 || responder.seen[0] != "one" {
		t.Errorf("responder saw %v, want [one]", responder.seen)
	}
}

func TestCLIChannelBlockedMessageGetsFixedReply(t *testing.T) {
	responder := &stubResponder{err: &guardrails.BlockedError{Rules: []string{"pii-ssn"}}}
	var out strings.Builder
	channel := NewCLIChannel(responder, strings.NewReader("secret stuff\n"), &out, testLogger())

	if err := channel.Listen(context.Background()); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if !strings.Contains(out.String(), BlockedReply) {
		t.Errorf("output missing blocked reply: %q", out.String())
	}
	if strings.Contains(out.String(), "pii-ssn") {
		t.Errorf("rule name leaked to channel output: %q", out.String())
	}
}

func TestCLIChannelOtherErrorsReported(t *testing.T) {
	responder := &stubResponder{err: errors.New("provider down")}
	var out strings.Builder
	channel := NewCLIChannel(responder, strings.NewReader("hi\n"), &out, testLogger())

	if err := channel.Listen(context.Background()); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if !strings.Contains(out.String(), "provider down") {
		t.Errorf("output missing error: %q", out.String())
	}
}

func TestSendOneShot(t *testing.T) {
	responder := &stubResponder{replies: map[string]string{"ping": "pong"}}
	channel := NewCLIChannel(responder, strings.NewReader(""), io.Discard, testLogger())

	reply, err := channel.Send(context.Background(), "ping")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "pong" {
		t.Errorf("reply = %q, want pong", reply)
	}
}

func TestSendBlocked(t *testing.T) {
	responder := &stubResponder{err: &guardrails.BlockedError{Rules: []string{"r"}}}
	channel := NewCLIChannel(responder, strings.NewReader(""), io.Discard, testLogger())

	reply, err := channel.Send(context.Background(), "bad")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != BlockedReply {
		t.Errorf("reply = %q, want %q", reply, BlockedReply)
	}
}
