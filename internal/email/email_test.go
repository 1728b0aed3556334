package email

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewSender_LocalLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := NewSender("local", "", "", logger)
	if _, ok := s.(*LogSender); !ok {
		t.Fatalf("want *LogSender for local, got %T", s)
	}
	if err := s.Send(context.Background(), "a@example.com", "hi", "body"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(buf.String(), "to=a@example.com") {
		t.Errorf("log missing recipient: %s", buf.String())
	}
}

func TestNewSender_ProductionUsesResend(t *testing.T) {
	s := NewSender("production", "re_test", "noreply@example.com", slog.Default())
	if _, ok := s.(*ResendSender); !ok {
		t.Fatalf("want *ResendSender, got %T", s)
	}
}

func TestWelcome_EscapesAddress(t *testing.T) {
	subject, body := Welcome("<b>@example.com")
	if subject == "" {
		t.Error("empty subject")
	}
	if strings.Contains(body, "<b>@") {
		t.Errorf("address not escaped: %s", body)
	}
}
