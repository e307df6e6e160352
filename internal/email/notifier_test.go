package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/gallery/internal/config"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
)

func enabledConfig() config.EmailConfig {
	return config.EmailConfig{
		Enabled:      true,
		ResendAPIKey: "re_test",
		From:         "gallery@example.com",
		NotifyTo:     "staff@example.com",
	}
}

func pointAt(t *testing.T, n *Notifier, server *httptest.Server) {
	t.Helper()
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	n.client.BaseURL = base
}

func sampleMessage() messages.Message {
	return messages.Message{
		ID:        uuid.New(),
		Name:      "Ana\nLima",
		Email:     "ana@example.com",
		Message:   "Is <b>the blue piece</b> still available?",
		Status:    messages.StatusNew,
		CreatedAt: time.Date(2026, 5, 2, 14, 30, 0, 0, time.UTC),
	}
}

func TestNotifyContactMessage(t *testing.T) {
	var got resend.SendEmailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("expected POST /emails, got %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer re_test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-123"}`))
	}))
	defer server.Close()

	n, err := NewNotifier(enabledConfig(), zerolog.Nop())
	require.NoError(t, err)
	pointAt(t, n, server)

	require.NoError(t, n.NotifyContactMessage(context.Background(), sampleMessage()))

	require.Equal(t, "gallery@example.com", got.From)
	require.Equal(t, []string{"staff@example.com"}, got.To)
	require.Equal(t, "ana@example.com", got.ReplyTo)
	require.Equal(t, "New contact message from Ana Lima", got.Subject)
	require.Contains(t, got.Html, "&lt;b&gt;the blue piece&lt;/b&gt;")
	require.True(t, strings.Contains(got.Html, "2026-05-02 14:30 UTC"))
}

func TestNotifyContactMessageRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ratelimit-limit", "2")
		w.Header().Set("ratelimit-remaining", "0")
		w.Header().Set("ratelimit-reset", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"statusCode":429,"name":"rate_limit_exceeded","message":"Too many requests"}`))
	}))
	defer server.Close()

	n, err := NewNotifier(enabledConfig(), zerolog.Nop())
	require.NoError(t, err)
	pointAt(t, n, server)

	err = n.NotifyContactMessage(context.Background(), sampleMessage())
	require.Error(t, err)
}

func TestNotifierDisabledSkipsSend(t *testing.T) {
	n, err := NewNotifier(config.EmailConfig{}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, n.NotifyContactMessage(context.Background(), sampleMessage()))
}

func TestNewNotifierValidatesConfig(t *testing.T) {
	cfg := enabledConfig()
	cfg.ResendAPIKey = ""
	_, err := NewNotifier(cfg, zerolog.Nop())
	require.ErrorContains(t, err, "RESEND_API_KEY")

	cfg = enabledConfig()
	cfg.NotifyTo = "staff@example.com\r\nBcc: everyone@example.com"
	_, err = NewNotifier(cfg, zerolog.Nop())
	require.ErrorContains(t, err, "EMAIL_NOTIFY_TO")
}

func TestReplyToDropsUnsafeAddress(t *testing.T) {
	require.Equal(t, "", replyTo("not an address"))
	require.Equal(t, "a@example.com", replyTo("a@example.com"))
}
