package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/store"
)

func newWebhookService() *WebhookService {
	return NewWebhookService(store.NewWebhookStore(), time.Second)
}

func TestWebhookService_Upsert(t *testing.T) {
	svc := newWebhookService()

	webhooks, created, err := svc.Upsert(UpsertWebhookRequest{
		UserID: "alice",
		URL:    "https://example.com/hook",
		Events: []string{"order.created", "order.executed", "order.created"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created = true for new subscriptions")
	}
	// Duplicate event in the request is deduplicated.
	if len(webhooks) != 2 {
		t.Fatalf("got %d webhooks, want 2", len(webhooks))
	}

	// Re-registering updates the URL and keeps IDs stable.
	updated, created, err := svc.Upsert(UpsertWebhookRequest{
		UserID: "alice",
		URL:    "https://example.com/hook2",
		Events: []string{"order.created"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created = false for an update")
	}
	if updated[0].WebhookID != webhooks[0].WebhookID {
		t.Error("webhook id should be stable across updates")
	}
	if updated[0].URL != "https://example.com/hook2" {
		t.Errorf("url = %q, want updated url", updated[0].URL)
	}
}

func TestWebhookService_Upsert_Validation(t *testing.T) {
	svc := newWebhookService()

	tests := []struct {
		name string
		req  UpsertWebhookRequest
	}{
		{"bad user id", UpsertWebhookRequest{UserID: "a b", URL: "https://x.com", Events: []string{"order.created"}}},
		{"empty url", UpsertWebhookRequest{UserID: "alice", URL: "", Events: []string{"order.created"}}},
		{"http scheme", UpsertWebhookRequest{UserID: "alice", URL: "http://x.com", Events: []string{"order.created"}}},
		{"relative url", UpsertWebhookRequest{UserID: "alice", URL: "/hook", Events: []string{"order.created"}}},
		{"overlong url", UpsertWebhookRequest{UserID: "alice", URL: "https://x.com/" + strings.Repeat("a", 2048), Events: []string{"order.created"}}},
		{"no events", UpsertWebhookRequest{UserID: "alice", URL: "https://x.com", Events: nil}},
		{"unknown event", UpsertWebhookRequest{UserID: "alice", URL: "https://x.com", Events: []string{"order.filled"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *domain.ValidationError
			if _, _, err := svc.Upsert(tt.req); !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestWebhookService_ListDelete(t *testing.T) {
	svc := newWebhookService()

	webhooks, _, err := svc.Upsert(UpsertWebhookRequest{
		UserID: "alice",
		URL:    "https://example.com/hook",
		Events: []string{"order.created", "order.expired"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listed, err := svc.List("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("got %d webhooks, want 2", len(listed))
	}

	if err := svc.Delete(webhooks[0].WebhookID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(webhooks[0].WebhookID); !errors.Is(err, domain.ErrWebhookNotFound) {
		t.Errorf("expected ErrWebhookNotFound, got %v", err)
	}

	listed, _ = svc.List("alice")
	if len(listed) != 1 {
		t.Errorf("got %d webhooks after delete, want 1", len(listed))
	}
}
