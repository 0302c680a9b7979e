package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stellarnova/limitd/internal/domain"
)

func newTestWebhook(id, userID, event string) *domain.Webhook {
	now := time.Now()
	return &domain.Webhook{
		WebhookID: id,
		UserID:    userID,
		Event:     event,
		URL:       "https://example.com/hook",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWebhookStore_Upsert(t *testing.T) {
	s := NewWebhookStore()

	created := s.Upsert(newTestWebhook("wh-1", "alice", "order.created"))
	if !created {
		t.Error("first Upsert should create")
	}

	// Same (user, event) pair updates in place and keeps the ID.
	updated := newTestWebhook("wh-2", "alice", "order.created")
	updated.URL = "https://example.com/hook2"
	if s.Upsert(updated) {
		t.Error("second Upsert for the same pair should update, not create")
	}

	w := s.GetByUserEvent("alice", "order.created")
	if w == nil {
		t.Fatal("expected webhook for alice/order.created")
	}
	if w.WebhookID != "wh-1" {
		t.Errorf("webhook id = %q, want stable id wh-1", w.WebhookID)
	}
	if w.URL != "https://example.com/hook2" {
		t.Errorf("url = %q, want updated url", w.URL)
	}
}

func TestWebhookStore_GetDelete(t *testing.T) {
	s := NewWebhookStore()
	s.Upsert(newTestWebhook("wh-1", "alice", "order.created"))
	s.Upsert(newTestWebhook("wh-2", "alice", "order.executed"))

	if _, err := s.Get("wh-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get("missing"); !errors.Is(err, domain.ErrWebhookNotFound) {
		t.Errorf("expected ErrWebhookNotFound, got %v", err)
	}

	if err := s.Delete("wh-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Delete("wh-1"); !errors.Is(err, domain.ErrWebhookNotFound) {
		t.Errorf("expected ErrWebhookNotFound on second delete, got %v", err)
	}
	if s.GetByUserEvent("alice", "order.created") != nil {
		t.Error("secondary index should be cleared on delete")
	}

	if got := s.ListByUser("alice"); len(got) != 1 {
		t.Errorf("got %d webhooks, want 1", len(got))
	}
}
