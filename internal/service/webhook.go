package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/stellarnova/limitd/internal/domain"
	"github.com/stellarnova/limitd/internal/store"
)

// Valid webhook event types.
var validWebhookEvents = map[string]bool{
	"order.created":   true,
	"order.executed":  true,
	"order.cancelled": true,
	"order.expired":   true,
}

// UpsertWebhookRequest represents the input for webhook registration.
type UpsertWebhookRequest struct {
	UserID string
	URL    string
	Events []string
}

// WebhookService handles webhook CRUD and order event dispatch. Events
// are fire-and-forget: delivery runs in a goroutine and errors are
// ignored.
type WebhookService struct {
	store  *store.WebhookStore
	client *http.Client
}

// NewWebhookService creates a new WebhookService with the given
// delivery timeout.
func NewWebhookService(webhookStore *store.WebhookStore, timeout time.Duration) *WebhookService {
	return &WebhookService{
		store: webhookStore,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upsert validates the request and creates or updates webhook
// subscriptions, one per (user, event) pair. Returns the resulting
// webhooks and whether any new subscriptions were created.
func (s *WebhookService) Upsert(req UpsertWebhookRequest) ([]*domain.Webhook, bool, error) {
	if !userIDRegex.MatchString(req.UserID) {
		return nil, false, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}

	if req.URL == "" {
		return nil, false, &domain.ValidationError{Message: "url is required"}
	}
	if len(req.URL) > 2048 {
		return nil, false, &domain.ValidationError{Message: "url must be at most 2048 characters"}
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || !parsed.IsAbs() {
		return nil, false, &domain.ValidationError{Message: "url must be a valid absolute URL"}
	}
	if parsed.Scheme != "https" {
		return nil, false, &domain.ValidationError{Message: "url must use https scheme"}
	}

	if len(req.Events) == 0 {
		return nil, false, &domain.ValidationError{Message: "events must be a non-empty array"}
	}

	// Deduplicate events while preserving order and validating.
	seen := make(map[string]bool, len(req.Events))
	dedupedEvents := make([]string, 0, len(req.Events))
	for _, event := range req.Events {
		if !validWebhookEvents[event] {
			return nil, false, &domain.ValidationError{
				Message: "Unknown event type: " + event + ". Must be one of: order.created, order.executed, order.cancelled, order.expired",
			}
		}
		if !seen[event] {
			seen[event] = true
			dedupedEvents = append(dedupedEvents, event)
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	anyCreated := false
	webhooks := make([]*domain.Webhook, 0, len(dedupedEvents))

	for _, event := range dedupedEvents {
		w := &domain.Webhook{
			WebhookID: uuid.New().String(),
			UserID:    req.UserID,
			Event:     event,
			URL:       req.URL,
			CreatedAt: now,
			UpdatedAt: now,
		}

		created := s.store.Upsert(w)
		if created {
			anyCreated = true
			webhooks = append(webhooks, w)
		} else {
			existing := s.store.GetByUserEvent(req.UserID, event)
			if existing != nil {
				webhooks = append(webhooks, existing)
			}
		}
	}

	return webhooks, anyCreated, nil
}

// List returns all webhook subscriptions for a user.
func (s *WebhookService) List(userID string) ([]*domain.Webhook, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	return s.store.ListByUser(userID), nil
}

// Delete removes a webhook subscription by ID.
func (s *WebhookService) Delete(webhookID string) error {
	return s.store.Delete(webhookID)
}

// orderEventPayload is the JSON payload for order event webhooks.
type orderEventPayload struct {
	Event     string         `json:"event"`
	Timestamp string         `json:"timestamp"`
	Data      orderEventData `json:"data"`
}

type orderEventData struct {
	OrderID          uint64  `json:"order_id"`
	UserID           string  `json:"user_id"`
	FromAsset        string  `json:"from_asset"`
	FromAmount       string  `json:"from_amount"`
	ToAsset          string  `json:"to_asset"`
	OutputAmount     *string `json:"output_amount"`
	PriceNumerator   string  `json:"price_numerator"`
	PriceDenominator string  `json:"price_denominator"`
	SlippageBP       uint64  `json:"slippage_bp"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
	ExpiresAt        string  `json:"expires_at"`
}

// DispatchOrderCreated dispatches an order.created webhook to the
// order's user. Fire-and-forget.
func (s *WebhookService) DispatchOrderCreated(order *domain.Order) {
	s.dispatchOrderEvent("order.created", order)
}

// DispatchOrderExecuted dispatches an order.executed webhook to the
// order's user. Fire-and-forget.
func (s *WebhookService) DispatchOrderExecuted(order *domain.Order) {
	s.dispatchOrderEvent("order.executed", order)
}

// DispatchOrderCancelled dispatches an order.cancelled webhook to the
// order's user. Fire-and-forget.
func (s *WebhookService) DispatchOrderCancelled(order *domain.Order) {
	s.dispatchOrderEvent("order.cancelled", order)
}

// DispatchOrderExpired dispatches an order.expired webhook to the
// order's user. Fire-and-forget. Satisfies engine.OrderNotifier.
func (s *WebhookService) DispatchOrderExpired(order *domain.Order) {
	s.dispatchOrderEvent("order.expired", order)
}

func (s *WebhookService) dispatchOrderEvent(event string, order *domain.Order) {
	wh := s.store.GetByUserEvent(order.UserID, event)
	if wh == nil {
		return
	}

	data := orderEventData{
		OrderID:          order.OrderID,
		UserID:           order.UserID,
		FromAsset:        order.FromAsset,
		FromAmount:       order.FromAmount.String(),
		ToAsset:          order.ToAsset,
		PriceNumerator:   order.PriceNumerator.String(),
		PriceDenominator: order.PriceDenominator.String(),
		SlippageBP:       order.SlippageBP,
		Status:           string(order.Status),
		CreatedAt:        order.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:        order.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if order.OutputAmount != nil {
		v := order.OutputAmount.String()
		data.OutputAmount = &v
	}

	payload := orderEventPayload{
		Event:     event,
		Timestamp: time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
		Data:      data,
	}

	go s.deliver(wh, event, payload)
}

// deliver sends the webhook payload via HTTP POST with the required
// headers. Errors are silently ignored (fire-and-forget).
func (s *WebhookService) deliver(wh *domain.Webhook, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", uuid.New().String())
	req.Header.Set("X-Webhook-Id", wh.WebhookID)
	req.Header.Set("X-Event-Type", eventType)

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
