package stripe

import (
	"encoding/json"
	"fmt"

	stripego "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/Dhoini/personalized-gospels/internal/domain"
)

// Event разобранное webhook-событие Stripe
type Event struct {
	ID   string
	Type domain.WebhookEventType

	// Checkout заполнен для checkout.session.completed
	Checkout *domain.CompletedCheckout

	// PaymentIntentID и FailureMessage заполнены для событий payment_intent.*
	PaymentIntentID string
	FailureMessage  string
}

// ParseWebhook проверяет подпись Stripe-Signature и разбирает данные события.
// Ошибка подписи возвращается как *domain.SignatureVerificationError.
func (sc *stripeClient) ParseWebhook(payload []byte, signatureHeader string) (Event, error) {
	return ParseWebhookEvent(payload, signatureHeader, sc.webhookSecret)
}

// ParseWebhookEvent проверяет подпись payload секретом secret и разбирает событие
func ParseWebhookEvent(payload []byte, signatureHeader, secret string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, &domain.SignatureVerificationError{OriginalErr: err}
	}

	out := Event{
		ID:   event.ID,
		Type: domain.WebhookEventType(event.Type),
	}

	switch out.Type {
	case domain.WebhookEventCheckoutCompleted:
		var session stripego.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return Event{}, fmt.Errorf("stripe: failed to parse checkout session: %w", err)
		}
		checkout := CompletedCheckoutFromSession(event.ID, &session)
		out.Checkout = &checkout

	case domain.WebhookEventPaymentSucceeded, domain.WebhookEventPaymentFailed:
		var intent stripego.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return Event{}, fmt.Errorf("stripe: failed to parse payment intent: %w", err)
		}
		out.PaymentIntentID = intent.ID
		if intent.LastPaymentError != nil {
			out.FailureMessage = intent.LastPaymentError.Msg
		}
	}

	return out, nil
}
