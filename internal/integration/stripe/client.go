package stripe

import (
	"context"
	"errors"
	"fmt"

	stripego "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// Client определяет методы для взаимодействия со Stripe API.
type Client interface {
	// CreateCheckoutSession создает hosted checkout-сессию с одной позицией.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error)

	// GetPaymentConfirmation возвращает данные оплаченной сессии.
	// Для неоплаченной сессии возвращает domain.ErrPaymentNotCompleted.
	GetPaymentConfirmation(ctx context.Context, sessionID string) (domain.PaymentConfirmation, error)

	// ParseWebhook проверяет подпись и разбирает событие.
	ParseWebhook(payload []byte, signatureHeader string) (Event, error)
}

// Config конфигурация для клиента Stripe
type Config struct {
	APIKey        string
	WebhookSecret string
	// BackendURL переопределяет адрес API (используется в тестах)
	BackendURL string
}

// stripeClient реализует интерфейс Client.
type stripeClient struct {
	client        *client.API
	webhookSecret string
	log           *logger.Logger
}

// NewClient создает новый экземпляр клиента Stripe.
func NewClient(cfg Config, log *logger.Logger) Client {
	sc := &client.API{}

	var backends *stripego.Backends
	if cfg.BackendURL != "" {
		backendCfg := &stripego.BackendConfig{
			URL:               stripego.String(cfg.BackendURL),
			MaxNetworkRetries: stripego.Int64(0),
		}
		backends = &stripego.Backends{
			API:     stripego.GetBackendWithConfig(stripego.APIBackend, backendCfg),
			Connect: stripego.GetBackendWithConfig(stripego.ConnectBackend, backendCfg),
			Uploads: stripego.GetBackendWithConfig(stripego.UploadsBackend, backendCfg),
		}
	}
	sc.Init(cfg.APIKey, backends)

	return &stripeClient{
		client:        sc,
		webhookSecret: cfg.WebhookSecret,
		log:           log,
	}
}

// CreateCheckoutSession создает checkout-сессию в Stripe.
func (sc *stripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error) {
	sessionParams := BuildCheckoutSessionParams(params)
	sessionParams.Context = ctx

	session, err := sc.client.CheckoutSessions.New(sessionParams)
	if err != nil {
		logStripeError(sc.log, "CreateCheckoutSession", err)
		return CheckoutSession{}, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	sc.log.Infow("Stripe checkout session created", "sessionID", session.ID, "format", params.Format)
	return CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// GetPaymentConfirmation получает сессию и проверяет статус оплаты.
func (sc *stripeClient) GetPaymentConfirmation(ctx context.Context, sessionID string) (domain.PaymentConfirmation, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx

	session, err := sc.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripego.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripego.ErrorCodeResourceMissing {
			return domain.PaymentConfirmation{}, domain.NewNotFoundError("checkout session", sessionID)
		}
		logStripeError(sc.log, "GetCheckoutSession", err)
		return domain.PaymentConfirmation{}, fmt.Errorf("stripe: failed to retrieve session: %w", err)
	}

	return ConfirmationFromSession(session)
}

// logStripeError - вспомогательная функция для логирования деталей ошибки Stripe.
func logStripeError(log *logger.Logger, operation string, err error) {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) {
		log.Errorw("Stripe API error",
			"operation", operation,
			"type", string(stripeErr.Type),
			"code", string(stripeErr.Code),
			"param", stripeErr.Param,
			"message", stripeErr.Msg,
			"request_id", stripeErr.RequestID,
			"status_code", stripeErr.HTTPStatusCode,
		)
	} else {
		log.Errorw("Non-Stripe error during Stripe operation",
			"operation", operation,
			"error", err,
		)
	}
}
