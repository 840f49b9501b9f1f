package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/integration/stripe"
	"github.com/Dhoini/personalized-gospels/internal/metrics"
	"github.com/Dhoini/personalized-gospels/internal/repository"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// CheckoutRequest данные покупателя для создания checkout-сессии
type CheckoutRequest struct {
	Name         string
	Email        string
	Gender       domain.Gender
	Format       domain.ProductFormat
	BibleVersion domain.BibleVersion
}

// Validate проверяет выбор покупателя
func (r CheckoutRequest) Validate() error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(r.Name) == "" {
		errs.Add("name", "is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs.Add("email", "is required")
	}
	if !r.Gender.Valid() {
		errs.Add("gender", "must be one of male, female, neutral")
	}
	if !r.BibleVersion.Valid() {
		errs.Add("bibleVersion", "must be one of web, kjv")
	}
	if errs.HasErrors() {
		return &domain.ValidationError{Errors: errs}
	}
	if !r.Format.Valid() {
		return &domain.UnsupportedFormatError{Format: r.Format}
	}
	return nil
}

// CheckoutResult созданная сессия и ID будущего заказа
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	OrderID   string `json:"orderId"`
	URL       string `json:"url"`
}

// CheckoutService интерфейс сервиса оформления заказа
type CheckoutService interface {
	// CreateCheckout создает checkout-сессию и заказ в статусе pending
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error)

	// GetConfirmation возвращает подтверждение оплаченной сессии
	GetConfirmation(ctx context.Context, sessionID string) (domain.PaymentConfirmation, error)
}

type checkoutService struct {
	stripe     stripe.Client
	orders     repository.OrderRepository
	metrics    metrics.StoreMetrics
	successURL string
	cancelURL  string
	log        *logger.Logger
	now        func() time.Time
}

// NewCheckoutService создает новый сервис оформления заказа.
// baseURL адрес витрины, от которого строятся success/cancel URL.
func NewCheckoutService(sc stripe.Client, orders repository.OrderRepository, m metrics.StoreMetrics, baseURL string, log *logger.Logger) CheckoutService {
	baseURL = strings.TrimRight(baseURL, "/")
	return &checkoutService{
		stripe:     sc,
		orders:     orders,
		metrics:    m,
		successURL: baseURL + "/#/confirmation?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  baseURL + "/#/create",
		log:        log,
		now:        time.Now,
	}
}

func (s *checkoutService) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return CheckoutResult{}, err
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		Name:         req.Name,
		Email:        req.Email,
		Gender:       req.Gender,
		Format:       req.Format,
		BibleVersion: req.BibleVersion,
		SuccessURL:   s.successURL,
		CancelURL:    s.cancelURL,
	})
	if err != nil {
		return CheckoutResult{}, err
	}
	s.metrics.IncCheckoutCreated(string(req.Format))

	now := s.now().UTC()
	order := domain.Order{
		ID:            domain.OrderID(session.ID),
		SessionID:     session.ID,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		Personalization: domain.Personalization{
			Name:         req.Name,
			Gender:       req.Gender,
			BibleVersion: req.BibleVersion,
		},
		Format:     req.Format,
		PriceCents: req.Format.PriceCents(),
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// покупатель уже может оплатить сессию; заказ восстановится из webhook
	if err := s.orders.Create(ctx, order); err != nil && !errors.Is(err, domain.ErrDuplicate) {
		s.log.Errorw("Failed to store pending order", "orderID", order.ID, "sessionID", session.ID, "error", err)
	}

	s.log.Infow("Checkout created", "orderID", order.ID, "format", req.Format, "version", req.BibleVersion)
	return CheckoutResult{SessionID: session.ID, OrderID: order.ID, URL: session.URL}, nil
}

func (s *checkoutService) GetConfirmation(ctx context.Context, sessionID string) (domain.PaymentConfirmation, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.PaymentConfirmation{}, domain.NewValidationError("", "session_id", "is required")
	}
	return s.stripe.GetPaymentConfirmation(ctx, sessionID)
}
