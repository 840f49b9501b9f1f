package service

import (
	"context"
	"errors"
	"time"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/fulfillment"
	"github.com/Dhoini/personalized-gospels/internal/integration/stripe"
	"github.com/Dhoini/personalized-gospels/internal/metrics"
	"github.com/Dhoini/personalized-gospels/internal/repository"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// WebhookService интерфейс сервиса для работы с вебхуками
type WebhookService interface {
	// HandleWebhook проверяет подпись и обрабатывает событие.
	// Ошибка возвращается только при неверной подписи или нечитаемом событии.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (domain.WebhookEvent, error)
}

type webhookService struct {
	stripe  stripe.Client
	dedup   repository.EventDeduplicator
	orders  repository.OrderRepository
	history repository.WebhookEventLog
	queue   fulfillment.Queue
	events  fulfillment.EventPublisher
	metrics metrics.StoreMetrics
	log     *logger.Logger
	now     func() time.Time
}

// NewWebhookService создает новый сервис для работы с вебхуками
func NewWebhookService(
	sc stripe.Client,
	dedup repository.EventDeduplicator,
	orders repository.OrderRepository,
	history repository.WebhookEventLog,
	queue fulfillment.Queue,
	events fulfillment.EventPublisher,
	m metrics.StoreMetrics,
	log *logger.Logger,
) WebhookService {
	return &webhookService{
		stripe:  sc,
		dedup:   dedup,
		orders:  orders,
		history: history,
		queue:   queue,
		events:  events,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

func (s *webhookService) HandleWebhook(ctx context.Context, payload []byte, signature string) (domain.WebhookEvent, error) {
	parsed, err := s.stripe.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, domain.ErrSignature) {
			s.log.Warnw("Webhook signature verification failed", "error", err)
		} else {
			s.log.Errorw("Failed to parse webhook event", "error", err)
		}
		return domain.WebhookEvent{}, err
	}

	event := domain.WebhookEvent{
		ID:         parsed.ID,
		Type:       parsed.Type,
		ReceivedAt: s.now().UTC(),
	}
	if parsed.Checkout != nil {
		event.OrderID = domain.OrderID(parsed.Checkout.SessionID)
	}
	defer func() {
		s.metrics.IncWebhookEvent(string(event.Type), string(event.Status))
		if err := s.history.Record(ctx, event); err != nil {
			s.log.Warnw("Failed to record webhook event", "eventID", event.ID, "error", err)
		}
	}()

	first, err := s.dedup.MarkProcessed(ctx, parsed.ID)
	if err != nil {
		// при недоступном хранилище отметок событие обрабатывается
		s.log.Warnw("Event deduplication unavailable", "eventID", parsed.ID, "error", err)
		first = true
	}
	if !first {
		s.log.Infow("Duplicate webhook event skipped", "eventID", parsed.ID, "type", parsed.Type)
		event.Status = domain.WebhookEventStatusDuplicate
		return event, nil
	}

	switch parsed.Type {
	case domain.WebhookEventCheckoutCompleted:
		event.OrderID, event.Status = s.handleCheckoutCompleted(ctx, parsed)
	case domain.WebhookEventPaymentSucceeded:
		s.log.Infow("Payment succeeded", "paymentIntentID", parsed.PaymentIntentID)
		event.Status = domain.WebhookEventStatusLogged
	case domain.WebhookEventPaymentFailed:
		s.log.Warnw("Payment failed", "paymentIntentID", parsed.PaymentIntentID, "reason", parsed.FailureMessage)
		event.Status = domain.WebhookEventStatusLogged
	default:
		s.log.Infow("Unhandled webhook event type", "eventID", parsed.ID, "type", parsed.Type)
		event.Status = domain.WebhookEventStatusIgnored
	}

	if event.Status == domain.WebhookEventStatusFailed {
		// повторная доставка того же события сможет поставить заказ в очередь
		if err := s.dedup.Forget(ctx, parsed.ID); err != nil {
			s.log.Warnw("Failed to release webhook event mark", "eventID", parsed.ID, "error", err)
		}
	}
	return event, nil
}

// handleCheckoutCompleted переводит заказ в processing и ставит запрос на исполнение в очередь
func (s *webhookService) handleCheckoutCompleted(ctx context.Context, parsed stripe.Event) (string, domain.WebhookEventStatus) {
	checkout := parsed.Checkout
	orderID := domain.OrderID(checkout.SessionID)

	order, err := s.loadOrCreateOrder(ctx, orderID, checkout)
	if err != nil {
		s.log.Errorw("Failed to load order for completed checkout", "orderID", orderID, "error", err)
		return orderID, domain.WebhookEventStatusFailed
	}

	if order.Status != domain.OrderStatusPending {
		s.log.Warnw("Order already past pending, skipping fulfillment", "orderID", orderID, "status", order.Status)
		return orderID, domain.WebhookEventStatusIgnored
	}

	if err := order.TransitionTo(domain.OrderStatusProcessing, s.now().UTC()); err != nil {
		s.log.Errorw("Invalid order transition", "orderID", orderID, "error", err)
		return orderID, domain.WebhookEventStatusFailed
	}
	if err := s.orders.Update(ctx, order); err != nil {
		s.log.Errorw("Failed to mark order processing", "orderID", orderID, "error", err)
		return orderID, domain.WebhookEventStatusFailed
	}
	s.metrics.IncOrderStatus(string(order.Status))

	req := domain.NewFulfillmentRequest(order, checkout.ShippingAddress)

	if err := s.queue.Enqueue(ctx, req); err != nil {
		s.log.Errorw("Failed to enqueue fulfillment request", "orderID", orderID, "format", req.Format, "error", err)
		s.revertToPending(ctx, order)
		return orderID, domain.WebhookEventStatusFailed
	}

	if err := s.events.PublishOrderEvent(ctx, domain.NewOrderEvent(domain.OrderEventPaid, req, s.now())); err != nil {
		s.log.Errorw("Failed to publish order paid event", "orderID", orderID, "error", err)
	}

	s.log.Infow("Payment completed, fulfillment enqueued", "orderID", orderID, "format", req.Format, "amount", checkout.AmountTotal)
	return orderID, domain.WebhookEventStatusEnqueued
}

// revertToPending возвращает заказ в pending, чтобы повторная доставка события снова поставила его в очередь
func (s *webhookService) revertToPending(ctx context.Context, order domain.Order) {
	order.Status = domain.OrderStatusPending
	order.UpdatedAt = s.now().UTC()
	if err := s.orders.Update(ctx, order); err != nil {
		s.log.Errorw("Failed to revert order to pending", "orderID", order.ID, "error", err)
	}
}

// loadOrCreateOrder возвращает заказ, созданный при оформлении, или восстанавливает его из данных сессии
func (s *webhookService) loadOrCreateOrder(ctx context.Context, orderID string, checkout *domain.CompletedCheckout) (domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Order{}, err
	}

	now := s.now().UTC()
	order = domain.Order{
		ID:            orderID,
		SessionID:     checkout.SessionID,
		CustomerName:  checkout.CustomerName,
		CustomerEmail: checkout.CustomerEmail,
		Personalization: domain.Personalization{
			Name:         checkout.Metadata.CustomerName,
			Gender:       checkout.Metadata.Gender,
			BibleVersion: checkout.Metadata.BibleVersion,
		},
		Format:     checkout.Metadata.Format,
		PriceCents: checkout.AmountTotal,
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return s.orders.GetByID(ctx, orderID)
		}
		return domain.Order{}, err
	}
	s.log.Infow("Order restored from completed checkout", "orderID", orderID)
	return order, nil
}
