package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/fulfillment"
	"github.com/Dhoini/personalized-gospels/internal/metrics"
	"github.com/Dhoini/personalized-gospels/internal/repository"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// AdminService интерфейс сервиса администрирования заказов
type AdminService interface {
	// GetOrder возвращает заказ по ID
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)

	// Refulfill повторно ставит заказ в очередь исполнения.
	// Для физических форматов адрес обязателен: он не хранится в заказе.
	Refulfill(ctx context.Context, orderID string, address *domain.ShippingAddress) (domain.Order, error)

	// UpdateStatus записывает статус, сообщенный внешней системой
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)

	// ListEvents возвращает журнал webhook-событий заказа
	ListEvents(ctx context.Context, orderID string) ([]domain.WebhookEvent, error)
}

type adminService struct {
	orders  repository.OrderRepository
	history repository.WebhookEventLog
	queue   fulfillment.Queue
	metrics metrics.StoreMetrics
	log     *logger.Logger
	now     func() time.Time
}

// NewAdminService создает новый сервис администрирования
func NewAdminService(orders repository.OrderRepository, history repository.WebhookEventLog, queue fulfillment.Queue, m metrics.StoreMetrics, log *logger.Logger) AdminService {
	return &adminService{
		orders:  orders,
		history: history,
		queue:   queue,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

func (s *adminService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *adminService) Refulfill(ctx context.Context, orderID string, address *domain.ShippingAddress) (domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status.Terminal() {
		return domain.Order{}, fmt.Errorf("%w: order %s is %s", domain.ErrInvalidTransition, order.ID, order.Status)
	}
	if order.PrintJobID != "" {
		return domain.Order{}, fmt.Errorf("%w: order %s already has print job %s", domain.ErrInvalidTransition, order.ID, order.PrintJobID)
	}
	if order.Format == domain.FormatDigital && address != nil {
		return domain.Order{}, domain.NewValidationError(order.ID, "shippingAddress", "must be empty for digital format")
	}

	req := domain.NewFulfillmentRequest(order, address)
	if err := req.Validate(); err != nil {
		return domain.Order{}, err
	}

	previous := order
	if order.Status == domain.OrderStatusPending {
		if err := order.TransitionTo(domain.OrderStatusProcessing, s.now().UTC()); err != nil {
			return domain.Order{}, err
		}
		if err := s.orders.Update(ctx, order); err != nil {
			return domain.Order{}, err
		}
		s.metrics.IncOrderStatus(string(order.Status))
	}

	if err := s.queue.Enqueue(ctx, req); err != nil {
		s.log.Errorw("Failed to enqueue manual fulfillment", "orderID", order.ID, "error", err)
		if previous.Status != order.Status {
			if uerr := s.orders.Update(ctx, previous); uerr != nil {
				s.log.Errorw("Failed to revert order status", "orderID", order.ID, "error", uerr)
			}
		}
		return domain.Order{}, err
	}

	s.log.Infow("Manual fulfillment enqueued", "orderID", order.ID, "format", order.Format)
	return order, nil
}

func (s *adminService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.NewValidationError(orderID, "status", fmt.Sprintf("unknown status %q", status))
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	previous := order.Status
	if err := order.TransitionTo(status, s.now().UTC()); err != nil {
		return domain.Order{}, err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return domain.Order{}, err
	}

	s.metrics.IncOrderStatus(string(order.Status))
	s.log.Infow("Order status updated", "orderID", order.ID, "from", previous, "to", order.Status)
	return order, nil
}

func (s *adminService) ListEvents(ctx context.Context, orderID string) ([]domain.WebhookEvent, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.history.ListByOrder(ctx, orderID)
}
