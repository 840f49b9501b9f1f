package repository

import (
	"context"
	"sync"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// OrderRepository интерфейс хранилища заказов
type OrderRepository interface {
	// Create сохраняет новый заказ; повторный ID возвращает domain.ErrDuplicate
	Create(ctx context.Context, order domain.Order) error

	// GetByID возвращает заказ по ID
	GetByID(ctx context.Context, id string) (domain.Order, error)

	// Update сохраняет статус и ID задания печати
	Update(ctx context.Context, order domain.Order) error
}

// InMemoryOrderRepository хранит заказы в памяти процесса
type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	log    *logger.Logger
}

// NewInMemoryOrderRepository создает новый репозиторий заказов в памяти
func NewInMemoryOrderRepository(log *logger.Logger) *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders: make(map[string]domain.Order),
		log:    log,
	}
}

// Create сохраняет новый заказ
func (r *InMemoryOrderRepository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return domain.ErrDuplicate
	}
	r.orders[order.ID] = order
	r.log.Debugw("Order stored in memory", "orderID", order.ID)
	return nil
}

// GetByID возвращает заказ по ID
func (r *InMemoryOrderRepository) GetByID(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.NewNotFoundError("order", id)
	}
	return order, nil
}

// Update обновляет существующий заказ
func (r *InMemoryOrderRepository) Update(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return domain.NewNotFoundError("order", order.ID)
	}
	r.orders[order.ID] = order
	return nil
}
