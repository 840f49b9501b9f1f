package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Dhoini/personalized-gospels/internal/domain"
)

// WebhookEventLog журнал полученных webhook-событий.
// Повторные доставки записываются отдельными строками со статусом duplicate.
type WebhookEventLog interface {
	Record(ctx context.Context, event domain.WebhookEvent) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.WebhookEvent, error)
}

// InMemoryWebhookEventLog журнал событий в памяти процесса
type InMemoryWebhookEventLog struct {
	mu     sync.RWMutex
	events []domain.WebhookEvent
}

// NewInMemoryWebhookEventLog создает журнал событий в памяти
func NewInMemoryWebhookEventLog() *InMemoryWebhookEventLog {
	return &InMemoryWebhookEventLog{}
}

// Record добавляет событие в журнал
func (l *InMemoryWebhookEventLog) Record(_ context.Context, event domain.WebhookEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// ListByOrder возвращает события заказа в порядке получения
func (l *InMemoryWebhookEventLog) ListByOrder(_ context.Context, orderID string) ([]domain.WebhookEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.WebhookEvent, 0)
	for _, e := range l.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out, nil
}
