package domain

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusShipped    OrderStatus = "shipped"
)

// orderTransitions допустимые переходы статусов.
// completed и shipped сообщаются внешней системой и являются конечными.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusShipped},
}

// Valid проверяет, что статус известен
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusShipped:
		return true
	}
	return false
}

// Terminal true для конечных статусов
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusShipped
}

// CanTransitionTo проверяет допустимость перехода
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order представляет заказ персонализированной книги
type Order struct {
	ID              string          `json:"id"`
	SessionID       string          `json:"session_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	Personalization Personalization `json:"personalization"`
	Format          ProductFormat   `json:"format"`
	PriceCents      int64           `json:"price_cents"`
	Status          OrderStatus     `json:"status"`
	PrintJobID      string          `json:"print_job_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TransitionTo переводит заказ в новый статус, если переход допустим
func (o *Order) TransitionTo(next OrderStatus, now time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s (order %s)", ErrInvalidTransition, o.Status, next, o.ID)
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

const (
	orderIDPrefix       = "WN-"
	orderIDSuffixLength = 6
)

// OrderID выводит номер заказа из ID checkout-сессии Stripe:
// последние 6 символов в верхнем регистре с префиксом WN-.
func OrderID(sessionID string) string {
	suffix := sessionID
	if len(suffix) > orderIDSuffixLength {
		suffix = suffix[len(suffix)-orderIDSuffixLength:]
	}
	return orderIDPrefix + strings.ToUpper(suffix)
}
